package cmd

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/instruction-server/pkg/common"
)

type keypairOutput struct {
	Pubkey string `json:"pubkey"`
	Secret string `json:"secret"`
}

func newKeypairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keypair",
		Short: "Print a new random keypair as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, err := common.NewRandomAccount()
			if err != nil {
				return errors.Wrap(err, "failed to generate keypair")
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(keypairOutput{
				Pubkey: account.PublicKey().ToBase58(),
				Secret: account.ToSecretString(),
			})
		},
	}
}
