package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version info passed from main
	appVersion   string
	appGitCommit string
	appBuildTime string
)

// rootCmd serves the HTTP API when no subcommand is given
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "instruction-server",
		Short: "Stateless HTTP server that builds and signs Solana instructions",
		Long: `instruction-server exposes a JSON API for:
- Generating keypairs
- Building SPL token and system program instructions
- Signing and verifying messages

Running without a subcommand is equivalent to 'instruction-server serve'.`,
		SilenceUsage: true,
	}

	serve := newServeCmd()
	root.Flags().AddFlagSet(serve.Flags())
	root.RunE = serve.RunE

	root.AddCommand(serve)
	root.AddCommand(newKeypairCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute adds all child commands and executes the root command
func Execute(ver, commit, built string) error {
	appVersion = ver
	appGitCommit = commit
	appBuildTime = built

	return rootCmd.Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", appVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", appGitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Time: %s\n", appBuildTime)
		},
	}
}
