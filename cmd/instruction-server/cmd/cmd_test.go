package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/instruction-server/pkg/common"
)

func execute(t *testing.T, args ...string) (string, error) {
	root := newRootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestKeypairCmd(t *testing.T) {
	out, err := execute(t, "keypair")
	require.NoError(t, err)

	var decoded keypairOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	account, err := common.NewAccountFromSecretString(decoded.Secret)
	require.NoError(t, err)
	assert.Equal(t, decoded.Pubkey, account.PublicKey().ToBase58())

	_, err = execute(t, "keypair", "extra")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	appVersion = "v1.2.3"
	defer func() { appVersion = "" }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: v1.2.3")
}

func TestServeCmd_Flags(t *testing.T) {
	root := newRootCmd()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	for _, name := range []string{"config", "env-file", "port"} {
		assert.NotNil(t, serve.Flags().Lookup(name), name)
		assert.NotNil(t, root.Flags().Lookup(name), name)
	}
}
