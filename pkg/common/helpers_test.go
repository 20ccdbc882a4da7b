package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The testutil package imports common, so tests here build their own accounts
func newRandomTestAccount(t *testing.T) *Account {
	account, err := NewRandomAccount()
	require.NoError(t, err)
	return account
}
