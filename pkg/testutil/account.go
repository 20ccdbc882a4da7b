package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/instruction-server/pkg/common"
)

func NewRandomAccount(t *testing.T) *common.Account {
	account, err := common.NewRandomAccount()
	require.NoError(t, err)

	return account
}
