package common

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/instruction-server/pkg/solana"
	"github.com/code-payments/instruction-server/pkg/solana/token"
)

func TestAccountWithPublicKey(t *testing.T) {
	publicKey, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	var accounts []*Account

	account, err := NewAccountFromPublicKeyBytes(publicKey)
	require.NoError(t, err)
	accounts = append(accounts, account)

	account, err = NewAccountFromPublicKeyString(base58.Encode(publicKey))
	require.NoError(t, err)
	accounts = append(accounts, account)

	for _, account := range accounts {
		assert.EqualValues(t, publicKey, account.PublicKey().ToBytes())
		assert.Nil(t, account.PrivateKey())
		assert.Empty(t, account.ToSecretString())
		assert.Equal(t, base58.Encode(publicKey), account.String())

		_, err = account.Sign([]byte("message"))
		assert.Error(t, err)
	}
}

func TestAccountWithPrivateKey(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	var accounts []*Account

	account, err := NewAccountFromPrivateKeyBytes(privateKey)
	require.NoError(t, err)
	accounts = append(accounts, account)

	account, err = NewAccountFromSecretString(base58.Encode(privateKey))
	require.NoError(t, err)
	accounts = append(accounts, account)

	for _, account := range accounts {
		assert.EqualValues(t, publicKey, account.PublicKey().ToBytes())
		assert.EqualValues(t, privateKey, account.PrivateKey().ToBytes())
		assert.Equal(t, base58.Encode(privateKey), account.ToSecretString())

		message := []byte("message")
		signature, err := account.Sign(message)
		require.NoError(t, err)
		assert.EqualValues(t, ed25519.Sign(privateKey, message), signature[:])
	}
}

func TestNewAccountFromPublicKeyString_RejectsPrivateKeys(t *testing.T) {
	account := newRandomTestAccount(t)

	_, err := NewAccountFromPublicKeyString(account.ToSecretString())
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewAccountFromPublicKeyString_AcceptsOffCurve(t *testing.T) {
	owner := newRandomTestAccount(t)
	mint := newRandomTestAccount(t)

	ata, err := token.GetAssociatedAccount(owner.PublicKey().ToBytes(), mint.PublicKey().ToBytes())
	require.NoError(t, err)

	account, err := NewAccountFromPublicKeyString(base58.Encode(ata))
	require.NoError(t, err)
	assert.False(t, account.IsOnCurve())
	assert.True(t, owner.IsOnCurve())
}

func TestIsOnCurve_AgreesWithProgramAddressCheck(t *testing.T) {
	mint := newRandomTestAccount(t)
	for i := 0; i < 32; i++ {
		owner := newRandomTestAccount(t)
		assert.True(t, owner.IsOnCurve())
		assert.Equal(t, solana.IsOnCurve(owner.PublicKey().ToBytes()), owner.IsOnCurve())

		ata, err := owner.ToAssociatedTokenAccount(mint)
		require.NoError(t, err)
		assert.False(t, ata.IsOnCurve())
		assert.Equal(t, solana.IsOnCurve(ata.PublicKey().ToBytes()), ata.IsOnCurve())
	}
}

func TestNewAccountFromSecretString_Invalid(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	otherPublicKey, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	mismatched := make([]byte, ed25519.PrivateKeySize)
	copy(mismatched, privateKey[:ed25519.SeedSize])
	copy(mismatched[ed25519.SeedSize:], otherPublicKey)

	garbage := make([]byte, ed25519.PrivateKeySize)
	copy(garbage, privateKey[:ed25519.SeedSize])
	garbage[ed25519.SeedSize] = 2

	for _, value := range []string{
		"",
		"not-base58!",
		base58.Encode(publicKey),
		base58.Encode(privateKey[:63]),
		base58.Encode(append(privateKey, 0)),
		base58.Encode(mismatched),
		base58.Encode(garbage),
	} {
		_, err := NewAccountFromSecretString(value)
		assert.ErrorIs(t, err, ErrInvalidSecret, value)
	}
}

func TestNewRandomAccount(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 16; i++ {
		account := newRandomTestAccount(t)
		require.NoError(t, account.Validate())

		_, ok := seen[account.PublicKey().ToBase58()]
		assert.False(t, ok)
		seen[account.PublicKey().ToBase58()] = struct{}{}

		restored, err := NewAccountFromSecretString(account.ToSecretString())
		require.NoError(t, err)
		assert.Equal(t, account.PublicKey().ToBase58(), restored.PublicKey().ToBase58())
	}
}

func TestToAssociatedTokenAccount(t *testing.T) {
	owner := newRandomTestAccount(t)
	mint := newRandomTestAccount(t)

	expected, expectedBump, err := token.GetAssociatedAccountAndBump(owner.PublicKey().ToBytes(), mint.PublicKey().ToBytes())
	require.NoError(t, err)

	ata, bump, err := owner.ToAssociatedTokenAccountAndBump(mint)
	require.NoError(t, err)
	assert.EqualValues(t, expected, ata.PublicKey().ToBytes())
	assert.Equal(t, expectedBump, bump)

	ata2, err := owner.ToAssociatedTokenAccount(mint)
	require.NoError(t, err)
	assert.Equal(t, ata.PublicKey().ToBase58(), ata2.PublicKey().ToBase58())
}
