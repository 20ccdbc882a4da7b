package common

import (
	"bytes"
	"crypto/ed25519"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/instruction-server/pkg/solana"
	"github.com/code-payments/instruction-server/pkg/solana/token"
)

var ErrInvalidSecret = errors.New("invalid secret key")

type Account struct {
	publicKey  *Key
	privateKey *Key // Optional
}

func NewAccountFromPublicKey(publicKey *Key) (*Account, error) {
	account := &Account{
		publicKey: publicKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPublicKeyBytes(publicKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(publicKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKey(key)
}

// NewAccountFromPublicKeyString parses a base58 encoded 32 byte address.
// Off-curve addresses, like program derived ones, are accepted.
func NewAccountFromPublicKeyString(publicKey string) (*Account, error) {
	key, err := NewKeyFromString(publicKey)
	if err != nil {
		return nil, err
	}

	if !key.IsPublic() || len(key.ToBytes()) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidKey, "expected %d bytes, got %d", ed25519.PublicKeySize, len(key.ToBytes()))
	}

	return NewAccountFromPublicKey(key)
}

func NewAccountFromPrivateKey(privateKey *Key) (*Account, error) {
	if privateKey == nil || privateKey.IsPublic() {
		return nil, errors.New("private key isn't private")
	}

	publicKeyBytes := ed25519.PrivateKey(privateKey.ToBytes()).Public().(ed25519.PublicKey)
	publicKey, err := NewKeyFromBytes(publicKeyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "error creating public key from private key")
	}

	account := &Account{
		publicKey:  publicKey,
		privateKey: privateKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPrivateKeyBytes(privateKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(privateKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPrivateKey(key)
}

// NewAccountFromSecretString parses the base58 encoding of a 64 byte
// private key, laid out as seed followed by public key. The trailing half
// must be the public key derived from the seed.
func NewAccountFromSecretString(secret string) (*Account, error) {
	decoded, err := base58.Decode(secret)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSecret, "error decoding string as base58: %v", err)
	}

	if len(decoded) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidSecret, "expected %d bytes, got %d", ed25519.PrivateKeySize, len(decoded))
	}

	embedded := decoded[ed25519.SeedSize:]
	derived := ed25519.NewKeyFromSeed(decoded[:ed25519.SeedSize]).Public().(ed25519.PublicKey)
	if !bytes.Equal(derived, embedded) {
		return nil, errors.Wrap(ErrInvalidSecret, "private key doesn't map to public key")
	}

	account, err := NewAccountFromPrivateKeyBytes(decoded)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSecret, "%v", err)
	}
	return account, nil
}

func NewRandomAccount() (*Account, error) {
	key, err := NewRandomKey()
	if err != nil {
		return nil, err
	}

	return NewAccountFromPrivateKey(key)
}

func (a *Account) PublicKey() *Key {
	return a.publicKey
}

func (a *Account) PrivateKey() *Key {
	return a.privateKey
}

// ToSecretString returns the base58 encoding of the full 64 byte private
// key, or an empty string when the account is public only.
func (a *Account) ToSecretString() string {
	if a.privateKey == nil {
		return ""
	}
	return a.privateKey.ToBase58()
}

func (a *Account) Sign(message []byte) (solana.Signature, error) {
	var signature solana.Signature
	if a.privateKey == nil {
		return signature, errors.New("private key not available")
	}

	copy(signature[:], ed25519.Sign(a.privateKey.ToBytes(), message))
	return signature, nil
}

func (a *Account) ToAssociatedTokenAccount(mint *Account) (*Account, error) {
	ata, _, err := a.ToAssociatedTokenAccountAndBump(mint)
	return ata, err
}

func (a *Account) ToAssociatedTokenAccountAndBump(mint *Account) (*Account, uint8, error) {
	if err := a.Validate(); err != nil {
		return nil, 0, errors.Wrap(err, "error validating owner account")
	}

	if err := mint.Validate(); err != nil {
		return nil, 0, errors.Wrap(err, "error validating mint account")
	}

	ata, bump, err := token.GetAssociatedAccountAndBump(a.PublicKey().ToBytes(), mint.PublicKey().ToBytes())
	if err != nil {
		return nil, 0, err
	}

	account, err := NewAccountFromPublicKeyBytes(ata)
	if err != nil {
		return nil, 0, err
	}
	return account, bump, nil
}

// IsOnCurve reports whether the public key is a valid edwards25519 point.
// Program derived addresses, such as associated token accounts, never are.
func (a *Account) IsOnCurve() bool {
	return isOnCurve(a.PublicKey().ToBytes())
}

func (a *Account) Validate() error {
	if a == nil {
		return errors.New("account is nil")
	}

	if err := a.PublicKey().Validate(); err != nil {
		return errors.Wrap(err, "error validating public key")
	}

	if !a.PublicKey().IsPublic() {
		return errors.New("public key isn't public")
	}

	// Private keys are optional
	if a.privateKey == nil {
		return nil
	}

	if err := a.privateKey.Validate(); err != nil {
		return errors.Wrap(err, "error validating private key")
	}

	if a.privateKey.IsPublic() {
		return errors.New("private key isn't private")
	}

	expectedPublicKey := ed25519.PrivateKey(a.privateKey.ToBytes()).Public().(ed25519.PublicKey)
	if !bytes.Equal(a.PublicKey().ToBytes(), expectedPublicKey) {
		return errors.New("private key doesn't map to public key")
	}

	return nil
}

func (a *Account) String() string {
	return a.PublicKey().ToBase58()
}

func isOnCurve(pubKey ed25519.PublicKey) bool {
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}

	// Try to parse the public key as a point
	_, err := new(edwards25519.Point).SetBytes(pubKey)
	return err == nil
}
