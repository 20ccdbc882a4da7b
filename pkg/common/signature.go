package common

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/pkg/errors"

	"github.com/code-payments/instruction-server/pkg/solana"
)

var ErrInvalidSignature = errors.New("invalid signature")

// NewSignatureFromBase64 parses a standard base64 encoded 64 byte signature.
func NewSignatureFromBase64(value string) (solana.Signature, error) {
	var signature solana.Signature

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return signature, errors.Wrapf(ErrInvalidSignature, "error decoding string as base64: %v", err)
	}

	if len(decoded) != ed25519.SignatureSize {
		return signature, errors.Wrapf(ErrInvalidSignature, "expected %d bytes, got %d", ed25519.SignatureSize, len(decoded))
	}

	copy(signature[:], decoded)
	return signature, nil
}

// Verify reports whether signature is a valid signature of message by
// publicKey. Any public or private key is accepted, with only the public
// half used.
func Verify(publicKey *Key, message []byte, signature solana.Signature) bool {
	if publicKey == nil || publicKey.Validate() != nil {
		return false
	}

	pub := ed25519.PublicKey(publicKey.ToBytes())
	if !publicKey.IsPublic() {
		pub = ed25519.PrivateKey(publicKey.ToBytes()).Public().(ed25519.PublicKey)
	}

	return ed25519.Verify(pub, message, signature[:])
}
