package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

var ErrInvalidOptionTag = errors.New("invalid option tag")

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst, src)
	*offset += ed25519.PublicKeySize
}

// COptionKey32Size is the number of bytes PutCOptionKey32 writes for src.
func COptionKey32Size(src []byte) int {
	if len(src) == 0 {
		return 1
	}
	return 1 + ed25519.PublicKeySize
}

// PutCOptionKey32 writes an optional key the way the token program packs
// instruction arguments: a lone 0 tag when absent, or a 1 tag followed by
// the key.
func PutCOptionKey32(dst []byte, src []byte, offset *int) {
	if len(src) == 0 {
		dst[0] = 0
		*offset += 1
		return
	}

	dst[0] = 1
	copy(dst[1:], src)
	*offset += 1 + ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src)
	*offset += ed25519.PublicKeySize
}

// GetCOptionKey32 is the inverse of PutCOptionKey32. dst is left nil when
// the option is absent.
func GetCOptionKey32(src []byte, dst *ed25519.PublicKey, offset *int) error {
	if len(src) == 0 {
		return errors.New("missing option tag")
	}

	switch src[0] {
	case 0:
		*dst = nil
		*offset += 1
		return nil
	case 1:
		if len(src) < 1+ed25519.PublicKeySize {
			return errors.Errorf("invalid option size: %d", len(src))
		}
		*dst = make([]byte, ed25519.PublicKeySize)
		copy(*dst, src[1:])
		*offset += 1 + ed25519.PublicKeySize
		return nil
	default:
		return ErrInvalidOptionTag
	}
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	*offset += 8
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src)
	*offset += 4
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	*offset += 1
}
