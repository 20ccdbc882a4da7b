package binary

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCOptionKey32(t *testing.T) {
	key, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	for _, tc := range []struct {
		value        ed25519.PublicKey
		expectedSize int
	}{
		{nil, 1},
		{key, 33},
	} {
		assert.Equal(t, tc.expectedSize, COptionKey32Size(tc.value))

		dst := make([]byte, COptionKey32Size(tc.value))
		var offset int
		PutCOptionKey32(dst, tc.value, &offset)
		assert.Equal(t, tc.expectedSize, offset)

		var decoded ed25519.PublicKey
		offset = 0
		require.NoError(t, GetCOptionKey32(dst, &decoded, &offset))
		assert.Equal(t, tc.expectedSize, offset)
		assert.EqualValues(t, tc.value, decoded)
	}

	var decoded ed25519.PublicKey
	var offset int
	assert.Equal(t, ErrInvalidOptionTag, GetCOptionKey32([]byte{2}, &decoded, &offset))
	assert.Error(t, GetCOptionKey32([]byte{1, 2, 3}, &decoded, &offset))
	assert.Error(t, GetCOptionKey32(nil, &decoded, &offset))
}

func TestFixedWidth(t *testing.T) {
	dst := make([]byte, 1+4+8)

	var offset int
	PutUint8(dst[offset:], 7, &offset)
	PutUint32(dst[offset:], 2, &offset)
	PutUint64(dst[offset:], 1_000_000, &offset)
	assert.Equal(t, len(dst), offset)
	assert.Equal(t, []byte{7, 2, 0, 0, 0, 0x40, 0x42, 0x0f, 0, 0, 0, 0, 0}, dst)

	var u8 uint8
	var u32 uint32
	var u64 uint64
	offset = 0
	GetUint8(dst[offset:], &u8, &offset)
	GetUint32(dst[offset:], &u32, &offset)
	GetUint64(dst[offset:], &u64, &offset)
	assert.EqualValues(t, 7, u8)
	assert.EqualValues(t, 2, u32)
	assert.EqualValues(t, 1_000_000, u64)
}
