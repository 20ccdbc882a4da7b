package netutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAvailablePortForAddress(t *testing.T) {
	port, err := GetAvailablePortForAddress("localhost")
	require.NoError(t, err)
	assert.True(t, port > 0)
}

func TestParsePort(t *testing.T) {
	port, err := ParsePort("0.0.0.0:3000")
	require.NoError(t, err)
	assert.Equal(t, 3000, port)

	for _, address := range []string{"localhost", "localhost:abc", "localhost:70000"} {
		_, err = ParsePort(address)
		assert.Error(t, err, address)
	}
}

func TestListenAddress(t *testing.T) {
	assert.Equal(t, "0.0.0.0:3000", ListenAddress(3000))
}
