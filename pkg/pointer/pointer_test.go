package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBool(t *testing.T) {
	require.NotNil(t, Bool(false))
	assert.False(t, *Bool(false))
	assert.True(t, *Bool(true))

	assert.Nil(t, BoolIfValid(false, true))
	require.NotNil(t, BoolIfValid(true, false))
	assert.False(t, *BoolIfValid(true, false))
}

func TestStringOrDefault(t *testing.T) {
	assert.Equal(t, "default", *StringOrDefault(nil, "default"))

	value := String("value")
	assert.Same(t, value, StringOrDefault(value, "default"))
}
