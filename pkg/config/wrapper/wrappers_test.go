package wrapper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/instruction-server/pkg/config/memory"
)

func TestBoolConfig(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := NewBoolConfig(mock, true)

	// Return the default value when no override is set
	val, err := wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.True(t, val)

	// The overriden value is returned when set
	mock.SetValue(false)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.False(t, val)

	mock.SetValue([]byte("true"))
	assert.True(t, wrapper.Get(ctx))

	// The last observed config value is returned on error
	mock.InduceErrors()
	val, err = wrapper.GetSafe(ctx)
	require.Error(t, err)
	assert.True(t, val)

	mock.StopInducingErrors()
	mock.SetValue([]byte("not a bool"))
	val, err = wrapper.GetSafe(ctx)
	require.Error(t, err)
	assert.True(t, val)

	mock.SetValue("not supported")
	_, err = wrapper.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)

	// The default value is returned when the override no longer has a value
	mock.SetValue(false)
	assert.False(t, wrapper.Get(ctx))
	mock.ClearValue()
	assert.True(t, wrapper.Get(ctx))
}

func TestUint64Config(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := NewUint64Config(mock, 1024)

	assert.EqualValues(t, 1024, wrapper.Get(ctx))

	for _, tc := range []struct {
		value    any
		expected uint64
	}{
		{uint64(1), 1},
		{uint(2), 2},
		{3, 3},
		{[]byte("18446744073709551615"), 18446744073709551615},
	} {
		mock.SetValue(tc.value)
		val, err := wrapper.GetSafe(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, val)
	}

	for _, value := range []any{-1, []byte("-1"), []byte("abc"), 1.5} {
		mock.SetValue(value)
		val, err := wrapper.GetSafe(ctx)
		assert.Error(t, err)
		assert.EqualValues(t, uint64(18446744073709551615), val)
	}

	mock.ClearValue()
	assert.EqualValues(t, 1024, wrapper.Get(ctx))

	wrapper.Shutdown()
	_, err := wrapper.GetSafe(ctx)
	assert.Error(t, err)
}
