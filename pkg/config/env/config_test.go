package env

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/instruction-server/pkg/config"
)

func TestConfig(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"

	t.Setenv(env, "value")
	v, err := NewConfig(env).Get(context.Background())
	assert.Equal(t, []byte("value"), v)
	assert.Nil(t, err)

	t.Setenv(env, "")
	v, err = NewConfig(env).Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	const (
		boolEnv   = "ENV_CONFIG_TEST_BOOL"
		uint64Env = "ENV_CONFIG_TEST_UINT64"
	)

	boolConfig := NewBoolConfig(boolEnv, false)
	uint64Config := NewUint64Config(uint64Env, 10)

	assert.False(t, boolConfig.Get(context.Background()))
	assert.EqualValues(t, 10, uint64Config.Get(context.Background()))

	t.Setenv(boolEnv, "true")
	t.Setenv(uint64Env, "2048")

	assert.True(t, boolConfig.Get(context.Background()))
	assert.EqualValues(t, 2048, uint64Config.Get(context.Background()))
}
