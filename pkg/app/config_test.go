package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)

	assert.Equal(t, 3000, config.Port)
	assert.Equal(t, "instruction-server", config.AppName)
	assert.Equal(t, 30*time.Second, config.ShutdownGracePeriod)
	assert.False(t, config.EnableBallast)
	assert.False(t, config.EnableMemoryLeakCron)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "5s")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, 5*time.Second, config.ShutdownGracePeriod)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	for _, port := range []string{"0", "-1", "65536"} {
		t.Setenv("PORT", port)

		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "")
		assert.Error(t, err, port)
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	t.Cleanup(func() {
		os.Unsetenv("APP_NAME")
		os.Unsetenv("DEBUG_LISTEN_ADDRESS")
	})
	t.Setenv("DEBUG_LISTEN_ADDRESS", ":9000")

	dotEnvPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotEnvPath, []byte("APP_NAME=from-dotenv\nDEBUG_LISTEN_ADDRESS=:9999\n"), 0o600))

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), dotEnvPath)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", config.AppName)

	// Variables already present in the environment win
	assert.Equal(t, ":9000", config.DebugListenAddress)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() {
		emptyPath := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(emptyPath, nil, 0o600))
		viper.SetConfigFile(emptyPath)
		require.NoError(t, viper.ReadInConfig())
	})

	configPath := filepath.Join(dir, "config.yaml")
	contents := `
app_name: from-file
port: 4000
enable_ballast: true
ballast_capacity: 0.25
app:
  max_request_body_size: 1024
`
	require.NoError(t, os.WriteFile(configPath, []byte(contents), 0o600))

	config, err := LoadConfig(configPath, "")
	require.NoError(t, err)

	assert.Equal(t, "from-file", config.AppName)
	assert.Equal(t, 4000, config.Port)
	assert.True(t, config.EnableBallast)
	assert.Equal(t, 0.25, config.BallastCapacity)
	assert.EqualValues(t, 1024, config.AppConfig["max_request_body_size"])
}
