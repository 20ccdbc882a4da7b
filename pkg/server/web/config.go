package web

import (
	"github.com/code-payments/instruction-server/pkg/config"
	"github.com/code-payments/instruction-server/pkg/config/env"
	"github.com/code-payments/instruction-server/pkg/config/memory"
	"github.com/code-payments/instruction-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "INSTRUCTION_SERVICE_"

	MaxRequestBodySizeConfigEnvName = envConfigPrefix + "MAX_REQUEST_BODY_SIZE"
	defaultMaxRequestBodySize       = 1 << 20

	DisableKeypairEndpointConfigEnvName = envConfigPrefix + "DISABLE_KEYPAIR_ENDPOINT"
	defaultDisableKeypairEndpoint       = false
)

type conf struct {
	maxRequestBodySize     config.Uint64
	disableKeypairEndpoint config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			maxRequestBodySize:     env.NewUint64Config(MaxRequestBodySizeConfigEnvName, defaultMaxRequestBodySize),
			disableKeypairEndpoint: env.NewBoolConfig(DisableKeypairEndpointConfigEnvName, defaultDisableKeypairEndpoint),
		}
	}
}

type testOverrides struct {
	maxRequestBodySize     uint64
	disableKeypairEndpoint bool
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		maxRequestBodySize := overrides.maxRequestBodySize
		if maxRequestBodySize == 0 {
			maxRequestBodySize = defaultMaxRequestBodySize
		}

		return &conf{
			maxRequestBodySize:     wrapper.NewUint64Config(memory.NewConfig(maxRequestBodySize), defaultMaxRequestBodySize),
			disableKeypairEndpoint: wrapper.NewBoolConfig(memory.NewConfig(overrides.disableKeypairEndpoint), defaultDisableKeypairEndpoint),
		}
	}
}
