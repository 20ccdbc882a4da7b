package app

import (
	"net"
	"net/http"
)

// Option configures the environment run by Run().
type Option func(o *opts)

type opts struct {
	configPath string
	dotEnvPath string
	listener   net.Listener
	middleware []func(http.Handler) http.Handler
}

// WithConfigPath sets the optional config file read by Run(). Defaults to
// config.yaml.
func WithConfigPath(path string) Option {
	return func(o *opts) {
		o.configPath = path
	}
}

// WithDotEnvPath sets the optional .env file read by Run(). An empty path
// disables it.
func WithDotEnvPath(path string) Option {
	return func(o *opts) {
		o.dotEnvPath = path
	}
}

// WithListener serves on an existing listener instead of binding the
// configured port.
func WithListener(listener net.Listener) Option {
	return func(o *opts) {
		o.listener = listener
	}
}

// WithMiddleware configures the app's HTTP server to use the provided middleware.
//
// Middleware is evaluated in addition order, and runs after the app's
// default middleware.
func WithMiddleware(middleware func(http.Handler) http.Handler) Option {
	return func(o *opts) {
		o.middleware = append(o.middleware, middleware)
	}
}
