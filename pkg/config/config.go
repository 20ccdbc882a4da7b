package config

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")
)

// Config is a source of a single untyped configuration value
type Config interface {
	// Get returns the latest config value
	Get(ctx context.Context) (any, error)

	// Shutdown signals the config to stop all underlying resources
	Shutdown()
}

// Typed is a config.Config converted to T, with a default used when the
// source has no value.
type Typed[T any] interface {
	// Get returns the latest value, or the last known good value on error
	Get(ctx context.Context) T

	// GetSafe is Get, but also propagates any conversion or source error
	GetSafe(ctx context.Context) (T, error)

	Shutdown()
}

// Bool provides a boolean typed config.Config.
type Bool = Typed[bool]

// Uint64 provides a uint64 typed config.Config.
type Uint64 = Typed[uint64]
