// Package pipeline runs source plugins against a shared, append-only data
// object.
//
// A run has two phases. Bootstrap lets every plugin acquire and cache what
// it needs; it is where network I/O happens and the only place a plugin may
// write its persisted context. Transform then folds each plugin's Delta into
// the Data produced by the plugins before it. Transform runs on every
// execution, whether or not bootstrap fetched anything new.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"
)

// Plugin is implemented by every source adapter.
type Plugin interface {
	// Name identifies the plugin and keys its persisted context.
	Name() string

	// Bootstrap runs once per execution before Transform.
	Bootstrap(ctx context.Context, env *Env) error

	// Transform reads prior and returns what this plugin adds to it.
	// It must not block or perform I/O.
	Transform(env *Env, prior Data) (Delta, error)
}

// Env is the set of host capabilities handed to a plugin hook.
type Env struct {
	// Log is tagged with the plugin name. Debug output goes to Log.Debug().
	Log zerolog.Logger

	// GetContext decodes the plugin's persisted context into v and reports
	// whether one existed.
	GetContext func(v any) (bool, error)

	// SetContext replaces the plugin's persisted context with v.
	SetContext func(v any) error

	// Refresh asks the host to re-execute the pipeline.
	Refresh func()
}
