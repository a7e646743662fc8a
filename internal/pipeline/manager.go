package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"reddit-source/internal/config"
	"reddit-source/internal/state"
)

// ErrContextReadOnly is returned by Env.SetContext outside of bootstrap.
var ErrContextReadOnly = errors.New("plugin context is read-only during transform")

// Manager is the host: it owns the plugin order and the context store.
type Manager struct {
	store   state.Store
	config  config.PipelineConfig
	plugins []Plugin
	refresh chan struct{}
}

func NewManager(store state.Store, cfg config.PipelineConfig) *Manager {
	return &Manager{
		store:   store,
		config:  cfg,
		plugins: []Plugin{},
		refresh: make(chan struct{}, 1),
	}
}

func (m *Manager) Register(p Plugin) {
	m.plugins = append(m.plugins, p)
	log.Info().Str("plugin", p.Name()).Msg("Registered plugin")
}

// Refresh schedules another execution in Watch. Calls made while one is
// already pending are coalesced.
func (m *Manager) Refresh() {
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}

// Run performs one execution: bootstrap every plugin in registration order,
// persist their contexts, then fold their transforms over fresh Data.
// A bootstrap error aborts the run before any transform.
func (m *Manager) Run(ctx context.Context) (Data, error) {
	logger := log.With().Str("run_id", uuid.NewString()).Logger()

	snap, err := m.store.Load(ctx)
	if err != nil {
		return Data{}, errors.Wrap(err, "failed to load plugin contexts")
	}

	if err := m.bootstrapAll(ctx, logger, snap); err != nil {
		return Data{}, err
	}

	data, err := m.transformAll(logger, snap)
	if err != nil {
		return Data{}, err
	}

	logger.Info().
		Int("models", len(data.Models)).
		Int("objects", len(data.Objects)).
		Msg("Pipeline run complete")

	return data, nil
}

// Watch runs the pipeline now and again on every tick of
// pipeline.interval_seconds or Refresh call, until ctx is done.
// Failed runs are logged and do not stop the loop.
func (m *Manager) Watch(ctx context.Context, onData func(Data)) error {
	var tick <-chan time.Time
	if m.config.IntervalSeconds > 0 {
		ticker := time.NewTicker(time.Duration(m.config.IntervalSeconds) * time.Second)
		defer ticker.Stop()
		tick = ticker.C
	}

	run := func() {
		data, err := m.Run(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Pipeline run failed")
			return
		}
		onData(data)
	}

	// Initial run
	run()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			run()
		case <-m.refresh:
			run()
		}
	}
}

func (m *Manager) bootstrapAll(ctx context.Context, logger zerolog.Logger, snap state.Snapshot) error {
	var bootErr error
	dirty := false

	for _, p := range m.plugins {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Writes land in staged and reach snap only if the bootstrap succeeds.
		staged := snap.Clone()
		env, changed := m.env(logger, p, staged, true)
		if err := p.Bootstrap(ctx, env); err != nil {
			bootErr = errors.Wrapf(err, "bootstrap %s", p.Name())
			break
		}
		if *changed {
			snap[p.Name()] = staged[p.Name()]
			dirty = true
		}
	}

	// Contexts written by plugins that did bootstrap are kept even when a
	// later plugin failed.
	if dirty {
		if err := m.store.Save(ctx, snap); err != nil {
			if bootErr != nil {
				logger.Warn().Err(err).Msg("Failed to save plugin contexts")
				return bootErr
			}
			return errors.Wrap(err, "failed to save plugin contexts")
		}
	}

	return bootErr
}

func (m *Manager) transformAll(logger zerolog.Logger, snap state.Snapshot) (Data, error) {
	data := NewData()
	for _, p := range m.plugins {
		env, _ := m.env(logger, p, snap, false)
		delta, err := p.Transform(env, data)
		if err != nil {
			return Data{}, errors.Wrapf(err, "transform %s", p.Name())
		}
		data = data.Apply(delta)
	}
	return data, nil
}

// env builds the capability set for one hook call of p. Only p's own key in
// snap is reachable. The returned flag reports whether SetContext was used.
func (m *Manager) env(logger zerolog.Logger, p Plugin, snap state.Snapshot, writable bool) (*Env, *bool) {
	name := p.Name()
	changed := false

	return &Env{
		Log: logger.With().Str("plugin", name).Logger(),
		GetContext: func(v any) (bool, error) {
			raw, ok := snap[name]
			if !ok {
				return false, nil
			}
			if err := json.Unmarshal(raw, v); err != nil {
				return true, errors.Wrapf(err, "failed to decode context of %s", name)
			}
			return true, nil
		},
		SetContext: func(v any) error {
			if !writable {
				return ErrContextReadOnly
			}
			raw, err := json.Marshal(v)
			if err != nil {
				return errors.Wrapf(err, "failed to encode context of %s", name)
			}
			snap[name] = raw
			changed = true
			return nil
		},
		Refresh: m.Refresh,
	}, &changed
}
