// Package reddit is a pipeline source that caches the hot listing of one
// subreddit and emits it as reddit-post entries.
package reddit

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"

	"reddit-source/internal/api"
	"reddit-source/internal/config"
	"reddit-source/internal/pipeline"
	"reddit-source/internal/setup"
)

// API is the part of *api.Client the source uses.
type API interface {
	AcquireToken(ctx context.Context) (*oauth2.Token, error)
	FetchHot(ctx context.Context, token *oauth2.Token, subreddit string) ([]api.Item, error)
}

// Options are the plugin options resolved by the host.
type Options struct {
	SubredditName string
	TitleCase     bool
}

// pluginContext is what the source persists between runs. A nil Entries
// means nothing was fetched yet; an empty slice is a valid cache.
type pluginContext struct {
	Entries *[]api.Item `json:"entries,omitempty"`
}

type Source struct {
	client  API
	options Options
}

func New(cfg config.RedditConfig) *Source {
	return NewWithClient(api.NewClient(cfg), Options{
		SubredditName: cfg.SubredditName,
		TitleCase:     cfg.TitleCase,
	})
}

func NewWithClient(client API, opts Options) *Source {
	return &Source{
		client:  client,
		options: opts,
	}
}

func (s *Source) Name() string {
	return SourceName
}

// Bootstrap fetches the listing unless the context already holds one.
// On failure the context is left untouched so the next bootstrap retries.
func (s *Source) Bootstrap(ctx context.Context, env *pipeline.Env) error {
	var pc pluginContext
	if _, err := env.GetContext(&pc); err != nil {
		return err
	}

	if pc.Entries != nil {
		env.Log.Info().Int("count", len(*pc.Entries)).Msgf("Loaded %d entries from cache", len(*pc.Entries))
		return nil
	}

	token, err := s.client.AcquireToken(ctx)
	if err != nil {
		return err
	}

	entries, err := s.client.FetchHot(ctx, token, s.options.SubredditName)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []api.Item{}
	}

	env.Log.Info().
		Str("subreddit", s.options.SubredditName).
		Int("count", len(entries)).
		Msgf("Loaded %d entries", len(entries))
	env.Log.Debug().Interface("entries", entries).Msg("Initial entries")

	return env.SetContext(pluginContext{Entries: &entries})
}

// Transform normalizes the cached entries. It runs on every execution.
func (s *Source) Transform(env *pipeline.Env, _ pipeline.Data) (pipeline.Delta, error) {
	var pc pluginContext
	if _, err := env.GetContext(&pc); err != nil {
		return pipeline.Delta{}, err
	}
	if pc.Entries == nil {
		return pipeline.Delta{}, errors.New("no cached entries, bootstrap has not succeeded")
	}

	model, posts := Normalize(*pc.Entries, s.options)

	objects := make([]pipeline.Entry, len(posts))
	for i, p := range posts {
		objects[i] = p
	}

	env.Log.Debug().Int("count", len(objects)).Bool("title_case", s.options.TitleCase).Msg("Normalized entries")

	return pipeline.Delta{
		Models:  []pipeline.ModelDescriptor{model},
		Objects: objects,
	}, nil
}

// SetupQuestions lists what the interactive setup asks.
func (s *Source) SetupQuestions() []setup.Question {
	return []setup.Question{
		{
			Type:    "input",
			Name:    "subredditName",
			Message: "Subreddit:",
		},
	}
}

// GetSetup returns the interactive setup flow.
func (s *Source) GetSetup(_ Options) setup.Flow {
	return setup.Ask(s.SetupQuestions()...)
}

// GetOptionsFromSetup maps setup answers to options. The subreddit name is
// taken verbatim.
func (s *Source) GetOptionsFromSetup(answers setup.Answers) Options {
	return Options{
		SubredditName: answers["subredditName"],
	}
}
