package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Sources  SourcesConfig  `yaml:"sources"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	State    StateConfig    `yaml:"state"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type SourcesConfig struct {
	Reddit RedditConfig `yaml:"reddit"`
}

type RedditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	SubredditName string `yaml:"subreddit_name"`
	TitleCase     bool   `yaml:"title_case"`

	// Client credentials. Both fall back to the built-in installed-app
	// credential when left empty.
	ClientID     string `yaml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty"`

	TokenURL          string `yaml:"token_url,omitempty"`
	APIURL            string `yaml:"api_url,omitempty"`
	GrantType         string `yaml:"grant_type,omitempty"`
	DeviceID          string `yaml:"device_id,omitempty"`
	UserAgent         string `yaml:"user_agent,omitempty"`
	RequestsPerMinute int    `yaml:"requests_per_minute,omitempty"`
	TimeoutSeconds    int    `yaml:"timeout_seconds,omitempty"`
}

type PipelineConfig struct {
	// IntervalSeconds re-executes the pipeline in watch mode. 0 runs once.
	IntervalSeconds int `yaml:"interval_seconds"`
}

type StateConfig struct {
	Driver string      `yaml:"driver"` // "file", "sqlite" or "redis"
	Path   string      `yaml:"path"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

const (
	DefaultTokenURL  = "https://www.reddit.com/api/v1/access_token"
	DefaultAPIURL    = "https://oauth.reddit.com"
	DefaultGrantType = "https://oauth.reddit.com/grants/installed_client"
	DefaultDeviceID  = "sourcebit-source-reddit"
	DefaultUserAgent = "sourcebit-source-reddit"
)

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// Default returns a configuration with every default applied, no subreddit
// set and the environment ignored.
func Default() *Config {
	cfg := &Config{}
	cfg.Sources.Reddit.Enabled = true
	applyDefaults(cfg)
	return cfg
}

// Load reads the yaml file at path, then layers .env and environment
// variables on top of it.
func Load(path string) (*Config, error) {
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}

	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadOrDefault behaves like Load but starts from Default when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(expandPath(path)); !os.IsNotExist(err) {
		return Load(path)
	}

	cfg := &Config{}
	cfg.Sources.Reddit.Enabled = true
	_ = godotenv.Load()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// SetSubreddit rewrites the config file at path with the reddit source
// enabled and subreddit_name set to name. Only values already in the file are
// kept; environment overrides and defaults are not written.
func SetSubreddit(path, name string) error {
	path = expandPath(path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return errors.Wrapf(err, "failed to parse config %s", path)
		}
	case os.IsNotExist(err):
	default:
		return errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg.Sources.Reddit.Enabled = true
	cfg.Sources.Reddit.SubredditName = name

	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	return os.WriteFile(path, out, 0600)
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("REDDIT_SUBREDDIT_NAME"); ok {
		cfg.Sources.Reddit.SubredditName = v
	}
	if v := strings.TrimSpace(os.Getenv("REDDIT_TITLE_CASE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid REDDIT_TITLE_CASE %q", v)
		}
		cfg.Sources.Reddit.TitleCase = b
	}
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		cfg.Sources.Reddit.ClientID = v
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		cfg.Sources.Reddit.ClientSecret = v
	}
	if v := os.Getenv("REDDIT_SOURCE_STATE_DRIVER"); v != "" {
		cfg.State.Driver = v
	}
	if v := os.Getenv("REDDIT_SOURCE_STATE_PATH"); v != "" {
		cfg.State.Path = v
	}
	if v := os.Getenv("REDDIT_SOURCE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	r := &cfg.Sources.Reddit
	if r.TokenURL == "" {
		r.TokenURL = DefaultTokenURL
	}
	if r.APIURL == "" {
		r.APIURL = DefaultAPIURL
	}
	if r.GrantType == "" {
		r.GrantType = DefaultGrantType
	}
	if r.DeviceID == "" {
		r.DeviceID = DefaultDeviceID
	}
	if r.UserAgent == "" {
		r.UserAgent = DefaultUserAgent
	}
	if r.RequestsPerMinute == 0 {
		r.RequestsPerMinute = 60
	}
	if r.TimeoutSeconds == 0 {
		r.TimeoutSeconds = 30
	}

	// State defaults
	if cfg.State.Driver == "" {
		cfg.State.Driver = "file"
	}
	if cfg.State.Path == "" {
		home, _ := os.UserHomeDir()
		name := "cache.json"
		if cfg.State.Driver == "sqlite" {
			name = "cache.db"
		}
		cfg.State.Path = filepath.Join(home, ".reddit-source", name)
	} else {
		cfg.State.Path = expandPath(cfg.State.Path)
	}
	if cfg.State.Redis.Address == "" {
		cfg.State.Redis.Address = "localhost:6379"
	}
	if cfg.State.Redis.Key == "" {
		cfg.State.Redis.Key = "reddit-source:context"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Path != "" {
		cfg.Logging.Path = expandPath(cfg.Logging.Path)
	}
}
