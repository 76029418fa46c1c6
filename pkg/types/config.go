// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by the live record source.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "collab-finder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
}

// SourceBackend selects the live record source.
type SourceBackend string

const (
	BackendOpenAlex SourceBackend = "openalex"
	BackendSnapshot SourceBackend = "snapshot"
	BackendOffline  SourceBackend = "offline"
)

// SourceConfig selects and configures the live record source.
type SourceConfig struct {
	// Backend is openalex, snapshot, or offline (no live source).
	Backend SourceBackend `json:"backend" yaml:"backend" mapstructure:"backend" validate:"omitempty,oneof=openalex snapshot offline"`

	// SnapshotPath is the SQLite file used by the snapshot backend.
	SnapshotPath string `json:"snapshot_path" yaml:"snapshot_path" mapstructure:"snapshot_path" validate:"required_if=Backend snapshot"`
}

// OpenAlexConfig holds settings for the OpenAlex client.
type OpenAlexConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the API root (default https://api.openalex.org).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"omitempty,http_url"`

	// Email is sent as mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`

	// RateLimit is the sustained request rate in requests per second (default 10).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`
}

// FallbackConfig tunes the circuit breaker in front of the live source.
type FallbackConfig struct {
	// FailureThreshold is the number of consecutive live failures that opens
	// the breaker (default 3).
	FailureThreshold uint32 `json:"failure_threshold" yaml:"failure_threshold" mapstructure:"failure_threshold"`

	// OpenTimeout is how long the breaker stays open before probing (default 30s).
	OpenTimeout time.Duration `json:"open_timeout" yaml:"open_timeout" mapstructure:"open_timeout" validate:"gte=0"`
}

// OfflineConfig points at an alternative offline corpus.
type OfflineConfig struct {
	// CorpusPath replaces the embedded corpus when set.
	CorpusPath string `json:"corpus_path" yaml:"corpus_path" mapstructure:"corpus_path"`
}

// ProfileConfig bounds profile construction.
type ProfileConfig struct {
	// MaxWorks caps the works kept per profile (default 200).
	MaxWorks int `json:"max_works" yaml:"max_works" mapstructure:"max_works" validate:"gte=0"`

	// MaxAuthorsPerWork limits pairwise co-author edges on very large
	// author lists (default 100).
	MaxAuthorsPerWork int `json:"max_authors_per_work" yaml:"max_authors_per_work" mapstructure:"max_authors_per_work" validate:"gte=0"`
}

// TrendConfig holds settings for trend ranking.
type TrendConfig struct {
	// WindowMonths is the length of each comparison window (default 6).
	WindowMonths int `json:"window_months" yaml:"window_months" mapstructure:"window_months" validate:"gte=0"`

	// Limit is the default number of entries per list (default 5, max 20).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit" validate:"gte=0"`

	// Workers bounds concurrent enrichment lookups (default 8).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gte=0"`
}

// ScoreConfig holds settings for compatibility scoring.
type ScoreConfig struct {
	// MaxDepth bounds the co-author BFS (default 6).
	MaxDepth int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth" validate:"gte=0"`
}

// EngineConfig holds request-level defaults.
type EngineConfig struct {
	// DefaultUserID is compared against when no user id is supplied.
	DefaultUserID string `json:"default_user_id" yaml:"default_user_id" mapstructure:"default_user_id"`
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	// Mode is "production" (JSON) or "development" (console).
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=production development"`

	// Level is debug, info, warn, or error.
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Config groups all settings.
type Config struct {
	Source   SourceConfig   `json:"source" yaml:"source" mapstructure:"source"`
	OpenAlex OpenAlexConfig `json:"openalex" yaml:"openalex" mapstructure:"openalex"`
	Fallback FallbackConfig `json:"fallback" yaml:"fallback" mapstructure:"fallback"`
	Offline  OfflineConfig  `json:"offline" yaml:"offline" mapstructure:"offline"`
	Profile  ProfileConfig  `json:"profile" yaml:"profile" mapstructure:"profile"`
	Trend    TrendConfig    `json:"trend" yaml:"trend" mapstructure:"trend"`
	Score    ScoreConfig    `json:"score" yaml:"score" mapstructure:"score"`
	Engine   EngineConfig   `json:"engine" yaml:"engine" mapstructure:"engine"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// Default values shared by the config layer and the components that fall
// back to them when given zero values.
const (
	DefaultWindowMonths      = 6
	DefaultTrendLimit        = 5
	MaxTrendLimit            = 20
	DefaultTrendWorkers      = 8
	DefaultMaxWorks          = 200
	DefaultMaxAuthorsPerWork = 100
	DefaultMaxDepth          = 6
	DefaultUserID            = "https://openalex.org/A1969205032"
)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			Backend:      BackendOpenAlex,
			SnapshotPath: "data/snapshot.db",
		},
		OpenAlex: OpenAlexConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    15 * time.Second,
				UserAgent:  "collab-finder/0.1",
				MaxRetries: 5,
			},
			BaseURL:   "https://api.openalex.org",
			RateLimit: 10,
		},
		Fallback: FallbackConfig{
			FailureThreshold: 3,
			OpenTimeout:      30 * time.Second,
		},
		Profile: ProfileConfig{
			MaxWorks:          DefaultMaxWorks,
			MaxAuthorsPerWork: DefaultMaxAuthorsPerWork,
		},
		Trend: TrendConfig{
			WindowMonths: DefaultWindowMonths,
			Limit:        DefaultTrendLimit,
			Workers:      DefaultTrendWorkers,
		},
		Score:  ScoreConfig{MaxDepth: DefaultMaxDepth},
		Engine: EngineConfig{DefaultUserID: DefaultUserID},
		Log:    LogConfig{Mode: "development", Level: "info"},
	}
}
