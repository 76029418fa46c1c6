// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"cmp"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/collab-finder/internal/engine"
	"github.com/pdiddy/collab-finder/internal/fallback"
	"github.com/pdiddy/collab-finder/internal/offline"
	"github.com/pdiddy/collab-finder/internal/report"
	"github.com/pdiddy/collab-finder/internal/secrets"
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/internal/source/openalex"
	"github.com/pdiddy/collab-finder/internal/source/snapshot"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// errConfig marks configuration failures for exit code mapping.
var errConfig = errors.New("configuration error")

// setDefaults registers every key of types.DefaultConfig with viper so that
// environment overrides apply to keys absent from the config file.
func setDefaults() {
	d := types.DefaultConfig()
	viper.SetDefault("source.backend", string(d.Source.Backend))
	viper.SetDefault("source.snapshot_path", d.Source.SnapshotPath)
	viper.SetDefault("openalex.base_url", d.OpenAlex.BaseURL)
	viper.SetDefault("openalex.email", d.OpenAlex.Email)
	viper.SetDefault("openalex.rate_limit", d.OpenAlex.RateLimit)
	viper.SetDefault("openalex.timeout", d.OpenAlex.Timeout)
	viper.SetDefault("openalex.user_agent", d.OpenAlex.UserAgent)
	viper.SetDefault("openalex.max_retries", d.OpenAlex.MaxRetries)
	viper.SetDefault("fallback.failure_threshold", d.Fallback.FailureThreshold)
	viper.SetDefault("fallback.open_timeout", d.Fallback.OpenTimeout)
	viper.SetDefault("offline.corpus_path", d.Offline.CorpusPath)
	viper.SetDefault("profile.max_works", d.Profile.MaxWorks)
	viper.SetDefault("profile.max_authors_per_work", d.Profile.MaxAuthorsPerWork)
	viper.SetDefault("trend.window_months", d.Trend.WindowMonths)
	viper.SetDefault("trend.limit", d.Trend.Limit)
	viper.SetDefault("trend.workers", d.Trend.Workers)
	viper.SetDefault("score.max_depth", d.Score.MaxDepth)
	viper.SetDefault("engine.default_user_id", d.Engine.DefaultUserID)
	viper.SetDefault("log.mode", d.Log.Mode)
	viper.SetDefault("log.level", d.Log.Level)
}

// loadConfig returns the effective configuration. Unmarshal failures fall
// back to the defaults with a warning.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Warn("invalid configuration, using defaults", zap.Error(err))
		return types.DefaultConfig()
	}
	return cfg
}

// outputFormat reads the --output flag.
func outputFormat(cmd *cobra.Command) (report.Format, error) {
	s, _ := cmd.Flags().GetString("output")
	return report.ParseFormat(s)
}

// loadCorpus returns the embedded corpus or the one at cfg.Offline.CorpusPath.
func loadCorpus(cfg types.Config) (*offline.Corpus, error) {
	if cfg.Offline.CorpusPath != "" {
		c, err := offline.LoadFile(cfg.Offline.CorpusPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errConfig, err)
		}
		return c, nil
	}
	c, err := offline.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}
	return c, nil
}

// liveSource builds the configured live backend. The returned close function
// is never nil. A nil source means offline-only operation.
func liveSource(cfg types.Config) (source.Source, func(), error) {
	noop := func() {}
	switch cfg.Source.Backend {
	case types.BackendOpenAlex, "":
		oa := cfg.OpenAlex
		c := openalex.NewClient(
			openalex.WithBaseURL(oa.BaseURL),
			openalex.WithEmail(loadedSecrets.Get(secrets.OpenAlexEmail, oa.Email)),
			openalex.WithAPIKey(loadedSecrets.Get(secrets.OpenAlexAPIKey, "")),
			openalex.WithUserAgent(oa.UserAgent),
			openalex.WithRateLimit(oa.RateLimit),
			openalex.WithMaxRetries(oa.MaxRetries),
			openalex.WithHTTPClient(httpClient(oa.Timeout)),
			openalex.WithLogger(logger),
		)
		return c, noop, nil
	case types.BackendSnapshot:
		store, err := snapshot.Open(cfg.Source.SnapshotPath, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %w", errConfig, err)
		}
		return store, func() { store.Close() }, nil
	case types.BackendOffline:
		return nil, noop, nil
	}
	return nil, noop, fmt.Errorf("%w: unknown source backend %q", errConfig, cfg.Source.Backend)
}

func httpClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: cmp.Or(timeout, 15*time.Second)}
}

// buildEngine wires the configured sources, fallback resolver and engine.
func buildEngine() (*engine.Engine, *fallback.Resolver, func(), error) {
	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", errConfig, err)
	}
	corpus, err := loadCorpus(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	live, closeLive, err := liveSource(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	r := fallback.New(live, corpus,
		fallback.WithLogger(logger),
		fallback.WithMetrics(registry),
		fallback.WithBreaker(cfg.Fallback),
	)
	e := engine.New(r, cfg,
		engine.WithLogger(logger),
		engine.WithMetrics(registry),
	)
	return e, r, closeLive, nil
}
