// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, Config{}.Validate(), "zero values fall back to component defaults")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"unknown backend", func(c *Config) { c.Source.Backend = "scopus" }, "Source.Backend fails oneof"},
		{"snapshot without path", func(c *Config) {
			c.Source.Backend = BackendSnapshot
			c.Source.SnapshotPath = ""
		}, "Source.SnapshotPath fails required_if"},
		{"bad email", func(c *Config) { c.OpenAlex.Email = "not-an-email" }, "OpenAlex.Email fails email"},
		{"bad base url", func(c *Config) { c.OpenAlex.BaseURL = "api.openalex.org" }, "OpenAlex.BaseURL fails http_url"},
		{"negative rate", func(c *Config) { c.OpenAlex.RateLimit = -1 }, "OpenAlex.RateLimit fails gte=0"},
		{"negative timeout", func(c *Config) { c.OpenAlex.Timeout = -time.Second }, "Timeout fails gte=0"},
		{"negative depth", func(c *Config) { c.Score.MaxDepth = -2 }, "Score.MaxDepth fails gte=0"},
		{"log level", func(c *Config) { c.Log.Level = "verbose" }, "Log.Level fails oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfigValidate_ReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trend.Workers = -1
	cfg.Profile.MaxWorks = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Trend.Workers")
	assert.Contains(t, err.Error(), "Profile.MaxWorks")
}
