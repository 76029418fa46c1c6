// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the collab-finder CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/collab-finder/internal/engine"
	"github.com/pdiddy/collab-finder/internal/logging"
	"github.com/pdiddy/collab-finder/internal/metrics"
	"github.com/pdiddy/collab-finder/internal/profile"
	"github.com/pdiddy/collab-finder/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from .secrets/ and .env at startup.
	loadedSecrets secrets.Secrets

	// logger is built from the log.* settings before any command runs.
	logger = zap.NewNop()

	// registry collects the instruments dumped by --metrics.
	registry = metrics.New()
)

// rootCmd is the base command for the collab-finder CLI.
var rootCmd = &cobra.Command{
	Use:   "collab-finder",
	Short: "Find research collaborators and trending fields from bibliographic data",
	Long: `collab-finder scores how well two researchers would collaborate, ranks
trending topics and scientists, and renders co-authorship networks, using
OpenAlex (or a local SQLite snapshot) as its record source.

When the live source is unreachable every command falls back to a built-in
offline corpus, so results stay well-formed without network access.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		l, err := logging.New(cfg.Log.Mode, cfg.Log.Level)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.LoadAll(".secrets/", ".env", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug("loaded secrets", zap.Strings("keys", s.Keys()))
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		_ = logger.Sync()
		if dump, _ := cmd.Flags().GetBool("metrics"); dump {
			return registry.WriteText(os.Stderr)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./collab-finder.yaml or ~/.config/collab-finder/config.yaml)")
	pf.StringP("output", "o", "text", "output format: text, json or yaml")
	pf.String("backend", "", "record source: openalex, snapshot or offline")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.Bool("metrics", false, "print source metrics to stderr after the command")

	_ = viper.BindPFlag("source.backend", pf.Lookup("backend"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("collab-finder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "collab-finder"))
		}
	}

	viper.SetEnvPrefix("COLLAB_FINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps command errors to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, profile.ErrProfileUnavailable):
		return ExitProfileUnavailable
	case errors.Is(err, engine.ErrEmptyQuery):
		return ExitUsageError
	case errors.Is(err, errConfig):
		return ExitConfigError
	default:
		return ExitError
	}
}
