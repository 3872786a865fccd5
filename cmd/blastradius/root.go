package main

import (
	"os"

	"github.com/spf13/cobra"

	"blastradius/internal/cache"
	"blastradius/internal/config"
	"blastradius/internal/logging"
)

var (
	projectFlag  string
	jsonFlag     bool
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "blastradius",
	Short: "blastradius - change impact analysis for TypeScript projects",
	Long: `blastradius maintains a live symbol-level dependency graph of a TypeScript
project and computes which symbols are threatened by pending changes, from
the VCS staging area, an editor buffer, or a natural-language "what if"
description.`,
	Version: cache.Version,
}

func init() {
	rootCmd.SetVersionTemplate("blastradius version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "",
		"Project root (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false,
		"Emit JSON instead of human-readable output")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error")
}

// loadConfig resolves the project root and reads blastradius.toml
func loadConfig() (*config.Config, *logging.Logger, error) {
	root := projectFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, err
		}
		root = wd
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}

	level := logging.Level(cfg.Logging.Level)
	if logLevelFlag != "" {
		level = logging.Level(logLevelFlag)
	}
	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  level,
	})
	return cfg, logger, nil
}

func outputFormat() OutputFormat {
	if jsonFlag {
		return FormatJSON
	}
	return FormatHuman
}
