// Package config loads the blastradius configuration. The configuration is
// immutable for a run: commands load it once at startup and pass it down.
package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFileName is the per-project configuration file read from the root
const ConfigFileName = "blastradius.toml"

// Config represents the complete blastradius configuration
type Config struct {
	ProjectRoot string `mapstructure:"projectRoot" toml:"projectRoot"`

	Cache    CacheConfig    `mapstructure:"cache" toml:"cache"`
	Indexing IndexingConfig `mapstructure:"indexing" toml:"indexing"`
	Oracle   OracleConfig   `mapstructure:"oracle" toml:"oracle"`
	Resolver ResolverConfig `mapstructure:"resolver" toml:"resolver"`
	Logging  LoggingConfig  `mapstructure:"logging" toml:"logging"`
}

// CacheConfig controls the on-disk cache layout
type CacheConfig struct {
	DirName           string `mapstructure:"dirName" toml:"dirName"`
	ProjectConfigFile string `mapstructure:"projectConfigFile" toml:"projectConfigFile"`
}

// IndexingConfig controls rebuild and patch behavior
type IndexingConfig struct {
	BatchYieldSize int      `mapstructure:"batchYieldSize" toml:"batchYieldSize"`
	Extensions     []string `mapstructure:"extensions" toml:"extensions"`
}

// OracleConfig controls the intent oracle call and its grounding
type OracleConfig struct {
	Model             string `mapstructure:"model" toml:"model"`
	BaseURL           string `mapstructure:"baseUrl" toml:"baseUrl"`
	APIKeyEnv         string `mapstructure:"apiKeyEnv" toml:"apiKeyEnv"`
	MaxContextFiles   int    `mapstructure:"maxContextFiles" toml:"maxContextFiles"`
	MaxContextSymbols int    `mapstructure:"maxContextSymbols" toml:"maxContextSymbols"`
}

// ResolverConfig holds the intent resolver thresholds
type ResolverConfig struct {
	MaxResolvedHints    int     `mapstructure:"maxResolvedHints" toml:"maxResolvedHints"`
	MaxResolvedKeywords int     `mapstructure:"maxResolvedKeywords" toml:"maxResolvedKeywords"`
	RelevanceThreshold  float64 `mapstructure:"relevanceThreshold" toml:"relevanceThreshold"`
	HintAcceptScore     float64 `mapstructure:"hintAcceptScore" toml:"hintAcceptScore"`
	KeywordAcceptScore  float64 `mapstructure:"keywordAcceptScore" toml:"keywordAcceptScore"`
	HighConfidenceScore float64 `mapstructure:"highConfidenceScore" toml:"highConfidenceScore"`
	MedConfidenceScore  float64 `mapstructure:"medConfidenceScore" toml:"medConfidenceScore"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Format string `mapstructure:"format" toml:"format"`
	Level  string `mapstructure:"level" toml:"level"`
}

// Default returns the built-in configuration for the given project root
func Default(projectRoot string) *Config {
	return &Config{
		ProjectRoot: projectRoot,
		Cache: CacheConfig{
			DirName:           ".blastradius",
			ProjectConfigFile: "tsconfig.json",
		},
		Indexing: IndexingConfig{
			BatchYieldSize: 20,
			Extensions:     []string{".ts", ".tsx"},
		},
		Oracle: OracleConfig{
			Model:             "gpt-4o-mini",
			APIKeyEnv:         "OPENAI_API_KEY",
			MaxContextFiles:   150,
			MaxContextSymbols: 400,
		},
		Resolver: ResolverConfig{
			MaxResolvedHints:    20,
			MaxResolvedKeywords: 10,
			RelevanceThreshold:  0.30,
			HintAcceptScore:     0.45,
			KeywordAcceptScore:  0.25,
			HighConfidenceScore: 0.85,
			MedConfidenceScore:  0.45,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads blastradius.toml from the project root, overlaying the defaults.
// A missing file is not an error; the defaults apply.
func Load(projectRoot string) (*Config, error) {
	cfg := Default(projectRoot)

	v := viper.New()
	v.SetConfigFile(filepath.Join(projectRoot, ConfigFileName))
	v.SetConfigType("toml")
	v.SetEnvPrefix("BLASTRADIUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file falls back to defaults; anything else is real.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || isNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.ProjectRoot = projectRoot
	return cfg, nil
}

// CacheDir returns the absolute cache directory path
func (c *Config) CacheDir() string {
	return filepath.Join(c.ProjectRoot, c.Cache.DirName)
}

// ProjectConfigPath returns the absolute project-configuration path
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ProjectRoot, c.Cache.ProjectConfigFile)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
