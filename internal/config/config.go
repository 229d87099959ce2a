package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Family is the configuration for one directive-defined group. A bare
// string in the config file is shorthand for just the title.
type Family struct {
	Title string `mapstructure:"title"`
	Desc  string `mapstructure:"desc"`
	Order *int   `mapstructure:"order"`
}

type ProjectConfig struct {
	// Package is the default package pattern to document.
	Package   string `mapstructure:"package"`
	DocsDir   string `mapstructure:"docs_dir"`
	SiteTitle string `mapstructure:"site_title"`
	SiteURL   string `mapstructure:"site_url"`
}

type DiscoveryConfig struct {
	// Manifest points at a pre-exported API manifest; when set it replaces
	// source loading.
	Manifest string   `mapstructure:"manifest"`
	Exclude  []string `mapstructure:"exclude"`
	Include  []string `mapstructure:"include"`
}

type SourceLinkConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Repo    string `mapstructure:"repo"`
	Branch  string `mapstructure:"branch"`
}

type BuildConfig struct {
	Tool           string `mapstructure:"tool"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type Config struct {
	Project   ProjectConfig     `mapstructure:"project"`
	Discovery DiscoveryConfig   `mapstructure:"discovery"`
	Families  map[string]Family `mapstructure:"families"`
	Source    SourceLinkConfig  `mapstructure:"source"`
	Build     BuildConfig       `mapstructure:"build"`
}

// cacheBase returns the base cache directory for docsmith.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/docsmith as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "docsmith")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "docsmith")
	}
	return filepath.Join(os.TempDir(), "docsmith")
}

// StatePath returns the path to the DuckDB build-state database file.
func StatePath() string {
	return filepath.Join(cacheBase(), "state.db")
}

// SnapshotDir returns the directory holding compressed API snapshots.
func SnapshotDir() string {
	return filepath.Join(cacheBase(), "snapshots")
}

func InitializeViper() error {
	viper.SetConfigName("docsmith")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "docsmith"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "docsmith"))
	}

	viper.SetDefault("project.docs_dir", "docs")
	viper.SetDefault("project.package", "./...")
	viper.SetDefault("source.enabled", true)
	viper.SetDefault("build.tool", "quarto")
	viper.SetDefault("build.timeout_seconds", 900)

	viper.SetEnvPrefix("DOCSMITH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// stringToFamilyHookFunc lets `families.validation = "Validation Tools"` be
// shorthand for a table with only a title.
func stringToFamilyHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(Family{}) {
			return data, nil
		}
		if f.Kind() == reflect.String {
			return Family{Title: data.(string)}, nil
		}
		return data, nil
	}
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToFamilyHookFunc(),
		Result:     &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// NormalizeFamilyKey maps a %family value onto its config key: lowercased,
// with spaces and underscores flattened to hyphens.
func NormalizeFamilyKey(name string) string {
	key := strings.ToLower(name)
	key = strings.ReplaceAll(key, " ", "-")
	return strings.ReplaceAll(key, "_", "-")
}

// FamilyFor looks up the configuration for a %family value by its
// normalized key.
func (c *Config) FamilyFor(name string) (Family, bool) {
	fam, ok := c.Families[NormalizeFamilyKey(name)]
	return fam, ok
}
