// Package config handles tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Kingy2709/pdf-tools/internal/dedup"
	"github.com/Kingy2709/pdf-tools/internal/filename"
)

// Config represents configuration stored in ~/.config/pdf-tools/config.yml.
// Every field has a working default so a missing file is not an error.
type Config struct {
	Library    string   `yaml:"library,omitempty"`     // default library root for runs
	KeepPolicy string   `yaml:"keep_policy,omitempty"` // clean-suffix, largest, newest, newest-largest
	NameStyle  string   `yaml:"name_style,omitempty"`  // author-year-title or year-author-title
	MaxNameLen int      `yaml:"max_name_len,omitempty"`
	YearDigits int      `yaml:"year_digits,omitempty"` // 4 or 2
	Stopwords  bool     `yaml:"strip_stopwords,omitempty"`
	MaxPages   int      `yaml:"max_pages,omitempty"` // pages of text extracted per document
	Tags       []string `yaml:"tags,omitempty"`      // appended to the keywords field on writes
	Mailto     string   `yaml:"mailto,omitempty"`    // contact address sent to the lookup service
	BackupDir  string   `yaml:"backup_dir,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "pdf-tools"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		KeepPolicy: string(dedup.CleanSuffix),
		NameStyle:  string(filename.AuthorYearTitle),
		MaxNameLen: filename.DefaultMaxLen,
		YearDigits: 4,
		MaxPages:   3,
	}
}

// Path returns the config file location. Respects XDG_CONFIG_HOME,
// defaults to ~/.config/pdf-tools/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the configuration at path, layering it over the defaults.
// A missing file returns the defaults, not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks enum fields and numeric ranges.
func (c *Config) Validate() error {
	if c.KeepPolicy != "" {
		if _, err := dedup.ParsePolicy(c.KeepPolicy); err != nil {
			return err
		}
	}
	switch filename.Style(c.NameStyle) {
	case "", filename.AuthorYearTitle, filename.YearAuthorTitle:
	default:
		return fmt.Errorf("unknown name style %q", c.NameStyle)
	}
	if c.YearDigits != 0 && c.YearDigits != 2 && c.YearDigits != 4 {
		return fmt.Errorf("year_digits must be 2 or 4, got %d", c.YearDigits)
	}
	if c.MaxNameLen != 0 && c.MaxNameLen < filename.MinLen {
		return fmt.Errorf("max_name_len must be at least %d, got %d", filename.MinLen, c.MaxNameLen)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max_pages must be positive, got %d", c.MaxPages)
	}
	return nil
}

// Policy returns the parsed keeper policy.
func (c *Config) Policy() dedup.Policy {
	p, err := dedup.ParsePolicy(c.KeepPolicy)
	if err != nil {
		return dedup.CleanSuffix
	}
	return p
}

// Style returns the parsed filename style.
func (c *Config) Style() filename.Style {
	if filename.Style(c.NameStyle) == filename.YearAuthorTitle {
		return filename.YearAuthorTitle
	}
	return filename.AuthorYearTitle
}
