package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/sokinpui/dartfix/cli"
)

// File mirrors the settings that may be given in a config file.
// Flags given on the command line win over file values.
type File struct {
	Extensions []string    `mapstructure:"extensions"`
	Exclude    []string    `mapstructure:"exclude"`
	DryRun     bool        `mapstructure:"dryRun"`
	Diff       bool        `mapstructure:"diff"`
	Markdown   bool        `mapstructure:"markdown"`
	Jobs       int         `mapstructure:"jobs"`
	Verbose    bool        `mapstructure:"verbose"`
	Nvim       NvimSection `mapstructure:"nvim"`
}

// NvimSection stores editor integration settings.
type NvimSection struct {
	Address string `mapstructure:"address"`
}

// Load reads the config file at path. The format follows the extension
// (yaml, toml, json). Environment variables are not consulted.
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("extensions", []string{cli.DefaultExtension})
	v.SetDefault("jobs", 1)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &f, nil
}

// Apply copies file values into cfg for every flag not set on the command line.
func (f *File) Apply(cfg *cli.Config) error {
	if !cfg.IsSet("extension") && len(f.Extensions) > 0 {
		cfg.Extensions = cli.NormalizeExtensions(f.Extensions)
	}
	if !cfg.IsSet("exclude") && len(f.Exclude) > 0 {
		cfg.Exclude = f.Exclude
	}
	if !cfg.IsSet("dry-run") {
		cfg.DryRun = f.DryRun
	}
	if !cfg.IsSet("diff") {
		cfg.Diff = f.Diff
	}
	if !cfg.IsSet("markdown") {
		cfg.Markdown = f.Markdown
	}
	if !cfg.IsSet("verbose") {
		cfg.Verbose = f.Verbose
	}
	if !cfg.IsSet("jobs") {
		if f.Jobs < 1 {
			return fmt.Errorf("jobs must be at least 1, got %d", f.Jobs)
		}
		cfg.Jobs = f.Jobs
	}
	if !cfg.IsSet("nvim") && f.Nvim.Address != "" {
		cfg.Nvim = f.Nvim.Address
	}
	return nil
}

// LoadInto loads cfg.ConfigFile, if any, and merges it under the flags.
func LoadInto(cfg *cli.Config) error {
	if cfg.ConfigFile == "" {
		return nil
	}
	f, err := Load(cfg.ConfigFile)
	if err != nil {
		return err
	}
	return f.Apply(cfg)
}
