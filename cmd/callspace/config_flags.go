package main

import (
	"github.com/spf13/cobra"

	"callspace/internal/config"
)

func addConfigFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.String("config", "", "read this callspace.toml instead of searching for one")
	fs.String("formatter", "", "formatter executable (default clang-format)")
	fs.StringArray("formatter-arg", nil, "extra formatter argument, placed before the in-place flag (repeatable)")
	fs.Bool("no-format", false, "skip the formatter pass")
	fs.String("ext", "", "file extension to process (default .c)")
}

// loadConfig resolves the effective configuration: defaults, then
// callspace.toml, then command-line flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	fs := cmd.Flags()
	path, err := fs.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, err
	}

	if fs.Changed("formatter") {
		if cfg.Formatter.Command, err = fs.GetString("formatter"); err != nil {
			return config.Config{}, err
		}
		cfg.Formatter.Disabled = false
	}
	if fs.Changed("formatter-arg") {
		if cfg.Formatter.Args, err = fs.GetStringArray("formatter-arg"); err != nil {
			return config.Config{}, err
		}
	}
	noFormat, err := fs.GetBool("no-format")
	if err != nil {
		return config.Config{}, err
	}
	if noFormat {
		cfg.Formatter.Disabled = true
	}
	if fs.Changed("ext") {
		if cfg.Files.Extension, err = fs.GetString("ext"); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
