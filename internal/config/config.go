// Package config loads callspace.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"callspace/internal/discover"
	"callspace/internal/formatter"
)

// FileName is the name of the configuration file.
const FileName = "callspace.toml"

// Config is the effective configuration of a run.
type Config struct {
	Formatter FormatterConfig `toml:"formatter"`
	Files     FilesConfig     `toml:"files"`

	// Path is the file the configuration was read from; empty for defaults.
	Path string `toml:"-"`
}

// FormatterConfig describes the external formatter.
type FormatterConfig struct {
	Command  string   `toml:"command"`
	Args     []string `toml:"args"`
	Disabled bool     `toml:"disabled"`
}

// FilesConfig selects the files a run processes.
type FilesConfig struct {
	Extension string `toml:"extension"`
}

// Default returns the configuration used when no callspace.toml exists:
// clang-format over *.c files.
func Default() Config {
	return Config{
		Formatter: FormatterConfig{Command: formatter.DefaultTool},
		Files:     FilesConfig{Extension: discover.DefaultExtension},
	}
}

// Find walks up from startDir to locate callspace.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover returns the configuration found from startDir, or Default when
// there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path on top of Default. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the invariants of an effective configuration.
func (c Config) Validate() error {
	ext := c.Files.Extension
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 || strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("[files].extension must look like \".c\", got %q", ext)
	}
	if !c.Formatter.Disabled && strings.TrimSpace(c.Formatter.Command) == "" {
		return errors.New("[formatter].command is required unless the formatter is disabled")
	}
	return nil
}

// NewFormatter builds the formatter collaborator, or nil when it is disabled.
func (c Config) NewFormatter() formatter.Formatter {
	if c.Formatter.Disabled {
		return nil
	}
	return c.command()
}

// NewPreviewer builds the stdout formatter used by check, or nil when the
// formatter is disabled.
func (c Config) NewPreviewer() formatter.Previewer {
	if c.Formatter.Disabled {
		return nil
	}
	return c.command()
}

func (c Config) command() *formatter.Command {
	cmd := formatter.NewClangFormat(c.Formatter.Args...)
	cmd.Name = c.Formatter.Command
	return cmd
}
