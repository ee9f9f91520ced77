package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/funvibe/basekit/internal/prettyprinter"
)

// Settings are the CLI options shared by every command.
type Settings struct {
	LogLevel string `koanf:"log_level"`
	Color    string `koanf:"color"`
	Format   string `koanf:"format"`

	// File is the settings file that was read, empty when none was.
	File string `koanf:"-"`
}

const (
	DefaultLogLevel = "warn"
	DefaultColor    = "auto"
	DefaultFormat   = string(prettyprinter.FormatTable)

	envPrefix = "BASEKIT_"
)

// DefaultSettingsFiles are tried in the working directory when no --config
// flag is given.
var DefaultSettingsFiles = []string{"basekit.yaml", "basekit.yml"}

func findSettingsFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultSettingsFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// LoadSettings merges defaults, the settings file, BASEKIT_* environment
// variables and explicitly set flags, in increasing precedence.
func LoadSettings(cfgFile string, flags *pflag.FlagSet) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"log_level": DefaultLogLevel,
		"color":     DefaultColor,
		"format":    DefaultFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findSettingsFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading settings file %s: %w", used, err)
		}
	}

	// BASEKIT_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	s.File = used
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every setting against its allowed values.
func (s *Settings) Validate() error {
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", s.LogLevel)
	}
	switch s.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q (want auto, always or never)", s.Color)
	}
	if _, err := prettyprinter.ParseFormat(s.Format); err != nil {
		return err
	}
	return nil
}
