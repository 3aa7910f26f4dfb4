// Package config loads run configuration from defaults, an optional
// samconvert.yaml, SAMCONVERT_ environment variables, and CLI flags, in
// rising precedence.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultInputDir  = "."
	DefaultOutputDir = "models"
	DefaultSource    = "tsql"
	DefaultTarget    = "snowflake"
)

// Config holds one conversion run's settings.
type Config struct {
	InputDir  string `koanf:"input_dir"`
	OutputDir string `koanf:"output_dir"`
	Source    string `koanf:"source"`
	Target    string `koanf:"target"`

	// Jobs bounds the parallel file workers. Zero means GOMAXPROCS.
	Jobs int `koanf:"jobs"`

	Verbose bool `koanf:"verbose"`
}

// EffectiveJobs resolves Jobs to a positive worker count.
func (c *Config) EffectiveJobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// Validate checks the configuration for values no run can proceed with.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input_dir must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	return nil
}

// findConfigFile finds the config file to use.
// Priority: explicit path > samconvert.yaml > samconvert.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"samconvert.yaml", "samconvert.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"input_dir":  DefaultInputDir,
		"output_dir": DefaultOutputDir,
		"source":     DefaultSource,
		"target":     DefaultTarget,
		"jobs":       0,
		"verbose":    false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables: SAMCONVERT_INPUT_DIR -> input_dir
	if err := k.Load(env.Provider("SAMCONVERT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SAMCONVERT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
