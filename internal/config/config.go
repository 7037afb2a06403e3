// Package config loads jqcty settings from defaults, a jqcty.yaml file,
// JQCTY_ environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/jqcty/internal/source"
)

// DefaultFile is the config file looked up in the working directory when no
// explicit path is given.
const DefaultFile = "jqcty.yaml"

// EnvPrefix prefixes environment overrides, e.g. JQCTY_LANGUAGE or
// JQCTY_SERVER_ADDR.
const EnvPrefix = "JQCTY_"

// Defaults.
const (
	DefaultLanguage      = "jq"
	DefaultChannel       = "text"
	DefaultInputFormat   = "auto"
	DefaultConcurrency   = 4
	DefaultLogLevel      = "info"
	DefaultServerAddr    = "127.0.0.1:8080"
	DefaultServerTimeout = 30 * time.Second
)

// Config holds resolved settings.
type Config struct {
	Language    string       `koanf:"language"`
	Channel     string       `koanf:"channel"`
	InputFormat string       `koanf:"input_format"`
	CachePath   string       `koanf:"cache_path"`
	Concurrency int          `koanf:"concurrency"`
	LogLevel    string       `koanf:"log_level"`
	Server      ServerConfig `koanf:"server"`

	// File is the config file that was loaded, or "" when none was.
	File string `koanf:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr    string        `koanf:"addr"`
	Timeout time.Duration `koanf:"timeout"`
}

// flagKeys maps flag names to config keys where they differ from the
// kebab-to-snake rule.
var flagKeys = map[string]string{
	"cache":   "cache_path",
	"addr":    "server.addr",
	"timeout": "server.timeout",
}

// Load resolves configuration. cfgFile may be empty, in which case
// jqcty.yaml in the working directory is used when present. Only flags that
// were explicitly set override lower layers; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"language":       DefaultLanguage,
		"channel":        DefaultChannel,
		"input_format":   DefaultInputFormat,
		"cache_path":     "",
		"concurrency":    DefaultConcurrency,
		"log_level":      DefaultLogLevel,
		"server.addr":    DefaultServerAddr,
		"server.timeout": DefaultServerTimeout.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: JQCTY_CACHE_PATH -> cache_path, JQCTY_SERVER_ADDR -> server.addr
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "server_"); ok {
		return "server." + rest
	}
	return key
}

// findConfigFile returns the explicit path, which must exist, or the
// default file when it exists, or "".
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile, nil
	}
	return "", nil
}

// Validate checks values that do not depend on registered components. The
// query language is checked by the processor, which knows its evaluators.
func (c *Config) Validate() error {
	var errs []error

	switch c.Channel {
	case "text", "native", "typed":
	default:
		errs = append(errs, fmt.Errorf("channel must be text, native or typed, got %q", c.Channel))
	}

	if _, err := source.ParseFormat(c.InputFormat); err != nil {
		errs = append(errs, fmt.Errorf("input_format: %w", err))
	}

	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if c.Server.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
