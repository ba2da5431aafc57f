package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/designcise/hawkbit/pkg/logger"
)

// Configuration keys read by the framework.
const (
	ConfigError             = "error"
	ConfigErrorCatch        = "error.catch"
	ConfigLogLevel          = "log.level"
	ConfigLogFormat         = "log.format"
	ConfigSentryDSN         = "sentry.dsn"
	ConfigSentryEnvironment = "sentry.environment"
	ConfigServerAddress     = "server.address"
)

// Environment variables consulted by LoadConfig.
const (
	EnvConfigPath  = "HAWKBIT_CONFIG"
	EnvError       = "HAWKBIT_ERROR"
	EnvErrorCatch  = "HAWKBIT_ERROR_CATCH"
	EnvLogLevel    = "HAWKBIT_LOG_LEVEL"
	EnvSentryDSN   = "HAWKBIT_SENTRY_DSN"
	defaultCfgFile = "hawkbit.yaml"
)

// Config is a key/value store with dot-path lookup.
// A key is first looked up as-is, so flat keys such as "error.catch" win;
// otherwise the key is split on dots and resolved through nested maps.
type Config struct {
	values map[string]any
	mu     sync.RWMutex
}

// NewConfig creates a config holding a copy of values.
func NewConfig(values map[string]any) *Config {
	c := &Config{values: make(map[string]any, len(values))}
	maps.Copy(c.values, values)
	return c
}

// DefaultConfig returns the built-in defaults. Only the error keys are
// preset; the rest are resolved by their readers. Merge lets nested YAML
// sections override the flat defaults.
func DefaultConfig() *Config {
	return NewConfig(map[string]any{
		ConfigError:      false,
		ConfigErrorCatch: true,
	})
}

// Get returns the value at key and whether it exists.
func (c *Config) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if v, ok := c.values[key]; ok {
		return v, true
	}

	var cur any = c.values
	for part := range strings.SplitSeq(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func (c *Config) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Bool returns the value at key as a bool, or def when it is missing or
// not convertible. Strings are parsed with strconv.ParseBool.
func (c *Config) Bool(key string, def bool) bool {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	case int:
		return b != 0
	}
	return def
}

// String returns the value at key formatted as a string, or def.
func (c *Config) String(key, def string) string {
	v, ok := c.Get(key)
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	if _, isMap := asMap(v); isMap {
		return def
	}
	return fmt.Sprint(v)
}

// Set stores value under the flat key.
func (c *Config) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Merge copies every top-level entry of values over the current ones.
// A nested section overrides the flat keys it spells out, so a merged
// "error: {catch: false}" replaces an earlier "error.catch". Flat keys in
// values itself are kept.
func (c *Config) Merge(values map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range values {
		if m, ok := asMap(v); ok {
			c.dropFlat(k, m)
		}
	}
	maps.Copy(c.values, values)
}

// dropFlat deletes the flat keys shadowed by the section m under prefix.
func (c *Config) dropFlat(prefix string, m map[string]any) {
	for k, v := range m {
		key := prefix + "." + k
		delete(c.values, key)
		if sub, ok := asMap(v); ok {
			c.dropFlat(key, sub)
		}
	}
}

// All returns a shallow copy of the stored values.
func (c *Config) All() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.values)
}

// LoadConfig builds a config from the defaults, then a YAML file, then
// environment overrides. The file is path, or $HAWKBIT_CONFIG, or
// ./hawkbit.yaml. A missing file is an error only when it was named
// explicitly.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path == "" {
		path = defaultCfgFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		values := make(map[string]any)
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Merge(values)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	for env, key := range map[string]string{
		EnvError:      ConfigError,
		EnvErrorCatch: ConfigErrorCatch,
		EnvLogLevel:   ConfigLogLevel,
		EnvSentryDSN:  ConfigSentryDSN,
	} {
		if v, ok := os.LookupEnv(env); ok {
			cfg.Set(key, v)
		}
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// LoggerOptions maps the log.* and sentry.* keys to logger options.
// An unknown level is reported and info is used.
func (c *Config) LoggerOptions() (logger.Options, error) {
	lvl, err := logger.ParseLevel(c.String(ConfigLogLevel, "info"))
	return logger.Options{
		Format: c.String(ConfigLogFormat, logger.FormatJSON),
		Level:  lvl,
		Sentry: logger.SentryConfig{
			DSN:         c.String(ConfigSentryDSN, ""),
			Environment: c.String(ConfigSentryEnvironment, ""),
		},
	}, err
}
