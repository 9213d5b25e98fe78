// Package config provides layered configuration for idhue.
//
// Values come from four layers, each overriding the previous one:
// built-in defaults, a TOML or YAML file, IDHUE_ environment variables
// and explicit overrides such as command-line flags. Section accessors
// return typed snapshots. When watching is enabled the file is reloaded
// on change and subscribers are notified.
package config

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/dshills/idhue/internal/config/loader"
	"github.com/dshills/idhue/internal/config/watcher"
	"github.com/dshills/idhue/internal/logging"
	"github.com/dshills/idhue/internal/palette"
	"github.com/dshills/idhue/internal/schedule"
)

// Config provides access to the merged configuration.
type Config struct {
	mu sync.RWMutex

	fs        loader.FileSystem
	path      string
	envPrefix string
	defaults  map[string]any
	overrides map[string]any
	merged    map[string]any

	enableWatcher bool
	watcher       *watcher.Watcher
	handlers      []func(*Config)

	logger zerolog.Logger
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the configuration file. Its extension selects the format.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithDefaults layers m over the built-in defaults.
func WithDefaults(m map[string]any) Option {
	return func(c *Config) {
		c.defaults = loader.DeepMerge(c.defaults, m)
	}
}

// WithEnvPrefix sets the environment variable prefix, including the
// trailing underscore.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithWatcher enables reloading the file when it changes.
func WithWatcher(enable bool) Option {
	return func(c *Config) {
		c.enableWatcher = enable
	}
}

// WithFS sets the file system the file is read from.
func WithFS(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// New creates a Config. Call Load before reading settings; until then
// only the built-in defaults are visible.
func New(opts ...Option) *Config {
	c := &Config{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		overrides: make(map[string]any),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.merged = loader.DeepMerge(defaultConfig(), c.defaults)
	return c
}

// Load reads every layer, validates the result and, if enabled, starts
// watching the file. The context supplies the logger.
func (c *Config) Load(ctx context.Context) error {
	logger := logging.FromContext(ctx, "config")

	merged, err := c.build()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.merged = merged
	c.logger = logger
	c.mu.Unlock()

	if c.enableWatcher && c.path != "" {
		if err := c.startWatcher(); err != nil {
			return err
		}
	}
	logger.Debug().Str("file", c.path).Msg("configuration loaded")
	return nil
}

// Reload re-reads every layer. On failure the previous configuration is
// kept. Subscribers are notified after a successful reload.
func (c *Config) Reload() error {
	merged, err := c.build()
	if err != nil {
		c.mu.RLock()
		logger := c.logger
		c.mu.RUnlock()
		logger.Warn().Err(err).Str("file", c.path).Msg("configuration reload failed")
		return err
	}

	c.mu.Lock()
	c.merged = merged
	logger := c.logger
	handlers := append([]func(*Config){}, c.handlers...)
	c.mu.Unlock()

	logger.Info().Str("file", c.path).Msg("configuration reloaded")
	for _, fn := range handlers {
		fn(c)
	}
	return nil
}

// OnChange registers fn to run after every successful reload. It runs on
// the watcher's goroutine.
func (c *Config) OnChange(fn func(*Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
}

// Close stops watching the file.
func (c *Config) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Close()
}

// SetLogger replaces the logger picked up by Load. Callers whose logger
// is itself configured here use it once the configuration is loaded.
func (c *Config) SetLogger(l zerolog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logging.WithComponent(l, "config")
}

// Path returns the configuration file path, or "" if there is none.
func (c *Config) Path() string {
	return c.path
}

// Set overrides a setting above every other layer. The change is
// rejected if the result fails validation.
func (c *Config) Set(path string, value any) error {
	c.mu.RLock()
	probe := loader.Clone(c.merged)
	overrides := loader.Clone(c.overrides)
	c.mu.RUnlock()

	if err := setPath(probe, path, value); err != nil {
		return err
	}
	if err := setPath(overrides, path, value); err != nil {
		return err
	}
	merged, err := c.buildWith(overrides)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.overrides = overrides
	c.merged = merged
	c.mu.Unlock()
	return nil
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getPath(c.merged, path)
}

// Merged returns a copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.merged)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, &TypeError{Path: path, Expected: "int", Actual: "float64"}
		}
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetFloat returns a float64 value at the given path.
func (c *Config) GetFloat(path string) (float64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float64", Actual: typeName(v)}
	}
}

// GetDuration returns a duration at the given path. Strings use
// time.ParseDuration syntax; bare integers are milliseconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case int:
		return time.Duration(val) * time.Millisecond, nil
	case int64:
		return time.Duration(val) * time.Millisecond, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: "string " + val}
		}
		return d, nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// GetStringSlice returns a string slice at the given path.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	v, ok := c.Get(path)
	if !ok {
		return nil, ErrSettingNotFound
	}
	return toStringSlice(path, v)
}

func toStringSlice(path string, v any) ([]string, error) {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...), nil
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Path: path, Expected: "[]string", Actual: "[]" + typeName(item)}
			}
			result[i] = s
		}
		return result, nil
	case string:
		return []string{val}, nil
	default:
		return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
	}
}

// build merges every layer and validates the result.
func (c *Config) build() (map[string]any, error) {
	c.mu.RLock()
	overrides := c.overrides
	c.mu.RUnlock()
	return c.buildWith(overrides)
}

func (c *Config) buildWith(overrides map[string]any) (map[string]any, error) {
	merged := loader.DeepMerge(defaultConfig(), c.defaults)

	if c.path != "" {
		fl, err := loader.ForPath(c.fs, c.path)
		if err != nil {
			return nil, err
		}
		data, err := fl.Load()
		if err != nil {
			return nil, errors.Errorf("loading %s: %w", c.path, err)
		}
		merged = loader.DeepMerge(merged, data)
	}

	env, err := loader.NewEnvLoader(c.envPrefix).Load()
	if err != nil {
		return nil, errors.Errorf("loading environment: %w", err)
	}
	merged = loader.DeepMerge(merged, env)

	merged = loader.DeepMerge(merged, overrides)

	if err := validate(&Config{merged: merged}); err != nil {
		return nil, err
	}
	return merged, nil
}

func (c *Config) startWatcher() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		return nil
	}

	logger := c.logger
	w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
		logger.Warn().Err(err).Msg("config watcher error")
	}))
	if err != nil {
		return err
	}
	if err := w.Watch(c.path); err != nil {
		_ = w.Close()
		return err
	}
	w.OnChange(c.handleFileChange)
	c.watcher = w
	logger.Debug().Strs("files", w.WatchedFiles()).Msg("watching configuration")
	return nil
}

func (c *Config) handleFileChange(ev watcher.Event) {
	c.mu.RLock()
	logger := c.logger
	c.mu.RUnlock()

	logger.Debug().Str("file", ev.Path).Stringer("op", ev.Op).Msg("config file changed")
	_ = c.Reload()
}

// defaultConfig returns the built-in default values.
func defaultConfig() map[string]any {
	return map[string]any{
		"palette": map[string]any{
			"size":           palette.DefaultSize,
			"gridResolution": palette.DefaultGridResolution,
			"minLuminance":   palette.DefaultMinLuminance,
			"maxLuminance":   palette.DefaultMaxLuminance,
		},
		"refresh": map[string]any{
			"interval":  schedule.DefaultInterval.String(),
			"idleDelay": schedule.DefaultIdleDelay.String(),
			"periodic":  true,
		},
		"theme": map[string]any{
			"name":       "default-dark",
			"foreground": "",
		},
		"logging": map[string]any{
			"level":   "info",
			"file":    "",
			"console": true,
		},
		"languages": map[string]any{},
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}

	var current any = m
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return errors.Errorf("%w: %q", ErrInvalidPath, path)
	}

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return errors.Errorf("%w: %q crosses a value at %q", ErrInvalidPath, path, part)
		}
		current = nextMap
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// splitPath splits a dot-separated path, dropping empty segments.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '.' })
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
