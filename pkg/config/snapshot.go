package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. APPHOST_ON_STOP_TIMEOUT=250ms.
const EnvPrefix = "APPHOST"

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	createIfMissing bool
	envPrefix       string
}

// WithCreateIfMissing writes the defaults to path when no file exists.
func WithCreateIfMissing() LoadOption {
	return func(o *loadOptions) {
		o.createIfMissing = true
	}
}

// WithEnvPrefix replaces EnvPrefix. An empty prefix disables env overrides.
func WithEnvPrefix(prefix string) LoadOption {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// Snapshot is the in-memory copy of a CoreConfig file. Changes made through
// Update are written back by Store.
type Snapshot struct {
	path string

	mu    sync.RWMutex
	value CoreConfig
	dirty bool
}

// NewSnapshot returns a snapshot of value bound to path without touching disk.
func NewSnapshot(path string, value CoreConfig) *Snapshot {
	return &Snapshot{path: path, value: value}
}

// Load reads path (DefaultPath when empty), applying env overrides and
// defaults. A missing file yields the defaults.
//
// Precedence, highest first: environment, file, defaults.
func Load(path string, opts ...LoadOption) (*Snapshot, error) {
	o := loadOptions{envPrefix: EnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	if path == "" {
		path = DefaultPath
	}

	v := newViper(path, o.envPrefix)
	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	var cfg CoreConfig
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	s := NewSnapshot(path, cfg)
	if !found && o.createIfMissing {
		if err := s.write(cfg); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func newViper(path, envPrefix string) *viper.Viper {
	v := viper.New()
	def := Default()
	v.SetDefault(keyOnStartTimeout, def.OnStartTimeout)
	v.SetDefault(keyOnStopTimeout, def.OnStopTimeout)

	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	return v
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		millisecondsHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// millisecondsHook reads bare numbers, and numeric strings coming from the
// environment, as milliseconds.
func millisecondsHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case int:
			return time.Duration(v) * time.Millisecond, nil
		case int64:
			return time.Duration(v) * time.Millisecond, nil
		case float64:
			return time.Duration(v * float64(time.Millisecond)), nil
		case string:
			if ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return time.Duration(ms) * time.Millisecond, nil
			}
		}
		return data, nil
	}
}

func (s *Snapshot) Path() string { return s.path }

// Value returns a copy of the current configuration.
func (s *Snapshot) Value() CoreConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Update applies fn to the configuration. The result must validate.
func (s *Snapshot) Update(fn func(*CoreConfig)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.value
	fn(&next)
	if err := Validate(&next); err != nil {
		return err
	}
	s.value = next
	s.dirty = true
	return nil
}

// Dirty reports whether Update was called since the last Store.
func (s *Snapshot) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Store writes the configuration to its file.
func (s *Snapshot) Store() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(s.value); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (s *Snapshot) write(cfg CoreConfig) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set(keyOnStartTimeout, cfg.OnStartTimeout.String())
	v.Set(keyOnStopTimeout, cfg.OnStopTimeout.String())
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", s.path, err)
	}
	return nil
}
