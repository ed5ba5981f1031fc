// Package config loads the CLI and server configuration from a YAML or JSON
// file, the ELICIT_* environment and --set overrides, in that order.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/elicitation/internal/logging"
	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/go-playground/validator/v10"
	"github.com/joeshaw/envdecode"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	Retry            Retry         `mapstructure:"retry" yaml:"retry" json:"retry"`
	RoundTimeout     time.Duration `mapstructure:"round_timeout" yaml:"round_timeout" json:"round_timeout" env:"ELICIT_ROUND_TIMEOUT" validate:"gte=0"`
	MaxResponseBytes int           `mapstructure:"max_response_bytes" yaml:"max_response_bytes" json:"max_response_bytes" env:"ELICIT_MAX_RESPONSE_BYTES" validate:"gte=0"`
	Log              Log           `mapstructure:"log" yaml:"log" json:"log"`
	Store            Store         `mapstructure:"store" yaml:"store" json:"store"`
	Server           Server        `mapstructure:"server" yaml:"server" json:"server"`
	Metrics          Metrics       `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts" json:"max_attempts" env:"ELICIT_RETRY_MAX_ATTEMPTS" validate:"gte=1"`
	Backoff     time.Duration `mapstructure:"backoff" yaml:"backoff" json:"backoff" env:"ELICIT_RETRY_BACKOFF" validate:"gte=0"`
	Multiplier  float64       `mapstructure:"multiplier" yaml:"multiplier" json:"multiplier" env:"ELICIT_RETRY_MULTIPLIER" validate:"gte=0"`
	MaxBackoff  time.Duration `mapstructure:"max_backoff" yaml:"max_backoff" json:"max_backoff" env:"ELICIT_RETRY_MAX_BACKOFF" validate:"gte=0"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level" json:"level" env:"ELICIT_LOG_LEVEL" validate:"oneof=debug info warn warning error"`
}

type Store struct {
	Driver  string        `mapstructure:"driver" yaml:"driver" json:"driver" env:"ELICIT_STORE_DRIVER" validate:"oneof=memory redis"`
	Address string        `mapstructure:"address" yaml:"address" json:"address" env:"ELICIT_STORE_ADDRESS" validate:"required_if=Driver redis"`
	Prefix  string        `mapstructure:"prefix" yaml:"prefix" json:"prefix" env:"ELICIT_STORE_PREFIX"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl" env:"ELICIT_STORE_TTL" validate:"gte=0"`

	// EncryptionKey is a base64 AES-256 key. When set, transcripts are sealed at rest.
	EncryptionKey string `mapstructure:"encryption_key" yaml:"encryption_key" json:"encryption_key" env:"ELICIT_STORE_ENCRYPTION_KEY" validate:"omitempty,base64"`

	// Redact lists field path patterns whose answers are masked before saving.
	Redact []string `mapstructure:"redact" yaml:"redact" json:"redact" env:"ELICIT_STORE_REDACT"`
}

// Key decodes EncryptionKey. It returns nil when no key is configured.
func (s Store) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("store.encryption_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

type Server struct {
	Transport string `mapstructure:"transport" yaml:"transport" json:"transport" env:"ELICIT_SERVER_TRANSPORT" validate:"oneof=stdio sse http"`
	Port      int    `mapstructure:"port" yaml:"port" json:"port" env:"ELICIT_SERVER_PORT" validate:"min=1,max=65535"`
}

type Metrics struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled" env:"ELICIT_METRICS_ENABLED"`
}

// Default is the configuration used when nothing else is given.
func Default() Config {
	p := elicit.DefaultPolicy()
	return Config{
		Retry: Retry{
			MaxAttempts: p.MaxAttempts,
			Multiplier:  p.Multiplier,
		},
		Log:    Log{Level: "info"},
		Store:  Store{Driver: "memory"},
		Server: Server{Transport: "stdio", Port: 8080},
	}
}

// Load builds a Config from defaults, the file at path (skipped when path is
// empty or the file does not exist), the environment and then the overrides.
func Load(path string, overrides map[string]any) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := readFile(path)
		if err != nil {
			return cfg, err
		}
		if err := decode(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("config environment: %w", err)
	}

	if len(overrides) > 0 {
		if err := decode(overrides, &cfg); err != nil {
			return cfg, fmt.Errorf("config overrides: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return raw, nil
}

// decode merges raw onto cfg. Unknown keys are rejected and durations may
// be written as "250ms".
func decode(raw map[string]any, cfg *Config) error {
	if raw == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// ParseSet turns "retry.max_attempts=5" style assignments into a nested map
// suitable for Load.
func ParseSet(assignments []string) (map[string]any, error) {
	out := make(map[string]any)
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q: want key=value", a)
		}
		parts := strings.Split(key, ".")
		node := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := node[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				node[p] = next
			}
			node = next
		}
		node[parts[len(parts)-1]] = value
	}
	return out, nil
}

// Validate checks the struct tags and the derived retry policy.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Store.Key(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Policy is the retry policy described by the configuration.
func (c Config) Policy() elicit.Policy {
	return elicit.Policy{
		MaxAttempts:  c.Retry.MaxAttempts,
		Backoff:      c.Retry.Backoff,
		Multiplier:   c.Retry.Multiplier,
		MaxBackoff:   c.Retry.MaxBackoff,
		RoundTimeout: c.RoundTimeout,
	}
}

// SessionOptions are the elicit options every session started by the CLI carries.
func (c Config) SessionOptions() []elicit.Option {
	return []elicit.Option{
		elicit.WithPolicy(c.Policy()),
		elicit.WithMaxResponseBytes(c.MaxResponseBytes),
	}
}

// LogLevel is the parsed log.level.
func (c Config) LogLevel() slog.Level {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}
