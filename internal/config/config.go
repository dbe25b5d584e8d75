package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/aldaque/storyloom/internal/adapters/memory"
	"github.com/aldaque/storyloom/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration, loaded from a YAML file.
type Config struct {
	Listen  string         `yaml:"listen" json:"listen"`
	Log     LogConfig      `yaml:"log" json:"log"`
	Store   StoreConfig    `yaml:"store" json:"store"`
	Modules []ModuleConfig `yaml:"modules" json:"modules"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// StoreConfig selects and configures the story store backend.
type StoreConfig struct {
	Backend    string           `yaml:"backend" json:"backend"`
	File       FileConfig       `yaml:"file" json:"file"`
	Redis      RedisConfig      `yaml:"redis" json:"redis"`
	Encryption EncryptionConfig `yaml:"encryption" json:"encryption"`

	// MaskKeys holds regular expressions; link values, intent parameters and
	// annotations whose keys match are masked before hitting storage.
	MaskKeys []string `yaml:"mask_keys" json:"mask_keys"`
}

// EncryptionConfig enables at-rest encryption of stories. Keys are
// base64-encoded 32-byte AES-256 keys.
type EncryptionConfig struct {
	Key          string   `yaml:"key" json:"key"`
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys"`
}

// FileConfig configures the file-backed store.
type FileConfig struct {
	Path string `yaml:"path" json:"path"`
}

// RedisConfig configures the Redis-backed store and distributed locker.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
	Lock     bool          `yaml:"lock" json:"lock"`
}

// ModuleConfig declares the handler candidates for one intent action.
type ModuleConfig struct {
	Action   string          `yaml:"action" json:"action"`
	Handlers []HandlerConfig `yaml:"handlers" json:"handlers"`
}

// HandlerConfig declares one handler candidate.
type HandlerConfig struct {
	Name     string         `yaml:"name" json:"name"`
	Manifest map[string]any `yaml:"manifest" json:"manifest"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Log:    LogConfig{Level: "info"},
		Store: StoreConfig{
			Backend: "memory",
			File:    FileConfig{Path: ".storyloom/stories"},
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "storyloom:story:",
			},
		},
	}
}

// Load reads a YAML configuration file, layering it over the defaults. A
// missing file at the default path is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown store backend %q (want memory, file or redis)", c.Store.Backend)
	}
	if c.Store.Encryption.Key != "" {
		if _, err := c.Store.Encryption.ActiveKey(); err != nil {
			return err
		}
		if _, err := c.Store.Encryption.DecodedFallbackKeys(); err != nil {
			return err
		}
	}
	for _, p := range c.Store.MaskKeys {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
	}
	for _, mod := range c.Modules {
		if mod.Action == "" {
			return fmt.Errorf("module entry without an action")
		}
		for _, h := range mod.Handlers {
			if h.Name == "" {
				return fmt.Errorf("module %q has a handler without a name", mod.Action)
			}
		}
	}
	return nil
}

// ActiveKey decodes the configured encryption key.
func (e EncryptionConfig) ActiveKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(e.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// DecodedFallbackKeys decodes the configured fallback keys.
func (e EncryptionConfig) DecodedFallbackKeys() ([][]byte, error) {
	keys := make([][]byte, 0, len(e.FallbackKeys))
	for _, raw := range e.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid fallback encryption key: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("fallback encryption key must be 32 bytes, got %d", len(key))
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// BuildResolver constructs the static resolver from the modules section.
// Registration order is preserved, so the first configured handler wins.
func (c *Config) BuildResolver() *memory.Resolver {
	resolver := memory.NewResolver()
	for _, mod := range c.Modules {
		candidates := make([]domain.ModCandidate, 0, len(mod.Handlers))
		for _, h := range mod.Handlers {
			candidates = append(candidates, domain.ModCandidate{
				Handler:  h.Name,
				Manifest: h.Manifest,
			})
		}
		resolver.Register(mod.Action, candidates...)
	}
	return resolver
}
