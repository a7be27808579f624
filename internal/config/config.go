// Package config loads souqra.yaml and the SOUQRA_* environment into typed settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no --config flag is given. A missing file is not an error.
const DefaultFile = "souqra.yaml"

// EnvPrefix namespaces the environment overlay: SOUQRA_STORE_DRIVER sets store.driver.
const EnvPrefix = "SOUQRA_"

// Config is the full runtime configuration of the CLI and servers.
type Config struct {
	Log       Log       `mapstructure:"log"`
	Server    Server    `mapstructure:"server"`
	Store     Store     `mapstructure:"store"`
	LLM       LLM       `mapstructure:"llm"`
	Search    Search    `mapstructure:"search"`
	Pipeline  Pipeline  `mapstructure:"pipeline"`
	Retention Retention `mapstructure:"retention"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

type Server struct {
	Port            string        `mapstructure:"port"`
	Origins         []string      `mapstructure:"origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Metrics         bool          `mapstructure:"metrics"`
}

// Store selects and tunes the session backend.
type Store struct {
	Driver string `mapstructure:"driver"` // file | memory | redis | sqlite | postgres
	Dir    string `mapstructure:"dir"`
	DSN    string `mapstructure:"dsn"`

	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`

	// EncryptionKey is a base64 AES-256 key. Empty disables encryption at rest.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
	Redact        bool     `mapstructure:"redact"`

	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type LLM struct {
	Provider    string  `mapstructure:"provider"` // openrouter | openai | anthropic | dryrun
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
	RateLimit   float64 `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst       int     `mapstructure:"burst"`
}

type Search struct {
	Provider    string `mapstructure:"provider"` // duckduckgo | brave | none
	BraveAPIKey string `mapstructure:"brave_api_key"`
	Limit       int    `mapstructure:"limit"`
}

type Pipeline struct {
	Styles      []string `mapstructure:"styles"`
	Concurrency int      `mapstructure:"concurrency"`
	PromptsDir  string   `mapstructure:"prompts_dir"`
}

// Retention deletes sessions untouched for MaxAge, checked on Schedule (cron syntax).
// An empty Schedule disables the sweeper.
type Retention struct {
	Schedule string        `mapstructure:"schedule"`
	MaxAge   time.Duration `mapstructure:"max_age"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Log:    Log{Level: "info", Format: "text"},
		Server: Server{Port: "8080", ShutdownTimeout: 5 * time.Second, Metrics: true},
		Store: Store{
			Driver:      "file",
			Dir:         ".souqra/sessions",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "souqra:",
			LockTTL:     5 * time.Minute,
		},
		LLM:      LLM{Provider: "openrouter", Temperature: 0.2},
		Search:   Search{Provider: "duckduckgo", Limit: 5},
		Pipeline: Pipeline{Concurrency: 3},
		Retention: Retention{
			MaxAge: 30 * 24 * time.Hour,
		},
	}
}

// Load reads path (DefaultFile when empty), overlays the environment and decodes the result.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	raw := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	env := environment(os.Environ())
	overlayEnv(raw, env)

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	cfg.providerKeys(env)
	return cfg, cfg.Validate()
}

func decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			trimmedSliceHook,
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// trimmedSliceHook splits comma lists ("a, b") coming from the environment.
func trimmedSliceHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return []string{}, nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

var sections = map[string]bool{
	"log": true, "server": true, "store": true, "llm": true,
	"search": true, "pipeline": true, "retention": true,
}

func environment(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if name, value, ok := strings.Cut(kv, "="); ok {
			env[name] = value
		}
	}
	return env
}

// overlayEnv writes SOUQRA_<SECTION>_<KEY>=v into raw[section][key].
// Variables whose section is unknown (e.g. SOUQRA_MAX_INPUT_SIZE) are left to their owners.
func overlayEnv(raw map[string]any, env map[string]string) {
	for name, value := range env {
		rest, found := strings.CutPrefix(name, EnvPrefix)
		if !found {
			continue
		}
		section, key, ok := strings.Cut(strings.ToLower(rest), "_")
		if !ok || !sections[section] {
			continue
		}
		m, ok := raw[section].(map[string]any)
		if !ok {
			m = map[string]any{}
			raw[section] = m
		}
		m[key] = value
	}
}

// providerKeys fills unset credentials from the variables each provider documents.
func (c *Config) providerKeys(env map[string]string) {
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "anthropic":
			c.LLM.APIKey = env["ANTHROPIC_API_KEY"]
		case "openai":
			c.LLM.APIKey = env["OPENAI_API_KEY"]
		default:
			c.LLM.APIKey = env["OPENROUTER_API_KEY"]
		}
	}
	if c.Search.BraveAPIKey == "" {
		c.Search.BraveAPIKey = env["BRAVE_API_KEY"]
	}
}

// Validate rejects unknown enum values.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "file", "memory", "redis", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if (c.Store.Driver == "sqlite" || c.Store.Driver == "postgres") && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver)
	}
	switch c.LLM.Provider {
	case "openrouter", "openai", "anthropic", "dryrun":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Search.Provider {
	case "duckduckgo", "brave", "none":
	default:
		return fmt.Errorf("unknown search provider %q", c.Search.Provider)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
