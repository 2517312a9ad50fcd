// Package config loads and saves the weekflow TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/weekflow/config.toml (or
// ~/.config/weekflow/config.toml) and has five sections:
//
//	[layout]   geometry of the icicle diagram
//	[hours]    weekly breakdown inputs
//	[palette]  category name to "#rrggbb" overrides
//	[serve]    HTTP host and session store settings
//	[cache]    rendered artifact cache settings
//
// Keys missing from the file keep their defaults. [Load] always returns a
// usable configuration: a malformed file or an invalid section is replaced
// by defaults and reported through the returned INVALID_CONFIG error, which
// callers treat as a warning.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/weekflow/pkg/breakdown"
	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/layout"
)

const (
	appName  = "weekflow"
	fileName = "config.toml"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the full configuration file.
type Config struct {
	Layout  layout.Params     `toml:"layout"`
	Hours   breakdown.Inputs  `toml:"hours"`
	Palette map[string]string `toml:"palette,omitempty"`
	Serve   Serve             `toml:"serve"`
	Cache   Cache             `toml:"cache"`
}

// Serve configures the HTTP host.
type Serve struct {
	Addr          string   `toml:"addr"`
	Store         string   `toml:"store"`
	SessionTTL    Duration `toml:"session_ttl"`
	RedisAddr     string   `toml:"redis_addr,omitempty"`
	MongoURI      string   `toml:"mongo_uri,omitempty"`
	MongoDatabase string   `toml:"mongo_database,omitempty"`
}

// Cache configures the rendered artifact cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: layout.DefaultParams(),
		Hours:  breakdown.DefaultInputs(),
		Serve: Serve{
			Addr:          "127.0.0.1:8080",
			Store:         StoreMemory,
			SessionTTL:    Duration{24 * time.Hour},
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
		},
		Cache: Cache{
			Backend:   CacheFile,
			TTL:       Duration{7 * 24 * time.Hour},
			RedisAddr: "localhost:6379",
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config file at path. A missing file yields the defaults
// and no error. Any other problem yields a usable config plus an error with
// code INVALID_CONFIG describing what was replaced by defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(data)
}

// Parse decodes a config document. See [Load] for the error contract.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Default(), errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config")
	}

	var problems []string
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		problems = append(problems, "unknown keys: "+strings.Join(keys, ", "))
	}
	problems = append(problems, cfg.normalize()...)

	if len(problems) > 0 {
		return cfg, errs.New(errs.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// normalize replaces invalid sections with defaults and returns a
// description of each replacement.
func (c *Config) normalize() []string {
	def := Default()
	var problems []string

	if err := c.Layout.Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("[layout] %s, using defaults", errs.UserMessage(err)))
		c.Layout = def.Layout
	}
	if err := c.Hours.Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("[hours] %s, using defaults", errs.UserMessage(err)))
		c.Hours = def.Hours
	}

	names := make([]string, 0, len(c.Palette))
	for name := range c.Palette {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := errs.ValidateHexColor(c.Palette[name]); err != nil {
			problems = append(problems, fmt.Sprintf("[palette] %s, ignoring %q", errs.UserMessage(err), name))
			delete(c.Palette, name)
		}
	}

	switch c.Serve.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreMongo:
	default:
		problems = append(problems, fmt.Sprintf("[serve] unknown store %q, using %q", c.Serve.Store, def.Serve.Store))
		c.Serve.Store = def.Serve.Store
	}
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		problems = append(problems, fmt.Sprintf("[cache] unknown backend %q, using %q", c.Cache.Backend, def.Cache.Backend))
		c.Cache.Backend = def.Cache.Backend
	}
	if c.Serve.SessionTTL.Duration < 0 {
		problems = append(problems, "[serve] negative session_ttl, using default")
		c.Serve.SessionTTL = def.Serve.SessionTTL
	}
	if c.Cache.TTL.Duration < 0 {
		problems = append(problems, "[cache] negative ttl, using default")
		c.Cache.TTL = def.Cache.TTL
	}
	return problems
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
