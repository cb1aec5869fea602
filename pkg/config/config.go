// Package config loads flowprof settings.
//
// Settings come from, in increasing priority: built-in defaults, a TOML
// file, FLOWPROF_* environment variables, and command-line flags (applied
// by the CLI). The file lives at $XDG_CONFIG_HOME/flowprof/config.toml
// unless --config names another.
//
//	[layout]
//	max_width = 420
//	hot_color = "#d9480f"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "cache.internal:6379"
//
//	[archive]
//	mongo_uri = "mongodb://db.internal:27017"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowprof/pkg/cache"
	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/session"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FLOWPROF_"

// Config is the full settings tree.
type Config struct {
	Layout  layout.Config `toml:"layout"`
	Report  ReportConfig  `toml:"report"`
	Cache   CacheConfig   `toml:"cache"`
	Archive ArchiveConfig `toml:"archive"`
	Server  ServerConfig  `toml:"server"`
}

type ReportConfig struct {
	Title   string   `toml:"title"`
	Formats []string `toml:"formats"`
}

type CacheConfig struct {
	Backend       string `toml:"backend"` // file, redis or none
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	KeyScope      string `toml:"key_scope"` // prefixes every key, for shared Redis
}

// Keyer returns the cache keyer for c: scoped when KeyScope is set.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.KeyScope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.KeyScope+":")
}

// Options converts c to cache.Options.
func (c CacheConfig) Options() cache.Options {
	return cache.Options{
		Backend:       c.Backend,
		Dir:           c.Dir,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	}
}

// ArchiveConfig enables the report archive when MongoURI is set.
type ArchiveConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

type ServerConfig struct {
	Addr       string        `toml:"addr"`
	SessionTTL time.Duration `toml:"session_ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Report: ReportConfig{Formats: []string{"html"}},
		Cache:  CacheConfig{Backend: cache.BackendFile, RedisAddr: "localhost:6379"},
		Archive: ArchiveConfig{
			Database: "flowprof",
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080", SessionTTL: session.DefaultTTL},
	}
}

// DefaultPath returns the config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "locate user config dir")
	}
	return filepath.Join(dir, "flowprof", "config.toml"), nil
}

// Load reads path over the defaults and applies environment overrides.
// An empty path means DefaultPath, which may be absent; an explicit path
// must exist. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := cfg.decodeFile(path); err != nil {
		missing := errors.Is(err, fs.ErrNotExist)
		if missing && explicit {
			return nil, flowerrors.Wrap(flowerrors.ErrCodeInvalidPath, err, "config file %s", path)
		}
		if !missing {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return flowerrors.New(flowerrors.ErrCodeInvalidInput, "%s: unknown keys %v", path, keys)
	}
	return nil
}

// Decode reads TOML text over the current values. It is Load without the
// file system.
func (c *Config) Decode(data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return flowerrors.New(flowerrors.ErrCodeInvalidInput, "unknown config key %s", undecoded[0])
	}
	return nil
}

// ApplyEnv overrides settings from FLOWPROF_* variables read through
// getenv. Malformed numbers are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)
	str("CACHE_SCOPE", &c.Cache.KeyScope)
	str("MONGO_URI", &c.Archive.MongoURI)
	str("MONGO_DATABASE", &c.Archive.Database)
	str("SERVER_ADDR", &c.Server.Addr)
	str("TITLE", &c.Report.Title)

	if v := getenv(EnvPrefix + "REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = n
		}
	}
	if v := getenv(EnvPrefix + "SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.SessionTTL = d
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if !slices.Contains([]string{"", cache.BackendFile, cache.BackendRedis, cache.BackendNone}, c.Cache.Backend) {
		return flowerrors.New(flowerrors.ErrCodeInvalidInput, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Server.SessionTTL < 0 {
		return flowerrors.New(flowerrors.ErrCodeInvalidInput, "server.session_ttl must not be negative")
	}
	return nil
}
