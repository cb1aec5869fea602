// Package cache stores built reports and rendered artefacts so repeated
// runs over the same profile log and topology skip the work.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON envelope per key under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance for `flowprof serve` fleets
//   - [NullCache]: caching disabled
//
// Keys are content addressed. A [Keyer] derives them from the SHA-256 of
// the inputs plus every option that changes the output, so stale entries
// are never served; they simply age out through their TTL.
package cache

import (
	"context"
	"time"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Entry lifetimes.
const (
	TTLReport   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend string // file (default), redis or none

	// Dir is the FileCache directory. Empty means DefaultDir().
	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		c, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, flowerrors.New(flowerrors.ErrCodeInvalidInput,
			"unknown cache backend %q (must be file, redis or none)", opts.Backend)
	}
}
