package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists every backend name.
var Backends = []string{BackendNone, BackendFile, BackendMemory, BackendRedis, BackendMongo}

// Options selects and configures a backend.
type Options struct {
	Backend string `toml:"backend"`

	Dir  string `toml:"dir"`  // file
	Size int    `toml:"size"` // memory

	RedisAddr   string `toml:"redis_addr"`
	RedisPrefix string `toml:"redis_prefix"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// DefaultDir returns the file cache directory: $XDG_CACHE_HOME/lineageflow
// or the platform user cache dir.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "lineageflow"), nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lineageflow"), nil
}

// Open creates the backend named by opts.Backend. An empty backend means
// "file".
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch strings.ToLower(opts.Backend) {
	case BackendNone:
		return NewNullCache(), nil
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			var err error
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		return wrap(NewFileCache(dir))
	case BackendMemory:
		return wrap(NewMemoryCache(opts.Size))
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "redis backend requires redis_addr")
		}
		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = "lineageflow:"
		}
		return wrap(NewRedisCache(ctx, opts.RedisAddr, prefix))
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "mongo backend requires mongo_uri")
		}
		db := opts.MongoDatabase
		if db == "" {
			db = "lineageflow"
		}
		return wrap(NewMongoCache(ctx, opts.MongoURI, db))
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown cache backend %q (want one of %s)",
			opts.Backend, strings.Join(Backends, ", "))
	}
}

// wrap keeps a failed constructor's typed nil out of the Cache interface.
func wrap[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
