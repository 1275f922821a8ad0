package store

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// Store is the persistent key/value surface the client keeps between runs:
// session tokens and cached sequences. Values are opaque bytes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

type Options struct {
	Backend  Backend
	Path     string // file backend
	DSN      string // postgres backend
	RedisURL string // redis backend
}

func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendFile:
		return OpenFile(opts.Path)
	case BackendPostgres:
		return OpenGorm(opts.DSN)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
