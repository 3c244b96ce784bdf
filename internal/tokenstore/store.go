// Package tokenstore persists the session bearer token under one fixed key.
package tokenstore

import (
	"context"
	"fmt"
	"sync"
)

// DefaultKey is the name the token is stored under when none is configured.
const DefaultKey = "token"

// Store is durable key/value storage for the bearer token. Load returns ""
// with a nil error when no token is stored.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Kind names a storage backend.
type Kind string

const (
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindRedis  Kind = "redis"
)

// Valid reports whether k is a known backend.
func (k Kind) Valid() bool {
	switch k {
	case KindMemory, KindFile, KindSQLite, KindRedis:
		return true
	}
	return false
}

// Config selects and configures a backend.
type Config struct {
	Kind      Kind
	Key       string
	FilePath  string
	SQLiteDSN string
	Redis     RedisConfig
}

// Open builds the configured backend. The returned close function releases
// any connection the backend holds.
func Open(ctx context.Context, cfg Config) (Store, func() error, error) {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	noop := func() error { return nil }

	switch cfg.Kind {
	case KindMemory:
		return NewMemory(key), noop, nil
	case KindFile:
		return NewFile(cfg.FilePath, key), noop, nil
	case KindSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLiteDSN, key)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case KindRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedis(client, key), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store %q", cfg.Kind)
	}
}

// Memory keeps the token in process memory. It does not survive restarts and
// is used by tests and one-shot invocations.
type Memory struct {
	mu     sync.RWMutex
	key    string
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory(key string) *Memory {
	return &Memory{key: key, values: make(map[string]string)}
}

func (m *Memory) Load(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[m.key], nil
}

func (m *Memory) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[m.key] = token
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, m.key)
	return nil
}
