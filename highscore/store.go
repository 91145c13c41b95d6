// Package highscore persists the best score across games through an opaque
// key-value store.
package highscore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Key under which the high score is stored, as a decimal string
const Key = "highScore"

type Store interface {
	// Get returns the value under key, and false if there is none
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Load reads the high score. A store without one yields zero.
func Load(ctx context.Context, store Store) (int, error) {
	value, ok, err := store.Get(ctx, Key)
	if err != nil {
		return 0, fmt.Errorf("reading high score: %w", err)
	}
	if !ok || value == "" {
		return 0, nil
	}

	score, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parsing high score %q: %w", value, err)
	}
	if score < 0 {
		return 0, fmt.Errorf("negative high score %d", score)
	}
	return score, nil
}

func Save(ctx context.Context, store Store, score int) error {
	if err := store.Set(ctx, Key, strconv.Itoa(score)); err != nil {
		return fmt.Errorf("writing high score: %w", err)
	}
	return nil
}

// Open picks a store from a URI: "memory", "file:<path>" or "sqlite:<path>"
func Open(uri string) (Store, error) {
	scheme, path, _ := strings.Cut(uri, ":")
	switch scheme {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		if path == "" {
			return nil, fmt.Errorf("store %q: missing path", uri)
		}
		return NewFileStore(path), nil
	case "sqlite":
		if path == "" {
			return nil, fmt.Errorf("store %q: missing path", uri)
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("store %q: unknown scheme %q", uri, scheme)
	}
}

// Close releases the store's resources, if it holds any
func Close(store Store) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

type MemoryStore struct {
	lock   sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (store *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	store.lock.Lock()
	defer store.lock.Unlock()

	value, ok := store.values[key]
	return value, ok, nil
}

func (store *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	store.lock.Lock()
	defer store.lock.Unlock()

	store.values[key] = value
	return nil
}
