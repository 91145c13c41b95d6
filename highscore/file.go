package highscore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v2"
)

// FileStore keeps values in a YAML mapping on disk. Every Set rewrites the
// whole file through a temporary file and a rename.
type FileStore struct {
	path string
	lock sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (store *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)

	in, err := os.ReadFile(store.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(in, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (store *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	store.lock.Lock()
	defer store.lock.Unlock()

	values, err := store.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (store *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	store.lock.Lock()
	defer store.lock.Unlock()

	values, err := store.read()
	if err != nil {
		return err
	}
	values[key] = value

	out, err := yaml.Marshal(values)
	if err != nil {
		return err
	}

	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(store.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), store.path)
}
