package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
)

// ErrNotFound indicates the store holds no value for a key.
var ErrNotFound = errors.New("blob not found")

// BlobStore is an opaque key-value store of serialized blobs.
type BlobStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// FileStore keeps one file per key inside a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory holding the blobs.
func (store *FileStore) Dir() string {
	return store.dir
}

// Get reads the blob stored under key.
func (store *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(store.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

// Set replaces the blob stored under key.
func (store *FileStore) Set(key string, value []byte) error {
	if err := os.MkdirAll(store.dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := atomicWrite(store.path(key), value, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

func (store *FileStore) path(key string) string {
	return filepath.Join(store.dir, key+".json")
}

// PreferencesStore keeps blobs in the fyne application preferences.
type PreferencesStore struct {
	prefs fyne.Preferences
}

// NewPreferencesStore wraps the preferences of a fyne app.
func NewPreferencesStore(prefs fyne.Preferences) *PreferencesStore {
	return &PreferencesStore{prefs: prefs}
}

// Get reads the blob stored under key.
func (store *PreferencesStore) Get(key string) ([]byte, error) {
	value := store.prefs.String(key)
	if value == "" {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

// Set replaces the blob stored under key.
func (store *PreferencesStore) Set(key string, value []byte) error {
	store.prefs.SetString(key, string(value))
	return nil
}

// MemoryStore is a BlobStore that lives for the process only.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Get reads the blob stored under key.
func (store *MemoryStore) Get(key string) ([]byte, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	value, ok := store.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set replaces the blob stored under key.
func (store *MemoryStore) Set(key string, value []byte) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.blobs[key] = append([]byte(nil), value...)
	return nil
}
