package clientcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const manifestFile = "manifest.json"

// Manifest tracks which families are on disk and when each was written.
type Manifest struct {
	Version     int                      `json:"version"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Families    map[string]ManifestEntry `json:"families"`
}

type ManifestEntry struct {
	Bytes     int       `json:"bytes"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FSBlobStore writes each family to {base}/{key}.json with an atomic rename
// and keeps a manifest alongside.
type FSBlobStore struct {
	basePath string
	now      func() time.Time
	mu       sync.Mutex
}

func NewFSBlobStore(basePath string) (*FSBlobStore, error) {
	if basePath == "" {
		return nil, errors.New("client cache path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}
	return &FSBlobStore{basePath: basePath, now: time.Now}, nil
}

// BasePath exposes the store root.
func (s *FSBlobStore) BasePath() string { return s.basePath }

func (s *FSBlobStore) path(key string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s.json", key))
}

func (s *FSBlobStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set skips the write when the file already holds identical bytes.
func (s *FSBlobStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, value) {
		return nil
	}
	if err := writeAtomic(target, value); err != nil {
		return err
	}
	return s.updateManifest(key, len(value))
}

// Clear removes every family file and the manifest.
func (s *FSBlobStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.listKeys()
	if err != nil {
		return err
	}
	var errs []error
	for _, k := range keys {
		if err := os.Remove(s.path(k)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := os.Remove(filepath.Join(s.basePath, manifestFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *FSBlobStore) Close() error { return nil }

// ReadManifest loads the manifest, or an empty one when none exists.
func (s *FSBlobStore) ReadManifest() (Manifest, error) {
	m := Manifest{Version: 1, Families: make(map[string]ManifestEntry)}
	data, err := os.ReadFile(filepath.Join(s.basePath, manifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{Version: 1, Families: make(map[string]ManifestEntry)}, err
	}
	if m.Families == nil {
		m.Families = make(map[string]ManifestEntry)
	}
	return m, nil
}

func (s *FSBlobStore) updateManifest(key string, size int) error {
	m, _ := s.ReadManifest()
	now := s.now().UTC()
	m.Families[key] = ManifestEntry{Bytes: size, UpdatedAt: now}
	m.GeneratedAt = now

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.basePath, manifestFile), data)
}

func (s *FSBlobStore) listKeys() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == manifestFile || filepath.Ext(name) != ".json" {
			continue
		}
		keys = append(keys, name[:len(name)-len(".json")])
	}
	sort.Strings(keys)
	return keys, nil
}

func writeAtomic(target string, data []byte) error {
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
