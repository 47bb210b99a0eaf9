// pkg/cache/json.go

package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fapiao/pkg/models"
)

// JSONStore keeps the cache in a single indented JSON file. The file is a
// plain object of filename -> {mtime, size, data}, readable and diffable by
// hand.
type JSONStore struct {
	*Index
	path string
}

// NewJSONStore creates a store backed by the file at path. Nothing is read
// until Load.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		Index: NewIndex(),
		path:  path,
	}
}

// Path returns the cache file location
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the cache file. A missing or empty file is an empty cache; an
// unreadable or corrupt one also leaves the cache empty but is reported.
func (s *JSONStore) Load() error {
	s.Reset(nil)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cache file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var entries map[string]models.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decoding cache file %s: %w", s.path, err)
	}
	s.Reset(entries)
	return nil
}

// Flush rewrites the whole file. The new content goes to a temporary file in
// the same directory first and is renamed over the old one.
func (s *JSONStore) Flush() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Entries()); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting cache file mode: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}

	s.MarkClean()
	return nil
}
