// Package images stores, normalizes and fingerprints book cover images.
package images

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bookblog/bookblog-server/internal/store"
)

// ErrInvalidName is returned for names that are not a plain file name.
var ErrInvalidName = errors.New("invalid cover file name")

// Storage manages the flat covers directory. Files are addressed by base
// name only, so no caller can reach outside the directory.
// Thread-safe for concurrent operations.
type Storage struct {
	dir string
	mu  sync.RWMutex
}

// NewStorage creates the covers directory if needed.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("covers directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create covers directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the covers directory.
func (s *Storage) Dir() string { return s.dir }

// ValidName reports whether name is a plain, visible file name.
func ValidName(name string) bool {
	return name != "" &&
		name == filepath.Base(name) &&
		!strings.ContainsAny(name, `/\`) &&
		!strings.HasPrefix(name, ".")
}

// Path returns the full filesystem path for a cover file.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save atomically writes data as name, replacing any existing file.
func (s *Storage) Save(name string, data []byte) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if len(data) == 0 {
		return errors.New("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := store.WriteFileAtomic(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cover %s: %w", name, err)
	}
	return nil
}

// SaveFrom streams r into name atomically. Restores use it to copy archive entries.
func (s *Storage) SaveFrom(name string, r io.Reader) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return store.WriteAtomic(s.Path(name), 0o644, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
}

// Get reads a cover file.
func (s *Storage) Get(name string) ([]byte, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("read cover %s: %w", name, err)
	}
	return data, nil
}

// Exists reports whether a regular file called name is present.
func (s *Storage) Exists(name string) bool {
	if !ValidName(name) {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(s.Path(name))
	return err == nil && info.Mode().IsRegular()
}

// Delete removes a cover. A missing file is not an error.
func (s *Storage) Delete(name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cover %s: %w", name, err)
	}
	return nil
}

// List returns the names of regular files in the covers directory, sorted.
// A missing directory yields an empty list.
func (s *Storage) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list covers: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && ValidName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Hash returns the hex SHA-256 of a cover, used as its ETag.
func (s *Storage) Hash(name string) (string, error) {
	data, err := s.Get(name)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
