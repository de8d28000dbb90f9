package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lzdw/lzdraw/pkg/errors"
)

// FileStore keeps each record as a JSON file in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns ~/.config/lzdraw/architectures.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "lzdraw", "architectures"), nil
}

// NewFileStore creates a file store rooted at baseDir, creating it if needed.
// An empty baseDir uses DefaultDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(_ context.Context, rec *Record) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.recordPath(rec.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write record")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInternal, err, "write record")
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read record")
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse record %s", id)
	}
	return &rec, nil
}

// List reads every record file. Unreadable files are skipped.
func (s *FileStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read store dir")
	}

	var recs []*Record
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		if checkID(strings.TrimSuffix(name, ".json")) != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		recs = append(recs, &rec)
	}

	sortNewest(recs)
	if n := listLimit(limit); len(recs) > n {
		recs = recs[:n]
	}
	return recs, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
