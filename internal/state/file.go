package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps one JSON file per user under Dir. Writes are atomic and the
// version check is serialized within the process.
type FileStore struct {
	Dir string
	mu  sync.Mutex
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating record dir %s: %w", dir, err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(userID string) string {
	return filepath.Join(s.Dir, userID+".json")
}

// Load reads the record for userID. Returns a new record if not found.
func (s *FileStore) Load(_ context.Context, userID string) (*Record, error) {
	if err := ValidUserID(userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(userID)
}

func (s *FileStore) read(userID string) (*Record, error) {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewRecord(userID), nil
		}
		return nil, err
	}
	r, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding record for %s: %w", userID, err)
	}
	return r, nil
}

// Save writes r if the stored version still matches.
func (s *FileStore) Save(_ context.Context, r *Record) error {
	if err := ValidUserID(r.UserID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(r.UserID)
	if err != nil {
		return err
	}
	if current.Version != r.Version {
		return StaleError(r.UserID, r.Version, current.Version)
	}

	stamped := r.Stamped(time.Now())
	data, err := Encode(stamped)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path(r.UserID), data, 0644); err != nil {
		return err
	}
	r.Commit(stamped)
	return nil
}

func (s *FileStore) Close() error { return nil }

// writeFileAtomic writes to a temporary file in the same directory, fsyncs
// it and renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if _, err := f.Write(data); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
