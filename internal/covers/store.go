// Package covers stores book cover images on the local filesystem. Covers
// are device-local: the remote mirror never sees them, so a cover
// path in the database always refers to a file under this store's directory.
package covers

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store handles on-device cover image files.
type Store struct {
	dir string
}

// NewStore creates a cover store rooted at the specified directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the image bytes for a book and returns the absolute path to
// the stored file. A previous cover for the same book is removed, so each
// book holds at most one cover file.
func (s *Store) Save(bookID string, r io.Reader) (string, error) {
	tmpFile, err := os.CreateTemp(s.dir, "cover_tmp_")
	if err != nil {
		return "", err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmpFile, hasher), r); err != nil {
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}

	if err := s.Remove(bookID); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("cover_%s_%x.jpg", bookID, hasher.Sum(nil)[:8])
	path := filepath.Join(s.dir, filename)
	if err := os.Rename(tmpPath, path); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// Remove deletes any cover files stored for a book.
func (s *Store) Remove(bookID string) error {
	pattern := filepath.Join(s.dir, fmt.Sprintf("cover_%s_*", bookID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}
