package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStorage stores each key as a JSON file inside a directory
type FileStorage struct {
	fs  afero.Fs
	dir string
}

// NewFileStorage creates a file backend rooted at dir, creating it if needed
func NewFileStorage(fs afero.Fs, dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, errors.New("storage directory not provided")
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStorage{fs: fs, dir: dir}, nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the value stored under key
func (s *FileStorage) Get(_ context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set writes the value through a temp file and rename so readers never see a partial write
func (s *FileStorage) Set(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	target := s.path(key)
	tmp := target + ".tmp"

	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s temp file: %w", key, err)
	}

	if _, err := file.Write(value); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", key, err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync %s: %w", key, err)
	}

	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close %s temp file: %w", key, err)
	}

	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", key, err)
	}

	return nil
}

// Delete removes the value stored under key
func (s *FileStorage) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Health checks that the storage directory is reachable
func (s *FileStorage) Health(_ context.Context) error {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
