package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/studybuddy/studybuddy-backend/internal/platform/envutil"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type diskStore struct {
	log  *logger.Logger
	root string
}

func NewDiskStore(log *logger.Logger) (Store, error) {
	root := envutil.GetEnv("STORAGE_LOCAL_DIR", "uploaded_files", log)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %q: %w", root, err)
	}
	return &diskStore{log: log.With("client", "DiskStore"), root: root}, nil
}

// resolve rejects keys that would escape the storage root.
func (s *diskStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *diskStore) Upload(ctx context.Context, key string, r io.Reader) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %q: %w", key, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write file %q: %w", key, err)
	}
	return f.Close()
}

func (s *diskStore) Download(ctx context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", key, err)
	}
	return data, nil
}

func (s *diskStore) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %q: %w", key, err)
	}
	return nil
}
