package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultURLPrefix is where the API serves the local upload directory.
const DefaultURLPrefix = "/uploads"

// LocalStore writes images into a directory served by the API itself.
type LocalStore struct {
	dir    string
	prefix string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir, prefix: DefaultURLPrefix}
}

// Dir is the directory the store writes into.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, name, _ string, body io.Reader) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	target := filepath.Join(s.dir, name)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return path.Join(s.prefix, name), nil
}
