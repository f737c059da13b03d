package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files in a directory on disk.
type Local struct {
	dir    string
	prefix string
}

// NewLocal creates the directory if needed. prefix is the URL path the
// directory is served under, for example "/uploads".
func NewLocal(dir, prefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, prefix: "/" + strings.Trim(prefix, "/")}, nil
}

// Dir returns the directory files are written to.
func (l *Local) Dir() string {
	return l.dir
}

// Put writes body to a temporary file and renames it into place so readers
// never observe a partial file.
func (l *Local) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	dst := filepath.Join(l.dir, filepath.FromSlash(cleanKey(key)))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("local put %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("local put %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("local write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local close %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("local chmod %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("local rename %s: %w", key, err)
	}
	return nil
}

// Delete removes a stored file. A missing file is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(cleanKey(key))))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local delete %s: %w", key, err)
	}
	return nil
}

// URL returns the site-relative URL of a stored file.
func (l *Local) URL(key string) string {
	return l.prefix + "/" + cleanKey(key)
}
