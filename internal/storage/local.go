package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LocalStore writes blobs to an afero filesystem; the API serves them back
// under baseURL.
type LocalStore struct {
	fs      afero.Fs
	baseURL string
}

func NewLocalStore(fs afero.Fs, baseURL string) *LocalStore {
	return &LocalStore{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if err := s.fs.MkdirAll(filepath.Dir(key), 0o755); err != nil {
		return "", err
	}
	f, err := s.fs.Create(key)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	err := s.fs.Remove(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalStore) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Open reads a stored blob back.
func (s *LocalStore) Open(key string) (afero.File, error) {
	return s.fs.Open(key)
}
