// Package storage keeps uploaded résumé binaries. Stored objects are
// addressed by the public path handed back from Put, e.g. "/uploads/x.pdf".
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var ErrNotFound = errors.New("storage: object not found")

type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
}

// FileStore writes objects under root/prefix on an afero filesystem.
type FileStore struct {
	fs     afero.Fs
	root   string
	prefix string
}

func NewFileStore(fs afero.Fs, root, prefix string) *FileStore {
	return &FileStore{
		fs:     fs,
		root:   root,
		prefix: path.Clean("/" + prefix),
	}
}

func (s *FileStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("storage: invalid object name %q", name)
	}

	dir := filepath.Join(s.root, filepath.FromSlash(s.prefix))
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir %s: %w", dir, err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", name, err)
	}
	return path.Join(s.prefix, name), nil
}

func (s *FileStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean("/" + ref)
	if !strings.HasPrefix(clean, s.prefix+"/") {
		return nil, fmt.Errorf("storage: reference %q outside %s", ref, s.prefix)
	}

	data, err := afero.ReadFile(s.fs, filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("storage: read %s: %w", ref, err)
	}
	return data, nil
}
