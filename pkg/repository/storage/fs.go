// Package storage provides file-backed and in-memory implementations of the
// Storage interface consumed by the reflection store.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kagami-lab/kagami/pkg/domain/interfaces"
	"github.com/kagami-lab/kagami/pkg/domain/types"
)

// FS implements interfaces.Storage backed by the local file system, rooted
// at a base directory. All paths are resolved relative to the root and may
// not escape it.
type FS struct {
	root string
}

var _ interfaces.Storage = (*FS)(nil)

// NewFS creates a new FS storage rooted at the given directory. The root is
// created if it does not exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve storage root",
			goerr.T(types.ErrTagPersistence), goerr.V("root", root))
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create storage root",
			goerr.T(types.ErrTagPersistence), goerr.V("root", abs))
	}
	return &FS{root: abs}, nil
}

// safePath resolves a relative path against the root and rejects any result
// that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", goerr.New("absolute paths not allowed",
			goerr.T(types.ErrTagPersistence), goerr.V("path", rel))
	}
	joined := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(joined, f.root+string(os.PathSeparator)) && joined != f.root {
		return "", goerr.New("path escapes storage root",
			goerr.T(types.ErrTagPersistence), goerr.V("path", rel))
	}
	return joined, nil
}

func (f *FS) Exists(ctx context.Context, path string) (bool, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to stat path",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}
	return true, nil
}

func (f *FS) Read(ctx context.Context, path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}
	return data, nil
}

// Write stores data atomically: tmp file in the target directory, then rename.
func (f *FS) Write(ctx context.Context, path string, data []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create parent folder",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}

	tmp, err := os.CreateTemp(dir, ".kagami-tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return goerr.Wrap(err, "failed to write temp file",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temp file",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return goerr.Wrap(err, "failed to replace file",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}
	return nil
}

func (f *FS) CreateFolder(ctx context.Context, path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create folder",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}
	return nil
}
