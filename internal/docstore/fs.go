package docstore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

const lockSuffix = ".lock"

// FS stores documents as files under a root directory. A writer claims a
// document by creating "<name>.lock" next to it; while that file exists
// other writers get ErrLocked. Lock files older than StaleAfter are treated
// as abandoned and removed.
type FS struct {
	root       string
	staleAfter time.Duration
}

func NewFS(root string, staleAfter time.Duration) (*FS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create docstore dir %s", root)
	}
	return &FS{root: root, staleAfter: staleAfter}, nil
}

func (s *FS) path(name string) (string, error) {
	n, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(n)), nil
}

func (s *FS) Get(ctx context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	return data, nil
}

// Put writes to a temp file and renames it over the document so readers
// never see a half-written body.
func (s *FS) Put(ctx context.Context, name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrapf(err, "create dir for %s", name)
	}

	release, err := s.claim(p)
	if err != nil {
		return err
	}
	defer release()

	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", name)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", name)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return errors.Wrapf(err, "replace %s", name)
	}
	return nil
}

func (s *FS) claim(p string) (func(), error) {
	lockPath := p + lockSuffix
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, errors.Wrapf(err, "create lock %s", lockPath)
		}
		if !s.stale(lockPath) {
			return nil, ErrLocked
		}
		_ = os.Remove(lockPath)
	}
	return nil, ErrLocked
}

func (s *FS) stale(lockPath string) bool {
	if s.staleAfter <= 0 {
		return false
	}
	info, err := os.Stat(lockPath)
	if err != nil {
		return errors.Is(err, fs.ErrNotExist)
	}
	return time.Since(info.ModTime()) > s.staleAfter
}
