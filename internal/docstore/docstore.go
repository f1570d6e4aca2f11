// Package docstore keeps whole documents (the order and appointment sheets)
// by name. Every backend reads and writes the full body; there is no partial
// update and no transaction spanning two calls.
package docstore

import (
	"context"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrLocked means another writer holds the document. It is transient and
	// callers may retry.
	ErrLocked = errors.New("document is locked")
)

type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
}

// cleanName normalises a document name to a relative slash path and rejects
// names that would escape the store root.
func cleanName(name string) (string, error) {
	n := path.Clean("/" + strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	n = strings.TrimPrefix(n, "/")
	if n == "" || n == "." {
		return "", errors.Newf("invalid document name %q", name)
	}
	return n, nil
}
