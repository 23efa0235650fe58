// Package storage persists uploaded media behind a small backend-neutral
// interface. Keys are slash separated relative paths such as
// "images/1b4e28ba.jpg".
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrInvalidKey = errors.New("storage: invalid key")
	ErrNotExist   = errors.New("storage: object does not exist")
)

type Storage interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

type Options struct {
	Backend   string // "local" or "gcs"
	Root      string
	URL       string
	Bucket    string
	ProjectID string
}

// New builds the backend selected by opts.Backend.
func New(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Backend {
	case "", "local":
		return NewLocal(opts.Root, opts.URL)
	case "gcs":
		return NewGCS(ctx, opts.Bucket, opts.URL, opts.ProjectID)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}

// CleanKey normalises a key and rejects anything escaping the storage root.
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

func joinURL(base, key string) string {
	if base == "" {
		base = "/media/"
	}
	return strings.TrimRight(base, "/") + "/" + key
}
