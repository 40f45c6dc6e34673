// Package storage persists the marker collection document.
package storage

import (
	"errors"
	"fmt"

	"github.com/woozymasta/casas/internal/geo"
)

// Error kinds reported by a Store.
var (
	ErrRead   = errors.New("storage read error")
	ErrFormat = errors.New("storage format error")
	ErrWrite  = errors.New("storage write error")
)

// Store loads and saves the whole collection document.
type Store interface {
	Load() (geo.FeatureCollection, error)
	Save(geo.FeatureCollection) error
}

// Error describes a failed store operation. It matches both its Kind and
// the underlying cause with errors.Is.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes the kind and the cause.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// KindOf returns a short label for the error kind, for logs and metrics.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRead):
		return "read"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrWrite):
		return "write"
	default:
		return "unknown"
	}
}
