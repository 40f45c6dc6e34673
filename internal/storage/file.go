package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/casas/internal/geo"
)

const (
	indent   = "  "
	filePerm = 0o644
)

// File stores the collection as a single pretty-printed JSON file.
// It does not synchronize callers; see markers.Service.
type File struct {
	path string
}

// NewFile returns a store backed by the file at path. The file is not
// created; it must be provisioned before the first Load.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Load reads and parses the backing file.
func (f *File) Load() (geo.FeatureCollection, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return geo.FeatureCollection{}, &Error{Kind: ErrRead, Path: f.path, Err: err}
	}

	var fc geo.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return geo.FeatureCollection{}, &Error{Kind: ErrFormat, Path: f.path, Err: err}
	}

	return fc, nil
}

// Save replaces the backing file with the encoded document. The data is
// written to a temporary file in the same directory and renamed into place.
func (f *File) Save(fc geo.FeatureCollection) error {
	data, err := Encode(fc)
	if err != nil {
		return &Error{Kind: ErrWrite, Path: f.path, Err: err}
	}

	if err := WriteFileAtomic(f.path, data); err != nil {
		return &Error{Kind: ErrWrite, Path: f.path, Err: err}
	}

	return nil
}

// Encode renders the document the way it is stored on disk.
func Encode(fc geo.FeatureCollection) ([]byte, error) {
	return geo.Encode(fc, indent)
}

// WriteFileAtomic replaces path with data through a temporary file in the
// same directory. The mode of an existing file is kept.
func WriteFileAtomic(path string, data []byte) error {
	perm := fs.FileMode(filePerm)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", tmp.Name()).Msg("Failed to remove temporary file")
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
