// Package archive provides a single read-only view over zip and tar full file system images.
package archive

import (
	"errors"
	"fmt"

	"github.com/blacktop/appguid/internal/magic"
)

// ErrNotFound is returned by ReadFile for names that are not a regular member of the archive
var ErrNotFound = errors.New("member not found in archive")

// Archive is a format agnostic archive handle
type Archive interface {
	// Names returns the regular file members in the archive's native order.
	// Duplicated names are returned once per occurrence.
	Names() []string
	// ReadFile returns the contents of the named member.
	// The last occurrence of a duplicated name wins.
	ReadFile(name string) ([]byte, error)
	// Close releases the underlying file.
	Close() error
}

// Open sniffs the container at path and returns the matching archive handle
func Open(path string) (Archive, error) {
	kind, err := magic.Detect(path)
	if err != nil {
		return nil, err
	}
	return OpenKind(path, kind)
}

// OpenKind opens path as an archive of an already detected kind
func OpenKind(path string, kind magic.Kind) (Archive, error) {
	switch {
	case kind == magic.Zip:
		z, err := OpenZip(path)
		if err != nil {
			return nil, err
		}
		return z, nil
	case kind.IsTar():
		t, err := OpenTar(path, kind)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%s: %w", path, magic.ErrUnknownFormat)
	}
}
