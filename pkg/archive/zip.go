package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// Zip is a zip backed Archive
type Zip struct {
	r     *zip.ReadCloser
	names []string
	files map[string]*zip.File
}

// OpenZip opens the zip file at path
func OpenZip(path string) (*Zip, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip %s: %w", path, err)
	}

	z := &Zip{
		r:     r,
		files: make(map[string]*zip.File, len(r.File)),
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		z.names = append(z.names, f.Name)
		z.files[f.Name] = f
	}

	return z, nil
}

// Names returns the regular file members of the zip
func (z *Zip) Names() []string {
	return append([]string(nil), z.names...)
}

// ReadFile returns the inflated contents of the named member
func (z *Zip) ReadFile(name string) ([]byte, error) {
	f, ok := z.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file within zip: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Close closes the zip file
func (z *Zip) Close() error {
	return z.r.Close()
}
