// Package testutils provides helper functions for testing
package testutils

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/blacktop/go-plist"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// Member is a single entry of a generated archive.
// Names ending in "/" are written as directories.
// A non-empty HardLink writes a tar hard link to that member name.
type Member struct {
	Name     string
	Data     []byte
	HardLink string
}

// Plist encodes v as an XML property list.
func Plist(t *testing.T, v any) []byte {
	t.Helper()
	data, err := plist.Marshal(v, plist.XMLFormat)
	require.NoError(t, err, "Setup: failed to marshal plist")
	return data
}

// BinaryPlist encodes v as a binary property list.
func BinaryPlist(t *testing.T, v any) []byte {
	t.Helper()
	data, err := plist.Marshal(v, plist.BinaryFormat)
	require.NoError(t, err, "Setup: failed to marshal binary plist")
	return data
}

// WriteZip writes members to a new zip file at path.
func WriteZip(t *testing.T, path string, members []Member) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err, "Setup: failed to create zip file")
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, m := range members {
		if m.HardLink != "" {
			t.Fatalf("Setup: zip has no hard links (%s)", m.Name)
		}
		w, err := zw.Create(m.Name)
		require.NoError(t, err, "Setup: failed to create zip member %s", m.Name)
		if strings.HasSuffix(m.Name, "/") {
			continue
		}
		_, err = w.Write(m.Data)
		require.NoError(t, err, "Setup: failed to write zip member %s", m.Name)
	}
	require.NoError(t, zw.Close(), "Setup: failed to close zip writer")
}

// WriteTar writes members to a new tar file at path.
// compression is one of "", "gz" or "xz".
func WriteTar(t *testing.T, path string, members []Member, compression string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err, "Setup: failed to create tar file")
	defer f.Close()

	var w io.WriteCloser
	switch compression {
	case "":
		w = nopWriteCloser{f}
	case "gz":
		w = gzip.NewWriter(f)
	case "xz":
		xw, err := xz.NewWriter(f)
		require.NoError(t, err, "Setup: failed to create xz writer")
		w = xw
	default:
		t.Fatalf("Setup: unsupported compression %q", compression)
	}

	tw := tar.NewWriter(w)
	for _, m := range members {
		hdr := &tar.Header{Name: m.Name, Mode: 0644, Size: int64(len(m.Data)), Typeflag: tar.TypeReg}
		if strings.HasSuffix(m.Name, "/") {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0755
			hdr.Size = 0
		} else if m.HardLink != "" {
			hdr.Typeflag = tar.TypeLink
			hdr.Linkname = m.HardLink
			hdr.Size = 0
		}
		require.NoError(t, tw.WriteHeader(hdr), "Setup: failed to write tar header %s", m.Name)
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write(m.Data)
			require.NoError(t, err, "Setup: failed to write tar member %s", m.Name)
		}
	}
	require.NoError(t, tw.Close(), "Setup: failed to close tar writer")
	require.NoError(t, w.Close(), "Setup: failed to close compressor")
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
