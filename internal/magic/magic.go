// Package magic sniffs the container format of a full file system image.
package magic

import (
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// Kind is a supported archive container
type Kind int

const (
	Unknown Kind = iota
	Zip
	Tar
	TarGzip
	TarBzip2
	TarXz
)

// ErrUnknownFormat is returned when the file is neither a zip nor a (compressed) tar
var ErrUnknownFormat = errors.New("unrecognised file format - must be a zip or tar archive")

const blockSize = 512

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	ustarMagic = []byte("ustar")
)

func (k Kind) String() string {
	switch k {
	case Zip:
		return "zip"
	case Tar:
		return "tar"
	case TarGzip:
		return "tar.gz"
	case TarBzip2:
		return "tar.bz2"
	case TarXz:
		return "tar.xz"
	default:
		return "unknown"
	}
}

// IsTar returns true for every tar flavour
func (k Kind) IsTar() bool {
	return k == Tar || k == TarGzip || k == TarBzip2 || k == TarXz
}

// Compressed returns true if the tar stream has to be inflated
func (k Kind) Compressed() bool {
	return k == TarGzip || k == TarBzip2 || k == TarXz
}

// Detect returns the container kind of the file at filePath
func Detect(filePath string) (Kind, error) {
	fi, err := os.Stat(filePath)
	if err != nil {
		return Unknown, errors.Wrapf(err, "failed to stat %s", filePath)
	}
	if !fi.Mode().IsRegular() {
		return Unknown, fmt.Errorf("%s is not a regular file", filePath)
	}

	if zr, err := zip.OpenReader(filePath); err == nil {
		zr.Close()
		return Zip, nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return Unknown, errors.Wrapf(err, "failed to open file %s", filePath)
	}
	defer f.Close()

	var hdr [6]byte
	n, err := io.ReadFull(f, hdr[:])
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return Unknown, ErrUnknownFormat
		}
		return Unknown, errors.Wrap(err, "failed to read magic")
	}
	kind := Tar
	switch {
	case bytes.HasPrefix(hdr[:n], gzipMagic):
		kind = TarGzip
	case bytes.HasPrefix(hdr[:n], bzip2Magic):
		kind = TarBzip2
	case bytes.HasPrefix(hdr[:n], xzMagic):
		kind = TarXz
	}

	if probe(f, kind) {
		return kind, nil
	}
	// a plain tar whose first member name happens to look like a compression magic
	if kind != Tar && probe(f, Tar) {
		return Tar, nil
	}

	return Unknown, ErrUnknownFormat
}

func probe(f *os.File, kind Kind) bool {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return false
	}
	r, err := Decompress(f, kind)
	if err != nil {
		return false
	}
	defer r.Close()

	var block [blockSize]byte
	if _, err := io.ReadFull(r, block[:]); err != nil {
		return false
	}
	return IsTarHeader(block[:])
}

// Decompress wraps r with the decompressor needed for the tar kind
func Decompress(r io.Reader, kind Kind) (io.ReadCloser, error) {
	switch kind {
	case Tar:
		return io.NopCloser(r), nil
	case TarGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case TarBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case TarXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	default:
		return nil, fmt.Errorf("%s is not a tar container", kind)
	}
}

// IsTarHeader checks a 512 byte block for a ustar magic or a valid v7 header checksum.
// An all zero block is the end-of-archive marker of an empty tar.
func IsTarHeader(block []byte) bool {
	if len(block) < blockSize {
		return false
	}
	if bytes.Equal(block[257:262], ustarMagic) {
		return true
	}

	zero := true
	for _, b := range block[:blockSize] {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return true
	}

	field := strings.Trim(string(block[148:156]), "\x00 ")
	if len(field) == 0 {
		return false
	}
	want, err := strconv.ParseInt(field, 8, 64)
	if err != nil {
		return false
	}

	var unsigned, signed int64
	for i, b := range block[:blockSize] {
		if i >= 148 && i < 156 {
			b = ' '
		}
		unsigned += int64(b)
		signed += int64(int8(b))
	}

	return want == unsigned || want == signed
}
