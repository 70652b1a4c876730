package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/appguid/internal/magic"
	"github.com/ubuntu/decorate"
)

type tarEntry struct {
	name    string
	ordinal int   // header position in the stream
	offset  int64 // data offset in the file, -1 when not addressable
	size    int64
}

// Tar is an (optionally compressed) tar backed Archive.
//
// Plain tars are indexed with the data offset of every member so reads are positional.
// Compressed tars and sparse members are read through a forward only cursor which
// restarts from the beginning of the stream when asked for an earlier member.
type Tar struct {
	f       *os.File
	kind    magic.Kind
	entries []tarEntry
	index   map[string]int

	stream io.ReadCloser
	tr     *tar.Reader
	cursor int
}

// OpenTar opens and indexes the tar file at path
func OpenTar(path string, kind magic.Kind) (_ *Tar, err error) {
	defer decorate.OnError(&err, "failed to open tar %s", path)

	if !kind.IsTar() {
		return nil, fmt.Errorf("%s is not a tar container", kind)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	t := &Tar{
		f:      f,
		kind:   kind,
		index:  make(map[string]int),
		cursor: -1,
	}
	if err := t.buildIndex(); err != nil {
		f.Close()
		return nil, err
	}

	return t, nil
}

func (t *Tar) buildIndex() error {
	r, err := magic.Decompress(t.f, t.kind)
	if err != nil {
		return err
	}
	defer r.Close()

	tr := tar.NewReader(r)
	for ordinal := 0; ; ordinal++ {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}
		if !hdr.FileInfo().Mode().IsRegular() {
			continue
		}

		if hdr.Typeflag == tar.TypeLink {
			target, ok := t.linkTarget(hdr.Linkname)
			if !ok {
				log.WithFields(log.Fields{"name": hdr.Name, "link": hdr.Linkname}).Debug("Skipping hard link to unknown member")
				continue
			}
			t.index[hdr.Name] = len(t.entries)
			t.entries = append(t.entries, tarEntry{name: hdr.Name, ordinal: target.ordinal, offset: target.offset, size: target.size})
			continue
		}

		e := tarEntry{name: hdr.Name, ordinal: ordinal, offset: -1, size: hdr.Size}
		if !t.kind.Compressed() && !isSparse(hdr) {
			// tar.Reader does not buffer, so the file position is the start of the member data
			if e.offset, err = t.f.Seek(0, io.SeekCurrent); err != nil {
				return fmt.Errorf("failed to get offset of %s: %w", hdr.Name, err)
			}
		}

		t.index[hdr.Name] = len(t.entries)
		t.entries = append(t.entries, e)
	}

	return nil
}

// linkTarget returns the entry a hard link points at; targets always precede their links
func (t *Tar) linkTarget(linkname string) (tarEntry, bool) {
	for _, name := range []string{linkname, path.Clean(linkname)} {
		if idx, ok := t.index[name]; ok {
			return t.entries[idx], true
		}
	}
	return tarEntry{}, false
}

func isSparse(hdr *tar.Header) bool {
	if hdr.Typeflag == tar.TypeGNUSparse {
		return true
	}
	for k := range hdr.PAXRecords {
		if strings.HasPrefix(k, "GNU.sparse.") {
			return true
		}
	}
	return false
}

// Names returns the regular file members of the tar
func (t *Tar) Names() []string {
	names := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		names = append(names, e.name)
	}
	return names
}

// ReadFile returns the contents of the named member
func (t *Tar) ReadFile(name string) ([]byte, error) {
	idx, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	e := t.entries[idx]

	if e.offset >= 0 {
		data, err := io.ReadAll(io.NewSectionReader(t.f, e.offset, e.size))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return data, nil
	}

	return t.readStream(e)
}

func (t *Tar) readStream(e tarEntry) ([]byte, error) {
	if t.tr == nil || t.cursor >= e.ordinal {
		if err := t.rewind(); err != nil {
			return nil, err
		}
	}

	for t.cursor < e.ordinal {
		if _, err := t.tr.Next(); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("failed to seek to %s: %w", e.name, err)
		}
		t.cursor++
	}

	data, err := io.ReadAll(t.tr)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", e.name, err)
	}
	return data, nil
}

func (t *Tar) rewind() error {
	if t.stream != nil {
		t.stream.Close()
		t.stream, t.tr = nil, nil
	}
	if _, err := t.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind tar: %w", err)
	}
	r, err := magic.Decompress(t.f, t.kind)
	if err != nil {
		return err
	}
	t.stream = r
	t.tr = tar.NewReader(r)
	t.cursor = -1
	return nil
}

// Close closes the tar file
func (t *Tar) Close() error {
	if t.stream != nil {
		t.stream.Close()
	}
	return t.f.Close()
}
