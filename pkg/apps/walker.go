package apps

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/apex/log"
	"github.com/blacktop/appguid/pkg/archive"
	"github.com/blacktop/go-plist"
)

// Match is a decoded metadata file found in an archive
type Match struct {
	GUID     string
	Path     string
	Metadata map[string]any
	Schema   Schema
}

// Stats counts what a walk saw
type Stats struct {
	Members int // regular file members in the archive
	Matched int // members named like one of the targets
	Failed  int // matched members that could not be read or decoded
	Empty   int // matched members that decoded to an empty dictionary
	Parsed  int // matches handed to the callback
}

// Walker scans an archive for metadata files
type Walker struct {
	Targets []string
	// Progress is called after every member with the number of members visited so far
	Progress func(done, total int)
}

// NewWalker creates a walker for the metadata files of the app selection
func NewWalker(sel Selection) *Walker {
	return &Walker{Targets: sel.Targets()}
}

func (w *Walker) match(name string) bool {
	base := path.Base(name)
	for _, target := range w.Targets {
		if base == target {
			return true
		}
	}
	return false
}

// Walk calls fn for every matched non-empty metadata plist in archive order.
// Members that fail to read or decode are logged and skipped.
func (w *Walker) Walk(a archive.Archive, fn func(Match) error) (Stats, error) {
	return w.WalkContext(context.Background(), a, fn)
}

// WalkContext is Walk stopping with ctx.Err() once ctx is done
func (w *Walker) WalkContext(ctx context.Context, a archive.Archive, fn func(Match) error) (Stats, error) {
	var stats Stats

	names := a.Names()
	stats.Members = len(names)

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if w.Progress != nil {
			w.Progress(i+1, len(names))
		}
		if !w.match(name) {
			continue
		}
		stats.Matched++

		guid := GUIDFromPath(name)
		entry := log.WithFields(log.Fields{"guid": guid, "path": name})

		data, err := a.ReadFile(name)
		if err != nil {
			entry.WithError(err).Error("could not read plist")
			stats.Failed++
			continue
		}

		md, err := decode(data)
		if err != nil {
			entry.WithError(err).Errorf("could not parse plist for %s", guid)
			stats.Failed++
			continue
		}
		if len(md) == 0 {
			stats.Empty++
			continue
		}

		if err := fn(Match{GUID: guid, Path: name, Metadata: md, Schema: SchemaFor(name)}); err != nil {
			return stats, err
		}
		stats.Parsed++
	}

	return stats, nil
}

// Scan walks the archive and extracts one row per match
func (w *Walker) Scan(a archive.Archive) ([]Row, Stats, error) {
	return w.ScanContext(context.Background(), a)
}

// ScanContext is Scan stopping with ctx.Err() once ctx is done
func (w *Walker) ScanContext(ctx context.Context, a archive.Archive) ([]Row, Stats, error) {
	var rows []Row
	stats, err := w.WalkContext(ctx, a, func(m Match) error {
		log.WithFields(log.Fields{"guid": m.GUID, "schema": m.Schema}).Debug("Found app metadata")
		rows = append(rows, Extract(m.Metadata, m.Path, m.GUID, m.Schema))
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return rows, stats, nil
}

func decode(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("failed to decode plist: empty file")
	}
	md := make(map[string]any)
	if err := plist.NewDecoder(bytes.NewReader(data)).Decode(&md); err != nil {
		return nil, fmt.Errorf("failed to decode plist: %w", err)
	}
	return md, nil
}
