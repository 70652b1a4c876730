// Package report renders resolved app rows.
package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/blacktop/appguid/pkg/apps"
)

// Format is an output format
type Format string

const (
	// CSV writes a comma separated file
	CSV Format = "csv"
	// DataFrame builds an in-memory table
	DataFrame Format = "df"
	// JSON writes a JSON array file
	JSON Format = "json"
	// DB stores the scan in a sqlite/postgres database
	DB Format = "db"
)

// FilePrefix is the name prefix of every generated output file
const FilePrefix = "iOS_Apps_"

// Formats lists the supported formats
var Formats = []Format{CSV, DataFrame, JSON, DB}

// ParseFormat validates an output format
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q: only accepts %v", s, Formats)
}

// Options configures a sink
type Options struct {
	// Dir is the folder generated files are written to
	Dir string
	// Started is the scan start time used in generated file names
	Started time.Time
	// Archive is the scanned image
	Archive string
	// Selection is the app selection of the scan
	Selection apps.Selection
	// Database is the sqlite path or postgres DSN of the db format (generated when empty)
	Database string
	// BatchSize is the db insert batch size
	BatchSize int
	// Styled renders df tables with colors
	Styled bool
	// MaxWidth truncates df table cells (60 when unset)
	MaxWidth int
}

// Filename returns the generated output file for the extension
func (o Options) Filename(ext string) string {
	return filepath.Join(o.Dir, fmt.Sprintf("%s%d.%s", FilePrefix, o.Started.Unix(), ext))
}

// Sink renders a full set of rows once the scan completed
type Sink interface {
	Render(rows []apps.Row) (fmt.Stringer, error)
}

// Path is the location of a written output
type Path string

func (p Path) String() string { return string(p) }

// New returns the sink for the format
func New(format Format, opts Options) (Sink, error) {
	if opts.Started.IsZero() {
		opts.Started = time.Now()
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	switch format {
	case CSV:
		return &csvSink{opts: opts}, nil
	case DataFrame:
		return &frameSink{opts: opts}, nil
	case JSON:
		return &jsonSink{opts: opts}, nil
	case DB:
		return &dbSink{opts: opts}, nil
	default:
		return nil, fmt.Errorf("invalid output format %q: only accepts %v", format, Formats)
	}
}
