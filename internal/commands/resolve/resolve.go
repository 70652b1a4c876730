// Package resolve resolves app GUIDs of an iOS full file system image.
package resolve

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/blacktop/appguid/internal/magic"
	"github.com/blacktop/appguid/internal/utils"
	"github.com/blacktop/appguid/pkg/apps"
	"github.com/blacktop/appguid/pkg/archive"
	"github.com/blacktop/appguid/pkg/report"
)

// Config is the resolve command config
type Config struct {
	// Input is the zip or tar full file system image
	Input string
	// Apps is the app selection: all or 3rd
	Apps string
	// Output is the output format: csv, df, json or db
	Output string
	// Dir is the folder output files are written to
	Dir string
	// Database is the sqlite path or postgres DSN of the db output
	Database string
	// BatchSize is the db insert batch size
	BatchSize int
	// Styled renders df tables with colors
	Styled bool
	// MaxWidth truncates df table cells
	MaxWidth int
	// Interactive browses df output in a terminal UI
	Interactive bool
	// Progress is called after every archive member
	Progress func(done, total int)

	kind      magic.Kind
	selection apps.Selection
	format    report.Format
}

// Result is the outcome of a resolve run
type Result struct {
	Parsed int
	Stats  apps.Stats
	Kind   magic.Kind
	Output fmt.Stringer
}

// Validate checks the config before the archive is opened
func (c *Config) Validate() error {
	fi, err := os.Stat(c.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input %s does not exist", c.Input)
		}
		return fmt.Errorf("failed to stat input %s: %w", c.Input, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("input %s is not a file", c.Input)
	}

	c.kind, err = magic.Detect(c.Input)
	if err != nil {
		return fmt.Errorf("failed to detect format of %s: %w", c.Input, err)
	}
	c.selection, err = apps.ParseSelection(c.Apps)
	if err != nil {
		return err
	}
	c.format, err = report.ParseFormat(c.Output)
	if err != nil {
		return err
	}
	if c.Interactive && c.format != report.DataFrame {
		return fmt.Errorf("interactive table requires the %s output format", report.DataFrame)
	}
	if c.Dir != "" {
		if fi, err := os.Stat(c.Dir); err != nil || !fi.IsDir() {
			return fmt.Errorf("output dir %s is not a directory", c.Dir)
		}
	}
	return nil
}

// Run scans the archive and renders the resolved apps.
// Nothing is rendered once ctx is done.
func Run(ctx context.Context, conf *Config) (*Result, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()

	sink, err := report.New(conf.format, report.Options{
		Dir:       conf.Dir,
		Started:   started,
		Archive:   conf.Input,
		Selection: conf.selection,
		Database:  conf.Database,
		BatchSize: conf.BatchSize,
		Styled:    conf.Styled,
		MaxWidth:  conf.MaxWidth,
	})
	if err != nil {
		return nil, err
	}

	a, err := archive.OpenKind(conf.Input, conf.kind)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"format": conf.kind,
		"apps":   conf.selection,
	}).Debug("Scanning archive")

	w := apps.NewWalker(conf.selection)
	w.Progress = conf.Progress

	rows, stats, err := w.ScanContext(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", conf.Input, err)
	}
	utils.Indent(log.Debug, 2)(fmt.Sprintf("Matched %d of %d members (%d failed, %d empty)",
		stats.Matched, stats.Members, stats.Failed, stats.Empty))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := sink.Render(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s output: %w", conf.format, err)
	}

	return &Result{
		Parsed: len(rows),
		Stats:  stats,
		Kind:   conf.kind,
		Output: out,
	}, nil
}
