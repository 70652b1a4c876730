package report

import (
	"fmt"
	"path/filepath"

	"github.com/apex/log"
	"github.com/blacktop/appguid/internal/db"
	"github.com/blacktop/appguid/internal/model"
	"github.com/blacktop/appguid/pkg/apps"
	"github.com/google/uuid"
)

type dbSink struct {
	opts Options
	open func(dsn string, batchSize int) (db.Database, error)
}

func (s *dbSink) Render(rows []apps.Row) (out fmt.Stringer, err error) {
	dsn := s.opts.Database
	if dsn == "" {
		dsn = s.opts.Filename("db")
	}
	batch := s.opts.BatchSize
	if batch <= 0 {
		batch = 1000
	}

	open := s.open
	if open == nil {
		open = db.New
	}
	d, err := open(dsn, batch)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil && err == nil {
			out, err = nil, fmt.Errorf("failed to close database %s: %w", db.Redact(dsn), cerr)
		}
	}()
	if err := d.Connect(); err != nil {
		return nil, err
	}

	scan := &model.Scan{
		ID:        uuid.NewString(),
		Archive:   filepath.Base(s.opts.Archive),
		Selection: string(s.opts.Selection),
		StartedAt: s.opts.Started.UTC(),
		Parsed:    len(rows),
		Apps:      make([]model.App, 0, len(rows)),
	}
	for _, row := range rows {
		scan.Apps = append(scan.Apps, model.App{
			Default:        row.Default,
			GUID:           row.GUID,
			Path:           row.Path,
			Name:           row.Name,
			Developer:      row.Developer,
			Installed:      row.Installed,
			BundleID:       row.BundleID,
			Genre:          row.Genre,
			FactoryInstall: row.FactoryInstall,
		})
	}
	if err := d.CreateScan(scan); err != nil {
		return nil, fmt.Errorf("failed to store scan: %w", err)
	}
	log.WithField("scan", scan.ID).Debugf("Stored %d apps", len(scan.Apps))

	return ScanRef{ID: scan.ID, Database: db.Redact(dsn)}, nil
}

// ScanRef points at a scan stored in a database
type ScanRef struct {
	ID       string
	Database string
}

func (r ScanRef) String() string {
	return fmt.Sprintf("%s (scan %s)", r.Database, r.ID)
}
