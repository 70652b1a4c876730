// Package db provides a database interface and implementations.
package db

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/blacktop/appguid/internal/model"
	"gorm.io/gorm"
)

// Database is the interface that wraps the basic database operations.
type Database interface {
	// Connect connects to the database and migrates the schema.
	Connect() error

	// CreateScan stores a scan together with its apps.
	CreateScan(scan *model.Scan) error

	// Scan returns the scan with the given id and its apps.
	// It returns ErrNotFound if the id does not exist.
	Scan(id string) (*model.Scan, error)

	// Scans returns every stored scan without apps, newest first.
	Scans() ([]model.Scan, error)

	// Close closes the database.
	Close() error
}

// New returns a Postgres database for postgres DSNs and a Sqlite database for everything else
func New(dsn string, batchSize int) (Database, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		p, err := NewPostgres(dsn, batchSize)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	s, err := NewSqlite(dsn, batchSize)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Redact hides the password of a postgres DSN
func Redact(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		return u.Redacted()
	}
	if !strings.Contains(dsn, "password=") {
		return dsn
	}
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}

// orm implements Database on top of an open gorm connection
type orm struct {
	db *gorm.DB
}

func (o *orm) migrate() error {
	return o.db.AutoMigrate(&model.Scan{}, &model.App{})
}

func (o *orm) CreateScan(scan *model.Scan) error {
	if o.db == nil {
		return fmt.Errorf("database not connected")
	}
	if result := o.db.Create(scan); result.Error != nil {
		return result.Error
	}
	return nil
}

func (o *orm) Scan(id string) (*model.Scan, error) {
	if o.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	var scan model.Scan
	if err := o.db.Preload("Apps").Where("id = ?", id).First(&scan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &scan, nil
}

func (o *orm) Scans() ([]model.Scan, error) {
	if o.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	var scans []model.Scan
	if err := o.db.Order("created_at desc").Find(&scans).Error; err != nil {
		return nil, err
	}
	return scans, nil
}

func (o *orm) Close() error {
	if o.db == nil {
		return nil
	}
	db, err := o.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
