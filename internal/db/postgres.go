package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres is a database that stores data in a Postgres database.
type Postgres struct {
	DSN       string
	BatchSize int

	orm
}

// NewPostgres creates a new Postgres database.
func NewPostgres(dsn string, batchSize int) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("'dsn' is required")
	}
	return &Postgres{
		DSN:       dsn,
		BatchSize: batchSize,
	}, nil
}

// Connect connects to the database.
func (p *Postgres) Connect() (err error) {
	p.db, err = gorm.Open(postgres.Open(p.DSN), &gorm.Config{
		CreateBatchSize: p.BatchSize,
		TranslateError:  true,
		Logger:          logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect postgres database: %w", err)
	}
	return p.migrate()
}
