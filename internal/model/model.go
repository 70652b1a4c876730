// Package model contains the app resolver models for the database.
package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("no scan found")

// Scan is one resolver run over a full file system image.
type Scan struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Archive   string    `json:"archive"`
	Selection string    `json:"selection"`
	StartedAt time.Time `json:"started_at"`
	Parsed    int       `json:"parsed"`
	Apps      []App     `gorm:"foreignKey:ScanID;constraint:OnDelete:CASCADE" json:"apps,omitempty"`
}

// App is one resolved metadata plist.
type App struct {
	gorm.Model
	ScanID         string `gorm:"index" json:"scan_id"`
	Default        string `json:"default"`
	GUID           string `gorm:"index" json:"guid"`
	Path           string `json:"guid_path"`
	Name           string `json:"app_name"`
	Developer      string `json:"developer,omitempty"`
	Installed      string `json:"installed,omitempty"`
	BundleID       string `gorm:"index" json:"bundle_id,omitempty"`
	Genre          string `json:"genre,omitempty"`
	FactoryInstall string `json:"default_app,omitempty"`
}
