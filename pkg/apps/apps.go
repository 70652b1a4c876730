// Package apps resolves iOS application GUID directories to the app metadata stored next to them.
package apps

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/spf13/cast"
)

const (
	// InstalledMetadata is the store metadata found in every installed app bundle GUID folder
	InstalledMetadata = "iTunesMetadata.plist"
	// ContainerMetadata is the metadata MobileContainerManager writes into every app container GUID folder
	ContainerMetadata = ".com.apple.mobile_container_manager.metadata.plist"
	// Unknown is the value of every column whose key is missing from the metadata
	Unknown = "unknown"
)

// Header is the column header of a row listing
var Header = []string{
	"Default",
	"GUID",
	"GUID Path",
	"App Name",
	"Developer",
	"Installed",
	"Bundle ID",
	"Genre",
	"Default App",
}

// Schema is the layout of a metadata plist
type Schema int

const (
	// Installed is the iTunesMetadata.plist layout
	Installed Schema = iota
	// Container is the .com.apple.mobile_container_manager.metadata.plist layout
	Container
)

func (s Schema) String() string {
	if s == Installed {
		return "installed"
	}
	return "container"
}

// SchemaFor returns the schema of the metadata file at member path p
func SchemaFor(p string) Schema {
	if strings.HasSuffix(p, InstalledMetadata) {
		return Installed
	}
	return Container
}

// Selection picks which metadata files are resolved
type Selection string

const (
	// All resolves both store apps and default app containers
	All Selection = "all"
	// ThirdParty resolves only store (3rd party) apps
	ThirdParty Selection = "3rd"
)

// ParseSelection validates an app selection mode
func ParseSelection(s string) (Selection, error) {
	switch Selection(s) {
	case All, ThirdParty:
		return Selection(s), nil
	default:
		return "", fmt.Errorf("invalid app selection %q: only accepts '%s' or '%s'", s, All, ThirdParty)
	}
}

// Targets returns the metadata file names to search for
func (s Selection) Targets() []string {
	if s == ThirdParty {
		return []string{InstalledMetadata}
	}
	return []string{InstalledMetadata, ContainerMetadata}
}

// Row is one resolved metadata file
type Row struct {
	Default        string `json:"default"`
	GUID           string `json:"guid"`
	Path           string `json:"guid_path"`
	Name           string `json:"app_name"`
	Developer      string `json:"developer,omitempty"`
	Installed      string `json:"installed,omitempty"`
	BundleID       string `json:"bundle_id,omitempty"`
	Genre          string `json:"genre,omitempty"`
	FactoryInstall string `json:"default_app,omitempty"`
}

// Values returns the row in Header order
func (r Row) Values() []string {
	return []string{
		r.Default,
		r.GUID,
		r.Path,
		r.Name,
		r.Developer,
		r.Installed,
		r.BundleID,
		r.Genre,
		r.FactoryInstall,
	}
}

// RowFromValues is the inverse of Row.Values; missing trailing columns stay empty
func RowFromValues(values []string) Row {
	var v [9]string
	copy(v[:], values)
	return Row{
		Default:        v[0],
		GUID:           v[1],
		Path:           v[2],
		Name:           v[3],
		Developer:      v[4],
		Installed:      v[5],
		BundleID:       v[6],
		Genre:          v[7],
		FactoryInstall: v[8],
	}
}

// GUIDFromPath returns the name of the directory holding the metadata file
func GUIDFromPath(p string) string {
	dir := path.Dir(strings.TrimSuffix(p, "/"))
	if dir == "." || dir == "/" {
		return Unknown
	}
	return path.Base(dir)
}

// Extract maps a decoded metadata plist to a row
func Extract(md map[string]any, p, guid string, schema Schema) Row {
	if schema == Container {
		return Row{
			Default: "Yes",
			GUID:    guid,
			Path:    p,
			Name:    stringOr(md, "MCMMetadataIdentifier"),
		}
	}

	return Row{
		Default:        "No",
		GUID:           guid,
		Path:           p,
		Name:           stringOr(md, "itemName"),
		Developer:      stringOr(md, "artistName"),
		Installed:      purchaseDate(md),
		BundleID:       stringOr(md, "softwareVersionBundleId"),
		Genre:          stringOr(md, "genre"),
		FactoryInstall: stringOr(md, "isFactoryInstall"),
	}
}

// lookup walks nested dictionaries
func lookup(md map[string]any, keys ...string) (any, bool) {
	var cur any = md
	for _, k := range keys {
		dict, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = dict[k]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringOr(md map[string]any, keys ...string) string {
	v, ok := lookup(md, keys...)
	if !ok {
		return Unknown
	}
	return toString(v)
}

func toString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case bool:
		if v {
			return "True"
		}
		return "False"
	case time.Time:
		return v.UTC().Format(time.DateTime)
	case []any, map[string]any:
		return fmt.Sprint(v)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

func purchaseDate(md map[string]any) string {
	v, ok := lookup(md, "com.apple.iTunesStore.downloadInfo", "purchaseDate")
	if !ok {
		return Unknown
	}
	switch v := v.(type) {
	case string:
		return strings.ReplaceAll(strings.ReplaceAll(v, "T", " "), "Z", "")
	case time.Time:
		return v.UTC().Format(time.DateTime)
	default:
		return Unknown
	}
}
