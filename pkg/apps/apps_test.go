package apps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInstalled(t *testing.T) {
	md := map[string]any{
		"itemName":   "Signal",
		"artistName": "Signal Messenger, LLC",
		"com.apple.iTunesStore.downloadInfo": map[string]any{
			"purchaseDate": "2021-05-01T10:00:00Z",
		},
		"softwareVersionBundleId": "org.whispersystems.signal",
		"genre":                   "Social Networking",
		"isFactoryInstall":        false,
	}

	got := Extract(md, "private/var/containers/Bundle/Application/1234/iTunesMetadata.plist", "1234", Installed)
	assert.Equal(t, Row{
		Default:        "No",
		GUID:           "1234",
		Path:           "private/var/containers/Bundle/Application/1234/iTunesMetadata.plist",
		Name:           "Signal",
		Developer:      "Signal Messenger, LLC",
		Installed:      "2021-05-01 10:00:00",
		BundleID:       "org.whispersystems.signal",
		Genre:          "Social Networking",
		FactoryInstall: "False",
	}, got)
}

func TestExtractInstalledMissingKeys(t *testing.T) {
	got := Extract(map[string]any{"unrelated": "value"}, "a/b/iTunesMetadata.plist", "b", Installed)

	values := got.Values()
	assert.Equal(t, "No", values[0])
	assert.Equal(t, "b", values[1])
	assert.Equal(t, "a/b/iTunesMetadata.plist", values[2])
	for i := 3; i < len(values); i++ {
		assert.Equal(t, Unknown, values[i], "column %s", Header[i])
	}
}

func TestExtractInstalledPartial(t *testing.T) {
	md := map[string]any{
		"itemName":                           "Maps",
		"com.apple.iTunesStore.downloadInfo": map[string]any{"accountInfo": map[string]any{}},
		"isFactoryInstall":                   true,
	}
	got := Extract(md, "x/GUID/iTunesMetadata.plist", "GUID", Installed)

	assert.Equal(t, "Maps", got.Name)
	assert.Equal(t, Unknown, got.Developer)
	assert.Equal(t, Unknown, got.Installed, "nested key missing")
	assert.Equal(t, Unknown, got.BundleID)
	assert.Equal(t, Unknown, got.Genre)
	assert.Equal(t, "True", got.FactoryInstall)
}

func TestExtractContainer(t *testing.T) {
	got := Extract(map[string]any{"MCMMetadataIdentifier": "com.example.app"}, "c/GUID/.com.apple.mobile_container_manager.metadata.plist", "GUID", Container)
	assert.Equal(t, []string{"Yes", "GUID", "c/GUID/.com.apple.mobile_container_manager.metadata.plist", "com.example.app"}, got.Values()[:4])
	for _, v := range got.Values()[4:] {
		assert.Empty(t, v)
	}

	got = Extract(map[string]any{"MCMMetadataUUID": "x"}, "p", "g", Container)
	assert.Equal(t, Unknown, got.Name)
	assert.Equal(t, "Yes", got.Default)
}

func TestPurchaseDate(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{name: "iso8601 string", v: "2021-05-01T10:00:00Z", want: "2021-05-01 10:00:00"},
		{name: "no zone", v: "2019-12-31T23:59:59", want: "2019-12-31 23:59:59"},
		{name: "plist date", v: time.Date(2020, 2, 3, 4, 5, 6, 0, time.UTC), want: "2020-02-03 04:05:06"},
		{name: "plist date non utc", v: time.Date(2020, 2, 3, 4, 5, 6, 0, time.FixedZone("X", 3600)), want: "2020-02-03 03:05:06"},
		{name: "wrong type", v: uint64(12), want: Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := map[string]any{"com.apple.iTunesStore.downloadInfo": map[string]any{"purchaseDate": tt.v}}
			assert.Equal(t, tt.want, purchaseDate(md))
		})
	}

	assert.Equal(t, Unknown, purchaseDate(map[string]any{}))
	assert.Equal(t, Unknown, purchaseDate(map[string]any{"com.apple.iTunesStore.downloadInfo": "not a dict"}))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "42", toString(uint64(42)))
	assert.Equal(t, "-7", toString(int64(-7)))
	assert.Equal(t, "1.5", toString(1.5))
	assert.Equal(t, "raw", toString([]byte("raw")))
	assert.Equal(t, "[a b]", toString([]any{"a", "b"}))
	assert.Equal(t, "", toString(""))
}

func TestGUIDFromPath(t *testing.T) {
	tests := map[string]string{
		"private/var/containers/Bundle/Application/5A0B/iTunesMetadata.plist":                   "5A0B",
		"/private/var/mobile/Containers/Data/Application/9F/.com.apple.mobile_container_manager.metadata.plist": "9F",
		"ABC/iTunesMetadata.plist": "ABC",
		"iTunesMetadata.plist":     Unknown,
		"/iTunesMetadata.plist":    Unknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, GUIDFromPath(in), in)
	}
}

func TestSelection(t *testing.T) {
	sel, err := ParseSelection("all")
	require.NoError(t, err)
	assert.Equal(t, []string{InstalledMetadata, ContainerMetadata}, sel.Targets())

	sel, err = ParseSelection("3rd")
	require.NoError(t, err)
	assert.Equal(t, []string{InstalledMetadata}, sel.Targets())

	for _, bad := range []string{"", "ALL", "third", "3"} {
		_, err := ParseSelection(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchemaFor(t *testing.T) {
	assert.Equal(t, Installed, SchemaFor("a/b/iTunesMetadata.plist"))
	assert.Equal(t, Container, SchemaFor("a/b/.com.apple.mobile_container_manager.metadata.plist"))
	assert.Equal(t, "installed", Installed.String())
	assert.Equal(t, "container", Container.String())
}

func TestRowFromValues(t *testing.T) {
	row := Row{Default: "No", GUID: "g", Path: "p", Name: "n", Developer: "d", Installed: "i", BundleID: "b", Genre: "ge", FactoryInstall: "f"}
	assert.Equal(t, row, RowFromValues(row.Values()))
	assert.Equal(t, Row{Default: "Yes", GUID: "g", Path: "p", Name: "n"}, RowFromValues([]string{"Yes", "g", "p", "n"}))
	assert.Len(t, Header, len(row.Values()))
}
