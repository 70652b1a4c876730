package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blacktop/appguid/internal/db"
	"github.com/blacktop/appguid/pkg/apps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var started = time.Unix(1633046400, 0)

var rows = []apps.Row{
	{
		Default:        "No",
		GUID:           "5A0B0E3C-2B6E-4F0A-9C39-1C1E9E0F5D11",
		Path:           "private/var/containers/Bundle/Application/5A0B0E3C-2B6E-4F0A-9C39-1C1E9E0F5D11/iTunesMetadata.plist",
		Name:           "Signal - Private Messenger",
		Developer:      "Signal Messenger, LLC",
		Installed:      "2021-05-01 10:00:00",
		BundleID:       "org.whispersystems.signal",
		Genre:          "Social Networking",
		FactoryInstall: "False",
	},
	{
		Default: "Yes",
		GUID:    "9F",
		Path:    "private/var/mobile/Containers/Data/Application/9F/.com.apple.mobile_container_manager.metadata.plist",
		Name:    "com.apple.mobilesafari",
	},
	{
		Default:        "No",
		GUID:           "77",
		Path:           "private/var/containers/Bundle/Application/77/iTunesMetadata.plist",
		Name:           "Quote \"this\", and a\nnewline",
		Developer:      apps.Unknown,
		Installed:      apps.Unknown,
		BundleID:       apps.Unknown,
		Genre:          apps.Unknown,
		FactoryInstall: apps.Unknown,
	},
}

func TestParseFormat(t *testing.T) {
	for _, f := range []string{"csv", "df", "json", "db"} {
		got, err := ParseFormat(f)
		require.NoError(t, err)
		assert.Equal(t, Format(f), got)
	}
	_, err := ParseFormat("txt")
	assert.Error(t, err)

	_, err = New(Format("xlsx"), Options{})
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	opts := Options{Dir: "/cases/42", Started: started}
	assert.Equal(t, "/cases/42/iOS_Apps_1633046400.csv", opts.Filename("csv"))
}

func TestCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sink, err := New(CSV, Options{Dir: dir, Started: started})
	require.NoError(t, err)

	out, err := sink.Render(rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "iOS_Apps_1633046400.csv"), out.String())

	data, err := os.ReadFile(out.String())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Default,GUID,GUID Path,App Name,Developer,Installed,Bundle ID,Genre,Default App\n"))

	got, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestCSVNoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(apps.Header, ",")+"\n", buf.String())

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestCSVContainerRowsHaveNineFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows[1:2]))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 8, strings.Count(lines[1], ","))
}

func TestCSVBadDir(t *testing.T) {
	sink, err := New(CSV, Options{Dir: filepath.Join(t.TempDir(), "missing"), Started: started})
	require.NoError(t, err)
	_, err = sink.Render(rows)
	assert.Error(t, err)
}

func TestDataFrame(t *testing.T) {
	sink, err := New(DataFrame, Options{Started: started})
	require.NoError(t, err)

	out, err := sink.Render(rows)
	require.NoError(t, err)
	f, ok := out.(*Frame)
	require.True(t, ok, "df sink returns a *Frame")

	assert.Equal(t, apps.Header, f.Columns)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, rows, f.Rows())

	guids, err := f.Column("GUID")
	require.NoError(t, err)
	assert.Equal(t, []string{"5A0B0E3C-2B6E-4F0A-9C39-1C1E9E0F5D11", "9F", "77"}, guids)

	devs, err := f.Column("Developer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Signal Messenger, LLC", "", apps.Unknown}, devs)

	_, err = f.Column("Nope")
	assert.Error(t, err)

	s := f.String()
	assert.Contains(t, s, "Bundle ID")
	assert.Contains(t, s, "com.apple.mobilesafari")
	assert.Contains(t, s, "[3 rows x 9 columns]")

	assert.Len(t, f.Interactive("apps").Filtered(), 3)
}

func TestDataFrameEmpty(t *testing.T) {
	f := NewFrame(nil)
	assert.Equal(t, 0, f.Len())
	assert.Len(t, f.Columns, 9)
	assert.Contains(t, f.String(), "[0 rows x 9 columns]")
}

func TestJSON(t *testing.T) {
	dir := t.TempDir()
	sink, err := New(JSON, Options{Dir: dir, Started: started})
	require.NoError(t, err)

	out, err := sink.Render(rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "iOS_Apps_1633046400.json"), out.String())

	data, err := os.ReadFile(out.String())
	require.NoError(t, err)
	var got []apps.Row
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rows, got)

	out, err = sink.Render(nil)
	require.NoError(t, err)
	data, err = os.ReadFile(out.String())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestDatabase(t *testing.T) {
	dir := t.TempDir()
	sink, err := New(DB, Options{Dir: dir, Started: started, Archive: "/cases/ffs.tar", Selection: apps.All})
	require.NoError(t, err)

	out, err := sink.Render(rows)
	require.NoError(t, err)
	ref, ok := out.(ScanRef)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "iOS_Apps_1633046400.db"), ref.Database)
	assert.Contains(t, out.String(), ref.ID)

	d, err := db.NewSqlite(ref.Database, 10)
	require.NoError(t, err)
	require.NoError(t, d.Connect())
	defer d.Close()

	scan, err := d.Scan(ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "ffs.tar", scan.Archive)
	assert.Equal(t, "all", scan.Selection)
	assert.Equal(t, 3, scan.Parsed)
	require.Len(t, scan.Apps, 3)
	assert.Equal(t, "org.whispersystems.signal", scan.Apps[0].BundleID)
}

// closeFailDB is a real sqlite database whose Close reports a flush failure
type closeFailDB struct {
	db.Database
	closeErr error
}

func (c *closeFailDB) Close() error {
	if err := c.Database.Close(); err != nil {
		return err
	}
	return c.closeErr
}

func TestDatabaseCloseError(t *testing.T) {
	flush := errors.New("disk I/O error")
	var opened *closeFailDB

	sink := &dbSink{
		opts: Options{Dir: t.TempDir(), Started: started},
		open: func(dsn string, batchSize int) (db.Database, error) {
			d, err := db.NewSqlite(dsn, batchSize)
			if err != nil {
				return nil, err
			}
			opened = &closeFailDB{Database: d, closeErr: flush}
			return opened, nil
		},
	}

	out, err := sink.Render(rows)
	require.ErrorIs(t, err, flush)
	assert.Nil(t, out)
	require.NotNil(t, opened)
	assert.Contains(t, err.Error(), "failed to close database")

	// the scan rows were written before the close failed
	d, err := db.NewSqlite(sink.opts.Filename("db"), 10)
	require.NoError(t, err)
	require.NoError(t, d.Connect())
	defer d.Close()
	scans, err := d.Scans()
	require.NoError(t, err)
	require.Len(t, scans, 1)
}
