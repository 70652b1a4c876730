package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/blacktop/appguid/internal/utils"
	"github.com/blacktop/appguid/pkg/apps"
)

type csvSink struct {
	opts Options
}

func (s *csvSink) Render(rows []apps.Row) (fmt.Stringer, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}
	out := s.opts.Filename("csv")
	if err := utils.AtomicWrite(out, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return Path(out), nil
}

// WriteCSV writes the header and one record per row
func WriteCSV(w io.Writer, rows []apps.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(apps.Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", row.GUID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV
func ReadCSV(r io.Reader) ([]apps.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("failed to read csv: missing header")
	}
	rows := make([]apps.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, apps.RowFromValues(rec))
	}
	return rows, nil
}
