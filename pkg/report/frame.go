package report

import (
	"fmt"
	"slices"

	"github.com/blacktop/appguid/pkg/apps"
	"github.com/blacktop/appguid/pkg/table"
)

// Frame is an in-memory table of rows with named columns
type Frame struct {
	Columns []string
	Records [][]string

	styled   bool
	maxWidth int
}

type frameSink struct {
	opts Options
}

func (s *frameSink) Render(rows []apps.Row) (fmt.Stringer, error) {
	f := NewFrame(rows)
	f.styled = s.opts.Styled
	f.maxWidth = s.opts.MaxWidth
	return f, nil
}

// NewFrame builds a frame with the row header columns
func NewFrame(rows []apps.Row) *Frame {
	f := &Frame{
		Columns: slices.Clone(apps.Header),
		Records: make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		f.Records = append(f.Records, row.Values())
	}
	return f
}

// Len returns the number of records
func (f *Frame) Len() int {
	return len(f.Records)
}

// Column returns every value of the named column
func (f *Frame) Column(name string) ([]string, error) {
	idx := slices.Index(f.Columns, name)
	if idx < 0 {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	col := make([]string, 0, len(f.Records))
	for _, rec := range f.Records {
		col = append(col, rec[idx])
	}
	return col, nil
}

// Rows converts the frame back to rows
func (f *Frame) Rows() []apps.Row {
	rows := make([]apps.Row, 0, len(f.Records))
	for _, rec := range f.Records {
		rows = append(rows, apps.RowFromValues(rec))
	}
	return rows
}

// Table returns the frame as a printable table
func (f *Frame) Table() *table.Table {
	t := table.NewTable(f.Columns)
	if f.styled {
		t = table.NewStyledTable(f.Columns)
	}
	if f.maxWidth > 0 {
		t.SetMaxColumnWidth(f.maxWidth)
	} else {
		t.SetMaxColumnWidth(60)
	}
	t.AppendBulk(f.Records)
	return t
}

// Interactive returns a browsable table of the frame
func (f *Frame) Interactive(title string) *table.InteractiveTableModel {
	return table.NewInteractiveTable(title, f.Columns, f.Records)
}

func (f *Frame) String() string {
	return fmt.Sprintf("%s\n[%d rows x %d columns]", f.Table().Render(), f.Len(), len(f.Columns))
}
