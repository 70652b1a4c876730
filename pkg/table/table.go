package table

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// getTerminalSize returns the terminal width and height
func getTerminalSize() (width, height int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 120, 30
}

// TableStyle defines the visual styling for tables
type TableStyle struct {
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Separator string
}

// PlainTableStyle returns a plain table style with no colors
func PlainTableStyle() TableStyle {
	return TableStyle{
		Header:    lipgloss.NewStyle().Bold(true).PaddingLeft(1).PaddingRight(1),
		Cell:      lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1),
		Separator: "|",
	}
}

// StyledTableStyle returns a colorful table style
func StyledTableStyle() TableStyle {
	return TableStyle{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1),
		Cell:      lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1),
		Separator: "|",
	}
}

// Table is a static table renderer using lipgloss
type Table struct {
	headers     []string
	rows        [][]string
	style       TableStyle
	maxWidth    int
	columnWidth []int
}

// NewTable creates a new table with plain styling
func NewTable(headers []string) *Table {
	return &Table{headers: headers, style: PlainTableStyle()}
}

// NewStyledTable creates a new table with colorful styling
func NewStyledTable(headers []string) *Table {
	return &Table{headers: headers, style: StyledTableStyle()}
}

// AppendRow adds a single row to the table; short rows are padded with empty cells
func (t *Table) AppendRow(row []string) {
	if len(row) < len(t.headers) {
		row = append(append([]string(nil), row...), make([]string, len(t.headers)-len(row))...)
	}
	t.rows = append(t.rows, row)
}

// AppendBulk adds multiple rows to the table
func (t *Table) AppendBulk(rows [][]string) {
	for _, row := range rows {
		t.AppendRow(row)
	}
}

// SetMaxColumnWidth truncates cells wider than width (0 disables truncation)
func (t *Table) SetMaxColumnWidth(width int) {
	t.maxWidth = width
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) cell(s string) string {
	if t.maxWidth > 0 && runewidth.StringWidth(s) > t.maxWidth {
		return runewidth.Truncate(s, t.maxWidth, "…")
	}
	return s
}

func (t *Table) calculateColumnWidths() {
	t.columnWidth = make([]int, len(t.headers))
	for i, header := range t.headers {
		t.columnWidth[i] = runewidth.StringWidth(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(t.cell(cell)); i < len(t.columnWidth) && w > t.columnWidth[i] {
				t.columnWidth[i] = w
			}
		}
	}
	for i := range t.columnWidth {
		t.columnWidth[i] += 2 // padding
	}
}

func (t *Table) renderRow(row []string, isHeader bool) string {
	style := t.style.Cell
	if isHeader {
		style = t.style.Header
	}
	cells := make([]string, 0, len(t.headers))
	for i := range t.headers {
		var cell string
		if i < len(row) {
			cell = t.cell(row[i])
		}
		cells = append(cells, style.Width(t.columnWidth[i]).Render(cell))
	}
	return strings.Join(cells, t.style.Separator)
}

// Render generates the complete table as a string
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	t.calculateColumnWidths()

	var out strings.Builder
	out.WriteString(t.renderRow(t.headers, true))
	out.WriteString("\n")
	seps := make([]string, 0, len(t.columnWidth))
	for _, width := range t.columnWidth {
		seps = append(seps, strings.Repeat("-", width))
	}
	out.WriteString(strings.Join(seps, "+"))
	out.WriteString("\n")

	for _, row := range t.rows {
		out.WriteString(t.renderRow(row, false))
		out.WriteString("\n")
	}

	return strings.TrimRight(out.String(), "\n")
}
