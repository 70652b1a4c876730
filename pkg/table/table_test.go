package table

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var headers = []string{"Default", "GUID", "App Name"}

func TestTableRender(t *testing.T) {
	tbl := NewTable(headers)
	tbl.AppendRow([]string{"No", "5A0B", "Signal"})
	tbl.AppendRow([]string{"Yes", "9F"})

	out := tbl.Render()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4, "header + separator + 2 rows")

	assert.Contains(t, lines[0], "Default")
	assert.Contains(t, lines[0], "App Name")
	assert.True(t, strings.HasPrefix(lines[1], "---"))
	assert.Contains(t, lines[2], "Signal")
	assert.Contains(t, lines[3], "9F")
	assert.Equal(t, 2, tbl.Len())
}

func TestTableTruncate(t *testing.T) {
	tbl := NewStyledTable(headers)
	tbl.SetMaxColumnWidth(10)
	tbl.AppendBulk([][]string{{"No", "5A0B", "A very long application display name"}})

	out := tbl.Render()
	assert.NotContains(t, out, "application display name")
	assert.Contains(t, out, "…")
}

func TestTableEmpty(t *testing.T) {
	assert.Empty(t, NewTable(nil).Render())
	assert.Len(t, strings.Split(NewTable(headers).Render(), "\n"), 2)
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInteractiveFilter(t *testing.T) {
	data := [][]string{
		{"No", "5A0B", "Signal"},
		{"Yes", "9F", "com.apple.mobilesafari"},
		{"Yes", "77", "com.apple.Maps"},
	}
	m := NewInteractiveTable("apps", headers, data)

	m.Update(keys("/"))
	for _, r := range "apple" {
		m.Update(keys(string(r)))
	}
	assert.Len(t, m.Filtered(), 2)
	assert.Contains(t, m.View(), "filtered: 2/3")

	m.Update(keys("q")) // still typing into the filter
	assert.Empty(t, m.Filtered())

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Len(t, m.Filtered(), 2)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.View(), "Active filter: apple")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.Filtered(), 3)

	_, cmd := m.Update(keys("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
