package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// InteractiveTableModel implements tea.Model for browsing and filtering rows
type InteractiveTableModel struct {
	table        table.Model
	headers      []string
	originalData [][]string
	filteredData [][]string
	filterMode   bool
	filterText   string
	title        string
}

// NewInteractiveTable creates a new interactive table model
func NewInteractiveTable(title string, headers []string, data [][]string) *InteractiveTableModel {
	_, termHeight := getTerminalSize()

	columns := make([]table.Column, len(headers))
	for i, header := range headers {
		columns[i] = table.Column{Title: header, Width: runewidth.StringWidth(header)}
	}

	style := table.DefaultStyles()
	style.Header = style.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	style.Selected = style.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	// title (2) + filter (2) + help (1) + margins (2)
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(termHeight-7, 5)),
	)
	t.SetStyles(style)

	m := &InteractiveTableModel{
		table:        t,
		headers:      headers,
		originalData: data,
		filteredData: data,
		title:        title,
	}
	m.setData(data)
	return m
}

// setData replaces the table rows and sizes the columns to the content
func (m *InteractiveTableModel) setData(data [][]string) {
	columns := m.table.Columns()
	for i := range columns {
		width := runewidth.StringWidth(columns[i].Title)
		for _, row := range data {
			if i < len(row) {
				width = max(width, runewidth.StringWidth(row[i]))
			}
		}
		columns[i].Width = min(max(width, 8), 50)
	}
	m.table.SetColumns(columns)

	rows := make([]table.Row, len(data))
	for i, row := range data {
		r := make(table.Row, len(columns))
		copy(r, row)
		rows[i] = r
	}
	m.table.SetRows(rows)
}

// Filtered returns the rows matching the current filter
func (m *InteractiveTableModel) Filtered() [][]string {
	return m.filteredData
}

func (m *InteractiveTableModel) Init() tea.Cmd {
	return nil
}

func (m *InteractiveTableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filterMode {
		switch key.String() {
		case "enter":
			m.filterMode = false
		case "esc":
			m.filterMode = false
			m.filterText = ""
			m.applyFilter()
		case "backspace":
			if len(m.filterText) > 0 {
				m.filterText = m.filterText[:len(m.filterText)-1]
				m.applyFilter()
			}
		case "ctrl+c":
			return m, tea.Quit
		default:
			if len(key.Runes) > 0 {
				m.filterText += string(key.Runes)
				m.applyFilter()
			}
		}
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		if m.filterText != "" {
			m.filterText = ""
			m.applyFilter()
		}
	case "/":
		m.filterMode = true
	default:
		m.table, cmd = m.table.Update(msg)
	}

	return m, cmd
}

// applyFilter keeps rows with any cell containing the filter text (case-insensitive)
func (m *InteractiveTableModel) applyFilter() {
	if m.filterText == "" {
		m.filteredData = m.originalData
	} else {
		needle := strings.ToLower(m.filterText)
		m.filteredData = nil
		for _, row := range m.originalData {
			for _, cell := range row {
				if strings.Contains(strings.ToLower(cell), needle) {
					m.filteredData = append(m.filteredData, row)
					break
				}
			}
		}
	}
	m.table.SetCursor(0)
	m.setData(m.filteredData)
}

func (m *InteractiveTableModel) View() string {
	var b strings.Builder

	title := m.title
	if m.filterText != "" {
		title += fmt.Sprintf(" (filtered: %d/%d)", len(m.filteredData), len(m.originalData))
	}
	b.WriteString(title + "\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.filterMode {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
		b.WriteString("\n" + style.Render("Filter: /"+m.filterText+"█") + "\n")
	} else if m.filterText != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
		b.WriteString("\n" + style.Render("Active filter: "+m.filterText+" (press esc to clear)") + "\n")
	}

	help := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if m.filterMode {
		b.WriteString(help.Render("enter: apply filter • esc: cancel • backspace: delete • ctrl+c: quit"))
	} else {
		b.WriteString(help.Render("↑/↓: navigate • /: filter • esc: clear filter • q/ctrl+c: quit"))
	}

	return b.String()
}

// Run shows the table until the user quits
func (m *InteractiveTableModel) Run() error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
