package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// VerdictListModel - Interactive validation result browser
// =============================================================================

// Verdict is one file's validation result shown in the list.
type Verdict struct {
	File    string
	Valid   bool
	Message string
}

// VerdictListModel is the bubbletea model for browsing validation verdicts.
type VerdictListModel struct {
	Verdicts []Verdict
	Cursor   int
	Expanded bool
	Height   int
	Offset   int
}

// NewVerdictListModel creates a new verdict list model.
func NewVerdictListModel(verdicts []Verdict) VerdictListModel {
	return VerdictListModel{
		Verdicts: verdicts,
		Height:   15,
	}
}

func (m VerdictListModel) Init() tea.Cmd {
	return nil
}

func (m VerdictListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.Expanded = false
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Verdicts)-1 {
				m.Cursor++
				m.Expanded = false
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m VerdictListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Validation Results"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Verdicts) {
		end = len(m.Verdicts)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		v := m.Verdicts[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		status := iconSuccess
		if !v.Valid {
			status = iconError
		}

		message := "—"
		if v.Message != "" {
			message = v.Message
		}

		rows = append(rows, []string{cursor, v.File, status, message})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "File", "OK", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Verdicts) {
				return lipgloss.NewStyle()
			}
			v := m.Verdicts[actualIdx]

			base := lipgloss.NewStyle()
			if actualIdx == m.Cursor {
				base = base.Bold(true)
			}
			if v.Valid {
				if col == 2 {
					return base.Foreground(colorGreen)
				}
				return base
			}
			if col == 2 {
				return base.Foreground(colorRed)
			}
			return base.Foreground(colorDim)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.Expanded {
		v := m.Verdicts[m.Cursor]
		b.WriteString("\n")
		b.WriteString(listSelectedStyle.Render(v.File))
		b.WriteString("\n")
		if v.Message == "" {
			b.WriteString(StyleSuccess.Render("  diagram is valid"))
		} else {
			b.WriteString("  " + StyleValue.Render(v.Message))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Verdicts))))

	return b.String()
}
