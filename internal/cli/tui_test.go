package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func sampleVerdicts() []Verdict {
	return []Verdict{
		{File: "a.mmd", Valid: true},
		{File: "b.mmd", Valid: false, Message: "Unbalanced square brackets [] in diagram code"},
		{File: "c.mmd", Valid: true},
	}
}

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestVerdictListNavigation(t *testing.T) {
	m := NewVerdictListModel(sampleVerdicts())

	next, _ := m.Update(keyMsg("j"))
	m = next.(VerdictListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.Cursor)
	}

	next, _ = m.Update(keyMsg("k"))
	m = next.(VerdictListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.Cursor)
	}

	// Up at the top stays put.
	next, _ = m.Update(keyMsg("k"))
	m = next.(VerdictListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor)
	}
}

func TestVerdictListExpand(t *testing.T) {
	m := NewVerdictListModel(sampleVerdicts())

	next, _ := m.Update(keyMsg("j"))
	m = next.(VerdictListModel)
	next, _ = m.Update(keyMsg("enter"))
	m = next.(VerdictListModel)

	if !m.Expanded {
		t.Fatal("enter should expand the selected verdict")
	}
	if !strings.Contains(m.View(), "Unbalanced square brackets") {
		t.Error("expanded view should show the validation message")
	}

	// Moving collapses the detail pane.
	next, _ = m.Update(keyMsg("j"))
	m = next.(VerdictListModel)
	if m.Expanded {
		t.Error("navigation should collapse the detail pane")
	}
}

func TestVerdictListQuit(t *testing.T) {
	m := NewVerdictListModel(sampleVerdicts())

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
}

func TestVerdictListView(t *testing.T) {
	m := NewVerdictListModel(sampleVerdicts())
	view := m.View()

	for _, v := range sampleVerdicts() {
		if !strings.Contains(view, v.File) {
			t.Errorf("view missing file %q", v.File)
		}
	}
}
