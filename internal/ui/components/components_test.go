package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMultiChoice_NavigateAndSubmit(t *testing.T) {
	m := NewMultiChoice("2 + 2?", []string{"3", "4", "5"}, 1)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 2 {
		t.Errorf("Selected = %d, want 2", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	assert.True(t, m.Submitted)
	assert.True(t, m.IsCorrect())
	got, ok := m.Chosen()
	assert.True(t, ok)
	assert.Equal(t, "4", got)
}

func TestMultiChoice_Shortcuts(t *testing.T) {
	tests := []struct {
		key  rune
		want int
		ok   bool
	}{
		{'1', 0, true},
		{'3', 2, true},
		{'4', 0, false},
		{'b', 1, true},
		{'q', 0, false},
		{'z', 0, false},
	}
	for _, tt := range tests {
		m := NewMultiChoice("q", []string{"a", "b", "c"}, 0)
		m, _ = m.Update(key(tt.key))
		assert.Equal(t, tt.ok, m.Submitted, "key %q", tt.key)
		if tt.ok {
			assert.Equal(t, tt.want, m.ChosenIndex, "key %q", tt.key)
		}
	}
}

func TestMultiChoice_IgnoresInputAfterSubmit(t *testing.T) {
	m := NewMultiChoice("q", []string{"a", "b"}, -1)
	m, _ = m.Update(key('2'))
	m, _ = m.Update(key('1'))

	assert.Equal(t, 1, m.ChosenIndex)
	assert.False(t, m.IsCorrect())
}

func TestMultiChoice_View(t *testing.T) {
	m := NewMultiChoice("Pick one", []string{"red", "blue"}, 0)
	view := m.View()
	assert.Contains(t, view, "Pick one")
	assert.Contains(t, view, "A)  red")
	assert.Contains(t, view, "B)  blue")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "A", Label(0))
	assert.Equal(t, "D", Label(3))
	assert.Equal(t, "?", Label(26))
}

func TestProgressBar_Clamps(t *testing.T) {
	assert.Contains(t, NewProgressBar("", 1.5, true, 20).View(), "100%")
	assert.Contains(t, NewProgressBar("Accuracy", -1, true, 30).View(), "0%")
	assert.Equal(t, 0, strings.Count(NewProgressBar("", 0.5, false, 10).View(), "%"))
}
