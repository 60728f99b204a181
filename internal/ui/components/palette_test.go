package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submit(t *testing.T, p Palette, input string) Palette {
	t.Helper()
	p.Open()
	p.input.SetValue(input)
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, PaletteSubmitMsg{Input: input}, cmd())
	assert.False(t, p.Visible())
	return p
}

func TestPaletteHistory(t *testing.T) {
	p := NewPalette()
	p = submit(t, p, "card:refresh abc123")
	p = submit(t, p, "cache:evict")
	p = submit(t, p, "cache:evict")
	assert.Equal(t, []string{"card:refresh abc123", "cache:evict"}, p.history)

	p.Open()
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "cache:evict", p.input.Value())
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "card:refresh abc123", p.input.Value())
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "cache:evict", p.input.Value())
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, p.input.Value())
}

func TestPaletteCancel(t *testing.T) {
	p := NewPalette()
	p.Open()
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, PaletteCancelMsg{}, cmd())
	assert.False(t, p.Visible())
	assert.Empty(t, p.View())
}

func TestPaletteHintsFollowVerb(t *testing.T) {
	p := NewPalette()
	p.Open()
	p.input.SetValue("cache:ev 42")
	view := p.View()
	assert.Contains(t, view, "cache:evict [uid]")
	assert.NotContains(t, view, "card:refresh")
}
