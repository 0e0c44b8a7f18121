package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sized(t *testing.T, m chatModel) chatModel {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return updated.(chatModel)
}

func TestChatModel_SubmitAndReply(t *testing.T) {
	var asked string
	m := newChatModel(context.Background(), func(_ context.Context, q string) string {
		asked = q
		return "Try **Hawa Mahal**"
	}, "C Scheme")

	assert.Equal(t, "Loading...", m.View())
	m = sized(t, m)
	assert.Contains(t, m.View(), "C Scheme")

	m.textinput.SetValue("  places to see  ")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(chatModel)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.Empty(t, m.textinput.Value())
	require.Len(t, m.history, 2)
	assert.Equal(t, chatLine{fromUser: true, text: "places to see"}, m.history[1])
	assert.Contains(t, m.View(), "Thinking...")

	// a second Enter while waiting is ignored
	m.textinput.SetValue("again")
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(chatModel)
	assert.Nil(t, cmd)
	assert.Len(t, m.history, 2)

	reply := m.ask("places to see")()
	assert.Equal(t, "places to see", asked)

	updated, _ = m.Update(reply)
	m = updated.(chatModel)
	assert.False(t, m.loading)
	require.Len(t, m.history, 3)
	assert.Equal(t, chatLine{text: "Try **Hawa Mahal**"}, m.history[2])
	assert.NotContains(t, m.View(), "Thinking...")
}

func TestChatModel_EmptyInputAndQuit(t *testing.T) {
	m := sized(t, newChatModel(context.Background(), func(context.Context, string) string {
		t.Fatal("answer must not be called")
		return ""
	}, "Jaipur"))

	m.textinput.SetValue("   ")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, updated.(chatModel).history, 1)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRenderMarkdown_FallsBackToRawText(t *testing.T) {
	m := newChatModel(context.Background(), nil, "")
	m.renderer = nil
	assert.Equal(t, "**bold**", m.renderMarkdown("**bold**"))
}
