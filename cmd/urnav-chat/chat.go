package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const (
	headerHeight = 2
	footerHeight = 2
	inputHeight  = 3

	greeting = "Hi! I'm **URNAV**. Ask me about places to visit, food, free activities, meeting a friend or planning your day."
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			m := newChatModel(ctx, a.answer, a.location(ctx).Name)
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

type chatStyles struct {
	header  lipgloss.Style
	muted   lipgloss.Style
	user    lipgloss.Style
	bot     lipgloss.Style
	spinner lipgloss.Style
	input   lipgloss.Style
}

func defaultChatStyles() chatStyles {
	accent := lipgloss.AdaptiveColor{Light: "#0B7A75", Dark: "#4FD1C5"}
	return chatStyles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(accent).Padding(0, 1),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}),
		user:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#93C5FD"}),
		bot:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		spinner: lipgloss.NewStyle().Foreground(accent),
		input:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
	}
}

// scrollKeys leaves letter keys to the text input.
func scrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
	}
}

type chatLine struct {
	fromUser bool
	text     string
}

// replyMsg carries an answer back into the update loop.
type replyMsg struct {
	text string
}

type chatModel struct {
	ctx    context.Context
	answer func(context.Context, string) string
	place  string

	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer
	styles    chatStyles

	history []chatLine
	loading bool
	ready   bool
}

func newChatModel(ctx context.Context, answer func(context.Context, string) string, place string) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Where should I go today?"
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := defaultChatStyles()
	sp.Style = styles.spinner

	renderer, _ := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))

	return chatModel{
		ctx:       ctx,
		answer:    answer,
		place:     place,
		textinput: ti,
		spinner:   sp,
		renderer:  renderer,
		styles:    styles,
		history:   []chatLine{{text: greeting}},
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			return m.submit()
		}

	case tea.WindowSizeMsg:
		height := max(msg.Height-headerHeight-footerHeight-inputHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.KeyMap = scrollKeys()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.textinput.Width = max(msg.Width-6, 10)
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(max(msg.Width-4, 20))); err == nil {
			m.renderer = r
		}
		m.refresh()

	case replyMsg:
		m.loading = false
		m.history = append(m.history, chatLine{text: msg.text})
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.loading {
		var cmd tea.Cmd
		m.textinput, cmd = m.textinput.Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.textinput.Value())
	if text == "" {
		return m, nil
	}
	m.textinput.Reset()
	m.history = append(m.history, chatLine{fromUser: true, text: text})
	m.loading = true
	m.refresh()
	return m, tea.Batch(m.ask(text), m.spinner.Tick)
}

func (m chatModel) ask(text string) tea.Cmd {
	ctx, answer := m.ctx, m.answer
	return func() tea.Msg {
		return replyMsg{text: answer(ctx, text)}
	}
}

// refresh re-renders the history into the viewport and scrolls to the end.
func (m *chatModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m chatModel) renderHistory() string {
	var b strings.Builder
	for _, line := range m.history {
		if line.fromUser {
			b.WriteString(m.styles.user.Render("You") + "\n")
			b.WriteString(line.text + "\n\n")
			continue
		}
		b.WriteString(m.styles.bot.Render("URNAV") + "\n")
		b.WriteString(m.renderMarkdown(line.text))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMarkdown falls back to the raw text when glamour fails or panics.
func (m chatModel) renderMarkdown(content string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = content
		}
	}()
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func (m chatModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		m.styles.header.Render("URNAV"),
		m.styles.muted.Render(fmt.Sprintf("  📍 %s", m.place)),
	)

	body := m.viewport.View()
	if m.loading {
		body += "\n" + m.spinner.View() + " Thinking..."
	}

	footer := m.styles.muted.Render("Enter: send • ↑/↓ PgUp/PgDn: scroll • Esc: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.styles.input.Render(m.textinput.View()),
		footer,
	)
}
