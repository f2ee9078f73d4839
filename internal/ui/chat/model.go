// Package chat is the conversational recommendation pane. The transcript
// is append-only: the user's turn is added optimistically, the assistant's
// turn follows when the reply arrives, and a failed request appends a fixed
// fallback turn instead of dropping anything.
package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekaraca/marquee/internal/logging"
	"github.com/ekaraca/marquee/internal/model"
)

// FallbackText is appended as the assistant's turn when the backend is
// unreachable.
const FallbackText = "Sorry, I can't reach the assistant right now. Please try again later."

const welcomeText = "Hi! Ask me for movie recommendations."

// Backend is the slice of the API client the chat pane needs.
type Backend interface {
	Chat(ctx context.Context, text string) (model.ChatReply, error)
}

// ReplyMsg delivers the assistant's answer (or the failure) for the single
// in-flight turn. The root model also watches this message: a reply with
// recommendations replaces the authoritative movie list.
type ReplyMsg struct {
	Reply model.ChatReply
	Err   error
}

// Model is the chat pane.
type Model struct {
	backend Backend

	input   textinput.Model
	spin    spinner.Model
	turns   []model.ChatTurn
	waiting bool
	focused bool

	width  int
	height int
}

// New creates the chat pane.
func New(backend Backend) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask for a movie..."
	ti.CharLimit = 500

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))

	return Model{
		backend: backend,
		input:   ti,
		spin:    s,
	}
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives the pane keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	if !m.waiting {
		m.input.Focus()
	}
}

// Blur removes keyboard focus.
func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// Focused reports whether the pane has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// Waiting reports whether a turn is in flight. The input stays disabled
// until the reply (or fallback) lands, so turns never overlap.
func (m Model) Waiting() bool { return m.waiting }

// Turns returns the transcript.
func (m Model) Turns() []model.ChatTurn { return m.turns }

// Update handles messages for the pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		if msg.String() == "enter" {
			return m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case ReplyMsg:
		m.waiting = false
		if m.focused {
			m.input.Focus()
		}
		text := FallbackText
		if msg.Err == nil {
			text = msg.Reply.Message
			if text == "" {
				text = "Here you go."
			}
		} else {
			logging.Warn("chat turn failed", "err", msg.Err)
		}
		m.turns = append(m.turns, model.ChatTurn{Sender: model.SenderAssistant, Text: text})
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// submit appends the user's turn optimistically and dispatches the request.
// No-ops while a turn is already outstanding or when the input is blank.
func (m Model) submit() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if m.waiting || text == "" {
		return m, nil
	}

	m.turns = append(m.turns, model.ChatTurn{Sender: model.SenderUser, Text: text})
	m.input.SetValue("")
	m.input.Blur()
	m.waiting = true

	return m, tea.Batch(m.send(text), m.spin.Tick)
}

func (m Model) send(text string) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		reply, err := backend.Chat(context.Background(), text)
		return ReplyMsg{Reply: reply, Err: err}
	}
}

// View renders the pane.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Assistant"))
	b.WriteString("\n")

	transcriptHeight := m.height - 4
	if transcriptHeight < 1 {
		transcriptHeight = 1
	}

	lines := m.transcriptLines()
	if len(lines) > transcriptHeight {
		lines = lines[len(lines)-transcriptHeight:]
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")

	if m.waiting {
		b.WriteString(mutedStyle.Render(m.spin.View() + " thinking..."))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())

	return paneStyle.Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) transcriptLines() []string {
	wrap := m.width - 6
	if wrap < 10 {
		wrap = 10
	}

	if len(m.turns) == 0 {
		return wrapLines(welcomeText, wrap, mutedStyle)
	}

	var lines []string
	for _, turn := range m.turns {
		label := userLabel
		style := userStyle
		if turn.Sender == model.SenderAssistant {
			label = assistantLabel
			style = assistantStyle
		}
		lines = append(lines, wrapLines(label+turn.Text, wrap, style)...)
	}
	return lines
}

func wrapLines(text string, width int, style lipgloss.Style) []string {
	words := strings.Fields(text)
	var lines []string
	current := ""
	for _, w := range words {
		if current == "" {
			current = w
		} else if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(w) <= width {
			current += " " + w
		} else {
			lines = append(lines, style.Render(current))
			current = w
		}
	}
	if current != "" {
		lines = append(lines, style.Render(current))
	}
	return lines
}

const (
	userLabel      = "you: "
	assistantLabel = "bot: "
)

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#30363d")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#58a6ff"))

	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7ee787"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")).Italic(true)
)
