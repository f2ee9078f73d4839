package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekaraca/marquee/internal/model"
)

type fakeBackend struct {
	calls   int
	reply   model.ChatReply
	err     error
	lastMsg string
}

func (f *fakeBackend) Chat(_ context.Context, text string) (model.ChatReply, error) {
	f.calls++
	f.lastMsg = text
	return f.reply, f.err
}

// drain executes commands synchronously, feeding resulting messages back
// into the model. Spinner ticks are dropped to keep the loop finite.
func drain(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(m, c)
		}
	case spinner.TickMsg:
	default:
		var next tea.Cmd
		m, next = m.Update(msg)
		m = drain(m, next)
	}
	return m
}

func typeText(m Model, text string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func pressEnter(m Model) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestSendAppendsBothTurns(t *testing.T) {
	backend := &fakeBackend{reply: model.ChatReply{
		Message:         "Here you go",
		Recommendations: []model.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}},
	}}

	m := New(backend)
	m.Focus()
	m = typeText(m, "recommend action movies")

	m, cmd := pressEnter(m)
	if !m.Waiting() {
		t.Error("a turn should be in flight after enter")
	}
	if got := m.Turns(); len(got) != 1 || got[0].Sender != model.SenderUser {
		t.Fatalf("user turn should be appended optimistically, got %+v", got)
	}

	m = drain(m, cmd)

	turns := m.Turns()
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want exactly 2", len(turns))
	}
	if turns[0].Text != "recommend action movies" || turns[1].Text != "Here you go" {
		t.Errorf("unexpected transcript: %+v", turns)
	}
	if m.Waiting() {
		t.Error("in-flight flag should clear when the reply lands")
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
}

func TestFailureAppendsFallbackTurn(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}

	m := New(backend)
	m.Focus()
	m = typeText(m, "hello")
	m, cmd := pressEnter(m)
	m = drain(m, cmd)

	turns := m.Turns()
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want 2 (user turn must never be dropped)", len(turns))
	}
	if turns[1].Sender != model.SenderAssistant || turns[1].Text != FallbackText {
		t.Errorf("want the fixed fallback turn, got %+v", turns[1])
	}
}

func TestSingleTurnInFlight(t *testing.T) {
	backend := &fakeBackend{}

	m := New(backend)
	m.Focus()
	m = typeText(m, "first")
	m, _ = pressEnter(m) // in flight, reply not yet delivered

	// The input is disabled while waiting; nothing new can be sent.
	m = typeText(m, "second")
	m, cmd := pressEnter(m)
	if cmd != nil {
		t.Error("enter while waiting should be a no-op")
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
	if len(m.Turns()) != 1 {
		t.Errorf("len(turns) = %d, want only the first user turn", len(m.Turns()))
	}
}

func TestWrapMeasuresRunes(t *testing.T) {
	// 11 runes but 15 bytes; a byte-based measure would wrap early.
	lines := wrapLines("şölen şölen", 11, lipgloss.NewStyle())
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1 for text that fits in 11 cells", len(lines))
	}
	if lines[0] != "şölen şölen" {
		t.Errorf("line = %q", lines[0])
	}

	lines = wrapLines("şölen şölen şölen", 11, lipgloss.NewStyle())
	if len(lines) != 2 {
		t.Errorf("len(lines) = %d, want 2", len(lines))
	}
}

func TestBlankInputIgnored(t *testing.T) {
	backend := &fakeBackend{}

	m := New(backend)
	m.Focus()
	m = typeText(m, "   ")
	m, _ = pressEnter(m)

	if backend.calls != 0 {
		t.Errorf("backend calls = %d, want 0 for a blank turn", backend.calls)
	}
	if len(m.Turns()) != 0 {
		t.Errorf("blank input should append nothing, got %+v", m.Turns())
	}
}
