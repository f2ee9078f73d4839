// Package auth is the login/register modal.
package auth

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekaraca/marquee/internal/model"
)

// Backend is the slice of the API client the auth modal needs.
type Backend interface {
	Login(ctx context.Context, username, password string) (model.Identity, error)
	Register(ctx context.Context, username, password, email string) error
}

// LoggedIn delivers the outcome of a login attempt. The root model updates
// the session gate on success.
type LoggedIn struct {
	Identity model.Identity
	Err      error
}

// Registered delivers the outcome of a registration attempt.
type Registered struct{ Err error }

type formMode int

const (
	formLogin formMode = iota
	formRegister
)

// Model is the auth modal.
type Model struct {
	backend Backend

	mode     formMode
	username textinput.Model
	password textinput.Model
	email    textinput.Model
	field    int
	busy     bool
	status   string

	width   int
	height  int
	open    bool
	closing bool
}

// New creates the auth modal.
func New(backend Backend) Model {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 64

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.CharLimit = 128

	mail := textinput.New()
	mail.Placeholder = "email (optional)"
	mail.CharLimit = 120

	return Model{backend: backend, username: user, password: pass, email: mail}
}

// SetSize updates the modal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Open shows the modal in login mode.
func (m Model) Open() Model {
	m.open = true
	m.closing = false
	m.mode = formLogin
	m.field = 0
	m.busy = false
	m.status = ""
	m.username.SetValue("")
	m.password.SetValue("")
	m.email.SetValue("")
	m.username.Focus()
	m.password.Blur()
	m.email.Blur()
	return m
}

// IsOpen reports whether the modal is showing.
func (m Model) IsOpen() bool { return m.open }

// IsClosing reports whether the user dismissed the modal.
func (m Model) IsClosing() bool { return m.closing }

// ResetClosing clears the closing flag.
func (m *Model) ResetClosing() { m.closing = false }

// Update handles messages for the modal.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case LoggedIn:
		m.busy = false
		if msg.Err != nil {
			m.status = msg.Err.Error()
			return m, nil
		}
		m.open = false
		m.closing = true
		return m, nil

	case Registered:
		m.busy = false
		if msg.Err != nil {
			m.status = msg.Err.Error()
			return m, nil
		}
		// Account created; drop back to the login form.
		m.mode = formLogin
		m.status = "Account created. Sign in."
		m.password.SetValue("")
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.open = false
		m.closing = true
		return m, nil

	case "tab", "down":
		m.field = (m.field + 1) % m.fieldCount()
		m.syncFocus()
		return m, nil

	case "shift+tab", "up":
		m.field = (m.field + m.fieldCount() - 1) % m.fieldCount()
		m.syncFocus()
		return m, nil

	case "ctrl+r":
		if m.mode == formLogin {
			m.mode = formRegister
		} else {
			m.mode = formLogin
		}
		m.field = 0
		m.status = ""
		m.syncFocus()
		return m, nil

	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	switch m.field {
	case 0:
		m.username, cmd = m.username.Update(msg)
	case 1:
		m.password, cmd = m.password.Update(msg)
	case 2:
		m.email, cmd = m.email.Update(msg)
	}
	return m, cmd
}

func (m Model) fieldCount() int {
	if m.mode == formRegister {
		return 3
	}
	return 2
}

func (m *Model) syncFocus() {
	m.username.Blur()
	m.password.Blur()
	m.email.Blur()
	switch m.field {
	case 0:
		m.username.Focus()
	case 1:
		m.password.Focus()
	case 2:
		m.email.Focus()
	}
}

func (m Model) submit() (Model, tea.Cmd) {
	user := strings.TrimSpace(m.username.Value())
	pass := m.password.Value()
	if user == "" || pass == "" {
		m.status = "Username and password are required."
		return m, nil
	}

	m.busy = true
	m.status = ""

	backend := m.backend
	if m.mode == formRegister {
		mail := strings.TrimSpace(m.email.Value())
		return m, func() tea.Msg {
			return Registered{Err: backend.Register(context.Background(), user, pass, mail)}
		}
	}
	return m, func() tea.Msg {
		id, err := backend.Login(context.Background(), user, pass)
		return LoggedIn{Identity: id, Err: err}
	}
}

// View renders the modal.
func (m Model) View() string {
	var b strings.Builder

	title := "Sign in"
	if m.mode == formRegister {
		title = "Create account"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n")
	if m.mode == formRegister {
		b.WriteString(m.email.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.busy {
		b.WriteString(mutedStyle.Render("Talking to the server..."))
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	} else {
		b.WriteString(mutedStyle.Render("[enter] submit  [ctrl+r] switch login/register  [esc] back"))
	}

	box := frameStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#30363d")).
			Padding(1, 3)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")).Italic(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149"))
)
