// Package admin is the moderation dashboard: aggregate counts, the recent
// comment feed, and the user list with destructive actions. Every delete is
// followed by a full snapshot refetch so the displayed counts always match
// the persisted state; nothing is patched locally.
//
// The dashboard is gated by the session's moderation capability at the call
// site. That gate is a courtesy for the UI only; the server enforces it.
package admin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekaraca/marquee/internal/model"
	"github.com/ekaraca/marquee/internal/session"
)

// Backend is the slice of the API client the dashboard needs.
type Backend interface {
	ModerationSnapshot(ctx context.Context) (model.ModerationSnapshot, error)
	AdminDeleteComment(ctx context.Context, commentID int) error
	AdminDeleteUser(ctx context.Context, userID int) error
}

// SnapshotLoaded delivers a refreshed ModerationSnapshot.
type SnapshotLoaded struct {
	Snapshot model.ModerationSnapshot
	Err      error
}

// Deleted reports the outcome of a destructive action.
type Deleted struct {
	What string // "comment" or "user"
	Err  error
}

type section int

const (
	sectionUsers section = iota
	sectionComments
)

// Model is the moderation dashboard.
type Model struct {
	backend Backend
	gate    *session.Gate

	snapshot model.ModerationSnapshot
	users    table.Model
	cursor   int // recent-comments cursor
	focus    section
	loading  bool

	confirming bool
	targetKind string // "comment" or "user"
	targetID   int

	alert string

	spin    spinner.Model
	width   int
	height  int
	open    bool
	closing bool
}

// New creates the dashboard model.
func New(backend Backend, gate *session.Gate) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Username", Width: 20},
			{Title: "Email", Width: 28},
			{Title: "Admin", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))

	return Model{backend: backend, gate: gate, users: t, spin: s}
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	rows := height - 14
	if rows < 4 {
		rows = 4
	}
	m.users.SetHeight(rows)
}

// Open fetches a fresh snapshot and shows the dashboard.
func (m Model) Open() (Model, tea.Cmd) {
	m.open = true
	m.closing = false
	m.alert = ""
	m.confirming = false
	m.loading = true
	return m, tea.Batch(m.fetchSnapshot(), m.spin.Tick)
}

// IsOpen reports whether the dashboard is showing.
func (m Model) IsOpen() bool { return m.open }

// IsClosing reports whether the user dismissed the dashboard.
func (m Model) IsClosing() bool { return m.closing }

// ResetClosing clears the closing flag.
func (m *Model) ResetClosing() { m.closing = false }

// Snapshot returns the currently displayed snapshot.
func (m Model) Snapshot() model.ModerationSnapshot { return m.snapshot }

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotLoaded:
		m.loading = false
		if msg.Err != nil {
			m.alert = "Loading moderation data failed: " + msg.Err.Error()
			return m, nil
		}
		m.snapshot = msg.Snapshot
		m.users.SetRows(m.userRows())
		if m.cursor >= len(m.snapshot.RecentComments) {
			m.cursor = max(0, len(m.snapshot.RecentComments)-1)
		}
		return m, nil

	case Deleted:
		if msg.Err != nil {
			m.alert = fmt.Sprintf("Deleting the %s failed: %s", msg.What, msg.Err.Error())
			return m, nil
		}
		// Unconditional full refetch keeps counts consistent.
		m.loading = true
		cmd := tea.Batch(m.fetchSnapshot(), m.spin.Tick)
		return m, cmd

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}

	if m.confirming {
		switch msg.String() {
		case "y", "Y":
			m.confirming = false
			if m.targetKind == "user" {
				return m, m.deleteUser(m.targetID)
			}
			return m, m.deleteComment(m.targetID)
		default:
			m.confirming = false
			return m, nil
		}
	}

	switch msg.String() {
	case "esc", "q":
		m.open = false
		m.closing = true
		return m, nil

	case "tab":
		if m.focus == sectionUsers {
			m.focus = sectionComments
		} else {
			m.focus = sectionUsers
		}
		return m, nil

	case "r":
		m.loading = true
		cmd := tea.Batch(m.fetchSnapshot(), m.spin.Tick)
		return m, cmd

	case "j", "down", "k", "up":
		if m.focus == sectionComments {
			if msg.String() == "j" || msg.String() == "down" {
				if m.cursor < len(m.snapshot.RecentComments)-1 {
					m.cursor++
				}
			} else if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.users, cmd = m.users.Update(msg)
		return m, cmd

	case "d":
		return m.requestDelete()
	}

	if m.focus == sectionUsers {
		var cmd tea.Cmd
		m.users, cmd = m.users.Update(msg)
		return m, cmd
	}
	return m, nil
}

// requestDelete arms the confirmation prompt for the highlighted row.
func (m Model) requestDelete() (Model, tea.Cmd) {
	if m.focus == sectionComments {
		if len(m.snapshot.RecentComments) == 0 {
			return m, nil
		}
		m.confirming = true
		m.targetKind = "comment"
		m.targetID = m.snapshot.RecentComments[m.cursor].ID
		return m, nil
	}

	row := m.users.SelectedRow()
	if row == nil {
		return m, nil
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return m, nil
	}
	// The signed-in admin's own account gets no delete affordance.
	if me := m.gate.Identity(); me != nil && me.ID == id {
		m.alert = "You cannot delete your own account."
		return m, nil
	}
	m.confirming = true
	m.targetKind = "user"
	m.targetID = id
	return m, nil
}

// Commands

func (m Model) fetchSnapshot() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		snap, err := backend.ModerationSnapshot(context.Background())
		return SnapshotLoaded{Snapshot: snap, Err: err}
	}
}

func (m Model) deleteComment(id int) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return Deleted{What: "comment", Err: backend.AdminDeleteComment(context.Background(), id)}
	}
}

func (m Model) deleteUser(id int) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return Deleted{What: "user", Err: backend.AdminDeleteUser(context.Background(), id)}
	}
}

func (m Model) userRows() []table.Row {
	rows := make([]table.Row, 0, len(m.snapshot.Users))
	for _, u := range m.snapshot.Users {
		admin := ""
		if u.IsAdmin {
			admin = "yes"
		}
		rows = append(rows, table.Row{strconv.Itoa(u.ID), u.Username, u.Email, admin})
	}
	return rows
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Moderation"))
	b.WriteString("\n\n")

	b.WriteString(statStyle.Render(fmt.Sprintf("%d users", m.snapshot.UserCount)))
	b.WriteString(mutedStyle.Render("  ·  "))
	b.WriteString(statStyle.Render(fmt.Sprintf("%d comments", m.snapshot.CommentCount)))
	if m.loading {
		b.WriteString("  " + m.spin.View())
	}
	b.WriteString("\n\n")

	b.WriteString(m.sectionHeader("Users", sectionUsers))
	b.WriteString("\n")
	b.WriteString(m.users.View())
	b.WriteString("\n\n")

	b.WriteString(m.sectionHeader("Recent comments", sectionComments))
	b.WriteString("\n")
	if len(m.snapshot.RecentComments) == 0 {
		b.WriteString(mutedStyle.Render("Nothing recent."))
		b.WriteString("\n")
	} else {
		for i, c := range m.snapshot.RecentComments {
			line := fmt.Sprintf("#%d %s  %s  %s", c.ID, c.Author, c.Timestamp, truncate(c.Body, m.width-40))
			if m.focus == sectionComments && i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(bodyStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.alert != "":
		b.WriteString(alertStyle.Render(m.alert + "  (press any key)"))
	case m.confirming:
		b.WriteString(alertStyle.Render(fmt.Sprintf("Delete %s #%d? [y/n]", m.targetKind, m.targetID)))
	default:
		b.WriteString(mutedStyle.Render("[tab] section  [d] delete  [r] refresh  [esc] back"))
	}

	return frameStyle.Width(m.width - 2).Render(b.String())
}

func (m Model) sectionHeader(label string, s section) string {
	if m.focus == s {
		return focusHeaderStyle.Render(label)
	}
	return headerStyle.Render(label)
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#30363d")).
			Padding(1, 2)

	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8b949e"))
	focusHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d2a8ff"))
	statStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#7ee787"))
	bodyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9"))
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")).Italic(true)
	selectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	alertStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149"))
)
