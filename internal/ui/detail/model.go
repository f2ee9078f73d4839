// Package detail is the per-movie interaction session: the comment thread
// for one selected title, a comment draft, an optional rating draft, and
// deletion of owned comments. The session is scoped to the selected movie;
// closing it discards the thread.
package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekaraca/marquee/internal/logging"
	"github.com/ekaraca/marquee/internal/model"
	"github.com/ekaraca/marquee/internal/session"
)

// Backend is the slice of the API client the detail session needs.
type Backend interface {
	Comments(ctx context.Context, movieID int) ([]model.Comment, error)
	PostComment(ctx context.Context, movieID int, body string) error
	SubmitRating(ctx context.Context, movieID, score int) error
	DeleteComment(ctx context.Context, commentID int) error
}

// CommentsLoaded delivers a fetched thread. Seq guards against a fetch for
// a previously open movie landing after the session has moved on.
type CommentsLoaded struct {
	Seq      uint64
	Comments []model.Comment
	Err      error
}

// CommentPosted reports the outcome of the comment write.
type CommentPosted struct{ Err error }

// RatingSubmitted reports the outcome of the dependent rating write.
type RatingSubmitted struct{ Err error }

// CommentDeleted reports the outcome of a delete.
type CommentDeleted struct{ Err error }

// Model is the detail session.
type Model struct {
	backend Backend
	gate    *session.Gate

	movie    model.Movie
	comments []model.Comment
	loading  bool

	// Sequence guard for comment fetches across reopened sessions.
	issued  uint64
	applied uint64

	draft   textinput.Model
	rating  int // 0 = unset
	cursor  int
	posting bool

	confirming bool
	targetID   int

	// alert is a blocking notice for a failed user-initiated write.
	alert string

	spin    spinner.Model
	width   int
	height  int
	open    bool
	closing bool
}

// New creates a detail session model.
func New(backend Backend, gate *session.Gate) Model {
	ti := textinput.New()
	ti.Placeholder = "Write a comment..."
	ti.CharLimit = 500

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))

	return Model{backend: backend, gate: gate, draft: ti, spin: s}
}

// SetSize updates the session dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.draft.Width = width - 8
}

// Open starts a session for the given movie. The previous thread is
// discarded and a fresh fetch is issued; a late response from any earlier
// session is dropped by the sequence guard.
func (m Model) Open(mv model.Movie) (Model, tea.Cmd) {
	m.movie = mv
	m.comments = nil
	m.cursor = 0
	m.rating = 0
	m.draft.SetValue("")
	m.alert = ""
	m.confirming = false
	m.open = true
	m.closing = false
	m.loading = true

	cmd := tea.Batch(m.fetchComments(), m.spin.Tick)
	return m, cmd
}

// IsOpen reports whether a session is active.
func (m Model) IsOpen() bool { return m.open }

// IsClosing reports whether the user dismissed the session; the root model
// checks this after routing a message, then resets it.
func (m Model) IsClosing() bool { return m.closing }

// ResetClosing clears the closing flag once the root model has acted on it.
func (m *Model) ResetClosing() { m.closing = false }

// Comments returns the currently displayed thread.
func (m Model) Comments() []model.Comment { return m.comments }

// Rating returns the draft rating (0 = unset).
func (m Model) Rating() int { return m.rating }

// Update handles messages for the session.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case CommentsLoaded:
		// Stale fetches belong to a previous session or an older reload.
		if msg.Seq != m.issued || msg.Seq <= m.applied {
			return m, nil
		}
		m.applied = msg.Seq
		m.loading = false
		if msg.Err != nil {
			logging.Warn("comment fetch failed", "movie", m.movie.ID, "err", msg.Err)
			return m, nil
		}
		m.comments = msg.Comments
		if m.cursor >= len(m.comments) {
			m.cursor = max(0, len(m.comments)-1)
		}
		return m, nil

	case CommentPosted:
		m.posting = false
		if msg.Err != nil {
			m.alert = "Posting your comment failed: " + msg.Err.Error()
			return m, nil
		}
		m.draft.SetValue("")
		m.draft.Blur()
		if m.rating > 0 {
			// Dependent second request. A rating failure does not roll
			// back the already-posted comment.
			score := m.rating
			m.rating = 0
			cmd := tea.Batch(m.submitRating(score), m.reload())
			return m, cmd
		}
		cmd := m.reload()
		return m, cmd

	case RatingSubmitted:
		if msg.Err != nil {
			m.alert = "Your comment was posted, but the rating failed: " + msg.Err.Error()
		}
		return m, nil

	case CommentDeleted:
		if msg.Err != nil {
			m.alert = "Deleting the comment failed: " + msg.Err.Error()
			return m, nil
		}
		cmd := m.reload()
		return m, cmd

	case spinner.TickMsg:
		if !m.loading && !m.posting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// A blocking alert eats the next key press.
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}

	if m.confirming {
		switch msg.String() {
		case "y", "Y":
			m.confirming = false
			return m, m.deleteComment(m.targetID)
		default:
			m.confirming = false
			return m, nil
		}
	}

	if m.draft.Focused() {
		switch msg.String() {
		case "enter":
			return m.submitComment()
		case "esc":
			m.draft.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.draft, cmd = m.draft.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc", "q":
		m.open = false
		m.closing = true
		m.comments = nil
		return m, nil

	case "j", "down":
		if m.cursor < len(m.comments)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "c":
		if !m.gate.CanComment() {
			m.alert = "Sign in to comment."
			return m, nil
		}
		m.draft.Focus()
		return m, nil

	case "+", "=":
		if m.rating < 10 {
			m.rating++
		}

	case "-":
		if m.rating > 0 {
			m.rating--
		}

	case "d":
		if len(m.comments) == 0 {
			return m, nil
		}
		target := m.comments[m.cursor]
		if !m.gate.CanDeleteComment(target) {
			m.alert = "You can only delete your own comments."
			return m, nil
		}
		m.confirming = true
		m.targetID = target.ID
		return m, nil

	case "r":
		m.loading = true
		cmd := tea.Batch(m.fetchComments(), m.spin.Tick)
		return m, cmd
	}

	return m, nil
}

// submitComment posts the draft. Anonymous sessions are rejected locally
// with no network call; a non-zero rating follows the comment as a second,
// dependent request.
func (m Model) submitComment() (Model, tea.Cmd) {
	body := strings.TrimSpace(m.draft.Value())
	if body == "" {
		return m, nil
	}
	if !m.gate.CanComment() {
		m.alert = "Sign in to comment."
		return m, nil
	}
	if m.posting {
		return m, nil
	}

	m.posting = true
	return m, tea.Batch(m.postComment(body), m.spin.Tick)
}

// Commands

func (m *Model) fetchComments() tea.Cmd {
	m.issued++
	seq := m.issued
	backend := m.backend
	movieID := m.movie.ID
	return func() tea.Msg {
		comments, err := backend.Comments(context.Background(), movieID)
		return CommentsLoaded{Seq: seq, Comments: comments, Err: err}
	}
}

// reload refetches the full thread; the list is never patched in place.
func (m *Model) reload() tea.Cmd {
	m.loading = true
	return m.fetchComments()
}

func (m Model) postComment(body string) tea.Cmd {
	backend := m.backend
	movieID := m.movie.ID
	return func() tea.Msg {
		return CommentPosted{Err: backend.PostComment(context.Background(), movieID, body)}
	}
}

func (m Model) submitRating(score int) tea.Cmd {
	backend := m.backend
	movieID := m.movie.ID
	return func() tea.Msg {
		return RatingSubmitted{Err: backend.SubmitRating(context.Background(), movieID, score)}
	}
}

func (m Model) deleteComment(id int) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return CommentDeleted{Err: backend.DeleteComment(context.Background(), id)}
	}
}

// View renders the session.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.movie.Title))
	if m.movie.ReleaseDate != "" {
		b.WriteString(mutedStyle.Render("  " + m.movie.ReleaseDate))
	}
	if m.movie.VoteAverage > 0 {
		b.WriteString(scoreStyle.Render(fmt.Sprintf("  %.1f/10", m.movie.VoteAverage)))
	}
	b.WriteString("\n\n")

	if m.movie.Overview != "" {
		b.WriteString(bodyStyle.Render(truncate(m.movie.Overview, 4*m.width/3)))
		b.WriteString("\n\n")
	}

	b.WriteString(sectionStyle.Render("Comments"))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(mutedStyle.Render(m.spin.View() + " loading thread..."))
		b.WriteString("\n")
	case len(m.comments) == 0:
		b.WriteString(mutedStyle.Render("No comments yet."))
		b.WriteString("\n")
	default:
		for i, c := range m.comments {
			score := ""
			if c.Rating > 0 {
				score = fmt.Sprintf("%d/10  ", c.Rating)
			}
			line := fmt.Sprintf("%s  %s  %s%s", c.Author, c.Timestamp, score, truncate(c.Body, m.width-36))
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(bodyStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.rating > 0 {
		b.WriteString(scoreStyle.Render(fmt.Sprintf("Your rating: %d/10", m.rating)))
		b.WriteString("\n")
	}
	if m.posting {
		b.WriteString(mutedStyle.Render(m.spin.View() + " posting..."))
		b.WriteString("\n")
	}
	b.WriteString(m.draft.View())
	b.WriteString("\n\n")

	switch {
	case m.alert != "":
		b.WriteString(alertStyle.Render(m.alert + "  (press any key)"))
	case m.confirming:
		b.WriteString(alertStyle.Render("Delete this comment? [y/n]"))
	default:
		b.WriteString(mutedStyle.Render("[c] comment  [+/-] rating  [d] delete  [r] reload  [esc] back"))
	}

	return frameStyle.Width(m.width - 2).Render(b.String())
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

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d2a8ff"))
	bodyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")).Italic(true)
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffa657"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	alertStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149"))
)
