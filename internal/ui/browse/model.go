// Package browse renders the authoritative movie list. It owns only the
// cursor; the list itself is handed in already ordered by the root model.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekaraca/marquee/internal/model"
)

// Model is the movie list pane.
type Model struct {
	movies  []model.Movie
	cursor  int
	loading bool
	focused bool
	spin    spinner.Model

	width  int
	height int
}

// New creates the browse pane.
func New() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))
	return Model{spin: s, focused: true}
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetMovies replaces the displayed list. The cursor sticks to the same
// movie id across updates when it survives, otherwise clamps into range.
func (m *Model) SetMovies(movies []model.Movie) {
	var previousID int
	if m.cursor >= 0 && m.cursor < len(m.movies) {
		previousID = m.movies[m.cursor].ID
	}

	m.movies = movies
	m.loading = false

	if previousID != 0 {
		for i, mv := range movies {
			if mv.ID == previousID {
				m.cursor = i
				return
			}
		}
	}
	if m.cursor >= len(movies) {
		m.cursor = max(0, len(movies)-1)
	}
}

// SetLoading toggles the spinner.
func (m *Model) SetLoading(loading bool) { m.loading = loading }

// Spinner returns the spinner model for tick propagation.
func (m Model) Spinner() spinner.Model { return m.spin }

// UpdateSpinner stores an advanced spinner.
func (m *Model) UpdateSpinner(s spinner.Model) { m.spin = s }

// Loading reports whether a fetch is outstanding.
func (m Model) Loading() bool { return m.loading }

// Focus gives the pane keyboard focus.
func (m *Model) Focus() { m.focused = true }

// Blur removes keyboard focus.
func (m *Model) Blur() { m.focused = false }

// Focused reports whether the pane has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// MoveUp moves the cursor up one entry.
func (m *Model) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// MoveDown moves the cursor down one entry.
func (m *Model) MoveDown() {
	if m.cursor < len(m.movies)-1 {
		m.cursor++
	}
}

// Selected returns the movie under the cursor, or nil when the list is
// empty.
func (m Model) Selected() *model.Movie {
	if len(m.movies) == 0 || m.cursor >= len(m.movies) {
		return nil
	}
	return &m.movies[m.cursor]
}

// View renders the list.
func (m Model) View() string {
	var b strings.Builder

	if m.loading {
		b.WriteString(mutedStyle.Render(m.spin.View() + " fetching movies..."))
		b.WriteString("\n")
	}

	if len(m.movies) == 0 {
		if !m.loading {
			b.WriteString(mutedStyle.Render("Nothing to show. Search or pick a genre."))
		}
		return paneStyle.Width(m.width).Height(m.height).Render(b.String())
	}

	// Keep the cursor visible inside the pane.
	visible := m.height - 4
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.movies) {
		end = len(m.movies)
	}

	for i := start; i < end; i++ {
		mv := m.movies[i]
		line := m.renderRow(mv, i == m.cursor)
		b.WriteString(line)
		b.WriteString("\n")
	}

	return paneStyle.Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) renderRow(mv model.Movie, selected bool) string {
	score := " -- "
	if mv.VoteAverage > 0 {
		score = fmt.Sprintf("%4.1f", mv.VoteAverage)
	}
	year := "    "
	if len(mv.ReleaseDate) >= 4 {
		year = mv.ReleaseDate[:4]
	}

	titleWidth := m.width - 16
	if titleWidth < 10 {
		titleWidth = 10
	}
	title := truncate(mv.Title, titleWidth)

	line := fmt.Sprintf("%s %s  %s", score, year, title)
	if selected {
		marker := "> "
		if !m.focused {
			marker = "  "
		}
		return selectedStyle.Render(marker + line)
	}
	return rowStyle.Render("  " + line)
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
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#30363d")).
			Padding(0, 1)

	rowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")).Italic(true)
)
