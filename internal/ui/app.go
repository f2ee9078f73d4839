package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekaraca/marquee/internal/config"
	"github.com/ekaraca/marquee/internal/discovery"
	"github.com/ekaraca/marquee/internal/logging"
	"github.com/ekaraca/marquee/internal/model"
	"github.com/ekaraca/marquee/internal/ranking"
	"github.com/ekaraca/marquee/internal/results"
	"github.com/ekaraca/marquee/internal/session"
	"github.com/ekaraca/marquee/internal/ui/admin"
	"github.com/ekaraca/marquee/internal/ui/auth"
	"github.com/ekaraca/marquee/internal/ui/browse"
	"github.com/ekaraca/marquee/internal/ui/chat"
	"github.com/ekaraca/marquee/internal/ui/detail"
)

// Backend is everything the UI needs from the API client.
type Backend interface {
	Genres(ctx context.Context) ([]model.Genre, error)
	QueryMovies(ctx context.Context, q discovery.Query) (model.MoviePage, error)
	CheckSession(ctx context.Context) *model.Identity
	Logout(ctx context.Context) error
	chat.Backend
	detail.Backend
	admin.Backend
	auth.Backend
}

// App is the root Bubble Tea model. It owns the discovery state, the
// results controller, the session gate, and the pane/modal composition;
// every backend completion flows through here as a message.
type App struct {
	backend Backend
	cfg     *config.Config

	disc    discovery.State
	ctrl    *results.Controller
	gate    *session.Gate
	sorter  *ranking.Sorter
	sortKey ranking.Key

	genres       []model.Genre
	pickingGenre bool
	genreCursor  int

	search    textinput.Model
	searching bool

	browse browse.Model
	chat   chat.Model
	detail detail.Model
	auth   auth.Model
	admin  admin.Model

	notice string
	width  int
	height int
	ready  bool
}

// NewApp wires the root model.
func NewApp(backend Backend, cfg *config.Config) App {
	gate := session.New()

	search := textinput.New()
	search.Placeholder = "Search movies..."
	search.CharLimit = 200

	return App{
		backend: backend,
		cfg:     cfg,
		disc:    discovery.NewState(),
		ctrl:    results.New(),
		gate:    gate,
		sorter:  ranking.NewSorter(cfg.UI.Language),
		search:  search,
		browse:  browse.New(),
		chat:    chat.New(backend),
		detail:  detail.New(backend, gate),
		auth:    auth.New(backend),
		admin:   admin.New(backend, gate),
	}
}

// Init loads the genre reference set, probes the session, and issues the
// initial listing. All three fail silently into safe defaults.
func (a App) Init() tea.Cmd {
	backend := a.backend
	seq := a.ctrl.Begin()
	q := a.disc.Query()

	return tea.Batch(
		func() tea.Msg {
			genres, err := backend.Genres(context.Background())
			return GenresLoaded{Genres: genres, Err: err}
		},
		func() tea.Msg {
			return SessionChecked{Identity: backend.CheckSession(context.Background())}
		},
		func() tea.Msg {
			page, err := backend.QueryMovies(context.Background(), q)
			return MoviesLoaded{Seq: seq, Movies: page.Movies, TotalPages: page.TotalPages, Err: err}
		},
	)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		return a, nil
	}

	return a.handleMsg(msg)
}

// layout distributes the window between the panes and modals.
func (a *App) layout() {
	contentHeight := a.height - 2
	if contentHeight < 4 {
		contentHeight = 4
	}
	browseWidth := a.width * 2 / 3
	chatWidth := a.width - browseWidth

	a.browse.SetSize(browseWidth, contentHeight)
	a.chat.SetSize(chatWidth, contentHeight)
	a.detail.SetSize(a.width, a.height)
	a.auth.SetSize(a.width, a.height)
	a.admin.SetSize(a.width, a.height)
	searchWidth := browseWidth - 10
	if searchWidth < 10 {
		searchWidth = 10
	}
	a.search.Width = searchWidth
}

// handleMsg processes every non-key message. Completions are routed both
// to the root state and to whichever sub-model owns them; the sequence
// guards make duplicate delivery harmless.
func (a App) handleMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case GenresLoaded:
		if msg.Err != nil {
			logging.Warn("genre load failed", "err", msg.Err)
		} else {
			a.genres = msg.Genres
		}

	case SessionChecked:
		if msg.Identity != nil {
			a.gate.Set(*msg.Identity)
			logging.Info("session restored", "user", msg.Identity.Username)
		}

	case MoviesLoaded:
		if a.ctrl.Finish(msg.Seq, msg.Movies, msg.TotalPages, msg.Err) {
			a.disc = discovery.WithTotal(a.disc, a.ctrl.TotalPages())
			a.browse.SetLoading(a.ctrl.Loading())
			a.refreshBrowse()
		}

	case LoggedOut:
		if msg.Err != nil {
			// Local identity is already gone; the server state is its
			// own problem.
			logging.Warn("logout call failed", "err", msg.Err)
		}

	case chat.ReplyMsg:
		if msg.Err == nil && len(msg.Reply.Recommendations) > 0 {
			a.ctrl.Override(msg.Reply.Recommendations)
			a.disc = discovery.WithTotal(a.disc, 1)
			a.sortKey = ranking.KeyRelevance
			a.browse.SetLoading(false)
			a.refreshBrowse()
		}

	case auth.LoggedIn:
		if msg.Err == nil {
			a.gate.Set(msg.Identity)
			a.notice = "Signed in as " + msg.Identity.Username
		}

	case spinner.TickMsg:
		if a.browse.Loading() {
			s, cmd := a.browse.Spinner().Update(msg)
			a.browse.UpdateSpinner(s)
			cmds = append(cmds, cmd)
		}
	}

	// Broadcast to sub-models; each ignores what it does not own.
	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	cmds = append(cmds, cmd)
	if a.detail.IsOpen() {
		a.detail, cmd = a.detail.Update(msg)
		cmds = append(cmds, cmd)
	}
	if a.admin.IsOpen() {
		a.admin, cmd = a.admin.Update(msg)
		cmds = append(cmds, cmd)
	}
	if a.auth.IsOpen() {
		a.auth, cmd = a.auth.Update(msg)
		cmds = append(cmds, cmd)
		if a.auth.IsClosing() {
			a.auth.ResetClosing()
		}
	}

	return a, tea.Batch(cmds...)
}

// refreshBrowse recomputes the displayed ordering from the authoritative
// list and the selected sort key.
func (a *App) refreshBrowse() {
	a.browse.SetMovies(a.sorter.Sort(a.ctrl.Movies(), a.sortKey))
}

// handleKey routes keyboard input to the active modal or pane.
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.notice = ""

	switch {
	case a.auth.IsOpen():
		var cmd tea.Cmd
		a.auth, cmd = a.auth.Update(msg)
		if a.auth.IsClosing() {
			a.auth.ResetClosing()
		}
		return a, cmd

	case a.admin.IsOpen():
		var cmd tea.Cmd
		a.admin, cmd = a.admin.Update(msg)
		if a.admin.IsClosing() {
			a.admin.ResetClosing()
		}
		return a, cmd

	case a.detail.IsOpen():
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		if a.detail.IsClosing() {
			a.detail.ResetClosing()
		}
		return a, cmd

	case a.searching:
		return a.handleSearchKey(msg)

	case a.pickingGenre:
		return a.handleGenreKey(msg)

	case a.chat.Focused():
		if msg.String() == "tab" {
			a.chat.Blur()
			a.browse.Focus()
			return a, nil
		}
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd
	}

	return a.handleBrowseKey(msg)
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		term := a.search.Value()
		a.searching = false
		a.search.Blur()
		if term == "" {
			return a, nil
		}
		return a.activate(discovery.Search(term))

	case "esc":
		a.searching = false
		a.search.Blur()
		a.search.SetValue("")
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a App) handleGenreKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.pickingGenre = false
		return a, nil

	case "j", "down":
		if a.genreCursor < len(a.genres)-1 {
			a.genreCursor++
		}
		return a, nil

	case "k", "up":
		if a.genreCursor > 0 {
			a.genreCursor--
		}
		return a, nil

	case "enter":
		a.pickingGenre = false
		if len(a.genres) == 0 {
			return a, nil
		}
		return a.activate(discovery.GenreFilter(a.genres[a.genreCursor].ID))
	}
	return a, nil
}

func (a App) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "j", "down":
		a.browse.MoveDown()

	case "k", "up":
		a.browse.MoveUp()

	case "enter":
		if mv := a.browse.Selected(); mv != nil {
			var cmd tea.Cmd
			a.detail, cmd = a.detail.Open(*mv)
			return a, cmd
		}

	case "/":
		a.searching = true
		a.search.SetValue("")
		cmd := a.search.Focus()
		return a, cmd

	case "g":
		if len(a.genres) > 0 {
			a.pickingGenre = true
			a.genreCursor = 0
		}

	case "1":
		return a.activate(discovery.CategoryFilter(discovery.CategoryPopular))

	case "2":
		return a.activate(discovery.CategoryFilter(discovery.CategoryTopRated))

	case "3":
		return a.activate(discovery.CategoryFilter(discovery.CategoryCommunityTop))

	case "0":
		return a.activate(discovery.None())

	case "n", "right":
		if next, ok := discovery.NextPage(a.disc); ok {
			a.disc = next
			return a.applyQuery()
		}

	case "p", "left":
		if prev, ok := discovery.PrevPage(a.disc); ok {
			a.disc = prev
			return a.applyQuery()
		}

	case "s":
		a.sortKey = a.sortKey.Next()
		a.refreshBrowse()

	case "tab":
		a.browse.Blur()
		a.chat.Focus()

	case "L":
		if !a.gate.SignedIn() {
			a.auth = a.auth.Open()
		}

	case "O":
		if a.gate.SignedIn() {
			// Local identity clears unconditionally, whatever the call
			// returns.
			a.gate.Clear()
			a.notice = "Signed out."
			backend := a.backend
			return a, func() tea.Msg {
				return LoggedOut{Err: backend.Logout(context.Background())}
			}
		}

	case "A":
		if !a.gate.CanModerate() {
			a.notice = "Moderators only."
			return a, nil
		}
		var cmd tea.Cmd
		a.admin, cmd = a.admin.Open()
		return a, cmd

	case "esc":
		a.ctrl.DismissErr()
	}

	return a, nil
}

// activate switches the discovery mode, resets the sort key, and issues
// the composed query.
func (a App) activate(mode discovery.Mode) (tea.Model, tea.Cmd) {
	a.disc = discovery.Activate(a.disc, mode)
	a.sortKey = ranking.KeyRelevance
	return a.applyQuery()
}

// applyQuery dispatches the current composed query, tagged with a fresh
// sequence number from the results controller.
func (a App) applyQuery() (App, tea.Cmd) {
	seq := a.ctrl.Begin()
	q := a.disc.Query()
	a.browse.SetLoading(true)

	backend := a.backend
	fetch := func() tea.Msg {
		page, err := backend.QueryMovies(context.Background(), q)
		return MoviesLoaded{Seq: seq, Movies: page.Movies, TotalPages: page.TotalPages, Err: err}
	}
	return a, tea.Batch(fetch, a.browse.Spinner().Tick)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	switch {
	case a.auth.IsOpen():
		return a.auth.View()
	case a.admin.IsOpen():
		return a.admin.View()
	case a.detail.IsOpen():
		return a.detail.View()
	}

	header := Header.Width(a.width).Render("MARQUEE  ·  " + a.modeLabel())

	var body string
	if a.pickingGenre {
		body = a.renderGenrePicker()
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, a.browse.View(), a.chat.View())
	}

	sections := []string{header, body}

	if err := a.ctrl.Err(); err != nil {
		sections = append(sections, ErrorBar.Width(a.width).Render("Error: "+err.Error()+" (esc to dismiss)"))
	}

	sections = append(sections, StatusBar.Width(a.width).Render(a.statusLine()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a App) renderGenrePicker() string {
	var rows []string
	rows = append(rows, ModeBadge.Render("Pick a genre"))
	for i, g := range a.genres {
		if i == a.genreCursor {
			rows = append(rows, "> "+g.Name)
		} else {
			rows = append(rows, "  "+g.Name)
		}
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) modeLabel() string {
	switch a.disc.Mode {
	case discovery.ModeSearch:
		return fmt.Sprintf("search %q", a.disc.Term)
	case discovery.ModeGenre:
		for _, g := range a.genres {
			if g.ID == a.disc.GenreID {
				return "genre: " + g.Name
			}
		}
		return "genre filter"
	case discovery.ModeCategory:
		return "listing: " + string(a.disc.Category)
	default:
		return "popular movies"
	}
}

func (a App) statusLine() string {
	if a.searching {
		return "  " + a.search.View()
	}
	if a.notice != "" {
		return "  " + a.notice
	}

	who := "anonymous"
	if id := a.gate.Identity(); id != nil {
		who = id.Username
		if id.IsAdmin {
			who += " (admin)"
		}
	}

	hints := StatusText.Render("[/] search [g] genre [1-3] lists [n/p] page [s] sort [tab] chat [enter] detail [q] quit")
	return fmt.Sprintf("  p.%d/%d  ·  sort: %s  ·  %s  ·  %s",
		a.disc.Page.Current, a.disc.Page.Total, a.sortKey.Label(), who, hints)
}
