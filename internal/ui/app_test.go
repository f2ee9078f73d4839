package ui

import (
	"context"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ekaraca/marquee/internal/config"
	"github.com/ekaraca/marquee/internal/discovery"
	"github.com/ekaraca/marquee/internal/model"
)

// fullBackend is a fake for the whole Backend surface. Only the parts a
// given test exercises are populated.
type fullBackend struct {
	genres   []model.Genre
	page     model.MoviePage
	identity *model.Identity
	reply    model.ChatReply

	queryCalls int
	lastQuery  discovery.Query
}

func (f *fullBackend) Genres(_ context.Context) ([]model.Genre, error) { return f.genres, nil }

func (f *fullBackend) QueryMovies(_ context.Context, q discovery.Query) (model.MoviePage, error) {
	f.queryCalls++
	f.lastQuery = q
	return f.page, nil
}

func (f *fullBackend) CheckSession(_ context.Context) *model.Identity { return f.identity }
func (f *fullBackend) Logout(_ context.Context) error                 { return nil }

func (f *fullBackend) Chat(_ context.Context, _ string) (model.ChatReply, error) {
	return f.reply, nil
}

func (f *fullBackend) Comments(_ context.Context, _ int) ([]model.Comment, error) {
	return nil, nil
}
func (f *fullBackend) PostComment(_ context.Context, _ int, _ string) error { return nil }
func (f *fullBackend) SubmitRating(_ context.Context, _, _ int) error       { return nil }
func (f *fullBackend) DeleteComment(_ context.Context, _ int) error         { return nil }

func (f *fullBackend) ModerationSnapshot(_ context.Context) (model.ModerationSnapshot, error) {
	return model.ModerationSnapshot{}, nil
}
func (f *fullBackend) AdminDeleteComment(_ context.Context, _ int) error { return nil }
func (f *fullBackend) AdminDeleteUser(_ context.Context, _ int) error    { return nil }

func (f *fullBackend) Login(_ context.Context, username, _ string) (model.Identity, error) {
	return model.Identity{ID: 1, Username: username}, nil
}
func (f *fullBackend) Register(_ context.Context, _, _, _ string) error { return nil }

// drain executes commands synchronously, feeding resulting messages back
// into the app. Spinner ticks are dropped to keep the loop finite.
func drain(a App, cmd tea.Cmd) App {
	if cmd == nil {
		return a
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			a = drain(a, c)
		}
	case spinner.TickMsg:
	default:
		next, cmd2 := a.Update(msg)
		a = next.(App)
		a = drain(a, cmd2)
	}
	return a
}

func press(a App, s string) (App, tea.Cmd) {
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	next, cmd := a.Update(msg)
	return next.(App), cmd
}

func (a App) typeText(text string) (App, tea.Cmd) {
	var cmd tea.Cmd
	next := tea.Model(a)
	for _, r := range text {
		next, cmd = next.(App).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return next.(App), cmd
}

func startApp(t *testing.T, backend *fullBackend) App {
	t.Helper()
	a := NewApp(backend, config.DefaultConfig())
	a = drain(a, a.Init())
	next, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(App)
}

func TestStartupIssuesInitialListing(t *testing.T) {
	backend := &fullBackend{
		genres: []model.Genre{{ID: 28, Name: "Action"}},
		page: model.MoviePage{
			Movies:     []model.Movie{{ID: 1, Title: "Heat"}, {ID: 2, Title: "Ran"}},
			TotalPages: 6,
		},
	}
	a := startApp(t, backend)

	if backend.queryCalls != 1 {
		t.Fatalf("query calls = %d, want 1", backend.queryCalls)
	}
	if got := a.ctrl.Movies(); len(got) != 2 {
		t.Errorf("len(movies) = %d, want 2", len(got))
	}
	if a.disc.Page.Total != 6 {
		t.Errorf("page total = %d, want 6", a.disc.Page.Total)
	}
}

func TestSearchFlow(t *testing.T) {
	backend := &fullBackend{page: model.MoviePage{TotalPages: 1}}
	a := startApp(t, backend)

	a, _ = press(a, "/")
	a, _ = a.typeText("matrix")
	a, cmd := press(a, "enter")
	a = drain(a, cmd)

	if a.disc.Mode != discovery.ModeSearch || a.disc.Term != "matrix" {
		t.Errorf("discovery state = %+v, want search for matrix", a.disc)
	}
	if backend.lastQuery.Term != "matrix" || backend.lastQuery.Page != 1 {
		t.Errorf("issued query = %+v", backend.lastQuery)
	}
}

func TestCategoryKeysComposeFilterQueries(t *testing.T) {
	tests := []struct {
		key  string
		want discovery.Category
	}{
		{"1", discovery.CategoryPopular},
		{"2", discovery.CategoryTopRated},
		{"3", discovery.CategoryCommunityTop},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			backend := &fullBackend{page: model.MoviePage{TotalPages: 2}}
			a := startApp(t, backend)

			a, cmd := press(a, tt.key)
			a = drain(a, cmd)

			if backend.lastQuery.Category != tt.want {
				t.Errorf("query category = %q, want %q", backend.lastQuery.Category, tt.want)
			}
			if a.disc.Page.Current != 1 {
				t.Errorf("page = %d, mode switch must reset to 1", a.disc.Page.Current)
			}
		})
	}
}

func TestChatOverrideReplacesListing(t *testing.T) {
	backend := &fullBackend{
		page: model.MoviePage{
			Movies:     []model.Movie{{ID: 1, Title: "Old"}},
			TotalPages: 9,
		},
		reply: model.ChatReply{
			Message:         "Try these",
			Recommendations: []model.Movie{{ID: 10, Title: "A"}, {ID: 11, Title: "B"}},
		},
	}
	a := startApp(t, backend)

	a, _ = press(a, "tab") // focus the chat pane
	a, _ = a.typeText("recommend something")
	a, cmd := press(a, "enter")
	a = drain(a, cmd)

	got := a.ctrl.Movies()
	if len(got) != 2 || got[0].ID != 10 || got[1].ID != 11 {
		t.Fatalf("override should replace the listing, got %+v", got)
	}
	if a.ctrl.TotalPages() != 1 || a.disc.Page.Total != 1 {
		t.Errorf("override must collapse pagination, ctrl=%d disc=%d",
			a.ctrl.TotalPages(), a.disc.Page.Total)
	}
}

func TestOverrideBeatsInFlightQuery(t *testing.T) {
	backend := &fullBackend{
		page: model.MoviePage{
			Movies:     []model.Movie{{ID: 1, Title: "Stale"}},
			TotalPages: 9,
		},
		reply: model.ChatReply{
			Message:         "ok",
			Recommendations: []model.Movie{{ID: 10, Title: "A"}},
		},
	}
	a := startApp(t, backend)

	// Issue a category query but hold its completion.
	a, pending := press(a, "2")

	// The chat reply lands first and takes over the listing.
	a, _ = press(a, "tab")
	a, _ = a.typeText("surprise me")
	a, chatCmd := press(a, "enter")
	a = drain(a, chatCmd)

	// Now the held query completes; it must be discarded as stale.
	a = drain(a, pending)

	got := a.ctrl.Movies()
	if len(got) != 1 || got[0].ID != 10 {
		t.Errorf("stale query must not clobber the override, got %+v", got)
	}
	if a.disc.Page.Total != 1 {
		t.Errorf("page total = %d, want 1 after override", a.disc.Page.Total)
	}
}

func TestEmptyRecommendationsLeaveListing(t *testing.T) {
	backend := &fullBackend{
		page: model.MoviePage{
			Movies:     []model.Movie{{ID: 1, Title: "Kept"}},
			TotalPages: 3,
		},
		reply: model.ChatReply{Message: "No idea, sorry."},
	}
	a := startApp(t, backend)

	a, _ = press(a, "tab")
	a, _ = a.typeText("anything?")
	a, cmd := press(a, "enter")
	a = drain(a, cmd)

	got := a.ctrl.Movies()
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("a reply without recommendations must not touch the listing, got %+v", got)
	}
	if len(a.chat.Turns()) != 2 {
		t.Errorf("transcript turns = %d, want 2", len(a.chat.Turns()))
	}
}

func TestPageNavigationReQueries(t *testing.T) {
	backend := &fullBackend{page: model.MoviePage{TotalPages: 4}}
	a := startApp(t, backend)

	a, cmd := press(a, "n")
	a = drain(a, cmd)
	if backend.lastQuery.Page != 2 {
		t.Errorf("query page = %d, want 2", backend.lastQuery.Page)
	}

	a, cmd = press(a, "p")
	a = drain(a, cmd)
	if backend.lastQuery.Page != 1 {
		t.Errorf("query page = %d, want 1", backend.lastQuery.Page)
	}
}

func TestSessionRestoredOnStartup(t *testing.T) {
	backend := &fullBackend{
		identity: &model.Identity{ID: 4, Username: "eda", IsAdmin: true},
		page:     model.MoviePage{TotalPages: 1},
	}
	a := startApp(t, backend)

	if !a.gate.SignedIn() || !a.gate.CanModerate() {
		t.Error("probed identity should be applied to the gate")
	}
}

func TestLayoutOnTinyWindow(t *testing.T) {
	backend := &fullBackend{page: model.MoviePage{TotalPages: 1}}
	a := startApp(t, backend)

	next, _ := a.Update(tea.WindowSizeMsg{Width: 8, Height: 3})
	a = next.(App)

	if a.search.Width < 1 {
		t.Errorf("search width = %d, must stay positive on a tiny window", a.search.Width)
	}
}

func TestModerationGate(t *testing.T) {
	backend := &fullBackend{page: model.MoviePage{TotalPages: 1}}
	a := startApp(t, backend)

	a, cmd := press(a, "A")
	if cmd != nil || a.admin.IsOpen() {
		t.Error("anonymous user must not reach the moderation dashboard")
	}
	if a.notice == "" {
		t.Error("want the moderators-only notice")
	}
}
