package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ekaraca/marquee/internal/model"
	"github.com/ekaraca/marquee/internal/session"
)

type fakeBackend struct {
	snapshot model.ModerationSnapshot

	snapshotCalls    int
	commentDeletes   int
	userDeletes      int
	lastDeletedID    int
	commentDeleteErr error
}

func (f *fakeBackend) ModerationSnapshot(_ context.Context) (model.ModerationSnapshot, error) {
	f.snapshotCalls++
	return f.snapshot, nil
}

func (f *fakeBackend) AdminDeleteComment(_ context.Context, commentID int) error {
	f.commentDeletes++
	f.lastDeletedID = commentID
	return f.commentDeleteErr
}

func (f *fakeBackend) AdminDeleteUser(_ context.Context, userID int) error {
	f.userDeletes++
	f.lastDeletedID = userID
	return nil
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

func press(m Model, s string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch s {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	return m.Update(msg)
}

func adminGate(selfID int) *session.Gate {
	g := session.New()
	g.Set(model.Identity{ID: selfID, Username: "root", IsAdmin: true})
	return g
}

func testSnapshot() model.ModerationSnapshot {
	return model.ModerationSnapshot{
		UserCount:    2,
		CommentCount: 1,
		Users: []model.UserSummary{
			{ID: 1, Username: "root", IsAdmin: true},
			{ID: 2, Username: "guest"},
		},
		RecentComments: []model.Comment{
			{ID: 10, Body: "spam", Author: "guest", UserID: 2},
		},
	}
}

func openDashboard(t *testing.T, backend *fakeBackend, gate *session.Gate) Model {
	t.Helper()
	m := New(backend, gate)
	m, cmd := m.Open()
	m = drain(m, cmd)
	if !m.IsOpen() {
		t.Fatal("dashboard should be open")
	}
	return m
}

func TestOpenLoadsSnapshot(t *testing.T) {
	backend := &fakeBackend{snapshot: testSnapshot()}
	m := openDashboard(t, backend, adminGate(1))

	if backend.snapshotCalls != 1 {
		t.Errorf("snapshot fetches = %d, want 1", backend.snapshotCalls)
	}
	got := m.Snapshot()
	if got.UserCount != 2 || len(got.Users) != 2 {
		t.Errorf("snapshot not applied: %+v", got)
	}
}

func TestDeleteCommentRefetchesSnapshot(t *testing.T) {
	backend := &fakeBackend{snapshot: testSnapshot()}
	m := openDashboard(t, backend, adminGate(1))

	m, _ = press(m, "tab") // focus the comment feed
	m, _ = press(m, "d")
	m, cmd := press(m, "y")
	m = drain(m, cmd)

	if backend.commentDeletes != 1 {
		t.Errorf("comment deletes = %d, want 1", backend.commentDeletes)
	}
	if backend.lastDeletedID != 10 {
		t.Errorf("deleted id = %d, want 10", backend.lastDeletedID)
	}
	// One fetch on open, one after the successful delete.
	if backend.snapshotCalls != 2 {
		t.Errorf("snapshot fetches = %d, want 2", backend.snapshotCalls)
	}
}

func TestDeleteDeclined(t *testing.T) {
	backend := &fakeBackend{snapshot: testSnapshot()}
	m := openDashboard(t, backend, adminGate(1))

	m, _ = press(m, "tab")
	m, _ = press(m, "d")
	m, cmd := press(m, "n")

	if cmd != nil || backend.commentDeletes != 0 {
		t.Errorf("declined confirmation should not delete, calls = %d", backend.commentDeletes)
	}
}

func TestDeleteFailureShowsAlertWithoutRefetch(t *testing.T) {
	backend := &fakeBackend{
		snapshot:         testSnapshot(),
		commentDeleteErr: errors.New("constraint"),
	}
	m := openDashboard(t, backend, adminGate(1))

	m, _ = press(m, "tab")
	m, _ = press(m, "d")
	m, cmd := press(m, "y")
	m = drain(m, cmd)

	if m.alert == "" {
		t.Error("failed delete should raise a notice")
	}
	if backend.snapshotCalls != 1 {
		t.Errorf("snapshot fetches = %d, want 1 (no refetch on failure)", backend.snapshotCalls)
	}
}

func TestSelfDeleteBlocked(t *testing.T) {
	backend := &fakeBackend{snapshot: testSnapshot()}
	m := openDashboard(t, backend, adminGate(1)) // signed in as user 1, first row

	m, cmd := press(m, "d")

	if cmd != nil || backend.userDeletes != 0 {
		t.Errorf("self-delete must be blocked, calls = %d", backend.userDeletes)
	}
	if m.alert == "" {
		t.Error("want the self-delete notice")
	}
}

func TestDeleteOtherUser(t *testing.T) {
	backend := &fakeBackend{snapshot: testSnapshot()}
	m := openDashboard(t, backend, adminGate(1))

	m, _ = press(m, "j") // move to the second row (guest)
	m, _ = press(m, "d")
	m, cmd := press(m, "y")
	m = drain(m, cmd)

	if backend.userDeletes != 1 {
		t.Errorf("user deletes = %d, want 1", backend.userDeletes)
	}
	if backend.lastDeletedID != 2 {
		t.Errorf("deleted id = %d, want 2", backend.lastDeletedID)
	}
	if backend.snapshotCalls != 2 {
		t.Errorf("snapshot fetches = %d, want 2", backend.snapshotCalls)
	}
}

func TestEscCloses(t *testing.T) {
	backend := &fakeBackend{snapshot: testSnapshot()}
	m := openDashboard(t, backend, adminGate(1))

	m, _ = press(m, "esc")
	if m.IsOpen() || !m.IsClosing() {
		t.Error("esc should close the dashboard and flag the root model")
	}
}
