// Package results owns the authoritative movie list: the one list currently
// considered "the result", as opposed to any derived view of it.
//
// Responses from overlapping asynchronous queries are serialized with a
// sequence guard: every dispatched query takes a monotonically increasing
// sequence number and a response is discarded unless it carries the latest
// issued one. The guarantee is last-issued-wins, not last-completed-wins.
// The conversational override path consumes numbers from the same counter,
// so an override also invalidates any query still in flight.
package results

import "github.com/ekaraca/marquee/internal/model"

// Phase is the controller's lifecycle state. Any phase may re-enter
// PhaseLoading when a new query is issued.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseErrored
)

// Controller holds the authoritative movie list and its loading state.
// It performs no I/O; callers dispatch requests tagged with the sequence
// number returned by Begin and deliver completions through Finish.
type Controller struct {
	movies     []model.Movie
	totalPages int
	phase      Phase
	err        error

	lastIssued  uint64
	lastApplied uint64
}

// New returns an empty controller in the idle phase.
func New() *Controller {
	return &Controller{totalPages: 1, phase: PhaseIdle}
}

// Begin registers a new outstanding query and returns its sequence number.
// The controller enters the loading phase; any previously issued request is
// now stale.
func (c *Controller) Begin() uint64 {
	c.lastIssued++
	c.phase = PhaseLoading
	c.err = nil
	return c.lastIssued
}

// Finish delivers the completion of the query tagged seq. Stale completions
// (anything but the latest issued sequence) are discarded and Finish reports
// false. On success the list and total page count are replaced atomically.
// On failure the previous list is preserved; the error is recorded as a
// dismissible, non-fatal condition.
func (c *Controller) Finish(seq uint64, movies []model.Movie, totalPages int, err error) bool {
	if seq != c.lastIssued || seq <= c.lastApplied {
		return false
	}
	c.lastApplied = seq

	if err != nil {
		c.phase = PhaseErrored
		c.err = err
		return true
	}

	if totalPages < 1 {
		totalPages = 1
	}
	c.movies = movies
	c.totalPages = totalPages
	c.phase = PhaseReady
	c.err = nil
	return true
}

// Override replaces the authoritative list out of band (the conversational
// recommendation path). Pagination collapses to a single page. The override
// consumes a sequence number so that any query still in flight is discarded
// when it completes.
func (c *Controller) Override(movies []model.Movie) {
	c.lastIssued++
	c.lastApplied = c.lastIssued
	c.movies = movies
	c.totalPages = 1
	c.phase = PhaseReady
	c.err = nil
}

// Movies returns the authoritative list. Callers must not mutate it;
// derived orderings are produced by the ranking package.
func (c *Controller) Movies() []model.Movie { return c.movies }

// TotalPages returns the backend-reported page count for the current list.
func (c *Controller) TotalPages() int { return c.totalPages }

// Phase returns the controller's current lifecycle phase.
func (c *Controller) Phase() Phase { return c.phase }

// Loading reports whether a query is outstanding.
func (c *Controller) Loading() bool { return c.phase == PhaseLoading }

// Err returns the recorded non-fatal error, if any.
func (c *Controller) Err() error { return c.err }

// DismissErr clears the recorded error without touching the list.
func (c *Controller) DismissErr() {
	c.err = nil
	if c.phase == PhaseErrored {
		c.phase = PhaseReady
	}
}
