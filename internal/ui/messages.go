// Package ui provides the Bubble Tea TUI for marquee.
package ui

import "github.com/ekaraca/marquee/internal/model"

// GenresLoaded is sent once at startup with the genre reference set.
type GenresLoaded struct {
	Genres []model.Genre
	Err    error
}

// MoviesLoaded delivers the completion of a discovery query. Seq is the
// sequence number the results controller issued for it; stale completions
// are discarded.
type MoviesLoaded struct {
	Seq        uint64
	Movies     []model.Movie
	TotalPages int
	Err        error
}

// SessionChecked is sent after the startup session probe. A nil Identity
// means anonymous.
type SessionChecked struct {
	Identity *model.Identity
}

// LoggedOut is sent when the logout call returns. The local identity was
// already cleared when the call was issued.
type LoggedOut struct{ Err error }
