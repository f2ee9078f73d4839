// Package discovery models the active discovery mode and pagination as one
// explicit state value with total transition functions. Nothing in here
// performs network calls; the composed Query is consumed by the caller.
package discovery

// Kind identifies which discovery mode is active. Exactly one is active at
// a time; activating a mode clears the parameters of the others.
type Kind int

const (
	ModeNone Kind = iota
	ModeSearch
	ModeGenre
	ModeCategory
)

// Category is the curated listing kind used by the category filter.
type Category string

const (
	CategoryPopular      Category = "popular"
	CategoryTopRated     Category = "top_rated"
	CategoryCommunityTop Category = "community_top"
)

// Mode is a tagged activation request: the kind plus the single parameter
// that belongs to it.
type Mode struct {
	Kind     Kind
	Term     string
	GenreID  int
	Category Category
}

// Search activates free-text search.
func Search(term string) Mode { return Mode{Kind: ModeSearch, Term: term} }

// GenreFilter activates filtering by a genre id.
func GenreFilter(genreID int) Mode { return Mode{Kind: ModeGenre, GenreID: genreID} }

// CategoryFilter activates one of the curated listings.
func CategoryFilter(c Category) Mode { return Mode{Kind: ModeCategory, Category: c} }

// None deactivates every filter, falling back to the default listing.
func None() Mode { return Mode{Kind: ModeNone} }

// Page is pagination state. Current and Total are both at least 1; Current
// never exceeds Total once the backend has reported it.
type Page struct {
	Current int
	Total   int
}

// State is the composed discovery state: the active mode, its parameters,
// and pagination. Mutate only through the transition functions below.
type State struct {
	Mode     Kind
	Term     string
	GenreID  int
	Category Category
	Page     Page
}

// Query is the canonical backend query composed from a State. Zero-valued
// fields are omitted from the request.
type Query struct {
	Term     string
	GenreID  int
	Page     int
	Category Category
}

// NewState returns the startup state: no active mode, first page.
func NewState() State {
	return State{
		Mode:     ModeNone,
		Category: CategoryPopular,
		Page:     Page{Current: 1, Total: 1},
	}
}

// Activate applies a mode change. Parameters of every other mode reset to
// their defaults and the current page returns to 1. Total pages is kept
// until the next response replaces it.
func Activate(s State, m Mode) State {
	s.Term = ""
	s.GenreID = 0
	s.Category = CategoryPopular

	switch m.Kind {
	case ModeSearch:
		s.Term = m.Term
	case ModeGenre:
		s.GenreID = m.GenreID
	case ModeCategory:
		if m.Category != "" {
			s.Category = m.Category
		}
	}

	s.Mode = m.Kind
	s.Page.Current = 1
	return s
}

// WithTotal records the backend-reported page count, clamping the current
// page into range.
func WithTotal(s State, total int) State {
	if total < 1 {
		total = 1
	}
	s.Page.Total = total
	if s.Page.Current > total {
		s.Page.Current = total
	}
	return s
}

// NextPage advances one page under the current mode. Reports false when
// already on the last page.
func NextPage(s State) (State, bool) {
	if s.Page.Current >= s.Page.Total {
		return s, false
	}
	s.Page.Current++
	return s, true
}

// PrevPage steps back one page. Reports false when already on the first.
func PrevPage(s State) (State, bool) {
	if s.Page.Current <= 1 {
		return s, false
	}
	s.Page.Current--
	return s, true
}

// Query composes the canonical backend query for the current state.
func (s State) Query() Query {
	q := Query{Page: s.Page.Current}
	switch s.Mode {
	case ModeSearch:
		q.Term = s.Term
	case ModeGenre:
		q.GenreID = s.GenreID
		q.Category = CategoryPopular
	case ModeCategory:
		q.Category = s.Category
	}
	return q
}
