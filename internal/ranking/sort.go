// Package ranking derives display orderings of the authoritative movie
// list. Sorting is pure: the input slice is never mutated and the result is
// recomputed from scratch on every call.
package ranking

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ekaraca/marquee/internal/model"
)

// Key selects the display ordering.
type Key int

const (
	// KeyRelevance keeps the backend's order untouched.
	KeyRelevance Key = iota
	// KeyNewest orders by release date descending; missing dates sort last.
	KeyNewest
	// KeyRating orders by score descending; unrated titles sort last.
	KeyRating
	// KeyAlphabetical orders by title ascending, case-insensitive,
	// using locale-aware collation.
	KeyAlphabetical
)

// Label returns the human-readable name shown in the status bar.
func (k Key) Label() string {
	switch k {
	case KeyNewest:
		return "Newest"
	case KeyRating:
		return "Rating"
	case KeyAlphabetical:
		return "A-Z"
	default:
		return "Relevance"
	}
}

// Next cycles to the following sort key.
func (k Key) Next() Key {
	if k == KeyAlphabetical {
		return KeyRelevance
	}
	return k + 1
}

// Sorter holds the collator for the configured UI language. Collators are
// not safe for concurrent use, but marquee sorts only from the single
// Bubble Tea update loop.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter builds a Sorter for the given BCP 47 language tag. An empty or
// unparseable tag falls back to English collation.
func NewSorter(langTag string) *Sorter {
	tag, err := language.Parse(langTag)
	if err != nil {
		tag = language.English
	}
	return &Sorter{collator: collate.New(tag, collate.IgnoreCase)}
}

// Sort returns a newly allocated slice ordered by key. The input is left
// untouched, so repeated calls over the same authoritative list are stable
// and idempotent.
func (s *Sorter) Sort(movies []model.Movie, key Key) []model.Movie {
	out := make([]model.Movie, len(movies))
	copy(out, movies)

	switch key {
	case KeyNewest:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].ReleaseDate, out[j].ReleaseDate
			if a == "" || b == "" {
				return a != "" && b == ""
			}
			// ISO dates compare correctly as strings.
			return a > b
		})
	case KeyRating:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].VoteAverage, out[j].VoteAverage
			if a == 0 || b == 0 {
				return a != 0 && b == 0
			}
			return a > b
		})
	case KeyAlphabetical:
		sort.SliceStable(out, func(i, j int) bool {
			return s.collator.CompareString(out[i].Title, out[j].Title) < 0
		})
	}

	return out
}
