// Package model defines the domain types shared across marquee.
//
// Everything here is a plain value struct shaped after the backend's JSON.
// Fetched values are replaced wholesale on each response, never patched
// field by field.
package model

// Movie is a single discoverable title.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"` // 0-10, 0 = unrated
	ReleaseDate string  `json:"release_date,omitempty"` // "2006-01-02", may be empty
}

// Genre is one entry in the static genre reference set.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MoviePage is a page of query results together with pagination metadata.
// Legacy endpoints return a bare movie list; the client treats those as a
// single-page result.
type MoviePage struct {
	Movies     []Movie
	TotalPages int
}
