// Package session tracks the current authenticated identity and answers
// capability questions about it. The gate holds local state only; the
// network calls that establish or end a session live in the api package.
//
// Capability checks here are a UX convenience. The backend is the actual
// enforcement point for every destructive action.
package session

import "github.com/ekaraca/marquee/internal/model"

// Gate holds the current identity, or none.
type Gate struct {
	identity *model.Identity
}

// New returns an anonymous gate.
func New() *Gate { return &Gate{} }

// Set records a signed-in identity.
func (g *Gate) Set(id model.Identity) {
	g.identity = &id
}

// Clear drops the identity, returning the gate to anonymous. Called on
// logout unconditionally, even when the remote call failed.
func (g *Gate) Clear() { g.identity = nil }

// Identity returns the current identity, or nil when anonymous.
func (g *Gate) Identity() *model.Identity { return g.identity }

// SignedIn reports whether any identity is present.
func (g *Gate) SignedIn() bool { return g.identity != nil }

// CanComment reports whether the current identity may post comments and
// ratings.
func (g *Gate) CanComment() bool { return g.identity != nil }

// CanModerate reports whether the current identity carries the admin flag.
func (g *Gate) CanModerate() bool {
	return g.identity != nil && g.identity.IsAdmin
}

// CanDeleteComment reports whether the current identity may delete the
// given comment: its author may, and so may any moderator.
func (g *Gate) CanDeleteComment(c model.Comment) bool {
	if g.identity == nil {
		return false
	}
	return g.identity.ID == c.UserID || g.identity.IsAdmin
}
