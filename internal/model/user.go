package model

// Identity is the authenticated user, if any. A nil *Identity means the
// session is anonymous.
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Comment is one entry in a movie's comment thread.
type Comment struct {
	ID        int    `json:"id"`
	Body      string `json:"body"`
	Author    string `json:"author"`
	UserID    int    `json:"user_id"`
	MovieID   int    `json:"movie_id"`
	Timestamp string `json:"timestamp"`  // "2006-01-02 15:04" per the backend
	Rating    int    `json:"user_score"` // commenter's 1-10 score, 0 = unset
}

// UserSummary is one row of the admin user list.
type UserSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// ModerationSnapshot is the read-only aggregate the admin dashboard shows.
// Refreshed as a whole after every destructive action, never patched.
type ModerationSnapshot struct {
	UserCount      int           `json:"user_count"`
	CommentCount   int           `json:"comment_count"`
	RecentComments []Comment     `json:"recent_comments"`
	Users          []UserSummary `json:"users"`
}
