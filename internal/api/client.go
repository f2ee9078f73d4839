// Package api is the RPC client for the recommendation backend. All calls
// are plain request/response JSON over HTTP against a fixed origin; the
// session credential is an opaque cookie carried by the transport and never
// inspected here.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/ekaraca/marquee/internal/discovery"
	"github.com/ekaraca/marquee/internal/logging"
	"github.com/ekaraca/marquee/internal/model"
)

// Client talks to the backend. Safe for use from Bubble Tea commands; the
// limiter and breaker serialize what needs serializing.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[model.MoviePage]
}

// Options tune the client. Zero values fall back to defaults.
type Options struct {
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
}

// New creates a client for the backend at base.
func New(base string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 10
	}

	// Cookie jar carries the opaque session credential.
	jar, _ := cookiejar.New(nil)

	// Discovery queries run behind a breaker so a dead backend degrades
	// into the normal network-error path instead of queueing timeouts.
	breaker := gobreaker.NewCircuitBreaker[model.MoviePage](gobreaker.Settings{
		Name:    "discovery",
		Timeout: 15 * time.Second,
	})

	return &Client{
		base: base,
		http: &http.Client{
			Timeout: opts.Timeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RateBurst),
		breaker: breaker,
	}
}

// Genres fetches the static genre reference set.
func (c *Client) Genres(ctx context.Context) ([]model.Genre, error) {
	var genres []model.Genre
	if err := c.do(ctx, http.MethodGet, "/api/genres", nil, nil, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// QueryMovies runs a discovery query. The backend may answer either with
// {results, total_pages} or with a bare movie list; a bare list implies a
// single page.
func (c *Client) QueryMovies(ctx context.Context, q discovery.Query) (model.MoviePage, error) {
	return c.breaker.Execute(func() (model.MoviePage, error) {
		params := url.Values{}
		if q.Term != "" {
			params.Set("query", q.Term)
		}
		if q.GenreID != 0 {
			params.Set("genre_id", strconv.Itoa(q.GenreID))
		}
		if q.Category != "" {
			params.Set("filter_type", string(q.Category))
		}
		params.Set("page", strconv.Itoa(q.Page))

		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, "/api/recommend", params, nil, &raw); err != nil {
			return model.MoviePage{}, err
		}
		return decodeMoviePage(raw)
	})
}

// decodeMoviePage handles both response shapes of the recommend endpoint.
func decodeMoviePage(raw json.RawMessage) (model.MoviePage, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var movies []model.Movie
		if err := json.Unmarshal(raw, &movies); err != nil {
			return model.MoviePage{}, fmt.Errorf("decode movie list: %w", err)
		}
		return model.MoviePage{Movies: movies, TotalPages: 1}, nil
	}

	var page struct {
		Results    []model.Movie `json:"results"`
		TotalPages int           `json:"total_pages"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return model.MoviePage{}, fmt.Errorf("decode movie page: %w", err)
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	return model.MoviePage{Movies: page.Results, TotalPages: page.TotalPages}, nil
}

// CheckSession asks the backend who we are. Failure is not an error from
// the caller's point of view: the session is simply anonymous.
func (c *Client) CheckSession(ctx context.Context) *model.Identity {
	var id model.Identity
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, nil, &id); err != nil {
		logging.Debug("session check failed, staying anonymous", "err", err)
		return nil
	}
	if id.Username == "" {
		return nil
	}
	return &id
}

// Login authenticates and returns the established identity. Bad
// credentials come back as a *ValidationError with the server's message.
func (c *Client) Login(ctx context.Context, username, password string) (model.Identity, error) {
	body := map[string]string{"username": username, "password": password}
	var id model.Identity
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, body, &id); err != nil {
		return model.Identity{}, validationOr(err)
	}
	return id, nil
}

// Register creates an account. Validation and conflict failures carry the
// server's message.
func (c *Client) Register(ctx context.Context, username, password, email string) error {
	body := map[string]string{"username": username, "password": password}
	if email != "" {
		body["email"] = email
	}
	if err := c.do(ctx, http.MethodPost, "/api/register", nil, body, nil); err != nil {
		return validationOr(err)
	}
	return nil
}

// Logout ends the server-side session. The caller clears its local
// identity regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil)
}

// Chat sends one conversational turn and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, text string) (model.ChatReply, error) {
	body := map[string]string{"message": text}
	var reply model.ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/chatbot", nil, body, &reply); err != nil {
		return model.ChatReply{}, err
	}
	return reply, nil
}

// Comments fetches the comment thread for a movie.
func (c *Client) Comments(ctx context.Context, movieID int) ([]model.Comment, error) {
	var comments []model.Comment
	path := fmt.Sprintf("/api/movies/%d/comments", movieID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// PostComment adds a comment to a movie's thread.
func (c *Client) PostComment(ctx context.Context, movieID int, bodyText string) error {
	path := fmt.Sprintf("/api/movies/%d/comments", movieID)
	return c.do(ctx, http.MethodPost, path, nil, map[string]string{"body": bodyText}, nil)
}

// SubmitRating records a 1-10 score for a movie. Independent of any
// comment post.
func (c *Client) SubmitRating(ctx context.Context, movieID, score int) error {
	path := fmt.Sprintf("/api/movies/%d/rating", movieID)
	return c.do(ctx, http.MethodPost, path, nil, map[string]int{"score": score}, nil)
}

// DeleteComment removes a comment. Ownership or moderation capability is
// enforced by the server.
func (c *Client) DeleteComment(ctx context.Context, commentID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/comments/%d", commentID), nil, nil, nil)
}

// ModerationSnapshot fetches the aggregate admin view.
func (c *Client) ModerationSnapshot(ctx context.Context) (model.ModerationSnapshot, error) {
	var snap model.ModerationSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &snap); err != nil {
		return model.ModerationSnapshot{}, err
	}
	return snap, nil
}

// AdminDeleteComment removes any user's comment.
func (c *Client) AdminDeleteComment(ctx context.Context, commentID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/comments/%d", commentID), nil, nil, nil)
}

// AdminDeleteUser removes a user account.
func (c *Client) AdminDeleteUser(ctx context.Context, userID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", userID), nil, nil, nil)
}

// do performs one JSON request/response round trip.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rid := uuid.NewString()[:8]
	logging.Debug("api request", "id", rid, "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		logging.Warn("api request failed", "id", rid, "err", err)
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := serverMessage(data)
		logging.Warn("api error response", "id", rid, "status", resp.StatusCode, "msg", msg)
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// serverMessage pulls the error text out of an {"error": ...} or
// {"message": ...} body.
func serverMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// validationOr converts client-error statuses into ValidationError so the
// auth forms can show the server's own message.
func validationOr(err error) error {
	var se *StatusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 && se.Message != "" {
		return &ValidationError{Message: se.Message}
	}
	return err
}
