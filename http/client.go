// client/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vinizap/lumi/client/domain"
)

// ErrNetwork marks failures where no response came back.
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx answer from the notes API. Body holds the response
// text as sent, which the auth view shows to the user.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Body)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// TokenSource hands out the current bearer credential, "" when there is none.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	hc      *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "api").Logger(),
	}
}

// UseTokens sets where the Authorization header comes from.
func (c *Client) UseTokens(ts TokenSource) {
	c.tokens = ts
}

func (c *Client) Register(ctx context.Context, creds domain.Credentials) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, creds, nil)
}

// Login returns the issued credential.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login: response carried no token")
	}
	return resp.Token, nil
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u)
	return u, err
}

// ListNotes lets the server do the filtering. Empty search and tags are left
// out of the query.
func (c *Client) ListNotes(ctx context.Context, search string, tags []string) ([]domain.Note, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if len(tags) > 0 {
		q.Set("tags", domain.JoinTags(tags))
	}
	var notes []domain.Note
	if err := c.do(ctx, http.MethodGet, "/notes", q, nil, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, note domain.Note) (domain.Note, error) {
	payload := note.Payload()
	payload.ID = ""
	var created domain.Note
	err := c.do(ctx, http.MethodPost, "/notes", nil, payload, &created)
	return created, err
}

func (c *Client) UpdateNote(ctx context.Context, note domain.Note) (domain.Note, error) {
	if note.ID == "" {
		return domain.Note{}, fmt.Errorf("update note: missing id")
	}
	var updated domain.Note
	err := c.do(ctx, http.MethodPut, notePath(note.ID), nil, note.Payload(), &updated)
	return updated, err
}

func (c *Client) DeleteNote(ctx context.Context, id domain.NoteID) error {
	if id == "" {
		return fmt.Errorf("delete note: missing id")
	}
	return c.do(ctx, http.MethodDelete, notePath(id), nil, nil, nil)
}

func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := c.do(ctx, http.MethodGet, "/tags", nil, nil, &tags); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func notePath(id domain.NoteID) string {
	return "/notes/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug().Str("request_id", reqID).Str("method", method).Str("path", path).Err(err).Msg("request failed")
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", ErrNetwork, method, path, err)
	}

	c.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
