// client/domain/note.go
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLen  = 100
	PreviewLen   = 280
	NoNotesLabel = "No notes found"
)

var (
	ErrEmptyTitle         = errors.New("title is required")
	ErrTitleTooLong       = fmt.Errorf("title is longer than %d characters", MaxTitleLen)
	ErrMissingCredentials = errors.New("email and password are required")
)

// NoteID is assigned by the server. Some backends send numbers, others
// strings; both decode into the same value.
type NoteID string

func (id *NoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("note id: %w", err)
	}
	*id = NoteID(n.String())
	return nil
}

func (id NoteID) String() string { return string(id) }

type Note struct {
	ID        NoteID     `json:"id,omitempty" yaml:"-"`
	Title     string     `json:"title" yaml:"title"`
	Content   string     `json:"content" yaml:"-"`
	Tags      []string   `json:"tags" yaml:"tags"`
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// Payload is the body sent on create and update. Timestamps stay with the
// server.
func (n Note) Payload() Note {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return Note{ID: n.ID, Title: n.Title, Content: n.Content, Tags: tags}
}

func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ValidateTitle trims the title and checks it against the editor's limits.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// Preview cuts content to the card preview length.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewLen {
		return content
	}
	r := []rune(content)
	return string(r[:PreviewLen])
}

type User struct {
	Email string `json:"email"`
}

// Credentials is the body of the login and register calls.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}
