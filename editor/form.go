// client/editor/form.go
package editor

import (
	"context"
	"strings"

	"github.com/vinizap/lumi/client/domain"
)

// Saver stores a note, creating it when it has no id.
type Saver interface {
	Save(ctx context.Context, note domain.Note) error
}

// Form is the note editor. It holds a working copy that only reaches the
// server through Submit.
type Form struct {
	saver Saver

	open     bool
	id       domain.NoteID
	Title    string
	Content  string
	Tags     []string
	TagInput string
	Err      error

	// draft holds editor text that failed to parse, pending another pass.
	draft []byte
}

func NewForm(saver Saver) *Form {
	return &Form{saver: saver}
}

// Open seeds the form from note, or with empty fields when note is nil.
// Anything left over from a previous opening is dropped.
func (f *Form) Open(note *domain.Note) {
	*f = Form{saver: f.saver, open: true, Tags: []string{}}
	if note == nil {
		return
	}
	f.id = note.ID
	f.Title = note.Title
	f.Content = note.Content
	f.Tags = append(f.Tags, note.Tags...)
}

func (f *Form) Close() { f.open = false }

func (f *Form) IsOpen() bool { return f.open }

// Editing reports whether the form targets an existing note.
func (f *Form) Editing() bool { return f.id != "" }

func (f *Form) ID() domain.NoteID { return f.id }

func (f *Form) SetTagInput(s string) {
	f.TagInput = domain.SanitizeTag(s)
}

// AddTag moves the tag input onto the note. The input is cleared whether or
// not the tag was taken.
func (f *Form) AddTag() error {
	tag := f.TagInput
	f.TagInput = ""
	if tag == "" {
		return nil
	}
	for _, t := range f.Tags {
		if t == tag {
			return domain.ErrDuplicateTag
		}
	}
	f.Tags = append(f.Tags, tag)
	return nil
}

func (f *Form) RemoveTag(tag string) {
	kept := f.Tags[:0]
	for _, t := range f.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	f.Tags = kept
}

// Suggestions lists the known tags the note does not carry yet.
func (f *Form) Suggestions(known []string) []string {
	var out []string
	for _, t := range known {
		if !f.note().HasTag(t) {
			out = append(out, t)
		}
	}
	return out
}

func (f *Form) note() domain.Note {
	return domain.Note{ID: f.id, Title: f.Title, Content: f.Content, Tags: f.Tags}
}

// Submit validates and saves. Validation failures never reach the network.
// On success the form closes; on failure it stays open with Err set.
func (f *Form) Submit(ctx context.Context) error {
	f.Err = nil

	title, err := domain.ValidateTitle(f.Title)
	if err != nil {
		f.Err = err
		return err
	}
	f.Title = title
	f.Content = strings.TrimSpace(f.Content)

	if err := f.saver.Save(ctx, f.note()); err != nil {
		f.Err = err
		return err
	}
	f.open = false
	return nil
}
