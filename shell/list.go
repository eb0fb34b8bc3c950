// client/shell/list.go
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vinizap/lumi/client/domain"
	"github.com/vinizap/lumi/client/editor"
	"github.com/vinizap/lumi/client/store"
)

const DeletePrompt = "Delete this note permanently?"

var ErrNoSuchNote = errors.New("no such note")

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ListView draws the store's notes as numbered cards. It keeps no state of
// its own; numbers refer to the order of the last listing.
type ListView struct {
	store   *store.Store
	form    *editor.Form
	confirm Confirmer
}

func NewListView(s *store.Store, form *editor.Form, confirm Confirmer) *ListView {
	return &ListView{store: s, form: form, confirm: confirm}
}

func (l *ListView) Render(w io.Writer) {
	notes := l.store.Notes()
	if len(notes) == 0 {
		fmt.Fprintln(w, domain.NoNotesLabel)
		return
	}
	for i, n := range notes {
		fmt.Fprintf(w, "[%d] %s\n", i+1, n.Title)
		if preview := strings.TrimSpace(domain.Preview(n.Content)); preview != "" {
			for _, line := range strings.Split(preview, "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
		if len(n.Tags) > 0 {
			chips := make([]string, len(n.Tags))
			for j, t := range n.Tags {
				chips[j] = "#" + t
			}
			fmt.Fprintf(w, "    %s\n", strings.Join(chips, " "))
		}
	}
}

// note resolves a 1-based card number.
func (l *ListView) note(n int) (domain.Note, error) {
	notes := l.store.Notes()
	if n < 1 || n > len(notes) {
		return domain.Note{}, fmt.Errorf("%w: %d", ErrNoSuchNote, n)
	}
	return notes[n-1], nil
}

// Edit opens the form on card n.
func (l *ListView) Edit(n int) error {
	note, err := l.note(n)
	if err != nil {
		return err
	}
	l.form.Open(&note)
	return nil
}

// Delete removes card n once the user confirms. It reports whether a delete
// was issued.
func (l *ListView) Delete(ctx context.Context, n int) (bool, error) {
	note, err := l.note(n)
	if err != nil {
		return false, err
	}
	ok, err := l.confirm.Confirm(DeletePrompt)
	if err != nil || !ok {
		return false, err
	}
	return true, l.store.Delete(ctx, note.ID)
}
