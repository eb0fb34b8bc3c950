// client/editor/external.go
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/vinizap/lumi/client/filesystem"
)

const defaultEditor = "vi"

// ErrBadDraft means the edited draft could not be read back. The form keeps
// the text so the next Edit reopens it as the user left it.
var ErrBadDraft = errors.New("draft could not be read")

// Launcher runs an editor program on path and waits for it to exit.
type Launcher func(ctx context.Context, path string) error

// External round-trips a Form through a draft file opened in the user's
// editor.
type External struct {
	Dir    string
	Launch Launcher
	log    zerolog.Logger
}

func NewExternal(dir string, log zerolog.Logger) *External {
	return &External{
		Dir:    dir,
		Launch: runEditor,
		log:    log.With().Str("component", "editor").Logger(),
	}
}

func editorCommand() string {
	for _, k := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return defaultEditor
}

func runEditor(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", editorCommand()+` "$1"`, "lumi-editor", path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Edit writes the form out as a draft, lets the user change it and loads
// the result back. Tags from the draft go through the same sanitising and
// de-duplication as typed input. The form fields are left untouched on
// error.
func (e *External) Edit(ctx context.Context, f *Form) error {
	if err := os.MkdirAll(e.Dir, 0o700); err != nil {
		return fmt.Errorf("create draft dir: %w", err)
	}
	tmp, err := os.CreateTemp(e.Dir, "note-*.md")
	if err != nil {
		return fmt.Errorf("create draft: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	data := f.draft
	if data == nil {
		data, err = filesystem.EncodeDraft(filesystem.Draft{Title: f.Title, Tags: f.Tags, Content: f.Content})
		if err != nil {
			return fmt.Errorf("write draft: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}

	e.log.Debug().Str("path", filepath.Base(path)).Msg("opening editor")
	if err := e.Launch(ctx, path); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read draft: %w", err)
	}
	edited, err := filesystem.DecodeDraft(raw)
	if err != nil {
		f.draft = raw
		return fmt.Errorf("%w: %w", ErrBadDraft, err)
	}
	f.draft = nil
	apply(f, edited)
	return nil
}

func apply(f *Form, d filesystem.Draft) {
	f.Title = d.Title
	f.Content = d.Content
	f.Tags = []string{}
	for _, t := range d.Tags {
		f.SetTagInput(t)
		// Repeats collapse into one tag.
		_ = f.AddTag()
	}
}
