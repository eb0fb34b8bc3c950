package editor

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/vinizap/lumi/client/domain"
	"github.com/vinizap/lumi/client/filesystem"
)

type recordingSaver struct {
	saved []domain.Note
	err   error
}

func (r *recordingSaver) Save(_ context.Context, n domain.Note) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, n)
	return nil
}

func TestBlankTitleNeverSaves(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		saver := &recordingSaver{}
		f := NewForm(saver)
		f.Open(nil)
		f.Title = title
		f.Content = "body"

		err := f.Submit(context.Background())
		if !errors.Is(err, domain.ErrEmptyTitle) {
			t.Fatalf("Submit(%q) = %v", title, err)
		}
		if len(saver.saved) != 0 {
			t.Fatalf("Submit(%q) saved %+v", title, saver.saved)
		}
		if !f.IsOpen() || !errors.Is(f.Err, domain.ErrEmptyTitle) {
			t.Fatalf("form state after rejected submit: open=%v err=%v", f.IsOpen(), f.Err)
		}
	}
}

func TestLongTitleRejected(t *testing.T) {
	saver := &recordingSaver{}
	f := NewForm(saver)
	f.Open(nil)
	f.Title = strings.Repeat("x", domain.MaxTitleLen+1)
	if err := f.Submit(context.Background()); !errors.Is(err, domain.ErrTitleTooLong) {
		t.Fatalf("Submit = %v", err)
	}
	if len(saver.saved) != 0 {
		t.Fatal("over-long title was saved")
	}
}

func TestSubmitCreateAndUpdate(t *testing.T) {
	saver := &recordingSaver{}
	f := NewForm(saver)
	ctx := context.Background()

	f.Open(nil)
	f.Title = "  Groceries "
	f.Content = "\nMilk, eggs\n"
	f.SetTagInput("home")
	if err := f.AddTag(); err != nil {
		t.Fatal(err)
	}
	if err := f.Submit(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.IsOpen() {
		t.Fatal("form still open after save")
	}
	got := saver.saved[0]
	if got.ID != "" || got.Title != "Groceries" || got.Content != "Milk, eggs" || len(got.Tags) != 1 {
		t.Fatalf("created = %+v", got)
	}

	f.Open(&domain.Note{ID: "7", Title: "Old", Tags: []string{"a"}})
	if !f.Editing() {
		t.Fatal("form opened on a note is not editing")
	}
	f.Title = "New"
	if err := f.Submit(ctx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := saver.saved[1]; got.ID != "7" || got.Title != "New" {
		t.Fatalf("updated = %+v", got)
	}
}

func TestSubmitFailureKeepsFormOpen(t *testing.T) {
	boom := errors.New("boom")
	f := NewForm(&recordingSaver{err: boom})
	f.Open(nil)
	f.Title = "x"
	if err := f.Submit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Submit = %v", err)
	}
	if !f.IsOpen() || !errors.Is(f.Err, boom) {
		t.Fatalf("open=%v err=%v", f.IsOpen(), f.Err)
	}
}

func TestDuplicateTagKeptOnce(t *testing.T) {
	f := NewForm(&recordingSaver{})
	f.Open(nil)

	f.SetTagInput("Work!")
	if f.TagInput != "work" {
		t.Fatalf("TagInput = %q", f.TagInput)
	}
	if err := f.AddTag(); err != nil {
		t.Fatal(err)
	}
	f.SetTagInput("work")
	if err := f.AddTag(); !errors.Is(err, domain.ErrDuplicateTag) {
		t.Fatalf("second AddTag = %v", err)
	}
	if f.TagInput != "" {
		t.Fatalf("input not cleared: %q", f.TagInput)
	}
	if len(f.Tags) != 1 || f.Tags[0] != "work" {
		t.Fatalf("Tags = %v", f.Tags)
	}

	if err := f.AddTag(); err != nil || len(f.Tags) != 1 {
		t.Fatalf("empty AddTag = %v, tags %v", err, f.Tags)
	}
}

func TestOpenResetsState(t *testing.T) {
	f := NewForm(&recordingSaver{})
	f.Open(&domain.Note{ID: "1", Title: "a", Tags: []string{"x"}})
	f.TagInput = "pending"
	f.Err = errors.New("old")

	f.Open(nil)
	if f.Editing() || f.Title != "" || len(f.Tags) != 0 || f.TagInput != "" || f.Err != nil {
		t.Fatalf("form not reset: %+v", f)
	}
}

func TestOpenCopiesTags(t *testing.T) {
	note := domain.Note{ID: "1", Title: "a", Tags: []string{"x", "y"}}
	f := NewForm(&recordingSaver{})
	f.Open(&note)
	f.RemoveTag("x")
	if note.Tags[0] != "x" {
		t.Fatalf("editing mutated the source note: %v", note.Tags)
	}
	if len(f.Tags) != 1 || f.Tags[0] != "y" {
		t.Fatalf("Tags = %v", f.Tags)
	}
}

func TestSuggestions(t *testing.T) {
	f := NewForm(&recordingSaver{})
	f.Open(&domain.Note{ID: "1", Title: "a", Tags: []string{"home"}})
	got := f.Suggestions([]string{"home", "work", "ideas"})
	if len(got) != 2 || got[0] != "work" || got[1] != "ideas" {
		t.Fatalf("Suggestions = %v", got)
	}
}

func readDraft(path string) (filesystem.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return filesystem.Draft{}, err
	}
	return filesystem.DecodeDraft(data)
}

func writeDraft(path string, d filesystem.Draft) error {
	data, err := filesystem.EncodeDraft(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func TestExternalEditRoundTrip(t *testing.T) {
	f := NewForm(&recordingSaver{})
	f.Open(&domain.Note{ID: "1", Title: "Before", Content: "old", Tags: []string{"keep"}})

	ext := NewExternal(t.TempDir(), zerolog.Nop())
	ext.Launch = func(_ context.Context, path string) error {
		d, err := readDraft(path)
		if err != nil {
			return err
		}
		if d.Title != "Before" || d.Content != "old" {
			t.Errorf("draft handed to editor = %+v", d)
		}
		d.Title = "After"
		d.Content = "new body"
		d.Tags = []string{"Keep", "keep", "Big Idea!"}
		return writeDraft(path, d)
	}

	if err := ext.Edit(context.Background(), f); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if f.Title != "After" || f.Content != "new body" {
		t.Fatalf("form = %+v", f)
	}
	if len(f.Tags) != 2 || f.Tags[0] != "keep" || f.Tags[1] != "big idea" {
		t.Fatalf("Tags = %v", f.Tags)
	}
	if !f.Editing() {
		t.Fatal("edit lost the note id")
	}

	entries, _ := os.ReadDir(ext.Dir)
	if len(entries) != 0 {
		t.Fatalf("draft left behind: %v", entries)
	}
}

func TestExternalEditFailureLeavesForm(t *testing.T) {
	f := NewForm(&recordingSaver{})
	f.Open(nil)
	f.Title = "kept"

	ext := NewExternal(t.TempDir(), zerolog.Nop())
	ext.Launch = func(context.Context, string) error { return errors.New("exit status 1") }
	if err := ext.Edit(context.Background(), f); err == nil {
		t.Fatal("editor failure not reported")
	}
	if f.Title != "kept" {
		t.Fatalf("Title = %q", f.Title)
	}
}

func TestBadDraftIsReopenedAsTyped(t *testing.T) {
	const typed = "---\ntitle: Meeting: 10am\ntags: []\n---\n\nlong body the user typed"

	f := NewForm(&recordingSaver{})
	f.Open(nil)
	f.Title = "Before"

	ext := NewExternal(t.TempDir(), zerolog.Nop())
	launches := 0
	ext.Launch = func(_ context.Context, path string) error {
		launches++
		if launches == 1 {
			return os.WriteFile(path, []byte(typed), 0o600)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if string(got) != typed {
			t.Errorf("second launch saw %q", got)
		}
		fixed := strings.Replace(string(got), "Meeting: 10am", `"Meeting: 10am"`, 1)
		return os.WriteFile(path, []byte(fixed), 0o600)
	}

	err := ext.Edit(context.Background(), f)
	if !errors.Is(err, ErrBadDraft) {
		t.Fatalf("first Edit = %v", err)
	}
	if f.Title != "Before" {
		t.Fatalf("bad draft changed the form: %+v", f)
	}

	if err := ext.Edit(context.Background(), f); err != nil {
		t.Fatalf("second Edit: %v", err)
	}
	if f.Title != "Meeting: 10am" || f.Content != "long body the user typed" {
		t.Fatalf("form = %+v", f)
	}
	if f.draft != nil {
		t.Fatal("pending draft kept after a good read")
	}
}

func TestOpenDropsPendingDraft(t *testing.T) {
	f := NewForm(&recordingSaver{})
	f.Open(nil)
	f.draft = []byte("broken")
	f.Open(nil)
	if f.draft != nil {
		t.Fatal("reopened form kept the old draft")
	}
}
