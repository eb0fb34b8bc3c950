package filesystem

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestCredentialFileLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	cf := NewCredentialFile(path)

	tok, err := cf.Load()
	if err != nil || tok != "" {
		t.Fatalf("Load on missing file = %q, %v", tok, err)
	}

	if err := cf.Save("abc.def"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %v, want 0600", perm)
	}

	tok, err = NewCredentialFile(path).Load()
	if err != nil || tok != "abc.def" {
		t.Fatalf("Load after Save = %q, %v", tok, err)
	}

	if err := cf.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := cf.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if tok, _ := cf.Load(); tok != "" {
		t.Fatalf("token survived Clear: %q", tok)
	}
}

func TestCredentialFileSaveEmptyClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	cf := NewCredentialFile(path)
	if err := cf.Save("x"); err != nil {
		t.Fatal(err)
	}
	if err := cf.Save(""); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still present: %v", err)
	}
}

func TestCredentialFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("token: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCredentialFile(path).Load(); err == nil {
		t.Fatal("corrupt file loaded")
	}
}

func TestDraftRoundTrip(t *testing.T) {
	in := Draft{
		Title:   "Groceries: weekly",
		Tags:    []string{"home", "to do"},
		Content: "Milk, eggs\n\n---\nnot front matter",
	}
	data, err := EncodeDraft(in)
	if err != nil {
		t.Fatalf("EncodeDraft: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\n") {
		t.Fatalf("draft does not open with front matter:\n%s", data)
	}

	out, err := DecodeDraft(data)
	if err != nil {
		t.Fatalf("DecodeDraft: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip:\n got %+v\nwant %+v", out, in)
	}
}

func TestDecodeDraftRejectsMissingFrontMatter(t *testing.T) {
	for _, in := range []string{"just text", "---\ntitle: x\nno closing marker"} {
		if _, err := DecodeDraft([]byte(in)); err == nil {
			t.Errorf("DecodeDraft(%q) accepted", in)
		}
	}
}

func TestDraftTitleWithColon(t *testing.T) {
	data, err := EncodeDraft(Draft{Title: "Meeting: 10am", Content: "agenda"})
	if err != nil {
		t.Fatal(err)
	}
	d, err := DecodeDraft(data)
	if err != nil || d.Title != "Meeting: 10am" {
		t.Fatalf("DecodeDraft = %+v, %v", d, err)
	}

	if _, err := DecodeDraft([]byte("---\ntitle: Meeting: 10am\n---\n\nagenda")); err == nil {
		t.Fatal("unquoted colon in a hand-typed title accepted")
	}
}
