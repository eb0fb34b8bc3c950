// client/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vinizap/lumi/client/domain"
	"github.com/vinizap/lumi/client/events"
	httpclient "github.com/vinizap/lumi/client/http"
)

// API is the slice of the notes service the store needs.
type API interface {
	ListNotes(ctx context.Context, search string, tags []string) ([]domain.Note, error)
	ListTags(ctx context.Context) ([]string, error)
	CreateNote(ctx context.Context, note domain.Note) (domain.Note, error)
	UpdateNote(ctx context.Context, note domain.Note) (domain.Note, error)
	DeleteNote(ctx context.Context, id domain.NoteID) error
}

// Gate reports whether anyone is signed in. Refreshes are skipped otherwise.
type Gate interface {
	Authenticated() bool
}

type Filter struct {
	Search string
	Tags   []string
}

func (f Filter) Selected(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Empty reports whether the listing query is the unfiltered one.
func (f Filter) Empty() bool {
	return f.Search == "" && len(f.Tags) == 0
}

// sequence orders overlapping refreshes: a response older than the newest
// applied one is dropped.
type sequence struct {
	issued  uint64
	applied uint64
}

func (s *sequence) next() uint64 {
	s.issued++
	return s.issued
}

func (s *sequence) accept(n uint64) bool {
	if n < s.applied {
		return false
	}
	s.applied = n
	return true
}

// Store caches the last server answer for the notes list and the tag set.
// It never patches them: every refresh replaces the whole list.
type Store struct {
	api  API
	gate Gate
	hub  *events.Hub
	log  zerolog.Logger

	mu      sync.RWMutex
	notes   []domain.Note
	tags    []string
	filter  Filter
	noteSeq sequence
	tagSeq  sequence
}

func New(api API, gate Gate, hub *events.Hub, log zerolog.Logger) *Store {
	return &Store{
		api:   api,
		gate:  gate,
		hub:   hub,
		log:   log.With().Str("component", "store").Logger(),
		notes: []domain.Note{},
		tags:  []string{},
	}
}

func (s *Store) Notes() []domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Note, len(s.notes))
	copy(out, s.notes)
	return out
}

func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := s.filter
	f.Tags = append([]string(nil), s.filter.Tags...)
	return f
}

// Refresh fetches the notes matching the active filter. An error answer
// from the server empties the list; a network failure leaves it as it was.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.gate.Authenticated() {
		return nil
	}

	s.mu.Lock()
	seq := s.noteSeq.next()
	search := s.filter.Search
	tags := append([]string(nil), s.filter.Tags...)
	s.mu.Unlock()

	notes, err := s.api.ListNotes(ctx, search, tags)
	if err != nil && !isAPIError(err) {
		s.log.Warn().Err(err).Msg("notes refresh failed")
		return fmt.Errorf("refresh notes: %w", err)
	}
	if notes == nil {
		notes = []domain.Note{}
	}

	s.mu.Lock()
	if !s.noteSeq.accept(seq) {
		s.mu.Unlock()
		s.log.Debug().Uint64("seq", seq).Msg("stale notes response dropped")
		return nil
	}
	s.notes = notes
	s.mu.Unlock()

	s.hub.Broadcast(events.NotesRefreshed, len(notes))
	if err != nil {
		s.log.Warn().Err(err).Msg("notes refresh rejected")
		return fmt.Errorf("refresh notes: %w", err)
	}
	return nil
}

// RefreshTags fetches the tag set on its own. When the tag endpoint is
// missing or failing (404, 5xx) the set is rebuilt from the cached notes;
// other error answers empty it, and a network failure leaves it as it was.
func (s *Store) RefreshTags(ctx context.Context) error {
	if !s.gate.Authenticated() {
		return nil
	}

	s.mu.Lock()
	seq := s.tagSeq.next()
	s.mu.Unlock()

	tags, err := s.api.ListTags(ctx)
	if err != nil && !isAPIError(err) {
		s.log.Warn().Err(err).Msg("tags refresh failed")
		return fmt.Errorf("refresh tags: %w", err)
	}
	fallback := err != nil && tagsUnavailable(httpclient.StatusOf(err))

	s.mu.Lock()
	if !s.tagSeq.accept(seq) {
		s.mu.Unlock()
		return nil
	}
	if fallback {
		tags = domain.DistinctTags(s.notes)
	}
	if tags == nil {
		tags = []string{}
	}
	s.tags = tags
	s.mu.Unlock()

	s.hub.Broadcast(events.TagsRefreshed, len(tags))
	switch {
	case fallback:
		s.log.Warn().Err(err).Msg("tag endpoint unavailable, using tags of listed notes")
	case err != nil:
		s.log.Warn().Err(err).Msg("tags refresh rejected")
		return fmt.Errorf("refresh tags: %w", err)
	}
	return nil
}

func tagsUnavailable(status int) bool {
	return status == http.StatusNotFound || status >= http.StatusInternalServerError
}

// RefreshAll reloads notes then tags, in that order.
func (s *Store) RefreshAll(ctx context.Context) error {
	notesErr := s.Refresh(ctx)
	tagsErr := s.RefreshTags(ctx)
	return errors.Join(notesErr, tagsErr)
}

func (s *Store) SetSearch(ctx context.Context, search string) error {
	s.mu.Lock()
	s.filter.Search = search
	s.mu.Unlock()
	return s.RefreshAll(ctx)
}

// ToggleTag adds tag to the selection, or removes it when already selected.
func (s *Store) ToggleTag(ctx context.Context, tag string) error {
	if tag == "" {
		return nil
	}
	s.mu.Lock()
	if s.filter.Selected(tag) {
		kept := s.filter.Tags[:0:0]
		for _, t := range s.filter.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		s.filter.Tags = kept
	} else {
		s.filter.Tags = append(s.filter.Tags, tag)
	}
	s.mu.Unlock()
	return s.RefreshAll(ctx)
}

func (s *Store) ClearTags(ctx context.Context) error {
	s.mu.Lock()
	s.filter.Tags = nil
	s.mu.Unlock()
	return s.RefreshAll(ctx)
}

// Save creates the note when it has no id and updates it otherwise. A
// refresh follows a successful call; its failure is logged, not returned,
// since the note itself was stored.
func (s *Store) Save(ctx context.Context, note domain.Note) error {
	var err error
	if note.ID == "" {
		_, err = s.api.CreateNote(ctx, note)
	} else {
		_, err = s.api.UpdateNote(ctx, note)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("id", note.ID.String()).Msg("save note failed")
		return fmt.Errorf("save note: %w", err)
	}
	s.refreshAfterMutation(ctx)
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.NoteID) error {
	if err := s.api.DeleteNote(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("id", id.String()).Msg("delete note failed")
		return fmt.Errorf("delete note: %w", err)
	}
	s.refreshAfterMutation(ctx)
	return nil
}

func (s *Store) refreshAfterMutation(ctx context.Context) {
	if err := s.RefreshAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("refresh after mutation failed")
	}
}

// Reset drops everything, for sign-out.
func (s *Store) Reset() {
	s.mu.Lock()
	s.notes = []domain.Note{}
	s.tags = []string{}
	s.filter = Filter{}
	// Responses still in flight belong to the old session.
	s.noteSeq.applied = s.noteSeq.issued + 1
	s.tagSeq.applied = s.tagSeq.issued + 1
	s.noteSeq.issued++
	s.tagSeq.issued++
	s.mu.Unlock()
	s.hub.Broadcast(events.StoreReset, 0)
}

func isAPIError(err error) bool {
	var apiErr *httpclient.APIError
	return errors.As(err, &apiErr)
}
