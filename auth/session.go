// client/auth/session.go
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vinizap/lumi/client/domain"
	"github.com/vinizap/lumi/client/events"
)

// CredentialStore is the only place the bearer token is persisted.
type CredentialStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Profiler fetches the profile of whoever the current token belongs to.
type Profiler interface {
	Me(ctx context.Context) (domain.User, error)
}

// Session is the client's belief about who is signed in. It owns the
// credential and hands it to the transport through Token.
type Session struct {
	store CredentialStore
	api   Profiler
	hub   *events.Hub
	log   zerolog.Logger

	mu    sync.RWMutex
	token string
	user  *domain.User

	bootOnce sync.Once
	bootErr  error
}

func NewSession(store CredentialStore, api Profiler, hub *events.Hub, log zerolog.Logger) *Session {
	return &Session{
		store: store,
		api:   api,
		hub:   hub,
		log:   log.With().Str("component", "session").Logger(),
	}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok
}

// Bootstrap validates a stored credential against the profile endpoint.
// Any failure drops the credential and leaves the session signed out. Only
// the first call does work; later calls return the first outcome.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.bootOnce.Do(func() {
		s.bootErr = s.bootstrap(ctx)
	})
	return s.bootErr
}

func (s *Session) bootstrap(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("stored credential unreadable, signing out")
		s.signOut()
		return fmt.Errorf("load credential: %w", err)
	}
	if token == "" {
		s.log.Debug().Msg("no stored credential")
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored credential rejected, signing out")
		s.signOut()
		return fmt.Errorf("validate credential: %w", err)
	}

	s.setUser(user)
	s.log.Info().Str("email", user.Email).Msg("session restored")
	return nil
}

// Activate persists a freshly issued credential and loads its profile.
func (s *Session) Activate(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("activate: empty credential")
	}
	if err := s.store.Save(token); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("profile fetch after sign-in failed")
		s.signOut()
		return fmt.Errorf("fetch profile: %w", err)
	}

	s.setUser(user)
	s.log.Info().Str("email", user.Email).Msg("signed in")
	return nil
}

func (s *Session) Logout() error {
	err := s.signOut()
	s.log.Info().Msg("signed out")
	return err
}

func (s *Session) setUser(u domain.User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.hub.Broadcast(events.SessionStarted, 0)
}

func (s *Session) signOut() error {
	s.mu.Lock()
	wasSignedIn := s.user != nil
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	err := s.store.Clear()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to clear stored credential")
	}
	if wasSignedIn {
		s.hub.Broadcast(events.SessionEnded, 0)
	}
	return err
}
