package session

import (
	"context"
	"strings"
	"sync"

	"github.com/fleety/fleetyctl/internal/api"
	"github.com/fleety/fleetyctl/internal/errors"
	"github.com/fleety/fleetyctl/internal/log"
)

// AuthService is the remote authentication surface the store depends on.
// *api.Client satisfies it.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*api.AuthResponse, error)
	CreateAccount(ctx context.Context, username, email, password string) (*api.AuthResponse, error)
}

// Store is the single authoritative holder of the current identity and
// credential token.
//
// Token and user are set and cleared together; "logged in" is always
// recomputed from the pair and never stored on its own, so the two cannot
// drift apart. Every change is mirrored to durable storage before it becomes
// visible in memory.
type Store struct {
	auth    AuthService
	storage Storage
	logger  *log.Logger

	mu    sync.RWMutex
	user  *api.User
	token string

	// epoch increments on logout. A remote call started under an older
	// epoch must not apply its result.
	epoch uint64
}

// NewStore creates a session store backed by the given storage
func NewStore(auth AuthService, storage Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Store{
		auth:    auth,
		storage: storage,
		logger:  logger,
	}
}

// Rehydrate restores a persisted session at process start.
//
// Only a complete stored pair restores a session; a lone token or lone
// identity counts as no session. Malformed stored data is treated as absence,
// never as a startup failure.
func (s *Store) Rehydrate() {
	token, err := s.storage.LoadToken()
	if err != nil {
		s.logger.WithError(err).Warn("ignoring unreadable stored token")
		token = ""
	}

	user, err := s.storage.LoadUser()
	if err != nil {
		s.logger.WithError(err).Warn("ignoring unreadable stored identity")
		user = nil
	}

	if token == "" || user == nil {
		return
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	s.logger.Debug("session restored", "username", user.Username)
}

// Login authenticates and establishes a session.
// On failure the store is left exactly as it was.
func (s *Store) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" {
		return errors.NewUsernameRequiredError()
	}
	if password == "" {
		return errors.New(errors.ErrCodePasswordRequired, "password cannot be empty")
	}

	epoch := s.currentEpoch()

	resp, err := s.auth.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}

	return s.establish(epoch, resp)
}

// Register creates an account and, on success, behaves exactly like a login
// with the newly created identity.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	if strings.TrimSpace(username) == "" {
		return errors.NewUsernameRequiredError()
	}
	if strings.TrimSpace(email) == "" {
		return errors.New(errors.ErrCodeEmailRequired, "email cannot be empty")
	}
	if password == "" {
		return errors.New(errors.ErrCodePasswordRequired, "password cannot be empty")
	}

	epoch := s.currentEpoch()

	resp, err := s.auth.CreateAccount(ctx, username, email, password)
	if err != nil {
		return err
	}

	return s.establish(epoch, resp)
}

// establish commits an authentication result, unless the session was torn
// down while the call was in flight.
func (s *Store) establish(epoch uint64, resp *api.AuthResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		s.logger.Debug("discarding authentication result from a torn-down session")
		return errors.New(errors.ErrCodeStaleCallback, "session ended while the call was in flight")
	}

	// Persist first: if the mirror fails the in-memory state stays in its
	// prior valid state.
	user := resp.User
	if err := s.storage.SaveToken(resp.Token); err != nil {
		return err
	}
	if err := s.storage.SaveUser(&user); err != nil {
		return err
	}

	s.token = resp.Token
	s.user = &user

	s.logger.Info("session established", "username", user.Username)
	return nil
}

// Logout clears the session and all persisted session data unconditionally.
// It never fails; storage trouble is logged and the in-memory session is
// cleared regardless.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.epoch++
	s.mu.Unlock()

	if err := s.storage.RemoveToken(); err != nil {
		s.logger.WithError(err).Warn("failed to remove stored token")
	}
	if err := s.storage.RemoveUser(); err != nil {
		s.logger.WithError(err).Warn("failed to remove stored identity")
	}

	s.logger.Info("logged out")
}

// UpdateUser merges a partial identity update into the current user.
// No-op when no session is active. The token is never touched.
func (s *Store) UpdateUser(update api.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.token == "" {
		return nil
	}

	merged := *s.user
	if update.FirstName != nil {
		merged.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		merged.LastName = *update.LastName
	}
	if update.PhoneNumber != nil {
		merged.PhoneNumber = *update.PhoneNumber
	}
	if update.ProfileImage != nil {
		merged.ProfileImage = *update.ProfileImage
	}

	if err := s.storage.SaveUser(&merged); err != nil {
		return err
	}

	s.user = &merged
	return nil
}

// ReplaceUser swaps in a fresh identity from the remote service, e.g. after
// a profile fetch. No-op when no session is active.
func (s *Store) ReplaceUser(user *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.token == "" || user == nil {
		return nil
	}

	if err := s.storage.SaveUser(user); err != nil {
		return err
	}

	u := *user
	s.user = &u
	return nil
}

// LoggedIn reports whether a session is active. Always derived from the
// (token, user) pair.
func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// User returns a copy of the current identity, or nil without a session
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current credential token, or "" without a session
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// TokenSource exposes the store as an api.TokenSource so every remote call
// reads the token fresh rather than caching it per call.
func (s *Store) TokenSource() api.TokenSource {
	return s.Token
}

func (s *Store) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}
