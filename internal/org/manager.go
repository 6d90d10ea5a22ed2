// Package org mutates an organisation's roster and keeps the roster view
// consistent with the remote system afterwards.
package org

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/fleety/fleetyctl/internal/api"
	"github.com/fleety/fleetyctl/internal/errors"
	"github.com/fleety/fleetyctl/internal/log"
)

// RosterService is the remote membership surface the manager depends on.
// *api.Client satisfies it.
type RosterService interface {
	ListOrgMemberships(ctx context.Context, orgID string) ([]api.Member, error)
	AddMembership(ctx context.Context, orgID, username string, isAdmin bool) (*api.Member, error)
	RemoveMembership(ctx context.Context, orgID, userID string) error
	UpdateMembershipRole(ctx context.Context, orgID, userID string, isAdmin bool) (*api.Member, error)
}

// RemovalRequest is the first half of a member removal. Removal only happens
// once the request is confirmed, which keeps the yes/no decision out of this
// layer and testable without a UI.
type RemovalRequest struct {
	Token    string
	OrgID    string
	UserID   string
	Username string
}

// Manager executes roster mutations for one organisation at a time and holds
// the last successfully fetched roster.
//
// Whether the caller is allowed to manage the organisation is gated upstream
// by the dashboard; the manager only rejects malformed input. Every
// successful mutation is followed by a full roster re-fetch rather than a
// local patch: concurrent admins may be mutating the same organisation, and
// replacing the view with the remote answer guarantees convergence. On any
// failure the previous roster stays in place.
type Manager struct {
	service RosterService
	logger  *log.Logger

	mu       sync.Mutex
	orgID    string
	roster   []api.Member
	pending  map[string]RemovalRequest
	fetched  bool
}

// NewManager creates a roster manager
func NewManager(service RosterService, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Manager{
		service: service,
		logger:  logger,
		pending: make(map[string]RemovalRequest),
	}
}

// Refresh replaces the roster view with a fresh fetch from the remote
// system. This is the only way roster data enters the manager.
func (m *Manager) Refresh(ctx context.Context, orgID string) error {
	if orgID == "" {
		return errors.NewOrgRequiredError()
	}

	roster, err := m.service.ListOrgMemberships(ctx, orgID)
	if err != nil {
		m.logger.WithError(err).Warn("roster refresh failed, keeping previous roster")
		return err
	}

	m.mu.Lock()
	m.orgID = orgID
	m.roster = roster
	m.fetched = true
	m.mu.Unlock()

	m.logger.Debug("roster refreshed", "org_id", orgID, "members", len(roster))
	return nil
}

// Roster returns a copy of the last successfully fetched roster
func (m *Manager) Roster() []api.Member {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]api.Member, len(m.roster))
	copy(out, m.roster)
	return out
}

// AddMember adds a user to the organisation by username.
//
// No optimistic insertion: the canonical membership id only exists once the
// remote call succeeds, so the roster is re-fetched instead of patched.
func (m *Manager) AddMember(ctx context.Context, orgID, username string, makeAdmin bool) error {
	if orgID == "" {
		return errors.NewOrgRequiredError()
	}
	if strings.TrimSpace(username) == "" {
		return errors.NewUsernameRequiredError()
	}

	if _, err := m.service.AddMembership(ctx, orgID, username, makeAdmin); err != nil {
		return err
	}

	m.logger.Info("member added", "org_id", orgID, "username", username, "admin", makeAdmin)
	return m.Refresh(ctx, orgID)
}

// RequestRemoval starts a member removal and returns a confirmation token.
// No remote call happens until the token is confirmed.
func (m *Manager) RequestRemoval(orgID string, member api.Member) (RemovalRequest, error) {
	if orgID == "" {
		return RemovalRequest{}, errors.NewOrgRequiredError()
	}
	if member.User.ID == "" {
		return RemovalRequest{}, errors.New(errors.ErrCodeMemberRequired, "member user id cannot be empty")
	}

	req := RemovalRequest{
		Token:    uuid.NewString(),
		OrgID:    orgID,
		UserID:   member.User.ID,
		Username: member.User.Username,
	}

	m.mu.Lock()
	m.pending[req.Token] = req
	m.mu.Unlock()

	return req, nil
}

// CancelRemoval discards a pending removal without touching the remote
// system. Cancelling an unknown token is a no-op.
func (m *Manager) CancelRemoval(token string) {
	m.mu.Lock()
	delete(m.pending, token)
	m.mu.Unlock()
}

// ConfirmRemoval executes a previously requested removal. The token is
// consumed whether or not the remote call succeeds; a retry starts with a
// fresh request.
func (m *Manager) ConfirmRemoval(ctx context.Context, token string) error {
	m.mu.Lock()
	req, ok := m.pending[token]
	if ok {
		delete(m.pending, token)
	}
	m.mu.Unlock()

	if !ok {
		return errors.NewConfirmationUnknownError(token)
	}

	if err := m.soleAdminGuard(req.OrgID, req.UserID); err != nil {
		return err
	}

	if err := m.service.RemoveMembership(ctx, req.OrgID, req.UserID); err != nil {
		return err
	}

	m.logger.Info("member removed", "org_id", req.OrgID, "username", req.Username)
	return m.Refresh(ctx, req.OrgID)
}

// SetAdmin grants or revokes the admin flag on a membership
func (m *Manager) SetAdmin(ctx context.Context, orgID, userID string, isAdmin bool) error {
	if orgID == "" {
		return errors.NewOrgRequiredError()
	}
	if userID == "" {
		return errors.New(errors.ErrCodeMemberRequired, "member user id cannot be empty")
	}

	if !isAdmin {
		if err := m.soleAdminGuard(orgID, userID); err != nil {
			return err
		}
	}

	if _, err := m.service.UpdateMembershipRole(ctx, orgID, userID, isAdmin); err != nil {
		return err
	}

	m.logger.Info("member role updated", "org_id", orgID, "user_id", userID, "admin", isAdmin)
	return m.Refresh(ctx, orgID)
}

// soleAdminGuard refuses to remove or demote the only admin of the
// organisation the roster was fetched for, which would strand it with no
// admin at all. Skipped when the roster is unknown or belongs to another
// organisation; the remote authority has the final word either way.
func (m *Manager) soleAdminGuard(orgID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.fetched || m.orgID != orgID {
		return nil
	}

	admins := 0
	var target *api.Member
	for i := range m.roster {
		if m.roster[i].IsOrgAdmin {
			admins++
		}
		if m.roster[i].User.ID == userID {
			target = &m.roster[i]
		}
	}

	if target != nil && target.IsOrgAdmin && admins == 1 {
		return errors.NewSoleAdminGuardError(target.User.Username)
	}
	return nil
}
