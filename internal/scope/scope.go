// Package scope maps the current user's memberships plus a selection onto
// the active viewing context: the global view, or one organisation.
package scope

import (
	"sync"

	"github.com/fleety/fleetyctl/internal/api"
	"github.com/fleety/fleetyctl/internal/log"
)

// Scope is the active viewing context. The zero value is the global scope.
type Scope struct {
	membership *api.OrgMembership
}

// Global returns the global scope
func Global() Scope {
	return Scope{}
}

// Org returns a scope bound to one of the user's memberships
func Org(m api.OrgMembership) Scope {
	return Scope{membership: &m}
}

// IsGlobal reports whether this is the global scope
func (s Scope) IsGlobal() bool {
	return s.membership == nil
}

// Membership returns the active membership, or false for the global scope
func (s Scope) Membership() (api.OrgMembership, bool) {
	if s.membership == nil {
		return api.OrgMembership{}, false
	}
	return *s.membership, true
}

// OrgID returns the active organisation id, or "" for the global scope
func (s Scope) OrgID() string {
	if s.membership == nil {
		return ""
	}
	return s.membership.Organisation.ID
}

// IsAdmin reports whether the active scope grants administrative rights.
//
// Always read from the membership, never from role strings on the user: the
// same user can be admin of one organisation and a plain member of another.
// Always false for the global scope.
func (s Scope) IsAdmin() bool {
	if s.membership == nil {
		return false
	}
	return s.membership.IsOrgAdmin
}

// Resolve maps a membership list and a selected organisation id onto a
// scope.
//
// A nil selection, an empty membership list, or a failed membership query
// (represented by an empty list) all resolve to the global scope. A
// selection that matches no element of the list is stale; the second return
// is true so the caller can drop it.
func Resolve(memberships []api.OrgMembership, selection string) (Scope, bool) {
	if selection == "" || len(memberships) == 0 {
		return Global(), false
	}

	for _, m := range memberships {
		if m.Organisation.ID == selection {
			return Org(m), false
		}
	}

	return Global(), true
}

// Selector carries the user's organisation selection between refreshes.
//
// The selection is only ever an organisation id; admin status is re-derived
// from the live membership list on every resolution, so an externally
// revoked admin flag shows up on the next refresh without any invalidation
// logic here.
type Selector struct {
	logger *log.Logger

	mu        sync.Mutex
	selection string
}

// NewSelector creates a selector in the global scope
func NewSelector(logger *log.Logger) *Selector {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Selector{logger: logger}
}

// Select picks an organisation by id. An empty id selects the global view.
func (sel *Selector) Select(orgID string) {
	sel.mu.Lock()
	sel.selection = orgID
	sel.mu.Unlock()
}

// Clear returns the selector to the global view
func (sel *Selector) Clear() {
	sel.Select("")
}

// Selection returns the currently selected organisation id, or ""
func (sel *Selector) Selection() string {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	return sel.selection
}

// Resolve derives the active scope from a fresh membership list, dropping
// the selection when it no longer corresponds to any membership (e.g. the
// organisation was deleted or the user was removed from it).
func (sel *Selector) Resolve(memberships []api.OrgMembership) Scope {
	sel.mu.Lock()
	defer sel.mu.Unlock()

	scope, stale := Resolve(memberships, sel.selection)
	if stale {
		sel.logger.Debug("dropping stale organisation selection", "org_id", sel.selection)
		sel.selection = ""
	}
	return scope
}
