// Package dashboard composes the session store, scope resolver, and roster
// manager behind the navigation state machine that gates every view.
package dashboard

import (
	"context"
	"sync"

	"github.com/fleety/fleetyctl/internal/api"
	"github.com/fleety/fleetyctl/internal/errors"
	"github.com/fleety/fleetyctl/internal/log"
	"github.com/fleety/fleetyctl/internal/org"
	"github.com/fleety/fleetyctl/internal/scope"
	"github.com/fleety/fleetyctl/internal/session"
)

// View is a navigation state
type View int

const (
	// ViewHome is the unauthenticated landing view and the initial state
	ViewHome View = iota
	// ViewLogin is the login form
	ViewLogin
	// ViewRegister is the registration form
	ViewRegister
	// ViewDashboard is the authenticated entry point. It is never shown
	// without an active session.
	ViewDashboard
)

// String returns the view name
func (v View) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewDashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

// MembershipService lists the current user's memberships. *api.Client
// satisfies it.
type MembershipService interface {
	ListMyMemberships(ctx context.Context) ([]api.OrgMembership, error)
}

// Controller drives the dashboard.
//
// It owns the only real state machine in the client: the navigation view.
// Everything else it exposes is derived on demand from the session store and
// the latest membership refresh.
type Controller struct {
	sessions    *session.Store
	selector    *scope.Selector
	roster      *org.Manager
	memberships MembershipService
	logger      *log.Logger

	mu             sync.Mutex
	view           View
	membershipList []api.OrgMembership
	membershipErr  error
	busy           bool
}

// NewController wires the three core components together. The initial view
// is Home.
func NewController(sessions *session.Store, selector *scope.Selector, roster *org.Manager, memberships MembershipService, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Controller{
		sessions:    sessions,
		selector:    selector,
		roster:      roster,
		memberships: memberships,
		logger:      logger,
		view:        ViewHome,
	}
}

// Start rehydrates the session from durable storage. A restored session
// lands directly on the dashboard; otherwise the client starts at Home.
func (c *Controller) Start(ctx context.Context) {
	c.sessions.Rehydrate()

	if !c.sessions.LoggedIn() {
		return
	}

	c.mu.Lock()
	c.view = ViewDashboard
	c.mu.Unlock()

	if err := c.RefreshMemberships(ctx); err != nil {
		c.logger.WithError(err).Warn("initial membership refresh failed")
	}
}

// View returns the current navigation state
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Busy reports whether a remote mutation is in flight. Callers disable their
// triggering control while this is true; it is the only backpressure
// mechanism.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Navigate requests a view change. Requesting the dashboard without an
// active session redirects to Login. The view actually reached is returned.
func (c *Controller) Navigate(target View) View {
	if target == ViewDashboard && !c.sessions.LoggedIn() {
		target = ViewLogin
	}

	c.mu.Lock()
	c.view = target
	c.mu.Unlock()
	return target
}

func (c *Controller) beginMutation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return errors.New(errors.ErrCodeOperationInFlight, "another operation is still in flight")
	}
	c.busy = true
	return nil
}

func (c *Controller) endMutation() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// Login authenticates and, on success, moves to the dashboard and loads the
// membership list. On failure the navigation state is unchanged and the
// error carries the service message.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	defer c.endMutation()

	if err := c.sessions.Login(ctx, username, password); err != nil {
		return err
	}

	c.mu.Lock()
	c.view = ViewDashboard
	c.mu.Unlock()

	if err := c.RefreshMemberships(ctx); err != nil {
		c.logger.WithError(err).Warn("membership refresh after login failed")
	}
	return nil
}

// Register creates an account and behaves like Login on success
func (c *Controller) Register(ctx context.Context, username, email, password string) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	defer c.endMutation()

	if err := c.sessions.Register(ctx, username, email, password); err != nil {
		return err
	}

	c.mu.Lock()
	c.view = ViewDashboard
	c.mu.Unlock()

	if err := c.RefreshMemberships(ctx); err != nil {
		c.logger.WithError(err).Warn("membership refresh after register failed")
	}
	return nil
}

// Logout tears down the session and returns to Home. It cannot fail.
func (c *Controller) Logout() {
	c.sessions.Logout()
	c.selector.Clear()

	c.mu.Lock()
	c.view = ViewHome
	c.membershipList = nil
	c.membershipErr = nil
	c.mu.Unlock()
}

// RefreshMemberships re-fetches the user's membership list. A failed fetch
// keeps the previous list out of scope resolution (the active scope becomes
// Global) but is remembered so the UI can say why.
func (c *Controller) RefreshMemberships(ctx context.Context) error {
	list, err := c.memberships.ListMyMemberships(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.membershipList = nil
		c.membershipErr = err
		return err
	}

	c.membershipList = list
	c.membershipErr = nil
	return nil
}

// Memberships returns the last successfully fetched membership list and the
// error of the last refresh, if it failed
func (c *Controller) Memberships() ([]api.OrgMembership, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.OrgMembership, len(c.membershipList))
	copy(out, c.membershipList)
	return out, c.membershipErr
}

// SelectOrg picks the active organisation. An empty id selects the global
// view.
func (c *Controller) SelectOrg(orgID string) {
	c.selector.Select(orgID)
}

// ActiveScope derives the current scope from the latest membership list.
// Admin status is re-derived on every call, so an externally revoked flag
// shows up on the next refresh.
func (c *Controller) ActiveScope() scope.Scope {
	c.mu.Lock()
	list := c.membershipList
	err := c.membershipErr
	c.mu.Unlock()

	if err != nil {
		return scope.Global()
	}
	return c.selector.Resolve(list)
}

// CanManageOrg reports whether the active scope grants admin rights
func (c *Controller) CanManageOrg() bool {
	return c.ActiveScope().IsAdmin()
}

// OpenManageOrg loads the roster for the active organisation. It refuses
// when the active scope does not grant admin rights; the roster manager
// itself does not re-validate.
func (c *Controller) OpenManageOrg(ctx context.Context) (*org.Manager, error) {
	active := c.ActiveScope()
	if !active.IsAdmin() {
		return nil, errors.New(errors.ErrCodeUnauthorized, "managing this organisation requires admin rights").
			WithSuggestion("Ask an organisation admin to promote you")
	}

	if err := c.roster.Refresh(ctx, active.OrgID()); err != nil {
		return nil, err
	}
	return c.roster, nil
}

// Sessions exposes the underlying session store
func (c *Controller) Sessions() *session.Store {
	return c.sessions
}
