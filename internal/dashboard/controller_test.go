package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleety/fleetyctl/internal/api"
	"github.com/fleety/fleetyctl/internal/errors"
	"github.com/fleety/fleetyctl/internal/org"
	"github.com/fleety/fleetyctl/internal/scope"
	"github.com/fleety/fleetyctl/internal/session"
)

// fakeRemote implements the remote surfaces the controller and its
// components consume
type fakeRemote struct {
	authErr     error
	memberships []api.OrgMembership
	listErr     error
	roster      []api.Member
}

func (f *fakeRemote) Authenticate(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &api.AuthResponse{
		Token: "tok-1",
		User:  api.User{ID: "u1", Username: username, Email: username + "@example.com"},
	}, nil
}

func (f *fakeRemote) CreateAccount(ctx context.Context, username, email, password string) (*api.AuthResponse, error) {
	return f.Authenticate(ctx, username, password)
}

func (f *fakeRemote) ListMyMemberships(ctx context.Context) ([]api.OrgMembership, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.memberships, nil
}

func (f *fakeRemote) ListOrgMemberships(ctx context.Context, orgID string) ([]api.Member, error) {
	return f.roster, nil
}

func (f *fakeRemote) AddMembership(ctx context.Context, orgID, username string, isAdmin bool) (*api.Member, error) {
	return &api.Member{}, nil
}

func (f *fakeRemote) RemoveMembership(ctx context.Context, orgID, userID string) error {
	return nil
}

func (f *fakeRemote) UpdateMembershipRole(ctx context.Context, orgID, userID string, isAdmin bool) (*api.Member, error) {
	return &api.Member{}, nil
}

func orgMembership(orgID string, admin bool) api.OrgMembership {
	return api.OrgMembership{
		ID:           "m-" + orgID,
		IsOrgAdmin:   admin,
		Organisation: api.Organisation{ID: orgID, Name: "Org " + orgID},
	}
}

func newTestController(t *testing.T, remote *fakeRemote) *Controller {
	t.Helper()
	store := session.NewStore(remote, session.NewFileStorage(t.TempDir()), nil)
	return NewController(store, scope.NewSelector(nil), org.NewManager(remote, nil), remote, nil)
}

func TestController_InitialStateIsHome(t *testing.T) {
	ctrl := newTestController(t, &fakeRemote{})
	assert.Equal(t, ViewHome, ctrl.View())
}

func TestController_DashboardRedirectsToLoginWhenUnauthenticated(t *testing.T) {
	ctrl := newTestController(t, &fakeRemote{})

	got := ctrl.Navigate(ViewDashboard)
	assert.Equal(t, ViewLogin, got)
	assert.Equal(t, ViewLogin, ctrl.View())
}

func TestController_LoginMovesToDashboard(t *testing.T) {
	remote := &fakeRemote{memberships: []api.OrgMembership{orgMembership("A", true)}}
	ctrl := newTestController(t, remote)
	ctrl.Navigate(ViewLogin)

	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))

	assert.Equal(t, ViewDashboard, ctrl.View())
	memberships, err := ctrl.Memberships()
	require.NoError(t, err)
	assert.Len(t, memberships, 1)
}

func TestController_FailedLoginStaysOnLogin(t *testing.T) {
	remote := &fakeRemote{authErr: errors.NewBadCredentialsError(nil)}
	ctrl := newTestController(t, remote)
	ctrl.Navigate(ViewLogin)

	err := ctrl.Login(context.Background(), "bob", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsRemote(err))
	assert.Equal(t, ViewLogin, ctrl.View())
	assert.False(t, ctrl.Sessions().LoggedIn())
}

func TestController_RegisterBehavesLikeLogin(t *testing.T) {
	ctrl := newTestController(t, &fakeRemote{})
	ctrl.Navigate(ViewRegister)

	require.NoError(t, ctrl.Register(context.Background(), "carol", "carol@example.com", "secret"))
	assert.Equal(t, ViewDashboard, ctrl.View())
}

func TestController_LogoutReturnsHome(t *testing.T) {
	remote := &fakeRemote{memberships: []api.OrgMembership{orgMembership("A", true)}}
	ctrl := newTestController(t, remote)
	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))
	ctrl.SelectOrg("A")

	ctrl.Logout()

	assert.Equal(t, ViewHome, ctrl.View())
	assert.False(t, ctrl.Sessions().LoggedIn())
	assert.True(t, ctrl.ActiveScope().IsGlobal())

	// dashboard is unreachable again
	assert.Equal(t, ViewLogin, ctrl.Navigate(ViewDashboard))
}

func TestController_ScopeAndGating(t *testing.T) {
	remote := &fakeRemote{memberships: []api.OrgMembership{
		orgMembership("A", true),
		orgMembership("B", false),
	}}
	ctrl := newTestController(t, remote)
	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))

	assert.True(t, ctrl.ActiveScope().IsGlobal())
	assert.False(t, ctrl.CanManageOrg())

	ctrl.SelectOrg("A")
	assert.Equal(t, "A", ctrl.ActiveScope().OrgID())
	assert.True(t, ctrl.CanManageOrg())

	ctrl.SelectOrg("B")
	assert.False(t, ctrl.CanManageOrg(), "plain membership does not grant management")

	_, err := ctrl.OpenManageOrg(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnauthorized, errors.Code(err))
}

func TestController_OpenManageOrgLoadsRoster(t *testing.T) {
	remote := &fakeRemote{
		memberships: []api.OrgMembership{orgMembership("A", true)},
		roster: []api.Member{
			{ID: "m1", User: api.RosterUser{ID: "u1", Username: "alice", Email: "alice@example.com"}, IsOrgAdmin: true},
		},
	}
	ctrl := newTestController(t, remote)
	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))
	ctrl.SelectOrg("A")

	mgr, err := ctrl.OpenManageOrg(context.Background())
	require.NoError(t, err)
	assert.Len(t, mgr.Roster(), 1)
}

func TestController_StaleSelectionScenario(t *testing.T) {
	// memberships [{A admin}, {B member}], selection B, then A deleted
	// server-side while selection says A
	remote := &fakeRemote{memberships: []api.OrgMembership{
		orgMembership("A", true),
		orgMembership("B", false),
	}}
	ctrl := newTestController(t, remote)
	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))

	ctrl.SelectOrg("B")
	assert.Equal(t, "B", ctrl.ActiveScope().OrgID())

	ctrl.SelectOrg("A")
	remote.memberships = []api.OrgMembership{orgMembership("B", false)}
	require.NoError(t, ctrl.RefreshMemberships(context.Background()))

	active := ctrl.ActiveScope()
	assert.True(t, active.IsGlobal(), "scope falls back to global, no stale org data")
	assert.False(t, ctrl.CanManageOrg())
}

func TestController_FailedMembershipRefreshResolvesGlobal(t *testing.T) {
	remote := &fakeRemote{memberships: []api.OrgMembership{orgMembership("A", true)}}
	ctrl := newTestController(t, remote)
	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))
	ctrl.SelectOrg("A")
	assert.False(t, ctrl.ActiveScope().IsGlobal())

	remote.listErr = errors.New(errors.ErrCodeRequestFailed, "connection refused")
	require.Error(t, ctrl.RefreshMemberships(context.Background()))

	assert.True(t, ctrl.ActiveScope().IsGlobal())
	_, err := ctrl.Memberships()
	assert.True(t, errors.IsTransport(err))
}

func TestController_StartRehydratesToDashboard(t *testing.T) {
	remote := &fakeRemote{}
	dir := t.TempDir()
	storage := session.NewFileStorage(dir)

	first := session.NewStore(remote, storage, nil)
	require.NoError(t, first.Login(context.Background(), "alice", "secret"))

	// process restart
	store := session.NewStore(remote, storage, nil)
	ctrl := NewController(store, scope.NewSelector(nil), org.NewManager(remote, nil), remote, nil)
	ctrl.Start(context.Background())

	assert.Equal(t, ViewDashboard, ctrl.View())

	// empty storage starts at Home
	fresh := NewController(
		session.NewStore(remote, session.NewFileStorage(t.TempDir()), nil),
		scope.NewSelector(nil), org.NewManager(remote, nil), remote, nil)
	fresh.Start(context.Background())
	assert.Equal(t, ViewHome, fresh.View())
}
