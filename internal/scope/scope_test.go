package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleety/fleetyctl/internal/api"
)

func membership(orgID string, admin bool) api.OrgMembership {
	return api.OrgMembership{
		ID:         "m-" + orgID,
		IsOrgAdmin: admin,
		Organisation: api.Organisation{
			ID:   orgID,
			Name: "Org " + orgID,
		},
	}
}

func TestResolve(t *testing.T) {
	memberships := []api.OrgMembership{
		membership("A", true),
		membership("B", false),
	}

	tests := []struct {
		name        string
		memberships []api.OrgMembership
		selection   string
		wantGlobal  bool
		wantOrg     string
		wantStale   bool
	}{
		{
			name:        "no selection is global",
			memberships: memberships,
			selection:   "",
			wantGlobal:  true,
		},
		{
			name:        "empty membership list is global",
			memberships: nil,
			selection:   "A",
			wantGlobal:  true,
		},
		{
			name:        "matching selection binds the membership",
			memberships: memberships,
			selection:   "B",
			wantOrg:     "B",
		},
		{
			name:        "unknown selection is stale and global",
			memberships: memberships,
			selection:   "C",
			wantGlobal:  true,
			wantStale:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, stale := Resolve(tt.memberships, tt.selection)
			assert.Equal(t, tt.wantGlobal, scope.IsGlobal())
			assert.Equal(t, tt.wantStale, stale)
			if tt.wantOrg != "" {
				assert.Equal(t, tt.wantOrg, scope.OrgID())
			}
		})
	}
}

func TestScope_IsAdmin(t *testing.T) {
	assert.False(t, Global().IsAdmin())

	// admin flag comes from the membership, never from the user record
	assert.True(t, Org(membership("A", true)).IsAdmin())
	assert.False(t, Org(membership("B", false)).IsAdmin())
}

func TestScope_Membership(t *testing.T) {
	_, ok := Global().Membership()
	assert.False(t, ok)

	m, ok := Org(membership("A", true)).Membership()
	require.True(t, ok)
	assert.Equal(t, "A", m.Organisation.ID)
}

func TestSelector_ResolveDropsStaleSelection(t *testing.T) {
	sel := NewSelector(nil)

	// user selects org B, then org A disappears server-side; next refresh
	// returns only B while the selection still says A
	sel.Select("A")
	refreshed := []api.OrgMembership{membership("B", false)}

	scope := sel.Resolve(refreshed)
	assert.True(t, scope.IsGlobal(), "stale selection falls back to global")
	assert.Empty(t, sel.Selection(), "stale selection is cleared")

	// a later selection of a live org still works
	sel.Select("B")
	scope = sel.Resolve(refreshed)
	assert.Equal(t, "B", scope.OrgID())
	assert.False(t, scope.IsAdmin())
}

func TestSelector_EmptyRefreshKeepsSelection(t *testing.T) {
	sel := NewSelector(nil)
	sel.Select("A")

	// A failed or empty membership query resolves global but does not wipe
	// the selection; a transient failure should not lose the user's place.
	scope := sel.Resolve(nil)
	assert.True(t, scope.IsGlobal())
	assert.Equal(t, "A", sel.Selection())

	scope = sel.Resolve([]api.OrgMembership{membership("A", true)})
	assert.Equal(t, "A", scope.OrgID())
	assert.True(t, scope.IsAdmin())
}

func TestSelector_AdminRederivedEachResolve(t *testing.T) {
	sel := NewSelector(nil)
	sel.Select("A")

	assert.True(t, sel.Resolve([]api.OrgMembership{membership("A", true)}).IsAdmin())

	// admin revoked externally; next refresh must reflect it with no
	// explicit invalidation
	assert.False(t, sel.Resolve([]api.OrgMembership{membership("A", false)}).IsAdmin())
}
