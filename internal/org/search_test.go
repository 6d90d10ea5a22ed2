package org

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleety/fleetyctl/internal/api"
)

func rosterFixture() []api.Member {
	return []api.Member{
		{User: api.RosterUser{ID: "u1", Username: "alice", Email: "alice@acme.example"}},
		{User: api.RosterUser{ID: "u2", Username: "bob", Email: "bob@acme.example"}},
		{User: api.RosterUser{ID: "u3", Username: "carol", Email: "carol@alps.example"}},
	}
}

func TestSearch_EmptyTermReturnsRosterUnmodified(t *testing.T) {
	roster := rosterFixture()
	got := Search(roster, "")

	require.Len(t, got, 3)
	for i := range roster {
		assert.Equal(t, roster[i].User.ID, got[i].User.ID, "ordering preserved")
	}
}

func TestSearch_CaseInsensitiveUsernameMatch(t *testing.T) {
	got := Search(rosterFixture(), "ALI")

	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].User.Username)
}

func TestSearch_MatchesEmailToo(t *testing.T) {
	got := Search(rosterFixture(), "alps")

	require.Len(t, got, 1)
	assert.Equal(t, "carol", got[0].User.Username)
}

func TestSearch_StableFilterOrder(t *testing.T) {
	// "a" hits alice (username), bob (email domain), carol (username)
	got := Search(rosterFixture(), "a")

	require.Len(t, got, 3)
	assert.Equal(t, "alice", got[0].User.Username)
	assert.Equal(t, "bob", got[1].User.Username)
	assert.Equal(t, "carol", got[2].User.Username)
}

func TestSearch_NoMatches(t *testing.T) {
	assert.Empty(t, Search(rosterFixture(), "zelda"))
}
