package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleety/fleetyctl/internal/errors"
)

func TestClient_TokenReadFreshPerRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(User{ID: "u1", Username: "alice", Email: "alice@example.com"})
	}))
	defer srv.Close()

	token := ""
	client := NewClient(srv.URL, func() string { return token })

	_, err := client.CurrentUser(context.Background())
	require.NoError(t, err)

	token = "tok-123"
	_, err = client.CurrentUser(context.Background())
	require.NoError(t, err)

	// logout between calls
	token = ""
	_, err = client.CurrentUser(context.Background())
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, "", seen[0], "no header without a session")
	assert.Equal(t, "Bearer tok-123", seen[1])
	assert.Equal(t, "", seen[2], "logout must be reflected immediately")
}

func TestClient_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Username != "bob" || req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "invalid credentials"})
			return
		}

		_ = json.NewEncoder(w).Encode(AuthResponse{
			Token: "tok-bob",
			User:  User{ID: "u-bob", Username: "bob", Email: "bob@example.com"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	resp, err := client.Authenticate(context.Background(), "bob", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-bob", resp.Token)
	assert.Equal(t, "bob", resp.User.Username)

	_, err = client.Authenticate(context.Background(), "bob", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsRemote(err))
	assert.Equal(t, errors.ErrCodeBadCredentials, errors.Code(err))
}

func TestClient_TransportErrorDistinguishable(t *testing.T) {
	// Closed server: the request never completes.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, nil)

	_, err := client.ListMyMemberships(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.False(t, errors.IsRemote(err))
}

func TestClient_RemoteStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode errors.ErrorCode
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeRemoteNotFound},
		{"duplicate", http.StatusConflict, errors.ErrCodeRemoteDuplicate},
		{"forbidden", http.StatusForbidden, errors.ErrCodeUnauthorized},
		{"bad request", http.StatusBadRequest, errors.ErrCodeRemoteRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "rejected"})
			}))
			defer srv.Close()

			client := NewClient(srv.URL, nil)
			_, err := client.AddMembership(context.Background(), "org-1", "alice", false)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.Code(err))
			assert.Contains(t, err.Error(), "rejected", "service message must be carried")
		})
	}
}

func TestClient_MembershipRoundTrips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /api/v1/orgs/memberships":
			_ = json.NewEncoder(w).Encode(ListMembershipsResponse{Memberships: []OrgMembership{
				{ID: "m1", IsOrgAdmin: true, Organisation: Organisation{ID: "org-1", Name: "Acme", MemberCount: 3}},
			}})
		case "GET /api/v1/orgs/org-1/members":
			_ = json.NewEncoder(w).Encode(ListRosterResponse{Members: []Member{
				{ID: "m1", User: RosterUser{ID: "u1", Username: "alice", Email: "alice@example.com"}, IsOrgAdmin: true},
			}})
		case "POST /api/v1/orgs/org-1/members":
			var req AddMemberRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			_ = json.NewEncoder(w).Encode(Member{
				ID:         "m2",
				User:       RosterUser{ID: "u2", Username: req.Username},
				IsOrgAdmin: req.IsOrgAdmin,
			})
		case "DELETE /api/v1/orgs/org-1/members/u2":
			_ = json.NewEncoder(w).Encode(RemoveMemberResponse{Success: true})
		case "PATCH /api/v1/orgs/org-1/members/u1":
			var req UpdateRoleRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			_ = json.NewEncoder(w).Encode(Member{ID: "m1", User: RosterUser{ID: "u1"}, IsOrgAdmin: req.IsOrgAdmin})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	ctx := context.Background()

	memberships, err := client.ListMyMemberships(ctx)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, "Acme", memberships[0].Organisation.Name)
	assert.Equal(t, 3, memberships[0].Organisation.MemberCount)

	roster, err := client.ListOrgMemberships(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.True(t, roster[0].IsOrgAdmin)

	added, err := client.AddMembership(ctx, "org-1", "carol", true)
	require.NoError(t, err)
	assert.Equal(t, "carol", added.User.Username)
	assert.True(t, added.IsOrgAdmin)

	require.NoError(t, client.RemoveMembership(ctx, "org-1", "u2"))

	demoted, err := client.UpdateMembershipRole(ctx, "org-1", "u1", false)
	require.NoError(t, err)
	assert.False(t, demoted.IsOrgAdmin)
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.CurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeBadResponseBody, errors.Code(err))
}
