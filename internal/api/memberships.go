package api

import (
	"context"
	"fmt"
	"net/url"
)

// ListMembershipsResponse holds the current user's organisation memberships
type ListMembershipsResponse struct {
	Memberships []OrgMembership `json:"memberships"`
}

// ListRosterResponse holds the full roster of one organisation
type ListRosterResponse struct {
	Members []Member `json:"members"`
}

// AddMemberRequest represents a request to add a member to an organisation
type AddMemberRequest struct {
	Username   string `json:"username"`
	IsOrgAdmin bool   `json:"is_org_admin"`
}

// UpdateRoleRequest represents a membership role change
type UpdateRoleRequest struct {
	IsOrgAdmin bool `json:"is_org_admin"`
}

// RemoveMemberResponse acknowledges a removal
type RemoveMemberResponse struct {
	Success bool `json:"success"`
}

// ListMyMemberships retrieves the current user's memberships across all
// organisations. This list drives scope selection.
func (c *Client) ListMyMemberships(ctx context.Context) ([]OrgMembership, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/orgs/memberships", nil)
	if err != nil {
		return nil, err
	}

	var list ListMembershipsResponse
	if err := parseResponse(resp, &list); err != nil {
		return nil, err
	}

	return list.Memberships, nil
}

// ListOrgMemberships retrieves the roster of a single organisation
func (c *Client) ListOrgMemberships(ctx context.Context, orgID string) ([]Member, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/members", url.PathEscape(orgID))
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var list ListRosterResponse
	if err := parseResponse(resp, &list); err != nil {
		return nil, err
	}

	return list.Members, nil
}

// AddMembership adds a user to an organisation by username.
// The canonical membership id is only known once the service replies.
func (c *Client) AddMembership(ctx context.Context, orgID, username string, isAdmin bool) (*Member, error) {
	req := AddMemberRequest{
		Username:   username,
		IsOrgAdmin: isAdmin,
	}

	path := fmt.Sprintf("/api/v1/orgs/%s/members", url.PathEscape(orgID))
	resp, err := c.doRequest(ctx, "POST", path, req)
	if err != nil {
		return nil, err
	}

	var member Member
	if err := parseResponse(resp, &member); err != nil {
		return nil, err
	}

	return &member, nil
}

// RemoveMembership removes a user from an organisation
func (c *Client) RemoveMembership(ctx context.Context, orgID, userID string) error {
	path := fmt.Sprintf("/api/v1/orgs/%s/members/%s", url.PathEscape(orgID), url.PathEscape(userID))
	resp, err := c.doRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return err
	}

	var ack RemoveMemberResponse
	return parseResponse(resp, &ack)
}

// UpdateMembershipRole sets or clears the admin flag on a membership
func (c *Client) UpdateMembershipRole(ctx context.Context, orgID, userID string, isAdmin bool) (*Member, error) {
	req := UpdateRoleRequest{IsOrgAdmin: isAdmin}

	path := fmt.Sprintf("/api/v1/orgs/%s/members/%s", url.PathEscape(orgID), url.PathEscape(userID))
	resp, err := c.doRequest(ctx, "PATCH", path, req)
	if err != nil {
		return nil, err
	}

	var member Member
	if err := parseResponse(resp, &member); err != nil {
		return nil, err
	}

	return &member, nil
}
