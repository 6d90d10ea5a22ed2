package api

import (
	"context"

	"github.com/fleety/fleetyctl/internal/errors"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents an account creation request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse pairs a credential token with the authenticated identity
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Authenticate exchanges credentials for a token and identity.
// Bad credentials surface as a remote error with the service message.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*AuthResponse, error) {
	req := LoginRequest{
		Username: username,
		Password: password,
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/auth/login", req)
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	if err := parseResponse(resp, &authResp); err != nil {
		if errors.Code(err) == errors.ErrCodeUnauthorized {
			return nil, errors.NewBadCredentialsError(err)
		}
		return nil, err
	}

	return &authResp, nil
}

// CreateAccount registers a new user. A successful creation behaves like a
// login with the new identity: the response carries a usable token.
func (c *Client) CreateAccount(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	req := RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/auth/register", req)
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	if err := parseResponse(resp, &authResp); err != nil {
		return nil, err
	}

	return &authResp, nil
}

// CurrentUser retrieves the authenticated user's full profile
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/users/me", nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := parseResponse(resp, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// ProfileUpdate is a partial identity update. Nil fields are left untouched
// by the service.
type ProfileUpdate struct {
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// UpdateProfile applies a partial profile update and returns the resulting
// identity as the service sees it
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	resp, err := c.doRequest(ctx, "PATCH", "/api/v1/users/me", update)
	if err != nil {
		return nil, err
	}

	var user User
	if err := parseResponse(resp, &user); err != nil {
		return nil, err
	}

	return &user, nil
}
