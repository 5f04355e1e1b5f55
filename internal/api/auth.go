package api

import (
	"context"
	"errors"
)

// User is the authenticated account.
type User struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// AuthResponse is returned by the login and refresh endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var errEmptyToken = errors.New("auth response carried no token")

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Post(ctx, "auth/login", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errEmptyToken
	}
	return &resp, nil
}

// RefreshToken trades the current token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Post(ctx, "auth/refresh", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errEmptyToken
	}
	return &resp, nil
}

// Logout revokes the current token on the backend.
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, "auth/logout", nil, nil)
}

// Me returns the account the current token belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.Get(ctx, "auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
