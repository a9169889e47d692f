// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package rest

import (
	"context"
	"net/http"

	"github.com/palaver-net/palaver/internal/models"
)

// Login authenticates an existing member and returns the token plus profile.
// The client does not install the token itself; the session manager persists
// it first (see session.Manager.Login).
func (c *Client) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenGrant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var grant models.TokenGrant
	if err := c.call(ctx, "auth", http.MethodPost, "/api/auth/login/", nil, req, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Register creates a new account and returns the token plus profile.
func (c *Client) Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenGrant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var grant models.TokenGrant
	if err := c.call(ctx, "auth", http.MethodPost, "/api/auth/register/", nil, req, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Logout revokes the current token on the backend. Local cleanup is the
// session manager's job and proceeds even when this call fails.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, "auth", http.MethodPost, "/api/auth/logout/", nil, nil, nil)
}

// CurrentMember fetches the profile of the authenticated member.
func (c *Client) CurrentMember(ctx context.Context) (*models.Member, error) {
	var member models.Member
	if err := c.call(ctx, "auth", http.MethodGet, "/api/auth/me/", nil, nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}
