// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package models

import (
	"strings"
	"time"
)

// Member represents a registered account on the social network.
//
// The backend returns two shapes for members: the full profile (own profile,
// member detail) and a compact listing form (search results, post authors,
// dialog participants). Both decode into this struct; listing responses simply
// leave Bio, BirthDate and the timestamps at their zero values.
type Member struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio,omitempty"`
	// BirthDate is a bare "YYYY-MM-DD" date or empty. Kept as a string
	// because the client never computes with it.
	BirthDate string     `json:"birth_date,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// DisplayName returns "First Last" trimmed, falling back to the username when
// both name fields are blank.
func (m *Member) DisplayName() string {
	name := strings.TrimSpace(m.FirstName + " " + m.LastName)
	if name == "" {
		return m.Username
	}
	return name
}

// FollowResult is the response of the follow and unfollow endpoints.
type FollowResult struct {
	Following bool   `json:"following"`
	Detail    string `json:"detail"`
}

// TokenGrant is the combined token-plus-profile response returned by the
// login and register endpoints.
type TokenGrant struct {
	Token  string `json:"token"`
	Member Member `json:"member"`
}
