// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/palaver-net/palaver/internal/models"
)

// Member fetches one member profile by id.
func (c *Client) Member(ctx context.Context, id int64) (*models.Member, error) {
	var member models.Member
	path := fmt.Sprintf("/api/members/%d/", id)
	if err := c.call(ctx, "members", http.MethodGet, path, nil, nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateProfile partially updates the current member's profile and returns
// the updated record.
func (c *Client) UpdateProfile(ctx context.Context, update *models.ProfileUpdate) (*models.Member, error) {
	var member models.Member
	if err := c.call(ctx, "members", http.MethodPatch, "/api/members/me/", nil, update, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// SearchMembers searches members by username, first name, or last name.
// A blank query returns an empty result without a network call, matching the
// backend's behavior for empty q.
func (c *Client) SearchMembers(ctx context.Context, query string) ([]models.Member, error) {
	if query == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("q", query)
	var members []models.Member
	if err := c.call(ctx, "members", http.MethodGet, "/api/members/search/", q, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Follow creates a follow edge toward the member. The returned Following
// boolean is the server's authoritative state.
func (c *Client) Follow(ctx context.Context, id int64) (*models.FollowResult, error) {
	var result models.FollowResult
	path := fmt.Sprintf("/api/members/%d/follow/", id)
	if err := c.call(ctx, "follow", http.MethodPost, path, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Unfollow removes the follow edge toward the member.
func (c *Client) Unfollow(ctx context.Context, id int64) (*models.FollowResult, error) {
	var result models.FollowResult
	path := fmt.Sprintf("/api/members/%d/unfollow/", id)
	if err := c.call(ctx, "follow", http.MethodPost, path, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Followers lists members who follow the given member.
func (c *Client) Followers(ctx context.Context, id int64) ([]models.Member, error) {
	var members []models.Member
	path := fmt.Sprintf("/api/members/%d/followers/", id)
	if err := c.call(ctx, "follow", http.MethodGet, path, nil, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Following lists members the given member follows.
func (c *Client) Following(ctx context.Context, id int64) ([]models.Member, error) {
	var members []models.Member
	path := fmt.Sprintf("/api/members/%d/following/", id)
	if err := c.call(ctx, "follow", http.MethodGet, path, nil, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// MemberPosts fetches one page of a member's posts.
func (c *Client) MemberPosts(ctx context.Context, id int64, page int) (*models.Page[models.Post], error) {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	var result models.Page[models.Post]
	path := fmt.Sprintf("/api/members/%d/posts/", id)
	if err := c.call(ctx, "posts", http.MethodGet, path, q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
