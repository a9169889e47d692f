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

// Posts fetches one page of the feed.
func (c *Client) Posts(ctx context.Context, page int) (*models.Page[models.Post], error) {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	var result models.Page[models.Post]
	if err := c.call(ctx, "posts", http.MethodGet, "/api/posts/", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePost creates a text post (optionally with an image URL).
// Input validation runs before any network traffic: whitespace-only text
// never produces a request.
func (c *Client) CreatePost(ctx context.Context, in *models.PostInput) (*models.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var post models.Post
	if err := c.call(ctx, "posts", http.MethodPost, "/api/posts/", nil, in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePostMultipart creates a post with attached media files. The files
// are sent as repeated "media" form parts alongside the text fields.
func (c *Client) CreatePostMultipart(ctx context.Context, in *models.PostInput, files []MediaFile) (*models.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	fields := map[string]string{
		"text":  in.Text,
		"image": in.Image,
	}
	var post models.Post
	if err := c.sendMultipart(ctx, "posts", http.MethodPost, "/api/posts/", fields, files, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost updates a post's text/image and returns the confirmed record.
func (c *Client) UpdatePost(ctx context.Context, id int64, in *models.PostInput) (*models.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var post models.Post
	path := fmt.Sprintf("/api/posts/%d/", id)
	if err := c.call(ctx, "posts", http.MethodPatch, path, nil, in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/posts/%d/", id)
	return c.call(ctx, "posts", http.MethodDelete, path, nil, nil, nil)
}

// TogglePostLike toggles the current member's like on a post and returns the
// server's authoritative liked flag and count.
func (c *Client) TogglePostLike(ctx context.Context, id int64) (*models.LikeResult, error) {
	var result models.LikeResult
	path := fmt.Sprintf("/api/posts/%d/like/", id)
	if err := c.call(ctx, "likes", http.MethodPost, path, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
