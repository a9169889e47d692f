// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/palaver-net/palaver/internal/models"
)

// Comments lists all comments of a post. Root comments carry their direct
// replies nested; the flat list may also repeat replies at the top level
// depending on backend version, which Partition tolerates.
func (c *Client) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments/", postID)
	if err := c.call(ctx, "comments", http.MethodGet, path, nil, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment creates a comment (or a reply when in.Parent is set) on a
// post and returns the confirmed record.
func (c *Client) CreateComment(ctx context.Context, postID int64, in *models.CommentInput) (*models.Comment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var comment models.Comment
	path := fmt.Sprintf("/api/posts/%d/comments/", postID)
	if err := c.call(ctx, "comments", http.MethodPost, path, nil, in, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment edits a comment's text and returns the confirmed record.
func (c *Client) UpdateComment(ctx context.Context, id int64, in *models.CommentInput) (*models.Comment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var comment models.Comment
	path := fmt.Sprintf("/api/comments/%d/", id)
	if err := c.call(ctx, "comments", http.MethodPatch, path, nil, in, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/comments/%d/", id)
	return c.call(ctx, "comments", http.MethodDelete, path, nil, nil, nil)
}

// ToggleCommentLike toggles the current member's like on a comment.
func (c *Client) ToggleCommentLike(ctx context.Context, id int64) (*models.LikeResult, error) {
	var result models.LikeResult
	path := fmt.Sprintf("/api/comments/%d/like/", id)
	if err := c.call(ctx, "likes", http.MethodPost, path, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
