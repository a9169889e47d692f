// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package models

import "time"

// Comment is a comment on a post. Comments form a two-level tree: root
// comments (Parent == nil) and replies (Parent == <root id>). The wire format
// permits deeper chains; see sync.CommentThread.Partition for how the client
// flattens them.
type Comment struct {
	ID         int64     `json:"id"`
	Post       int64     `json:"post"`
	Author     Member    `json:"author"`
	Text       string    `json:"text"`
	Parent     *int64    `json:"parent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	LikesCount int       `json:"likes_count"`
	Liked      bool      `json:"liked,omitempty"`
	// Replies is populated on list responses for root comments only.
	Replies []Comment `json:"replies,omitempty"`
}

// IsRoot reports whether the comment is a top-level comment.
func (c *Comment) IsRoot() bool {
	return c.Parent == nil
}
