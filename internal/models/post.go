// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package models

import "time"

// Media type values for MediaItem.MediaType.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// MediaItem is a file attached to a post. Immutable once attached.
type MediaItem struct {
	ID        int64     `json:"id"`
	File      string    `json:"file"`
	MediaType string    `json:"media_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is a feed entry with aggregated counters.
//
// Liked is a viewer-relative flag the backend may omit; the zero value (false)
// is the documented default on first load. Invariant: LikesCount >= 0 holds
// because the client only ever writes server-returned counts (see the
// server-truth update strategy in internal/sync).
type Post struct {
	ID            int64       `json:"id"`
	Author        Member      `json:"author"`
	Text          string      `json:"text"`
	Image         string      `json:"image,omitempty"`
	Media         []MediaItem `json:"media"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	LikesCount    int         `json:"likes_count"`
	CommentsCount int         `json:"comments_count"`
	Liked         bool        `json:"liked,omitempty"`
}

// LikeResult is the response of the post and comment like-toggle endpoints.
// The server is the source of truth for both fields; the client never
// increments counts locally.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}
