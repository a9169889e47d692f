// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/palaver-net/palaver/internal/logging"
	"github.com/palaver-net/palaver/internal/models"
	"github.com/palaver-net/palaver/internal/rest"
)

// ErrNotConfirmed is returned by destructive feed operations when the
// caller has not set the confirmation flag.
var ErrNotConfirmed = errors.New("destructive operation not confirmed")

// Feed maintains the local post timeline.
//
// Pagination appends pages verbatim with no de-duplication: if the
// backend shifts entries between page fetches a post can appear twice.
// Accepted limitation; callers must not load the same page concurrently.
type Feed struct {
	api rest.API

	mu      sync.RWMutex
	posts   []models.Post
	page    int
	hasMore bool
}

// NewFeed creates an empty feed backed by api.
func NewFeed(api rest.API) *Feed {
	return &Feed{api: api, hasMore: true}
}

// Posts returns a snapshot of the current timeline.
func (f *Feed) Posts() []models.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Post, len(f.posts))
	copy(out, f.posts)
	return out
}

// Page returns the last loaded page number, 0 before any load.
func (f *Feed) Page() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.page
}

// HasMore reports whether the backend has further pages.
func (f *Feed) HasMore() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.hasMore
}

// LoadPage fetches page n. With appendPage the results are concatenated
// onto the timeline; otherwise they replace it.
func (f *Feed) LoadPage(ctx context.Context, n int, appendPage bool) error {
	page, err := f.api.Posts(ctx, n)
	if err != nil {
		return fmt.Errorf("load feed page %d: %w", n, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if appendPage {
		f.posts = append(f.posts, page.Results...)
	} else {
		f.posts = page.Results
	}
	f.page = n
	f.hasMore = page.HasNext()

	logging.Debug().Int("page", n).Int("results", len(page.Results)).
		Bool("append", appendPage).Msg("Feed page loaded")
	return nil
}

// Refresh reloads the first page, replacing the timeline.
func (f *Feed) Refresh(ctx context.Context) error {
	return f.LoadPage(ctx, 1, false)
}

// CreatePost publishes a new post and prepends the server-confirmed
// record (confirm-then-apply).
func (f *Feed) CreatePost(ctx context.Context, in *models.PostInput) (*models.Post, error) {
	post, err := f.api.CreatePost(ctx, in)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.posts = append([]models.Post{*post}, f.posts...)
	f.mu.Unlock()
	return post, nil
}

// ToggleLike flips the like on a post. The server's returned liked flag
// and count overwrite the local entry (server-truth); failures are
// swallowed so a flaky toggle never disturbs the timeline.
func (f *Feed) ToggleLike(ctx context.Context, postID int64) {
	result, err := f.api.TogglePostLike(ctx, postID)
	if err != nil {
		logging.Debug().Err(err).Int64("post_id", postID).Msg("Like toggle failed")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts[i].Liked = result.Liked
			f.posts[i].LikesCount = result.LikesCount
			return
		}
	}
}

// UpdatePost edits a post and replaces exactly the matching timeline
// entry with the confirmed record, preserving order (confirm-then-apply).
func (f *Feed) UpdatePost(ctx context.Context, postID int64, in *models.PostInput) (*models.Post, error) {
	post, err := f.api.UpdatePost(ctx, postID, in)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts[i] = *post
			break
		}
	}
	return post, nil
}

// DeletePost removes a post. The confirmed flag must be set: callers
// surface their own confirmation step and the feed refuses without it.
// On success exactly one entry is removed, order preserved
// (confirm-then-apply).
func (f *Feed) DeletePost(ctx context.Context, postID int64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := f.api.DeletePost(ctx, postID); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			break
		}
	}
	return nil
}

// AdjustCommentCount shifts a post's comment counter by delta without a
// round-trip (local-only). The count never goes below zero; the next
// feed refresh restores the server's number.
func (f *Feed) AdjustCommentCount(postID int64, delta int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts[i].CommentsCount += delta
			if f.posts[i].CommentsCount < 0 {
				f.posts[i].CommentsCount = 0
			}
			return
		}
	}
}
