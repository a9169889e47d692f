// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/palaver-net/palaver/internal/logging"
	"github.com/palaver-net/palaver/internal/models"
	"github.com/palaver-net/palaver/internal/rest"
)

// PanelState is the comment composer's mode. Reply and edit are
// mutually exclusive; entering one leaves the other.
type PanelState int

const (
	// PanelIdle means no reply or edit is in progress.
	PanelIdle PanelState = iota
	// PanelReplying means the composer targets a parent comment.
	PanelReplying
	// PanelEditing means the composer holds an existing comment's text.
	PanelEditing
)

// ThreadGroup is one root comment with the replies that chain up to it.
type ThreadGroup struct {
	Root    models.Comment
	Replies []models.Comment
}

// CommentThread holds one post's comments. The list is fetched once on
// first Load; afterwards create/edit/delete mutate the local slice from
// confirmed responses and never re-fetch.
type CommentThread struct {
	api    rest.API
	postID int64

	mu       sync.RWMutex
	loaded   bool
	comments []models.Comment

	panel  PanelState
	target int64 // comment id the panel points at
}

// NewCommentThread creates an unloaded thread for postID.
func NewCommentThread(api rest.API, postID int64) *CommentThread {
	return &CommentThread{api: api, postID: postID}
}

// Load fetches the comment list on first call; later calls are no-ops.
func (t *CommentThread) Load(ctx context.Context) error {
	t.mu.RLock()
	loaded := t.loaded
	t.mu.RUnlock()
	if loaded {
		return nil
	}

	comments, err := t.api.Comments(ctx, t.postID)
	if err != nil {
		return fmt.Errorf("load comments for post %d: %w", t.postID, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded {
		return nil
	}
	t.comments = comments
	t.loaded = true
	return nil
}

// Loaded reports whether the initial fetch has completed.
func (t *CommentThread) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// Comments returns a snapshot of the thread in fetch order.
func (t *CommentThread) Comments() []models.Comment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Comment, len(t.comments))
	copy(out, t.comments)
	return out
}

// Create posts a comment and appends the server-confirmed record
// (confirm-then-apply). When the panel was in reply mode the new
// comment carries the target as parent, and the panel resets.
func (t *CommentThread) Create(ctx context.Context, in *models.CommentInput) (*models.Comment, error) {
	t.mu.RLock()
	if t.panel == PanelReplying && in.Parent == nil {
		parent := t.target
		in.Parent = &parent
	}
	t.mu.RUnlock()

	comment, err := t.api.CreateComment(ctx, t.postID, in)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.comments = append(t.comments, *comment)
	t.panel = PanelIdle
	t.target = 0
	t.mu.Unlock()
	return comment, nil
}

// Update edits a comment and swaps in the confirmed record in place
// (confirm-then-apply). Resets the panel.
func (t *CommentThread) Update(ctx context.Context, commentID int64, in *models.CommentInput) (*models.Comment, error) {
	comment, err := t.api.UpdateComment(ctx, commentID, in)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.comments {
		if t.comments[i].ID == commentID {
			t.comments[i] = *comment
			break
		}
	}
	t.panel = PanelIdle
	t.target = 0
	return comment, nil
}

// Delete removes a comment after server confirmation, along with any
// replies whose parent chain reaches it (the backend cascades the same
// way).
func (t *CommentThread) Delete(ctx context.Context, commentID int64) error {
	if err := t.api.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	doomed := map[int64]bool{commentID: true}
	// Sweep until no new descendants are found; comment order is not
	// guaranteed to be parent-before-child.
	for changed := true; changed; {
		changed = false
		for i := range t.comments {
			c := &t.comments[i]
			if c.Parent != nil && doomed[*c.Parent] && !doomed[c.ID] {
				doomed[c.ID] = true
				changed = true
			}
		}
	}

	kept := t.comments[:0]
	for _, c := range t.comments {
		if !doomed[c.ID] {
			kept = append(kept, c)
		}
	}
	t.comments = kept
	if doomed[t.target] {
		t.panel = PanelIdle
		t.target = 0
	}
	return nil
}

// ToggleLike flips a comment like and applies the server's counters
// (server-truth); failures are swallowed.
func (t *CommentThread) ToggleLike(ctx context.Context, commentID int64) {
	result, err := t.api.ToggleCommentLike(ctx, commentID)
	if err != nil {
		logging.Debug().Err(err).Int64("comment_id", commentID).Msg("Comment like toggle failed")
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.comments {
		if t.comments[i].ID == commentID {
			t.comments[i].Liked = result.Liked
			t.comments[i].LikesCount = result.LikesCount
			return
		}
	}
}

// BeginReply points the composer at commentID as reply target, leaving
// any edit in progress.
func (t *CommentThread) BeginReply(commentID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panel = PanelReplying
	t.target = commentID
}

// BeginEdit points the composer at commentID for editing, leaving any
// reply in progress.
func (t *CommentThread) BeginEdit(commentID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panel = PanelEditing
	t.target = commentID
}

// ResetPanel returns the composer to idle.
func (t *CommentThread) ResetPanel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panel = PanelIdle
	t.target = 0
}

// Panel returns the composer state and its target comment id.
func (t *CommentThread) Panel() (PanelState, int64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.panel, t.target
}

// Partition groups the thread into roots with their replies, computed
// fresh from the current list on every call. A comment with no parent
// is a root; every other comment lands under the root its parent chain
// reaches. Replies whose chain is broken (parent missing locally) are
// dropped from the result.
func (t *CommentThread) Partition() []ThreadGroup {
	t.mu.RLock()
	defer t.mu.RUnlock()

	parents := make(map[int64]*int64, len(t.comments))
	for i := range t.comments {
		parents[t.comments[i].ID] = t.comments[i].Parent
	}

	rootOf := func(c *models.Comment) (int64, bool) {
		id := c.ID
		parent := c.Parent
		visited := map[int64]bool{id: true}
		for parent != nil {
			id = *parent
			// A parent cycle in the response would walk forever;
			// treat it like a broken chain.
			if visited[id] {
				return 0, false
			}
			visited[id] = true
			next, ok := parents[id]
			if !ok {
				return 0, false
			}
			parent = next
		}
		return id, true
	}

	groups := make([]ThreadGroup, 0)
	index := make(map[int64]int)
	for i := range t.comments {
		if t.comments[i].Parent == nil {
			index[t.comments[i].ID] = len(groups)
			groups = append(groups, ThreadGroup{Root: t.comments[i]})
		}
	}
	for i := range t.comments {
		c := &t.comments[i]
		if c.Parent == nil {
			continue
		}
		rootID, ok := rootOf(c)
		if !ok {
			continue
		}
		gi, ok := index[rootID]
		if !ok {
			continue
		}
		groups[gi].Replies = append(groups[gi].Replies, *c)
	}
	return groups
}
