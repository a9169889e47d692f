// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/palaver-net/palaver/internal/models"
	"github.com/palaver-net/palaver/internal/rest"
)

// FollowSet tracks which members the signed-in member follows, scoped
// to one view. Each screen showing follow buttons owns its own set;
// there is deliberately no shared follow cache, so two views can be
// momentarily out of step until each reloads.
type FollowSet struct {
	api rest.API

	mu        sync.RWMutex
	following map[int64]bool
	// deltas accumulates follower-count changes per target member since
	// Load, for display next to the server's stale count.
	deltas map[int64]int
}

// NewFollowSet creates an empty set.
func NewFollowSet(api rest.API) *FollowSet {
	return &FollowSet{
		api:       api,
		following: make(map[int64]bool),
		deltas:    make(map[int64]int),
	}
}

// Load replaces the set with memberID's current following list.
func (f *FollowSet) Load(ctx context.Context, memberID int64) error {
	members, err := f.api.Following(ctx, memberID)
	if err != nil {
		return fmt.Errorf("load following for member %d: %w", memberID, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.following = make(map[int64]bool, len(members))
	for i := range members {
		f.following[members[i].ID] = true
	}
	f.deltas = make(map[int64]int)
	return nil
}

// Contains reports whether targetID is currently followed.
func (f *FollowSet) Contains(targetID int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.following[targetID]
}

// Len returns the number of followed members.
func (f *FollowSet) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.following)
}

// FollowerDelta returns the local follower-count adjustment for
// targetID since Load: +1 after following, -1 after unfollowing.
func (f *FollowSet) FollowerDelta(targetID int64) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.deltas[targetID]
}

// Toggle follows or unfollows targetID based on the set's current view,
// then applies the server's returned following flag verbatim rather
// than assuming the request meant what it guessed (server-truth). The
// follower delta moves only when membership actually changed.
func (f *FollowSet) Toggle(ctx context.Context, targetID int64) (bool, error) {
	f.mu.RLock()
	wasFollowing := f.following[targetID]
	f.mu.RUnlock()

	var (
		result *models.FollowResult
		err    error
	)
	if wasFollowing {
		result, err = f.api.Unfollow(ctx, targetID)
	} else {
		result, err = f.api.Follow(ctx, targetID)
	}
	if err != nil {
		return wasFollowing, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if result.Following {
		if !f.following[targetID] {
			f.following[targetID] = true
			f.deltas[targetID]++
		}
	} else if f.following[targetID] {
		delete(f.following, targetID)
		f.deltas[targetID]--
	}
	return result.Following, nil
}
