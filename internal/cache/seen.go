// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package cache

import (
	"strconv"
	"time"
)

// SeenSet deduplicates message IDs across inbox polls so a message is
// surfaced at most once per TTL window. Backed by the LRU so memory
// stays bounded even on busy dialogs.
type SeenSet struct {
	lru *LRU[struct{}]
}

// NewSeenSet creates a deduplication set holding up to capacity IDs,
// each remembered for ttl.
func NewSeenSet(capacity int, ttl time.Duration) *SeenSet {
	return &SeenSet{lru: NewLRU[struct{}]("seen_messages", capacity, ttl)}
}

// MarkSeen records id and reports whether it had already been seen
// within the TTL window. The first call for an id returns false.
func (s *SeenSet) MarkSeen(id int64) bool {
	key := strconv.FormatInt(id, 10)

	s.lru.mu.Lock()
	defer s.lru.mu.Unlock()

	now := time.Now()
	if e, ok := s.lru.items[key]; ok {
		if !now.After(e.expiresAt) {
			s.lru.moveToFront(e)
			s.lru.hit()
			return true
		}
		s.lru.removeEntry(e)
	}

	e := &entry[struct{}]{key: key, expiresAt: now.Add(s.lru.ttl)}
	s.lru.addToFront(e)
	s.lru.items[key] = e
	for len(s.lru.items) > s.lru.capacity {
		s.lru.evictOldest()
	}

	s.lru.miss()
	return false
}

// Forget drops id from the set.
func (s *SeenSet) Forget(id int64) {
	s.lru.Remove(strconv.FormatInt(id, 10))
}

// Len returns the number of remembered IDs.
func (s *SeenSet) Len() int {
	return s.lru.Len()
}
