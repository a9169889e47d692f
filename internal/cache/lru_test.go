// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/palaver-net/palaver/internal/models"
)

func TestLRUBasicOperations(t *testing.T) {
	t.Parallel()

	c := NewLRU[models.Member]("test_basic", 10, time.Minute)

	if _, ok := c.Get("1"); ok {
		t.Error("Get on empty cache returned ok")
	}

	c.Add("1", models.Member{ID: 1, Username: "alice"})
	member, ok := c.Get("1")
	if !ok {
		t.Fatal("Get after Add returned !ok")
	}
	if member.Username != "alice" {
		t.Errorf("Username = %q, want alice", member.Username)
	}

	c.Add("1", models.Member{ID: 1, Username: "alice2"})
	member, _ = c.Get("1")
	if member.Username != "alice2" {
		t.Errorf("Username after update = %q, want alice2", member.Username)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	if !c.Remove("1") {
		t.Error("Remove returned false for present key")
	}
	if c.Remove("1") {
		t.Error("Remove returned true for absent key")
	}
}

func TestLRUEvictsOldest(t *testing.T) {
	t.Parallel()

	c := NewLRU[int]("test_evict", 3, time.Minute)
	for i := 1; i <= 3; i++ {
		c.Add(fmt.Sprintf("%d", i), i)
	}

	// Touch "1" so "2" becomes the eviction candidate.
	if _, ok := c.Get("1"); !ok {
		t.Fatal("key 1 missing")
	}

	c.Add("4", 4)
	if c.Contains("2") {
		t.Error("key 2 should have been evicted")
	}
	for _, key := range []string{"1", "3", "4"} {
		if !c.Contains(key) {
			t.Errorf("key %s should survive eviction", key)
		}
	}
}

func TestLRUExpiry(t *testing.T) {
	t.Parallel()

	c := NewLRU[string]("test_expiry", 10, 20*time.Millisecond)
	c.Add("k", "v")
	if !c.Contains("k") {
		t.Fatal("entry missing before TTL")
	}

	time.Sleep(40 * time.Millisecond)
	if c.Contains("k") {
		t.Error("Contains = true after TTL")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Get = ok after TTL")
	}
}

func TestLRUStats(t *testing.T) {
	t.Parallel()

	c := NewLRU[int]("test_stats", 10, time.Minute)
	c.Add("a", 1)
	c.Get("a")
	c.Get("missing")
	c.Get("also-missing")

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 2 || size != 1 {
		t.Errorf("Stats = (%d, %d, %d), want (1, 2, 1)", hits, misses, size)
	}
}

func TestLRUClear(t *testing.T) {
	t.Parallel()

	c := NewLRU[int]("test_clear", 10, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
	c.Add("c", 3)
	if !c.Contains("c") {
		t.Error("cache unusable after Clear")
	}
}

func TestSeenSetDeduplicates(t *testing.T) {
	t.Parallel()

	s := NewSeenSet(100, time.Minute)
	if s.MarkSeen(42) {
		t.Error("first MarkSeen returned true")
	}
	if !s.MarkSeen(42) {
		t.Error("second MarkSeen returned false")
	}
	if s.MarkSeen(43) {
		t.Error("MarkSeen for distinct id returned true")
	}

	s.Forget(42)
	if s.MarkSeen(42) {
		t.Error("MarkSeen after Forget returned true")
	}
}

func TestSeenSetExpiry(t *testing.T) {
	t.Parallel()

	s := NewSeenSet(100, 20*time.Millisecond)
	s.MarkSeen(1)
	time.Sleep(40 * time.Millisecond)
	if s.MarkSeen(1) {
		t.Error("MarkSeen after TTL returned true")
	}
}

func TestSeenSetBoundedCapacity(t *testing.T) {
	t.Parallel()

	s := NewSeenSet(5, time.Minute)
	for i := int64(0); i < 20; i++ {
		s.MarkSeen(i)
	}
	if s.Len() > 5 {
		t.Errorf("Len = %d, want <= 5", s.Len())
	}
}
