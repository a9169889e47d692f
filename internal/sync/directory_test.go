// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package sync

import (
	"context"
	"testing"
	"time"

	"github.com/palaver-net/palaver/internal/models"
)

func TestDirectoryCachesMemberLookups(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.memberFn = func(id int64) (*models.Member, error) {
		return &models.Member{ID: id, Username: "alice"}, nil
	}

	dir := NewDirectory(api, 16, time.Minute)
	for i := 0; i < 3; i++ {
		member, err := dir.Member(context.Background(), 7)
		if err != nil {
			t.Fatal(err)
		}
		if member.Username != "alice" {
			t.Errorf("username = %q, want alice", member.Username)
		}
	}
	if api.callCount("Member") != 1 {
		t.Errorf("Member calls = %d, want 1", api.callCount("Member"))
	}
}

func TestDirectoryInvalidateForcesRefetch(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.memberFn = func(id int64) (*models.Member, error) {
		return &models.Member{ID: id}, nil
	}

	dir := NewDirectory(api, 16, time.Minute)
	if _, err := dir.Member(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	dir.Invalidate(7)
	if _, err := dir.Member(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if api.callCount("Member") != 2 {
		t.Errorf("Member calls = %d, want 2 after invalidate", api.callCount("Member"))
	}
}

func TestDirectorySearchPrimesCache(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.searchMembersFn = func(query string) ([]models.Member, error) {
		return []models.Member{{ID: 1, Username: "ann"}, {ID: 2, Username: "bob"}}, nil
	}
	api.memberFn = func(id int64) (*models.Member, error) {
		t.Fatal("Member should be served from cache after Search")
		return nil, nil
	}

	dir := NewDirectory(api, 16, time.Minute)
	results, err := dir.Search(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	member, err := dir.Member(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if member.Username != "bob" {
		t.Errorf("username = %q, want bob", member.Username)
	}
}
