// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/palaver-net/palaver/internal/models"
)

func comment(id int64, parent *int64) models.Comment {
	return models.Comment{ID: id, Parent: parent}
}

func parentOf(id int64) *int64 { return &id }

func TestCommentThreadLoadsOnce(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.commentsFn = func(int64) ([]models.Comment, error) {
		return []models.Comment{comment(1, nil)}, nil
	}

	thread := NewCommentThread(api, 99)
	if thread.Loaded() {
		t.Error("thread loaded before Load")
	}
	if err := thread.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := thread.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if api.callCount("Comments") != 1 {
		t.Errorf("Comments fetched %d times, want 1", api.callCount("Comments"))
	}
}

func TestCommentThreadCreateAppendsConfirmed(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.commentsFn = func(int64) ([]models.Comment, error) {
		return []models.Comment{comment(1, nil)}, nil
	}
	api.createCommentFn = func(_ int64, in *models.CommentInput) (*models.Comment, error) {
		return &models.Comment{ID: 2, Text: in.Text, Parent: in.Parent}, nil
	}

	thread := NewCommentThread(api, 99)
	if err := thread.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	created, err := thread.Create(context.Background(), &models.CommentInput{Text: "nice"})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != 2 {
		t.Errorf("created id = %d, want 2", created.ID)
	}
	if got := thread.Comments(); len(got) != 2 || got[1].ID != 2 {
		t.Errorf("comments = %+v, want appended id 2", got)
	}
	// No re-fetch after mutation.
	if api.callCount("Comments") != 1 {
		t.Errorf("Comments fetched %d times, want 1", api.callCount("Comments"))
	}
}

func TestCommentThreadReplyAttachesParent(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.commentsFn = func(int64) ([]models.Comment, error) {
		return []models.Comment{comment(1, nil)}, nil
	}
	api.createCommentFn = func(_ int64, in *models.CommentInput) (*models.Comment, error) {
		return &models.Comment{ID: 5, Text: in.Text, Parent: in.Parent}, nil
	}

	thread := NewCommentThread(api, 99)
	if err := thread.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	thread.BeginReply(1)
	created, err := thread.Create(context.Background(), &models.CommentInput{Text: "reply"})
	if err != nil {
		t.Fatal(err)
	}
	if created.Parent == nil || *created.Parent != 1 {
		t.Errorf("reply parent = %v, want 1", created.Parent)
	}

	// Panel resets after a successful create.
	if state, _ := thread.Panel(); state != PanelIdle {
		t.Errorf("panel = %v, want idle", state)
	}
}

func TestCommentThreadPanelExclusivity(t *testing.T) {
	t.Parallel()

	thread := NewCommentThread(newFakeAPI(), 99)

	thread.BeginReply(1)
	if state, target := thread.Panel(); state != PanelReplying || target != 1 {
		t.Errorf("panel = %v/%d, want replying/1", state, target)
	}

	thread.BeginEdit(2)
	if state, target := thread.Panel(); state != PanelEditing || target != 2 {
		t.Errorf("panel = %v/%d, want editing/2", state, target)
	}

	thread.BeginReply(3)
	if state, target := thread.Panel(); state != PanelReplying || target != 3 {
		t.Errorf("panel = %v/%d, want replying/3", state, target)
	}

	thread.ResetPanel()
	if state, _ := thread.Panel(); state != PanelIdle {
		t.Errorf("panel = %v, want idle", state)
	}
}

func TestCommentThreadDeleteCascades(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.commentsFn = func(int64) ([]models.Comment, error) {
		return []models.Comment{
			comment(1, nil),
			comment(2, parentOf(1)),
			comment(3, parentOf(2)), // grandchild of 1
			comment(4, nil),
		}, nil
	}
	api.deleteCommentFn = func(int64) error { return nil }

	thread := NewCommentThread(api, 99)
	if err := thread.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := thread.Delete(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	got := thread.Comments()
	if len(got) != 1 || got[0].ID != 4 {
		t.Errorf("comments after delete = %+v, want only id 4", got)
	}
}

func TestCommentThreadDeleteKeepsListOnFailure(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.commentsFn = func(int64) ([]models.Comment, error) {
		return []models.Comment{comment(1, nil), comment(2, nil)}, nil
	}
	api.deleteCommentFn = func(int64) error { return errors.New("forbidden") }

	thread := NewCommentThread(api, 99)
	if err := thread.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := thread.Delete(context.Background(), 1); err == nil {
		t.Fatal("expected delete error")
	}
	if got := thread.Comments(); len(got) != 2 {
		t.Errorf("comments = %+v, want unchanged", got)
	}
}

func TestCommentThreadToggleLikeServerTruth(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.commentsFn = func(int64) ([]models.Comment, error) {
		return []models.Comment{{ID: 1, LikesCount: 1, Liked: true}}, nil
	}
	api.toggleCommentLikeFn = func(int64) (*models.LikeResult, error) {
		return &models.LikeResult{Liked: false, LikesCount: 0}, nil
	}

	thread := NewCommentThread(api, 99)
	if err := thread.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	thread.ToggleLike(context.Background(), 1)
	got := thread.Comments()[0]
	if got.Liked || got.LikesCount != 0 {
		t.Errorf("comment = %+v, want unliked count 0", got)
	}
}

func TestPartition(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.commentsFn = func(int64) ([]models.Comment, error) {
		return []models.Comment{
			comment(1, nil),
			comment(2, nil),
			comment(3, parentOf(1)),
			comment(4, parentOf(3)), // chains to root 1
			comment(5, parentOf(2)),
			comment(6, parentOf(99)), // broken chain, dropped
		}, nil
	}

	thread := NewCommentThread(api, 99)
	if err := thread.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	groups := thread.Partition()
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].Root.ID != 1 || groups[1].Root.ID != 2 {
		t.Errorf("roots = %d, %d; want 1, 2", groups[0].Root.ID, groups[1].Root.ID)
	}
	if len(groups[0].Replies) != 2 || groups[0].Replies[0].ID != 3 || groups[0].Replies[1].ID != 4 {
		t.Errorf("root 1 replies = %+v, want ids 3, 4", groups[0].Replies)
	}
	if len(groups[1].Replies) != 1 || groups[1].Replies[0].ID != 5 {
		t.Errorf("root 2 replies = %+v, want id 5", groups[1].Replies)
	}
}

func TestPartitionDropsParentCycle(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.commentsFn = func(int64) ([]models.Comment, error) {
		return []models.Comment{
			comment(1, parentOf(2)),
			comment(2, parentOf(1)), // cycle with 1
			comment(3, nil),
			comment(4, parentOf(3)),
		}, nil
	}

	thread := NewCommentThread(api, 99)
	if err := thread.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan []ThreadGroup, 1)
	go func() { done <- thread.Partition() }()

	var groups []ThreadGroup
	select {
	case groups = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Partition did not return on a parent cycle")
	}

	if len(groups) != 1 || groups[0].Root.ID != 3 {
		t.Fatalf("groups = %+v, want only root 3", groups)
	}
	if len(groups[0].Replies) != 1 || groups[0].Replies[0].ID != 4 {
		t.Errorf("root 3 replies = %+v, want id 4", groups[0].Replies)
	}
}

func TestPartitionRecomputedAfterMutation(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.commentsFn = func(int64) ([]models.Comment, error) {
		return []models.Comment{comment(1, nil)}, nil
	}
	api.createCommentFn = func(_ int64, in *models.CommentInput) (*models.Comment, error) {
		return &models.Comment{ID: 2, Parent: in.Parent}, nil
	}

	thread := NewCommentThread(api, 99)
	if err := thread.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(thread.Partition()[0].Replies); got != 0 {
		t.Fatalf("replies before create = %d, want 0", got)
	}

	thread.BeginReply(1)
	if _, err := thread.Create(context.Background(), &models.CommentInput{Text: "r"}); err != nil {
		t.Fatal(err)
	}
	if got := len(thread.Partition()[0].Replies); got != 1 {
		t.Errorf("replies after create = %d, want 1", got)
	}
}
