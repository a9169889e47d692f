// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package sync

import (
	"context"
	"net/http"
	"sync"

	"github.com/palaver-net/palaver/internal/models"
	"github.com/palaver-net/palaver/internal/rest"
)

// authErr mimics the backend rejecting the token.
func authErr() error {
	return &rest.APIError{StatusCode: http.StatusUnauthorized}
}

// fakeAPI implements the slice of rest.API the sync layer touches via
// overridable funcs. Calls to methods without a func installed panic
// through the embedded nil interface, which is what a test wants.
type fakeAPI struct {
	rest.API

	mu    sync.Mutex
	calls map[string]int

	postsFn          func(page int) (*models.Page[models.Post], error)
	createPostFn     func(in *models.PostInput) (*models.Post, error)
	updatePostFn     func(id int64, in *models.PostInput) (*models.Post, error)
	deletePostFn     func(id int64) error
	togglePostLikeFn func(id int64) (*models.LikeResult, error)

	commentsFn          func(postID int64) ([]models.Comment, error)
	createCommentFn     func(postID int64, in *models.CommentInput) (*models.Comment, error)
	updateCommentFn     func(id int64, in *models.CommentInput) (*models.Comment, error)
	deleteCommentFn     func(id int64) error
	toggleCommentLikeFn func(id int64) (*models.LikeResult, error)

	dialogsFn        func() ([]models.Dialog, error)
	dialogWithFn     func(memberID int64) (*models.Dialog, error)
	messagesFn       func(dialogID int64, page, pageSize int) (*models.Page[models.Message], error)
	sendMessageFn    func(dialogID int64, in *models.MessageInput) (*models.Message, error)
	markDialogReadFn func(dialogID int64) error

	followFn    func(id int64) (*models.FollowResult, error)
	unfollowFn  func(id int64) (*models.FollowResult, error)
	followingFn func(id int64) ([]models.Member, error)

	memberFn        func(id int64) (*models.Member, error)
	searchMembersFn func(query string) ([]models.Member, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Posts(_ context.Context, page int) (*models.Page[models.Post], error) {
	f.record("Posts")
	return f.postsFn(page)
}

func (f *fakeAPI) CreatePost(_ context.Context, in *models.PostInput) (*models.Post, error) {
	f.record("CreatePost")
	return f.createPostFn(in)
}

func (f *fakeAPI) UpdatePost(_ context.Context, id int64, in *models.PostInput) (*models.Post, error) {
	f.record("UpdatePost")
	return f.updatePostFn(id, in)
}

func (f *fakeAPI) DeletePost(_ context.Context, id int64) error {
	f.record("DeletePost")
	return f.deletePostFn(id)
}

func (f *fakeAPI) TogglePostLike(_ context.Context, id int64) (*models.LikeResult, error) {
	f.record("TogglePostLike")
	return f.togglePostLikeFn(id)
}

func (f *fakeAPI) Comments(_ context.Context, postID int64) ([]models.Comment, error) {
	f.record("Comments")
	return f.commentsFn(postID)
}

func (f *fakeAPI) CreateComment(_ context.Context, postID int64, in *models.CommentInput) (*models.Comment, error) {
	f.record("CreateComment")
	return f.createCommentFn(postID, in)
}

func (f *fakeAPI) UpdateComment(_ context.Context, id int64, in *models.CommentInput) (*models.Comment, error) {
	f.record("UpdateComment")
	return f.updateCommentFn(id, in)
}

func (f *fakeAPI) DeleteComment(_ context.Context, id int64) error {
	f.record("DeleteComment")
	return f.deleteCommentFn(id)
}

func (f *fakeAPI) ToggleCommentLike(_ context.Context, id int64) (*models.LikeResult, error) {
	f.record("ToggleCommentLike")
	return f.toggleCommentLikeFn(id)
}

func (f *fakeAPI) Dialogs(context.Context) ([]models.Dialog, error) {
	f.record("Dialogs")
	return f.dialogsFn()
}

func (f *fakeAPI) DialogWith(_ context.Context, memberID int64) (*models.Dialog, error) {
	f.record("DialogWith")
	return f.dialogWithFn(memberID)
}

func (f *fakeAPI) Messages(_ context.Context, dialogID int64, page, pageSize int) (*models.Page[models.Message], error) {
	f.record("Messages")
	return f.messagesFn(dialogID, page, pageSize)
}

func (f *fakeAPI) SendMessage(_ context.Context, dialogID int64, in *models.MessageInput) (*models.Message, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.record("SendMessage")
	return f.sendMessageFn(dialogID, in)
}

func (f *fakeAPI) MarkDialogRead(_ context.Context, dialogID int64) error {
	f.record("MarkDialogRead")
	if f.markDialogReadFn != nil {
		return f.markDialogReadFn(dialogID)
	}
	return nil
}

func (f *fakeAPI) Follow(_ context.Context, id int64) (*models.FollowResult, error) {
	f.record("Follow")
	return f.followFn(id)
}

func (f *fakeAPI) Unfollow(_ context.Context, id int64) (*models.FollowResult, error) {
	f.record("Unfollow")
	return f.unfollowFn(id)
}

func (f *fakeAPI) Following(_ context.Context, id int64) ([]models.Member, error) {
	f.record("Following")
	return f.followingFn(id)
}

func (f *fakeAPI) Member(_ context.Context, id int64) (*models.Member, error) {
	f.record("Member")
	return f.memberFn(id)
}

func (f *fakeAPI) SearchMembers(_ context.Context, query string) ([]models.Member, error) {
	f.record("SearchMembers")
	return f.searchMembersFn(query)
}
