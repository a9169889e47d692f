// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package rest

import (
	"context"

	"github.com/palaver-net/palaver/internal/models"
)

// API is the full surface of the backend REST client. It is implemented by
// *Client for direct use and by *BreakerClient for circuit-breaker-protected
// use; the sync and session packages accept this interface so tests can
// substitute an httptest-backed client.
//
// All methods accept a context as first parameter and return typed records
// from internal/models. Thread safety: all implementations are safe for
// concurrent use.
type API interface {
	// Token management. The session manager installs and clears tokens.
	SetToken(token string)
	ClearToken()
	Token() string

	// Auth.
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenGrant, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenGrant, error)
	Logout(ctx context.Context) error
	CurrentMember(ctx context.Context) (*models.Member, error)

	// Members and follow edges.
	Member(ctx context.Context, id int64) (*models.Member, error)
	UpdateProfile(ctx context.Context, update *models.ProfileUpdate) (*models.Member, error)
	SearchMembers(ctx context.Context, query string) ([]models.Member, error)
	Follow(ctx context.Context, id int64) (*models.FollowResult, error)
	Unfollow(ctx context.Context, id int64) (*models.FollowResult, error)
	Followers(ctx context.Context, id int64) ([]models.Member, error)
	Following(ctx context.Context, id int64) ([]models.Member, error)
	MemberPosts(ctx context.Context, id int64, page int) (*models.Page[models.Post], error)

	// Posts.
	Posts(ctx context.Context, page int) (*models.Page[models.Post], error)
	CreatePost(ctx context.Context, in *models.PostInput) (*models.Post, error)
	CreatePostMultipart(ctx context.Context, in *models.PostInput, files []MediaFile) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, in *models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
	TogglePostLike(ctx context.Context, id int64) (*models.LikeResult, error)

	// Comments.
	Comments(ctx context.Context, postID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID int64, in *models.CommentInput) (*models.Comment, error)
	UpdateComment(ctx context.Context, id int64, in *models.CommentInput) (*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	ToggleCommentLike(ctx context.Context, id int64) (*models.LikeResult, error)

	// Dialogs and messages.
	Dialogs(ctx context.Context) ([]models.Dialog, error)
	DialogWith(ctx context.Context, memberID int64) (*models.Dialog, error)
	Messages(ctx context.Context, dialogID int64, page, pageSize int) (*models.Page[models.Message], error)
	SendMessage(ctx context.Context, dialogID int64, in *models.MessageInput) (*models.Message, error)
	MarkDialogRead(ctx context.Context, dialogID int64) error
	MarkMessageRead(ctx context.Context, messageID int64) error
}

// Compile-time interface checks.
var (
	_ API = (*Client)(nil)
	_ API = (*BreakerClient)(nil)
)
