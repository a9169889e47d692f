// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package rest

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/palaver-net/palaver/internal/config"
	"github.com/palaver-net/palaver/internal/logging"
	"github.com/palaver-net/palaver/internal/metrics"
	"github.com/palaver-net/palaver/internal/models"
)

// BreakerClient wraps Client with a circuit breaker so a down or slow
// backend stops the pollers from hammering it.
//
// The breaker uses real time for its interval and timeout calculations; unit
// tests should exercise the wrapped client directly.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// NewBreakerClient creates an API client with circuit breaker protection.
// The circuit opens after a 60% failure rate over at least 10 requests,
// allows 3 probes in half-open state, and waits 2 minutes before probing.
func NewBreakerClient(cfg *config.APIConfig) *BreakerClient {
	client := NewClient(cfg)
	cbName := "palaver-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", breakerStateString(from)).Str("to", breakerStateString(to)).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
		},
	})

	return &BreakerClient{client: client, cb: cb, name: cbName}
}

// execute wraps an API call with circuit breaker protection.
func (b *BreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result any, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// castSlice mirrors castResult for slice-returning endpoints.
func castSlice[T any](result any, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	typed, ok := result.([]T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func breakerStateFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Token management passes through; installing a token is local state, not a
// network call.

func (b *BreakerClient) SetToken(token string) { b.client.SetToken(token) }
func (b *BreakerClient) ClearToken()           { b.client.ClearToken() }
func (b *BreakerClient) Token() string         { return b.client.Token() }

// Auth.

func (b *BreakerClient) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenGrant, error) {
	return castResult[models.TokenGrant](b.execute(func() (any, error) {
		return b.client.Login(ctx, req)
	}))
}

func (b *BreakerClient) Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenGrant, error) {
	return castResult[models.TokenGrant](b.execute(func() (any, error) {
		return b.client.Register(ctx, req)
	}))
}

func (b *BreakerClient) Logout(ctx context.Context) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.client.Logout(ctx)
	})
	return err
}

func (b *BreakerClient) CurrentMember(ctx context.Context) (*models.Member, error) {
	return castResult[models.Member](b.execute(func() (any, error) {
		return b.client.CurrentMember(ctx)
	}))
}

// Members and follow edges.

func (b *BreakerClient) Member(ctx context.Context, id int64) (*models.Member, error) {
	return castResult[models.Member](b.execute(func() (any, error) {
		return b.client.Member(ctx, id)
	}))
}

func (b *BreakerClient) UpdateProfile(ctx context.Context, update *models.ProfileUpdate) (*models.Member, error) {
	return castResult[models.Member](b.execute(func() (any, error) {
		return b.client.UpdateProfile(ctx, update)
	}))
}

func (b *BreakerClient) SearchMembers(ctx context.Context, query string) ([]models.Member, error) {
	return castSlice[models.Member](b.execute(func() (any, error) {
		return b.client.SearchMembers(ctx, query)
	}))
}

func (b *BreakerClient) Follow(ctx context.Context, id int64) (*models.FollowResult, error) {
	return castResult[models.FollowResult](b.execute(func() (any, error) {
		return b.client.Follow(ctx, id)
	}))
}

func (b *BreakerClient) Unfollow(ctx context.Context, id int64) (*models.FollowResult, error) {
	return castResult[models.FollowResult](b.execute(func() (any, error) {
		return b.client.Unfollow(ctx, id)
	}))
}

func (b *BreakerClient) Followers(ctx context.Context, id int64) ([]models.Member, error) {
	return castSlice[models.Member](b.execute(func() (any, error) {
		return b.client.Followers(ctx, id)
	}))
}

func (b *BreakerClient) Following(ctx context.Context, id int64) ([]models.Member, error) {
	return castSlice[models.Member](b.execute(func() (any, error) {
		return b.client.Following(ctx, id)
	}))
}

func (b *BreakerClient) MemberPosts(ctx context.Context, id int64, page int) (*models.Page[models.Post], error) {
	return castResult[models.Page[models.Post]](b.execute(func() (any, error) {
		return b.client.MemberPosts(ctx, id, page)
	}))
}

// Posts.

func (b *BreakerClient) Posts(ctx context.Context, page int) (*models.Page[models.Post], error) {
	return castResult[models.Page[models.Post]](b.execute(func() (any, error) {
		return b.client.Posts(ctx, page)
	}))
}

func (b *BreakerClient) CreatePost(ctx context.Context, in *models.PostInput) (*models.Post, error) {
	return castResult[models.Post](b.execute(func() (any, error) {
		return b.client.CreatePost(ctx, in)
	}))
}

func (b *BreakerClient) CreatePostMultipart(ctx context.Context, in *models.PostInput, files []MediaFile) (*models.Post, error) {
	return castResult[models.Post](b.execute(func() (any, error) {
		return b.client.CreatePostMultipart(ctx, in, files)
	}))
}

func (b *BreakerClient) UpdatePost(ctx context.Context, id int64, in *models.PostInput) (*models.Post, error) {
	return castResult[models.Post](b.execute(func() (any, error) {
		return b.client.UpdatePost(ctx, id, in)
	}))
}

func (b *BreakerClient) DeletePost(ctx context.Context, id int64) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.client.DeletePost(ctx, id)
	})
	return err
}

func (b *BreakerClient) TogglePostLike(ctx context.Context, id int64) (*models.LikeResult, error) {
	return castResult[models.LikeResult](b.execute(func() (any, error) {
		return b.client.TogglePostLike(ctx, id)
	}))
}

// Comments.

func (b *BreakerClient) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	return castSlice[models.Comment](b.execute(func() (any, error) {
		return b.client.Comments(ctx, postID)
	}))
}

func (b *BreakerClient) CreateComment(ctx context.Context, postID int64, in *models.CommentInput) (*models.Comment, error) {
	return castResult[models.Comment](b.execute(func() (any, error) {
		return b.client.CreateComment(ctx, postID, in)
	}))
}

func (b *BreakerClient) UpdateComment(ctx context.Context, id int64, in *models.CommentInput) (*models.Comment, error) {
	return castResult[models.Comment](b.execute(func() (any, error) {
		return b.client.UpdateComment(ctx, id, in)
	}))
}

func (b *BreakerClient) DeleteComment(ctx context.Context, id int64) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.client.DeleteComment(ctx, id)
	})
	return err
}

func (b *BreakerClient) ToggleCommentLike(ctx context.Context, id int64) (*models.LikeResult, error) {
	return castResult[models.LikeResult](b.execute(func() (any, error) {
		return b.client.ToggleCommentLike(ctx, id)
	}))
}

// Dialogs and messages.

func (b *BreakerClient) Dialogs(ctx context.Context) ([]models.Dialog, error) {
	return castSlice[models.Dialog](b.execute(func() (any, error) {
		return b.client.Dialogs(ctx)
	}))
}

func (b *BreakerClient) DialogWith(ctx context.Context, memberID int64) (*models.Dialog, error) {
	return castResult[models.Dialog](b.execute(func() (any, error) {
		return b.client.DialogWith(ctx, memberID)
	}))
}

func (b *BreakerClient) Messages(ctx context.Context, dialogID int64, page, pageSize int) (*models.Page[models.Message], error) {
	return castResult[models.Page[models.Message]](b.execute(func() (any, error) {
		return b.client.Messages(ctx, dialogID, page, pageSize)
	}))
}

func (b *BreakerClient) SendMessage(ctx context.Context, dialogID int64, in *models.MessageInput) (*models.Message, error) {
	return castResult[models.Message](b.execute(func() (any, error) {
		return b.client.SendMessage(ctx, dialogID, in)
	}))
}

func (b *BreakerClient) MarkDialogRead(ctx context.Context, dialogID int64) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.client.MarkDialogRead(ctx, dialogID)
	})
	return err
}

func (b *BreakerClient) MarkMessageRead(ctx context.Context, messageID int64) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.client.MarkMessageRead(ctx, messageID)
	})
	return err
}
