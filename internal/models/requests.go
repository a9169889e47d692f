// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance for request payloads.
var validate = validator.New()

// ErrBlankText is returned when a payload's text is empty or whitespace-only.
var ErrBlankText = errors.New("text must not be blank")

// ErrEmptyMessage is returned when a message has neither text nor image.
var ErrEmptyMessage = errors.New("at least one of text or image must be provided")

// RegisterRequest is the payload for POST /api/auth/register/.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=1,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8"`
	Bio       string `json:"bio,omitempty"`
	BirthDate string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Avatar    string `json:"avatar,omitempty" validate:"omitempty,max=500"`
}

// Validate checks the payload before any network call is made.
func (r *RegisterRequest) Validate() error {
	return validate.Struct(r)
}

// LoginRequest is the payload for POST /api/auth/login/.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate checks the payload before any network call is made.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// ProfileUpdate is the payload for PATCH /api/members/me/. Nil fields are
// omitted from the request, leaving the server-side value untouched.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}

// PostInput is the payload for creating or updating a post.
type PostInput struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty" validate:"omitempty,max=500"`
}

// Validate rejects whitespace-only text. Validator tags cannot trim, so the
// check is explicit here; callers must not issue a request when it fails.
func (p *PostInput) Validate() error {
	if strings.TrimSpace(p.Text) == "" {
		return ErrBlankText
	}
	return validate.Struct(p)
}

// CommentInput is the payload for creating or updating a comment. Parent is
// nil for root comments and the root's id for replies.
type CommentInput struct {
	Text   string `json:"text"`
	Parent *int64 `json:"parent,omitempty"`
}

// Validate rejects whitespace-only text.
func (c *CommentInput) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrBlankText
	}
	return nil
}

// MessageInput is the payload for sending a dialog message.
type MessageInput struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// Validate enforces the text-or-image rule: at least one of the two must be
// non-blank after trimming.
func (m *MessageInput) Validate() error {
	if strings.TrimSpace(m.Text) == "" && strings.TrimSpace(m.Image) == "" {
		return ErrEmptyMessage
	}
	return nil
}
