// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

// Package models defines the wire-format records exchanged with the Palaver
// REST backend and the request payloads the client sends to it.
//
// Entities (Member, Post, Comment, Dialog, Message) are created and destroyed
// exclusively by the backend; the client holds ephemeral read-only copies that
// are invalidated wholesale when the view owning them goes away. The only
// client-owned durable state is the auth token (see internal/store).
//
// Request payloads carry go-playground/validator tags plus explicit Validate
// methods for the checks tags cannot express (whitespace-only text, the
// text-or-image rule on messages).
package models
