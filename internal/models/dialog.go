// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package models

import "time"

// Dialog is a two-party private-message thread. The backend stores the pair
// in canonical order, so either member may appear as Member1.
type Dialog struct {
	ID        int64     `json:"id"`
	Member1   Member    `json:"member1"`
	Member2   Member    `json:"member2"`
	CreatedAt time.Time `json:"created_at"`
	// OtherMember is the participant that is not the requesting member. The
	// backend usually supplies it; Peer derives it when absent.
	OtherMember *Member  `json:"other_member,omitempty"`
	LastMessage *Message `json:"last_message,omitempty"`
	UnreadCount int      `json:"unread_count"`
}

// Peer returns the dialog participant that is not currentID, preferring the
// backend-supplied OtherMember when present. The fallback derivation is a
// display concern only, never stored back.
func (d *Dialog) Peer(currentID int64) Member {
	if d.OtherMember != nil {
		return *d.OtherMember
	}
	if d.Member1.ID == currentID {
		return d.Member2
	}
	return d.Member1
}

// Message is a single message inside a dialog. At least one of Text or Image
// is present on any message the backend accepted.
type Message struct {
	ID        int64     `json:"id"`
	Dialog    int64     `json:"dialog"`
	Sender    Member    `json:"sender"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}
