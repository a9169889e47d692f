// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/palaver-net/palaver/internal/models"
)

// Dialogs lists the current member's dialogs with last message and unread
// count per dialog.
func (c *Client) Dialogs(ctx context.Context) ([]models.Dialog, error) {
	var dialogs []models.Dialog
	if err := c.call(ctx, "dialogs", http.MethodGet, "/api/dialogs/", nil, nil, &dialogs); err != nil {
		return nil, err
	}
	return dialogs, nil
}

// DialogWith returns (creating if necessary) the dialog with the given
// member.
func (c *Client) DialogWith(ctx context.Context, memberID int64) (*models.Dialog, error) {
	var dialog models.Dialog
	path := fmt.Sprintf("/api/dialogs/with/%d/", memberID)
	if err := c.call(ctx, "dialogs", http.MethodGet, path, nil, nil, &dialog); err != nil {
		return nil, err
	}
	return &dialog, nil
}

// Messages fetches one page of a dialog's messages, oldest first.
func (c *Client) Messages(ctx context.Context, dialogID int64, page, pageSize int) (*models.Page[models.Message], error) {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	var result models.Page[models.Message]
	path := fmt.Sprintf("/api/dialogs/%d/messages/", dialogID)
	if err := c.call(ctx, "messages", http.MethodGet, path, q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendMessage sends a message into a dialog and returns the confirmed
// record. The text-or-image rule is checked before any network traffic.
func (c *Client) SendMessage(ctx context.Context, dialogID int64, in *models.MessageInput) (*models.Message, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var message models.Message
	path := fmt.Sprintf("/api/dialogs/%d/messages/", dialogID)
	if err := c.call(ctx, "messages", http.MethodPost, path, nil, in, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkDialogRead marks every message in the dialog as read.
func (c *Client) MarkDialogRead(ctx context.Context, dialogID int64) error {
	path := fmt.Sprintf("/api/dialogs/%d/read/", dialogID)
	return c.call(ctx, "messages", http.MethodPost, path, nil, nil, nil)
}

// MarkMessageRead marks one message as read.
func (c *Client) MarkMessageRead(ctx context.Context, messageID int64) error {
	path := fmt.Sprintf("/api/messages/%d/read/", messageID)
	return c.call(ctx, "messages", http.MethodPost, path, nil, nil, nil)
}
