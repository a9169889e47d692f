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

func dialogWithLast(id, msgID int64, unread int) models.Dialog {
	d := models.Dialog{ID: id, UnreadCount: unread}
	if msgID != 0 {
		d.LastMessage = &models.Message{ID: msgID, Dialog: id, Text: "hi"}
	}
	return d
}

func TestInboxRefreshNotifiesOncePerMessage(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.dialogsFn = func() ([]models.Dialog, error) {
		return []models.Dialog{
			dialogWithLast(1, 100, 1),
			dialogWithLast(2, 200, 0), // read, no notification
			dialogWithLast(3, 0, 0),   // empty dialog
		}, nil
	}

	inbox := NewInbox(api, InboxConfig{Interval: time.Hour, SeenMessageTTL: time.Hour})
	var notified []int64
	inbox.SetOnMessage(func(_ *models.Dialog, msg *models.Message) {
		notified = append(notified, msg.ID)
	})

	if err := inbox.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(notified) != 1 || notified[0] != 100 {
		t.Errorf("notified = %v, want [100]", notified)
	}

	// Same last message on the next poll: deduplicated.
	if err := inbox.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(notified) != 1 {
		t.Errorf("notified = %v, want still [100]", notified)
	}
}

func TestInboxRefreshNotifiesNewMessage(t *testing.T) {
	t.Parallel()

	last := int64(100)
	api := newFakeAPI()
	api.dialogsFn = func() ([]models.Dialog, error) {
		return []models.Dialog{dialogWithLast(1, last, 2)}, nil
	}

	inbox := NewInbox(api, InboxConfig{Interval: time.Hour, SeenMessageTTL: time.Hour})
	var notified []int64
	inbox.SetOnMessage(func(_ *models.Dialog, msg *models.Message) {
		notified = append(notified, msg.ID)
	})

	if err := inbox.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	last = 101
	if err := inbox.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(notified) != 2 || notified[1] != 101 {
		t.Errorf("notified = %v, want [100 101]", notified)
	}
}

func TestInboxRefreshErrorKeepsDialogs(t *testing.T) {
	t.Parallel()

	fail := false
	api := newFakeAPI()
	api.dialogsFn = func() ([]models.Dialog, error) {
		if fail {
			return nil, errors.New("backend down")
		}
		return []models.Dialog{dialogWithLast(1, 100, 1)}, nil
	}

	inbox := NewInbox(api, InboxConfig{Interval: time.Hour, SeenMessageTTL: time.Hour})
	if err := inbox.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	fail = true
	if err := inbox.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := inbox.Dialogs(); len(got) != 1 {
		t.Errorf("dialogs = %d, want 1 (unchanged)", len(got))
	}
}

func TestInboxUnreadTotal(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.dialogsFn = func() ([]models.Dialog, error) {
		return []models.Dialog{
			dialogWithLast(1, 100, 3),
			dialogWithLast(2, 200, 2),
			dialogWithLast(3, 0, 0),
		}, nil
	}

	inbox := NewInbox(api, InboxConfig{Interval: time.Hour, SeenMessageTTL: time.Hour})
	if err := inbox.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := inbox.UnreadTotal(); got != 5 {
		t.Errorf("UnreadTotal = %d, want 5", got)
	}
}

func TestInboxOpenWithPrependsNewDialog(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.dialogsFn = func() ([]models.Dialog, error) {
		return []models.Dialog{dialogWithLast(1, 100, 0)}, nil
	}
	api.dialogWithFn = func(memberID int64) (*models.Dialog, error) {
		return &models.Dialog{ID: 9, Member2: models.Member{ID: memberID}}, nil
	}

	inbox := NewInbox(api, InboxConfig{Interval: time.Hour, SeenMessageTTL: time.Hour})
	if err := inbox.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	dialog, err := inbox.OpenWith(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if dialog.ID != 9 {
		t.Errorf("dialog id = %d, want 9", dialog.ID)
	}
	if got := inbox.Dialogs(); len(got) != 2 || got[0].ID != 9 {
		t.Errorf("dialogs = %+v, want dialog 9 first", got)
	}

	// Opening an existing dialog does not duplicate it.
	api.dialogWithFn = func(int64) (*models.Dialog, error) {
		return &models.Dialog{ID: 1}, nil
	}
	if _, err := inbox.OpenWith(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if got := inbox.Dialogs(); len(got) != 2 {
		t.Errorf("dialogs = %d, want 2 (no duplicate)", len(got))
	}
}

func TestInboxStartStop(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.dialogsFn = func() ([]models.Dialog, error) {
		return []models.Dialog{dialogWithLast(1, 100, 0)}, nil
	}

	inbox := NewInbox(api, InboxConfig{Interval: time.Hour, SeenMessageTTL: time.Hour})
	if err := inbox.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Idempotent start.
	if err := inbox.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for api.callCount("Dialogs") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	inbox.Stop()
	inbox.Stop() // second stop is a no-op

	if api.callCount("Dialogs") == 0 {
		t.Error("poll loop never fetched the dialog list")
	}
}

func TestInboxPollStopsOnAuthError(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.dialogsFn = func() ([]models.Dialog, error) { return nil, authErr() }

	inbox := NewInbox(api, InboxConfig{Interval: 10 * time.Millisecond, SeenMessageTTL: time.Hour})
	invalidated := make(chan struct{}, 1)
	inbox.SetOnAuthError(func() { invalidated <- struct{}{} })

	if err := inbox.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer inbox.Stop()

	select {
	case <-invalidated:
	case <-time.After(2 * time.Second):
		t.Fatal("auth callback never fired")
	}

	// The loop exits after the rejected poll instead of retrying.
	calls := api.callCount("Dialogs")
	time.Sleep(50 * time.Millisecond)
	if got := api.callCount("Dialogs"); got != calls {
		t.Errorf("Dialogs calls after auth error = %d, want %d (loop stopped)", got, calls)
	}
}
