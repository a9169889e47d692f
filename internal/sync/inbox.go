// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package sync

import (
	"context"
	"sync"
	"time"

	"github.com/palaver-net/palaver/internal/cache"
	"github.com/palaver-net/palaver/internal/logging"
	"github.com/palaver-net/palaver/internal/metrics"
	"github.com/palaver-net/palaver/internal/models"
	"github.com/palaver-net/palaver/internal/rest"
)

// InboxConfig configures the dialog-list poller.
type InboxConfig struct {
	// Interval between inbox refreshes.
	Interval time.Duration
	// SeenMessageTTL is how long a surfaced message id is remembered so
	// the notification callback fires at most once per message.
	SeenMessageTTL time.Duration
}

// Inbox polls the dialog list and publishes new incoming messages.
//
// Unread counts only ever change here: selecting a dialog marks it read
// server-side, and the next refresh reflects that. Notification dedup
// uses a bounded seen-set so restarts of a dialog's last message don't
// re-fire.
type Inbox struct {
	api    rest.API
	config InboxConfig

	mu       sync.RWMutex
	dialogs  []models.Dialog
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	seen *cache.SeenSet

	onMessage   func(dialog *models.Dialog, msg *models.Message)
	onAuthError func()
}

// NewInbox creates a stopped inbox poller.
func NewInbox(api rest.API, config InboxConfig) *Inbox {
	if config.Interval <= 0 {
		config.Interval = 4 * time.Second
	}
	if config.SeenMessageTTL <= 0 {
		config.SeenMessageTTL = 5 * time.Minute
	}
	return &Inbox{
		api:    api,
		config: config,
		seen:   cache.NewSeenSet(4096, config.SeenMessageTTL),
	}
}

// SetOnMessage registers the new-message callback. Called from the poll
// goroutine; must not block.
func (in *Inbox) SetOnMessage(fn func(dialog *models.Dialog, msg *models.Message)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.onMessage = fn
}

// SetOnAuthError registers the callback fired when a poll hits an
// authentication failure. The poll loop stops; called from the poll
// goroutine, must not block.
func (in *Inbox) SetOnAuthError(fn func()) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.onAuthError = fn
}

// Dialogs returns a snapshot of the inbox, backend order preserved.
func (in *Inbox) Dialogs() []models.Dialog {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]models.Dialog, len(in.dialogs))
	copy(out, in.dialogs)
	return out
}

// UnreadTotal sums unread counts across all dialogs.
func (in *Inbox) UnreadTotal() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	total := 0
	for i := range in.dialogs {
		total += in.dialogs[i].UnreadCount
	}
	return total
}

// OpenWith returns the dialog with memberID, creating it server-side if
// none exists yet.
func (in *Inbox) OpenWith(ctx context.Context, memberID int64) (*models.Dialog, error) {
	dialog, err := in.api.DialogWith(ctx, memberID)
	if err != nil {
		return nil, err
	}

	in.mu.Lock()
	found := false
	for i := range in.dialogs {
		if in.dialogs[i].ID == dialog.ID {
			found = true
			break
		}
	}
	if !found {
		in.dialogs = append([]models.Dialog{*dialog}, in.dialogs...)
	}
	in.mu.Unlock()
	return dialog, nil
}

// Refresh fetches the dialog list once and fires notifications for
// unseen incoming messages.
func (in *Inbox) Refresh(ctx context.Context) error {
	dialogs, err := in.api.Dialogs(ctx)
	if err != nil {
		return err
	}

	in.mu.Lock()
	in.dialogs = dialogs
	callback := in.onMessage
	in.mu.Unlock()

	if callback == nil {
		return nil
	}
	for i := range dialogs {
		d := &dialogs[i]
		last := d.LastMessage
		if last == nil || d.UnreadCount == 0 {
			continue
		}
		if in.seen.MarkSeen(last.ID) {
			continue
		}
		callback(d, last)
	}
	return nil
}

// Start begins the polling loop. Idempotent while running.
func (in *Inbox) Start(ctx context.Context) error {
	in.mu.Lock()
	if in.running {
		in.mu.Unlock()
		return nil
	}
	in.running = true
	in.stopChan = make(chan struct{})
	in.mu.Unlock()

	logging.Info().Dur("interval", in.config.Interval).Msg("Starting inbox poller")

	in.wg.Add(1)
	go in.pollLoop(ctx)
	return nil
}

// Stop halts the polling loop and waits for it to exit.
func (in *Inbox) Stop() {
	in.mu.Lock()
	if !in.running {
		in.mu.Unlock()
		return
	}
	in.running = false
	close(in.stopChan)
	in.mu.Unlock()

	in.wg.Wait()
	logging.Info().Msg("Inbox poller stopped")
}

func (in *Inbox) pollLoop(ctx context.Context) {
	defer in.wg.Done()

	if !in.poll(ctx) {
		return
	}

	ticker := time.NewTicker(in.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-in.stopChan:
			return
		case <-ticker.C:
			if !in.poll(ctx) {
				return
			}
		}
	}
}

// poll runs one refresh tick. An auth error stops the loop (the token
// was rejected; re-polling cannot fix it) and reports false.
func (in *Inbox) poll(ctx context.Context) bool {
	pollCtx, cancel := context.WithTimeout(ctx, in.config.Interval)
	defer cancel()
	pollCtx = logging.WithNewCorrelationID(pollCtx)

	if err := in.Refresh(pollCtx); err != nil {
		metrics.PollTicks.WithLabelValues("inbox", "error").Inc()
		if rest.IsAuth(err) {
			logging.Ctx(pollCtx).Warn().Err(err).Msg("Inbox poll rejected; stopping")
			in.mu.RLock()
			onAuthError := in.onAuthError
			in.mu.RUnlock()
			if onAuthError != nil {
				onAuthError()
			}
			return false
		}
		logging.Ctx(pollCtx).Debug().Err(err).Msg("Inbox refresh failed")
		return true
	}
	metrics.PollTicks.WithLabelValues("inbox", "success").Inc()
	return true
}
