// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/palaver-net/palaver/internal/logging"
	"github.com/palaver-net/palaver/internal/metrics"
	"github.com/palaver-net/palaver/internal/models"
	"github.com/palaver-net/palaver/internal/rest"
)

// ConversationState is the lifecycle of the selected dialog's message
// view.
type ConversationState int

const (
	// ConversationIdle means no dialog is selected.
	ConversationIdle ConversationState = iota
	// ConversationLoading means the initial message fetch is in flight.
	ConversationLoading
	// ConversationLoaded means messages are displayed and silently
	// re-polled.
	ConversationLoaded
	// ConversationErrored means the initial fetch failed.
	ConversationErrored
)

func (s ConversationState) String() string {
	switch s {
	case ConversationIdle:
		return "idle"
	case ConversationLoading:
		return "loading"
	case ConversationLoaded:
		return "loaded"
	case ConversationErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrNoSelection is returned when a message operation needs a selected
// dialog and none is.
var ErrNoSelection = errors.New("no dialog selected")

// Conversation tracks the currently selected dialog: its messages, a
// state machine Idle -> Loading -> {Loaded, Errored}, and a background
// re-poll keyed to the selection.
//
// Once Loaded, the re-poll refreshes messages on a fixed interval
// without ever flipping the state back to Loading; poll failures are
// swallowed so a blip never blanks an open conversation.
type Conversation struct {
	api      rest.API
	interval time.Duration
	pageSize int

	mu       sync.RWMutex
	selected int64
	state    ConversationState
	messages []models.Message

	stopChan    chan struct{}
	wg          sync.WaitGroup
	onAuthError func()
}

// NewConversation creates an idle conversation view. interval is the
// silent re-poll cadence; pageSize bounds each message fetch.
func NewConversation(api rest.API, interval time.Duration, pageSize int) *Conversation {
	if interval <= 0 {
		interval = 4 * time.Second
	}
	return &Conversation{api: api, interval: interval, pageSize: pageSize, state: ConversationIdle}
}

// SetOnAuthError registers the callback fired when a re-poll hits an
// authentication failure. The re-poll stops; called from the poll
// goroutine, must not block.
func (c *Conversation) SetOnAuthError(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthError = fn
}

// State returns the current conversation state.
func (c *Conversation) State() ConversationState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Selected returns the selected dialog id, 0 when idle.
func (c *Conversation) Selected() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// Messages returns a snapshot of the selected dialog's messages.
func (c *Conversation) Messages() []models.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Select switches to dialogID: the previous dialog's re-poll timer is
// torn down, messages are fetched, the dialog is synchronously marked
// read, and a fresh re-poll starts keyed to this selection.
func (c *Conversation) Select(ctx context.Context, dialogID int64) error {
	c.teardown()

	c.mu.Lock()
	c.selected = dialogID
	c.state = ConversationLoading
	c.messages = nil
	c.mu.Unlock()

	page, err := c.api.Messages(ctx, dialogID, 1, c.pageSize)
	if err != nil {
		c.mu.Lock()
		c.state = ConversationErrored
		c.mu.Unlock()
		return fmt.Errorf("select dialog %d: %w", dialogID, err)
	}

	// Mark read before the unread badge can refresh; failure is logged
	// but does not fail the selection.
	if err := c.api.MarkDialogRead(ctx, dialogID); err != nil {
		logging.Warn().Err(err).Int64("dialog_id", dialogID).Msg("Failed to mark dialog read")
	}

	c.mu.Lock()
	c.state = ConversationLoaded
	c.messages = page.Results
	c.stopChan = make(chan struct{})
	stop := c.stopChan
	c.mu.Unlock()

	c.wg.Add(1)
	go c.repollLoop(dialogID, stop)
	return nil
}

// Deselect closes the conversation view and stops its re-poll.
func (c *Conversation) Deselect() {
	c.teardown()

	c.mu.Lock()
	c.selected = 0
	c.state = ConversationIdle
	c.messages = nil
	c.mu.Unlock()
}

// SendMessage sends to the selected dialog and appends the confirmed
// message (confirm-then-apply; no optimistic echo).
func (c *Conversation) SendMessage(ctx context.Context, in *models.MessageInput) (*models.Message, error) {
	c.mu.RLock()
	dialogID := c.selected
	c.mu.RUnlock()
	if dialogID == 0 {
		return nil, ErrNoSelection
	}

	msg, err := c.api.SendMessage(ctx, dialogID, in)
	if err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	c.mu.Lock()
	// The selection may have changed while the send was in flight.
	if c.selected == dialogID {
		c.messages = append(c.messages, *msg)
	}
	c.mu.Unlock()
	return msg, nil
}

// teardown stops the current re-poll goroutine, if any.
func (c *Conversation) teardown() {
	c.mu.Lock()
	if c.stopChan != nil {
		close(c.stopChan)
		c.stopChan = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// repollLoop silently refreshes the selected dialog's messages. The
// loop exits when the selection changes (stop closed).
func (c *Conversation) repollLoop(dialogID int64, stop <-chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !c.repoll(dialogID) {
				return
			}
		}
	}
}

// repoll fetches the latest messages. Transient errors are swallowed:
// the state stays Loaded and the previous messages remain on screen.
// An auth error stops the re-poll (a rejected token never recovers on
// its own) and reports false.
func (c *Conversation) repoll(dialogID int64) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.interval)
	defer cancel()
	ctx = logging.WithNewCorrelationID(ctx)

	page, err := c.api.Messages(ctx, dialogID, 1, c.pageSize)
	if err != nil {
		metrics.PollTicks.WithLabelValues("conversation", "error").Inc()
		if rest.IsAuth(err) {
			logging.Ctx(ctx).Warn().Err(err).Int64("dialog_id", dialogID).Msg("Re-poll rejected; stopping")
			c.mu.RLock()
			onAuthError := c.onAuthError
			c.mu.RUnlock()
			if onAuthError != nil {
				onAuthError()
			}
			return false
		}
		logging.Ctx(ctx).Debug().Err(err).Int64("dialog_id", dialogID).Msg("Silent re-poll failed")
		return true
	}
	metrics.PollTicks.WithLabelValues("conversation", "success").Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != dialogID {
		return true
	}
	c.messages = page.Results
	return true
}
