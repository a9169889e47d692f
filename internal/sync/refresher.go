// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package sync

import (
	"context"
	"sync"
	"time"

	"github.com/palaver-net/palaver/internal/logging"
	"github.com/palaver-net/palaver/internal/metrics"
	"github.com/palaver-net/palaver/internal/rest"
)

// FeedRefresher periodically reloads the first feed page so the daemon
// always holds a recent timeline. Failures leave the previous timeline
// in place.
type FeedRefresher struct {
	feed     *Feed
	interval time.Duration

	mu          sync.Mutex
	running     bool
	stopChan    chan struct{}
	wg          sync.WaitGroup
	onAuthError func()
}

// NewFeedRefresher creates a stopped refresher over feed.
func NewFeedRefresher(feed *Feed, interval time.Duration) *FeedRefresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &FeedRefresher{feed: feed, interval: interval}
}

// SetOnAuthError registers the callback fired when a refresh hits an
// authentication failure. The refresh loop stops; called from the poll
// goroutine, must not block.
func (r *FeedRefresher) SetOnAuthError(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onAuthError = fn
}

// Start begins the refresh loop. Idempotent while running.
func (r *FeedRefresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.stopChan = make(chan struct{})
	r.mu.Unlock()

	logging.Info().Dur("interval", r.interval).Msg("Starting feed refresher")

	r.wg.Add(1)
	go r.loop(ctx)
	return nil
}

// Stop halts the refresh loop and waits for it to exit.
func (r *FeedRefresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopChan)
	r.mu.Unlock()

	r.wg.Wait()
	logging.Info().Msg("Feed refresher stopped")
}

func (r *FeedRefresher) loop(ctx context.Context) {
	defer r.wg.Done()

	if !r.refresh(ctx) {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			if !r.refresh(ctx) {
				return
			}
		}
	}
}

// refresh runs one reload tick. An auth error stops the loop (the
// token was rejected; retrying cannot fix it) and reports false.
func (r *FeedRefresher) refresh(ctx context.Context) bool {
	refreshCtx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()
	refreshCtx = logging.WithNewCorrelationID(refreshCtx)

	if err := r.feed.Refresh(refreshCtx); err != nil {
		metrics.PollTicks.WithLabelValues("feed", "error").Inc()
		if rest.IsAuth(err) {
			logging.Ctx(refreshCtx).Warn().Err(err).Msg("Feed refresh rejected; stopping")
			r.mu.Lock()
			onAuthError := r.onAuthError
			r.mu.Unlock()
			if onAuthError != nil {
				onAuthError()
			}
			return false
		}
		logging.Ctx(refreshCtx).Debug().Err(err).Msg("Feed refresh failed")
		return true
	}
	metrics.PollTicks.WithLabelValues("feed", "success").Inc()
	return true
}
