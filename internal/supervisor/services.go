// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package supervisor

import (
	"context"

	"github.com/palaver-net/palaver/internal/logging"
	"github.com/palaver-net/palaver/internal/sync"
)

// InboxService adapts the inbox poller to suture.Service.
type InboxService struct {
	inbox *sync.Inbox
}

// NewInboxService wraps inbox for supervision.
func NewInboxService(inbox *sync.Inbox) *InboxService {
	return &InboxService{inbox: inbox}
}

// Serve starts the inbox poller and blocks until ctx is canceled.
func (s *InboxService) Serve(ctx context.Context) error {
	if err := s.inbox.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.inbox.Stop()
	return ctx.Err()
}

func (s *InboxService) String() string { return "inbox-poller" }

// FeedService adapts the feed refresher to suture.Service.
type FeedService struct {
	refresher *sync.FeedRefresher
}

// NewFeedService wraps refresher for supervision.
func NewFeedService(refresher *sync.FeedRefresher) *FeedService {
	return &FeedService{refresher: refresher}
}

// Serve starts the feed refresher and blocks until ctx is canceled.
func (s *FeedService) Serve(ctx context.Context) error {
	if err := s.refresher.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.refresher.Stop()
	return ctx.Err()
}

func (s *FeedService) String() string { return "feed-refresher" }

// ServerService adapts a Run/Shutdown-style server to suture.Service.
// Used for the status API.
type ServerService struct {
	name     string
	run      func(ctx context.Context) error
	shutdown func(ctx context.Context) error
}

// NewServerService wraps run/shutdown functions for supervision.
func NewServerService(name string, run, shutdown func(ctx context.Context) error) *ServerService {
	return &ServerService{name: name, run: run, shutdown: shutdown}
}

// Serve runs the server; on context cancellation it invokes shutdown
// with a fresh context so the listener can drain.
func (s *ServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.run(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if s.shutdown != nil {
			if err := s.shutdown(context.Background()); err != nil {
				logging.Err(err).Str("service", s.name).Msg("Shutdown failed")
			}
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *ServerService) String() string { return s.name }
