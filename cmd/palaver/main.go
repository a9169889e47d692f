// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

// Command palaver is the headless sync daemon: it restores the stored
// session, keeps the feed and message inbox fresh through polling, and
// serves a small status API with Prometheus metrics.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/palaver-net/palaver/internal/config"
	"github.com/palaver-net/palaver/internal/logging"
	"github.com/palaver-net/palaver/internal/models"
	"github.com/palaver-net/palaver/internal/rest"
	"github.com/palaver-net/palaver/internal/session"
	"github.com/palaver-net/palaver/internal/status"
	"github.com/palaver-net/palaver/internal/store"
	"github.com/palaver-net/palaver/internal/supervisor"
	syncpkg "github.com/palaver-net/palaver/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("base_url", cfg.API.BaseURL).
		Dur("dialog_interval", cfg.Poll.DialogInterval).
		Dur("feed_interval", cfg.Poll.FeedInterval).
		Msg("Starting Palaver sync daemon")

	st, err := store.Open(&cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()

	api := rest.NewBreakerClient(&cfg.API)
	sessions := session.NewManager(api, st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rehydrateCtx, rehydrateCancel := context.WithTimeout(ctx, cfg.API.Timeout)
	if err := sessions.Rehydrate(rehydrateCtx); err != nil {
		logging.Warn().Err(err).Msg("Session rehydration failed; will run unauthenticated")
	}
	rehydrateCancel()

	feed := syncpkg.NewFeed(api)
	refresher := syncpkg.NewFeedRefresher(feed, cfg.Poll.FeedInterval)
	inbox := syncpkg.NewInbox(api, syncpkg.InboxConfig{
		Interval:       cfg.Poll.DialogInterval,
		SeenMessageTTL: cfg.Poll.SeenMessageTTL,
	})
	directory := syncpkg.NewDirectory(api, 1024, cfg.Poll.SeenMessageTTL)
	inbox.SetOnMessage(func(dialog *models.Dialog, msg *models.Message) {
		// Message payloads carry a shallow sender; resolve the full
		// profile through the cached directory.
		from := msg.Sender.DisplayName()
		lookupCtx, lookupCancel := context.WithTimeout(ctx, cfg.Poll.DialogInterval)
		if sender, err := directory.Member(lookupCtx, msg.Sender.ID); err == nil {
			from = sender.DisplayName()
		}
		lookupCancel()
		logging.Info().
			Int64("dialog_id", dialog.ID).
			Int64("message_id", msg.ID).
			Str("from", from).
			Msg("New message")
	})

	// A rejected token never recovers by retrying; drop the session and
	// let the pollers wind down.
	inbox.SetOnAuthError(sessions.Invalidate)
	refresher.SetOnAuthError(sessions.Invalidate)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	if sessions.State() == session.StateAuthenticated {
		tree.AddSyncService(supervisor.NewInboxService(inbox))
		tree.AddSyncService(supervisor.NewFeedService(refresher))
	} else {
		logging.Warn().Msg("No valid session; sync pollers disabled until sign-in")
	}

	if cfg.Status.Enabled {
		startedAt := time.Now().UTC()
		statusServer := status.NewServer(&cfg.Status, func() status.Snapshot {
			snap := status.Snapshot{
				SessionState: sessions.State().String(),
				FeedPosts:    len(feed.Posts()),
				Dialogs:      len(inbox.Dialogs()),
				UnreadTotal:  inbox.UnreadTotal(),
				StartedAt:    startedAt,
			}
			if member := sessions.Member(); member != nil {
				snap.Username = member.Username
			}
			return snap
		})
		tree.AddStatusService(supervisor.NewServerService("status-server",
			statusServer.Run, statusServer.Shutdown))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Daemon stopped")
}
