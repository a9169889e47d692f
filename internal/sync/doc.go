// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

/*
Package sync keeps local views of the social graph consistent with the
backend: the post feed, per-post comment threads, the message inbox and
per-dialog conversations, and per-view follow state.

Three update strategies are used, chosen per mutation by how cheap it is
to be wrong:

  - server-truth: apply the server's returned counters verbatim and
    never guess locally (like toggles).
  - confirm-then-apply: send the mutation, and only mutate local state
    from the confirmed response (post/comment/message create, edit,
    delete).
  - local-only: adjust a local counter without a round-trip, clamped to
    stay non-negative (comment count deltas on feed entries).

State holders in this package are safe for concurrent use. Pollers
follow a Start/Stop lifecycle and are typically run under the
supervision tree.
*/
package sync
