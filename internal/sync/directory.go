// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package sync

import (
	"context"
	"strconv"
	"time"

	"github.com/palaver-net/palaver/internal/cache"
	"github.com/palaver-net/palaver/internal/models"
	"github.com/palaver-net/palaver/internal/rest"
)

// Directory resolves member profiles with a TTL-bounded cache in front
// of the API. Profile screens and peer lookups hit the same few members
// repeatedly; the TTL keeps follower counts from going too stale.
type Directory struct {
	api     rest.API
	members *cache.LRU[models.Member]
}

// NewDirectory creates a directory caching up to capacity profiles for
// ttl.
func NewDirectory(api rest.API, capacity int, ttl time.Duration) *Directory {
	return &Directory{
		api:     api,
		members: cache.NewLRU[models.Member]("members", capacity, ttl),
	}
}

// Member returns the profile for id, from cache when fresh.
func (d *Directory) Member(ctx context.Context, id int64) (*models.Member, error) {
	key := strconv.FormatInt(id, 10)
	if member, ok := d.members.Get(key); ok {
		return &member, nil
	}

	member, err := d.api.Member(ctx, id)
	if err != nil {
		return nil, err
	}
	d.members.Add(key, *member)
	return member, nil
}

// Search passes a query through to the API. Results refresh the cache
// so a later Member call on a hit is free.
func (d *Directory) Search(ctx context.Context, query string) ([]models.Member, error) {
	members, err := d.api.SearchMembers(ctx, query)
	if err != nil {
		return nil, err
	}
	for i := range members {
		d.members.Add(strconv.FormatInt(members[i].ID, 10), members[i])
	}
	return members, nil
}

// Invalidate drops id from the cache, after a profile edit or follow
// change that moves its counters.
func (d *Directory) Invalidate(id int64) {
	d.members.Remove(strconv.FormatInt(id, 10))
}
