// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

// Package store persists session state across daemon restarts using
// BadgerDB. It holds the auth token and a snapshot of the signed-in
// member so the daemon can resume without prompting for credentials.
package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/palaver-net/palaver/internal/config"
	"github.com/palaver-net/palaver/internal/logging"
	"github.com/palaver-net/palaver/internal/models"
)

// Storage keys. A single account per store, so keys are fixed.
const (
	tokenKey  = "session:token"
	memberKey = "session:member"
)

// ErrNoToken is returned by LoadToken when no token has been saved.
var ErrNoToken = errors.New("no stored token")

// Store is a BadgerDB-backed session store.
type Store struct {
	db *badger.DB
}

// Open opens the session store at cfg.Path, or an in-memory instance
// when cfg.InMemory is set (used by tests and ephemeral runs).
func Open(cfg *config.StoreConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	// Badger's default logger is too chatty; route through zerolog instead.
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	logging.Debug().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("Session store opened")
	return &Store{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveToken durably stores the auth token. Must succeed before the
// session is considered authenticated.
func (s *Store) SaveToken(token string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(tokenKey), []byte(token))
	})
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// LoadToken returns the stored auth token, or ErrNoToken.
func (s *Store) LoadToken() (string, error) {
	var token string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tokenKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoToken
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			token = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

// ClearToken deletes the stored token and member snapshot. Used on
// logout and when the backend rejects the token.
func (s *Store) ClearToken() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(tokenKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete([]byte(memberKey)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// SaveMember stores a snapshot of the signed-in member's profile.
func (s *Store) SaveMember(member *models.Member) error {
	data, err := json.Marshal(member)
	if err != nil {
		return fmt.Errorf("marshal member: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(memberKey), data)
	})
	if err != nil {
		return fmt.Errorf("save member: %w", err)
	}
	return nil
}

// LoadMember returns the stored member snapshot, or nil when none is
// saved. The snapshot may be stale; callers refresh it from the API.
func (s *Store) LoadMember() (*models.Member, error) {
	var member *models.Member
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(memberKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var m models.Member
			if err := json.Unmarshal(val, &m); err != nil {
				return err
			}
			member = &m
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}
	return member, nil
}
