// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package store

import (
	"errors"
	"testing"

	"github.com/palaver-net/palaver/internal/config"
	"github.com/palaver-net/palaver/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	if _, err := s.LoadToken(); !errors.Is(err, ErrNoToken) {
		t.Errorf("LoadToken on empty store = %v, want ErrNoToken", err)
	}

	if err := s.SaveToken("cafebabe"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	token, err := s.LoadToken()
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if token != "cafebabe" {
		t.Errorf("token = %q, want cafebabe", token)
	}

	if err := s.SaveToken("feedface"); err != nil {
		t.Fatalf("SaveToken overwrite: %v", err)
	}
	token, _ = s.LoadToken()
	if token != "feedface" {
		t.Errorf("token after overwrite = %q, want feedface", token)
	}
}

func TestClearTokenRemovesMemberToo(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.SaveToken("tok"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveMember(&models.Member{ID: 7, Username: "bob"}); err != nil {
		t.Fatal(err)
	}

	if err := s.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if _, err := s.LoadToken(); !errors.Is(err, ErrNoToken) {
		t.Errorf("LoadToken after clear = %v, want ErrNoToken", err)
	}
	member, err := s.LoadMember()
	if err != nil {
		t.Fatalf("LoadMember: %v", err)
	}
	if member != nil {
		t.Errorf("member after clear = %+v, want nil", member)
	}
}

func TestClearTokenOnEmptyStore(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.ClearToken(); err != nil {
		t.Errorf("ClearToken on empty store: %v", err)
	}
}

func TestMemberRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	in := &models.Member{ID: 12, Username: "carol", FirstName: "Carol"}
	if err := s.SaveMember(in); err != nil {
		t.Fatalf("SaveMember: %v", err)
	}

	out, err := s.LoadMember()
	if err != nil {
		t.Fatalf("LoadMember: %v", err)
	}
	if out == nil || out.ID != 12 || out.Username != "carol" {
		t.Errorf("member = %+v, want id=12 username=carol", out)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	t.Parallel()

	cfg := &config.StoreConfig{Path: t.TempDir()}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveToken("survives"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	token, err := s2.LoadToken()
	if err != nil {
		t.Fatalf("LoadToken after reopen: %v", err)
	}
	if token != "survives" {
		t.Errorf("token = %q, want survives", token)
	}
}
