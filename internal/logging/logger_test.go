// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"garbage", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := CorrelationID(ctx); got != "" {
		t.Errorf("CorrelationID on empty context = %q, want empty", got)
	}

	ctx = WithCorrelationID(ctx, "abc12345")
	if got := CorrelationID(ctx); got != "abc12345" {
		t.Errorf("CorrelationID = %q, want abc12345", got)
	}
}

func TestNewCorrelationIDLength(t *testing.T) {
	id := NewCorrelationID()
	if len(id) != 8 {
		t.Errorf("NewCorrelationID length = %d, want 8", len(id))
	}
}

func TestCtxAttachesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(Config{})

	ctx := WithCorrelationID(context.Background(), "deadbeef")
	Ctx(ctx).Info().Msg("hello")

	if !strings.Contains(buf.String(), `"correlation_id":"deadbeef"`) {
		t.Errorf("log output missing correlation id: %s", buf.String())
	}
}

func TestCtxWithoutCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(Config{})

	Ctx(context.Background()).Info().Msg("bare")

	out := buf.String()
	if !strings.Contains(out, `"bare"`) {
		t.Errorf("log output missing message: %s", out)
	}
	if strings.Contains(out, "correlation_id") {
		t.Errorf("unexpected correlation id on bare context: %s", out)
	}
}
