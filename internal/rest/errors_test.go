// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package rest

import (
	"net/http"
	"strings"
	"testing"
)

func TestNewAPIErrorParsing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantFields map[string]string
	}{
		{
			name:       "detail string",
			status:     http.StatusUnauthorized,
			body:       `{"detail":"Invalid token."}`,
			wantDetail: "Invalid token.",
		},
		{
			name:       "non_field_errors array",
			status:     http.StatusBadRequest,
			body:       `{"non_field_errors":["Unable to log in with provided credentials."]}`,
			wantDetail: "Unable to log in with provided credentials.",
		},
		{
			name:       "field errors take first message",
			status:     http.StatusBadRequest,
			body:       `{"email":["Enter a valid email address.","This field may not be blank."]}`,
			wantFields: map[string]string{"email": "Enter a valid email address."},
		},
		{
			name:       "single string field value",
			status:     http.StatusBadRequest,
			body:       `{"text":"This field may not be blank."}`,
			wantFields: map[string]string{"text": "This field may not be blank."},
		},
		{
			name:       "non-JSON body falls back to raw text",
			status:     http.StatusBadGateway,
			body:       "  upstream unavailable  ",
			wantDetail: "upstream unavailable",
		},
		{
			name:       "empty body",
			status:     http.StatusInternalServerError,
			body:       "",
			wantDetail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := newAPIError(tt.status, strings.NewReader(tt.body))
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
			if err.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", err.Detail, tt.wantDetail)
			}
			for field, want := range tt.wantFields {
				if got := err.Fields[field]; got != want {
					t.Errorf("Fields[%q] = %q, want %q", field, got, want)
				}
			}
		})
	}
}

func TestAPIErrorPredicates(t *testing.T) {
	t.Parallel()

	auth := newAPIError(http.StatusUnauthorized, strings.NewReader(""))
	if !IsAuth(auth) {
		t.Error("IsAuth(401) = false")
	}
	validation := newAPIError(http.StatusBadRequest, strings.NewReader(""))
	if !IsValidation(validation) {
		t.Error("IsValidation(400) = false")
	}
	if IsAuth(validation) {
		t.Error("IsAuth(400) = true")
	}
	missing := newAPIError(http.StatusNotFound, strings.NewReader(""))
	if !IsNotFound(missing) {
		t.Error("IsNotFound(404) = false")
	}
	if IsAuth(nil) || IsValidation(nil) || IsNotFound(nil) {
		t.Error("predicates must be false for nil error")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	err := newAPIError(http.StatusBadRequest, strings.NewReader(`{"username":["taken"],"birthday":["bad date"]}`))
	// Fields render sorted so the message is stable.
	want := "api error 400: birthday: bad date; username: taken"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := newAPIError(http.StatusServiceUnavailable, strings.NewReader(""))
	if got := bare.Error(); got != "api error 503" {
		t.Errorf("Error() = %q, want %q", got, "api error 503")
	}
}
