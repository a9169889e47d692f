// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// maxErrorBodySize limits how much of an error response body is read.
// Prevents unbounded allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// APIError is a non-2xx response from the backend.
//
// The backend reports validation failures (HTTP 400) as a JSON object mapping
// field names to either a list of messages or a single string; Fields holds
// the first message per field, matching what a form would display. Other
// failures usually carry a single "detail" string.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Detail is the backend's top-level message, if any.
	Detail string

	// Fields maps field names to the first validation message for each.
	Fields map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+e.Fields[name])
		}
		return fmt.Sprintf("api error %d: %s", e.StatusCode, strings.Join(parts, "; "))
	}
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// IsAuth reports whether err is an authentication failure (HTTP 401).
// Callers treat it as "session over": clear the token, no retry.
func IsAuth(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsValidation reports whether err is a validation failure (HTTP 400) with
// structured field messages.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}

// IsNotFound reports whether err is an HTTP 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// FieldMessages extracts per-field validation messages from err, or nil when
// err carries none.
func FieldMessages(err error) map[string]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

// newAPIError builds an APIError from a non-2xx response body. DRF encodes
// field errors as {"field": ["msg", ...]} or {"field": "msg"}; the first
// array element or the string value wins. The "detail" and
// "non_field_errors" keys populate Detail instead.
func newAPIError(statusCode int, body io.Reader) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		apiErr.Detail = strings.TrimSpace(string(raw))
		return apiErr
	}

	for field, value := range payload {
		msg := firstMessage(value)
		if msg == "" {
			continue
		}
		switch field {
		case "detail", "non_field_errors":
			apiErr.Detail = msg
		default:
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string]string)
			}
			apiErr.Fields[field] = msg
		}
	}

	return apiErr
}

// firstMessage extracts a display message from a field error value: the
// first element of a list, or the value itself when it is a string.
func firstMessage(raw json.RawMessage) string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) > 0 {
			return list[0]
		}
		return ""
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	return ""
}
