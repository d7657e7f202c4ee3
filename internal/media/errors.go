// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package media

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for media server failures. Callers classify with
// errors.Is; the concrete message carries endpoint and status detail.
var (
	// ErrRemoteUnavailable covers connect failures, timeouts and 5xx
	// responses. The server exists but cannot be reached or is unhealthy.
	ErrRemoteUnavailable = errors.New("media server unavailable")

	// ErrInvalidAuth covers 401 and 403 responses. The API key is wrong,
	// expired or lacks permission.
	ErrInvalidAuth = errors.New("media server rejected credentials")

	// ErrMalformedResponse covers bodies that cannot be decoded. Missing
	// fields are NOT malformed; the normalizer reads those defensively.
	ErrMalformedResponse = errors.New("media server returned malformed response")

	// ErrSetupFailed wraps startup validation or first-refresh failures.
	ErrSetupFailed = errors.New("media server setup failed")
)

// statusError maps a non-2xx response to the error taxonomy.
func statusError(endpoint string, statusCode int) error {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%s returned status %d: %w", endpoint, statusCode, ErrInvalidAuth)
	case statusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%s returned status %d: %w", endpoint, statusCode, ErrRemoteUnavailable)
	default:
		return fmt.Errorf("%s returned unexpected status %d", endpoint, statusCode)
	}
}

// transportError wraps a failed request (DNS, connect, timeout) as
// ErrRemoteUnavailable.
func transportError(endpoint string, err error) error {
	return fmt.Errorf("%s request failed: %w: %w", endpoint, ErrRemoteUnavailable, err)
}

// decodeError wraps an undecodable body as ErrMalformedResponse.
func decodeError(endpoint string, err error) error {
	return fmt.Errorf("failed to decode %s response: %w: %w", endpoint, ErrMalformedResponse, err)
}
