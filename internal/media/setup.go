// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package media

import (
	"context"
	"fmt"

	"github.com/jellybridge/jellybridge/internal/logging"
	"github.com/jellybridge/jellybridge/internal/models"
)

// ValidateConnection verifies the media server before the bridge starts
// serving. Ping proves the server is reachable, the Users probe proves the
// API key is accepted (public endpoints do not exercise authentication),
// and the returned system info identifies the server in startup logs.
//
// Errors wrap ErrSetupFailed; the underlying cause stays inspectable, so
// errors.Is(err, ErrInvalidAuth) distinguishes bad credentials from an
// unreachable server.
func ValidateConnection(ctx context.Context, client ClientInterface) (*models.SystemInfo, error) {
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: ping: %w", ErrSetupFailed, err)
	}

	if _, err := client.Users(ctx); err != nil {
		return nil, fmt.Errorf("%w: credential check: %w", ErrSetupFailed, err)
	}

	info, err := client.SystemInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: system info: %w", ErrSetupFailed, err)
	}

	logging.Info().
		Str("server", info.ServerName).
		Str("version", info.Version).
		Msg("Media server connection validated")

	return info, nil
}
