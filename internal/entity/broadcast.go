// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jellybridge/jellybridge/internal/media"
	"github.com/jellybridge/jellybridge/internal/models"
)

// Broadcast sends a message dialog to every session in the snapshot.
// Sessions are addressed in snapshot order; a failed send does not stop
// the fan-out. Returns the number of sessions reached and the joined
// errors of the ones that were not.
func Broadcast(ctx context.Context, client media.ClientInterface, snap *models.Snapshot, text, header string, timeoutMs int) (int, error) {
	if snap == nil || len(snap.Sessions) == 0 {
		return 0, nil
	}

	sent := 0
	var errs []error
	for i := range snap.Sessions {
		id := snap.Sessions[i].ID
		if err := client.SendMessage(ctx, id, text, header, timeoutMs); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
			continue
		}
		sent++
	}

	return sent, errors.Join(errs...)
}
