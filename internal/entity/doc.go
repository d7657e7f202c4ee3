// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

// Package entity projects snapshots into the views home-automation
// consumers expect: sensors, media players and button descriptors.
//
// Everything in this package is presentation glue. Projections are pure
// functions over a *models.Snapshot; they fetch nothing, hold no state
// and never mutate the snapshot they read. Commands stay in the media
// package; entity only describes which commands exist.
package entity
