// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
players.go - Media Player Projections

One Player view per active session. The view carries everything a media
player card renders: transport state, media metadata, progress, volume
and artwork. Player IDs are the server's session IDs, so commands
addressed at a player map straight onto session command endpoints.
*/

package entity

import (
	"github.com/jellybridge/jellybridge/internal/models"
)

// Player transport states.
const (
	StatePlaying = "playing"
	StatePaused  = "paused"
)

// Player is the media player view of one active session.
type Player struct {
	ID         string `json:"id"`
	UserName   string `json:"user_name"`
	Client     string `json:"client"`
	DeviceName string `json:"device_name"`
	State      string `json:"state"`

	MediaType     string   `json:"media_type"`
	Title         string   `json:"title"`
	SeriesName    string   `json:"series_name,omitempty"`
	SeasonNumber  *int     `json:"season_number,omitempty"`
	EpisodeNumber *int     `json:"episode_number,omitempty"`
	Album         string   `json:"album,omitempty"`
	Artists       []string `json:"artists,omitempty"`
	Year          *int     `json:"year,omitempty"`

	DurationSeconds *int64   `json:"duration_seconds"`
	PositionSeconds *int64   `json:"position_seconds"`
	Volume          *float64 `json:"volume"`
	Muted           bool     `json:"muted"`

	ImageURL    string `json:"image_url,omitempty"`
	BackdropURL string `json:"backdrop_url,omitempty"`
}

// Players projects one player per active session, in snapshot order.
func Players(snap *models.Snapshot) []Player {
	if snap == nil {
		return nil
	}

	players := make([]Player, 0, len(snap.Sessions))
	for i := range snap.Sessions {
		players = append(players, playerView(&snap.Sessions[i]))
	}
	return players
}

// PlayerByID returns the player view for the session with the given ID.
func PlayerByID(snap *models.Snapshot, id string) (Player, bool) {
	if snap == nil {
		return Player{}, false
	}
	session, ok := snap.SessionByID(id)
	if !ok {
		return Player{}, false
	}
	return playerView(session), true
}

// PlayerState maps a session's pause flag to the player transport state.
// Sessions only appear in snapshots with content loaded, so the state is
// binary.
func PlayerState(s *models.PlaybackSession) string {
	if s.State.Paused {
		return StatePaused
	}
	return StatePlaying
}

func playerView(s *models.PlaybackSession) Player {
	return Player{
		ID:              s.ID,
		UserName:        s.UserName,
		Client:          s.Client,
		DeviceName:      s.DeviceName,
		State:           PlayerState(s),
		MediaType:       s.Item.Kind,
		Title:           s.Item.Title,
		SeriesName:      s.Item.SeriesName,
		SeasonNumber:    s.Item.SeasonNumber,
		EpisodeNumber:   s.Item.EpisodeNumber,
		Album:           s.Item.Album,
		Artists:         s.Item.Artists,
		Year:            s.Item.Year,
		DurationSeconds: s.Item.RuntimeSeconds,
		PositionSeconds: s.State.PositionSeconds,
		Volume:          s.State.Volume,
		Muted:           s.State.Muted,
		ImageURL:        s.Item.ImageURL,
		BackdropURL:     s.Item.BackdropURL,
	}
}
