// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package models

import "time"

// ============================================================================
// Normalized Snapshot Models
// ============================================================================
// One Snapshot is the complete normalized view of the media server as of a
// single poll cycle. Entity adapters, the HTTP API and the WebSocket hub
// read snapshots; nothing downstream touches wire models.

// Snapshot is the full server state captured by one poll cycle.
type Snapshot struct {
	Server         ServerInfo        `json:"server"`
	Sessions       []PlaybackSession `json:"sessions"`
	Library        LibraryStats      `json:"library"`
	Users          []UserInfo        `json:"users"`
	Upcoming       []MediaItem       `json:"upcoming"`
	LatestMovies   []MediaItem       `json:"latest_movies"`
	LatestEpisodes []MediaItem       `json:"latest_episodes"`
	LatestMusic    []MediaItem       `json:"latest_music"`
	Taken          time.Time         `json:"taken"`
}

// ServerInfo identifies the polled media server.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	ID      string `json:"id"`
	Address string `json:"address"`
}

// LibraryStats is the per-kind item count of the server library.
type LibraryStats struct {
	Movies   int `json:"movies"`
	Series   int `json:"series"`
	Episodes int `json:"episodes"`
	Songs    int `json:"songs"`
}

// PlaybackSession is a normalized active session. Only sessions with
// content loaded (playing or paused) appear in a Snapshot.
type PlaybackSession struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	UserName      string        `json:"user_name"`
	Client        string        `json:"client"`
	DeviceName    string        `json:"device_name"`
	DeviceID      string        `json:"device_id"`
	RemoteAddress string        `json:"remote_address,omitempty"`
	Controllable  bool          `json:"controllable"`
	Item          MediaItem     `json:"item"`
	State         PlaybackState `json:"state"`
}

// PlaybackState is the normalized playback state of a session.
// PositionSeconds and Volume are nil when the server did not report them.
type PlaybackState struct {
	Paused          bool     `json:"paused"`
	Muted           bool     `json:"muted"`
	PositionSeconds *int64   `json:"position_seconds"`
	Volume          *float64 `json:"volume"` // normalized 0.0-1.0
	PlayMethod      string   `json:"play_method,omitempty"`
	Transcoding     bool     `json:"transcoding"`
}

// MediaItem is a normalized library or now-playing item.
// RuntimeSeconds is nil when the server did not report a runtime.
type MediaItem struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Kind            string     `json:"kind"` // movie, series, episode, song
	SeriesName      string     `json:"series_name,omitempty"`
	SeasonName      string     `json:"season_name,omitempty"`
	SeasonNumber    *int       `json:"season_number,omitempty"`
	EpisodeNumber   *int       `json:"episode_number,omitempty"`
	Album           string     `json:"album,omitempty"`
	Artists         []string   `json:"artists,omitempty"`
	Year            *int       `json:"year,omitempty"`
	RuntimeSeconds  *int64     `json:"runtime_seconds"`
	PremiereDate    *time.Time `json:"premiere_date,omitempty"`
	AddedAt         *time.Time `json:"added_at,omitempty"`
	Overview        string     `json:"overview,omitempty"`
	Genres          []string   `json:"genres,omitempty"`
	Studio          string     `json:"studio,omitempty"`
	CommunityRating *float64   `json:"community_rating,omitempty"`
	OfficialRating  string     `json:"official_rating,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	BackdropURL     string     `json:"backdrop_url,omitempty"`
	ThumbURL        string     `json:"thumb_url,omitempty"`
}

// UserInfo is a normalized server user.
type UserInfo struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Administrator bool       `json:"administrator"`
	Disabled      bool       `json:"disabled"`
	LastActive    *time.Time `json:"last_active,omitempty"`
}

// ActiveSessionCount returns the number of sessions in the snapshot.
func (s *Snapshot) ActiveSessionCount() int {
	return len(s.Sessions)
}

// PlayingCount returns the number of sessions actively playing (not paused).
func (s *Snapshot) PlayingCount() int {
	n := 0
	for i := range s.Sessions {
		if !s.Sessions[i].State.Paused {
			n++
		}
	}
	return n
}

// SessionByID finds a session by its server-assigned ID.
func (s *Snapshot) SessionByID(id string) (*PlaybackSession, bool) {
	for i := range s.Sessions {
		if s.Sessions[i].ID == id {
			return &s.Sessions[i], true
		}
	}
	return nil, false
}

// ParseServerTime parses an ISO timestamp as reported by the media server
// (RFC 3339 with up to 7 fractional digits). Emby omits the zone suffix on
// some fields; those parse as UTC. Returns nil for empty or malformed input.
func ParseServerTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		t = t.UTC()
		return &t
	}
	return nil
}
