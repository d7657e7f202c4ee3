// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package models

import (
	"fmt"
	"strings"
)

// ============================================================================
// Media Server Wire Models
// ============================================================================
// These structures represent responses from the Jellyfin/Emby REST API.
// Both servers share the same API surface for the endpoints Jellybridge
// uses; one set of models covers both.
//
// Optional numeric fields are pointers so that "absent" survives decoding
// and is not flattened to a zero value. Downstream code must nil-check.
// Documentation: https://api.jellyfin.org/

// SystemInfo is the response from /System/Info.
type SystemInfo struct {
	ServerName      string `json:"ServerName"`
	Version         string `json:"Version"`
	ID              string `json:"Id"`
	OperatingSystem string `json:"OperatingSystem,omitempty"`
	LocalAddress    string `json:"LocalAddress,omitempty"`
}

// Session is an entry from /Sessions.
type Session struct {
	// Session identification
	ID                 string `json:"Id"`
	Client             string `json:"Client"`
	DeviceID           string `json:"DeviceId"`
	DeviceName         string `json:"DeviceName"`
	ApplicationVersion string `json:"ApplicationVersion,omitempty"`

	// User information
	UserID   string `json:"UserId"`
	UserName string `json:"UserName"`

	// Connection details
	RemoteEndPoint   string `json:"RemoteEndPoint,omitempty"`
	LastActivityDate string `json:"LastActivityDate,omitempty"`

	// Playback state
	NowPlayingItem  *NowPlayingItem  `json:"NowPlayingItem,omitempty"`
	PlayState       *PlayState       `json:"PlayState,omitempty"`
	TranscodingInfo *TranscodingInfo `json:"TranscodingInfo,omitempty"`

	// Control capabilities
	SupportsRemoteControl bool `json:"SupportsRemoteControl,omitempty"`

	ServerID string `json:"ServerId,omitempty"`
}

// NowPlayingItem is the currently playing content within a session.
type NowPlayingItem struct {
	ID        string `json:"Id"`
	Name      string `json:"Name"`
	Type      string `json:"Type"`      // "Movie", "Episode", "Audio", ...
	MediaType string `json:"MediaType"` // "Video", "Audio"

	// TV episode fields
	SeriesID          string `json:"SeriesId,omitempty"`
	SeriesName        string `json:"SeriesName,omitempty"`
	SeasonName        string `json:"SeasonName,omitempty"`
	IndexNumber       *int   `json:"IndexNumber,omitempty"`       // Episode number
	ParentIndexNumber *int   `json:"ParentIndexNumber,omitempty"` // Season number

	// Music fields
	Album       string   `json:"Album,omitempty"`
	AlbumArtist string   `json:"AlbumArtist,omitempty"`
	Artists     []string `json:"Artists,omitempty"`

	// Media information
	RunTimeTicks   *int64 `json:"RunTimeTicks,omitempty"` // Duration in ticks (100ns units)
	ProductionYear *int   `json:"ProductionYear,omitempty"`

	PrimaryImageTag string `json:"PrimaryImageTag,omitempty"`
}

// PlayState is the playback state within a session.
type PlayState struct {
	PositionTicks *int64 `json:"PositionTicks,omitempty"` // Current position in ticks
	CanSeek       bool   `json:"CanSeek"`
	IsPaused      bool   `json:"IsPaused"`
	IsMuted       bool   `json:"IsMuted"`
	VolumeLevel   *int   `json:"VolumeLevel,omitempty"` // 0-100
	PlayMethod    string `json:"PlayMethod,omitempty"`  // "DirectPlay", "DirectStream", "Transcode"
	RepeatMode    string `json:"RepeatMode,omitempty"`
}

// TranscodingInfo describes an active transcode for a session.
type TranscodingInfo struct {
	AudioCodec           string  `json:"AudioCodec,omitempty"`
	VideoCodec           string  `json:"VideoCodec,omitempty"`
	Container            string  `json:"Container,omitempty"`
	IsVideoDirect        bool    `json:"IsVideoDirect"`
	IsAudioDirect        bool    `json:"IsAudioDirect"`
	Bitrate              int     `json:"Bitrate,omitempty"`
	CompletionPercentage float64 `json:"CompletionPercentage,omitempty"`
}

// BaseItem is a library item from /Items and related endpoints.
// Only the fields Jellybridge reads are mapped.
type BaseItem struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
	Type string `json:"Type"` // "Movie", "Series", "Episode", "Audio", ...

	SeriesID          string `json:"SeriesId,omitempty"`
	SeriesName        string `json:"SeriesName,omitempty"`
	SeasonName        string `json:"SeasonName,omitempty"`
	IndexNumber       *int   `json:"IndexNumber,omitempty"`
	ParentIndexNumber *int   `json:"ParentIndexNumber,omitempty"`

	Album   string   `json:"Album,omitempty"`
	Artists []string `json:"Artists,omitempty"`

	Overview        string    `json:"Overview,omitempty"`
	Genres          []string  `json:"Genres,omitempty"`
	Studios         []NameRef `json:"Studios,omitempty"`
	CommunityRating *float64  `json:"CommunityRating,omitempty"`
	OfficialRating  string    `json:"OfficialRating,omitempty"`

	RunTimeTicks   *int64 `json:"RunTimeTicks,omitempty"`
	ProductionYear *int   `json:"ProductionYear,omitempty"`
	PremiereDate   string `json:"PremiereDate,omitempty"` // ISO timestamp
	DateCreated    string `json:"DateCreated,omitempty"`  // ISO timestamp

	PrimaryImageTag string `json:"PrimaryImageTag,omitempty"`
}

// NameRef is the {"Name": ...} reference shape used for studios and
// similar nested lists.
type NameRef struct {
	Name string `json:"Name"`
}

// ItemsPage is the paged envelope returned by /Items, /Shows/Upcoming and
// related endpoints.
type ItemsPage struct {
	Items            []BaseItem `json:"Items"`
	TotalRecordCount int        `json:"TotalRecordCount"`
}

// User is an entry from /Users.
type User struct {
	ID               string      `json:"Id"`
	Name             string      `json:"Name"`
	LastActivityDate string      `json:"LastActivityDate,omitempty"`
	Policy           *UserPolicy `json:"Policy,omitempty"`
}

// UserPolicy is the permission block attached to a user.
type UserPolicy struct {
	IsAdministrator bool `json:"IsAdministrator"`
	IsDisabled      bool `json:"IsDisabled"`
	IsHidden        bool `json:"IsHidden"`
}

// TicksPerSecond is the tick resolution of the media server API: one tick
// is 100 nanoseconds.
const TicksPerSecond int64 = 10_000_000

// ============================================================================
// Session Helpers
// ============================================================================

// IsActive returns true if the session has content loaded (playing or paused).
func (s *Session) IsActive() bool {
	return s.NowPlayingItem != nil
}

// IsPlaying returns true if the session is actively playing content.
func (s *Session) IsPlaying() bool {
	return s.NowPlayingItem != nil && s.PlayState != nil && !s.PlayState.IsPaused
}

// IsPaused returns true if the session has content paused.
func (s *Session) IsPaused() bool {
	return s.NowPlayingItem != nil && s.PlayState != nil && s.PlayState.IsPaused
}

// IsTranscoding returns true if the session is transcoding.
func (s *Session) IsTranscoding() bool {
	return s.PlayState != nil && s.PlayState.PlayMethod == "Transcode"
}

// IPAddress returns the client IP from RemoteEndPoint, stripping any port.
func (s *Session) IPAddress() string {
	if s.RemoteEndPoint == "" {
		return ""
	}
	// IPv6 addresses come bracketed
	if strings.HasPrefix(s.RemoteEndPoint, "[") {
		if idx := strings.LastIndex(s.RemoteEndPoint, "]:"); idx != -1 {
			return s.RemoteEndPoint[1:idx]
		}
		return strings.Trim(s.RemoteEndPoint, "[]")
	}
	if idx := strings.LastIndex(s.RemoteEndPoint, ":"); idx != -1 {
		return s.RemoteEndPoint[:idx]
	}
	return s.RemoteEndPoint
}

// PositionSeconds returns the playback position in whole seconds, or nil
// when the server did not report a position.
func (s *Session) PositionSeconds() *int64 {
	if s.PlayState == nil || s.PlayState.PositionTicks == nil {
		return nil
	}
	secs := *s.PlayState.PositionTicks / TicksPerSecond
	return &secs
}

// DurationSeconds returns the content duration in whole seconds, or nil
// when the server did not report a runtime.
func (s *Session) DurationSeconds() *int64 {
	if s.NowPlayingItem == nil {
		return nil
	}
	return s.NowPlayingItem.RuntimeSeconds()
}

// PercentComplete returns the playback progress percentage, or 0 when
// position or duration is unknown.
func (s *Session) PercentComplete() int {
	pos := s.PositionSeconds()
	dur := s.DurationSeconds()
	if pos == nil || dur == nil || *dur == 0 {
		return 0
	}
	return int((*pos * 100) / *dur)
}

// ============================================================================
// Item Helpers
// ============================================================================

// RuntimeSeconds converts RunTimeTicks to whole seconds, or nil when absent.
func (n *NowPlayingItem) RuntimeSeconds() *int64 {
	if n == nil || n.RunTimeTicks == nil {
		return nil
	}
	secs := *n.RunTimeTicks / TicksPerSecond
	return &secs
}

// RuntimeSeconds converts RunTimeTicks to whole seconds, or nil when absent.
func (b *BaseItem) RuntimeSeconds() *int64 {
	if b == nil || b.RunTimeTicks == nil {
		return nil
	}
	secs := *b.RunTimeTicks / TicksPerSecond
	return &secs
}

// MediaKind returns the normalized media kind for the item type:
// movie, series, episode or song. Unrecognized types map to their
// lowercased wire value.
func MediaKind(itemType string) string {
	switch strings.ToLower(itemType) {
	case "movie":
		return "movie"
	case "series":
		return "series"
	case "episode":
		return "episode"
	case "audio":
		return "song"
	default:
		return strings.ToLower(itemType)
	}
}

// ContentTitle returns a display title for the item. Episodes render as
// "Series - S01E02 - Name", tracks as "Artist - Name", everything else
// as the bare name.
func (n *NowPlayingItem) ContentTitle() string {
	if n == nil {
		return ""
	}

	if n.SeriesName != "" {
		season, episode := 0, 0
		if n.ParentIndexNumber != nil {
			season = *n.ParentIndexNumber
		}
		if n.IndexNumber != nil {
			episode = *n.IndexNumber
		}
		return fmt.Sprintf("%s - S%02dE%02d - %s", n.SeriesName, season, episode, n.Name)
	}

	if n.Album != "" {
		artists := strings.Join(n.Artists, ", ")
		if artists == "" {
			artists = n.AlbumArtist
		}
		if artists != "" {
			return fmt.Sprintf("%s - %s", artists, n.Name)
		}
	}

	return n.Name
}
