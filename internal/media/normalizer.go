// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
normalizer.go - Wire Model Normalization

Converts raw media server responses into the normalized snapshot models
that everything downstream consumes. Normalization is defensive: missing
or nil wire fields degrade to zero values or nil pointers, never to an
error. A response that decodes is a response that normalizes.
*/

package media

import (
	"time"

	"github.com/jellybridge/jellybridge/internal/models"
)

// Artwork widths requested from the image endpoint.
const (
	primaryImageWidth  = 300
	backdropImageWidth = 780
	thumbImageWidth    = 400
)

// ImageURLFunc builds an artwork URL for an item. The client's ImageURL
// method satisfies this; tests substitute their own.
type ImageURLFunc func(itemID, imageType string, maxWidth int) string

// noImage is the ImageURLFunc used when no builder is supplied.
func noImage(string, string, int) string { return "" }

// RawState bundles the responses of one complete poll cycle before
// normalization.
type RawState struct {
	System         *models.SystemInfo
	Sessions       []models.Session
	Library        []models.BaseItem
	Users          []models.User
	Upcoming       []models.BaseItem
	LatestMovies   []models.BaseItem
	LatestEpisodes []models.BaseItem
	LatestMusic    []models.BaseItem
}

// BuildSnapshot normalizes one cycle's raw responses into a Snapshot.
// serverAddress is the client's base URL, recorded for display.
func BuildSnapshot(raw RawState, serverAddress string, imageURL ImageURLFunc, taken time.Time) *models.Snapshot {
	if imageURL == nil {
		imageURL = noImage
	}
	return &models.Snapshot{
		Server:         NormalizeServerInfo(raw.System, serverAddress),
		Sessions:       NormalizeSessions(raw.Sessions, imageURL),
		Library:        CountLibrary(raw.Library),
		Users:          NormalizeUsers(raw.Users),
		Upcoming:       NormalizeItems(raw.Upcoming, imageURL),
		LatestMovies:   NormalizeItems(raw.LatestMovies, imageURL),
		LatestEpisodes: NormalizeItems(raw.LatestEpisodes, imageURL),
		LatestMusic:    NormalizeItems(raw.LatestMusic, imageURL),
		Taken:          taken,
	}
}

// NormalizeServerInfo converts a /System/Info response. A nil response
// yields a ServerInfo carrying only the address.
func NormalizeServerInfo(info *models.SystemInfo, address string) models.ServerInfo {
	out := models.ServerInfo{Address: address}
	if info == nil {
		return out
	}
	out.Name = info.ServerName
	out.Version = info.Version
	out.ID = info.ID
	return out
}

// NormalizeSessions converts raw sessions, keeping only those with content
// loaded. Idle sessions (connected client, nothing playing) are dropped.
func NormalizeSessions(sessions []models.Session, imageURL ImageURLFunc) []models.PlaybackSession {
	if imageURL == nil {
		imageURL = noImage
	}
	out := make([]models.PlaybackSession, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		if !s.IsActive() {
			continue
		}
		out = append(out, normalizeSession(s, imageURL))
	}
	return out
}

// normalizeSession converts one active session. The caller guarantees
// NowPlayingItem is present.
func normalizeSession(s *models.Session, imageURL ImageURLFunc) models.PlaybackSession {
	return models.PlaybackSession{
		ID:            s.ID,
		UserID:        s.UserID,
		UserName:      s.UserName,
		Client:        s.Client,
		DeviceName:    s.DeviceName,
		DeviceID:      s.DeviceID,
		RemoteAddress: s.IPAddress(),
		Controllable:  s.SupportsRemoteControl,
		Item:          normalizeNowPlaying(s.NowPlayingItem, imageURL),
		State:         normalizePlayState(s),
	}
}

// normalizePlayState extracts the playback state of a session. A session
// without a PlayState block reports everything as unknown.
func normalizePlayState(s *models.Session) models.PlaybackState {
	state := models.PlaybackState{
		PositionSeconds: s.PositionSeconds(),
		Transcoding:     s.IsTranscoding(),
	}
	if ps := s.PlayState; ps != nil {
		state.Paused = ps.IsPaused
		state.Muted = ps.IsMuted
		state.PlayMethod = ps.PlayMethod
		if ps.VolumeLevel != nil {
			vol := VolumeLevel(*ps.VolumeLevel)
			state.Volume = &vol
		}
	}
	return state
}

// normalizeNowPlaying converts the now-playing item of a session.
func normalizeNowPlaying(n *models.NowPlayingItem, imageURL ImageURLFunc) models.MediaItem {
	if n == nil {
		return models.MediaItem{}
	}
	return models.MediaItem{
		ID:             n.ID,
		Title:          n.Name,
		Kind:           models.MediaKind(n.Type),
		SeriesName:     n.SeriesName,
		SeasonName:     n.SeasonName,
		SeasonNumber:   n.ParentIndexNumber,
		EpisodeNumber:  n.IndexNumber,
		Album:          n.Album,
		Artists:        n.Artists,
		Year:           n.ProductionYear,
		RuntimeSeconds: n.RuntimeSeconds(),
		ImageURL:       imageURL(n.ID, "Primary", primaryImageWidth),
		BackdropURL:    imageURL(n.ID, "Backdrop", backdropImageWidth),
		ThumbURL:       imageURL(n.ID, "Thumb", thumbImageWidth),
	}
}

// NormalizeItems converts library items for the upcoming and latest lists.
func NormalizeItems(items []models.BaseItem, imageURL ImageURLFunc) []models.MediaItem {
	if imageURL == nil {
		imageURL = noImage
	}
	out := make([]models.MediaItem, 0, len(items))
	for i := range items {
		out = append(out, NormalizeItem(&items[i], imageURL))
	}
	return out
}

// NormalizeItem converts one library item into its card projection.
func NormalizeItem(b *models.BaseItem, imageURL ImageURLFunc) models.MediaItem {
	if b == nil {
		return models.MediaItem{}
	}
	if imageURL == nil {
		imageURL = noImage
	}
	item := models.MediaItem{
		ID:              b.ID,
		Title:           b.Name,
		Kind:            models.MediaKind(b.Type),
		SeriesName:      b.SeriesName,
		SeasonName:      b.SeasonName,
		SeasonNumber:    b.ParentIndexNumber,
		EpisodeNumber:   b.IndexNumber,
		Album:           b.Album,
		Artists:         b.Artists,
		Year:            b.ProductionYear,
		RuntimeSeconds:  b.RuntimeSeconds(),
		PremiereDate:    models.ParseServerTime(b.PremiereDate),
		AddedAt:         models.ParseServerTime(b.DateCreated),
		Overview:        b.Overview,
		Genres:          b.Genres,
		CommunityRating: b.CommunityRating,
		OfficialRating:  b.OfficialRating,
		ImageURL:        imageURL(b.ID, "Primary", primaryImageWidth),
		BackdropURL:     imageURL(b.ID, "Backdrop", backdropImageWidth),
		ThumbURL:        imageURL(b.ID, "Thumb", thumbImageWidth),
	}
	if len(b.Studios) > 0 {
		item.Studio = b.Studios[0].Name
	}
	return item
}

// CountLibrary buckets library items into the four tracked kinds.
// Matching is case-insensitive; unrecognized types are dropped.
func CountLibrary(items []models.BaseItem) models.LibraryStats {
	var stats models.LibraryStats
	for i := range items {
		switch models.MediaKind(items[i].Type) {
		case "movie":
			stats.Movies++
		case "series":
			stats.Series++
		case "episode":
			stats.Episodes++
		case "song":
			stats.Songs++
		}
	}
	return stats
}

// NormalizeUsers converts /Users entries. Policy fields degrade to false
// when the server omits the policy block.
func NormalizeUsers(users []models.User) []models.UserInfo {
	out := make([]models.UserInfo, 0, len(users))
	for i := range users {
		u := &users[i]
		info := models.UserInfo{
			ID:         u.ID,
			Name:       u.Name,
			LastActive: models.ParseServerTime(u.LastActivityDate),
		}
		if u.Policy != nil {
			info.Administrator = u.Policy.IsAdministrator
			info.Disabled = u.Policy.IsDisabled
		}
		out = append(out, info)
	}
	return out
}
