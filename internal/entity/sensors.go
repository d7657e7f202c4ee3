// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
sensors.go - Sensor Projections

Sensors mirror the fixed sensor set of home-automation media-server
integrations: one server sensor whose state is the active session count,
four library count sensors, and an upcoming-media sensor carrying the
upcoming and recently-added card lists as attributes.
*/

package entity

import (
	"github.com/jellybridge/jellybridge/internal/models"
)

// Sensor IDs, stable across snapshots so consumers can key on them.
const (
	SensorServer   = "server"
	SensorMovies   = "library_movies"
	SensorSeries   = "library_series"
	SensorEpisodes = "library_episodes"
	SensorSongs    = "library_songs"
	SensorUpcoming = "upcoming_media"
)

// Sensor is one scalar reading plus free-form attributes.
type Sensor struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	State      interface{}            `json:"state"`
	Unit       string                 `json:"unit,omitempty"`
	Icon       string                 `json:"icon,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Sensors projects the fixed sensor set from a snapshot. A nil snapshot
// yields no sensors; callers serve an empty list before the first poll.
func Sensors(snap *models.Snapshot) []Sensor {
	if snap == nil {
		return nil
	}

	sensors := make([]Sensor, 0, 6)
	sensors = append(sensors, serverSensor(snap))
	sensors = append(sensors, librarySensors(snap)...)
	sensors = append(sensors, upcomingSensor(snap))
	return sensors
}

// SensorByID returns the sensor with the given ID from the projection.
func SensorByID(snap *models.Snapshot, id string) (Sensor, bool) {
	for _, s := range Sensors(snap) {
		if s.ID == id {
			return s, true
		}
	}
	return Sensor{}, false
}

// serverSensor reports the active session count with per-session detail
// attributes, mirroring the integration's main server sensor.
func serverSensor(snap *models.Snapshot) Sensor {
	details := make([]map[string]interface{}, 0, len(snap.Sessions))
	for i := range snap.Sessions {
		details = append(details, sessionAttributes(&snap.Sessions[i]))
	}

	return Sensor{
		ID:    SensorServer,
		Name:  snap.Server.Name,
		State: len(snap.Sessions),
		Unit:  "watching",
		Icon:  "mdi:television-play",
		Attributes: map[string]interface{}{
			"server_name":    snap.Server.Name,
			"server_version": snap.Server.Version,
			"server_id":      snap.Server.ID,
			"server_address": snap.Server.Address,
			"total_users":    len(snap.Users),
			"sessions":       details,
		},
	}
}

// sessionAttributes flattens one session into the attribute map shape
// dashboards template against.
func sessionAttributes(s *models.PlaybackSession) map[string]interface{} {
	attrs := map[string]interface{}{
		"session_id":  s.ID,
		"user":        s.UserName,
		"client":      s.Client,
		"device_name": s.DeviceName,
		"state":       PlayerState(s),
		"media_type":  s.Item.Kind,
		"media_title": s.Item.Title,
	}
	if s.Item.SeriesName != "" {
		attrs["series_name"] = s.Item.SeriesName
		attrs["season"] = s.Item.SeasonNumber
		attrs["episode"] = s.Item.EpisodeNumber
	}
	if s.Item.RuntimeSeconds != nil {
		attrs["runtime_seconds"] = *s.Item.RuntimeSeconds
	}
	if s.State.PositionSeconds != nil {
		attrs["position_seconds"] = *s.State.PositionSeconds
	}
	return attrs
}

// librarySensors reports the four library count buckets.
func librarySensors(snap *models.Snapshot) []Sensor {
	lib := snap.Library
	return []Sensor{
		{ID: SensorMovies, Name: "Movies", State: lib.Movies, Unit: "movies", Icon: "mdi:movie"},
		{ID: SensorSeries, Name: "TV Shows", State: lib.Series, Unit: "shows", Icon: "mdi:television-classic"},
		{ID: SensorEpisodes, Name: "Episodes", State: lib.Episodes, Unit: "episodes", Icon: "mdi:television"},
		{ID: SensorSongs, Name: "Songs", State: lib.Songs, Unit: "songs", Icon: "mdi:music"},
	}
}

// upcomingSensor's state is the title of the next upcoming episode, with
// the full upcoming and latest card lists as attributes.
func upcomingSensor(snap *models.Snapshot) Sensor {
	state := ""
	if len(snap.Upcoming) > 0 {
		state = upcomingTitle(&snap.Upcoming[0])
	}

	return Sensor{
		ID:    SensorUpcoming,
		Name:  "Upcoming Media",
		State: state,
		Icon:  "mdi:calendar-clock",
		Attributes: map[string]interface{}{
			"upcoming":        snap.Upcoming,
			"latest_movies":   snap.LatestMovies,
			"latest_episodes": snap.LatestEpisodes,
			"latest_music":    snap.LatestMusic,
		},
	}
}

// upcomingTitle formats an upcoming episode as "Series - Title", or just
// the title when the series name is absent.
func upcomingTitle(item *models.MediaItem) string {
	if item.SeriesName != "" {
		return item.SeriesName + " - " + item.Title
	}
	return item.Title
}
