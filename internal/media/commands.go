// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
commands.go - Remote Control Commands

Command operations POST to the media server and treat any 2xx response as
success; the server pushes the actual state change to the client device,
and the next poll cycle picks it up. Playstate commands use the
/Sessions/{id}/Playing/<Command> path family, everything else goes
through /Sessions/{id}/Command with a named general command.
*/

package media

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/jellybridge/jellybridge/internal/models"
)

// Command names accepted by the player command API.
const (
	CommandPlayPause = "play_pause"
	CommandStop      = "stop"
	CommandNext      = "next"
	CommandPrevious  = "previous"
	CommandSeek      = "seek"
	CommandSetVolume = "set_volume"
	CommandMute      = "mute"
	CommandUnmute    = "unmute"
)

// Default message dialog settings when the caller leaves them unset.
const (
	defaultMessageHeader    = "Jellybridge"
	defaultMessageTimeoutMs = 5000
)

// seekRequest is the body for /Sessions/{id}/Playing/Seek.
type seekRequest struct {
	SeekPositionTicks int64 `json:"SeekPositionTicks"`
}

// generalCommand is the body for /Sessions/{id}/Command.
// Argument values are strings even for numeric payloads; the server
// expects "50", not 50.
type generalCommand struct {
	Name      string            `json:"Name"`
	Arguments map[string]string `json:"Arguments,omitempty"`
}

// messageRequest is the body for /Sessions/{id}/Message.
type messageRequest struct {
	Text      string `json:"Text"`
	Header    string `json:"Header"`
	TimeoutMs int    `json:"TimeoutMs"`
}

// VolumePercent converts a normalized volume level (0.0-1.0) into the
// integer percent the server API expects. Out-of-range input clamps.
func VolumePercent(level float64) int {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	return int(math.Round(level * 100))
}

// VolumeLevel converts an integer percent (0-100) into the normalized
// volume level (0.0-1.0). Out-of-range input clamps.
func VolumeLevel(percent int) float64 {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return float64(percent) / 100
}

// playingPath builds the /Sessions/{id}/Playing/<Command> endpoint.
func playingPath(sessionID, command string) string {
	return fmt.Sprintf("/Sessions/%s/Playing/%s", url.PathEscape(sessionID), command)
}

// sessionPath builds a /Sessions/{id}/<suffix> endpoint.
func sessionPath(sessionID, suffix string) string {
	return fmt.Sprintf("/Sessions/%s/%s", url.PathEscape(sessionID), suffix)
}

// PlayPause toggles play/pause for a session
func (c *Client) PlayPause(ctx context.Context, sessionID string) error {
	return c.postCommand(ctx, "play pause", playingPath(sessionID, "PlayPause"), nil)
}

// StopPlayback halts playback for a session
func (c *Client) StopPlayback(ctx context.Context, sessionID string) error {
	return c.postCommand(ctx, "stop", playingPath(sessionID, "Stop"), nil)
}

// NextTrack skips to the next item in the session queue
func (c *Client) NextTrack(ctx context.Context, sessionID string) error {
	return c.postCommand(ctx, "next track", playingPath(sessionID, "NextTrack"), nil)
}

// PreviousTrack returns to the previous item in the session queue
func (c *Client) PreviousTrack(ctx context.Context, sessionID string) error {
	return c.postCommand(ctx, "previous track", playingPath(sessionID, "PreviousTrack"), nil)
}

// Seek moves playback to the given position in seconds
func (c *Client) Seek(ctx context.Context, sessionID string, positionSeconds int64) error {
	if positionSeconds < 0 {
		positionSeconds = 0
	}
	body := seekRequest{SeekPositionTicks: positionSeconds * models.TicksPerSecond}
	return c.postCommand(ctx, "seek", playingPath(sessionID, "Seek"), body)
}

// SetVolume sets the session volume from a normalized level (0.0-1.0)
func (c *Client) SetVolume(ctx context.Context, sessionID string, level float64) error {
	body := generalCommand{
		Name:      "SetVolume",
		Arguments: map[string]string{"Volume": strconv.Itoa(VolumePercent(level))},
	}
	return c.postCommand(ctx, "set volume", sessionPath(sessionID, "Command"), body)
}

// Mute mutes the session
func (c *Client) Mute(ctx context.Context, sessionID string) error {
	return c.postCommand(ctx, "mute", sessionPath(sessionID, "Command"), generalCommand{Name: "Mute"})
}

// Unmute unmutes the session
func (c *Client) Unmute(ctx context.Context, sessionID string) error {
	return c.postCommand(ctx, "unmute", sessionPath(sessionID, "Command"), generalCommand{Name: "Unmute"})
}

// SendMessage shows a message dialog on the session's client device.
// Empty header and non-positive timeout fall back to defaults.
func (c *Client) SendMessage(ctx context.Context, sessionID, text, header string, timeoutMs int) error {
	if header == "" {
		header = defaultMessageHeader
	}
	if timeoutMs <= 0 {
		timeoutMs = defaultMessageTimeoutMs
	}
	body := messageRequest{Text: text, Header: header, TimeoutMs: timeoutMs}
	return c.postCommand(ctx, "send message", sessionPath(sessionID, "Message"), body)
}

// RefreshLibrary triggers a full library rescan on the server
func (c *Client) RefreshLibrary(ctx context.Context) error {
	return c.postCommand(ctx, "refresh library", "/Library/Refresh", nil)
}

// RestartServer restarts the media server
func (c *Client) RestartServer(ctx context.Context) error {
	return c.postCommand(ctx, "restart server", "/System/Restart", nil)
}

// ShutdownServer shuts the media server down
func (c *Client) ShutdownServer(ctx context.Context) error {
	return c.postCommand(ctx, "shutdown server", "/System/Shutdown", nil)
}
