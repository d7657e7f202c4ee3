// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package entity

// Server button actions, matching the POST /server/{action} API routes.
const (
	ButtonRescan   = "rescan"
	ButtonRestart  = "restart"
	ButtonShutdown = "shutdown"
)

// Button describes one server-level action a dashboard can expose.
type Button struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`

	// Destructive marks actions a UI should confirm before sending.
	Destructive bool `json:"destructive"`
}

// Buttons returns the fixed server action descriptors. The set is static;
// it does not depend on snapshot state.
func Buttons() []Button {
	return []Button{
		{
			ID:          ButtonRescan,
			Name:        "Rescan Libraries",
			Description: "Trigger a full library scan on the media server",
			Icon:        "mdi:refresh",
		},
		{
			ID:          ButtonRestart,
			Name:        "Restart Server",
			Description: "Restart the media server process",
			Icon:        "mdi:restart",
			Destructive: true,
		},
		{
			ID:          ButtonShutdown,
			Name:        "Shutdown Server",
			Description: "Shut the media server down",
			Icon:        "mdi:power",
			Destructive: true,
		},
	}
}
