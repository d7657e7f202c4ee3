// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package models

import "testing"

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestSession_IsPlaying(t *testing.T) {
	tests := []struct {
		name     string
		session  Session
		expected bool
	}{
		{
			name: "playing content",
			session: Session{
				NowPlayingItem: &NowPlayingItem{Name: "Movie"},
				PlayState:      &PlayState{IsPaused: false},
			},
			expected: true,
		},
		{
			name: "paused content",
			session: Session{
				NowPlayingItem: &NowPlayingItem{Name: "Movie"},
				PlayState:      &PlayState{IsPaused: true},
			},
			expected: false,
		},
		{
			name: "no playback item",
			session: Session{
				PlayState: &PlayState{IsPaused: false},
			},
			expected: false,
		},
		{
			name: "no play state",
			session: Session{
				NowPlayingItem: &NowPlayingItem{Name: "Movie"},
			},
			expected: false,
		},
		{
			name:     "empty session",
			session:  Session{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.session.IsPlaying()
			if result != tt.expected {
				t.Errorf("IsPlaying() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSession_IsActive(t *testing.T) {
	tests := []struct {
		name     string
		session  Session
		expected bool
	}{
		{
			name: "has now playing item",
			session: Session{
				NowPlayingItem: &NowPlayingItem{Name: "Movie"},
			},
			expected: true,
		},
		{
			name:     "idle session",
			session:  Session{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.session.IsActive()
			if result != tt.expected {
				t.Errorf("IsActive() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSession_IPAddress(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		expected string
	}{
		{"ipv4 with port", "192.168.1.50:43210", "192.168.1.50"},
		{"ipv4 without port", "192.168.1.50", "192.168.1.50"},
		{"ipv6 with port", "[2001:db8::1]:43210", "2001:db8::1"},
		{"ipv6 without port", "[2001:db8::1]", "2001:db8::1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{RemoteEndPoint: tt.endpoint}
			result := s.IPAddress()
			if result != tt.expected {
				t.Errorf("IPAddress() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestSession_PositionSeconds(t *testing.T) {
	tests := []struct {
		name     string
		session  Session
		expected *int64
	}{
		{
			name: "reported position",
			session: Session{
				PlayState: &PlayState{PositionTicks: int64Ptr(1_500_000_000)},
			},
			expected: int64Ptr(150),
		},
		{
			name: "truncates partial seconds",
			session: Session{
				PlayState: &PlayState{PositionTicks: int64Ptr(19_999_999)},
			},
			expected: int64Ptr(1),
		},
		{
			name: "absent ticks",
			session: Session{
				PlayState: &PlayState{},
			},
			expected: nil,
		},
		{
			name:     "no play state",
			session:  Session{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.session.PositionSeconds()
			if tt.expected == nil {
				if result != nil {
					t.Errorf("PositionSeconds() = %v, want nil", *result)
				}
				return
			}
			if result == nil {
				t.Fatalf("PositionSeconds() = nil, want %d", *tt.expected)
			}
			if *result != *tt.expected {
				t.Errorf("PositionSeconds() = %d, want %d", *result, *tt.expected)
			}
		})
	}
}

func TestSession_PercentComplete(t *testing.T) {
	tests := []struct {
		name     string
		session  Session
		expected int
	}{
		{
			name: "half way",
			session: Session{
				NowPlayingItem: &NowPlayingItem{RunTimeTicks: int64Ptr(72_000_000_000)}, // 7200s
				PlayState:      &PlayState{PositionTicks: int64Ptr(36_000_000_000)},     // 3600s
			},
			expected: 50,
		},
		{
			name: "unknown duration",
			session: Session{
				NowPlayingItem: &NowPlayingItem{},
				PlayState:      &PlayState{PositionTicks: int64Ptr(36_000_000_000)},
			},
			expected: 0,
		},
		{
			name: "unknown position",
			session: Session{
				NowPlayingItem: &NowPlayingItem{RunTimeTicks: int64Ptr(72_000_000_000)},
				PlayState:      &PlayState{},
			},
			expected: 0,
		},
		{
			name:     "empty session",
			session:  Session{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.session.PercentComplete()
			if result != tt.expected {
				t.Errorf("PercentComplete() = %d, want %d", result, tt.expected)
			}
		})
	}
}

func TestBaseItem_RuntimeSeconds(t *testing.T) {
	tests := []struct {
		name     string
		item     BaseItem
		expected *int64
	}{
		{"two hours", BaseItem{RunTimeTicks: int64Ptr(72_000_000_000)}, int64Ptr(7200)},
		{"floors fraction", BaseItem{RunTimeTicks: int64Ptr(10_000_001)}, int64Ptr(1)},
		{"zero ticks", BaseItem{RunTimeTicks: int64Ptr(0)}, int64Ptr(0)},
		{"absent", BaseItem{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.item.RuntimeSeconds()
			if tt.expected == nil {
				if result != nil {
					t.Errorf("RuntimeSeconds() = %v, want nil", *result)
				}
				return
			}
			if result == nil {
				t.Fatalf("RuntimeSeconds() = nil, want %d", *tt.expected)
			}
			if *result != *tt.expected {
				t.Errorf("RuntimeSeconds() = %d, want %d", *result, *tt.expected)
			}
		})
	}
}

func TestMediaKind(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Movie", "movie"},
		{"movie", "movie"},
		{"MOVIE", "movie"},
		{"Series", "series"},
		{"Episode", "episode"},
		{"Audio", "song"},
		{"audio", "song"},
		{"MusicVideo", "musicvideo"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := MediaKind(tt.input)
			if result != tt.expected {
				t.Errorf("MediaKind(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNowPlayingItem_ContentTitle(t *testing.T) {
	tests := []struct {
		name     string
		item     *NowPlayingItem
		expected string
	}{
		{
			name: "episode",
			item: &NowPlayingItem{
				Name:              "Pilot",
				SeriesName:        "Some Show",
				ParentIndexNumber: intPtr(1),
				IndexNumber:       intPtr(2),
			},
			expected: "Some Show - S01E02 - Pilot",
		},
		{
			name: "episode with missing numbers",
			item: &NowPlayingItem{
				Name:       "Pilot",
				SeriesName: "Some Show",
			},
			expected: "Some Show - S00E00 - Pilot",
		},
		{
			name: "track with artists",
			item: &NowPlayingItem{
				Name:    "Song Title",
				Album:   "Album Name",
				Artists: []string{"First", "Second"},
			},
			expected: "First, Second - Song Title",
		},
		{
			name: "track with album artist fallback",
			item: &NowPlayingItem{
				Name:        "Song Title",
				Album:       "Album Name",
				AlbumArtist: "The Artist",
			},
			expected: "The Artist - Song Title",
		},
		{
			name:     "movie",
			item:     &NowPlayingItem{Name: "Big Film"},
			expected: "Big Film",
		},
		{
			name:     "nil item",
			item:     nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.item.ContentTitle()
			if result != tt.expected {
				t.Errorf("ContentTitle() = %q, want %q", result, tt.expected)
			}
		})
	}
}
