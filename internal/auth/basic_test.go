// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package auth

import (
	"encoding/base64"
	"strings"
	"testing"
)

func basicHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func TestNewBasicAuthManager(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid credentials", "admin", "supersecret", false},
		{"empty username", "", "supersecret", true},
		{"empty password", "admin", "", true},
		{"password too short", "admin", "short", true},
		{"password exactly 8 chars", "admin", "12345678", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBasicAuthManager(tt.username, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBasicAuthManager() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	m, err := NewBasicAuthManager("admin", "supersecret")
	if err != nil {
		t.Fatalf("NewBasicAuthManager: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		username, err := m.ValidateCredentials(basicHeader("admin", "supersecret"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if username != "admin" {
			t.Errorf("username = %q, want admin", username)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := m.ValidateCredentials(basicHeader("admin", "wrongpass")); err == nil {
			t.Error("expected error for wrong password")
		}
	})

	t.Run("wrong username", func(t *testing.T) {
		if _, err := m.ValidateCredentials(basicHeader("intruder", "supersecret")); err == nil {
			t.Error("expected error for wrong username")
		}
	})

	t.Run("missing Basic prefix", func(t *testing.T) {
		if _, err := m.ValidateCredentials("Bearer something"); err == nil {
			t.Error("expected error for non-Basic header")
		}
	})

	t.Run("malformed base64", func(t *testing.T) {
		if _, err := m.ValidateCredentials("Basic !!!not-base64!!!"); err == nil {
			t.Error("expected error for malformed base64")
		}
	})

	t.Run("missing colon separator", func(t *testing.T) {
		header := "Basic " + base64.StdEncoding.EncodeToString([]byte("nocolon"))
		if _, err := m.ValidateCredentials(header); err == nil {
			t.Error("expected error for credentials without separator")
		}
	})

	t.Run("password containing colon", func(t *testing.T) {
		m2, err := NewBasicAuthManager("admin", "pass:with:colons")
		if err != nil {
			t.Fatalf("NewBasicAuthManager: %v", err)
		}
		if _, err := m2.ValidateCredentials(basicHeader("admin", "pass:with:colons")); err != nil {
			t.Errorf("password with colons should validate: %v", err)
		}
	})
}

func TestGetWWWAuthenticateHeader(t *testing.T) {
	m, err := NewBasicAuthManager("admin", "supersecret")
	if err != nil {
		t.Fatalf("NewBasicAuthManager: %v", err)
	}

	header := m.GetWWWAuthenticateHeader()
	if !strings.HasPrefix(header, "Basic realm=") {
		t.Errorf("unexpected challenge header: %q", header)
	}
}
