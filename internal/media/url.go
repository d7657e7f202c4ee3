// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package media

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Default media server ports per scheme.
const (
	DefaultHTTPPort  = 8096
	DefaultHTTPSPort = 8920
)

// ServerAddress is the decomposed form of a configured server URL.
type ServerAddress struct {
	Host string
	Port int
	SSL  bool
}

// URL renders the address back into a base URL without trailing slash.
func (a ServerAddress) URL() string {
	scheme := "http"
	if a.SSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, a.Host, a.Port)
}

// String implements fmt.Stringer.
func (a ServerAddress) String() string {
	return a.URL()
}

// ParseServerURL decomposes a configured server URL into host, port and
// SSL flag. An https scheme means SSL regardless of port, an explicit
// port always wins, and a missing port falls back to the scheme default
// (8096 for http, 8920 for https). Schemeless input is treated as http.
//
//	ParseServerURL("https://media.local:443") -> {media.local, 443, true}
//	ParseServerURL("media.local:8096")        -> {media.local, 8096, false}
//	ParseServerURL("https://media.local")     -> {media.local, 8920, true}
func ParseServerURL(raw string) (ServerAddress, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ServerAddress{}, fmt.Errorf("server URL is empty")
	}

	// url.Parse reads "host:8096" as scheme "host" with opaque "8096",
	// so schemeless input needs an explicit http prefix first.
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	// Trim after the scheme check so "http://" keeps its empty host
	// instead of collapsing into a schemeless "http:/".
	raw = strings.TrimSuffix(raw, "/")

	parsed, err := url.Parse(raw)
	if err != nil {
		return ServerAddress{}, fmt.Errorf("invalid server URL %q: %w", raw, err)
	}

	switch parsed.Scheme {
	case "http", "https":
	default:
		return ServerAddress{}, fmt.Errorf("unsupported scheme %q in server URL", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return ServerAddress{}, fmt.Errorf("server URL %q has no host", raw)
	}

	addr := ServerAddress{
		Host: host,
		SSL:  parsed.Scheme == "https",
	}

	if portStr := parsed.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return ServerAddress{}, fmt.Errorf("invalid port %q in server URL", portStr)
		}
		addr.Port = port
	} else if addr.SSL {
		addr.Port = DefaultHTTPSPort
	} else {
		addr.Port = DefaultHTTPPort
	}

	return addr, nil
}
