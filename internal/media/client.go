// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
client.go - Media Server REST API Client

This file implements a REST API client for the Jellyfin/Emby HTTP API.
Both brands share the endpoints and the X-Emby-* header scheme used here,
so one client serves either backend.

API Reference: https://api.jellyfin.org/
*/

package media

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/jellybridge/jellybridge/internal/models"
)

// defaultTimeout bounds a single API request when no timeout is configured.
const defaultTimeout = 10 * time.Second

// latestFields is the field list requested for upcoming and latest items,
// covering everything the card projections read.
const latestFields = "Overview,Genres,Studios,Tags,CommunityRating,OfficialRating," +
	"ProductionYear,PremiereDate,DateCreated,RunTimeTicks,SeriesName,SeasonName," +
	"ParentIndexNumber,IndexNumber,SeriesId"

// ClientInterface defines the media server API surface. Both Client and
// BreakerClient implement this interface; the coordinator consumes it.
type ClientInterface interface {
	// Read operations
	Ping(ctx context.Context) error
	SystemInfo(ctx context.Context) (*models.SystemInfo, error)
	Sessions(ctx context.Context) ([]models.Session, error)
	ActiveSessions(ctx context.Context) ([]models.Session, error)
	Users(ctx context.Context) ([]models.User, error)
	ItemCounts(ctx context.Context) (*models.ItemsPage, error)
	Upcoming(ctx context.Context, limit int) ([]models.BaseItem, error)
	Latest(ctx context.Context, itemType string, limit int) ([]models.BaseItem, error)

	// Command operations (fire-and-forget)
	PlayPause(ctx context.Context, sessionID string) error
	StopPlayback(ctx context.Context, sessionID string) error
	NextTrack(ctx context.Context, sessionID string) error
	PreviousTrack(ctx context.Context, sessionID string) error
	Seek(ctx context.Context, sessionID string, positionSeconds int64) error
	SetVolume(ctx context.Context, sessionID string, level float64) error
	Mute(ctx context.Context, sessionID string) error
	Unmute(ctx context.Context, sessionID string) error
	SendMessage(ctx context.Context, sessionID, text, header string, timeoutMs int) error
	RefreshLibrary(ctx context.Context) error
	RestartServer(ctx context.Context) error
	ShutdownServer(ctx context.Context) error

	// ImageURL is a pure URL builder; it performs no request.
	ImageURL(itemID, imageType string, maxWidth int) string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// ClientConfig holds the settings for constructing a Client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	UserID  string // optional: scopes /Shows/Upcoming to a user

	Timeout            time.Duration // per-request timeout, default 10s
	RateLimit          float64       // outbound requests per second, 0 disables
	InsecureSkipVerify bool          // skip TLS verification (self-signed certs)

	// Reported device identity
	ClientName string
	DeviceName string
	DeviceID   string
	Version    string
}

// Client provides access to the Jellyfin/Emby REST API
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	authHeader string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new media server API client
//
// The base URL is normalized (trailing slash removed) and the composite
// X-Emby-Authorization header is precomputed from the device identity.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // operator opt-in for self-signed servers
		}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	clientName := cfg.ClientName
	if clientName == "" {
		clientName = "Jellybridge"
	}
	deviceName := cfg.DeviceName
	if deviceName == "" {
		deviceName = "jellybridge"
	}
	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID = "jellybridge"
	}
	version := cfg.Version
	if version == "" {
		version = "2.0"
	}

	authHeader := fmt.Sprintf(`MediaBrowser Client=%q, Device=%q, DeviceId=%q, Version=%q`,
		clientName, deviceName, deviceID, version)

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		userID:     cfg.UserID,
		authHeader: authHeader,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter: limiter,
	}
}

// BaseURL returns the normalized server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping tests connectivity to the media server
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/System/Ping", nil)
	if err != nil {
		return transportError("ping", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("ping", resp.StatusCode)
	}

	return nil
}

// SystemInfo retrieves server identification and version information
func (c *Client) SystemInfo(ctx context.Context) (*models.SystemInfo, error) {
	var info models.SystemInfo
	if err := c.getJSON(ctx, "system info", "/System/Info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Sessions retrieves all sessions known to the server, idle ones included
func (c *Client) Sessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := c.getJSON(ctx, "sessions", "/Sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ActiveSessions retrieves only sessions with content loaded
//
// Filters sessions to return only those with NowPlayingItem set,
// indicating active playback (playing or paused).
func (c *Client) ActiveSessions(ctx context.Context) ([]models.Session, error) {
	sessions, err := c.Sessions(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]models.Session, 0, len(sessions))
	for i := range sessions {
		if sessions[i].NowPlayingItem != nil {
			active = append(active, sessions[i])
		}
	}

	return active, nil
}

// Users retrieves all users from the server
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, "users", "/Users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ItemCounts retrieves the full recursive item listing with types only.
// The caller buckets the returned types into library statistics.
func (c *Client) ItemCounts(ctx context.Context) (*models.ItemsPage, error) {
	var page models.ItemsPage
	if err := c.getJSON(ctx, "item counts", "/Items?Recursive=true&Fields=Type", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Upcoming retrieves upcoming TV episodes, soonest first
func (c *Client) Upcoming(ctx context.Context, limit int) ([]models.BaseItem, error) {
	endpoint := fmt.Sprintf("/Shows/Upcoming?Limit=%d&Fields=%s", limit, url.QueryEscape(latestFields))
	if c.userID != "" {
		endpoint += "&UserId=" + url.QueryEscape(c.userID)
	}

	var page models.ItemsPage
	if err := c.getJSON(ctx, "upcoming", endpoint, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Latest retrieves the most recently added items of the given wire type
// ("Movie", "Episode" or "Audio"), newest first
func (c *Client) Latest(ctx context.Context, itemType string, limit int) ([]models.BaseItem, error) {
	endpoint := fmt.Sprintf(
		"/Items?IncludeItemTypes=%s&Recursive=true&SortBy=DateCreated&SortOrder=Descending&Limit=%d&Fields=%s",
		url.QueryEscape(itemType), limit, url.QueryEscape(latestFields))

	var page models.ItemsPage
	if err := c.getJSON(ctx, "latest items", endpoint, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ImageURL builds the artwork URL for an item. Empty item IDs yield an
// empty string so templates can skip absent artwork.
func (c *Client) ImageURL(itemID, imageType string, maxWidth int) string {
	if itemID == "" {
		return ""
	}
	if imageType == "" {
		imageType = "Primary"
	}
	if maxWidth <= 0 {
		maxWidth = 300
	}
	return fmt.Sprintf("%s/Items/%s/Images/%s?maxWidth=%d&api_key=%s",
		c.baseURL, url.PathEscape(itemID), url.PathEscape(imageType), maxWidth, url.QueryEscape(c.apiKey))
}

// getJSON performs a GET request and decodes the JSON response body.
func (c *Client) getJSON(ctx context.Context, name, endpoint string, out interface{}) error {
	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return transportError(name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError(name, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeError(name, err)
	}

	return nil
}

// postCommand performs a POST request and discards the response body.
// Any 2xx status is success; command responses carry nothing useful.
func (c *Client) postCommand(ctx context.Context, name, endpoint string, body interface{}) error {
	resp, err := c.doRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return transportError(name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(name, resp.StatusCode)
	}

	return nil
}

// doRequest performs an HTTP request against the media server API
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	fullURL := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("X-Emby-Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
