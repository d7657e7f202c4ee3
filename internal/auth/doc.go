// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
Package auth protects the bridge API.

Four modes, selected by AUTH_MODE:

  - none: no authentication (development only; rejected in production)
  - basic: HTTP Basic against the configured admin credentials, bcrypt
    verified
  - jwt: HS256 bearer tokens issued against the admin credentials
  - apikey: a single static bearer token, the usual choice for home
    automation platforms that store one long-lived secret

Middleware.Authenticate dispatches on the mode and places *Claims in the
request context under ClaimsContextKey. All credential comparisons are
constant time.
*/
package auth
