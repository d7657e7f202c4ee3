// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
Package services adapts bridge components to suture's Serve contract.

Each wrapper takes a small interface instead of the concrete component, so
this package imports none of the packages it supervises and tests can plug
in fakes. The wrappers translate three lifecycle shapes:

  - blocking run loops (http.Server.ListenAndServe, Hub.RunWithContext)
  - Start/Stop managers (the poll coordinator)
  - setup-then-shutdown pipelines (the event bus)

A wrapper returns ctx.Err() on clean shutdown and a real error on failure,
which is what suture keys its restart decisions on.
*/
package services
