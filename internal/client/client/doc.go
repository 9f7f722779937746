// Package client contains the CLI's building blocks for talking to the
// tube-v API.
//
// # Overview
//
//  1. The Client interface and its HTTP implementation (HTTPClient), which
//     sends bearer tokens, transparently refreshes an expired access token
//     once per call, and reports rotated tokens to a callback.
//  2. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     file migrated with embedded goose migrations.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx replies are *APIError and
// match ErrUnauthorized for 401. Calls that need a session return
// ErrNotLoggedIn when no access token is held.
package client
