// Package server runs the shelf HTTP service.
//
// One listener serves three groups of routes:
//
//   - /health for liveness checks
//   - /api/... JSON endpoints for books, scanning and the profile
//   - the browser UI from package webui
//
// Run blocks until its context is cancelled, then shuts the HTTP server
// down gracefully and closes the store.
package server
