// Package middleware provides gin middleware for the launcher API:
// CORS, per-client rate limiting, request ids and access logging.
package middleware
