// Package ws streams store change notifications to browser clients over
// WebSocket.
package ws
