// Package http exposes the launcher over a gin REST API and implements the
// launch presenter as a registry of named browsing contexts served at
// /contexts/:name.
package http
