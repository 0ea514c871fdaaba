// Package main is the entry point for the app launcher backend.
//
// The server keeps installed web apps in a local SQLite database, imports
// new ones from HTML files, zip archives, URLs, GitHub repositories and
// PWA manifests, and launches them into named browsing contexts served
// back to the launcher UI.
//
// Configuration:
//   - Environment variables (12-factor)
//   - A YAML or TOML file given with -config
//   - CLI flags (override both)
//
// Usage:
//
//	# Defaults: 127.0.0.1:8000, ./launcher.db
//	./server
//
//	# Custom database and seed directory, development logging
//	./server -db ~/.sakai/launcher.db -seed ./apps -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
