// Package config loads launcher configuration.
//
// Values come from environment variables (envconfig) or from a YAML or
// TOML file passed with -config. Defaults match a single-user local
// install: the database lives next to the binary and the server only
// listens on loopback.
package config
