// Package server assembles the launcher: it opens the store, builds the
// import, catalog, launch and backup services and mounts them on a gin
// router with the middleware stack.
package server
