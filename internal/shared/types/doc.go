// Package types provides shared data structures for the launcher backend.
//
// Core Types:
//   - App: an installed application record (the catalog row)
//   - AppFile: one file extracted from an imported archive
//   - Setting: a persisted key/value preference
//   - SyncEvent: an entry in the append-only mutation log
//   - UsageTally: launches per app per local calendar day
//   - StoreEntry: an app-store listing
//   - Draft: an import result that has not been installed yet
//
// Errors shared by every layer (validation, storage, import and launch
// failures) live in errors.go and are matched with errors.Is / errors.As.
//
// Example Usage:
//
//	draft := &types.Draft{
//	    App:    types.App{Name: "Calculator", Type: types.AppTypeHTML},
//	    Source: types.AppTypeHTML,
//	}
//	id, err := store.InstallApp(ctx, draft)
package types
