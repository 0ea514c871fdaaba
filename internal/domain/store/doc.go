// Package store persists the launcher's records in SQLite.
//
// One Store owns one database file and is shared by every component; it is
// created at startup and passed explicitly. Tables:
//
//	apps          application records
//	app_files     files extracted from archive imports (cascade with apps)
//	settings      key/value preferences, values stored as JSON
//	sync_events   append-only mutation log with a synced flag
//	usage_tallies launches per local day and app
//	store_entries app-store listings
//
// Every mutating operation that emits a sync event does so inside the
// same transaction as the mutation. Subscribers are notified after commit.
// Failures are reported as *types.StorageError.
package store
