// Package backup moves launcher data in and out of the store: JSON
// snapshots, .sakaiprofile archives and the legacy key-value format.
package backup
