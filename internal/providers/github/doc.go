// Package github looks up public repository metadata for GitHub imports.
package github
