// Package importer turns archives, HTML files, URLs, GitHub repositories
// and progressive web apps into validated drafts ready for installation.
//
// Each source-specific procedure returns a *types.Draft. Structurally
// invalid input fails fast; soft failures such as an unreachable URL or a
// missing manifest degrade the draft and are logged.
package importer
