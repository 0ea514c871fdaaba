// Package catalog keeps the filtered, sorted view of installed apps that
// the launcher displays. Every reload refetches the full list; state
// changes refilter the cached list.
package catalog
