// Package launch records app launches and hands the resulting document or
// URL to a Presenter, the port through which the UI opens browsing
// contexts. It also manages the multi-frame grid.
//
// A Presenter owns every document it is given: it releases the handle
// exactly once, either when the context reports it has loaded (for
// sources with ReleaseOnLoad) or when the context is closed.
package launch
