// Package router resolves browser pathnames against a generated route table
// and drives client-side navigation.
//
// The table is the ordered list written by the autoroute generator to
// src/routes.json. Each entry pairs a URL pattern with the identifier of the
// page component that renders it:
//
//	[
//	  {"path": "/",             "page": "Home"},
//	  {"path": "/about",        "page": "About"},
//	  {"path": "/config/:page", "page": "ConfigIndex"}
//	]
//
// # Patterns
//
// A pattern is a slash separated list of segments. A segment starting with a
// colon is a parameter; every other segment must match literally. A run of
// consecutive parameters at the end of a pattern also matches when the
// pathname stops early, so "/config" resolves to the config dispatcher with
// no page parameter and the dispatcher falls back to its default variant.
//
// # Resolution
//
// Every entry is tested in table order and the last matching entry wins.
// The generator orders the table so that deeper and more specific routes
// come later, which makes "/config/system" resolve to "/config/:page" with
// page=system while "/" only ever resolves to the home page.
//
// # Navigation
//
// A Router binds to a Window (the browser window in production, a
// MemoryWindow in tests), intercepts same-document link clicks, pushes
// history entries, and re-resolves on popstate. Resolving the pathname that
// is already current is a no-op.
package router
