// Package errors provides coded, categorized errors for autoroute.
//
// Every failure the generator can report has a registered code that maps to a
// category, a short message and a longer explanation:
//
//	E1xx  config    configuration file discovery and parsing
//	E2xx  generate  naming collisions and malformed convention paths
//	E3xx  fs        transient filesystem failures
//	E4xx  compile   diagnostics from the external component compiler
//
// # Usage
//
//	err := errors.New("E201").
//	    WithDetail(`"a-b.svelte" and "a_b.svelte" both export a_b`).
//	    WithSuggestion("Rename one of the files")
//
//	fmt.Fprint(os.Stderr, err.Format())
//
// Configuration errors are logged and the previous generated output is kept;
// transient errors are swallowed by the regeneration loop. Use
// IsConfiguration and IsTransient to tell them apart.
package errors
