// Package gen synthesizes the generated modules of a project from its
// directory layout.
//
// Four kinds of output are produced:
//
//   - barrels: an index.js in every components and modules directory that
//     re-exports each component under its mangled name
//   - scope barrels: an index.js in every pages directory that makes the
//     component and module barrels importable from "./"
//   - page groups: for a pages directory holding "+variant" files, a variants
//     barrel (pages.js) mapping variant keys to components, plus a
//     dispatcher scaffold (Index.svelte) written once and then owned by the
//     user
//   - the route table: src/routes.js and its JSON manifest src/routes.json
//
// Every write is skipped when the file already holds the same bytes, so
// regenerating an unchanged tree touches nothing and bundlers watching the
// output are not woken.
package gen
