// Package convention infers the role of a project path from its name and
// location.
//
// Three roots carry meaning:
//
//	src/pages/        routed pages
//	  About.svelte      standalone page  → /about
//	  Home.svelte       standalone page  → /
//	  config/           page group
//	    Index.svelte      dispatcher     → /config/:page
//	    +home.svelte      variant "home"
//	    +system.svelte    variant "system"
//	src/components/   uppercase components, re-exported by a barrel
//	src/modules/      uppercase modules, re-exported by a barrel
//
// Classify is pure and total: anything it does not recognize, including
// dotfiles and foreign extensions, is Ignored. The manglers turn basenames
// into export identifiers.
package convention
