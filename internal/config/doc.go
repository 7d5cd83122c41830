// Package config provides configuration loading for autoroute projects.
//
// The configuration is stored at the project root in autoroute.json,
// autoroute.yaml (or .yml) or autoroute.toml, probed in that order. A project
// without a configuration file gets the defaults, so the tool works with the
// conventional layout out of the box:
//
//	src/
//	├── components/   barrels for uppercase components
//	├── modules/      barrels for uppercase modules
//	├── pages/        routed pages and page groups
//	└── routes.js     generated route table
//
// # Configuration File Structure
//
//	{
//	  "src": "src",
//	  "paths": {
//	    "pages": "src/pages",
//	    "components": "src/components",
//	    "modules": "src/modules"
//	  },
//	  "routes": "src/routes.js",
//	  "manifest": "src/routes.json",
//	  "conventions": {
//	    "extension": ".svelte",
//	    "dispatcher": "Index",
//	    "defaultVariant": "home",
//	    "notFound": "E404"
//	  },
//	  "dev": {
//	    "host": "localhost",
//	    "port": 8080,
//	    "poll": "250ms"
//	  }
//	}
//
// A .env file next to the configuration is loaded first; AUTOROUTE_HOST,
// AUTOROUTE_PORT and AUTOROUTE_POLL override the file values.
package config
