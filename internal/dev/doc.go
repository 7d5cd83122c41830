// Package dev runs the watch-mode regeneration loop.
//
// The loop consists of:
//
//   - Watcher: polls the component, module and page roots and reports
//     add, change, remove, addDir and removeDir events
//   - Controller: maps each event to the synthesizers it affects and runs
//     them, one event at a time
//   - Hub: pushes regeneration notices to websocket clients
//   - API: serves the route table, path resolution, status and metrics, and
//     relays compiler diagnostics posted by the bundler plugin
//   - Server: wires the above together after an initial full generation
//
// # States
//
// The controller starts in the Scanning state. Events delivered during the
// watcher's initial scan are dropped since the full generation that precedes
// it has already covered them. The watcher's ready callback moves the
// controller to Active, after which every event is handled.
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{
//	    Config: cfg,
//	    Logger: logger,
//	})
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Notification Protocol
//
// Clients connect to /_autoroute/ws. Messages are JSON-encoded:
//
//	{"type": "routes", "path": "src/routes.js"}
//	{"type": "barrel", "path": "src/components/index.js"}
//	{"type": "error", "path": "src/pages", "error": "..."}
package dev
