// Package cli provides the interactive FreightDeck reference-data console.
//
// It wires configuration, the local SQLite snapshot store, the HTTP API client,
// and an interactive REPL on top of the shared entity cache. Typical flow:
// load the cached snapshot, reconcile with the server version, and execute
// user commands against the cache.
//
// Key features:
//   - List / Show cached entities per type
//   - Create entities through schema-driven drawer forms, including nested
//     creation flows spawned from reference dropdowns
//   - Edit / Delete with optimistic local cache updates
//   - Refresh (forced reconciliation) and cache inspection commands
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL, and runOverlays for details.
package cli
