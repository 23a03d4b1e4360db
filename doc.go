// Package onotes is the composition root for the onotes reminder engine.
//
// It wires the domain store (notes, standalone reminders and their order)
// to a storage adapter, and exposes the scheduling runtime that turns the
// store's reminders into one-shot notifications.
//
// Features:
//
//   - **Single Document Store**: Notes, reminders and custom order persist as one document under a well-known key.
//   - **Pluggable Storage**: Filesystem (JSON or YAML, with external edit watching), diskv, SQLite and in-memory adapters.
//   - **Exactly-Once Delivery**: Each reminder id is delivered at most once per run, regardless of edits, reloads or dismissals.
//   - **Deterministic Tests**: The runtime accepts a virtual scheduler so time can be advanced by hand.
//
// Usage:
//
//	store, err := onotes.Open("~/.onotes", onotes.WithLogger(logger))
//	if err != nil { ... }
//
//	log := notify.NewLog()
//	rt := onotes.NewRuntime(store, log)
//	rt.Start(ctx)
package onotes
