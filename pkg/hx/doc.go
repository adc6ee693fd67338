// ABOUTME: Resource store package for game-audio resource graphs
// ABOUTME: Provides typed entries, the Store contract and file-backed stores
// Package hx models a typed, content-addressed graph of game-audio resource
// entries and the stores that hold them.
//
// Entries are keyed by a 64-bit content address (ID) and carry one of the
// payload types:
//   - EventResourceData: a trigger with a display name and one outgoing link
//   - WaveResourceData: a default link plus per-language variants
//   - ProgramResourceData: an ordered list of alternative links
//   - WaveFileObject: sample data (inline or in an external bank file)
//
// Stores are append-only for the lifetime of a session. Open dispatches on the
// file extension:
//
//	store, err := hx.Open("sounds.yaml") // or sounds.db
//	entry, ok := store.Entry(id)
//
// The package also defines the error taxonomy shared by the resolver, the
// converter and the playback engine (ErrNotFound, ErrInvalidClass, ...).
package hx
