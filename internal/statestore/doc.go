// Package statestore holds the mirrored entity state that the dashboard
// reads from.
//
// The store is owned by the host (the Home Assistant client writes into
// it); the card core only ever reads immutable Snapshot views of it. A
// Snapshot is a plain map copy taken under the store lock, so reconcile
// cycles never observe a half-applied push.
package statestore
