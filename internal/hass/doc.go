// Package hass is the Home Assistant websocket client behind the
// dashboard.
//
// The client plays two roles from the card's point of view:
//
//   - State store writer: it fills the statestore mirror from an initial
//     get_states call and keeps it current from state_changed events,
//     signalling the host after every write. Pushes are delivered at
//     whatever frequency the server produces them, redundant ones
//     included; deciding whether a push matters is the fingerprint
//     tracker's job, not the client's.
//
//   - Command dispatcher: Dispatch sends a call_service message and
//     returns as soon as it is on the wire. Backend failures surface as
//     the integration's own events and eventual state pushes, never as a
//     synchronous error to the caller.
//
// The client reconnects with exponential backoff and re-runs the
// get_states + subscribe handshake after every reconnect, so a dashboard
// left running across a server restart heals on its own.
package hass
