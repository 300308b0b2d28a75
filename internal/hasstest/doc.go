// Package hasstest provides an in-process Home Assistant websocket server
// for tests.
//
// The server speaks just enough of the websocket API for the client and
// dashboard tests: the auth handshake, get_states, subscribe_events,
// call_service and ping. Tests seed it with entity states, push
// state_changed events at will, and inspect the service calls it
// received.
package hasstest
