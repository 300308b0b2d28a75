// Package protocol implements the Home Assistant websocket message
// envelope.
//
// Every message on the wire is a JSON object. The server speaks first with
// auth_required; the client answers with an access token and receives
// auth_ok or auth_invalid. After authentication each client command
// carries a monotonically increasing id, and the server replies with a
// result message bearing the same id. Event subscriptions additionally
// deliver event messages tagged with the subscription's command id.
//
// plexdeck uses four commands: get_states (initial mirror fill),
// subscribe_events (state_changed pushes), call_service (fire-and-forget
// dispatches) and ping (keepalive). The package defines typed constructors
// for outgoing messages and a two-stage parser for incoming ones: the
// envelope first, then the per-type payload.
package protocol
