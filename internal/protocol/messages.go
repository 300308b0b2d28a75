package protocol

import (
	"encoding/json"
	"sync/atomic"
)

// Message types exchanged with the server.
const (
	TypeAuthRequired = "auth_required"
	TypeAuth         = "auth"
	TypeAuthOK       = "auth_ok"
	TypeAuthInvalid  = "auth_invalid"

	TypeGetStates       = "get_states"
	TypeSubscribeEvents = "subscribe_events"
	TypeCallService     = "call_service"
	TypePing            = "ping"
	TypePong            = "pong"

	TypeResult = "result"
	TypeEvent  = "event"
)

// EventStateChanged is the only event type plexdeck subscribes to.
const EventStateChanged = "state_changed"

// Command ids must increase within a connection. A single process-wide
// counter satisfies that for every connection the process ever opens,
// including reconnects.
var commandIDCounter uint64

// NextID returns the next command id.
func NextID() uint64 {
	return atomic.AddUint64(&commandIDCounter, 1)
}

// AuthMessage answers the server's auth_required challenge.
type AuthMessage struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token"`
}

// NewAuth builds the authentication message for token.
func NewAuth(token string) AuthMessage {
	return AuthMessage{Type: TypeAuth, AccessToken: token}
}

// Command is the envelope for id-tagged client commands.
type Command struct {
	ID        uint64         `json:"id"`
	Type      string         `json:"type"`
	EventType string         `json:"event_type,omitempty"`
	Domain    string         `json:"domain,omitempty"`
	Service   string         `json:"service,omitempty"`
	Data      map[string]any `json:"service_data,omitempty"`
}

// NewGetStates builds a get_states command.
func NewGetStates() Command {
	return Command{ID: NextID(), Type: TypeGetStates}
}

// NewSubscribeStateChanges builds a subscribe_events command for
// state_changed events.
func NewSubscribeStateChanges() Command {
	return Command{ID: NextID(), Type: TypeSubscribeEvents, EventType: EventStateChanged}
}

// NewCallService builds a call_service command. The caller never waits for
// the paired result beyond transport-level success.
func NewCallService(domain, service string, data map[string]any) Command {
	return Command{ID: NextID(), Type: TypeCallService, Domain: domain, Service: service, Data: data}
}

// NewPing builds a keepalive ping.
func NewPing() Command {
	return Command{ID: NextID(), Type: TypePing}
}

// Envelope is the first-stage decode of any incoming message: just enough
// to route it. Payload fields stay raw until the second stage.
type Envelope struct {
	ID      uint64          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Success *bool           `json:"success,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Event   json.RawMessage `json:"event,omitempty"`
	Error   *ResultError    `json:"error,omitempty"`
	Message string          `json:"message,omitempty"` // auth_invalid reason
}

// ResultError is the server-side failure detail attached to an
// unsuccessful result.
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
