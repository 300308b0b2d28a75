package hasstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/plexdeck/plexdeck/internal/protocol"
	"github.com/plexdeck/plexdeck/internal/statestore"
)

// ServiceCall records one call_service command the server received.
type ServiceCall struct {
	Domain  string
	Service string
	Data    map[string]any
}

// Server is a scripted Home Assistant websocket endpoint.
type Server struct {
	httpServer *httptest.Server
	upgrader   websocket.Upgrader
	token      string

	mu       sync.Mutex
	states   map[string]statestore.Entity
	calls    []ServiceCall
	sessions map[*session]struct{}

	callCh chan ServiceCall
}

type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	// subscription id for state_changed, zero until subscribed
	subscriptionID uint64
}

// NewServer starts a server that accepts token and initially reports the
// given entity states.
func NewServer(token string, states []statestore.Entity) *Server {
	s := &Server{
		token:    token,
		states:   make(map[string]statestore.Entity, len(states)),
		sessions: make(map[*session]struct{}),
		callCh:   make(chan ServiceCall, 16),
	}
	for _, e := range states {
		s.states[e.EntityID] = e
	}
	s.httpServer = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the server's http base URL (the client maps it to ws).
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// Calls returns a copy of the recorded service calls.
func (s *Server) Calls() []ServiceCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ServiceCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// WaitForCall blocks until a service call arrives or the timeout expires.
func (s *Server) WaitForCall(timeout time.Duration) (ServiceCall, bool) {
	select {
	case call := <-s.callCh:
		return call, true
	case <-time.After(timeout):
		return ServiceCall{}, false
	}
}

// PushState updates an entity and delivers a state_changed event to every
// subscribed session.
func (s *Server) PushState(e statestore.Entity) {
	s.mu.Lock()
	old, had := s.states[e.EntityID]
	s.states[e.EntityID] = e
	sessions := s.subscribedLocked()
	s.mu.Unlock()

	var oldState *statestore.Entity
	if had {
		oldState = &old
	}
	s.broadcast(sessions, e.EntityID, oldState, &e)
}

// RemoveEntity deletes an entity and delivers the removal event.
func (s *Server) RemoveEntity(id string) {
	s.mu.Lock()
	old, had := s.states[id]
	delete(s.states, id)
	sessions := s.subscribedLocked()
	s.mu.Unlock()

	if !had {
		return
	}
	s.broadcast(sessions, id, &old, nil)
}

func (s *Server) subscribedLocked() []*session {
	out := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		if sess.subscriptionID != 0 {
			out = append(out, sess)
		}
	}
	return out
}

func (s *Server) broadcast(sessions []*session, entityID string, oldState, newState *statestore.Entity) {
	for _, sess := range sessions {
		event := map[string]any{
			"id":   sess.subscriptionID,
			"type": protocol.TypeEvent,
			"event": map[string]any{
				"event_type": protocol.EventStateChanged,
				"data": map[string]any{
					"entity_id": entityID,
					"old_state": oldState,
					"new_state": newState,
				},
			},
		}
		sess.write(event)
	}
}

func (sess *session) write(v any) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	_ = sess.conn.WriteJSON(v)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sess := &session{conn: conn}
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
		conn.Close()
	}()

	// Handshake: challenge, then verify the token.
	sess.write(map[string]any{"type": protocol.TypeAuthRequired, "ha_version": "2024.6.0"})

	var auth protocol.AuthMessage
	if err := conn.ReadJSON(&auth); err != nil {
		return
	}
	if auth.Type != protocol.TypeAuth || auth.AccessToken != s.token {
		sess.write(map[string]any{"type": protocol.TypeAuthInvalid, "message": "Invalid access token"})
		return
	}
	sess.write(map[string]any{"type": protocol.TypeAuthOK, "ha_version": "2024.6.0"})

	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()

	for {
		var cmd protocol.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}

		switch cmd.Type {
		case protocol.TypeGetStates:
			s.mu.Lock()
			states := make([]statestore.Entity, 0, len(s.states))
			for _, e := range s.states {
				states = append(states, e)
			}
			s.mu.Unlock()
			raw, _ := json.Marshal(states)
			sess.write(map[string]any{
				"id": cmd.ID, "type": protocol.TypeResult,
				"success": true, "result": json.RawMessage(raw),
			})

		case protocol.TypeSubscribeEvents:
			s.mu.Lock()
			sess.subscriptionID = cmd.ID
			s.mu.Unlock()
			sess.write(map[string]any{"id": cmd.ID, "type": protocol.TypeResult, "success": true})

		case protocol.TypeCallService:
			call := ServiceCall{Domain: cmd.Domain, Service: cmd.Service, Data: cmd.Data}
			s.mu.Lock()
			s.calls = append(s.calls, call)
			s.mu.Unlock()
			select {
			case s.callCh <- call:
			default:
			}
			sess.write(map[string]any{"id": cmd.ID, "type": protocol.TypeResult, "success": true})

		case protocol.TypePing:
			sess.write(map[string]any{"id": cmd.ID, "type": protocol.TypePong})

		default:
			sess.write(map[string]any{
				"id": cmd.ID, "type": protocol.TypeResult, "success": false,
				"error": map[string]any{"code": "unknown_command", "message": "unsupported"},
			})
		}
	}
}
