package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/plexdeck/plexdeck/internal/statestore"
)

// ParseEnvelope decodes the routing envelope of an incoming message.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("message missing type field")
	}
	return &env, nil
}

// StateChange is a decoded state_changed event. NewState is nil when the
// entity was removed.
type StateChange struct {
	EntityID string
	OldState *statestore.Entity
	NewState *statestore.Entity
}

// Removed reports whether the change removed the entity.
func (c *StateChange) Removed() bool {
	return c.NewState == nil
}

// stateChangedEvent mirrors the wire shape of a state_changed event.
type stateChangedEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		EntityID string             `json:"entity_id"`
		OldState *statestore.Entity `json:"old_state"`
		NewState *statestore.Entity `json:"new_state"`
	} `json:"data"`
}

// ParseStateChange decodes the event payload of an envelope. It returns
// (nil, nil) for event types other than state_changed; the card does not
// subscribe to them, but a server is free to send what it likes.
func ParseStateChange(env *Envelope) (*StateChange, error) {
	if env.Type != TypeEvent {
		return nil, fmt.Errorf("not an event message: %s", env.Type)
	}

	var ev stateChangedEvent
	if err := json.Unmarshal(env.Event, &ev); err != nil {
		return nil, fmt.Errorf("malformed event payload: %w", err)
	}
	if ev.EventType != EventStateChanged {
		return nil, nil
	}

	change := &StateChange{
		EntityID: ev.Data.EntityID,
		OldState: ev.Data.OldState,
		NewState: ev.Data.NewState,
	}
	// Some producers omit entity_id at the top of data; fall back to the
	// new or old state's own identifier.
	if change.EntityID == "" {
		if change.NewState != nil {
			change.EntityID = change.NewState.EntityID
		} else if change.OldState != nil {
			change.EntityID = change.OldState.EntityID
		}
	}
	return change, nil
}

// ParseStates decodes a get_states result payload into entity records.
func ParseStates(env *Envelope) ([]statestore.Entity, error) {
	if env.Type != TypeResult {
		return nil, fmt.Errorf("not a result message: %s", env.Type)
	}
	if env.Success != nil && !*env.Success {
		if env.Error != nil {
			return nil, fmt.Errorf("get_states failed: %s: %s", env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("get_states failed")
	}

	var entities []statestore.Entity
	if err := json.Unmarshal(env.Result, &entities); err != nil {
		return nil, fmt.Errorf("malformed states payload: %w", err)
	}
	return entities, nil
}
