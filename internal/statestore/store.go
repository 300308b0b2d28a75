package statestore

import "sync"

// Entity is one external state record: the reported state string plus an
// arbitrary attribute bag. The card never mutates an Entity; attribute
// values are whatever the JSON decoder produced (strings, float64s, bools,
// nested slices/maps).
type Entity struct {
	EntityID   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// Snapshot is a point-in-time read view over the entity map. Lookups on a
// nil Snapshot behave as if every entity were absent.
type Snapshot map[string]Entity

// Get returns the entity for id and whether it was present in the snapshot.
func (s Snapshot) Get(id string) (Entity, bool) {
	e, ok := s[id]
	return e, ok
}

// Store is the host-owned mirror of the external entity states.
// The Home Assistant client writes into it from its read pump; the
// dashboard reads Snapshot copies from the bubbletea update loop.
type Store struct {
	mu       sync.RWMutex
	entities map[string]Entity
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entities: make(map[string]Entity)}
}

// Replace swaps in a full set of entities, discarding previous state.
// Used for the initial get_states result.
func (s *Store) Replace(entities []Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = make(map[string]Entity, len(entities))
	for _, e := range entities {
		s.entities[e.EntityID] = e
	}
}

// Apply upserts a single entity, or removes it when removed is true.
// Removal matters: the fingerprint tracker treats a vanished watched
// entity as a relevant change.
func (s *Store) Apply(e Entity, removed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if removed {
		delete(s.entities, e.EntityID)
		return
	}
	s.entities[e.EntityID] = e
}

// Snapshot returns a copy of the current entity map. The copy is shallow:
// attribute bags are shared, but by contract nothing downstream mutates
// them.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(Snapshot, len(s.entities))
	for id, e := range s.entities {
		snap[id] = e
	}
	return snap
}

// Len returns the number of entities currently mirrored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}
