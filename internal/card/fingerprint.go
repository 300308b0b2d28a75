package card

import (
	"encoding/json"
	"fmt"

	"github.com/plexdeck/plexdeck/internal/statestore"
)

// absentValue marks a watched entity that is missing from a snapshot.
// It starts with a NUL byte so it can never collide with a JSON-serialized
// present value; entity removal is therefore always a relevant change.
const absentValue = "\x00absent"

// Fingerprint maps each watched entity identifier to a serialized
// representation of its (state, attributes) pair, captured at one point in
// time. Immutable once built.
type Fingerprint map[string]string

// Equal reports structural equality: both fingerprints cover the same key
// set and every key maps to the identical serialized value.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if len(f) != len(other) {
		return false
	}
	for id, v := range f {
		ov, ok := other[id]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// entityValue is the serialized shape of one watched entity. Encoding via
// encoding/json gives deterministic output: struct fields in declaration
// order, map keys sorted.
type entityValue struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

func serializeEntity(e statestore.Entity) string {
	data, err := json.Marshal(entityValue{State: e.State, Attributes: e.Attributes})
	if err != nil {
		// Attribute bags come out of a JSON decoder, so this should be
		// unreachable; fall back to a stable textual form rather than fail.
		return fmt.Sprintf("\x00unserializable:%s:%v", e.State, e.Attributes)
	}
	return string(data)
}

// Tracker decides whether an external state push is worth re-rendering
// for. It owns exactly one "last accepted" fingerprint, replaced once per
// accepted cycle via Commit. One Tracker belongs to one card instance;
// nothing here is process-global, so independent dashboards never
// interfere.
type Tracker struct {
	watched []string

	last    Fingerprint
	hasLast bool
	pending Fingerprint

	// reconciling guards against re-entrant pushes: a render must never
	// trigger a nested accept while a reconcile cycle is in progress.
	reconciling bool
}

// NewTracker creates a tracker watching the entities named by cfg.
func NewTracker(cfg *Config) *Tracker {
	return &Tracker{watched: cfg.WatchedEntities()}
}

// Fingerprint builds the comparable fingerprint of snap, covering exactly
// the watched identifiers. Entities absent from the snapshot serialize to
// a distinct sentinel.
func (t *Tracker) Fingerprint(snap statestore.Snapshot) Fingerprint {
	fp := make(Fingerprint, len(t.watched))
	for _, id := range t.watched {
		if e, ok := snap.Get(id); ok {
			fp[id] = serializeEntity(e)
		} else {
			fp[id] = absentValue
		}
	}
	return fp
}

// ShouldAccept reports whether snap differs from the last accepted update
// in any watched entity. The first update is always accepted. An accepted
// fingerprint is parked as pending; the caller commits it with Commit once
// the reconcile cycle using it has finished.
//
// Re-entrant calls (a push arriving while a reconcile is in progress) are
// rejected outright.
func (t *Tracker) ShouldAccept(snap statestore.Snapshot) bool {
	if t.reconciling {
		return false
	}

	fp := t.Fingerprint(snap)

	if !t.hasLast {
		t.pending = fp
		return true
	}

	// Cheap cardinality check first; both sides cover the watched set so a
	// size mismatch only occurs after reconfiguration, but it is free to
	// test and catches the structural case immediately.
	if len(fp) != len(t.last) {
		t.pending = fp
		return true
	}

	for _, id := range t.watched {
		if fp[id] != t.last[id] {
			t.pending = fp
			return true
		}
	}

	return false
}

// Commit promotes the pending fingerprint to the accepted baseline.
// Called exactly once per accepted cycle, after the renderer has finished
// with the update. Committing with nothing pending is a no-op.
func (t *Tracker) Commit() {
	if t.pending == nil {
		return
	}
	t.last = t.pending
	t.pending = nil
	t.hasLast = true
}

// BeginReconcile marks a reconcile cycle as in progress. It returns false
// if one is already running, in which case the caller must not reconcile.
func (t *Tracker) BeginReconcile() bool {
	if t.reconciling {
		return false
	}
	t.reconciling = true
	return true
}

// EndReconcile clears the in-progress flag.
func (t *Tracker) EndReconcile() {
	t.reconciling = false
}
