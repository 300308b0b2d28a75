package card

import (
	"testing"

	"github.com/plexdeck/plexdeck/internal/statestore"
)

func watchConfig() *Config {
	cfg := &Config{
		StatusEntity: "sensor.plex_search_status",
		ResultEntities: []string{
			"sensor.plex_result_1",
			"sensor.plex_result_2",
		},
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

func snapWith(entities ...statestore.Entity) statestore.Snapshot {
	snap := make(statestore.Snapshot, len(entities))
	for _, e := range entities {
		snap[e.EntityID] = e
	}
	return snap
}

func TestFirstUpdateAlwaysAccepted(t *testing.T) {
	tracker := NewTracker(watchConfig())

	// Even a completely empty snapshot is accepted when no baseline exists.
	if !tracker.ShouldAccept(statestore.Snapshot{}) {
		t.Error("first update should be accepted unconditionally")
	}
}

func TestRedundantPushRejected(t *testing.T) {
	tracker := NewTracker(watchConfig())
	snap := snapWith(
		statestore.Entity{EntityID: "sensor.plex_search_status", State: "Found 2 results", Attributes: map[string]any{"result_count": float64(2)}},
		statestore.Entity{EntityID: "sensor.plex_result_1", State: "Inception (2010)", Attributes: map[string]any{"available": true, "rating_key": "1234"}},
		statestore.Entity{EntityID: "sensor.plex_result_2", State: "Empty", Attributes: map[string]any{"available": false}},
	)

	if !tracker.ShouldAccept(snap) {
		t.Fatal("first push should be accepted")
	}
	tracker.Commit()

	// Byte-identical push: same states, same attributes.
	same := snapWith(
		statestore.Entity{EntityID: "sensor.plex_search_status", State: "Found 2 results", Attributes: map[string]any{"result_count": float64(2)}},
		statestore.Entity{EntityID: "sensor.plex_result_1", State: "Inception (2010)", Attributes: map[string]any{"available": true, "rating_key": "1234"}},
		statestore.Entity{EntityID: "sensor.plex_result_2", State: "Empty", Attributes: map[string]any{"available": false}},
	)
	if tracker.ShouldAccept(same) {
		t.Error("identical push should be rejected")
	}
}

func TestChangedAttributeAccepted(t *testing.T) {
	tracker := NewTracker(watchConfig())
	base := snapWith(
		statestore.Entity{EntityID: "sensor.plex_search_status", State: "Ready"},
		statestore.Entity{EntityID: "sensor.plex_result_1", State: "Dune (2021)", Attributes: map[string]any{"available": true, "rating_key": "77"}},
	)
	if !tracker.ShouldAccept(base) {
		t.Fatal("first push should be accepted")
	}
	tracker.Commit()

	tests := []struct {
		name string
		snap statestore.Snapshot
	}{
		{
			name: "state change",
			snap: snapWith(
				statestore.Entity{EntityID: "sensor.plex_search_status", State: "Searching"},
				statestore.Entity{EntityID: "sensor.plex_result_1", State: "Dune (2021)", Attributes: map[string]any{"available": true, "rating_key": "77"}},
			),
		},
		{
			name: "attribute value change",
			snap: snapWith(
				statestore.Entity{EntityID: "sensor.plex_search_status", State: "Ready"},
				statestore.Entity{EntityID: "sensor.plex_result_1", State: "Dune (2021)", Attributes: map[string]any{"available": true, "rating_key": "78"}},
			),
		},
		{
			name: "attribute added",
			snap: snapWith(
				statestore.Entity{EntityID: "sensor.plex_search_status", State: "Ready"},
				statestore.Entity{EntityID: "sensor.plex_result_1", State: "Dune (2021)", Attributes: map[string]any{"available": true, "rating_key": "77", "year": float64(2021)}},
			),
		},
		{
			name: "watched entity removed",
			snap: snapWith(
				statestore.Entity{EntityID: "sensor.plex_search_status", State: "Ready"},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh := NewTracker(watchConfig())
			if !fresh.ShouldAccept(base) {
				t.Fatal("baseline push should be accepted")
			}
			fresh.Commit()
			if !fresh.ShouldAccept(tt.snap) {
				t.Error("changed push should be accepted")
			}
		})
	}
}

func TestUnrelatedEntityIgnored(t *testing.T) {
	tracker := NewTracker(watchConfig())
	snap := snapWith(
		statestore.Entity{EntityID: "sensor.plex_search_status", State: "Ready"},
	)
	if !tracker.ShouldAccept(snap) {
		t.Fatal("first push should be accepted")
	}
	tracker.Commit()

	// A heartbeat entity outside the watched set churns; the card must not care.
	noisy := snapWith(
		statestore.Entity{EntityID: "sensor.plex_search_status", State: "Ready"},
		statestore.Entity{EntityID: "sensor.uptime", State: "123456"},
	)
	if tracker.ShouldAccept(noisy) {
		t.Error("unwatched entity change should not trigger acceptance")
	}
}

func TestAbsentSentinelNeverEqualsPresent(t *testing.T) {
	tracker := NewTracker(watchConfig())

	// An entity whose serialized value could masquerade as "absent".
	snap := snapWith(
		statestore.Entity{EntityID: "sensor.plex_search_status", State: absentValue},
	)
	fp := tracker.Fingerprint(snap)
	if fp["sensor.plex_search_status"] == absentValue {
		t.Error("present entity must never serialize to the absent sentinel")
	}
	if fp["sensor.plex_result_1"] != absentValue {
		t.Error("missing entity should serialize to the absent sentinel")
	}
}

func TestCommitOnlyAfterAccept(t *testing.T) {
	tracker := NewTracker(watchConfig())
	snap := snapWith(statestore.Entity{EntityID: "sensor.plex_search_status", State: "Ready"})

	if !tracker.ShouldAccept(snap) {
		t.Fatal("first push should be accepted")
	}
	// Without Commit the baseline is still unset, so the same push is
	// accepted again (the caller has not finished the cycle).
	if !tracker.ShouldAccept(snap) {
		t.Error("uncommitted acceptance should not update the baseline")
	}
	tracker.Commit()
	if tracker.ShouldAccept(snap) {
		t.Error("after Commit the identical push should be rejected")
	}

	// A stray Commit with nothing pending must not disturb the baseline.
	tracker.Commit()
	if tracker.ShouldAccept(snap) {
		t.Error("no-op Commit should leave the baseline intact")
	}
}

func TestReentrantPushRejected(t *testing.T) {
	tracker := NewTracker(watchConfig())
	snap := snapWith(statestore.Entity{EntityID: "sensor.plex_search_status", State: "Ready"})

	if !tracker.BeginReconcile() {
		t.Fatal("first BeginReconcile should succeed")
	}
	if tracker.BeginReconcile() {
		t.Error("nested BeginReconcile should be rejected")
	}
	if tracker.ShouldAccept(snap) {
		t.Error("push during an in-progress reconcile should be rejected")
	}
	tracker.EndReconcile()

	if !tracker.ShouldAccept(snap) {
		t.Error("push after reconcile finished should be accepted")
	}
}

func TestFingerprintEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Fingerprint
		want bool
	}{
		{"both empty", Fingerprint{}, Fingerprint{}, true},
		{"identical", Fingerprint{"x": "1", "y": "2"}, Fingerprint{"x": "1", "y": "2"}, true},
		{"value mismatch", Fingerprint{"x": "1"}, Fingerprint{"x": "2"}, false},
		{"key set mismatch", Fingerprint{"x": "1"}, Fingerprint{"y": "1"}, false},
		{"cardinality mismatch", Fingerprint{"x": "1", "y": "2"}, Fingerprint{"x": "1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}
