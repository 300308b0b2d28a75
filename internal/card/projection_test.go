package card

import (
	"reflect"
	"testing"

	"github.com/plexdeck/plexdeck/internal/statestore"
)

func sixSlotConfig() *Config {
	cfg := &Config{
		StatusEntity: "sensor.plex_search_status",
		ResultEntities: []string{
			"sensor.plex_result_1",
			"sensor.plex_result_2",
			"sensor.plex_result_3",
			"sensor.plex_result_4",
			"sensor.plex_result_5",
			"sensor.plex_result_6",
		},
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

func TestSixSlotProjection(t *testing.T) {
	cfg := sixSlotConfig()

	// Slots 1 and 3 carry results, the rest are empty.
	snap := statestore.Snapshot{}
	states := []string{"Inception (2010)", "Empty", "Dune (2021)", "Empty", "Empty", "Empty"}
	for i, id := range cfg.ResultEntities {
		attrs := map[string]any{"available": false}
		if i == 0 || i == 2 {
			attrs = map[string]any{"available": true, "rating_key": "rk", "media_type": "movie"}
		}
		snap[id] = statestore.Entity{EntityID: id, State: states[i], Attributes: attrs}
	}

	results := Project(snap, cfg)
	if len(results) != 2 {
		t.Fatalf("Project() yielded %d results, want 2", len(results))
	}
	if results[0].Title != "Inception (2010)" || results[1].Title != "Dune (2021)" {
		t.Errorf("projection order wrong: %q, %q", results[0].Title, results[1].Title)
	}
	if results[0].Slot != 1 || results[1].Slot != 3 {
		t.Errorf("slot positions = %d, %d; want 1, 3", results[0].Slot, results[1].Slot)
	}
}

func TestProjectionIdempotent(t *testing.T) {
	cfg := sixSlotConfig()
	snap := statestore.Snapshot{
		"sensor.plex_result_1": {
			EntityID: "sensor.plex_result_1",
			State:    "Severance - Season 1 - Good News About Hell",
			Attributes: map[string]any{
				"available":         true,
				"rating_key":        "5551",
				"media_type":        "episode",
				"grandparent_title": "Severance",
				"parent_title":      "Season 1",
				"index":             float64(1),
				"parent_index":      float64(1),
			},
		},
	}

	first := Project(snap, cfg)
	second := Project(snap, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Error("projection of the same snapshot twice should be identical")
	}
}

func TestProjectionExclusions(t *testing.T) {
	cfg := sixSlotConfig()

	tests := []struct {
		name  string
		state string
		attrs map[string]any
		want  int
	}{
		{"available result", "Heat (1995)", map[string]any{"available": true}, 1},
		{"empty sentinel excluded", EmptySlotState, map[string]any{"available": true}, 0},
		{"unavailable excluded", "Heat (1995)", map[string]any{"available": false}, 0},
		{"missing available flag excluded", "Heat (1995)", map[string]any{}, 0},
		{"nil attributes excluded", "Heat (1995)", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := statestore.Snapshot{
				"sensor.plex_result_1": {
					EntityID:   "sensor.plex_result_1",
					State:      tt.state,
					Attributes: tt.attrs,
				},
			}
			if got := len(Project(snap, cfg)); got != tt.want {
				t.Errorf("Project() yielded %d results, want %d", got, tt.want)
			}
		})
	}
}

func TestProjectionFieldExtraction(t *testing.T) {
	cfg := sixSlotConfig()
	snap := statestore.Snapshot{
		"sensor.plex_result_1": {
			EntityID: "sensor.plex_result_1",
			State:    "Inception (2010)",
			Attributes: map[string]any{
				"available":             true,
				"rating_key":            float64(12345), // numeric ids happen
				"media_type":            "movie",
				"year":                  float64(2010),
				"rating":                8.8,
				"summary":               "A thief who steals corporate secrets.",
				"thumb":                 "/library/metadata/12345/thumb",
				"duration":              float64(8880000),
				"library_section_title": "Movies",
			},
		},
	}

	results := Project(snap, cfg)
	if len(results) != 1 {
		t.Fatalf("Project() yielded %d results, want 1", len(results))
	}

	r := results[0]
	if r.RatingKey != "12345" {
		t.Errorf("RatingKey = %q, want %q", r.RatingKey, "12345")
	}
	if r.Year != 2010 {
		t.Errorf("Year = %d, want 2010", r.Year)
	}
	if r.Rating != 8.8 {
		t.Errorf("Rating = %v, want 8.8", r.Rating)
	}
	if r.Duration != 8880000 {
		t.Errorf("Duration = %d, want 8880000", r.Duration)
	}
	if r.MediaType != MediaTypeMovie {
		t.Errorf("MediaType = %q, want %q", r.MediaType, MediaTypeMovie)
	}
	if r.LibrarySectionTitle != "Movies" {
		t.Errorf("LibrarySectionTitle = %q, want %q", r.LibrarySectionTitle, "Movies")
	}
}

func TestProjectStatus(t *testing.T) {
	cfg := sixSlotConfig()

	t.Run("present", func(t *testing.T) {
		snap := statestore.Snapshot{
			"sensor.plex_search_status": {
				EntityID: "sensor.plex_search_status",
				State:    "Found 4 results",
				Attributes: map[string]any{
					"result_count": float64(4),
					"last_query":   "inception",
				},
			},
		}
		status := ProjectStatus(snap, cfg)
		if status.Text != "Found 4 results" {
			t.Errorf("Text = %q", status.Text)
		}
		if status.ResultCount != 4 {
			t.Errorf("ResultCount = %d, want 4", status.ResultCount)
		}
		if status.LastQuery != "inception" {
			t.Errorf("LastQuery = %q, want %q", status.LastQuery, "inception")
		}
	})

	t.Run("absent entity", func(t *testing.T) {
		status := ProjectStatus(statestore.Snapshot{}, cfg)
		if status.Text == "" {
			t.Error("absent status entity should project a placeholder, not empty text")
		}
	})
}
