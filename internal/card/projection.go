package card

import (
	"fmt"
	"strconv"

	"github.com/plexdeck/plexdeck/internal/statestore"
)

// EmptySlotState is the state a result sensor reports when its slot holds
// no result.
const EmptySlotState = "Empty"

// Media types reported by the result sensors.
const (
	MediaTypeMovie   = "movie"
	MediaTypeShow    = "show"
	MediaTypeSeason  = "season"
	MediaTypeEpisode = "episode"
	MediaTypeArtist  = "artist"
	MediaTypeAlbum   = "album"
	MediaTypeTrack   = "track"
)

// DisplayResult is the read-only projection of one result slot entity into
// exactly the fields the view needs. Recomputed from scratch on every
// accepted update, never mutated in place.
type DisplayResult struct {
	Slot     int    // 1-based configured slot position
	EntityID string

	Title     string // formatted title reported as the sensor state
	RatingKey string // opaque playback identifier
	MediaType string
	Year      int
	Rating    float64
	Summary   string
	Thumb     string
	Duration  int64 // milliseconds

	LibrarySectionTitle string

	// Episode context, present only for media_type "episode"
	SeriesTitle string // grandparent_title
	SeasonTitle string // parent_title
	Index       int
	ParentIndex int
}

// StatusInfo is the projection of the search status entity.
type StatusInfo struct {
	Text        string
	ResultCount int
	LastQuery   string
}

// Project builds the ordered list of display results from the configured
// result slots in snap. Slot order follows configuration. Slots whose
// entity is absent, reports available=false, or holds the empty sentinel
// state are excluded.
//
// Projection is a pure function of (snap, cfg): calling it twice over the
// same snapshot yields identical lists.
func Project(snap statestore.Snapshot, cfg *Config) []DisplayResult {
	results := make([]DisplayResult, 0, len(cfg.ResultEntities))

	for i, id := range cfg.ResultEntities {
		e, ok := snap.Get(id)
		if !ok {
			continue
		}
		if e.State == EmptySlotState {
			continue
		}
		if !attrBool(e.Attributes, "available") {
			continue
		}

		results = append(results, DisplayResult{
			Slot:                i + 1,
			EntityID:            id,
			Title:               e.State,
			RatingKey:           attrString(e.Attributes, "rating_key"),
			MediaType:           attrString(e.Attributes, "media_type"),
			Year:                attrInt(e.Attributes, "year"),
			Rating:              attrFloat(e.Attributes, "rating"),
			Summary:             attrString(e.Attributes, "summary"),
			Thumb:               attrString(e.Attributes, "thumb"),
			Duration:            int64(attrInt(e.Attributes, "duration")),
			LibrarySectionTitle: attrString(e.Attributes, "library_section_title"),
			SeriesTitle:         attrString(e.Attributes, "grandparent_title"),
			SeasonTitle:         attrString(e.Attributes, "parent_title"),
			Index:               attrInt(e.Attributes, "index"),
			ParentIndex:         attrInt(e.Attributes, "parent_index"),
		})
	}

	return results
}

// ProjectStatus extracts the status entity's display fields. An absent
// status entity projects to a "Waiting" placeholder rather than an error;
// the integration may simply not have loaded yet.
func ProjectStatus(snap statestore.Snapshot, cfg *Config) StatusInfo {
	e, ok := snap.Get(cfg.StatusEntity)
	if !ok {
		return StatusInfo{Text: "Waiting for integration"}
	}
	return StatusInfo{
		Text:        e.State,
		ResultCount: attrInt(e.Attributes, "result_count"),
		LastQuery:   attrString(e.Attributes, "last_query"),
	}
}

// Defensive attribute extraction. Attribute bags are dynamic JSON; every
// known field is pulled out with an explicit type coercion and a zero
// default rather than passed through raw.

func attrString(attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func attrInt(attrs map[string]any, key string) int {
	switch v := attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		return 0
	default:
		return 0
	}
}

func attrFloat(attrs map[string]any, key string) float64 {
	switch v := attrs[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}

func attrBool(attrs map[string]any, key string) bool {
	switch v := attrs[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "True" || v == "on"
	default:
		return false
	}
}
