package card

import (
	"testing"
)

// recordingDispatcher captures dispatched calls for assertions.
type recordingDispatcher struct {
	calls []dispatchedCall
}

type dispatchedCall struct {
	domain  string
	service string
	data    map[string]any
}

func (d *recordingDispatcher) Dispatch(domain, service string, data map[string]any) error {
	d.calls = append(d.calls, dispatchedCall{domain: domain, service: service, data: data})
	return nil
}

func newTestActions() (*Actions, *recordingDispatcher) {
	dispatcher := &recordingDispatcher{}
	cfg := &Config{StatusEntity: "sensor.plex_search_status"}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return NewActions(dispatcher, cfg), dispatcher
}

func TestSearchDispatchesTrimmedQuery(t *testing.T) {
	actions, dispatcher := newTestActions()

	if err := actions.Search("  inception  "); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(dispatcher.calls) != 1 {
		t.Fatalf("dispatched %d calls, want 1", len(dispatcher.calls))
	}
	call := dispatcher.calls[0]
	if call.domain != Domain || call.service != ServiceSearch {
		t.Errorf("dispatched %s.%s, want %s.%s", call.domain, call.service, Domain, ServiceSearch)
	}
	if call.data["query"] != "inception" {
		t.Errorf("query = %v, want %q", call.data["query"], "inception")
	}
	if call.data["limit"] != DefaultSearchLimit {
		t.Errorf("limit = %v, want %d", call.data["limit"], DefaultSearchLimit)
	}
}

func TestEmptyQueryRejectedLocally(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n"} {
		actions, dispatcher := newTestActions()

		err := actions.Search(query)
		if err == nil {
			t.Fatalf("Search(%q) should fail", query)
		}
		if _, ok := IsLocalValidation(err); !ok {
			t.Errorf("Search(%q) error = %T, want LocalValidationError", query, err)
		}
		if len(dispatcher.calls) != 0 {
			t.Errorf("Search(%q) dispatched %d calls, want 0", query, len(dispatcher.calls))
		}
	}
}

func TestPlayWithoutPlayerRejectedLocally(t *testing.T) {
	actions, dispatcher := newTestActions()

	err := actions.Play("12345", "")
	if err == nil {
		t.Fatal("Play() without a player should fail")
	}
	lve, ok := IsLocalValidation(err)
	if !ok {
		t.Fatalf("error = %T, want LocalValidationError", err)
	}
	if lve.Warning == "" {
		t.Error("LocalValidationError should carry a user-visible warning")
	}
	if len(dispatcher.calls) != 0 {
		t.Errorf("dispatched %d calls, want 0", len(dispatcher.calls))
	}
}

func TestPlayDispatchesPayload(t *testing.T) {
	actions, dispatcher := newTestActions()

	if err := actions.Play("12345", "media_player.living_room"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	if len(dispatcher.calls) != 1 {
		t.Fatalf("dispatched %d calls, want 1", len(dispatcher.calls))
	}
	call := dispatcher.calls[0]
	if call.service != ServicePlayMedia {
		t.Errorf("service = %q, want %q", call.service, ServicePlayMedia)
	}
	if call.data["rating_key"] != "12345" {
		t.Errorf("rating_key = %v", call.data["rating_key"])
	}
	if call.data["player_entity_id"] != "media_player.living_room" {
		t.Errorf("player_entity_id = %v", call.data["player_entity_id"])
	}
}

func TestBrowseFamilyValidation(t *testing.T) {
	tests := []struct {
		name     string
		invoke   func(a *Actions) error
		wantCall string // expected service when valid, "" when rejection expected
	}{
		{"browse without library", func(a *Actions) error { return a.BrowseLibrary("", 0, 0, "") }, ""},
		{"browse valid", func(a *Actions) error { return a.BrowseLibrary("Movies", 0, 24, "titleSort") }, ServiceBrowseLibrary},
		{"on deck", func(a *Actions) error { return a.OnDeck(0) }, ServiceGetOnDeck},
		{"recently added", func(a *Actions) error { return a.RecentlyAdded(12) }, ServiceGetRecentlyAdded},
		{"genre without genre", func(a *Actions) error { return a.ByGenre("Movies", " ", 0) }, ""},
		{"genre valid", func(a *Actions) error { return a.ByGenre("Movies", "Sci-Fi", 0) }, ServiceGetByGenre},
		{"collections without library", func(a *Actions) error { return a.Collections("") }, ""},
		{"collections valid", func(a *Actions) error { return a.Collections("Movies") }, ServiceGetCollections},
		{"clear results", func(a *Actions) error { return a.ClearResults() }, ServiceClearResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions, dispatcher := newTestActions()
			err := tt.invoke(actions)

			if tt.wantCall == "" {
				if err == nil {
					t.Fatal("expected local rejection")
				}
				if _, ok := IsLocalValidation(err); !ok {
					t.Errorf("error = %T, want LocalValidationError", err)
				}
				if len(dispatcher.calls) != 0 {
					t.Errorf("dispatched %d calls, want 0", len(dispatcher.calls))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(dispatcher.calls) != 1 || dispatcher.calls[0].service != tt.wantCall {
				t.Errorf("dispatched %v, want one %s call", dispatcher.calls, tt.wantCall)
			}
		})
	}
}
