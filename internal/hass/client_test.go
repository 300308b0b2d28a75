package hass

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plexdeck/plexdeck/internal/hasstest"
	"github.com/plexdeck/plexdeck/internal/statestore"
)

const testToken = "test-token"

func seedStates() []statestore.Entity {
	return []statestore.Entity{
		{EntityID: "sensor.plex_search_status", State: "Ready", Attributes: map[string]any{"result_count": float64(0)}},
		{EntityID: "sensor.plex_result_1", State: "Empty", Attributes: map[string]any{"available": false}},
	}
}

// startClient runs the client against srv and waits for the initial push.
func startClient(t *testing.T, srv *hasstest.Server) (*Client, *statestore.Store, context.CancelFunc) {
	t.Helper()

	store := statestore.NewStore()
	client, err := NewClient(srv.URL(), testToken, store)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = client.Run(ctx) }()

	select {
	case <-client.Pushes():
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("timed out waiting for initial state push")
	}

	return client, store, cancel
}

func TestClientPrimesStoreOnConnect(t *testing.T) {
	srv := hasstest.NewServer(testToken, seedStates())
	defer srv.Close()

	_, store, cancel := startClient(t, srv)
	defer cancel()

	snap := store.Snapshot()
	if e, ok := snap.Get("sensor.plex_search_status"); !ok || e.State != "Ready" {
		t.Errorf("status entity = %+v, present=%v", e, ok)
	}
	if _, ok := snap.Get("sensor.plex_result_1"); !ok {
		t.Error("result entity missing after prime")
	}
}

func TestClientAppliesStateChanges(t *testing.T) {
	srv := hasstest.NewServer(testToken, seedStates())
	defer srv.Close()

	client, store, cancel := startClient(t, srv)
	defer cancel()

	srv.PushState(statestore.Entity{
		EntityID:   "sensor.plex_result_1",
		State:      "Inception (2010)",
		Attributes: map[string]any{"available": true, "rating_key": "1234"},
	})

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-client.Pushes():
			e, _ := store.Snapshot().Get("sensor.plex_result_1")
			if e.State == "Inception (2010)" {
				return
			}
			// Push for an earlier write; keep waiting.
		case <-deadline:
			t.Fatal("state change never reached the mirror")
		}
	}
}

func TestClientAppliesRemoval(t *testing.T) {
	srv := hasstest.NewServer(testToken, seedStates())
	defer srv.Close()

	client, store, cancel := startClient(t, srv)
	defer cancel()

	srv.RemoveEntity("sensor.plex_result_1")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-client.Pushes():
			if _, ok := store.Snapshot().Get("sensor.plex_result_1"); !ok {
				return
			}
		case <-deadline:
			t.Fatal("removal never reached the mirror")
		}
	}
}

func TestDispatchReachesServer(t *testing.T) {
	srv := hasstest.NewServer(testToken, seedStates())
	defer srv.Close()

	client, _, cancel := startClient(t, srv)
	defer cancel()

	err := client.Dispatch("plex_search_play", "search", map[string]any{"query": "dune", "limit": 6})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	call, ok := srv.WaitForCall(5 * time.Second)
	if !ok {
		t.Fatal("service call never arrived")
	}
	if call.Domain != "plex_search_play" || call.Service != "search" {
		t.Errorf("call = %s.%s", call.Domain, call.Service)
	}
	if call.Data["query"] != "dune" {
		t.Errorf("query = %v", call.Data["query"])
	}
}

func TestInvalidTokenIsFatal(t *testing.T) {
	srv := hasstest.NewServer(testToken, nil)
	defer srv.Close()

	store := statestore.NewStore()
	client, err := NewClient(srv.URL(), "wrong-token", store)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runErr := client.Run(ctx)
	var authErr *AuthError
	if !errors.As(runErr, &authErr) {
		t.Errorf("Run() error = %v, want AuthError", runErr)
	}
}

func TestNewClientValidation(t *testing.T) {
	store := statestore.NewStore()

	if _, err := NewClient("", testToken, store); err == nil {
		t.Error("empty base URL should fail")
	}
	if _, err := NewClient("http://ha.local:8123", "", store); err == nil {
		t.Error("empty token should fail")
	}
}

func TestDispatchWhileDisconnected(t *testing.T) {
	store := statestore.NewStore()
	client, err := NewClient("http://127.0.0.1:1", testToken, store)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if err := client.Dispatch("plex_search_play", "search", nil); err == nil {
		t.Error("Dispatch without a connection should fail")
	}
}
