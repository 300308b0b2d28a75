package card

import (
	"strings"

	"go.uber.org/zap"

	"github.com/plexdeck/plexdeck/internal/logging"
)

// Domain is the service domain of the Plex search integration.
const Domain = "plex_search_play"

// Service names within the domain.
const (
	ServiceSearch           = "search"
	ServicePlayMedia        = "play_media"
	ServiceClearResults     = "clear_results"
	ServiceBrowseLibrary    = "browse_library"
	ServiceGetOnDeck        = "get_on_deck"
	ServiceGetRecentlyAdded = "get_recently_added"
	ServiceGetByGenre       = "get_by_genre"
	ServiceGetCollections   = "get_collections"
)

// Dispatcher sends a named remote operation with a data payload and
// returns no synchronous result. An error from Dispatch means the request
// could not be handed to the transport at all; backend-side failures are
// reported through the collaborator's own events, never here.
type Dispatcher interface {
	Dispatch(domain, service string, data map[string]any) error
}

// Actions validates user-triggered operations and issues them as
// fire-and-forget dispatches. Each action is one pure precondition check
// followed by at most one dispatch; results arrive later as ordinary state
// pushes.
type Actions struct {
	dispatcher Dispatcher
	limit      int
}

// NewActions creates an action issuer using cfg's search limit.
func NewActions(dispatcher Dispatcher, cfg *Config) *Actions {
	return &Actions{dispatcher: dispatcher, limit: cfg.SearchLimit}
}

// Search dispatches a search for query. The query, trimmed, must be
// non-empty; otherwise the action is rejected locally with a
// LocalValidationError and nothing is dispatched.
func (a *Actions) Search(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return &LocalValidationError{Warning: "Enter a search query first"}
	}

	logging.LogDispatch(Domain, ServiceSearch, zap.String("query", query), zap.Int("limit", a.limit))
	return a.dispatcher.Dispatch(Domain, ServiceSearch, map[string]any{
		"query": query,
		"limit": a.limit,
	})
}

// Play dispatches playback of the result identified by ratingKey on the
// given player. A player must be selected; otherwise the action is
// rejected locally and nothing is dispatched.
func (a *Actions) Play(ratingKey, playerEntityID string) error {
	if playerEntityID == "" {
		return &LocalValidationError{Warning: "Select a player first"}
	}
	if ratingKey == "" {
		return &LocalValidationError{Warning: "This slot has nothing to play"}
	}

	logging.LogDispatch(Domain, ServicePlayMedia,
		zap.String("rating_key", ratingKey),
		zap.String("player_entity_id", playerEntityID),
	)
	return a.dispatcher.Dispatch(Domain, ServicePlayMedia, map[string]any{
		"rating_key":       ratingKey,
		"player_entity_id": playerEntityID,
	})
}

// ClearResults empties all result slots.
func (a *Actions) ClearResults() error {
	logging.LogDispatch(Domain, ServiceClearResults)
	return a.dispatcher.Dispatch(Domain, ServiceClearResults, map[string]any{})
}

// BrowseLibrary pages through a library. A library name is required.
func (a *Actions) BrowseLibrary(library string, start, limit int, sort string) error {
	if strings.TrimSpace(library) == "" {
		return &LocalValidationError{Warning: "Pick a library to browse"}
	}
	if limit <= 0 {
		limit = a.limit
	}

	data := map[string]any{
		"library_name": library,
		"start":        start,
		"limit":        limit,
	}
	if sort != "" {
		data["sort"] = sort
	}

	logging.LogDispatch(Domain, ServiceBrowseLibrary, zap.String("library", library))
	return a.dispatcher.Dispatch(Domain, ServiceBrowseLibrary, data)
}

// OnDeck requests the continue-watching list.
func (a *Actions) OnDeck(limit int) error {
	if limit <= 0 {
		limit = a.limit
	}
	logging.LogDispatch(Domain, ServiceGetOnDeck, zap.Int("limit", limit))
	return a.dispatcher.Dispatch(Domain, ServiceGetOnDeck, map[string]any{"limit": limit})
}

// RecentlyAdded requests the most recently added items.
func (a *Actions) RecentlyAdded(limit int) error {
	if limit <= 0 {
		limit = a.limit
	}
	logging.LogDispatch(Domain, ServiceGetRecentlyAdded, zap.Int("limit", limit))
	return a.dispatcher.Dispatch(Domain, ServiceGetRecentlyAdded, map[string]any{"limit": limit})
}

// ByGenre requests items of one genre from a library.
func (a *Actions) ByGenre(library, genre string, limit int) error {
	if strings.TrimSpace(library) == "" {
		return &LocalValidationError{Warning: "Pick a library first"}
	}
	if strings.TrimSpace(genre) == "" {
		return &LocalValidationError{Warning: "Enter a genre"}
	}
	if limit <= 0 {
		limit = a.limit
	}

	logging.LogDispatch(Domain, ServiceGetByGenre, zap.String("library", library), zap.String("genre", genre))
	return a.dispatcher.Dispatch(Domain, ServiceGetByGenre, map[string]any{
		"library_name": library,
		"genre":        genre,
		"limit":        limit,
	})
}

// Collections requests the collections of a library.
func (a *Actions) Collections(library string) error {
	if strings.TrimSpace(library) == "" {
		return &LocalValidationError{Warning: "Pick a library first"}
	}

	logging.LogDispatch(Domain, ServiceGetCollections, zap.String("library", library))
	return a.dispatcher.Dispatch(Domain, ServiceGetCollections, map[string]any{
		"library_name": library,
	})
}
