package card

// FocusZone identifies which control held focus when an interaction
// snapshot was captured.
type FocusZone int

const (
	FocusNone FocusZone = iota
	FocusQuery
	FocusPlayers
	FocusResults
)

// InteractionSnapshot captures the transient interaction state of the view
// immediately before a re-render so it can be restored immediately after.
// It lives for exactly one reconcile cycle: created in the capture step,
// consumed in the restore step, then discarded. It must never be retained
// across two renders.
type InteractionSnapshot struct {
	Focus FocusZone

	// Query input state. Selection offsets are only meaningful when the
	// query input held focus.
	Query    string
	SelStart int
	SelEnd   int

	// Player is the selected player entity identifier, or empty for no
	// selection.
	Player string

	// ResultCursor is the highlighted result slot index within the results
	// zone, preserved so the highlight does not jump when an unrelated
	// watched attribute changes.
	ResultCursor int
}

// ClampSelection bounds the captured selection offsets to the restored
// text length. If the text shrank underneath the selection, the range is
// clamped rather than failing; a degenerate (reversed) range collapses to
// the cursor position.
func (s InteractionSnapshot) ClampSelection(textLen int) (start, end int) {
	start, end = s.SelStart, s.SelEnd
	if start < 0 {
		start = 0
	}
	if start > textLen {
		start = textLen
	}
	if end < start {
		end = start
	}
	if end > textLen {
		end = textLen
	}
	return start, end
}

// RestorePlayer returns the selection index to restore into a freshly
// rendered player list: the captured player's position among options, or
// -1 (no selection) when the captured player no longer appears. A stale
// selection falls back silently, it never errors.
func (s InteractionSnapshot) RestorePlayer(options []string) int {
	if s.Player == "" {
		return -1
	}
	for i, id := range options {
		if id == s.Player {
			return i
		}
	}
	return -1
}
