// Package card implements the reconciliation core of the plexdeck
// dashboard, independent of any UI toolkit.
//
// The card mirrors a small, fixed set of externally-owned entities (one
// search status entity plus an ordered list of result slots) into a live
// view while the user is typing a query and choosing a playback target in
// that same view. State pushes arrive far more often than the watched
// entities actually change, so re-rendering on every push would blow away
// in-flight input. Two pieces prevent that:
//
//   - Tracker fingerprints the watched subset of each push and tells the
//     renderer whether anything relevant changed since the last accepted
//     update. Redundant pushes are dropped without side effects.
//
//   - InteractionSnapshot carries the transient interaction state (focused
//     control, query text, selection offsets, selected player) across a
//     rebuild, so an accepted re-render is invisible to the typing user.
//
// Projection turns raw entity attribute bags into typed DisplayResult
// records, and Actions validates and dispatches the fire-and-forget
// service calls (search, play_media and the browse family). Results of a
// dispatch never come back synchronously; they arrive later as ordinary
// state pushes and flow through the Tracker again.
package card
