// Package tui implements the interactive terminal dashboard.
//
// The dashboard is a view over externally owned state: a Home Assistant
// integration performs searches and publishes results into entity
// sensors, and this package mirrors those sensors and renders them. The
// dashboard never computes results itself; it only projects the entity
// snapshot into display form and sends service calls back.
//
// # Architecture
//
// Two bubbletea models make up the UI:
//
//   - AppModel: top-level coordinator. Consumes the push and notice
//     channels from the websocket client, shows a connect screen until
//     the first state snapshot arrives, then hands everything to the
//     dashboard.
//   - DashboardModel: the widget itself. Holds interaction state (focus
//     zone, query text, cursors) plus the latest projection of the
//     entity snapshot.
//
// # Reconcile Cycle
//
// Every push runs one synchronous reconcile cycle on the dashboard:
//
//  1. The fingerprint tracker compares the relevant entities against the
//     last rendered fingerprint; an unchanged snapshot is rejected and
//     nothing else happens.
//  2. Interaction state is captured (focus, query text, cursor position,
//     selected player, highlighted result).
//  3. The snapshot is projected into results, status and player options.
//  4. Controls are rebuilt from scratch.
//  5. The captured interaction state is restored, clamped defensively
//     against whatever the projection now contains.
//  6. The fingerprint is committed.
//
// The cycle is what lets state pushes arrive mid-keystroke without
// disturbing typing: redundant pushes never reach the rebuild step, and
// meaningful ones restore the exact editing position afterwards.
//
// # Commands
//
// User actions (search, play, browse, clear) are validated locally and
// dispatched fire-and-forget as Home Assistant service calls. Results of
// a command only ever come back as new entity state, through the same
// push path as everything else.
package tui
