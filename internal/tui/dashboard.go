package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plexdeck/plexdeck/internal/card"
	"github.com/plexdeck/plexdeck/internal/logging"
	"github.com/plexdeck/plexdeck/internal/statestore"
	"github.com/plexdeck/plexdeck/internal/urls"
)

// PlayerOption is one selectable playback target, rebuilt from the entity
// snapshot on every accepted update.
type PlayerOption struct {
	EntityID string
	Name     string
}

// dashboardKeyMap defines key bindings for the dashboard screen
type dashboardKeyMap struct {
	Tab    key.Binding
	Enter  key.Binding
	Up     key.Binding
	Down   key.Binding
	OnDeck key.Binding
	Recent key.Binding
	Clear  key.Binding
	Browse key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.OnDeck, k.Recent, k.Clear, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Enter, k.Up, k.Down},
		{k.OnDeck, k.Recent, k.Clear, k.Browse, k.Quit},
	}
}

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next zone"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search/play"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		OnDeck: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "on deck"),
		),
		Recent: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "recently added"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Browse: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "browse"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// DashboardModel is the widget view over the mirrored entity state. All
// displayed content is a projection of the entity snapshot; the model's
// own fields hold only interaction state (focus, cursors, in-progress
// query text) and the most recent projection.
//
// Updates arrive as pushes. Each push runs one reconcile cycle: the
// tracker decides whether anything relevant changed, and an accepted
// change replaces the projection wholesale while interaction state is
// captured before and restored after. Rejected pushes leave the model
// untouched, so typing is never disturbed by redundant updates.
type DashboardModel struct {
	store   *statestore.Store
	tracker *card.Tracker
	actions *card.Actions
	cfg     *card.Config
	styles  Styles

	// baseURL resolves relative thumbnail references when thumbnails
	// are enabled.
	baseURL string

	// Terminal dimensions
	Width  int
	Height int

	// Interaction state
	focus        card.FocusZone
	queryInput   textinput.Model
	playerCursor int // index into players, -1 for no selection
	resultCursor int

	// Current projection, replaced as a whole on accepted updates
	results []card.DisplayResult
	status  card.StatusInfo
	players []PlayerOption

	// Transient message lines
	warning  string // local validation feedback, cleared on next action
	connLine string // connection status from the push source

	// Renders counts committed reconcile cycles. Diagnostic only.
	Renders int

	Help help.Model
	Keys dashboardKeyMap
}

// NewDashboardModel builds the dashboard over a mirrored entity store.
// The dispatcher carries commands back to the integration; cfg must
// already be validated.
func NewDashboardModel(store *statestore.Store, dispatcher card.Dispatcher, cfg *card.Config, styles Styles) DashboardModel {
	m := DashboardModel{
		store:        store,
		tracker:      card.NewTracker(cfg),
		actions:      card.NewActions(dispatcher, cfg),
		cfg:          cfg,
		styles:       styles,
		focus:        card.FocusQuery,
		queryInput:   newQueryInput(),
		playerCursor: -1,
		Help:         help.New(),
		Keys:         newDashboardKeyMap(),
	}
	m.queryInput.Focus()
	return m
}

func newQueryInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Search Plex..."
	ti.CharLimit = 200
	ti.Width = 50
	return ti
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reconcile runs one reconcile cycle against the current store snapshot.
// The cycle is synchronous and self-contained: capture interaction state,
// project the snapshot, rebuild the controls, restore interaction state,
// then commit the fingerprint. A push that changes nothing relevant is
// rejected before any of that happens and the model is returned unchanged.
func (m DashboardModel) Reconcile() DashboardModel {
	if !m.tracker.BeginReconcile() {
		return m
	}
	defer m.tracker.EndReconcile()

	snap := m.store.Snapshot()
	if !m.tracker.ShouldAccept(snap) {
		logging.LogReconcile(false, len(m.results))
		return m
	}

	captured := m.capture()

	m.results = card.Project(snap, m.cfg)
	m.status = card.ProjectStatus(snap, m.cfg)
	m.players = projectPlayers(snap, m.cfg)

	// The query input is rebuilt from scratch, never patched: restore
	// is what carries the text and cursor across.
	m.queryInput = newQueryInput()
	m = m.restore(captured)

	m.tracker.Commit()
	m.Renders++
	logging.LogReconcile(true, len(m.results))
	return m
}

// capture records the interaction state that must survive the upcoming
// rebuild. It runs before any control is touched.
func (m DashboardModel) capture() card.InteractionSnapshot {
	pos := m.queryInput.Position()
	snap := card.InteractionSnapshot{
		Focus:        m.focus,
		Query:        m.queryInput.Value(),
		SelStart:     pos,
		SelEnd:       pos,
		ResultCursor: m.resultCursor,
	}
	if m.playerCursor >= 0 && m.playerCursor < len(m.players) {
		snap.Player = m.players[m.playerCursor].EntityID
	}
	return snap
}

// restore puts the captured interaction state back into the freshly
// rebuilt controls. Every restore is defensive: the projection may have
// shrunk underneath any of the captured cursors.
func (m DashboardModel) restore(captured card.InteractionSnapshot) DashboardModel {
	m.queryInput.SetValue(captured.Query)
	start, _ := captured.ClampSelection(len([]rune(captured.Query)))
	m.queryInput.SetCursor(start)

	m.focus = captured.Focus
	if m.focus == card.FocusQuery {
		m.queryInput.Focus()
	} else {
		m.queryInput.Blur()
	}

	ids := make([]string, len(m.players))
	for i, p := range m.players {
		ids[i] = p.EntityID
	}
	m.playerCursor = captured.RestorePlayer(ids)

	m.resultCursor = captured.ResultCursor
	if m.resultCursor >= len(m.results) {
		m.resultCursor = len(m.results) - 1
	}
	if m.resultCursor < 0 {
		m.resultCursor = 0
	}

	return m
}

// projectPlayers builds the selectable player list from the snapshot.
// Configured players that are absent or unavailable are excluded, which
// is what makes a previously selected player "stale".
func projectPlayers(snap statestore.Snapshot, cfg *card.Config) []PlayerOption {
	players := make([]PlayerOption, 0, len(cfg.PlayerEntities))
	for _, id := range cfg.PlayerEntities {
		entity, ok := snap.Get(id)
		if !ok || entity.State == "unavailable" || entity.State == "unknown" {
			continue
		}
		name := id
		if fn, ok := entity.Attributes["friendly_name"].(string); ok && fn != "" {
			name = fn
		}
		players = append(players, PlayerOption{EntityID: id, Name: name})
	}
	return players
}

// SelectedPlayer returns the entity id of the selected player, or empty
// when nothing is selected.
func (m DashboardModel) SelectedPlayer() string {
	if m.playerCursor >= 0 && m.playerCursor < len(m.players) {
		return m.players[m.playerCursor].EntityID
	}
	return ""
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Blink and other component messages go to the query input.
	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

// handleKey routes a key press based on the focused zone.
func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Keys that work regardless of focus
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m = m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m = m.cycleFocus(-1)
		return m, nil
	case "esc":
		m.warning = ""
		return m, nil
	}

	switch m.focus {
	case card.FocusQuery:
		return m.handleQueryKey(msg)
	case card.FocusPlayers:
		return m.handlePlayersKey(msg)
	case card.FocusResults:
		return m.handleResultsKey(msg)
	}

	return m, nil
}

// cycleFocus moves focus between the query, players and results zones.
func (m DashboardModel) cycleFocus(dir int) DashboardModel {
	zones := []card.FocusZone{card.FocusQuery, card.FocusPlayers, card.FocusResults}
	cur := 0
	for i, z := range zones {
		if z == m.focus {
			cur = i
			break
		}
	}
	next := (cur + dir + len(zones)) % len(zones)
	m.focus = zones[next]

	if m.focus == card.FocusQuery {
		m.queryInput.Focus()
	} else {
		m.queryInput.Blur()
	}
	if m.focus == card.FocusPlayers && m.playerCursor < 0 && len(m.players) > 0 {
		m.playerCursor = 0
	}
	return m
}

// handleQueryKey handles input while the query zone holds focus. Plain
// characters go to the text input; enter issues the search.
func (m DashboardModel) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		m.warning = ""
		if err := m.actions.Search(m.queryInput.Value()); err != nil {
			m = m.reportActionError(err)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

// handlePlayersKey handles input while the player list holds focus.
func (m DashboardModel) handlePlayersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if len(m.players) > 0 {
			m.playerCursor--
			if m.playerCursor < 0 {
				m.playerCursor = len(m.players) - 1
			}
		}
	case "down", "j":
		if len(m.players) > 0 {
			m.playerCursor++
			if m.playerCursor >= len(m.players) {
				m.playerCursor = 0
			}
		}
	default:
		return m.handleGlobalActionKey(msg)
	}
	return m, nil
}

// handleResultsKey handles input while the results grid holds focus.
func (m DashboardModel) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "up", "k":
		if m.resultCursor > 0 {
			m.resultCursor--
		}
	case "right", "l", "down", "j":
		if m.resultCursor < len(m.results)-1 {
			m.resultCursor++
		}
	case "enter", " ":
		m.warning = ""
		if m.resultCursor >= 0 && m.resultCursor < len(m.results) {
			result := m.results[m.resultCursor]
			if err := m.actions.Play(result.RatingKey, m.SelectedPlayer()); err != nil {
				m = m.reportActionError(err)
			}
		}
	default:
		return m.handleGlobalActionKey(msg)
	}
	return m, nil
}

// handleGlobalActionKey handles the single-letter action keys available
// outside the query zone.
func (m DashboardModel) handleGlobalActionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "o":
		m.warning = ""
		if err := m.actions.OnDeck(0); err != nil {
			m = m.reportActionError(err)
		}
	case "a":
		m.warning = ""
		if err := m.actions.RecentlyAdded(0); err != nil {
			m = m.reportActionError(err)
		}
	case "c":
		m.warning = ""
		if err := m.actions.ClearResults(); err != nil {
			m = m.reportActionError(err)
		}
	case "b":
		m.warning = ""
		library := ""
		if len(m.cfg.Libraries) > 0 {
			library = m.cfg.Libraries[0]
		}
		if err := m.actions.BrowseLibrary(library, 0, 0, ""); err != nil {
			m = m.reportActionError(err)
		}
	}
	return m, nil
}

// reportActionError turns a failed command into the appropriate message
// line: local validation failures become a non-blocking warning, anything
// else is a transport error.
func (m DashboardModel) reportActionError(err error) DashboardModel {
	if lv, ok := card.IsLocalValidation(err); ok {
		m.warning = lv.Warning
	} else {
		m.warning = "Command failed: " + err.Error()
	}
	return m
}

// SetConnectionLine sets the connection status line shown in the header.
func (m DashboardModel) SetConnectionLine(line string) DashboardModel {
	m.connLine = line
	return m
}

// SetBaseURL sets the base URL used to resolve thumbnail references.
func (m DashboardModel) SetBaseURL(baseURL string) DashboardModel {
	m.baseURL = baseURL
	return m
}

// View renders the dashboard
func (m DashboardModel) View() string {
	width := m.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var b strings.Builder

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.renderQuerySection())
	b.WriteString("\n")
	b.WriteString(m.renderPlayersSection())
	b.WriteString("\n")
	b.WriteString(m.renderResultsSection(width))

	if m.warning != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.RenderWarning(m.warning))
	}

	helpText := m.Help.View(m.Keys)
	return m.styles.RenderApplicationContainer(m.cfg.Title, b.String(), helpText, width, m.Height)
}

// renderStatusLine renders the integration status and connection state.
func (m DashboardModel) renderStatusLine() string {
	status := m.status.Text
	if status == "" {
		status = "Waiting for integration"
	}
	line := m.styles.Label.Render("Status: ") + m.styles.Value.Render(status)
	if m.status.LastQuery != "" {
		line += m.styles.ResultMeta.Render(fmt.Sprintf("  (last query: %q)", m.status.LastQuery))
	}
	if m.status.ResultCount > 0 {
		noun := "results"
		if m.status.ResultCount == 1 {
			noun = "result"
		}
		line += m.styles.ResultMeta.Render(fmt.Sprintf("  · %d %s", m.status.ResultCount, noun))
	}
	if m.connLine != "" {
		line += m.styles.ResultMeta.Render("  · " + m.connLine)
	}
	return m.styles.StatusBar.Render(line)
}

func (m DashboardModel) renderQuerySection() string {
	zone := m.styles.BlurredZone
	if m.focus == card.FocusQuery {
		zone = m.styles.FocusedZone
	}
	return zone.Render(m.styles.Label.Render("Search  ") + m.queryInput.View())
}

func (m DashboardModel) renderPlayersSection() string {
	zone := m.styles.BlurredZone
	if m.focus == card.FocusPlayers {
		zone = m.styles.FocusedZone
	}

	if len(m.players) == 0 {
		return zone.Render(m.styles.Label.Render("Players  ") + m.styles.Subtitle.Render("none available"))
	}

	var items []string
	for i, p := range m.players {
		if i == m.playerCursor {
			items = append(items, m.styles.SelectedPlayerItem.Render("→ "+p.Name))
		} else {
			items = append(items, m.styles.PlayerItem.Render(p.Name))
		}
	}
	return zone.Render(m.styles.Label.Render("Players  ") + strings.Join(items, m.styles.ResultMeta.Render("  |  ")))
}

// renderResultsSection lays the result cards out in the configured number
// of columns.
func (m DashboardModel) renderResultsSection(width int) string {
	title := m.styles.SectionTitle.Render(fmt.Sprintf("RESULTS (%d)", len(m.results)))

	if len(m.results) == 0 {
		empty := m.styles.Subtitle.Render("No results. Type a query and press Enter, or press o for On Deck.")
		return lipgloss.JoinVertical(lipgloss.Left, title, empty)
	}

	columns := m.cfg.Columns
	if columns <= 0 {
		columns = card.DefaultColumns
	}
	cardWidth := (ContentWidth(width) - 8) / columns

	var rows []string
	for start := 0; start < len(m.results); start += columns {
		end := start + columns
		if end > len(m.results) {
			end = len(m.results)
		}
		var cells []string
		for i := start; i < end; i++ {
			selected := m.focus == card.FocusResults && i == m.resultCursor
			cells = append(cells, m.renderResultCard(m.results[i], selected, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rows...)...)
}

// renderResultCard renders one result slot.
func (m DashboardModel) renderResultCard(r card.DisplayResult, selected bool, width int) string {
	style := m.styles.ResultCard
	if selected {
		style = m.styles.SelectedResultCard
	}
	style = style.Width(width)

	var lines []string
	lines = append(lines, m.styles.ResultTitle.Render(r.Title))

	meta := mediaTypeBadge(r.MediaType)
	if r.Year > 0 {
		meta += fmt.Sprintf(" · %d", r.Year)
	}
	if r.Rating > 0 {
		meta += fmt.Sprintf(" · ★ %.1f", r.Rating)
	}
	if r.Duration > 0 {
		meta += " · " + formatDuration(r.Duration)
	}
	lines = append(lines, m.styles.ResultMeta.Render(meta))

	if r.MediaType == card.MediaTypeEpisode && r.SeriesTitle != "" {
		lines = append(lines, m.styles.ResultMeta.Render(
			fmt.Sprintf("%s · S%02dE%02d", r.SeriesTitle, r.ParentIndex, r.Index)))
	}

	if r.LibrarySectionTitle != "" {
		lines = append(lines, m.styles.ResultMeta.Render("Library: "+r.LibrarySectionTitle))
	}

	if r.Summary != "" {
		lines = append(lines, m.styles.Value.Render(truncate(r.Summary, (width-4)*2)))
	}

	if m.cfg.ThumbnailsEnabled() && r.Thumb != "" {
		lines = append(lines, m.styles.ResultMeta.Render(truncate(urls.Thumbnail(m.baseURL, r.Thumb), width-4)))
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// mediaTypeBadge maps a media type to a short display badge.
func mediaTypeBadge(mediaType string) string {
	switch mediaType {
	case card.MediaTypeMovie:
		return "🎬 Movie"
	case card.MediaTypeShow:
		return "📺 Show"
	case card.MediaTypeSeason:
		return "📺 Season"
	case card.MediaTypeEpisode:
		return "📺 Episode"
	case card.MediaTypeArtist:
		return "🎵 Artist"
	case card.MediaTypeAlbum:
		return "🎵 Album"
	case card.MediaTypeTrack:
		return "🎵 Track"
	default:
		return mediaType
	}
}

// formatDuration formats a millisecond duration as "2h 28m" or "45m".
func formatDuration(ms int64) string {
	minutes := ms / 60000
	hours := minutes / 60
	minutes = minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// truncate shortens s to at most n runes, appending an ellipsis.
func truncate(s string, n int) string {
	if n <= 1 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
