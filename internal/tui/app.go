package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plexdeck/plexdeck/internal/card"
	"github.com/plexdeck/plexdeck/internal/hass"
	"github.com/plexdeck/plexdeck/internal/statestore"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenConnect   Screen = "connect"
	ScreenDashboard Screen = "dashboard"
)

// Messages delivered by the push source listeners
type pushMsg struct{}

type noticeMsg struct {
	notice hass.Notice
}

// AppModel is the top-level coordinator model. It owns the screen state
// and forwards entity pushes and connection notices into the dashboard.
type AppModel struct {
	CurrentScreen Screen

	Dashboard DashboardModel

	client *hass.Client
	styles Styles

	// Connection state shown on the connect screen
	ConnStatus hass.Status
	LastError  error
	Spinner    spinner.Model

	Width  int
	Height int
}

// NewAppModel creates the application model. The hass client must already
// be running; the model only consumes its push and notice channels.
func NewAppModel(client *hass.Client, store *statestore.Store, cfg *card.Config, baseURL string) AppModel {
	styles := NewStyles(ThemeByName(cfg.Theme))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Title

	return AppModel{
		CurrentScreen: ScreenConnect,
		Dashboard:     NewDashboardModel(store, client, cfg, styles).SetBaseURL(baseURL),
		client:        client,
		styles:        styles,
		ConnStatus:    hass.StatusConnecting,
		Spinner:       s,
	}
}

// Err returns the fatal error that ended the session, if any.
func (m AppModel) Err() error {
	return m.LastError
}

// waitForPush blocks on the client's coalesced push channel.
func waitForPush(client *hass.Client) tea.Cmd {
	return func() tea.Msg {
		<-client.Pushes()
		return pushMsg{}
	}
}

// waitForNotice blocks on the client's connection notice channel.
func waitForNotice(client *hass.Client) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{notice: <-client.Notices()}
	}
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		waitForPush(m.client),
		waitForNotice(m.client),
		m.Spinner.Tick,
		m.Dashboard.Init(),
	)
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Dashboard.Width = msg.Width
		m.Dashboard.Height = msg.Height
		return m, nil

	case pushMsg:
		// First push means the mirror is primed; show the dashboard.
		if m.CurrentScreen == ScreenConnect {
			m.CurrentScreen = ScreenDashboard
		}
		m.Dashboard = m.Dashboard.Reconcile()
		return m, waitForPush(m.client)

	case noticeMsg:
		return m.handleNotice(msg.notice)

	case spinner.TickMsg:
		if m.CurrentScreen != ScreenConnect {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.CurrentScreen == ScreenConnect && msg.String() == "q" {
			return m, tea.Quit
		}
	}

	if m.CurrentScreen == ScreenDashboard {
		updated, cmd := m.Dashboard.Update(msg)
		m.Dashboard = updated.(DashboardModel)
		return m, cmd
	}

	return m, nil
}

// handleNotice reacts to connection state changes from the push source.
// Authentication failures are fatal; everything else is a status line.
func (m AppModel) handleNotice(n hass.Notice) (tea.Model, tea.Cmd) {
	m.ConnStatus = n.Status

	var authErr *hass.AuthError
	if n.Err != nil && errors.As(n.Err, &authErr) {
		m.LastError = n.Err
		return m, tea.Quit
	}

	line := n.Status.String()
	if n.Err != nil {
		line += ": " + n.Err.Error()
	}
	m.Dashboard = m.Dashboard.SetConnectionLine(line)

	return m, waitForNotice(m.client)
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenConnect:
		return m.renderConnectScreen()
	case ScreenDashboard:
		return m.Dashboard.View()
	default:
		return "Unknown screen"
	}
}

// renderConnectScreen renders the startup screen shown until the first
// state push arrives.
func (m AppModel) renderConnectScreen() string {
	width := m.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var b strings.Builder
	b.WriteString(m.Spinner.View())
	b.WriteString(" ")
	b.WriteString(m.styles.RenderTitle("Connecting to Home Assistant"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Label.Render("Status: "))
	b.WriteString(m.styles.Value.Render(m.ConnStatus.String()))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Subtitle.Render("Waiting for the first state snapshot..."))

	return m.styles.RenderApplicationContainer("connect", b.String(), "q quit", width, m.Height)
}

// Run starts the TUI over a running client and blocks until the user
// quits or the session fails. The client's reconnect loop is expected to
// run on its own goroutine for the lifetime of ctx.
func Run(ctx context.Context, client *hass.Client, store *statestore.Store, cfg *card.Config, baseURL string) error {
	model := NewAppModel(client, store, cfg, baseURL)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("terminal session failed: %w", err)
	}

	if app, ok := final.(AppModel); ok && app.Err() != nil {
		return app.Err()
	}
	return nil
}
