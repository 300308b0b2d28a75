package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/plexdeck/plexdeck/internal/version"
)

// Application branding constants
const (
	AppName   = "PLEXDECK"
	GitHubURL = "github.com/plexdeck/plexdeck"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72  // Minimum supported terminal width
	MaxContentWidth  = 120 // Maximum content width before capping
)

// Theme holds the color palette for a named visual theme.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Text       lipgloss.Color
	Subtle     lipgloss.Color
	Border     lipgloss.Color
	Highlight  lipgloss.Color
	Background lipgloss.Color
}

// ThemeByName returns the palette for a theme name. Unknown names fall
// back to the default "glassmorphic" palette.
func ThemeByName(name string) Theme {
	switch name {
	case "dark":
		return Theme{
			Primary:    lipgloss.Color("#5F87FF"),
			Secondary:  lipgloss.Color("#43BF6D"),
			Accent:     lipgloss.Color("#FF8B94"),
			Warning:    lipgloss.Color("#FFA500"),
			Error:      lipgloss.Color("#FF5555"),
			Text:       lipgloss.Color("#D0D0D0"),
			Subtle:     lipgloss.Color("#626262"),
			Border:     lipgloss.Color("#444444"),
			Highlight:  lipgloss.Color("#5F87FF"),
			Background: lipgloss.Color("#121212"),
		}
	case "light":
		return Theme{
			Primary:    lipgloss.Color("#5A32A3"),
			Secondary:  lipgloss.Color("#1C7C3F"),
			Accent:     lipgloss.Color("#C2185B"),
			Warning:    lipgloss.Color("#B26A00"),
			Error:      lipgloss.Color("#C62828"),
			Text:       lipgloss.Color("#1A1A1A"),
			Subtle:     lipgloss.Color("#8A8A8A"),
			Border:     lipgloss.Color("#5A32A3"),
			Highlight:  lipgloss.Color("#1C7C3F"),
			Background: lipgloss.Color("#F5F5F5"),
		}
	default: // glassmorphic
		return Theme{
			Primary:    lipgloss.Color("#7D56F4"),
			Secondary:  lipgloss.Color("#43BF6D"),
			Accent:     lipgloss.Color("#FF8B94"),
			Warning:    lipgloss.Color("#FFA500"),
			Error:      lipgloss.Color("#FF0000"),
			Text:       lipgloss.Color("#FFFFFF"),
			Subtle:     lipgloss.Color("#9A9A9A"),
			Border:     lipgloss.Color("#7D56F4"),
			Highlight:  lipgloss.Color("#43BF6D"),
			Background: lipgloss.Color("#1A1A2E"),
		}
	}
}

// Styles holds the pre-built lipgloss styles for one theme. All rendering
// goes through a Styles value so the palette is chosen once at startup
// rather than through package globals.
type Styles struct {
	Theme Theme

	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Help         lipgloss.Style
	StatusBar    lipgloss.Style
	Warning      lipgloss.Style
	ErrorMsg     lipgloss.Style
	SectionTitle lipgloss.Style
	Label        lipgloss.Style
	Value        lipgloss.Style

	FocusedZone lipgloss.Style
	BlurredZone lipgloss.Style

	ResultCard         lipgloss.Style
	SelectedResultCard lipgloss.Style
	ResultTitle        lipgloss.Style
	ResultMeta         lipgloss.Style

	PlayerItem         lipgloss.Style
	SelectedPlayerItem lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(1, 0),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Subtle).
			Italic(true),

		Help: lipgloss.NewStyle().
			Foreground(theme.Subtle).
			Padding(1, 0),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Subtle).
			Padding(0, 1),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		SectionTitle: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginTop(1),

		Label: lipgloss.NewStyle().
			Foreground(theme.Subtle),

		Value: lipgloss.NewStyle().
			Foreground(theme.Text),

		FocusedZone: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Highlight).
			Padding(0, 1),

		BlurredZone: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		ResultCard: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1).
			MarginRight(1),

		SelectedResultCard: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(theme.Highlight).
			Padding(0, 1).
			MarginRight(1),

		ResultTitle: lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true),

		ResultMeta: lipgloss.NewStyle().
			Foreground(theme.Subtle),

		PlayerItem: lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(theme.Text),

		SelectedPlayerItem: lipgloss.NewStyle().
			PaddingLeft(0).
			Foreground(theme.Highlight).
			Bold(true),
	}
}

// RenderTitle renders a title with consistent styling
func (s Styles) RenderTitle(text string) string {
	return s.Title.Render(text)
}

// RenderWarning renders a local validation warning line
func (s Styles) RenderWarning(text string) string {
	return s.Warning.Render("⚠ " + text)
}

// RenderError renders an error message line
func (s Styles) RenderError(text string) string {
	return s.ErrorMsg.Render("✗ " + text)
}

// BuildHeaderContent creates header content with app name and GitHub URL
func (s Styles) BuildHeaderContent(title string) string {
	left := lipgloss.NewStyle().
		Foreground(s.Theme.Text).
		Bold(true).
		Render(AppName + " v" + AppVersion() + " · " + title)

	right := lipgloss.NewStyle().
		Foreground(s.Theme.Subtle).
		Render(GitHubURL)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// RenderApplicationContainer wraps screen content with the shared header,
// a context-sensitive footer and a full-terminal bordered frame. Every
// screen renders through this function so the chrome stays consistent.
func (s Styles) RenderApplicationContainer(title, content, footerText string, terminalWidth, terminalHeight int) string {
	header := s.BuildHeaderContent(title)
	footer := lipgloss.NewStyle().Foreground(s.Theme.Subtle).Render(footerText)

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(s.Theme.Border).
		Width(terminalWidth - 4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(s.Theme.Border).
		Width(terminalWidth - 4).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth - 4)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(header),
		contentStyle.Render(content),
		footerStyle.Render(footer),
	)

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(s.Theme.Border).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top)

	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Left,
		lipgloss.Top,
		borderStyle.Render(inner),
	)
}

// ContentWidth caps the usable content width for very wide terminals.
func ContentWidth(terminalWidth int) int {
	if terminalWidth < MinTerminalWidth {
		return MinTerminalWidth
	}
	if terminalWidth > MaxContentWidth {
		return MaxContentWidth
	}
	return terminalWidth
}
