// Plexdeck is a terminal dashboard for the plex_search_play Home
// Assistant integration.
//
// It mirrors the integration's search status and result slot sensors over
// the Home Assistant websocket API and renders them as an interactive
// dashboard: type a query, pick a player, play a result. All searching is
// performed by the integration; plexdeck only displays pushed state and
// issues service calls.
//
// Usage:
//
//	plexdeck [command] [flags]
//
// Running without arguments launches the interactive dashboard.
// See 'plexdeck --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plexdeck/plexdeck/internal/logging"
	"github.com/plexdeck/plexdeck/internal/version"
)

func main() {
	logging.InitializeFromEnv()
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "plexdeck",
	Short: "Terminal dashboard for Plex search in Home Assistant",
	Long: `A terminal dashboard for the plex_search_play Home Assistant integration.

Mirrors the integration's search status and result sensors over the
Home Assistant websocket API, renders them live, and issues search and
playback service calls.

If no command is specified, the interactive dashboard will launch
automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the dashboard when no subcommand provided
		return runDashboard(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plexdeck %s (commit: %s)\n", version.Version, version.Commit)
	},
}
