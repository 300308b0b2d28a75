package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/plexdeck/plexdeck/internal/card"
	"github.com/plexdeck/plexdeck/internal/config"
	"github.com/plexdeck/plexdeck/internal/discovery"
	"github.com/plexdeck/plexdeck/internal/hass"
	"github.com/plexdeck/plexdeck/internal/statestore"
	"github.com/plexdeck/plexdeck/internal/tui"
)

// Command flags
var (
	haURL        string
	haToken      string
	configPath   string
	outputFormat string
	scanTimeout  int
	scanNameFlag string
	waitSeconds  int
	playerFlag   string
	limitFlag    int
	libraryFlag  string
	genreFlag    string
	sortFlag     string
	startFlag    int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&haURL, "url", "", "Home Assistant base URL (overrides config file)")
	rootCmd.PersistentFlags().StringVar(&haToken, "token", "", "Long-lived access token (overrides config file)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format for result listings (detailed, compact, json)")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(onDeckCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(byGenreCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(configCmd)
}

// loadSettings reads the configuration file and applies flag overrides.
func loadSettings() (*config.Settings, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if haURL != "" {
		settings.HomeAssistant.URL = haURL
	}
	if haToken != "" {
		settings.HomeAssistant.Token = haToken
	}

	if settings.HomeAssistant.URL == "" {
		return nil, fmt.Errorf("no Home Assistant URL configured: pass --url, run 'plexdeck auth', or edit the config file")
	}
	if settings.HomeAssistant.Token == "" {
		return nil, fmt.Errorf("no access token configured: pass --token, set %s, or run 'plexdeck auth'", config.TokenEnvVar)
	}

	return settings, nil
}

// connect builds a store and websocket client from settings and starts
// the client's reconnect loop. The returned cancel stops the loop.
func connect(settings *config.Settings) (*hass.Client, *statestore.Store, context.CancelFunc, error) {
	store := statestore.NewStore()
	client, err := hass.NewClient(settings.HomeAssistant.URL, settings.HomeAssistant.Token, store)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go client.Run(ctx)

	return client, store, cancel, nil
}

// waitForPrime blocks until the first state snapshot arrives, or fails on
// an authentication error or timeout.
func waitForPrime(client *hass.Client, timeout time.Duration) error {
	deadline := time.After(timeout)
	for {
		select {
		case <-client.Pushes():
			return nil
		case n := <-client.Notices():
			var authErr *hass.AuthError
			if n.Err != nil && errors.As(n.Err, &authErr) {
				return n.Err
			}
		case <-deadline:
			return fmt.Errorf("timed out waiting for Home Assistant state (%s)", timeout)
		}
	}
}

// dashboardCmd launches the interactive TUI dashboard
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Launch the interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard mirrors the integration's status and result sensors live
over the websocket API. Type a query and press Enter to search, tab
between the query, player and result zones, and press Enter on a result
to play it on the selected player.`,
	Example: `  # Launch with the configured connection
  plexdeck
  plexdeck dashboard

  # Launch against a specific instance
  plexdeck dashboard --url http://homeassistant.local:8123 --token <token>`,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, store, cancel, err := connect(settings)
	if err != nil {
		return err
	}
	defer cancel()

	return tui.Run(context.Background(), client, store, &settings.Card, settings.HomeAssistant.URL)
}

// scanCmd discovers Home Assistant instances on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for Home Assistant instances on the network",
	Long: `Scan for Home Assistant instances using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from Home Assistant and displays
all discovered instances with their addresses and versions.`,
	Example: `  # Scan for 5 seconds (default)
  plexdeck scan

  # Longer scan for slower networks
  plexdeck scan --timeout 15

  # Wait for a specific instance by location name
  plexdeck scan --name "Home" --timeout 30`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
	scanCmd.Flags().StringVar(&scanNameFlag, "name", "", "Wait for the instance with this location name")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanNameFlag != "" {
		fmt.Printf("Waiting for instance %q (timeout: %ds)...\n\n", scanNameFlag, scanTimeout)

		scanner := discovery.NewScanner()
		scanner.Timeout = time.Duration(scanTimeout) * time.Second
		instance, err := scanner.WaitForInstance(scanNameFlag)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", instance.Name)
		fmt.Printf("   URL:     %s\n", instance.BaseURL())
		if instance.Version != "" {
			fmt.Printf("   Version: %s\n", instance.Version)
		}
		return nil
	}

	fmt.Printf("Scanning for Home Assistant instances (timeout: %ds)...\n\n", scanTimeout)

	instances, err := discovery.ScanForInstances(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(instances) == 0 {
		fmt.Println("No instances found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure Home Assistant is running on this network")
		fmt.Println("  - Check that mDNS (UDP port 5353) is not blocked")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --url to specify the instance manually")
		return nil
	}

	fmt.Printf("Found %d instance(s):\n\n", len(instances))

	for i, instance := range instances {
		fmt.Printf("%d. %s\n", i+1, instance.Name)
		fmt.Printf("   URL:     %s\n", instance.BaseURL())
		if instance.Version != "" {
			fmt.Printf("   Version: %s\n", instance.Version)
		}
		fmt.Println()
	}

	fmt.Println("Use 'plexdeck auth --url <url>' to save a connection")

	return nil
}

// oneShot connects, primes the mirror, runs fn against the action issuer,
// then optionally waits for the result sensors to change and prints them.
func oneShot(wait bool, fn func(actions *card.Actions) error) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, store, cancel, err := connect(settings)
	if err != nil {
		return err
	}
	defer cancel()

	if err := waitForPrime(client, 30*time.Second); err != nil {
		return err
	}

	cfg := &settings.Card
	if limitFlag > 0 {
		// --limit overrides the configured search limit for every
		// dispatch this invocation makes, including plain search.
		cfg.SearchLimit = limitFlag
	}
	tracker := card.NewTracker(cfg)
	tracker.ShouldAccept(store.Snapshot())
	tracker.Commit()

	actions := card.NewActions(client, cfg)
	if err := fn(actions); err != nil {
		return err
	}

	if !wait {
		return nil
	}

	// Wait for the integration to publish new results.
	deadline := time.After(time.Duration(waitSeconds) * time.Second)
	for {
		select {
		case <-client.Pushes():
			snap := store.Snapshot()
			if tracker.ShouldAccept(snap) {
				tracker.Commit()
				return printResults(snap, cfg)
			}
		case <-deadline:
			return fmt.Errorf("timed out waiting for results after %ds", waitSeconds)
		}
	}
}

// printResults prints the projected result slots to stdout in the
// selected output format.
func printResults(snap statestore.Snapshot, cfg *card.Config) error {
	status := card.ProjectStatus(snap, cfg)
	results := card.Project(snap, cfg)

	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(struct {
			Status  card.StatusInfo      `json:"status"`
			Results []card.DisplayResult `json:"results"`
		}{status, results}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil

	case "compact":
		for _, r := range results {
			fmt.Printf("%d\t%s\t%s\t%s\n", r.Slot, r.RatingKey, r.MediaType, r.Title)
		}
		return nil
	}

	fmt.Printf("%s\n\n", status.Text)

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	for _, r := range results {
		line := fmt.Sprintf("%d. %s", r.Slot, r.Title)
		meta := []string{}
		if r.MediaType != "" {
			meta = append(meta, r.MediaType)
		}
		if r.LibrarySectionTitle != "" {
			meta = append(meta, r.LibrarySectionTitle)
		}
		if r.Rating > 0 {
			meta = append(meta, fmt.Sprintf("★ %.1f", r.Rating))
		}
		if len(meta) > 0 {
			line += "  (" + strings.Join(meta, ", ") + ")"
		}
		if len(line) > width {
			line = line[:width]
		}
		fmt.Println(line)
		if r.RatingKey != "" {
			fmt.Printf("   rating_key: %s\n", r.RatingKey)
		}
	}
	return nil
}

// searchCmd performs a one-shot search and prints the results
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Plex and print the results",
	Long: `Dispatch a search to the integration and print the result slots
once they update.

The search itself runs inside Home Assistant; this command only issues
the service call and waits for the result sensors to change.`,
	Example: `  plexdeck search "inception"
  plexdeck search "breaking bad" --limit 10 --wait 20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(true, func(actions *card.Actions) error {
			return actions.Search(args[0])
		})
	},
}

// playCmd plays a result on a player
var playCmd = &cobra.Command{
	Use:   "play <rating_key>",
	Short: "Play a media item on a player",
	Long: `Dispatch playback of a media item, identified by its rating key,
to a media player entity.

Rating keys are printed by 'plexdeck search'.`,
	Example: `  plexdeck play 12345 --player media_player.living_room`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(false, func(actions *card.Actions) error {
			if err := actions.Play(args[0], playerFlag); err != nil {
				return err
			}
			fmt.Printf("Playback of %s dispatched to %s\n", args[0], playerFlag)
			return nil
		})
	},
}

// onDeckCmd fetches the continue-watching list
var onDeckCmd = &cobra.Command{
	Use:   "on-deck",
	Short: "Show the Plex On Deck (continue watching) list",
	Example: `  plexdeck on-deck
  plexdeck on-deck --limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(true, func(actions *card.Actions) error {
			return actions.OnDeck(limitFlag)
		})
	},
}

// recentCmd fetches recently added media
var recentCmd = &cobra.Command{
	Use:   "recently-added",
	Short: "Show recently added media",
	Example: `  plexdeck recently-added
  plexdeck recently-added --limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(true, func(actions *card.Actions) error {
			return actions.RecentlyAdded(limitFlag)
		})
	},
}

// byGenreCmd fetches media of one genre from a library
var byGenreCmd = &cobra.Command{
	Use:     "by-genre",
	Short:   "Show media of a genre from a library",
	Example: `  plexdeck by-genre --library Movies --genre "Science Fiction"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(true, func(actions *card.Actions) error {
			return actions.ByGenre(libraryFlag, genreFlag, limitFlag)
		})
	},
}

// collectionsCmd lists the collections of a library
var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Short:   "Show the collections of a library",
	Example: `  plexdeck collections --library Movies`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(true, func(actions *card.Actions) error {
			return actions.Collections(libraryFlag)
		})
	},
}

// browseCmd pages through a library
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a library page by page",
	Example: `  plexdeck browse --library Movies
  plexdeck browse --library Movies --start 12 --sort titleSort`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(true, func(actions *card.Actions) error {
			return actions.BrowseLibrary(libraryFlag, startFlag, limitFlag, sortFlag)
		})
	},
}

// clearCmd empties all result slots
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all result slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return oneShot(false, func(actions *card.Actions) error {
			if err := actions.ClearResults(); err != nil {
				return err
			}
			fmt.Println("Results cleared")
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, onDeckCmd, recentCmd, byGenreCmd, collectionsCmd, browseCmd} {
		c.Flags().IntVar(&waitSeconds, "wait", 15, "Seconds to wait for results")
	}
	for _, c := range []*cobra.Command{searchCmd, onDeckCmd, recentCmd, byGenreCmd, browseCmd} {
		c.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of results (0 uses the configured limit)")
	}
	playCmd.Flags().StringVar(&playerFlag, "player", "", "Target media player entity id")
	byGenreCmd.Flags().StringVar(&libraryFlag, "library", "", "Library name")
	byGenreCmd.Flags().StringVar(&genreFlag, "genre", "", "Genre name")
	collectionsCmd.Flags().StringVar(&libraryFlag, "library", "", "Library name")
	browseCmd.Flags().StringVar(&libraryFlag, "library", "", "Library name")
	browseCmd.Flags().IntVar(&startFlag, "start", 0, "Paging offset")
	browseCmd.Flags().StringVar(&sortFlag, "sort", "", "Sort order (e.g. titleSort, addedAt:desc)")
}

// authCmd saves connection details to the config file
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Save Home Assistant connection details",
	Long: `Save the Home Assistant URL and a long-lived access token to the
configuration file.

The token is prompted for without echo. Create one in Home Assistant
under your profile, Security, "Long-lived access tokens". Alternatively
set ` + config.TokenEnvVar + ` to avoid storing it on disk.`,
	Example: `  plexdeck auth --url http://homeassistant.local:8123`,
	RunE:    runAuth,
}

func runAuth(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return err
		}
	}

	settings, err := config.Load(path)
	if err != nil {
		return err
	}

	if haURL != "" {
		settings.HomeAssistant.URL = haURL
	}
	if settings.HomeAssistant.URL == "" {
		fmt.Println("No --url given, scanning for Home Assistant instances...")
		instances, err := discovery.QuickScan()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		url, err := pickInstanceURL(instances)
		if err != nil {
			return err
		}
		fmt.Printf("Using discovered instance at %s\n", url)
		settings.HomeAssistant.URL = url
	}

	token := haToken
	if token == "" {
		fmt.Print("Long-lived access token (input hidden): ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return fmt.Errorf("no token entered")
	}
	settings.HomeAssistant.Token = token

	if err := settings.Save(path); err != nil {
		return err
	}

	fmt.Printf("Connection saved to %s\n", path)
	return nil
}

// pickInstanceURL selects the base URL from a scan result. It only
// auto-picks when the scan found exactly one instance; otherwise the
// caller has to disambiguate with --url.
func pickInstanceURL(instances []*discovery.Instance) (string, error) {
	switch len(instances) {
	case 0:
		return "", fmt.Errorf("no Home Assistant instances found: pass --url with the base URL")
	case 1:
		return instances[0].BaseURL(), nil
	default:
		names := make([]string, len(instances))
		for i, instance := range instances {
			names[i] = fmt.Sprintf("%s (%s)", instance.Name, instance.BaseURL())
		}
		return "", fmt.Errorf("found %d instances, pass --url to choose one: %s",
			len(instances), strings.Join(names, ", "))
	}
}

// configCmd manages the configuration file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			path, err = config.GetConfigPath()
			if err != nil {
				return err
			}
		}
		fmt.Println(path)
		return nil
	},
}

var configExampleCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			path, err = config.GetConfigPath()
			if err != nil {
				return err
			}
		}
		if err := config.WriteExample(path); err != nil {
			return err
		}
		fmt.Printf("Example configuration written to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configExampleCmd)
}
