// Package config provides user configuration management for plexdeck.
//
// Configuration lives in a YAML file at a platform-appropriate location
// and covers the Home Assistant connection, the card's entity wiring and
// its display options. The card section is validated by the card package
// itself, so a dashboard can only ever be constructed from a complete,
// defaulted configuration.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/plexdeck/config.yaml or $HOME/.config/plexdeck/config.yaml
//   - macOS: $HOME/.config/plexdeck/config.yaml
//   - Windows: %LOCALAPPDATA%\plexdeck\config.yaml
//
// # Security
//
// The Home Assistant access token may be stored in the file (0600) or
// supplied through the PLEXDECK_HA_TOKEN environment variable, which
// always wins. Saving never writes a token that came from the
// environment.
//
// # Usage Example
//
//	settings, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(settings.HomeAssistant.URL, settings.Card.Title)
package config
