package config

import (
	"fmt"

	"github.com/plexdeck/plexdeck/internal/card"
)

// TokenEnvVar supplies the Home Assistant access token without storing it
// on disk. When set it overrides any token in the file.
const TokenEnvVar = "PLEXDECK_HA_TOKEN"

// Settings is the entire configuration file.
type Settings struct {
	Version       int           `yaml:"version"`
	HomeAssistant HomeAssistant `yaml:"homeassistant"`
	Card          card.Config   `yaml:"card"`

	// tokenFromEnv notes that the token came from the environment and
	// must never be written back to disk.
	tokenFromEnv bool
}

// HomeAssistant is the connection section.
type HomeAssistant struct {
	// URL is the instance base URL, e.g. "http://homeassistant.local:8123".
	URL string `yaml:"url"`
	// Token is a long-lived access token. Optional in the file when
	// PLEXDECK_HA_TOKEN is set.
	Token string `yaml:"token,omitempty"`
}

// NewSettings creates settings with defaults and an empty connection.
func NewSettings() *Settings {
	s := &Settings{
		Version: 1,
		Card: card.Config{
			StatusEntity: "sensor.plex_search_status",
			ResultEntities: []string{
				"sensor.plex_result_1",
				"sensor.plex_result_2",
				"sensor.plex_result_3",
				"sensor.plex_result_4",
				"sensor.plex_result_5",
				"sensor.plex_result_6",
			},
		},
	}
	// Defaults cannot fail: the status entity is set above.
	_ = s.Card.Validate()
	return s
}

// Validate checks the settings are complete enough to run the dashboard.
func (s *Settings) Validate() error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", s.Version)
	}
	if s.HomeAssistant.URL == "" {
		return fmt.Errorf("homeassistant.url is required")
	}
	if s.HomeAssistant.Token == "" {
		return fmt.Errorf("homeassistant.token is required (or set %s)", TokenEnvVar)
	}
	return s.Card.Validate()
}
