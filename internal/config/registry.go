package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/plexdeck/plexdeck/internal/card"
)

const (
	appName    = "plexdeck"
	configFile = "config.yaml"
)

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory for the
// application. This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/plexdeck or $HOME/.config/plexdeck
//   - macOS: $HOME/.config/plexdeck (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\plexdeck
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		// Linux and other Unix-like systems: Use XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// ensureConfigDir ensures the configuration directory exists.
func ensureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	// Create directory with user-only permissions (0700)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// Load reads settings from path, or from the default location when path
// is empty. A missing file yields default settings rather than an error;
// a malformed or invalid file is an error. The environment token override
// is applied in both cases.
func Load(path string) (*Settings, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	settings := NewSettings()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file yet - defaults plus whatever the environment provides.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// Unmarshal over the defaults so a partial file (say, just the
		// connection section) keeps the default card layout.
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if settings.Version == 0 {
			settings.Version = 1
		}
		if settings.Version != 1 {
			return nil, fmt.Errorf("unsupported config version: %d (expected 1)", settings.Version)
		}
		if err := settings.Card.Validate(); err != nil {
			return nil, err
		}
	}

	if token := os.Getenv(TokenEnvVar); token != "" {
		settings.HomeAssistant.Token = token
		settings.tokenFromEnv = true
	}

	return settings, nil
}

// Save writes the settings to path (default location when empty) with an
// atomic rename. A token that came from the environment is withheld.
func (s *Settings) Save(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if path == "" {
		if err := ensureConfigDir(); err != nil {
			return err
		}
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	out := *s
	if s.tokenFromEnv {
		out.HomeAssistant.Token = ""
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# plexdeck configuration file
#
# homeassistant.token may be omitted here and supplied via the
# PLEXDECK_HA_TOKEN environment variable instead.
#
# Location: ` + path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// WriteExample writes a fully commented example configuration to path,
// refusing to overwrite an existing file.
func WriteExample(path string) error {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	settings := NewSettings()
	settings.HomeAssistant.URL = "http://homeassistant.local:8123"
	settings.Card = card.Config{
		StatusEntity: "sensor.plex_search_status",
		ResultEntities: []string{
			"sensor.plex_result_1",
			"sensor.plex_result_2",
			"sensor.plex_result_3",
			"sensor.plex_result_4",
			"sensor.plex_result_5",
			"sensor.plex_result_6",
		},
		PlayerEntities: []string{
			"media_player.living_room",
			"media_player.bedroom",
		},
		Libraries: []string{"Movies", "TV Shows"},
	}
	if err := settings.Card.Validate(); err != nil {
		return err
	}
	return settings.Save(path)
}
