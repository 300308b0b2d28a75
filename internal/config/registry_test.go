package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/plexdeck/plexdeck/internal/card"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}
	if !strings.Contains(configDir, "plexdeck") {
		t.Errorf("GetConfigDir() = %v, should contain 'plexdeck'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings()

	if s.Version != 1 {
		t.Errorf("Version = %d, want 1", s.Version)
	}
	if s.Card.StatusEntity == "" {
		t.Error("default settings should watch a status entity")
	}
	if len(s.Card.ResultEntities) != 6 {
		t.Errorf("default result slots = %d, want 6", len(s.Card.ResultEntities))
	}
	if s.Card.Title != card.DefaultTitle {
		t.Errorf("Title = %q, want %q", s.Card.Title, card.DefaultTitle)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Card.StatusEntity == "" {
		t.Error("defaults should be applied for a missing file")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := NewSettings()
	original.HomeAssistant.URL = "http://ha.local:8123"
	original.HomeAssistant.Token = "secret"
	original.Card.Title = "Cinema"
	original.Card.PlayerEntities = []string{"media_player.tv"}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.HomeAssistant.URL != "http://ha.local:8123" {
		t.Errorf("URL = %q", loaded.HomeAssistant.URL)
	}
	if loaded.HomeAssistant.Token != "secret" {
		t.Errorf("Token = %q", loaded.HomeAssistant.Token)
	}
	if loaded.Card.Title != "Cinema" {
		t.Errorf("Title = %q", loaded.Card.Title)
	}
	if len(loaded.Card.PlayerEntities) != 1 {
		t.Errorf("PlayerEntities = %v", loaded.Card.PlayerEntities)
	}
}

func TestLoadConnectionOnlyKeepsCardDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `homeassistant:
  url: http://ha.local:8123
  token: secret
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.HomeAssistant.URL != "http://ha.local:8123" {
		t.Errorf("URL = %q", s.HomeAssistant.URL)
	}
	if s.Card.StatusEntity == "" {
		t.Error("omitted card section should keep the default status entity")
	}
	if len(s.Card.ResultEntities) != 6 {
		t.Errorf("default result slots = %d, want 6", len(s.Card.ResultEntities))
	}
}

func TestLoadRejectsBlankStatusEntity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
homeassistant:
  url: http://ha.local:8123
card:
  status_entity: ""
  title: Broken
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail when card.status_entity is blanked out")
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 9
homeassistant:
  url: http://ha.local:8123
card:
  status_entity: sensor.plex_search_status
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should reject unknown config versions")
	}
}

func TestEnvTokenOverridesAndIsNotSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
homeassistant:
  url: http://ha.local:8123
  token: from-file
card:
  status_entity: sensor.plex_search_status
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(TokenEnvVar, "from-env")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.HomeAssistant.Token != "from-env" {
		t.Errorf("Token = %q, want env override", s.HomeAssistant.Token)
	}

	savePath := filepath.Join(t.TempDir(), "saved.yaml")
	if err := s.Save(savePath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, _ := os.ReadFile(savePath)
	if strings.Contains(string(data), "from-env") {
		t.Error("Save() must not persist a token that came from the environment")
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"complete", func(s *Settings) {
			s.HomeAssistant.URL = "http://ha.local:8123"
			s.HomeAssistant.Token = "tok"
		}, false},
		{"missing url", func(s *Settings) {
			s.HomeAssistant.Token = "tok"
		}, true},
		{"missing token", func(s *Settings) {
			s.HomeAssistant.URL = "http://ha.local:8123"
		}, true},
		{"missing status entity", func(s *Settings) {
			s.HomeAssistant.URL = "http://ha.local:8123"
			s.HomeAssistant.Token = "tok"
			s.Card.StatusEntity = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings()
			tt.mutate(s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteExampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteExample(path); err != nil {
		t.Fatalf("WriteExample() error = %v", err)
	}
	if err := WriteExample(path); err == nil {
		t.Error("WriteExample() should refuse to overwrite")
	}
}
