package manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// settingsFile is the manager's own configuration, kept under the base
// directory. Game server settings live in the game's INI files instead (see
// Config).
const settingsFile = "manager.yaml"

// Settings holds the manager-side defaults: where to reach RCON, how to
// launch the server, and how many backups to retain.
type Settings struct {
	RCON struct {
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		Timeout int    `yaml:"timeout_seconds"`
	} `yaml:"rcon"`
	Server struct {
		Map        string `yaml:"map"`
		GamePort   int    `yaml:"game_port"`
		QueryPort  int    `yaml:"query_port"`
		MaxPlayers int    `yaml:"max_players"`
	} `yaml:"server"`
	Backups struct {
		Keep int `yaml:"keep"`
	} `yaml:"backups"`
}

func defaultSettings() *Settings {
	s := new(Settings)
	s.RCON.Host = DefaultHost
	s.RCON.Port = DefaultRCONPort
	s.RCON.Timeout = 5
	s.Server.Map = DefaultMap
	s.Server.GamePort = DefaultGamePort
	s.Server.QueryPort = DefaultQueryPort
	s.Server.MaxPlayers = 10
	s.Backups.Keep = 10
	return s
}

// LoadSettings reads manager.yaml from dir, falling back to defaults for a
// fresh base directory or for fields the file leaves out.
func LoadSettings(dir string) (*Settings, error) {
	s := defaultSettings()
	b, err := os.ReadFile(filepath.Join(dir, settingsFile))
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", settingsFile, err)
	}
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", settingsFile, err)
	}
	return s, nil
}

// Save writes the settings back to manager.yaml in dir.
func (s *Settings) Save(dir string) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode %s: %w", settingsFile, err)
	}
	if err := os.WriteFile(filepath.Join(dir, settingsFile), b, 0644); err != nil {
		return fmt.Errorf("write %s: %w", settingsFile, err)
	}
	return nil
}

// OverrideRCON replaces the RCON endpoint with the given host and port.
// Zero values leave the loaded settings untouched, so flags and environment
// variables only take effect when actually supplied.
func (s *Settings) OverrideRCON(host string, port int) {
	if host != "" {
		s.RCON.Host = host
	}
	if port != 0 {
		s.RCON.Port = port
	}
}

// RCONTimeout returns the configured RCON timeout as a duration.
func (s *Settings) RCONTimeout() time.Duration {
	if s.RCON.Timeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.RCON.Timeout) * time.Second
}
