package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// INI layout inside the server install. The dedicated server is a Windows
// build regardless of the host platform, hence the WindowsServer directory.
const (
	configRel        = "ShooterGame/Saved/Config/WindowsServer"
	gameUserSettings = "GameUserSettings.ini"
	gameINI          = "Game.ini"

	sectionServer   = "ServerSettings"
	sectionSession  = "SessionSettings"
	sectionGameMode = "/Script/ShooterGame.ShooterGameMode"
)

func init() {
	// The game's own INI writer emits Key=Value without padding.
	ini.PrettyFormat = false
}

// Config edits GameUserSettings.ini and Game.ini in place, preserving keys
// it does not manage.
type Config struct {
	dir string
}

// NewConfig returns a Config rooted at the given server install directory.
func NewConfig(serverDir string) *Config {
	return &Config{dir: filepath.Join(serverDir, filepath.FromSlash(configRel))}
}

func (c *Config) load(name string) (*ini.File, error) {
	f, err := ini.LooseLoad(filepath.Join(c.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return f, nil
}

func (c *Config) save(name string, f *ini.File) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := f.SaveTo(filepath.Join(c.dir, name)); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ServerSettings is the managed subset of GameUserSettings.ini.
type ServerSettings struct {
	SessionName      string
	ServerPassword   string
	AdminPassword    string
	XPMultiplier     float64
	TamingSpeed      float64
	HarvestAmount    float64
	DifficultyOffset float64
	MaxPlayers       int
	RCONPort         int
	PVE              bool
	RCONEnabled      bool
}

// ServerSettings reads the managed keys, applying the game's defaults for
// any that are absent.
func (c *Config) ServerSettings() (ServerSettings, error) {
	s := ServerSettings{
		SessionName:      "ARK Server",
		MaxPlayers:       10,
		XPMultiplier:     1,
		TamingSpeed:      1,
		HarvestAmount:    1,
		DifficultyOffset: 0.2,
		PVE:              true,
		RCONPort:         DefaultRCONPort,
	}
	f, err := c.load(gameUserSettings)
	if err != nil {
		return s, err
	}

	srv := f.Section(sectionServer)
	readString(srv, "ServerPassword", &s.ServerPassword)
	readString(srv, "ServerAdminPassword", &s.AdminPassword)
	readFloat(srv, "XPMultiplier", &s.XPMultiplier)
	readFloat(srv, "TamingSpeedMultiplier", &s.TamingSpeed)
	readFloat(srv, "HarvestAmountMultiplier", &s.HarvestAmount)
	readFloat(srv, "DifficultyOffset", &s.DifficultyOffset)
	readBool(srv, "ServerPVE", &s.PVE)
	readBool(srv, "RCONEnabled", &s.RCONEnabled)
	readInt(srv, "RCONPort", &s.RCONPort)

	ses := f.Section(sectionSession)
	readString(ses, "SessionName", &s.SessionName)
	readInt(ses, "MaxPlayers", &s.MaxPlayers)
	return s, nil
}

// SetServerSettings writes the managed keys back, leaving everything else
// in the file untouched.
func (c *Config) SetServerSettings(s ServerSettings) error {
	f, err := c.load(gameUserSettings)
	if err != nil {
		return err
	}

	srv := f.Section(sectionServer)
	if s.ServerPassword != "" {
		srv.Key("ServerPassword").SetValue(s.ServerPassword)
	}
	srv.Key("ServerAdminPassword").SetValue(s.AdminPassword)
	srv.Key("XPMultiplier").SetValue(formatFloat(s.XPMultiplier))
	srv.Key("TamingSpeedMultiplier").SetValue(formatFloat(s.TamingSpeed))
	srv.Key("HarvestAmountMultiplier").SetValue(formatFloat(s.HarvestAmount))
	srv.Key("DifficultyOffset").SetValue(formatFloat(s.DifficultyOffset))
	srv.Key("ServerPVE").SetValue(formatBool(s.PVE))
	srv.Key("RCONEnabled").SetValue(formatBool(s.RCONEnabled))
	if ValidPort(s.RCONPort) {
		srv.Key("RCONPort").SetValue(strconv.Itoa(s.RCONPort))
	}

	ses := f.Section(sectionSession)
	if s.SessionName != "" {
		ses.Key("SessionName").SetValue(Sanitize(s.SessionName, MaxServerNameLen))
	}
	if s.MaxPlayers > 0 {
		ses.Key("MaxPlayers").SetValue(strconv.Itoa(s.MaxPlayers))
	}
	return c.save(gameUserSettings, f)
}

// StatMultipliers is the managed subset of Game.ini. The game addresses
// stats by slot index: 0 is health, 1 stamina, 5 weight.
type StatMultipliers struct {
	PlayerHealth  float64
	PlayerStamina float64
	PlayerWeight  float64
	DinoHealth    float64
	DinoStamina   float64
	DinoWeight    float64
}

var statKeys = []struct {
	key string
	get func(*StatMultipliers) *float64
}{
	{"PerLevelStatsMultiplier_Player[0]", func(s *StatMultipliers) *float64 { return &s.PlayerHealth }},
	{"PerLevelStatsMultiplier_Player[1]", func(s *StatMultipliers) *float64 { return &s.PlayerStamina }},
	{"PerLevelStatsMultiplier_Player[5]", func(s *StatMultipliers) *float64 { return &s.PlayerWeight }},
	{"PerLevelStatsMultiplier_DinoTamed[0]", func(s *StatMultipliers) *float64 { return &s.DinoHealth }},
	{"PerLevelStatsMultiplier_DinoTamed[1]", func(s *StatMultipliers) *float64 { return &s.DinoStamina }},
	{"PerLevelStatsMultiplier_DinoTamed[5]", func(s *StatMultipliers) *float64 { return &s.DinoWeight }},
}

// StatMultipliers reads the per-level stat multipliers, defaulting each to
// 1.0 when unset.
func (c *Config) StatMultipliers() (StatMultipliers, error) {
	s := StatMultipliers{
		PlayerHealth: 1, PlayerStamina: 1, PlayerWeight: 1,
		DinoHealth: 1, DinoStamina: 1, DinoWeight: 1,
	}
	f, err := c.load(gameINI)
	if err != nil {
		return s, err
	}
	sec := f.Section(sectionGameMode)
	for _, sk := range statKeys {
		readFloat(sec, sk.key, sk.get(&s))
	}
	return s, nil
}

// SetStatMultipliers writes the per-level stat multipliers into Game.ini.
func (c *Config) SetStatMultipliers(s StatMultipliers) error {
	f, err := c.load(gameINI)
	if err != nil {
		return err
	}
	sec := f.Section(sectionGameMode)
	for _, sk := range statKeys {
		sec.Key(sk.key).SetValue(formatFloat(*sk.get(&s)))
	}
	return c.save(gameINI, f)
}

// ActiveMods returns the configured mod IDs, in file order.
func (c *Config) ActiveMods() ([]string, error) {
	f, err := c.load(gameUserSettings)
	if err != nil {
		return nil, err
	}
	srv := f.Section(sectionServer)
	if !srv.HasKey("ActiveMods") {
		return nil, nil
	}
	var mods []string
	for _, m := range strings.Split(srv.Key("ActiveMods").String(), ",") {
		if m = strings.TrimSpace(m); m != "" {
			mods = append(mods, m)
		}
	}
	return mods, nil
}

// SetMods replaces the active mod list. IDs that are not numeric are
// dropped; an error is returned when nothing valid remains.
func (c *Config) SetMods(ids []string) error {
	var valid []string
	for _, id := range ids {
		if ValidModID(id) {
			valid = append(valid, strings.TrimSpace(id))
		}
	}
	if len(valid) == 0 {
		return fmt.Errorf("no valid mod ids in %v", ids)
	}
	f, err := c.load(gameUserSettings)
	if err != nil {
		return err
	}
	f.Section(sectionServer).Key("ActiveMods").SetValue(strings.Join(valid, ","))
	return c.save(gameUserSettings, f)
}

// ClearMods removes the active mod list entirely.
func (c *Config) ClearMods() error {
	f, err := c.load(gameUserSettings)
	if err != nil {
		return err
	}
	srv := f.Section(sectionServer)
	if !srv.HasKey("ActiveMods") {
		return nil
	}
	srv.DeleteKey("ActiveMods")
	return c.save(gameUserSettings, f)
}

func readString(sec *ini.Section, key string, dst *string) {
	if sec.HasKey(key) {
		*dst = sec.Key(key).String()
	}
}

func readInt(sec *ini.Section, key string, dst *int) {
	if sec.HasKey(key) {
		if v, err := sec.Key(key).Int(); err == nil {
			*dst = v
		}
	}
}

func readFloat(sec *ini.Section, key string, dst *float64) {
	if sec.HasKey(key) {
		if v, err := sec.Key(key).Float64(); err == nil {
			*dst = v
		}
	}
}

func readBool(sec *ini.Section, key string, dst *bool) {
	if sec.HasKey(key) {
		*dst = strings.EqualFold(sec.Key(key).String(), "true")
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
