package manager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestServerSettingsDefaults(t *testing.T) {
	c := NewConfig(t.TempDir())
	s, err := c.ServerSettings()
	if err != nil {
		t.Fatalf("ServerSettings failed: %s", err)
	}
	if s.SessionName != "ARK Server" || s.MaxPlayers != 10 {
		t.Fatalf("unexpected session defaults: %+v", s)
	}
	if s.XPMultiplier != 1 || s.DifficultyOffset != 0.2 || !s.PVE {
		t.Fatalf("unexpected gameplay defaults: %+v", s)
	}
}

func TestServerSettingsRoundTrip(t *testing.T) {
	c := NewConfig(t.TempDir())

	want := ServerSettings{
		SessionName:      "Test Island",
		MaxPlayers:       24,
		ServerPassword:   "joinpw",
		AdminPassword:    "hunter22",
		XPMultiplier:     2.5,
		TamingSpeed:      3,
		HarvestAmount:    1.5,
		DifficultyOffset: 1,
		PVE:              false,
		RCONEnabled:      true,
		RCONPort:         27021,
	}
	if err := c.SetServerSettings(want); err != nil {
		t.Fatalf("SetServerSettings failed: %s", err)
	}

	got, err := c.ServerSettings()
	if err != nil {
		t.Fatalf("ServerSettings failed: %s", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch,\n got: %+v\nwant: %+v", got, want)
	}
}

func TestConfigPreservesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	c := NewConfig(dir)

	// A key the manager knows nothing about must survive an update.
	path := filepath.Join(dir, filepath.FromSlash(configRel), gameUserSettings)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	seed := "[ServerSettings]\nOverrideOfficialDifficulty=5.0\n"
	if err := os.WriteFile(path, []byte(seed), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := c.ServerSettings()
	if err != nil {
		t.Fatalf("ServerSettings failed: %s", err)
	}
	s.AdminPassword = "hunter22"
	if err := c.SetServerSettings(s); err != nil {
		t.Fatalf("SetServerSettings failed: %s", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "OverrideOfficialDifficulty=5.0") {
		t.Fatalf("unmanaged key lost on update:\n%s", b)
	}
	if !strings.Contains(string(b), "ServerAdminPassword=hunter22") {
		t.Fatalf("managed key missing after update:\n%s", b)
	}
}

func TestStatMultipliersRoundTrip(t *testing.T) {
	c := NewConfig(t.TempDir())

	s, err := c.StatMultipliers()
	if err != nil {
		t.Fatalf("StatMultipliers failed: %s", err)
	}
	if s.PlayerHealth != 1 || s.DinoWeight != 1 {
		t.Fatalf("unexpected defaults: %+v", s)
	}

	want := StatMultipliers{
		PlayerHealth: 1.5, PlayerStamina: 2, PlayerWeight: 3,
		DinoHealth: 0.5, DinoStamina: 1.25, DinoWeight: 10,
	}
	if err := c.SetStatMultipliers(want); err != nil {
		t.Fatalf("SetStatMultipliers failed: %s", err)
	}
	got, err := c.StatMultipliers()
	if err != nil {
		t.Fatalf("StatMultipliers failed: %s", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch,\n got: %+v\nwant: %+v", got, want)
	}
}

func TestMods(t *testing.T) {
	c := NewConfig(t.TempDir())

	mods, err := c.ActiveMods()
	if err != nil || mods != nil {
		t.Fatalf("ActiveMods on fresh config = (%v, %v), want (nil, nil)", mods, err)
	}

	// Invalid IDs are dropped, valid ones kept.
	if err := c.SetMods([]string{"927090", "not-a-mod", " 731604 "}); err != nil {
		t.Fatalf("SetMods failed: %s", err)
	}
	mods, err = c.ActiveMods()
	if err != nil {
		t.Fatalf("ActiveMods failed: %s", err)
	}
	if len(mods) != 2 || mods[0] != "927090" || mods[1] != "731604" {
		t.Fatalf("ActiveMods = %v, want [927090 731604]", mods)
	}

	if err := c.SetMods([]string{"nope", ""}); err == nil {
		t.Fatal("SetMods accepted a list with no valid ids")
	}

	if err := c.ClearMods(); err != nil {
		t.Fatalf("ClearMods failed: %s", err)
	}
	mods, err = c.ActiveMods()
	if err != nil || mods != nil {
		t.Fatalf("ActiveMods after clear = (%v, %v), want (nil, nil)", mods, err)
	}

	// Clearing twice is fine.
	if err := c.ClearMods(); err != nil {
		t.Fatalf("second ClearMods failed: %s", err)
	}
}
