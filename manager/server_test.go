package manager

import (
	"errors"
	"strings"
	"testing"
)

func TestControllerArgs(t *testing.T) {
	c := NewController(t.TempDir(), testLog())

	args, err := c.Args(LaunchOptions{Map: "TheIsland_WP", GamePort: 7777, QueryPort: 27015, MaxPlayers: 24})
	if err != nil {
		t.Fatalf("Args failed: %s", err)
	}
	want := []string{
		"TheIsland_WP?listen",
		"-Port=7777",
		"-QueryPort=27015",
		"-MaxPlayers=24",
		"-WinLiveMaxPlayers=10",
		"-server",
		"-log",
	}
	if len(args) != len(want) {
		t.Fatalf("Args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("Args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestControllerArgsValidation(t *testing.T) {
	c := NewController(t.TempDir(), testLog())

	if _, err := c.Args(LaunchOptions{GamePort: 80, QueryPort: 27015}); err == nil {
		t.Fatal("Args accepted a privileged game port")
	}
	if _, err := c.Args(LaunchOptions{GamePort: 7777, QueryPort: 70000}); err == nil {
		t.Fatal("Args accepted an out-of-range query port")
	}

	// Defaults fill in for zero values, and the map name is sanitized.
	args, err := c.Args(LaunchOptions{Map: "Bad;Map`Name", GamePort: 7777, QueryPort: 27015})
	if err != nil {
		t.Fatalf("Args failed: %s", err)
	}
	if args[0] != "BadMapName?listen" {
		t.Fatalf("map name not sanitized: %q", args[0])
	}
	if !strings.Contains(strings.Join(args, " "), "-MaxPlayers=10") {
		t.Fatalf("default max players missing: %v", args)
	}
}

func TestControllerLifecycleStates(t *testing.T) {
	c := NewController(t.TempDir(), testLog())

	if c.Installed() {
		t.Fatal("empty install dir reports installed")
	}
	if c.Running() {
		t.Fatal("fresh controller reports running")
	}
	if pid := c.PID(); pid != 0 {
		t.Fatalf("PID = %d, want 0", pid)
	}

	err := c.Start(LaunchOptions{GamePort: 7777, QueryPort: 27015})
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("Start without install = %v, want ErrNotInstalled", err)
	}
	if err := c.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Stop without process = %v, want ErrNotRunning", err)
	}
}
