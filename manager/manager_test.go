package manager

import (
	"testing"

	"github.com/PurpleSec/logx"
)

// testLog keeps routine log output away from test output.
func testLog() logx.Log {
	return logx.Console(logx.Error)
}

func TestNewManagerLayout(t *testing.T) {
	base := t.TempDir()
	m, err := New(base, testLog())
	if err != nil {
		t.Fatalf("New failed: %s", err)
	}
	if m.BaseDir != base {
		t.Fatalf("BaseDir = %q, want %q", m.BaseDir, base)
	}
	if m.Steam.ServerDir() == "" || m.Settings == nil {
		t.Fatal("manager collaborators not wired")
	}
	if m.Server.Installed() {
		t.Fatal("fresh base dir reports an installed server")
	}
}
