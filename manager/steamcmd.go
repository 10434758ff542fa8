package manager

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/PurpleSec/logx"
)

// arkAppID is the Steam app ID of the ASA dedicated server.
const arkAppID = "2430930"

// steamcmdDownloadURL is where operators can fetch SteamCMD when the
// manager cannot find it.
const steamcmdDownloadURL = "https://steamcdn-a.akamaihd.net/client/installer/steamcmd.zip"

// SteamCMD wraps the SteamCMD tool to install and update the dedicated
// server under the manager's base directory.
type SteamCMD struct {
	log     logx.Log
	baseDir string
}

// NewSteamCMD returns a wrapper rooted at baseDir. SteamCMD itself is
// expected under baseDir/steamcmd; the server is installed to
// baseDir/server.
func NewSteamCMD(baseDir string, log logx.Log) *SteamCMD {
	return &SteamCMD{baseDir: baseDir, log: log}
}

// Dir is the directory SteamCMD runs from.
func (s *SteamCMD) Dir() string {
	return filepath.Join(s.baseDir, "steamcmd")
}

// ServerDir is the server install target.
func (s *SteamCMD) ServerDir() string {
	return filepath.Join(s.baseDir, "server")
}

func (s *SteamCMD) exePath() string {
	name := "steamcmd.sh"
	if runtime.GOOS == "windows" {
		name = "steamcmd.exe"
	}
	return filepath.Join(s.Dir(), name)
}

// Installed reports whether the SteamCMD executable is present.
func (s *SteamCMD) Installed() bool {
	_, err := os.Stat(s.exePath())
	return err == nil
}

// ServerInstalled reports whether a server install exists under ServerDir.
func (s *SteamCMD) ServerInstalled() bool {
	_, err := os.Stat(filepath.Join(s.ServerDir(), filepath.FromSlash(serverExeRel)))
	return err == nil
}

// InstallOrUpdate runs SteamCMD against the server install, streaming its
// output to the console. With validate set, SteamCMD re-verifies every file
// instead of only fetching what changed.
func (s *SteamCMD) InstallOrUpdate(validate bool) error {
	if !s.Installed() {
		return fmt.Errorf("steamcmd not found at %s (download from %s)", s.exePath(), steamcmdDownloadURL)
	}
	if err := os.MkdirAll(s.ServerDir(), 0755); err != nil {
		return fmt.Errorf("create server dir: %w", err)
	}

	args := []string{
		"+force_install_dir", s.ServerDir(),
		"+login", "anonymous",
		"+app_update", arkAppID,
	}
	if validate {
		args = append(args, "validate")
	}
	args = append(args, "+quit")

	s.log.Info("Running SteamCMD for app %s into %q.", arkAppID, s.ServerDir())
	cmd := exec.Command(s.exePath(), args...)
	cmd.Dir = s.Dir()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		s.log.Error("SteamCMD failed: %s.", err)
		return fmt.Errorf("steamcmd: %w", err)
	}
	if !s.ServerInstalled() {
		return fmt.Errorf("steamcmd finished but no server executable at %s", filepath.Join(s.ServerDir(), filepath.FromSlash(serverExeRel)))
	}
	s.log.Info("SteamCMD completed, server install verified.")
	return nil
}
