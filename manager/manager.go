// Package manager ties together everything around the RCON core: SteamCMD
// installs, the game's INI configuration, the server process, backups, logs
// and the interactive menu.
package manager

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/PurpleSec/logx"
)

const (
	AppName = "asamgr"
	Version = "0.1.0"

	DefaultHost      = "127.0.0.1"
	DefaultRCONPort  = 27020
	DefaultGamePort  = 7777
	DefaultQueryPort = 27015
	DefaultMap       = "TheIsland_WP"
	DefaultBaseDir   = "./ArkServerManager"

	// MaxWaitTime caps the -w delay between batched RCON commands.
	MaxWaitTime = 600
)

const logFile = "asamgr.log"

// Manager wires the collaborators around one base directory:
//
//	<base>/steamcmd/     SteamCMD install
//	<base>/server/       dedicated server install
//	<base>/backups/      timestamped backups
//	<base>/manager.yaml  manager settings
//	<base>/asamgr.log    manager log
type Manager struct {
	Settings *Settings
	Steam    *SteamCMD
	Config   *Config
	Server   *Controller
	Backups  *Backups
	Logs     *Logs
	log      logx.Log
	BaseDir  string
}

// New builds a Manager rooted at baseDir, creating the directory and
// loading (or defaulting) its settings.
func New(baseDir string, log logx.Log) (*Manager, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}
	settings, err := LoadSettings(abs)
	if err != nil {
		return nil, err
	}

	steam := NewSteamCMD(abs, log)
	serverDir := steam.ServerDir()
	return &Manager{
		BaseDir:  abs,
		Settings: settings,
		Steam:    steam,
		Config:   NewConfig(serverDir),
		Server:   NewController(serverDir, log),
		Backups:  NewBackups(serverDir, abs, settings.Backups.Keep, log),
		Logs:     NewLogs(serverDir),
		log:      log,
	}, nil
}

// NewLogger builds the application log: a file under baseDir multiplexed
// with the console. Verbose drops the threshold to debug, which includes
// per-packet RCON records.
func NewLogger(baseDir string, verbose bool) (logx.Log, error) {
	level := logx.Info
	if verbose {
		level = logx.Debug
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}
	f, err := logx.File(filepath.Join(baseDir, logFile), logx.Append, level)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := logx.Multiple(f, logx.Console(level))
	l.SetPrefix(AppName)
	return l, nil
}
