package manager

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// menuReadlineConfig is the line editor setup for the numbered menu. It
// carries no completer; the RCON console installs its own while active.
func menuReadlineConfig(baseDir string) *readline.Config {
	return &readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(baseDir, ".asamgr_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}
}

// Run drives the interactive menu until the operator exits.
func (m *Manager) Run() error {
	rl, err := readline.NewEx(menuReadlineConfig(m.BaseDir))
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("\nWelcome to the ARK Server Manager")
	fmt.Printf("Base directory: %s\n", m.BaseDir)

	for {
		m.printMenu()
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			m.shutdown()
			return nil
		}

		switch strings.TrimSpace(line) {
		case "1":
			m.installUpdate(rl)
		case "2":
			m.configureServer(rl)
		case "3":
			m.configureStats(rl)
		case "4":
			m.manageMods(rl)
		case "5":
			m.startServer(rl)
		case "6":
			m.stopServer()
		case "7":
			m.showStatus()
		case "8":
			m.createBackup()
		case "9":
			m.console(rl, "")
		case "10":
			m.viewLogs(rl)
		case "0":
			m.shutdown()
			return nil
		default:
			fmt.Println("Invalid option")
		}
	}
}

func (m *Manager) printMenu() {
	fmt.Println(header("ARK: Survival Ascended Server Manager"))
	fmt.Println("1. Install/Update Server")
	fmt.Println("2. Configure Server Settings")
	fmt.Println("3. Configure Stat Multipliers")
	fmt.Println("4. Manage Mods")
	fmt.Println("5. Start Server")
	fmt.Println("6. Stop Server")
	fmt.Println("7. Server Status")
	fmt.Println("8. Create Backup")
	fmt.Println("9. RCON Console")
	fmt.Println("10. View Logs")
	fmt.Println("0. Exit")
}

func (m *Manager) installUpdate(rl *readline.Instance) {
	fmt.Println(header("Install/Update Server"))
	validate := promptBool(rl, "Force validate?", false)
	if err := m.Steam.InstallOrUpdate(validate); err != nil {
		fmt.Println(failf("%s", err))
		return
	}
	fmt.Println(okf("Server installation up to date"))
}

func (m *Manager) configureServer(rl *readline.Instance) {
	fmt.Println(header("Server Configuration"))
	s, err := m.Config.ServerSettings()
	if err != nil {
		fmt.Println(failf("read settings: %s", err))
		return
	}

	s.SessionName = Sanitize(promptString(rl, "Server Name", s.SessionName), MaxServerNameLen)
	s.MaxPlayers = promptInt(rl, "Max Players", s.MaxPlayers)
	if pw := promptString(rl, "Server Password (optional)", s.ServerPassword); pw != "" {
		s.ServerPassword = Sanitize(pw, MaxPasswordLen)
	}
	for {
		pw := promptString(rl, "Admin Password", s.AdminPassword)
		if StrongPassword(pw) {
			s.AdminPassword = Sanitize(pw, MaxPasswordLen)
			break
		}
		fmt.Printf("Password must be %d-%d characters\n", MinPasswordLen, MaxPasswordLen)
	}
	s.XPMultiplier = promptFloat(rl, "XP Multiplier", s.XPMultiplier)
	s.TamingSpeed = promptFloat(rl, "Taming Speed", s.TamingSpeed)
	s.HarvestAmount = promptFloat(rl, "Harvest Amount", s.HarvestAmount)
	s.DifficultyOffset = promptFloat(rl, "Difficulty Offset", s.DifficultyOffset)
	s.PVE = promptBool(rl, "PvE Mode?", s.PVE)
	s.RCONEnabled = promptBool(rl, "Enable RCON?", s.RCONEnabled)
	if s.RCONEnabled {
		s.RCONPort = promptInt(rl, "RCON Port", s.RCONPort)
	}

	if err := m.Config.SetServerSettings(s); err != nil {
		fmt.Println(failf("write settings: %s", err))
		return
	}
	fmt.Println(okf("Server settings updated"))
}

func (m *Manager) configureStats(rl *readline.Instance) {
	fmt.Println(header("Stat Multipliers"))
	fmt.Println("Per-level multipliers. Press Enter to keep the current value.")
	s, err := m.Config.StatMultipliers()
	if err != nil {
		fmt.Println(failf("read multipliers: %s", err))
		return
	}

	fmt.Println("\n--- Player Stats ---")
	s.PlayerHealth = promptFloat(rl, "Player Health per level", s.PlayerHealth)
	s.PlayerStamina = promptFloat(rl, "Player Stamina per level", s.PlayerStamina)
	s.PlayerWeight = promptFloat(rl, "Player Weight per level", s.PlayerWeight)
	fmt.Println("\n--- Dino Stats ---")
	s.DinoHealth = promptFloat(rl, "Dino Health per level", s.DinoHealth)
	s.DinoStamina = promptFloat(rl, "Dino Stamina per level", s.DinoStamina)
	s.DinoWeight = promptFloat(rl, "Dino Weight per level", s.DinoWeight)

	if err := m.Config.SetStatMultipliers(s); err != nil {
		fmt.Println(failf("write multipliers: %s", err))
		return
	}
	fmt.Println(okf("Stat multipliers updated"))
}

func (m *Manager) manageMods(rl *readline.Instance) {
	fmt.Println(header("Mod Management"))
	mods, err := m.Config.ActiveMods()
	if err != nil {
		fmt.Println(failf("read mods: %s", err))
		return
	}
	if len(mods) > 0 {
		fmt.Printf("Current mods: %s\n", strings.Join(mods, ", "))
	} else {
		fmt.Println("No mods currently active")
	}

	fmt.Println("\n1. Add/Replace mods")
	fmt.Println("2. Remove all mods")
	fmt.Println("3. Cancel")
	switch promptString(rl, "Choice", "3") {
	case "1":
		raw := promptString(rl, "Mod IDs (comma-separated, CurseForge)", "")
		if raw == "" {
			return
		}
		if err := m.Config.SetMods(strings.Split(raw, ",")); err != nil {
			fmt.Println(failf("%s", err))
			return
		}
		fmt.Println(warnf("Server restart required for mod changes"))
	case "2":
		if !promptBool(rl, "Remove all mods?", false) {
			return
		}
		if err := m.Config.ClearMods(); err != nil {
			fmt.Println(failf("%s", err))
			return
		}
		fmt.Println(warnf("Server restart required for mod changes"))
	}
}

func (m *Manager) startServer(rl *readline.Instance) {
	fmt.Println(header("Start Server"))
	st := m.Settings
	opt := LaunchOptions{
		Map:        promptString(rl, "Map Name", st.Server.Map),
		GamePort:   promptInt(rl, "Game Port", st.Server.GamePort),
		QueryPort:  promptInt(rl, "Query Port", st.Server.QueryPort),
		MaxPlayers: promptInt(rl, "Max Players", st.Server.MaxPlayers),
	}
	if err := m.Server.Start(opt); err != nil {
		fmt.Println(failf("%s", err))
		return
	}
	fmt.Println(okf("Server started (PID: %d)", m.Server.PID()))
	fmt.Println("  Logs: " + m.Logs.Dir())

	// Remember the answers as the next run's defaults.
	st.Server.Map, st.Server.GamePort = opt.Map, opt.GamePort
	st.Server.QueryPort, st.Server.MaxPlayers = opt.QueryPort, opt.MaxPlayers
	if err := st.Save(m.BaseDir); err != nil {
		m.log.Warning("Failed to persist settings: %s.", err)
	}
}

func (m *Manager) stopServer() {
	if err := m.Server.Stop(); err != nil {
		fmt.Println(failf("%s", err))
		return
	}
	fmt.Println(okf("Server stopped"))
}

func (m *Manager) showStatus() {
	fmt.Println(header("Server Status"))
	fmt.Printf("Server installed: %v\n", m.Server.Installed())
	fmt.Printf("Server running:   %v\n", m.Server.Running())
	if pid := m.Server.PID(); pid != 0 {
		fmt.Printf("Process ID:       %d\n", pid)
	}
	if mods, err := m.Config.ActiveMods(); err == nil && len(mods) > 0 {
		fmt.Printf("Active mods:      %s\n", strings.Join(mods, ", "))
	}
}

func (m *Manager) createBackup() {
	fmt.Println(header("Create Backup"))
	path, size, err := m.Backups.Create()
	if err != nil {
		fmt.Println(failf("%s", err))
		return
	}
	fmt.Println(okf("Backup created: %s (%.2f MB)", path, float64(size)/(1024*1024)))
}

func (m *Manager) viewLogs(rl *readline.Instance) {
	fmt.Println(header("Server Logs"))
	infos, err := m.Logs.List()
	if err != nil {
		fmt.Println(failf("%s", err))
		return
	}
	if len(infos) == 0 {
		fmt.Println("No logs found. Server may not have been started yet.")
		return
	}
	show := infos
	if len(show) > 10 {
		show = show[:10]
	}
	for i, li := range show {
		fmt.Printf("%d. %s (%.1f KB, %s)\n", i+1, li.Name, float64(li.Size)/1024, li.ModTime.Format("2006-01-02 15:04"))
	}
	if !promptBool(rl, "View tail of most recent log?", true) {
		return
	}
	lines, err := m.Logs.Tail(infos[0].Name, 50)
	if err != nil {
		fmt.Println(failf("%s", err))
		return
	}
	fmt.Printf("\n=== Last %d lines of %s ===\n", len(lines), infos[0].Name)
	for _, l := range lines {
		fmt.Println(l)
	}
}

func (m *Manager) shutdown() {
	fmt.Println("\nShutting down...")
	if m.Server.Running() {
		if err := m.Server.Stop(); err != nil {
			m.log.Error("Failed to stop server during shutdown: %s.", err)
		}
	}
	fmt.Println("Goodbye!")
}

func promptString(rl *readline.Instance, prompt, def string) string {
	defer rl.SetPrompt("> ")
	if def != "" {
		rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, def))
	} else {
		rl.SetPrompt(prompt + ": ")
	}
	line, err := rl.Readline()
	if err != nil {
		return def
	}
	if line = strings.TrimSpace(line); line == "" {
		return def
	}
	return line
}

func promptInt(rl *readline.Instance, prompt string, def int) int {
	for {
		raw := promptString(rl, prompt, strconv.Itoa(def))
		v, err := strconv.Atoi(raw)
		if err == nil {
			return v
		}
		fmt.Println("Invalid input. Please enter a valid number.")
	}
}

func promptFloat(rl *readline.Instance, prompt string, def float64) float64 {
	for {
		raw := promptString(rl, prompt, strconv.FormatFloat(def, 'f', -1, 64))
		v, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			return v
		}
		fmt.Println("Invalid input. Please enter a valid number.")
	}
}

func promptBool(rl *readline.Instance, prompt string, def bool) bool {
	d := "n"
	if def {
		d = "y"
	}
	for {
		switch strings.ToLower(promptString(rl, prompt+" (y/n)", d)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}
