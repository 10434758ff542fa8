package manager

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"asamgr/rcon"
)

// Admin commands offered by the console completer. Commands are opaque to
// the client; this list only feeds tab completion.
var consoleCompleter = readline.NewPrefixCompleter(
	readline.PcItem("SaveWorld"),
	readline.PcItem("ListPlayers"),
	readline.PcItem("GetChat"),
	readline.PcItem("Broadcast"),
	readline.PcItem("ServerChat"),
	readline.PcItem("DestroyWildDinos"),
	readline.PcItem("KickPlayer"),
	readline.PcItem("BanPlayer"),
	readline.PcItem("UnbanPlayer"),
	readline.PcItem("ShowMessageOfTheDay"),
	readline.PcItem("SetTimeOfDay"),
	readline.PcItem("DoExit"),
)

// RunConsole runs the RCON console standalone, outside the menu. An empty
// password is prompted for interactively.
func (m *Manager) RunConsole(password string) error {
	rl, err := readline.NewEx(menuReadlineConfig(m.BaseDir))
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()
	m.console(rl, password)
	return nil
}

// console drives an interactive RCON session against the configured server.
func (m *Manager) console(rl *readline.Instance, password string) {
	// Command completion applies only while the console is active; the menu
	// keeps its plain line editor.
	cfg := rl.Config.Clone()
	cfg.AutoComplete = consoleCompleter
	old := rl.SetConfig(cfg)
	defer rl.SetConfig(old)

	fmt.Println(header("RCON Console"))
	fmt.Println("RCON must be enabled in the server settings.")

	if password == "" {
		pw, err := rl.ReadPassword("RCON Password: ")
		if err != nil {
			return
		}
		password = string(pw)
	}
	if !StrongPassword(password) {
		fmt.Println(failf("password must be %d-%d characters", MinPasswordLen, MaxPasswordLen))
		return
	}

	sess, err := rcon.Dial(rcon.Config{
		Host:     m.Settings.RCON.Host,
		Port:     m.Settings.RCON.Port,
		Password: password,
		Timeout:  m.Settings.RCONTimeout(),
		Log:      m.log,
	})
	if err != nil {
		m.printDialError(err)
		return
	}
	defer sess.Close()

	fmt.Println(okf("Connected to %s:%d. Type 'exit' to quit.", m.Settings.RCON.Host, m.Settings.RCON.Port))
	fmt.Println("Common commands: SaveWorld, ListPlayers, Broadcast <message>")

	defer rl.SetPrompt("> ")
	rl.SetPrompt("RCON> ")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		cmd := strings.TrimSpace(line)
		if cmd == "" {
			continue
		}
		if strings.EqualFold(cmd, "exit") {
			return
		}

		out, err := sess.Execute(cmd)
		if err != nil {
			var pe *rcon.ProtocolError
			switch {
			case errors.As(err, &pe):
				// The session survives a bad response; the next command may
				// work fine.
				fmt.Println(failf("%s", err))
			case rcon.IsTimeout(err):
				fmt.Println(failf("server did not answer in time: %s", err))
				return
			default:
				fmt.Println(failf("connection lost: %s", err))
				return
			}
			continue
		}
		if out != "" {
			fmt.Println(strings.TrimRight(out, "\n"))
		}
	}
}

func (m *Manager) printDialError(err error) {
	switch {
	case errors.Is(err, rcon.ErrAuth):
		fmt.Println(failf("wrong RCON password"))
	case rcon.IsTimeout(err):
		fmt.Println(failf("connection timed out: %s", err))
	default:
		fmt.Println(failf("connection failed: %s", err))
		fmt.Println("Ensure:")
		fmt.Println("  1. The server is running")
		fmt.Println("  2. RCON is enabled in the server settings")
		fmt.Println("  3. The RCON port matches manager.yaml")
	}
}
