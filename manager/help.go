package manager

import "fmt"

func PrintHelp() {
	fmt.Printf(`Usage: %s [OPTIONS] [RCON COMMANDS]

Manage a locally hosted ARK: Survival Ascended dedicated server.

Options:
  -d		Base directory (default: %s)
  -H		RCON address (default: %s)
  -P		RCON port (default: %d)
  -p		RCON password
  -t		RCON terminal mode (skip the menu)
  -s		Silent mode (suppress command responses)
  -c		Disable colors
  -w		Wait between batched commands, in seconds (1-%d)
  -V		Verbose logging (includes per-packet RCON records)
  -h		Print usage
  -v		Version information

Base directory, address, port and password can be set with environment
variables:
  ASAMGR_DIR
  ASAMGR_HOST
  ASAMGR_PORT
  ASAMGR_PASS

- %s starts the interactive menu when no commands are given and -t is unset
- Command-line options override environment variables
- RCON commands with spaces must be enclosed in quotes

Example:
	%s -p password -w 5 "Broadcast Server is restarting!" SaveWorld DoExit

`, AppName, DefaultBaseDir, DefaultHost, DefaultRCONPort, MaxWaitTime, AppName, AppName)
}
