package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"asamgr/manager"
	"asamgr/rcon"
)

type options struct {
	baseDir  string
	host     string
	password string
	commands []string
	port     int
	wait     uint
	terminal bool
	silent   bool
	verbose  bool
}

func main() {
	opt := parseFlags()

	setupSignalHandler()

	log, err := manager.NewLogger(opt.baseDir, opt.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, err := manager.New(opt.baseDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// An explicit -H/-P flag or ASAMGR_HOST/ASAMGR_PORT beats manager.yaml
	// for this invocation; otherwise the saved endpoint applies.
	m.Settings.OverrideRCON(opt.host, opt.port)

	// With RCON commands on the command line this acts as a plain batch
	// client; -t jumps straight into the console. Otherwise it drops into
	// the management menu.
	switch {
	case len(opt.commands) > 0:
		os.Exit(runBatch(m, opt))
	case opt.terminal:
		if err := m.RunConsole(opt.password); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		if err := m.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// runBatch executes the given commands over one authenticated session.
func runBatch(m *manager.Manager, opt options) int {
	if opt.password == "" {
		fmt.Println("You must provide a password (-p password).")
		fmt.Println("Try 'asamgr -h' for help.")
		return 1
	}

	sess, err := rcon.Dial(rcon.Config{
		Host:     m.Settings.RCON.Host,
		Port:     m.Settings.RCON.Port,
		Password: opt.password,
		Timeout:  m.Settings.RCONTimeout(),
	})
	if err != nil {
		if errors.Is(err, rcon.ErrAuth) {
			fmt.Fprintln(os.Stderr, "Authentication failed: wrong password")
		} else {
			fmt.Fprintf(os.Stderr, "Connection failed: %v\n", err)
		}
		return 1
	}
	defer sess.Close()

	for i, cmd := range opt.commands {
		out, err := sess.Execute(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
			return 1
		}
		if !opt.silent && out != "" {
			fmt.Println(strings.TrimRight(out, "\n"))
		}
		if i < len(opt.commands)-1 && opt.wait > 0 {
			time.Sleep(time.Duration(opt.wait) * time.Second)
		}
	}
	return 0
}

func parseFlags() options {
	// host and port stay zero unless set here or by a flag below; the
	// manager's settings file supplies the endpoint in that case.
	opt := options{
		baseDir:  getEnvOrDefault("ASAMGR_DIR", manager.DefaultBaseDir),
		host:     os.Getenv("ASAMGR_HOST"),
		password: os.Getenv("ASAMGR_PASS"),
	}
	if p := os.Getenv("ASAMGR_PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			opt.port = v
		}
	}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if !strings.HasPrefix(arg, "-") {
			opt.commands = append(opt.commands, arg)
			continue
		}

		switch arg {
		case "-d":
			if i+1 < len(args) {
				opt.baseDir = args[i+1]
				i++
			}
		case "-H":
			if i+1 < len(args) {
				opt.host = args[i+1]
				i++
			}
		case "-P":
			if i+1 < len(args) {
				v, err := strconv.Atoi(args[i+1])
				if err != nil || !manager.ValidPort(v) {
					fmt.Fprintf(os.Stderr, "Invalid port: %s\n", args[i+1])
					os.Exit(1)
				}
				opt.port = v
				i++
			}
		case "-p":
			if i+1 < len(args) {
				opt.password = args[i+1]
				i++
			}
		case "-w":
			if i+1 < len(args) {
				wait, err := parseWaitSeconds(args[i+1])
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
				opt.wait = wait
				i++
			}
		case "-t":
			opt.terminal = true
		case "-s":
			opt.silent = true
		case "-V":
			opt.verbose = true
		case "-c":
			manager.NoColor = true
		case "-v":
			fmt.Printf("%s %s\n", manager.AppName, manager.Version)
			os.Exit(0)
		case "-h":
			manager.PrintHelp()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
			fmt.Println("Try 'asamgr -h' for help.")
			os.Exit(1)
		}
	}

	return opt
}

func parseWaitSeconds(s string) (uint, error) {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid wait value: %v", err)
	}
	if val <= 0 || val > manager.MaxWaitTime {
		return 0, fmt.Errorf("wait value out of range (1-%d)", manager.MaxWaitTime)
	}
	return uint(val), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func setupSignalHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nExiting...")
		os.Exit(0)
	}()
}
