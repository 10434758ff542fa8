package manager

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/PurpleSec/logx"
)

// serverExeRel is where the dedicated server binary lives inside an
// install. ASA ships Windows binaries only; on Linux hosts the path is the
// same under Proton.
const serverExeRel = "ShooterGame/Binaries/Win64/ArkAscendedServer.exe"

// stopGrace is how long Stop waits for a clean exit before killing the
// process. World saves can take a while on large maps.
const stopGrace = 30 * time.Second

var (
	// ErrNotInstalled is returned by Start when no server executable exists.
	ErrNotInstalled = errors.New("server is not installed")
	// ErrRunning is returned by Start when the server is already up.
	ErrRunning = errors.New("server is already running")
	// ErrNotRunning is returned by Stop when there is nothing to stop.
	ErrNotRunning = errors.New("server is not running")
)

// LaunchOptions are the per-start parameters of the dedicated server.
type LaunchOptions struct {
	Map        string
	GamePort   int
	QueryPort  int
	MaxPlayers int
}

// Controller owns the dedicated server child process. It spawns, watches
// and stops exactly one process at a time; a crashed or stopped server must
// be started again explicitly.
type Controller struct {
	log       logx.Log
	cmd       *exec.Cmd
	done      chan struct{}
	serverDir string
	exe       string
	grace     time.Duration
	mu        sync.Mutex
}

// NewController returns a Controller for the install at serverDir.
func NewController(serverDir string, log logx.Log) *Controller {
	return &Controller{
		serverDir: serverDir,
		exe:       filepath.Join(serverDir, filepath.FromSlash(serverExeRel)),
		grace:     stopGrace,
		log:       log,
	}
}

// Installed reports whether the server executable exists.
func (c *Controller) Installed() bool {
	_, err := os.Stat(c.exe)
	return err == nil
}

// Running reports whether the child process is alive.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running()
}

func (c *Controller) running() bool {
	if c.cmd == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// PID returns the child process ID, or zero when nothing is running.
func (c *Controller) PID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running() {
		return 0
	}
	return c.cmd.Process.Pid
}

// Args builds the server command line for the given options, validating
// them first.
func (c *Controller) Args(opt LaunchOptions) ([]string, error) {
	if opt.Map == "" {
		opt.Map = DefaultMap
	}
	opt.Map = Sanitize(opt.Map, 64)
	if !ValidPort(opt.GamePort) {
		return nil, fmt.Errorf("game port %d out of range", opt.GamePort)
	}
	if !ValidPort(opt.QueryPort) {
		return nil, fmt.Errorf("query port %d out of range", opt.QueryPort)
	}
	if opt.MaxPlayers <= 0 {
		opt.MaxPlayers = 10
	}
	return []string{
		opt.Map + "?listen",
		fmt.Sprintf("-Port=%d", opt.GamePort),
		fmt.Sprintf("-QueryPort=%d", opt.QueryPort),
		fmt.Sprintf("-MaxPlayers=%d", opt.MaxPlayers),
		"-WinLiveMaxPlayers=10",
		"-server",
		"-log",
	}, nil
}

// Start launches the server with the given options. Output goes to the
// manager's console; the game writes its own logs under
// ShooterGame/Saved/Logs.
func (c *Controller) Start(opt LaunchOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running() {
		return ErrRunning
	}
	if !c.Installed() {
		return ErrNotInstalled
	}
	args, err := c.Args(opt)
	if err != nil {
		return err
	}

	cmd := exec.Command(c.exe, args...)
	cmd.Dir = c.serverDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	done := make(chan struct{})
	go func() {
		err := cmd.Wait()
		close(done)
		if err != nil {
			c.log.Warning("Server process exited: %s.", err)
		} else {
			c.log.Info("Server process exited cleanly.")
		}
	}()

	c.cmd, c.done = cmd, done
	c.log.Info("Server started with PID %d on map %q.", cmd.Process.Pid, opt.Map)
	return nil
}

// Stop asks the server to exit and waits up to the grace period before
// killing it.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running() {
		return ErrNotRunning
	}

	c.log.Info("Stopping server PID %d.", c.cmd.Process.Pid)
	if err := c.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Signal delivery is unsupported on some platforms; fall through to
		// a hard kill after the grace period either way.
		c.log.Warning("SIGTERM failed (%s), will kill after grace period.", err)
	}

	select {
	case <-c.done:
	case <-time.After(c.grace):
		c.log.Warning("Graceful shutdown timed out, killing PID %d.", c.cmd.Process.Pid)
		c.cmd.Process.Kill()
		<-c.done
	}
	c.cmd, c.done = nil, nil
	return nil
}
