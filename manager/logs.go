package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const logsRel = "ShooterGame/Saved/Logs"

// LogInfo describes one server log file.
type LogInfo struct {
	ModTime time.Time
	Name    string
	Size    int64
}

// Logs reads the dedicated server's own log directory.
type Logs struct {
	dir string
}

// NewLogs returns a log reader for the install at serverDir.
func NewLogs(serverDir string) *Logs {
	return &Logs{dir: filepath.Join(serverDir, filepath.FromSlash(logsRel))}
}

// Dir is the log directory path.
func (l *Logs) Dir() string {
	return l.dir
}

// List returns the .log files in the directory, newest first.
func (l *Logs) List() ([]LogInfo, error) {
	ents, err := os.ReadDir(l.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var infos []LogInfo
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, LogInfo{Name: e.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModTime.After(infos[j].ModTime)
	})
	return infos, nil
}

// Tail returns the last n lines of the named log file.
func (l *Logs) Tail(name string, n int) ([]string, error) {
	if filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid log name %q", name)
	}
	b, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
