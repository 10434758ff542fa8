package manager

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PurpleSec/logx"
)

// savedRel is the directory inside the install that holds everything worth
// backing up: world saves, both INI files and the server logs.
const savedRel = "ShooterGame/Saved"

const backupPrefix = "backup_"

// Backups copies the server's Saved tree into timestamped directories under
// <base>/backups and prunes old ones past the retention count.
type Backups struct {
	log       logx.Log
	serverDir string
	dir       string
	keep      int
}

// NewBackups returns a backup manager writing under baseDir/backups. A keep
// of zero or less disables pruning.
func NewBackups(serverDir, baseDir string, keep int, log logx.Log) *Backups {
	return &Backups{
		serverDir: serverDir,
		dir:       filepath.Join(baseDir, "backups"),
		keep:      keep,
		log:       log,
	}
}

// Create copies the Saved tree into a new timestamped backup and returns
// its path and total size in bytes.
func (b *Backups) Create() (string, int64, error) {
	src := filepath.Join(b.serverDir, filepath.FromSlash(savedRel))
	if _, err := os.Stat(src); err != nil {
		return "", 0, fmt.Errorf("nothing to back up, no Saved directory at %s", src)
	}

	name := backupPrefix + time.Now().Format("20060102_150405")
	dst := filepath.Join(b.dir, name)
	if err := os.MkdirAll(dst, 0755); err != nil {
		return "", 0, fmt.Errorf("create backup dir: %w", err)
	}

	size, err := copyTree(src, filepath.Join(dst, "Saved"))
	if err != nil {
		return "", 0, fmt.Errorf("backup copy: %w", err)
	}
	b.log.Info("Backup %q created, %.2f MB.", name, float64(size)/(1024*1024))

	if err := b.prune(); err != nil {
		b.log.Warning("Backup pruning failed: %s.", err)
	}
	return dst, size, nil
}

// List returns existing backup directory names, newest first.
func (b *Backups) List() ([]string, error) {
	ents, err := os.ReadDir(b.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range ents {
		if e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) {
			names = append(names, e.Name())
		}
	}
	// The timestamp format sorts lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (b *Backups) prune() error {
	if b.keep <= 0 {
		return nil
	}
	names, err := b.List()
	if err != nil {
		return err
	}
	for _, name := range names[min(b.keep, len(names)):] {
		if err := os.RemoveAll(filepath.Join(b.dir, name)); err != nil {
			return err
		}
		b.log.Info("Pruned old backup %q.", name)
	}
	return nil
}

func copyTree(src, dst string) (int64, error) {
	var total int64
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		n, err := copyFile(path, target)
		total += n
		return err
	})
	return total, err
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
