package fixture

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"itkit/internal/filelock"
)

// EnvFileName is a fixture-local file of environment overrides in .env format
const EnvFileName = "itkit.env"

// claimLockName serializes directory claims under a work root
const claimLockName = ".itkit.lock"

// maxClaimAttempts bounds the -2, -3, ... suffixes tried for one fixture
const maxClaimAttempts = 1000

// claim is an unpacked working directory owned by one launcher
type claim struct {
	dir  string
	lock *filelock.Lock
}

func (c *claim) release() error {
	if c == nil || c.lock == nil {
		return nil
	}
	return c.lock.Unlock()
}

// unpack copies the fixture at src into a fresh directory under workRoot named
// base, base-2, base-3, ... whichever is not held by a live launcher. A
// directory left behind by an earlier run is cleared and reused.
func unpack(src, workRoot, base string, ignore map[string]bool) (*claim, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", src)
	}
	if err := os.MkdirAll(workRoot, 0755); err != nil {
		return nil, fmt.Errorf("create work root: %w", err)
	}

	global := filelock.New(filepath.Join(workRoot, claimLockName))
	if err := global.Lock(); err != nil {
		return nil, err
	}
	defer global.Unlock()

	for attempt := 1; attempt <= maxClaimAttempts; attempt++ {
		name := base
		if attempt > 1 {
			name = base + "-" + strconv.Itoa(attempt)
		}

		lock := filelock.New(filepath.Join(workRoot, "."+name+".lock"))
		held, err := lock.TryLock()
		if err != nil {
			return nil, err
		}
		if !held {
			continue
		}

		dir := filepath.Join(workRoot, name)
		if err := os.RemoveAll(dir); err != nil {
			lock.Unlock()
			return nil, fmt.Errorf("clear stale directory %s: %w", dir, err)
		}
		if err := copyTree(src, dir, ignore); err != nil {
			lock.Unlock()
			return nil, err
		}
		return &claim{dir: dir, lock: lock}, nil
	}
	return nil, fmt.Errorf("no free working directory for %s after %d attempts", base, maxClaimAttempts)
}

// copyTree copies the regular files and directories of src into dst
func copyTree(src, dst string, ignore map[string]bool) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if rel != "." && ignore[d.Name()] {
				return filepath.SkipDir
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

// readEnvFile loads the fixture's itkit.env, if any
func readEnvFile(dir string) (map[string]string, error) {
	env, err := godotenv.Read(filepath.Join(dir, EnvFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return env, err
}
