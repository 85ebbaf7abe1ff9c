package assertion

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// FileExists checks that path exists
func FileExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return mismatch("file "+path, "exists", "missing")
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}

// FileNotExists checks that path does not exist
func FileNotExists(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return mismatch("file "+path, "missing", "exists")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}

// FileContains checks that the file at path contains text
func FileContains(path, text string) error {
	content, err := readFile(path)
	if err != nil {
		return err
	}
	if !strings.Contains(content, text) {
		return mismatch(fmt.Sprintf("text %q in %s", text, path), "present", "absent")
	}
	return nil
}

// FileNotContains checks that the file at path does not contain text
func FileNotContains(path, text string) error {
	content, err := readFile(path)
	if err != nil {
		return err
	}
	if strings.Contains(content, text) {
		return mismatch(fmt.Sprintf("text %q in %s", text, path), "absent", "present")
	}
	return nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", mismatch("file "+path, "exists", "missing")
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
