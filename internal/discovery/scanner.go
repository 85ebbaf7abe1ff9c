package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	reportPrefix = "TEST-"
	reportSuffix = ".xml"
)

// Scanner finds report files, fixture projects and test sources on disk
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// ScanReports lists TEST-*.xml files. Directories are visited in the given
// order and files are sorted by name within each directory. A directory that
// does not exist contributes no files.
func (s *Scanner) ScanReports(dirs ...string) ([]string, error) {
	reports := make([]string, 0)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading reports directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, reportSuffix) {
				continue
			}
			reports = append(reports, filepath.Join(dir, name))
		}
	}
	return reports, nil
}

// ScanFixtures returns the names of the fixture projects directly under root
func (s *Scanner) ScanFixtures(root string) ([]string, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("fixtures root does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures root is not a directory: %s", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var fixtures []string
	for _, entry := range entries {
		if !entry.IsDir() || s.skip(entry.Name()) {
			continue
		}
		fixtures = append(fixtures, entry.Name())
	}
	return fixtures, nil
}

// Scan finds all test source files in the given root directory
func (s *Scanner) Scan(root string) ([]string, error) {
	var testfiles []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && s.skip(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if IsTestSource(d.Name()) {
			testfiles = append(testfiles, path)
		}
		return nil
	})

	sort.Strings(testfiles)
	return testfiles, err
}

func (s *Scanner) skip(name string) bool {
	// Hidden directories hold lock files and run output
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return s.skipDirs[name]
}

// IsTestSource reports whether a file name follows the default test class
// naming: Test*.java, *Test.java, *Tests.java, *TestCase.java or *IT.java.
func IsTestSource(name string) bool {
	if !strings.HasSuffix(name, ".java") {
		return false
	}
	base := strings.TrimSuffix(name, ".java")
	if strings.HasPrefix(base, "Test") && len(base) > len("Test") {
		return true
	}
	for _, suffix := range []string{"Test", "Tests", "TestCase", "IT"} {
		if strings.HasSuffix(base, suffix) && len(base) > len(suffix) {
			return true
		}
	}
	return false
}
