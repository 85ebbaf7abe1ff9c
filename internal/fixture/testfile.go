package fixture

import (
	"os"

	"itkit/internal/assertion"
	"itkit/internal/execution"
)

// TestFile is a file produced by a build under the project directory
type TestFile struct {
	rec  *recorder
	path string
}

// Path returns the absolute file path
func (f *TestFile) Path() string {
	return f.path
}

// Exists reports whether the file is present
func (f *TestFile) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// AssertFileExists records a failure unless the file is present
func (f *TestFile) AssertFileExists() *TestFile {
	f.rec.check(assertion.FileExists(f.path))
	return f
}

// AssertFileNotExists records a failure if the file is present
func (f *TestFile) AssertFileNotExists() *TestFile {
	f.rec.check(assertion.FileNotExists(f.path))
	return f
}

// AssertContainsText records a failure unless the file contains text
func (f *TestFile) AssertContainsText(text string) *TestFile {
	f.rec.check(assertion.FileContains(f.path, text))
	return f
}

// AssertNotContainsText records a failure if the file contains text
func (f *TestFile) AssertNotContainsText(text string) *TestFile {
	f.rec.check(assertion.FileNotContains(f.path, text))
	return f
}

// ReadLines returns the file content split into lines
func (f *TestFile) ReadLines() ([]string, error) {
	return execution.ReadLines(f.path)
}
