package discovery

import (
	"path/filepath"
	"strings"

	"itkit/internal/domain"
)

// Filter selects tests, scenarios and reports by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters names (file paths, scenario names) by pattern using
// wildcard matching against the base name.
// Supports patterns like "*UserTest.java" or "*Payment*"
func (f *Filter) FilterByName(names []string, pattern string) []string {
	if pattern == "" {
		return names
	}

	var filtered []string
	for _, name := range names {
		if Match(filepath.Base(name), pattern) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// FilterByClass keeps the reports whose fully-qualified or simple class name
// matches pattern.
func (f *Filter) FilterByClass(reports []domain.TestSuiteReport, pattern string) []domain.TestSuiteReport {
	if pattern == "" {
		return reports
	}

	filtered := make([]domain.TestSuiteReport, 0, len(reports))
	for _, report := range reports {
		simple := report.Name
		if i := strings.LastIndex(simple, "."); i >= 0 {
			simple = simple[i+1:]
		}
		if Match(report.Name, pattern) || Match(simple, pattern) {
			filtered = append(filtered, report)
		}
	}
	return filtered
}

// Match reports whether name matches pattern. Patterns with * or ? are tried
// with filepath.Match first, then as an ordered set of required substrings;
// plain patterns match as substrings.
func Match(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}
	if !strings.Contains(pattern, "*") {
		return false
	}

	// "*Payment*" style patterns: every non-empty part must appear in order
	rest := name
	hasPart := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		hasPart = true
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}
	return hasPart
}
