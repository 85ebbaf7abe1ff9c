package parser

import (
	"regexp"
	"strconv"

	"itkit/internal/domain"
)

var (
	// Tests run: 3, Failures: 1, Errors: 0, Skipped: 0[, Flakes: 1][, Time elapsed: 0.1 s ... - in pkg.Class]
	testsRunPattern = regexp.MustCompile(`Tests run:\s*(\d+),\s*Failures:\s*(\d+),\s*Errors:\s*(\d+),\s*Skipped:\s*(\d+)(?:,\s*Flakes:\s*(\d+))?`)
	elapsedPattern  = regexp.MustCompile(`Time elapsed:`)
	classPattern    = regexp.MustCompile(`(?:-|<<<.*?)\s+in\s+([\w.$]+)\s*$`)
)

// ClassSummary is the per-class result line printed while tests run
type ClassSummary struct {
	ClassName string
	Counts    domain.Counts
}

// ParseSummaries returns every aggregate "Tests run:" line of a console
// transcript in order. Per-class lines (those with "Time elapsed") are skipped.
func ParseSummaries(lines []string) []domain.Counts {
	var out []domain.Counts
	for _, line := range lines {
		counts, ok := parseCounts(line)
		if !ok || elapsedPattern.MatchString(line) {
			continue
		}
		out = append(out, counts)
	}
	return out
}

// ParseSummary returns the last aggregate result line of a transcript
func ParseSummary(lines []string) (domain.Counts, bool) {
	all := ParseSummaries(lines)
	if len(all) == 0 {
		return domain.Counts{}, false
	}
	return all[len(all)-1], true
}

// ParseClassSummaries returns the per-class result lines of a transcript
func ParseClassSummaries(lines []string) []ClassSummary {
	var out []ClassSummary
	for _, line := range lines {
		if !elapsedPattern.MatchString(line) {
			continue
		}
		counts, ok := parseCounts(line)
		if !ok {
			continue
		}
		summary := ClassSummary{Counts: counts}
		if m := classPattern.FindStringSubmatch(line); len(m) == 2 {
			summary.ClassName = m[1]
		}
		out = append(out, summary)
	}
	return out
}

func parseCounts(line string) (domain.Counts, bool) {
	m := testsRunPattern.FindStringSubmatch(line)
	if len(m) < 5 {
		return domain.Counts{}, false
	}
	var c domain.Counts
	c.Total, _ = strconv.Atoi(m[1])
	c.Failures, _ = strconv.Atoi(m[2])
	c.Errors, _ = strconv.Atoi(m[3])
	c.Skipped, _ = strconv.Atoi(m[4])
	if m[5] != "" {
		c.Flakes, _ = strconv.Atoi(m[5])
	}
	return c, true
}
