// Package parser reads the result artifacts a build leaves behind: XML suite
// reports, per-class output files and the console transcript.
package parser

import (
	"context"

	"itkit/internal/domain"
)

// Parser parses test reports found in report directories
type Parser interface {
	ParseReports(ctx context.Context, dirs ...string) ([]domain.TestSuiteReport, error)
}
