package parser

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"itkit/internal/discovery"
	"itkit/internal/domain"
)

type xmlSuites struct {
	XMLName xml.Name   `xml:"testsuites"`
	Suites  []xmlSuite `xml:"testsuite"`
}

type xmlSuite struct {
	XMLName    xml.Name      `xml:"testsuite"`
	Name       string        `xml:"name,attr"`
	Time       string        `xml:"time,attr,omitempty"`
	Tests      string        `xml:"tests,attr"`
	Errors     string        `xml:"errors,attr"`
	Skipped    string        `xml:"skipped,attr"`
	Failures   string        `xml:"failures,attr"`
	Flakes     string        `xml:"flakes,attr,omitempty"`
	Properties []xmlProperty `xml:"properties>property,omitempty"`
	Cases      []xmlCase     `xml:"testcase"`
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlCase struct {
	Name          string       `xml:"name,attr"`
	ClassName     string       `xml:"classname,attr,omitempty"`
	Time          string       `xml:"time,attr,omitempty"`
	Failure       *xmlProblem  `xml:"failure,omitempty"`
	Error         *xmlProblem  `xml:"error,omitempty"`
	Skipped       *xmlProblem  `xml:"skipped,omitempty"`
	FlakyFailures []xmlProblem `xml:"flakyFailure,omitempty"`
	FlakyErrors   []xmlProblem `xml:"flakyError,omitempty"`
	RerunFailures []xmlProblem `xml:"rerunFailure,omitempty"`
	RerunErrors   []xmlProblem `xml:"rerunError,omitempty"`
	SystemOut     string       `xml:"system-out,omitempty"`
	SystemErr     string       `xml:"system-err,omitempty"`
}

type xmlProblem struct {
	Message    string `xml:"message,attr,omitempty"`
	Type       string `xml:"type,attr,omitempty"`
	StackTrace string `xml:"stackTrace,omitempty"`
	Body       string `xml:",chardata"`
}

func (p *xmlProblem) stack() string {
	if p.StackTrace != "" {
		return restore(p.StackTrace)
	}
	return restore(strings.TrimSpace(p.Body))
}

// SurefireParser parses TEST-<class>.xml reports
type SurefireParser struct {
	scanner *discovery.Scanner
	workers int
}

// NewSurefireParser creates a new SurefireParser
func NewSurefireParser(scanner *discovery.Scanner) *SurefireParser {
	return &SurefireParser{scanner: scanner, workers: runtime.NumCPU()}
}

// ParseReports parses every report found in dirs. Reports come back in
// discovery order: directories in the given order, files by name within one.
// A malformed file fails the whole call with a *domain.ReportParseError.
func (p *SurefireParser) ParseReports(ctx context.Context, dirs ...string) ([]domain.TestSuiteReport, error) {
	files, err := p.scanner.ScanReports(dirs...)
	if err != nil {
		return nil, err
	}

	parsed := make([][]domain.TestSuiteReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports, err := ParseFile(file)
			if err != nil {
				return err
			}
			parsed[i] = reports
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reports := make([]domain.TestSuiteReport, 0, len(files))
	for _, r := range parsed {
		reports = append(reports, r...)
	}
	return reports, nil
}

// ParseFile parses a single report file. A <testsuites> wrapper yields one report per suite.
func ParseFile(path string) ([]domain.TestSuiteReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ReportParseError{File: path, Err: err}
	}
	reports, err := Decode(data)
	if err != nil {
		return nil, &domain.ReportParseError{File: path, Err: err}
	}
	for i := range reports {
		reports[i].File = path
	}
	return reports, nil
}

// Decode parses report XML
func Decode(data []byte) ([]domain.TestSuiteReport, error) {
	dec := xml.NewDecoder(bytes.NewReader(protectInput(data)))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no testsuite element")
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "testsuite":
			var s xmlSuite
			if err := dec.DecodeElement(&s, &start); err != nil {
				return nil, err
			}
			report, err := convertSuite(s)
			if err != nil {
				return nil, err
			}
			return []domain.TestSuiteReport{report}, nil
		case "testsuites":
			var ss xmlSuites
			if err := dec.DecodeElement(&ss, &start); err != nil {
				return nil, err
			}
			reports := make([]domain.TestSuiteReport, 0, len(ss.Suites))
			for _, s := range ss.Suites {
				report, err := convertSuite(s)
				if err != nil {
					return nil, err
				}
				reports = append(reports, report)
			}
			return reports, nil
		default:
			return nil, fmt.Errorf("unexpected root element <%s>", start.Name.Local)
		}
	}
}

func convertSuite(s xmlSuite) (domain.TestSuiteReport, error) {
	report := domain.TestSuiteReport{
		Name:  restore(s.Name),
		Cases: make([]domain.TestCaseResult, 0, len(s.Cases)),
	}

	var err error
	if report.Time, err = parseTime(s.Time); err != nil {
		return report, fmt.Errorf("suite %s: %w", s.Name, err)
	}
	for _, prop := range s.Properties {
		report.Properties = append(report.Properties, domain.Property{Key: restore(prop.Name), Value: restore(prop.Value)})
	}

	var derived domain.Counts
	for _, c := range s.Cases {
		tc, err := convertCase(c)
		if err != nil {
			return report, fmt.Errorf("suite %s: %w", s.Name, err)
		}
		derived.Total++
		switch tc.Status {
		case domain.CaseError:
			derived.Errors++
		case domain.CaseFailed:
			derived.Failures++
		case domain.CaseSkipped:
			derived.Skipped++
		case domain.CaseFlaky:
			derived.Flakes++
		}
		report.Cases = append(report.Cases, tc)
	}

	if s.Tests == "" {
		report.Counts = derived
	} else {
		counts := domain.Counts{Flakes: derived.Flakes}
		fields := []struct {
			name  string
			value string
			dst   *int
		}{
			{"tests", s.Tests, &counts.Total},
			{"errors", s.Errors, &counts.Errors},
			{"failures", s.Failures, &counts.Failures},
			{"skipped", s.Skipped, &counts.Skipped},
		}
		for _, f := range fields {
			if *f.dst, err = parseCount(f.name, f.value); err != nil {
				return report, fmt.Errorf("suite %s: %w", s.Name, err)
			}
		}
		if s.Flakes != "" {
			if counts.Flakes, err = parseCount("flakes", s.Flakes); err != nil {
				return report, fmt.Errorf("suite %s: %w", s.Name, err)
			}
		}
		report.Counts = counts
	}

	if report.Counts.Passed() < 0 {
		return report, fmt.Errorf("suite %s: inconsistent counts: tests=%d errors=%d failures=%d skipped=%d",
			s.Name, report.Counts.Total, report.Counts.Errors, report.Counts.Failures, report.Counts.Skipped)
	}
	return report, nil
}

func convertCase(c xmlCase) (domain.TestCaseResult, error) {
	tc := domain.TestCaseResult{
		Name:      restore(c.Name),
		ClassName: restore(c.ClassName),
		Status:    domain.CasePassed,
		SystemOut: restore(c.SystemOut),
		SystemErr: restore(c.SystemErr),
	}
	var err error
	if tc.Time, err = parseTime(c.Time); err != nil {
		return tc, fmt.Errorf("testcase %s: %w", c.Name, err)
	}

	var problem *xmlProblem
	switch {
	case c.Error != nil:
		tc.Status, problem = domain.CaseError, c.Error
	case c.Failure != nil:
		tc.Status, problem = domain.CaseFailed, c.Failure
	case c.Skipped != nil:
		tc.Status, problem = domain.CaseSkipped, c.Skipped
	case len(c.FlakyFailures) > 0 || len(c.FlakyErrors) > 0:
		tc.Status = domain.CaseFlaky
	}
	if problem != nil {
		tc.Message = restore(problem.Message)
		tc.Type = restore(problem.Type)
		tc.Stack = problem.stack()
	}

	reruns := []struct {
		kind     string
		problems []xmlProblem
	}{
		{"flakyFailure", c.FlakyFailures},
		{"flakyError", c.FlakyErrors},
		{"rerunFailure", c.RerunFailures},
		{"rerunError", c.RerunErrors},
	}
	for _, group := range reruns {
		for i := range group.problems {
			p := &group.problems[i]
			tc.Reruns = append(tc.Reruns, domain.Rerun{
				Kind:    group.kind,
				Message: restore(p.Message),
				Type:    restore(p.Type),
				Stack:   p.stack(),
			})
		}
	}
	return tc, nil
}

func parseCount(name, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s count %q", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative %s count %d", name, n)
	}
	return n, nil
}

// parseTime accepts plain seconds and locale-grouped values such as "1,024.5"
func parseTime(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return f, nil
}
