package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"itkit/internal/domain"
)

// WriteReport encodes a suite report in the TEST-<class>.xml format. Characters
// XML cannot carry are written as numeric character references, which Decode reads back.
func WriteReport(w io.Writer, report domain.TestSuiteReport) error {
	s := xmlSuite{
		Name:     protectString(report.Name),
		Time:     formatTime(report.Time),
		Tests:    strconv.Itoa(report.Counts.Total),
		Errors:   strconv.Itoa(report.Counts.Errors),
		Skipped:  strconv.Itoa(report.Counts.Skipped),
		Failures: strconv.Itoa(report.Counts.Failures),
	}
	if report.Counts.Flakes > 0 {
		s.Flakes = strconv.Itoa(report.Counts.Flakes)
	}
	for _, p := range report.Properties {
		s.Properties = append(s.Properties, xmlProperty{Name: protectString(p.Key), Value: protectString(p.Value)})
	}
	for _, c := range report.Cases {
		s.Cases = append(s.Cases, caseToXML(c))
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode report %s: %w", report.Name, err)
	}
	buf.WriteByte('\n')

	_, err := w.Write(encodeProtected(buf.Bytes()))
	return err
}

func caseToXML(c domain.TestCaseResult) xmlCase {
	x := xmlCase{
		Name:      protectString(c.Name),
		ClassName: protectString(c.ClassName),
		Time:      formatTime(c.Time),
		SystemOut: protectString(c.SystemOut),
		SystemErr: protectString(c.SystemErr),
	}
	problem := &xmlProblem{
		Message: protectString(c.Message),
		Type:    protectString(c.Type),
		Body:    protectString(c.Stack),
	}
	switch c.Status {
	case domain.CaseFailed:
		x.Failure = problem
	case domain.CaseError:
		x.Error = problem
	case domain.CaseSkipped:
		x.Skipped = problem
	}
	for _, r := range c.Reruns {
		p := xmlProblem{
			Message:    protectString(r.Message),
			Type:       protectString(r.Type),
			StackTrace: protectString(r.Stack),
		}
		switch r.Kind {
		case "flakyFailure":
			x.FlakyFailures = append(x.FlakyFailures, p)
		case "flakyError":
			x.FlakyErrors = append(x.FlakyErrors, p)
		case "rerunFailure":
			x.RerunFailures = append(x.RerunFailures, p)
		case "rerunError":
			x.RerunErrors = append(x.RerunErrors, p)
		}
	}
	return x
}

func formatTime(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

// MergeReports combines reports into a single suite named name
func MergeReports(name string, reports []domain.TestSuiteReport) domain.TestSuiteReport {
	merged := domain.TestSuiteReport{Name: name}
	for _, r := range reports {
		merged.Counts = merged.Counts.Add(r.Counts)
		merged.Time += r.Time
		for _, c := range r.Cases {
			if c.ClassName == "" {
				c.ClassName = r.Name
			}
			merged.Cases = append(merged.Cases, c)
		}
	}
	return merged
}
