package domain

// CaseStatus is the outcome of a single test case
type CaseStatus string

const (
	CasePassed  CaseStatus = "pass"
	CaseFailed  CaseStatus = "fail"
	CaseError   CaseStatus = "error"
	CaseSkipped CaseStatus = "skipped"
	CaseFlaky   CaseStatus = "flaky"
)

// Counts are the aggregate numbers of a test suite
type Counts struct {
	Total    int `json:"total" yaml:"total"`
	Errors   int `json:"errors" yaml:"errors"`
	Failures int `json:"failures" yaml:"failures"`
	Skipped  int `json:"skipped" yaml:"skipped"`
	Flakes   int `json:"flakes" yaml:"flakes"`
}

// Passed is the implied number of passing tests
func (c Counts) Passed() int {
	return c.Total - c.Errors - c.Failures - c.Skipped
}

// Add returns the sum of two counts
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Total:    c.Total + o.Total,
		Errors:   c.Errors + o.Errors,
		Failures: c.Failures + o.Failures,
		Skipped:  c.Skipped + o.Skipped,
		Flakes:   c.Flakes + o.Flakes,
	}
}

// Rerun is a single failed attempt recorded for a flaky or rerun test case
type Rerun struct {
	Kind    string // flakyFailure, flakyError, rerunFailure or rerunError
	Message string
	Type    string
	Stack   string
}

// TestCaseResult is one <testcase> of a report
type TestCaseResult struct {
	Name      string
	ClassName string
	Status    CaseStatus
	Message   string
	Type      string
	Stack     string
	SystemOut string
	SystemErr string
	Time      float64
	Reruns    []Rerun
}

// TestSuiteReport is the parsed content of one TEST-<class>.xml file
type TestSuiteReport struct {
	Name       string // Fully qualified class name
	File       string // Report file it was parsed from
	Counts     Counts
	Cases      []TestCaseResult
	Time       float64
	Properties []Property
}

// Case returns the first test case with the given name
func (r TestSuiteReport) Case(name string) (TestCaseResult, bool) {
	for _, c := range r.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return TestCaseResult{}, false
}

// AggregateResult is the sum of a set of suite reports
type AggregateResult struct {
	Counts Counts
	Suites int
}

// Aggregate sums the counts of the given reports
func Aggregate(reports []TestSuiteReport) AggregateResult {
	var agg AggregateResult
	for _, r := range reports {
		agg.Counts = agg.Counts.Add(r.Counts)
		agg.Suites++
	}
	return agg
}
