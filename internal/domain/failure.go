package domain

// TestFailure is a failed or errored test case lifted out of a report
type TestFailure struct {
	ClassName string `json:"class_name"`
	TestName  string `json:"test_name"`
	Kind      string `json:"kind"` // failure or error
	Type      string `json:"type,omitempty"`
	Message   string `json:"message"`
	Stack     string `json:"stack,omitempty"`
}

// FailuresOf returns the failing and erroring cases of the given reports
func FailuresOf(reports []TestSuiteReport) []TestFailure {
	var out []TestFailure
	for _, r := range reports {
		for _, c := range r.Cases {
			if c.Status != CaseFailed && c.Status != CaseError {
				continue
			}
			kind := "failure"
			if c.Status == CaseError {
				kind = "error"
			}
			className := c.ClassName
			if className == "" {
				className = r.Name
			}
			out = append(out, TestFailure{
				ClassName: className,
				TestName:  c.Name,
				Kind:      kind,
				Type:      c.Type,
				Message:   c.Message,
				Stack:     c.Stack,
			})
		}
	}
	return out
}
