package assertion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itkit/internal/domain"
)

func TestCounts_Sensitivity(t *testing.T) {
	actual := domain.Counts{Total: 10, Errors: 1, Failures: 2, Skipped: 3, Flakes: 1}
	require.NoError(t, Counts(actual, actual))

	tests := []struct {
		name   string
		mutate func(c *domain.Counts)
		what   string
	}{
		{"total", func(c *domain.Counts) { c.Total++ }, "total tests"},
		{"errors", func(c *domain.Counts) { c.Errors-- }, "errors"},
		{"failures", func(c *domain.Counts) { c.Failures++ }, "failures"},
		{"skipped", func(c *domain.Counts) { c.Skipped-- }, "skipped"},
		{"flakes", func(c *domain.Counts) { c.Flakes++ }, "flaky tests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := actual
			tt.mutate(&expected)

			err := Counts(expected, actual)
			var assertErr *domain.AssertionError
			require.ErrorAs(t, err, &assertErr)
			assert.Equal(t, tt.what, assertErr.What)
			assert.NotEqual(t, assertErr.Expected, assertErr.Actual)
		})
	}
}

func TestCounts_MessageCarriesBothValues(t *testing.T) {
	err := Counts(domain.Counts{Total: 5}, domain.Counts{Total: 4})
	require.Error(t, err)
	assert.Equal(t, "total tests: expected 5 but was 4", err.Error())
}

func TestCounts_JoinsEveryMismatch(t *testing.T) {
	err := Counts(domain.Counts{Total: 5, Failures: 1}, domain.Counts{Total: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total tests: expected 5 but was 4")
	assert.Contains(t, err.Error(), "failures: expected 1 but was 0")
}

func TestCountsIgnoringFlakes(t *testing.T) {
	assert.NoError(t, CountsIgnoringFlakes(domain.Counts{Total: 2}, domain.Counts{Total: 2, Flakes: 1}))
	assert.Error(t, CountsIgnoringFlakes(domain.Counts{Total: 3}, domain.Counts{Total: 2, Flakes: 1}))
}

func TestTextInLog(t *testing.T) {
	lines := []string{
		"[INFO] Running pkg.ATest",
		"[INFO] Running pkg.BTest",
		"[INFO] BUILD SUCCESS",
	}
	tests := []struct {
		name    string
		text    string
		occ     Occurrence
		wantErr bool
	}{
		{"at least once present", "Running", AtLeastOnce, false},
		{"at least once absent", "Crashed", AtLeastOnce, true},
		{"exactly matching", "Running", Exactly(2), false},
		{"exactly too many", "Running", Exactly(1), true},
		{"at least three", "Running", AtLeast(3), true},
		{"never absent", "BUILD FAILURE", Never, false},
		{"never present", "BUILD SUCCESS", Never, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TextInLog(lines, tt.text, tt.occ)
			if tt.wantErr {
				var assertErr *domain.AssertionError
				require.ErrorAs(t, err, &assertErr)
				assert.Contains(t, err.Error(), tt.occ.String())
				assert.Contains(t, err.Error(), tt.text)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPatternInLog(t *testing.T) {
	lines := []string{"pid=101", "pid=102", "other"}
	assert.NoError(t, PatternInLog(lines, `^pid=\d+$`, Exactly(2)))
	assert.Error(t, PatternInLog(lines, `^pid=\d+$`, Exactly(3)))

	err := PatternInLog(lines, `(`, AtLeastOnce)
	require.Error(t, err)
	var assertErr *domain.AssertionError
	assert.False(t, errors.As(err, &assertErr))
}

func TestErrorFreeLog(t *testing.T) {
	assert.NoError(t, ErrorFreeLog([]string{"[INFO] BUILD SUCCESS"}))
	assert.NoError(t, ErrorFreeLog([]string{}))

	err := ErrorFreeLog([]string{"[ERROR] Failed to execute goal", "[INFO] BUILD FAILURE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[ERROR] lines in log")
	assert.Contains(t, err.Error(), "BUILD FAILURE")
}

func TestCaseStatusAndFailureMessage(t *testing.T) {
	report := domain.TestSuiteReport{
		Name: "pkg.ATest",
		Cases: []domain.TestCaseResult{
			{Name: "ok", Status: domain.CasePassed},
			{Name: "bad", Status: domain.CaseFailed, Message: "expected <1>"},
		},
	}
	assert.NoError(t, CaseStatus(report, "ok", domain.CasePassed))
	assert.NoError(t, CaseStatus(report, "bad", domain.CaseFailed))
	assert.EqualError(t, CaseStatus(report, "bad", domain.CasePassed), "status of pkg.ATest.bad: expected pass but was fail")
	assert.Error(t, CaseStatus(report, "gone", domain.CasePassed))

	assert.NoError(t, FailureMessage(report, "bad", "expected <1>"))
	assert.Error(t, FailureMessage(report, "bad", "expected <2>"))
	assert.Error(t, FailureMessage(report, "gone", ""))
}

func TestDistinctAndAllEqual(t *testing.T) {
	assert.NoError(t, Distinct("pids", []string{"1", "2", "3"}))
	assert.EqualError(t, Distinct("pids", []string{"1", "2", "1"}), "distinct pids: expected 3 but was 2")

	assert.NoError(t, AllEqual("pids", []string{"7", "7", "7"}))
	assert.EqualError(t, AllEqual("pids", []string{"7", "8"}), "equal pids: expected 7 but was 8")
	assert.Error(t, AllEqual("pids", nil))
}

func TestFileAssertions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target", "out.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("hello world\n"), 0644))
	missing := filepath.Join(dir, "missing.txt")

	assert.NoError(t, FileExists(path))
	assert.Error(t, FileExists(missing))
	assert.NoError(t, FileNotExists(missing))
	assert.Error(t, FileNotExists(path))

	assert.NoError(t, FileContains(path, "world"))
	assert.Error(t, FileContains(path, "mars"))
	assert.NoError(t, FileNotContains(path, "mars"))
	assert.Error(t, FileNotContains(path, "hello"))

	var assertErr *domain.AssertionError
	require.ErrorAs(t, FileContains(missing, "x"), &assertErr)
	assert.Equal(t, "missing", assertErr.Actual)
}

func TestOccurrence_String(t *testing.T) {
	assert.Equal(t, "at least 1", AtLeastOnce.String())
	assert.Equal(t, "exactly 3", Exactly(3).String())
	assert.Equal(t, "none", Never.String())
}
