package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itkit/internal/domain"
)

var transcript = []string{
	"[INFO] -------------------------------------------------------",
	"[INFO]  T E S T S",
	"[INFO] -------------------------------------------------------",
	"[INFO] Running one.SameTest",
	"[INFO] Tests run: 3, Failures: 1, Errors: 0, Skipped: 0, Time elapsed: 0.05 s <<< FAILURE! - in one.SameTest",
	"[INFO] Running two.SameTest",
	"[INFO] Tests run: 1, Failures: 0, Errors: 0, Skipped: 1, Time elapsed: 0.01 s - in two.SameTest",
	"[INFO] ",
	"[INFO] Results:",
	"[INFO] ",
	"[ERROR] Tests run: 4, Failures: 1, Errors: 0, Skipped: 1, Flakes: 2",
	"[INFO] BUILD FAILURE",
}

func TestParseSummary(t *testing.T) {
	counts, ok := ParseSummary(transcript)
	require.True(t, ok)
	assert.Equal(t, domain.Counts{Total: 4, Failures: 1, Skipped: 1, Flakes: 2}, counts)

	_, ok = ParseSummary([]string{"[INFO] BUILD SUCCESS"})
	assert.False(t, ok)
}

func TestParseSummaries(t *testing.T) {
	lines := append([]string{"[INFO] Tests run: 2, Failures: 0, Errors: 0, Skipped: 0"}, transcript...)
	all := ParseSummaries(lines)
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[0].Total)
	assert.Equal(t, 4, all[1].Total)
}

func TestParseClassSummaries(t *testing.T) {
	classes := ParseClassSummaries(transcript)
	require.Len(t, classes, 2)
	assert.Equal(t, "one.SameTest", classes[0].ClassName)
	assert.Equal(t, domain.Counts{Total: 3, Failures: 1}, classes[0].Counts)
	assert.Equal(t, "two.SameTest", classes[1].ClassName)
	assert.Equal(t, 1, classes[1].Counts.Skipped)
}
