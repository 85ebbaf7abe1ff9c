package assertion

import (
	"fmt"
	"math"
)

// Occurrence is the number of times a text is expected in a log
type Occurrence struct {
	min int
	max int
}

var (
	// AtLeastOnce is the default expectation for log text
	AtLeastOnce = AtLeast(1)
	// Never expects no occurrence at all
	Never = Exactly(0)
)

// AtLeast expects n or more occurrences
func AtLeast(n int) Occurrence {
	return Occurrence{min: n, max: math.MaxInt}
}

// Exactly expects exactly n occurrences
func Exactly(n int) Occurrence {
	return Occurrence{min: n, max: n}
}

// Matches reports whether count satisfies the occurrence
func (o Occurrence) Matches(count int) bool {
	return count >= o.min && count <= o.max
}

// String describes the occurrence, e.g. "at least 1"
func (o Occurrence) String() string {
	switch {
	case o.max == math.MaxInt:
		return fmt.Sprintf("at least %d", o.min)
	case o.min == 0 && o.max == 0:
		return "none"
	default:
		return fmt.Sprintf("exactly %d", o.min)
	}
}
