package discovery

import (
	"testing"

	"itkit/internal/domain"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		name     string
		tests    []string
		pattern  string
		expected int // Expected number of matches
	}{
		{
			name:     "empty pattern returns all",
			tests:    []string{"UserTest.java", "PaymentTest.java", "OrderTest.java"},
			pattern:  "",
			expected: 3,
		},
		{
			name:     "wildcard pattern matches suffix",
			tests:    []string{"UserTest.java", "PaymentTest.java", "OrderTest.java"},
			pattern:  "*UserTest.java",
			expected: 1,
		},
		{
			name:     "wildcard pattern matches substring",
			tests:    []string{"UserTest.java", "PaymentTest.java", "OrderTest.java", "PaymentServiceTest.java"},
			pattern:  "*Payment*",
			expected: 2,
		},
		{
			name:     "simple contains match",
			tests:    []string{"UserTest.java", "PaymentTest.java", "OrderTest.java"},
			pattern:  "Payment",
			expected: 1,
		},
		{
			name:     "no matches",
			tests:    []string{"UserTest.java", "PaymentTest.java"},
			pattern:  "*NonExistent*",
			expected: 0,
		},
		{
			name:     "full path with wildcard",
			tests:    []string{"/path/to/UserTest.java", "/path/to/PaymentTest.java"},
			pattern:  "*UserTest.java",
			expected: 1,
		},
		{
			name:     "scenario names",
			tests:    []string{"fork-always", "fork-never", "junit3-basic"},
			pattern:  "fork-*",
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByName(tt.tests, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d", tt.expected, len(result))
			}
		})
	}
}

func TestFilter_FilterByName_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty test list", func(t *testing.T) {
		result := filter.FilterByName([]string{}, "*Test.java")
		if len(result) != 0 {
			t.Errorf("expected empty result, got %d items", len(result))
		}
	})

	t.Run("pattern with multiple wildcards", func(t *testing.T) {
		tests := []string{"UserServiceTest.java", "UserControllerTest.java", "PaymentTest.java"}
		result := filter.FilterByName(tests, "*User*Test.java")
		if len(result) != 2 {
			t.Errorf("expected 2 matches, got %d", len(result))
		}
	})

	t.Run("parts must appear in order", func(t *testing.T) {
		result := filter.FilterByName([]string{"TestUser.java"}, "*User*Test*")
		if len(result) != 0 {
			t.Errorf("expected no match, got %v", result)
		}
	})
}

func TestFilter_FilterByClass(t *testing.T) {
	reports := []domain.TestSuiteReport{
		{Name: "pkg.one.BasicTest"},
		{Name: "pkg.two.BasicTest"},
		{Name: "pkg.two.OtherIT"},
	}
	filter := NewFilter()

	tests := []struct {
		pattern  string
		expected []string
	}{
		{"", []string{"pkg.one.BasicTest", "pkg.two.BasicTest", "pkg.two.OtherIT"}},
		{"BasicTest", []string{"pkg.one.BasicTest", "pkg.two.BasicTest"}},
		{"pkg.two.*", []string{"pkg.two.BasicTest", "pkg.two.OtherIT"}},
		{"*IT", []string{"pkg.two.OtherIT"}},
		{"pkg.one.BasicTest", []string{"pkg.one.BasicTest"}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			result := filter.FilterByClass(reports, tt.pattern)
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %v, got %d reports", tt.expected, len(result))
			}
			for i, name := range tt.expected {
				if result[i].Name != name {
					t.Errorf("report %d: expected %s, got %s", i, name, result[i].Name)
				}
			}
		})
	}
}
