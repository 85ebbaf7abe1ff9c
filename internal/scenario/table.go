// Package scenario loads tables of named build scenarios and runs each one
// against its fixture.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"itkit/internal/domain"
)

// Table is the on-disk form of a scenario table
type Table struct {
	Scenarios []domain.Scenario `yaml:"scenarios"`
}

// Load reads and validates the scenario table at path
func Load(path string) ([]domain.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario table: %w", err)
	}
	scenarios, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario table %s: %w", path, err)
	}
	return scenarios, nil
}

// Parse decodes a scenario table. Unknown keys are rejected.
func Parse(data []byte) ([]domain.Scenario, error) {
	var table Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&table); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := Validate(table.Scenarios); err != nil {
		return nil, err
	}
	return table.Scenarios, nil
}

// Validate checks that every scenario is named uniquely and names a fixture
func Validate(scenarios []domain.Scenario) error {
	if len(scenarios) == 0 {
		return errors.New("no scenarios defined")
	}

	var errs []error
	seen := make(map[string]bool, len(scenarios))
	for i, sc := range scenarios {
		if sc.Name == "" {
			errs = append(errs, fmt.Errorf("scenario #%d: name is required", i+1))
		} else if seen[sc.Name] {
			errs = append(errs, fmt.Errorf("scenario %q: duplicate name", sc.Name))
		}
		seen[sc.Name] = true

		if sc.Fixture == "" {
			errs = append(errs, fmt.Errorf("scenario %q: fixture is required", sc.Name))
		}
		if sc.Repeat < 0 {
			errs = append(errs, fmt.Errorf("scenario %q: repeat must not be negative", sc.Name))
		}
		if c := sc.Expect.Counts; c != nil && c.Passed() < 0 {
			errs = append(errs, fmt.Errorf("scenario %q: expected counts exceed total", sc.Name))
		}
	}
	return errors.Join(errs...)
}

// Names returns the scenario names in table order
func Names(scenarios []domain.Scenario) []string {
	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.Name
	}
	return names
}

// Select keeps the scenarios whose names are in names, preserving table order
func Select(scenarios []domain.Scenario, names []string) []domain.Scenario {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []domain.Scenario
	for _, sc := range scenarios {
		if want[sc.Name] {
			out = append(out, sc)
		}
	}
	return out
}
