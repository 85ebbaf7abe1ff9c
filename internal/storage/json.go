package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"itkit/internal/domain"
	"itkit/internal/filelock"
)

// Save summarizes results and writes them to the configured JSON output file.
func (s *JSONStorage) Save(results []domain.ScenarioResult, duration time.Duration, workers int) (*domain.RunOutput, error) {
	output := NewRunOutput(results, duration, workers)
	if err := s.SaveOutput(output); err != nil {
		return nil, err
	}
	return output, nil
}

// Load reads the last run from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.RunOutput, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.RunOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output atomically, so a concurrent viewer never reads a partial file.
func (s *JSONStorage) SaveOutput(output *domain.RunOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := filelock.LockedWrite(s.cfg.GetOutputPath(), data); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
