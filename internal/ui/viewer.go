package ui

import "itkit/internal/domain"

// Viewer displays failed scenarios of a run
type Viewer interface {
	View(output *domain.RunOutput) error
}

var _ Viewer = (*ErrorViewer)(nil)
