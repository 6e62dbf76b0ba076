// Package tui provides an interactive terminal user interface for pillmate.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog serves the reference medicine catalog.
	Catalog driving.CatalogService

	// Candidates ranks catalog records against free text.
	Candidates driving.CandidateSearch

	// Safety retrieves drug-safety records. Optional.
	Safety driving.SafetyRetriever
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	catalog driving.CatalogService,
	candidates driving.CandidateSearch,
	safety driving.SafetyRetriever,
) *Ports {
	return &Ports{
		Catalog:    catalog,
		Candidates: candidates,
		Safety:     safety,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	if p.Candidates == nil {
		return ErrMissingCandidateSearch
	}
	return nil
}
