package mcp

import (
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog serves reference medicine lookups.
	Catalog driving.CatalogService

	// Candidates ranks medicines for OCR text.
	Candidates driving.CandidateSearch

	// Safety retrieves drug-safety documents.
	Safety driving.SafetyRetriever

	// Advisor answers free-text safety questions.
	Advisor driving.SafetyAdvisor

	// Regimen analyses medicines taken together.
	Regimen driving.RegimenAnalyzer
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	if p.Candidates == nil {
		return ErrMissingCandidateSearch
	}
	// Safety, Advisor and Regimen are optional; their tools report
	// ErrServiceNotConfigured when absent.
	return nil
}
