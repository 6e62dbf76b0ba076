// Package mcp provides an MCP (Model Context Protocol) server adapter for Pillmate.
// It lets AI assistants identify medicines and look up drug-safety records.
package mcp

import "errors"

var (
	// ErrMissingCatalogService is returned when the catalog service is not provided.
	ErrMissingCatalogService = errors.New("mcp: catalog service is required")

	// ErrMissingCandidateSearch is returned when the candidate search is not provided.
	ErrMissingCandidateSearch = errors.New("mcp: candidate search is required")

	// ErrServiceNotConfigured is returned by tools whose backing service is absent.
	ErrServiceNotConfigured = errors.New("mcp: service not configured")
)
