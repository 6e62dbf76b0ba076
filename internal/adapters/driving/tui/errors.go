package tui

import "errors"

// ErrMissingCatalogService is returned when the catalog service is not provided.
var ErrMissingCatalogService = errors.New("tui: catalog service is required")

// ErrMissingCandidateSearch is returned when the candidate search is not provided.
var ErrMissingCandidateSearch = errors.New("tui: candidate search is required")
