// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

// CandidatesFound carries ranked candidates for the submitted text.
type CandidatesFound struct {
	Text       string
	Candidates []domain.MatchCandidate
}

// MedicineSelected is sent when a candidate is opened.
type MedicineSelected struct {
	Record domain.ReferenceRecord
}

// SafetyLoaded carries the safety report for a medicine.
type SafetyLoaded struct {
	RecordID string
	Report   domain.SafetyReport
}

// CatalogReloaded is sent when the catalog watcher swapped in new data.
type CatalogReloaded struct {
	Result domain.LoadResult
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewIdentify is the text input and candidate list view.
	ViewIdentify
	// ViewMedicine shows one medicine and its safety records.
	ViewMedicine
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewIdentify:
		return "identify"
	case ViewMedicine:
		return "medicine"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
