package medicine

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/adapters/driving/tui/messages"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

type mockRetriever struct {
	report domain.SafetyReport
	names  []string
}

func (m *mockRetriever) SearchByDrugNames(
	_ context.Context, _ []string, _ domain.SafetyCategory, _ int,
) domain.SafetyResult {
	return domain.SafetyResult{}
}

func (m *mockRetriever) SearchAllCategories(_ context.Context, names []string) domain.SafetyReport {
	m.names = names
	return m.report
}

func (m *mockRetriever) SearchByQuestion(_ context.Context, _ string, _ int) ([]domain.SafetyDocument, error) {
	return nil, nil
}

func testRecord() domain.ReferenceRecord {
	return domain.ReferenceRecord{
		ID:           "199303108",
		Name:         "부루펜정200밀리그램",
		Company:      "삼일제약",
		Ingredients:  []string{"이부프로펜"},
		Shape:        "원형",
		Color:        "분홍",
		ImprintFront: "IBU",
		ImprintBack:  domain.NoImprintMarker,
	}
}

func testReport() domain.SafetyReport {
	return domain.SafetyReport{
		domain.CategoryContraindication: {{
			ID:            "c-1",
			Category:      domain.CategoryContraindication,
			PrimaryDrug:   "이부프로펜",
			SecondaryDrug: "와파린",
			Detail:        "출혈 위험 증가",
		}},
		domain.CategoryAgeRestriction:       {},
		domain.CategoryPregnancyRestriction: {},
		domain.CategoryElderlyCaution:       {},
	}
}

func newTestView(safety *mockRetriever) *View {
	var v *View
	if safety == nil {
		v = NewView(nil, nil)
	} else {
		v = NewView(nil, safety)
	}
	v.SetDimensions(100, 60)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil)

	require.NotNil(t, v)
	assert.Nil(t, v.Record())
	assert.Nil(t, v.Init())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_NoRecord(t *testing.T) {
	v := newTestView(nil)

	assert.Contains(t, v.View(), "No medicine selected")
}

func TestView_SetRecordLoadsSafetyByIngredients(t *testing.T) {
	safety := &mockRetriever{report: testReport()}
	v := newTestView(safety)

	cmd := v.SetRecord(testRecord())
	require.NotNil(t, cmd)
	assert.True(t, v.Loading())
	assert.Contains(t, v.View(), "Loading safety records")

	loaded, ok := cmd().(messages.SafetyLoaded)
	require.True(t, ok)
	assert.Equal(t, "199303108", loaded.RecordID)
	assert.Equal(t, []string{"이부프로펜"}, safety.names)

	v, _ = v.Update(loaded)

	assert.False(t, v.Loading())
	assert.Equal(t, 1, v.Report().Total())
	view := v.View()
	assert.Contains(t, view, "와파린")
	assert.Contains(t, view, "출혈 위험 증가")
}

func TestView_SetRecordFallsBackToName(t *testing.T) {
	safety := &mockRetriever{report: testReport()}
	v := newTestView(safety)
	record := testRecord()
	record.Ingredients = nil

	cmd := v.SetRecord(record)
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []string{"부루펜정200밀리그램"}, safety.names)
}

func TestView_IgnoresStaleReport(t *testing.T) {
	v := newTestView(&mockRetriever{})
	v.SetRecord(testRecord())

	v, _ = v.Update(messages.SafetyLoaded{RecordID: "other", Report: testReport()})

	assert.True(t, v.Loading())
	assert.Nil(t, v.Report())
}

func TestView_RendersRecordFields(t *testing.T) {
	v := newTestView(nil)
	v.SetRecord(testRecord())

	view := v.View()
	assert.Contains(t, view, "부루펜정200밀리그램")
	assert.Contains(t, view, "삼일제약")
	assert.Contains(t, view, "IBU")
	assert.NotContains(t, view, "Back:")
	assert.Contains(t, view, "Safety index not configured")
}

func TestView_EscGoesBackToIdentify(t *testing.T) {
	v := newTestView(nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewIdentify}, cmd())
}

func TestView_Scroll(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(100, 10)
	v.SetRecord(testRecord())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Contains(t, v.View(), "[Line 1-")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Contains(t, v.View(), "[Line 2-")
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newTestView(&mockRetriever{})
	v.SetRecord(testRecord())

	v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.False(t, v.Loading())
	assert.EqualError(t, v.Err(), "boom")
	assert.Contains(t, v.View(), "Error: boom")
}

func loadedView(t *testing.T, height int) (*View, *mockRetriever) {
	t.Helper()
	safety := &mockRetriever{report: testReport()}
	v := newTestView(safety)
	cmd := v.SetRecord(testRecord())
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	v.SetDimensions(100, height)
	return v, safety
}

func TestView_TabJumpsBetweenCategories(t *testing.T) {
	v, _ := loadedView(t, 10)
	tab := tea.KeyMsg{Type: tea.KeyTab}

	// Record fields and the Safety heading fill lines 1-9.
	v, _ = v.Update(tab)
	assert.Contains(t, v.View(), "[Line 10-")

	for range 3 {
		v, _ = v.Update(tab)
	}
	assert.Contains(t, v.View(), "[Line 11-")

	v, _ = v.Update(tab)
	assert.Contains(t, v.View(), "[Line 10-")
}

func TestView_TabWithoutSafetyIsNoop(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(100, 10)
	v.SetRecord(testRecord())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.Contains(t, v.View(), "[Line 1-")
	assert.NotContains(t, v.View(), "next category")
}

func TestView_RecheckReloadsSafety(t *testing.T) {
	v, safety := loadedView(t, 60)
	safety.names = nil

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.True(t, v.Loading())

	loaded, ok := cmd().(messages.SafetyLoaded)
	require.True(t, ok)
	assert.Equal(t, "199303108", loaded.RecordID)
	assert.Equal(t, []string{"이부프로펜"}, safety.names)

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, cmd)
}

func TestView_HelpListsSafetyKeys(t *testing.T) {
	v, _ := loadedView(t, 60)

	view := v.View()
	assert.Contains(t, view, "[tab] next category")
	assert.Contains(t, view, "[r] recheck safety")
}
