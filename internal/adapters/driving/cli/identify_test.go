package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

func testCandidates() []domain.MatchCandidate {
	records := testRecords()
	return []domain.MatchCandidate{
		{Record: records[0], Score: 0.93},
		{Record: records[1], Score: 0.12},
	}
}

func TestIdentifyCmd_Use(t *testing.T) {
	assert.Equal(t, "identify [text]", identifyCmd.Use)
}

func TestIdentifyCmd_PrintsCandidates(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.candidates.candidates = testCandidates()

	out, err := execute("identify", "타이레놀 500mg TYLENOL")

	require.NoError(t, err)
	assert.Equal(t, "타이레놀 500mg TYLENOL", ts.candidates.lastText)
	assert.Contains(t, out, "Candidates:")
	assert.Contains(t, out, "[1] 타이레놀정500밀리그람 (93%)")
	assert.Contains(t, out, "Imprint: TYLENOL / 500")
	// The no-imprint sentinel is not printed
	assert.Contains(t, out, "Imprint: IBU\n")
}

func TestIdentifyCmd_ReadsStdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("부루펜정\nIBU\n"))
	out, err := execute("identify")

	require.NoError(t, err)
	assert.Equal(t, "부루펜정\nIBU\n", ts.candidates.lastText)
	assert.Contains(t, out, "No candidates found.")
}

func TestIdentifyCmd_Limit(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.candidates.candidates = testCandidates()

	out, err := execute("identify", "--limit", "1", "타이레놀")

	require.NoError(t, err)
	assert.Contains(t, out, "[1]")
	assert.NotContains(t, out, "[2]")
}

func TestIdentifyCmd_JSONOutput(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.candidates.candidates = testCandidates()

	out, err := execute("identify", "--json", "타이레놀")

	require.NoError(t, err)
	var got []candidateJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "200808876", got[0].Medicine.ID)
	assert.InDelta(t, 0.93, got[0].Score, 1e-9)
}

func TestIdentifyCmd_WarnsWhenCatalogUnloaded(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.catalog.state = domain.CatalogUnloaded

	out, err := execute("identify", "타이레놀")

	require.NoError(t, err)
	assert.Contains(t, out, "reference catalog is not loaded")
}

func TestIdentifyCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	candidateSearch = nil

	_, err := execute("identify", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidate search not configured")
}

func TestFormatImprint(t *testing.T) {
	tests := []struct {
		name     string
		front    string
		back     string
		expected string
	}{
		{name: "both faces", front: "TYLENOL", back: "500", expected: "TYLENOL / 500"},
		{name: "front only", front: "IBU", back: domain.NoImprintMarker, expected: "IBU"},
		{name: "none", front: "", back: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.ReferenceRecord{ImprintFront: tt.front, ImprintBack: tt.back}
			assert.Equal(t, tt.expected, formatImprint(&r))
		})
	}
}
