package audit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactable/redactable/internal/detectors"
	"github.com/redactable/redactable/internal/types"
)

func sampleFindings(t *testing.T) []types.Finding {
	t.Helper()
	email, err := types.NewFinding("email", "ada@example.org", types.Span{Start: 0, End: 15}, 0.95, "", map[string]any{"domain": "example.org"})
	require.NoError(t, err)
	iban, err := types.NewFinding("iban", "GB82 WEST 1234 5698 7654 32", types.Span{Start: 20, End: 47}, 0.98, "GB82WEST12345698765432", nil)
	require.NoError(t, err)
	return []types.Finding{email, iban}
}

func TestCreateRecord_ScrubsValues(t *testing.T) {
	in := Input{
		Command:     "apply",
		Source:      "notes.txt",
		Fingerprint: "0123456789abcdef",
		Policy:      "gdpr",
		Findings:    sampleFindings(t),
		Failures: []detectors.Result{
			{Detector: "phone"},
			{Detector: "iban", Err: errors.New("boom")},
		},
		Replacements: 2,
	}
	rec := CreateRecord("run-1", in, false)
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, map[string]int{"email": 1, "iban": 1}, rec.Counts)
	assert.Equal(t, []Failure{{Detector: "iban", Error: "boom"}}, rec.Failures)
	for _, f := range rec.Findings {
		assert.Equal(t, scrubbed, f.Value)
	}
	assert.Equal(t, scrubbed, rec.Findings[1].Normalized)
	assert.Empty(t, rec.Findings[0].Normalized)
	assert.Equal(t, "ada@example.org", in.Findings[0].Value, "input is not mutated")

	kept := CreateRecord("run-1", in, true)
	assert.Equal(t, "ada@example.org", kept.Findings[0].Value)
}

func TestAuditLog_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log := NewAuditLog(path)
	runID := NewRunID()

	first := CreateRecord(runID, Input{Command: "scan", Source: "a.txt", Findings: sampleFindings(t)}, false)
	second := CreateRecord(runID, Input{Command: "scan", Source: "b.txt"}, false)
	require.NoError(t, log.Log(first, second))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), st.Mode().Perm())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"span":[0,15]`)
	assert.NotContains(t, string(b), "ada@example.org")
	assert.Contains(t, lines[1], `"findings":[]`)

	history, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "b.txt", history[0].Source, "newest first")
	assert.Equal(t, runID, history[1].RunID)
	assert.Equal(t, types.Span{Start: 0, End: 15}, history[1].Findings[0].Span)
}

func TestAuditLog_SkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("not json\n"), 0600))
	log := NewAuditLog(path)
	require.NoError(t, log.Log(CreateRecord("r", Input{Command: "scan", Source: "x"}, false)))

	history, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "x", history[0].Source)
}

func TestAuditLog_MissingFile(t *testing.T) {
	_, err := NewAuditLog(filepath.Join(t.TempDir(), "none.jsonl")).LoadHistory()
	assert.Error(t, err)
	assert.Equal(t, DefaultPath, NewAuditLog("").Path())
}
