package results

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicaldss/trialscreen/internal/screening"
)

func testRow(patient, trial string, decision screening.Decision) Row {
	return Row{
		PatientID:   patient,
		TrialID:     trial,
		Decision:    decision,
		Explanation: "Decision: " + string(decision),
		RawResponse: "Decision: " + string(decision),
		ScreenedAt:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestCSVSinkAppendAndReread(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screening_results.csv")

	sink, err := OpenCSV(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(testRow("p1", "a", screening.Eligible)))
	require.NoError(t, sink.Append(testRow("p2", "a", screening.Uncertain)))
	require.NoError(t, sink.Close())

	rows, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p1", rows[0].PatientID)
	assert.Equal(t, screening.Eligible, rows[0].Decision)
	assert.Equal(t, screening.Uncertain, rows[1].Decision)
	assert.Equal(t, 2026, rows[0].ScreenedAt.Year())
}

func TestCSVSinkReopenAppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screening_results.csv")

	sink, err := OpenCSV(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(testRow("p1", "a", screening.Eligible)))
	require.NoError(t, sink.Close())

	sink, err = OpenCSV(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(testRow("p1", "a", screening.Eligible)))
	require.NoError(t, sink.Close())

	rows, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCSVSinkHandlesNewlinesInExplanation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screening_results.csv")

	row := testRow("p1", "a", screening.Ineligible)
	row.Explanation = "STEP 1: age fails.\nSTEP 2: skipped.\nDecision: Ineligible"

	sink, err := OpenCSV(path)
	require.NoError(t, err)
	require.NoError(t, sink.Append(row))
	require.NoError(t, sink.Close())

	rows, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, row.Explanation, rows[0].Explanation)
}

func TestReadCSVRejectsCorruptTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screening_results.csv")
	content := "patient_id,trial_id,decision,explanation,raw_response,screened_at\n" +
		"p1,a,Eligible,looks fine,raw,not-a-timestamp\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "screened_at")
}

func TestFromVerdict(t *testing.T) {
	v := screening.Verdict{
		PatientID:   "p9",
		TrialID:     "t1",
		Decision:    screening.Ineligible,
		Explanation: "because",
		RawResponse: "raw",
	}
	at := time.Date(2026, 8, 30, 9, 30, 0, 0, time.FixedZone("x", 3600))
	row := FromVerdict(v, at)
	assert.Equal(t, "p9", row.PatientID)
	assert.Equal(t, screening.Ineligible, row.Decision)
	assert.Equal(t, at.UTC(), row.ScreenedAt)
}

func TestSummarize(t *testing.T) {
	rows := []Row{
		testRow("p1", "a", screening.Eligible),
		testRow("p2", "a", screening.Ineligible),
		testRow("p3", "a", screening.Eligible),
		testRow("p1", "b", screening.Uncertain),
	}

	summaries := Summarize(rows)
	require.Len(t, summaries, 2)

	assert.Equal(t, "a", summaries[0].TrialID)
	assert.Equal(t, 2, summaries[0].Eligible)
	assert.Equal(t, 1, summaries[0].Ineligible)
	assert.Equal(t, 0, summaries[0].Uncertain)
	assert.Equal(t, 3, summaries[0].Total())
	assert.InDelta(t, 2.0/3.0, summaries[0].EligibilityRate(), 1e-9)

	assert.Equal(t, "b", summaries[1].TrialID)
	assert.Equal(t, 1, summaries[1].Uncertain)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
	assert.Equal(t, 0.0, TrialSummary{}.EligibilityRate())
}
