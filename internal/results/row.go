package results

import (
	"time"

	"github.com/clinicaldss/trialscreen/internal/screening"
)

// Row is one flattened screening result as it lands in the sink.
type Row struct {
	PatientID   string             `json:"patient_id"`
	TrialID     string             `json:"trial_id"`
	Decision    screening.Decision `json:"decision"`
	Explanation string             `json:"explanation"`
	RawResponse string             `json:"raw_response"`
	ScreenedAt  time.Time          `json:"screened_at"`
}

// FromVerdict flattens a verdict into a sink row stamped at screenedAt.
func FromVerdict(v screening.Verdict, screenedAt time.Time) Row {
	return Row{
		PatientID:   v.PatientID,
		TrialID:     v.TrialID,
		Decision:    v.Decision,
		Explanation: v.Explanation,
		RawResponse: v.RawResponse,
		ScreenedAt:  screenedAt.UTC(),
	}
}

// Sink is anything that accepts rows append-only. A sink write error is
// fatal to the batch: partial unflushed results would be misleading.
type Sink interface {
	Append(Row) error
}

// TrialSummary counts decisions for one trial.
type TrialSummary struct {
	TrialID    string
	Eligible   int
	Ineligible int
	Uncertain  int
}

// Total is the number of screened pairs for the trial.
func (t TrialSummary) Total() int {
	return t.Eligible + t.Ineligible + t.Uncertain
}

// EligibilityRate is the eligible share of screened pairs, 0 when empty.
func (t TrialSummary) EligibilityRate() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return float64(t.Eligible) / float64(total)
}

// Summarize aggregates rows into per-trial decision counts, ordered by
// first appearance.
func Summarize(rows []Row) []TrialSummary {
	index := make(map[string]int)
	var out []TrialSummary
	for _, row := range rows {
		i, ok := index[row.TrialID]
		if !ok {
			i = len(out)
			index[row.TrialID] = i
			out = append(out, TrialSummary{TrialID: row.TrialID})
		}
		switch row.Decision {
		case screening.Eligible:
			out[i].Eligible++
		case screening.Ineligible:
			out[i].Ineligible++
		default:
			out[i].Uncertain++
		}
	}
	return out
}
