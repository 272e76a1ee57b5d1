package screening

import (
	"context"
	"strings"
)

// Decision is the three-way screening outcome.
type Decision string

const (
	Eligible   Decision = "Eligible"
	Ineligible Decision = "Ineligible"
	Uncertain  Decision = "Uncertain"
)

// Verdict is the structured result extracted from one model reply.
// Explanation always carries the full raw reply so every decision stays
// auditable, with a parse-failure note appended when the reply broke the
// format contract.
type Verdict struct {
	PatientID   string   `json:"patient_id"`
	TrialID     string   `json:"trial_id"`
	Decision    Decision `json:"decision"`
	Explanation string   `json:"explanation"`
	RawResponse string   `json:"raw_response"`
}

// Completer is the LLM boundary. llm.Client satisfies it; tests use fakes.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ParseDecision maps one reply token onto the enumeration. It tolerates the
// casing and punctuation variants models actually emit ("ELIGIBLE.",
// "**Ineligible**") but nothing looser; an unrecognized token is reported
// as not-ok, never guessed.
func ParseDecision(token string) (Decision, bool) {
	token = strings.TrimFunc(strings.TrimSpace(token), func(r rune) bool {
		switch r {
		case '.', ',', '!', '?', ':', ';', '"', '\'', '*', '_', '`', '(', ')', '[', ']':
			return true
		}
		return false
	})
	switch strings.ToLower(token) {
	case "eligible":
		return Eligible, true
	case "ineligible":
		return Ineligible, true
	case "uncertain":
		return Uncertain, true
	}
	return Uncertain, false
}
