package screening

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinicaldss/trialscreen/internal/logging"
	"github.com/clinicaldss/trialscreen/internal/patients"
	"github.com/clinicaldss/trialscreen/internal/trials"
)

// Config controls the screener behavior.
type Config struct {
	Completer    Completer
	SystemPrompt string
}

// Screener turns one (patient, trial) pair into a verdict via the LLM.
type Screener struct {
	completer    Completer
	systemPrompt string
}

// NewScreener creates a screener.
func NewScreener(cfg Config) (*Screener, error) {
	if cfg.Completer == nil {
		return nil, fmt.Errorf("screening: completer is required")
	}
	system := cfg.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = systemPrompt
	}
	return &Screener{completer: cfg.Completer, systemPrompt: system}, nil
}

// Screen runs the full pipeline for one pair: format, prompt, complete,
// parse. A client error propagates to the caller; a malformed reply does
// not — it becomes an Uncertain verdict and is logged for review.
func (s *Screener) Screen(ctx context.Context, rec patients.Record, criteria trials.Criteria) (Verdict, error) {
	if s == nil {
		return Verdict{}, fmt.Errorf("screening: screener is nil")
	}

	prompt := BuildPrompt(FormatRecord(rec), criteria.Text)
	raw, err := s.completer.Complete(ctx, s.systemPrompt, prompt)
	if err != nil {
		return Verdict{}, fmt.Errorf("screening: llm call for patient=%s trial=%s: %w", rec.PatientID, criteria.TrialID, err)
	}

	verdict, ok := NewVerdict(rec.PatientID, criteria.TrialID, raw)
	if !ok {
		logging.Warnf("[screening] patient=%s trial=%s reply missing decision marker, recorded Uncertain", rec.PatientID, criteria.TrialID)
	}
	return verdict, nil
}
