package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicaldss/trialscreen/internal/cache"
	"github.com/clinicaldss/trialscreen/internal/logging"
	"github.com/clinicaldss/trialscreen/internal/patients"
	"github.com/clinicaldss/trialscreen/internal/results"
	"github.com/clinicaldss/trialscreen/internal/screening"
	"github.com/clinicaldss/trialscreen/internal/trials"
)

// Screener is the per-pair pipeline boundary. *screening.Screener satisfies
// it; tests plug in fakes.
type Screener interface {
	Screen(ctx context.Context, rec patients.Record, criteria trials.Criteria) (screening.Verdict, error)
}

// Publisher forwards finished rows to the dashboard feed. Publish errors
// are logged, never fatal.
type Publisher func(ctx context.Context, row results.Row) error

// Config wires the runner. Sink is required; Cache, Mirror and Publish are
// optional. Pause inserts a delay after each real LLM call to stay under
// provider rate limits.
type Config struct {
	Screener Screener
	Sink     results.Sink
	Mirror   *results.Store
	Cache    cache.VerdictCache
	Publish  Publisher
	Pause    time.Duration
}

// Stats summarizes one batch run.
type Stats struct {
	Pairs     int
	Screened  int
	CacheHits int
	Failures  int
}

// Runner walks (patient, trial) pairs sequentially, one blocking LLM call
// at a time, and appends one row per pair to the sink.
type Runner struct {
	cfg Config
}

// New creates a runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Screener == nil {
		return nil, fmt.Errorf("runner: screener is required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("runner: sink is required")
	}
	return &Runner{cfg: cfg}, nil
}

// Run screens every patient against every trial. A failing pair becomes an
// Uncertain row and the batch continues; only a sink write failure aborts,
// since losing rows silently would corrupt the results. The sink grows
// monotonically and is never deduplicated: running the same batch twice
// appends twice.
func (r *Runner) Run(ctx context.Context, records []patients.Record, criteriaList []trials.Criteria) (Stats, error) {
	var stats Stats
	total := len(records) * len(criteriaList)

	for i, rec := range records {
		logging.Infof("[runner] patient %d/%d id=%s", i+1, len(records), rec.PatientID)
		for _, criteria := range criteriaList {
			if err := ctx.Err(); err != nil {
				return stats, fmt.Errorf("runner: batch interrupted after %d/%d pairs: %w", stats.Pairs, total, err)
			}

			verdict, called := r.screenPair(ctx, rec, criteria, &stats)
			stats.Pairs++

			row := results.FromVerdict(verdict, time.Now().UTC())
			if err := r.cfg.Sink.Append(row); err != nil {
				return stats, fmt.Errorf("runner: sink write for patient=%s trial=%s: %w", rec.PatientID, criteria.TrialID, err)
			}
			if r.cfg.Mirror != nil {
				if err := r.cfg.Mirror.InsertRow(ctx, row); err != nil {
					logging.Errorf("[runner] sqlite mirror error: %v", err)
				}
			}
			if r.cfg.Publish != nil {
				if err := r.cfg.Publish(ctx, row); err != nil {
					logging.Errorf("[runner] publish error: %v", err)
				}
			}

			if called && r.cfg.Pause > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(r.cfg.Pause):
				}
			}
		}
	}
	return stats, nil
}

// screenPair resolves one pair to a verdict, consulting the cache first.
// The bool reports whether an LLM call actually happened.
func (r *Runner) screenPair(ctx context.Context, rec patients.Record, criteria trials.Criteria, stats *Stats) (screening.Verdict, bool) {
	var key string
	if r.cfg.Cache != nil {
		key = cache.Key(screening.FormatRecord(rec), criteria.Text)
		cached, hit, err := r.cfg.Cache.Get(ctx, key)
		if err != nil {
			logging.Errorf("[runner] cache get error: %v", err)
		} else if hit {
			stats.CacheHits++
			// Identical clinical content can belong to a different patient.
			cached.PatientID = rec.PatientID
			cached.TrialID = criteria.TrialID
			return cached, false
		}
	}

	verdict, err := r.cfg.Screener.Screen(ctx, rec, criteria)
	if err != nil {
		stats.Failures++
		logging.Errorf("[runner] patient=%s trial=%s: %v", rec.PatientID, criteria.TrialID, err)
		return screening.Verdict{
			PatientID:   rec.PatientID,
			TrialID:     criteria.TrialID,
			Decision:    screening.Uncertain,
			Explanation: fmt.Sprintf("screening failed, recorded as Uncertain: %v", err),
		}, true
	}
	stats.Screened++

	if r.cfg.Cache != nil {
		if err := r.cfg.Cache.Set(ctx, key, verdict); err != nil {
			logging.Errorf("[runner] cache set error: %v", err)
		}
	}
	return verdict, true
}
