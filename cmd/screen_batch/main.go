package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/clinicaldss/trialscreen/internal/cache"
	"github.com/clinicaldss/trialscreen/internal/config"
	"github.com/clinicaldss/trialscreen/internal/kafka"
	"github.com/clinicaldss/trialscreen/internal/llm"
	"github.com/clinicaldss/trialscreen/internal/logging"
	"github.com/clinicaldss/trialscreen/internal/patients"
	"github.com/clinicaldss/trialscreen/internal/queue"
	"github.com/clinicaldss/trialscreen/internal/results"
	"github.com/clinicaldss/trialscreen/internal/runner"
	"github.com/clinicaldss/trialscreen/internal/screening"
	"github.com/clinicaldss/trialscreen/internal/trials"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	config.LoadDotEnv()
	logging.InitFromEnv()

	patientsPath := config.String("PATIENTS_CSV", "patients_for_trial_screening.csv")
	trialsDir := config.String("TRIALS_DIR", "trials")
	sinkPath := config.String("RESULTS_CSV", "screening_results.csv")
	maxPatients := config.Int("MAX_PATIENTS", 0)
	pause := config.Duration("SCREEN_PAUSE", time.Second)

	apiKey := config.String("GEMINI_API_KEY", "")
	if apiKey == "" {
		apiKey = config.String("LLM_API_KEY", "")
	}
	client, err := llm.New(llm.Config{
		APIKey:      apiKey,
		BaseURL:     config.String("LLM_BASE_URL", ""),
		Model:       config.String("LLM_MODEL", ""),
		Timeout:     config.Duration("LLM_TIMEOUT", 60*time.Second),
		Temperature: float32(config.Float("LLM_TEMPERATURE", 0)),
		MaxTokens:   config.Int("LLM_MAX_TOKENS", 0),
	})
	if err != nil {
		logging.Fatalf("[screen-batch] llm client: %v", err)
	}

	records, err := patients.Load(patientsPath)
	if err != nil {
		logging.Fatalf("[screen-batch] load patients: %v", err)
	}
	if maxPatients > 0 && maxPatients < len(records) {
		records = records[:maxPatients]
	}

	criteriaList, skipped, err := trials.LoadDir(trialsDir)
	if err != nil {
		logging.Fatalf("[screen-batch] load trials: %v", err)
	}
	for _, skipErr := range skipped {
		logging.Errorf("[screen-batch] trial skipped for all patients: %v", skipErr)
	}

	screener, err := screening.NewScreener(screening.Config{Completer: client})
	if err != nil {
		logging.Fatalf("[screen-batch] screener: %v", err)
	}

	sink, err := results.OpenCSV(sinkPath)
	if err != nil {
		logging.Fatalf("[screen-batch] open sink: %v", err)
	}
	defer sink.Close()

	cfg := runner.Config{
		Screener: screener,
		Sink:     sink,
		Pause:    pause,
	}

	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		verdictCache, err := cache.NewRedisVerdictCache(
			addr,
			config.String("REDIS_PASSWORD", ""),
			config.Int("REDIS_DB", 0),
			config.Duration("VERDICT_CACHE_TTL", 0),
			config.String("VERDICT_CACHE_PREFIX", ""),
		)
		if err != nil {
			logging.Fatalf("[screen-batch] verdict cache: %v", err)
		}
		defer verdictCache.Close()
		cfg.Cache = verdictCache
	}

	if dbPath := config.String("RESULTS_DB", ""); dbPath != "" {
		store, err := results.OpenStore(dbPath)
		if err != nil {
			logging.Fatalf("[screen-batch] open results db: %v", err)
		}
		defer store.Close()
		if err := store.CreateTables(ctx); err != nil {
			logging.Fatalf("[screen-batch] results db schema: %v", err)
		}
		cfg.Mirror = store
	}

	if config.Bool("PUBLISH_RESULTS", false) {
		brokers := kafka.Brokers()
		topic := kafka.TopicFromEnv("RESULTS_KAFKA_TOPIC", kafka.DefaultResultsTopic)

		waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
		if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
			logging.Fatalf("[screen-batch] wait for broker: %v", err)
		}
		cancel()

		ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
		if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
			logging.Errorf("[screen-batch] ensure topic warning: %v", err)
		}
		cancelEnsure()

		writer := kafka.NewWriter(brokers, topic)
		defer writer.Close()
		cfg.Publish = func(ctx context.Context, row results.Row) error {
			return queue.PublishRow(ctx, writer, row)
		}
	}

	run, err := runner.New(cfg)
	if err != nil {
		logging.Fatalf("[screen-batch] runner: %v", err)
	}

	logging.Infof("[screen-batch] screening %d patients against %d trials", len(records), len(criteriaList))
	stats, err := run.Run(ctx, records, criteriaList)
	if err != nil {
		logging.Fatalf("[screen-batch] batch aborted: %v", err)
	}
	fmt.Printf("[screen-batch] done pairs=%d screened=%d cache_hits=%d failures=%d sink=%s\n",
		stats.Pairs, stats.Screened, stats.CacheHits, stats.Failures, sinkPath)
}
