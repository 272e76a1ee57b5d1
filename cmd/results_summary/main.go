package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/clinicaldss/trialscreen/internal/config"
	"github.com/clinicaldss/trialscreen/internal/logging"
	"github.com/clinicaldss/trialscreen/internal/results"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	config.LoadDotEnv()
	logging.InitFromEnv()

	csvPath := flag.String("csv", config.String("RESULTS_CSV", "screening_results.csv"), "results sink CSV")
	dbPath := flag.String("db", "", "read from the sqlite mirror instead of the CSV sink")
	flag.Parse()

	var rows []results.Row
	var err error
	if *dbPath != "" {
		var store *results.Store
		store, err = results.OpenStore(*dbPath)
		if err != nil {
			logging.Fatalf("[results-summary] open db: %v", err)
		}
		defer store.Close()
		rows, err = store.Rows(ctx, "")
	} else {
		rows, err = results.ReadCSV(*csvPath)
	}
	if err != nil {
		logging.Fatalf("[results-summary] load rows: %v", err)
	}
	if len(rows) == 0 {
		fmt.Println("[results-summary] no screening results yet")
		return
	}

	fmt.Printf("%-30s %8s %10s %9s %7s %6s\n", "trial", "eligible", "ineligible", "uncertain", "total", "rate")
	for _, s := range results.Summarize(rows) {
		fmt.Printf("%-30s %8d %10d %9d %7d %5.1f%%\n",
			s.TrialID, s.Eligible, s.Ineligible, s.Uncertain, s.Total(), 100*s.EligibilityRate())
	}
	fmt.Printf("total rows: %d\n", len(rows))
}
