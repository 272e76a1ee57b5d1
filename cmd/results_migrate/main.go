package main

import (
	"context"
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

	store, err := results.OpenStore(config.String("RESULTS_DB", ""))
	if err != nil {
		logging.Fatalf("[results-migrate] open: %v", err)
	}
	defer store.Close()

	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[results-migrate] create tables: %v", err)
	}
	fmt.Printf("[results-migrate] schema ready at %s\n", store.Path())
}
