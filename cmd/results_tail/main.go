package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/clinicaldss/trialscreen/internal/config"
	"github.com/clinicaldss/trialscreen/internal/kafka"
	"github.com/clinicaldss/trialscreen/internal/logging"
	"github.com/clinicaldss/trialscreen/internal/results"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	config.LoadDotEnv()
	logging.InitFromEnv()

	brokers := kafka.Brokers()
	topic := kafka.TopicFromEnv("RESULTS_KAFKA_TOPIC", kafka.DefaultResultsTopic)
	group := config.String("RESULTS_TAIL_GROUP", "results-tail")

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[results-tail] wait for broker: %v", err)
	}
	cancel()

	reader := kafka.NewReader(brokers, topic, group)
	defer reader.Close()

	logging.Infof("[results-tail] consuming %s with group %s", topic, group)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("[results-tail] read error: %v", err)
			continue
		}
		var row results.Row
		if err := json.Unmarshal(msg.Value, &row); err != nil {
			logging.Errorf("[results-tail] unmarshal error: %v", err)
			continue
		}
		fmt.Printf("[result] patient=%s trial=%s decision=%s at=%s\n",
			row.PatientID, row.TrialID, row.Decision, row.ScreenedAt.Format(time.RFC3339))
	}
}
