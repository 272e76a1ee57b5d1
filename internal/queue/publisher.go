package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/clinicaldss/trialscreen/internal/results"
)

// PublishRow sends one screening result to the results topic so the
// dashboard collaborator can tail decisions as the batch progresses.
func PublishRow(ctx context.Context, writer *kafka.Writer, row results.Row) error {
	if writer == nil {
		return nil
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal result %s/%s: %w", row.PatientID, row.TrialID, err)
	}
	key := fmt.Sprintf("%s-%s-%d", row.PatientID, row.TrialID, row.ScreenedAt.UnixNano())
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload})
}
