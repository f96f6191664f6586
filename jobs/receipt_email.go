package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/transactions"
)

// ReceiptSource loads a completed sale by invoice number.
type ReceiptSource interface {
	Receipt(ctx context.Context, invoice string) (transactions.Receipt, error)
}

// ReceiptEmailJob mails the receipt of a finished sale.
type ReceiptEmailJob struct {
	source ReceiptSource
	logger *slog.Logger
}

// NewReceiptEmailJob constructs the job.
func NewReceiptEmailJob(source ReceiptSource, logger *slog.Logger) *ReceiptEmailJob {
	return &ReceiptEmailJob{source: source, logger: logger}
}

// Handle processes TaskTypeReceiptEmail tasks. A malformed payload is not
// retried; a missing invoice is (the sale may not be visible yet).
func (j *ReceiptEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReceiptEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	rec, err := j.source.Receipt(ctx, payload.Invoice)
	if err != nil {
		return err
	}

	// Placeholder delivery: hand-off to SMTP comes with the mail gateway.
	j.logger.Info("send receipt",
		slog.String("invoice", rec.Transaction.Invoice),
		slog.Int("lines", len(rec.Details)),
		slog.Int64("grand_total", rec.Transaction.GrandTotal))
	return nil
}
