package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/reports"
)

// RecapSource exposes the aggregates the nightly recap needs.
type RecapSource interface {
	SalesTotal(ctx context.Context, rng reports.Range) (int64, error)
	ProfitsTotal(ctx context.Context, rng reports.Range) (int64, error)
}

// SalesRecapJob logs a one-day sales and profit summary. It runs from the
// scheduler after midnight, covering the previous day.
type SalesRecapJob struct {
	source RecapSource
	logger *slog.Logger
	now    func() time.Time
}

// NewSalesRecapJob constructs the job.
func NewSalesRecapJob(source RecapSource, logger *slog.Logger) *SalesRecapJob {
	return &SalesRecapJob{source: source, logger: logger, now: time.Now}
}

// Handle processes TaskTypeSalesRecap tasks.
func (j *SalesRecapJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SalesRecapPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	day := j.now().AddDate(0, 0, -1)
	if payload.Date != "" {
		parsed, err := time.Parse("2006-01-02", payload.Date)
		if err != nil {
			return asynq.SkipRetry
		}
		day = parsed
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rng := reports.Range{Start: start, End: start.AddDate(0, 0, 1)}

	sales, err := j.source.SalesTotal(ctx, rng)
	if err != nil {
		return err
	}
	profits, err := j.source.ProfitsTotal(ctx, rng)
	if err != nil {
		return err
	}

	j.logger.Info("rekap penjualan harian",
		slog.String("tanggal", start.Format("2006-01-02")),
		slog.Int64("penjualan", sales),
		slog.Int64("keuntungan", profits))
	return nil
}
