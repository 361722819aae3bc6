package river

import (
	"context"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// EventWorker processes transfer event jobs from the River queue.
// For now it logs the event; future versions will dispatch to
// notification systems or downstream inventory sync.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]

	logger *zap.Logger
}

// Work processes a single event job.
func (w *EventWorker) Work(_ context.Context, job *river.Job[EventJobArgs]) error {
	w.logger.Info("processing transfer event",
		zap.String("event", job.Args.Event),
		zap.String("transfer_id", job.Args.TransferID),
		zap.String("product_id", job.Args.ProductID),
		zap.String("from_branch", job.Args.FromBranch),
		zap.String("to_branch", job.Args.ToBranch),
		zap.Int("quantity", job.Args.Quantity),
		zap.Int64("job_id", job.ID),
		zap.Int("attempt", job.Attempt),
	)
	return nil
}
