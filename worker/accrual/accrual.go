package accrual

import (
	"boostlend/worker"
	"context"

	"github.com/fox-one/pkg/logger"
)

// DefaultSchedule used when the config leaves the schedule empty
const DefaultSchedule = "@every 1m"

// Accruer brings every active reserve up to date
type Accruer interface {
	AccrueAll(ctx context.Context) error
}

// Worker periodically accrues reserve interest so idle reserves keep their
// indexes and treasury share current
type Worker struct {
	worker.BaseJob
	pool Accruer
}

// New new accrual worker
func New(pool Accruer, spec string) (*Worker, error) {
	job := &Worker{pool: pool}
	job.Name = "accrual"
	job.OnWork = job.onWork

	if spec == "" {
		spec = DefaultSchedule
	}

	if err := job.Schedule(spec); err != nil {
		return nil, err
	}

	return job, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := w.pool.AccrueAll(ctx); err != nil {
		log.WithError(err).Errorln("pool.AccrueAll")
		return err
	}

	log.Debugln("reserves accrued")
	return nil
}
