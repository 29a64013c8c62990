package worker

import (
	"context"
	"sync/atomic"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// IJob scheduled job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func(ctx context.Context) error

// BaseJob runs OnWork on a cron schedule. A tick that fires while the
// previous run is still working is skipped.
type BaseJob struct {
	Name   string
	Cron   *cron.Cron
	OnWork OnWork

	ctx     context.Context
	running int32
}

// Schedule adds spec, e.g. "@every 30s", to the job's cron
func (job *BaseJob) Schedule(spec string) error {
	if job.Cron == nil {
		job.Cron = cron.New()
	}

	_, err := job.Cron.AddFunc(spec, job.Run)
	return err
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

// Stop stops the cron and waits for a running job
func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

func (job *BaseJob) Run() {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.running, 0)

	ctx := job.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.FromContext(ctx).WithField("worker", job.Name)
	if err := job.OnWork(logger.WithContext(ctx, log)); err != nil {
		log.WithError(err).Errorln("worker.OnWork")
	}
}

// Serve runs the schedule until ctx is done
func (job *BaseJob) Serve(ctx context.Context) error {
	job.ctx = ctx
	if err := job.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	return job.Stop()
}
