package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/dental-api/pkg/logger"
)

// PeriodicJob runs fn every interval until the context ends. With
// runImmediately set the first run happens at start.
type PeriodicJob struct {
	name           string
	interval       time.Duration
	runImmediately bool
	fn             func(ctx context.Context) error
	logger         *logger.Logger
}

func NewPeriodicJob(name string, interval time.Duration, runImmediately bool, fn func(ctx context.Context) error, logger *logger.Logger) *PeriodicJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PeriodicJob{
		name:           name,
		interval:       interval,
		runImmediately: runImmediately,
		fn:             fn,
		logger:         logger.WithFields(map[string]interface{}{"job": name}),
	}
}

func (j *PeriodicJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("Starting periodic job", "interval", j.interval.String())
	if j.runImmediately {
		j.run(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Stopping periodic job")
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *PeriodicJob) run(ctx context.Context) {
	if err := j.fn(ctx); err != nil {
		j.logger.Error(err, "Periodic job failed")
	}
}
