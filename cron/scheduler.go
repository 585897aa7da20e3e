package cron

import (
	"context"
	"fmt"
	"time"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// rollupTimeout bounds a single scheduled rollup.
const rollupTimeout = 5 * time.Minute

// LocalScheduler runs the rollup in-process.
type LocalScheduler struct {
	c      *robfig.Cron
	logger *zap.Logger
}

// StartLocalScheduler schedules the previous-day rollup on spec in local time.
func StartLocalScheduler(spec string, roller Roller, logger *zap.Logger) (*LocalScheduler, error) {
	c := robfig.New(robfig.WithLocation(time.Local))
	if _, err := c.AddFunc(spec, rollupJob(roller, logger)); err != nil {
		return nil, fmt.Errorf("invalid rollup schedule %q: %w", spec, err)
	}
	c.Start()
	logger.Info("analytics rollup scheduled", zap.String("cron", spec))
	return &LocalScheduler{c: c, logger: logger}, nil
}

// Stop waits for a running rollup to finish.
func (s *LocalScheduler) Stop() {
	<-s.c.Stop().Done()
	s.logger.Info("analytics scheduler stopped")
}

func rollupJob(roller Roller, logger *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), rollupTimeout)
		defer cancel()
		doc, err := roller.RollupPreviousDay(ctx)
		if err != nil {
			// The next tick is independent; a failed day can be rolled up manually.
			logger.Error("analytics rollup failed", zap.Error(err))
			return
		}
		logger.Info("analytics rollup complete",
			zap.Time("date", doc.Date),
			zap.Int("totalBookings", doc.Metrics.TotalBookings))
	}
}

// Stopper is returned by Start.
type Stopper interface {
	Stop()
}

// Start picks the scheduler by mode: "queue" uses asynq, anything else runs locally.
func Start(mode, spec string, roller Roller, logger *zap.Logger) (Stopper, error) {
	if mode == "queue" {
		return StartQueueWorker(spec, roller, logger)
	}
	return StartLocalScheduler(spec, roller, logger)
}
