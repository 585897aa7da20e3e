package cron

import (
	"context"
	"fmt"
	"time"

	"taskhive/config"
	"taskhive/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeAnalyticsRollup is the queued task that rolls up the previous day.
const TypeAnalyticsRollup = "analytics:rollup"

// Roller is the slice of the analytics service the schedulers drive.
type Roller interface {
	RollupPreviousDay(ctx context.Context) (*models.Analytics, error)
}

// QueueWorker runs the rollup through asynq so that only one replica
// executes each midnight tick.
type QueueWorker struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	logger    *zap.Logger
}

func queueRedisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// StartQueueWorker registers the periodic task and starts processing.
func StartQueueWorker(spec string, roller Roller, logger *zap.Logger) (*QueueWorker, error) {
	redisOpts := queueRedisOpts()

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAnalyticsRollup, handleRollupTask(roller, logger))

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{
		Location: time.Local,
		Logger:   logger.Sugar(),
	})
	// Unique keeps replicas that share the queue from enqueueing duplicate ticks.
	if _, err := scheduler.Register(spec, asynq.NewTask(TypeAnalyticsRollup, nil), asynq.Unique(time.Hour), asynq.MaxRetry(3)); err != nil {
		return nil, fmt.Errorf("register rollup schedule %q: %w", spec, err)
	}

	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = srv.Start(mux); err == nil {
			break
		}
		logger.Warn("rollup worker failed to start",
			zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		time.Sleep(time.Duration(attempt*2) * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("start rollup worker: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("start rollup scheduler: %w", err)
	}
	logger.Info("analytics rollup queued", zap.String("cron", spec))
	return &QueueWorker{srv: srv, scheduler: scheduler, logger: logger}, nil
}

func (w *QueueWorker) Stop() {
	w.scheduler.Shutdown()
	w.srv.Shutdown()
	w.logger.Info("analytics rollup worker stopped")
}

func handleRollupTask(roller Roller, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		doc, err := roller.RollupPreviousDay(ctx)
		if err != nil {
			logger.Error("analytics rollup failed", zap.String("task", task.Type()), zap.Error(err))
			return err
		}
		logger.Info("analytics rollup complete",
			zap.Time("date", doc.Date),
			zap.Int("totalBookings", doc.Metrics.TotalBookings))
		return nil
	}
}
