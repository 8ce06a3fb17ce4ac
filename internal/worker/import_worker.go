package worker

import (
	"context"
	"errors"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// JobRunner executes one queued import job.
type JobRunner interface {
	RunJob(ctx context.Context, id uuid.UUID) error
}

// ImportWorker consumes import job ids from the import queue, one at a time.
type ImportWorker struct {
	runner JobRunner
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewImportWorker creates a new ImportWorker.
func NewImportWorker(runner JobRunner, rdb *redis.Client, log zerolog.Logger) *ImportWorker {
	return &ImportWorker{
		runner: runner,
		rdb:    rdb,
		log:    log.With().Str("component", "import_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine. A running job is allowed to
// finish when ctx is cancelled.
func (w *ImportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Import worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Import worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ImportWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.ImportJobsQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error, sleeping 3s")
			time.Sleep(3 * time.Second)
		}
		return
	}
	if len(result) < 2 {
		return
	}
	w.run(result[1])
}

// run executes one job detached from the worker context so shutdown does not
// leave it half applied.
func (w *ImportWorker) run(raw string) {
	id, err := uuid.Parse(raw)
	if err != nil {
		w.log.Error().Str("data", raw).Msg("Discarding malformed import job id")
		return
	}

	jobLog := w.log.With().Str("job_id", id.String()).Logger()
	start := time.Now()
	jobLog.Info().Msg("Import job started")

	if err := w.runner.RunJob(context.Background(), id); err != nil {
		jobLog.Error().Err(err).Dur("took", time.Since(start)).Msg("Import job failed")
		return
	}
	jobLog.Info().Dur("took", time.Since(start)).Msg("Import job finished")
}
