package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

var auditColumns = []string{"actor", "table_name", "record_id", "action", "old_data", "new_data", "created_at"}

// auditDB is the subset of *pgxpool.Pool the audit worker writes through.
type auditDB interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// AuditWorker drains the audit queue into audit_logs in batches.
type AuditWorker struct {
	db      auditDB
	rdb     *redis.Client
	entries *prometheus.CounterVec
	log     zerolog.Logger
}

func NewAuditWorker(db auditDB, rdb *redis.Client, entries *prometheus.CounterVec, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		db:      db,
		rdb:     rdb,
		entries: entries,
		log:     log.With().Str("component", "audit_worker").Logger(),
	}
}

// Start runs until ctx is cancelled, then flushes what is buffered. Call in a goroutine.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Audit worker started")

	buffer := make([]*model.AuditEntry, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		if len(buffer) > 0 && (len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout) {
			w.requeue(ctx, w.flush(ctx, buffer))
			buffer = buffer[:0]
			lastFlushTime = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.AuditLogQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		entry, err := decodeAudit(result[1])
		if err != nil {
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed audit entry")
			w.count("dropped", 1)
			continue
		}
		buffer = append(buffer, entry)
	}
}

func decodeAudit(raw string) (*model.AuditEntry, error) {
	var e model.AuditEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, err
	}
	if e.TableName == "" || e.Action == "" {
		return nil, errors.New("missing table name or action")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Actor == "" {
		e.Actor = "system"
	}
	return &e, nil
}

// jsonbArg keeps empty payloads NULL instead of an invalid empty jsonb string.
func jsonbArg(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func auditRow(e *model.AuditEntry) []interface{} {
	return []interface{}{e.Actor, e.TableName, e.RecordID, string(e.Action), jsonbArg(e.OldData), jsonbArg(e.NewData), e.CreatedAt}
}

// flush tries a COPY of the whole batch, then row-by-row inserts. It returns the
// entries that still could not be written.
func (w *AuditWorker) flush(ctx context.Context, batch []*model.AuditEntry) []*model.AuditEntry {
	rows := make([][]interface{}, 0, len(batch))
	for _, e := range batch {
		rows = append(rows, auditRow(e))
	}
	_, err := w.db.CopyFrom(ctx, pgx.Identifier{"audit_logs"}, auditColumns, pgx.CopyFromRows(rows))
	if err == nil {
		w.count("copy", len(batch))
		return nil
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")

	var failed []*model.AuditEntry
	for _, e := range batch {
		_, err := w.db.Exec(ctx,
			`INSERT INTO audit_logs (actor, table_name, record_id, action, old_data, new_data, created_at)
			 VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7)`,
			auditRow(e)...,
		)
		if err == nil {
			w.count("row", 1)
			continue
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// Bad data fails again on retry.
			w.log.Error().Err(err).Str("table", e.TableName).Str("record_id", e.RecordID.String()).Msg("Dropping audit entry")
			w.count("dropped", 1)
			continue
		}
		failed = append(failed, e)
	}
	return failed
}

func (w *AuditWorker) requeue(ctx context.Context, items []*model.AuditEntry) {
	if len(items) == 0 {
		return
	}
	pipe := w.rdb.Pipeline()
	for _, e := range items {
		data, _ := json.Marshal(e)
		pipe.RPush(ctx, config.WorkerKey.AuditLogQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue audit entries. Data loss occurred.")
		w.count("dropped", len(items))
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed audit entries")
	w.count("requeued", len(items))
	// Back off while the database is unavailable.
	time.Sleep(2 * time.Second)
}

func (w *AuditWorker) shutdown(buffer []*model.AuditEntry) {
	w.log.Info().Int("buffered", len(buffer)).Msg("Audit worker stopping, flushing remaining buffer")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.requeue(shutdownCtx, w.flush(shutdownCtx, buffer))
	}
}

func (w *AuditWorker) count(path string, n int) {
	if w.entries != nil {
		w.entries.WithLabelValues(path).Add(float64(n))
	}
}
