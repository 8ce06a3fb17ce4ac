package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ImportJobRepository tracks asynchronous file imports.
type ImportJobRepository struct {
	pool *pgxpool.Pool
}

// NewImportJobRepository creates a new ImportJobRepository.
func NewImportJobRepository(pool *pgxpool.Pool) *ImportJobRepository {
	return &ImportJobRepository{pool: pool}
}

// Create inserts a queued job.
func (r *ImportJobRepository) Create(ctx context.Context, j *model.ImportJob) error {
	j.Status = model.ImportQueued
	return r.pool.QueryRow(ctx,
		`INSERT INTO import_jobs (kind, filename, file_path, options, status, submitted_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		j.Kind, j.Filename, j.FilePath, j.Options, j.Status, j.SubmittedBy,
	).Scan(&j.ID, &j.CreatedAt)
}

// GetByID retrieves a job by ID.
func (r *ImportJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	j := &model.ImportJob{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, filename, file_path, options, status, report, error, submitted_by,
		        created_at, started_at, finished_at
		 FROM import_jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Kind, &j.Filename, &j.FilePath, &j.Options, &j.Status, &j.Report, &j.Error,
		&j.SubmittedBy, &j.CreatedAt, &j.StartedAt, &j.FinishedAt)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// MarkRunning flags a job as picked up by a worker.
func (r *ImportJobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx,
		`UPDATE import_jobs SET status = $1, started_at = CURRENT_TIMESTAMP WHERE id = $2`,
		model.ImportRunning, id))
}

// Finish stores the outcome of a job. A non-nil jobErr marks it failed.
func (r *ImportJobRepository) Finish(ctx context.Context, id uuid.UUID, report *model.ImportReport, jobErr error) error {
	status := model.ImportCompleted
	var msg *string
	if jobErr != nil {
		status = model.ImportFailed
		s := jobErr.Error()
		msg = &s
	}
	return affected(r.pool.Exec(ctx,
		`UPDATE import_jobs SET status = $1, report = $2, error = $3, finished_at = CURRENT_TIMESTAMP WHERE id = $4`,
		status, report, msg, id))
}
