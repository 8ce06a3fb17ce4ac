package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProgramRepository handles degree programme data access.
type ProgramRepository struct {
	pool *pgxpool.Pool
}

// NewProgramRepository creates a new ProgramRepository.
func NewProgramRepository(pool *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{pool: pool}
}

// List retrieves all programmes ordered by code.
func (r *ProgramRepository) List(ctx context.Context) ([]model.Program, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, type, is_active, created_at, updated_at FROM programs ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programs []model.Program
	for rows.Next() {
		var p model.Program
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Type, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

// GetByID retrieves a programme by ID.
func (r *ProgramRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Program, error) {
	p := &model.Program{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, type, is_active, created_at, updated_at FROM programs WHERE id = $1`, id,
	).Scan(&p.ID, &p.Code, &p.Name, &p.Type, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new programme.
func (r *ProgramRepository) Create(ctx context.Context, p *model.Program) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO programs (code, name, type, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		p.Code, p.Name, p.Type, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update modifies an existing programme.
func (r *ProgramRepository) Update(ctx context.Context, p *model.Program) error {
	return r.pool.QueryRow(ctx,
		`UPDATE programs SET code = $1, name = $2, type = $3, is_active = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5
		 RETURNING created_at, updated_at`,
		p.Code, p.Name, p.Type, p.IsActive, p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Delete removes a programme by ID.
func (r *ProgramRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id))
}
