package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClassroomRepository handles classroom data access.
type ClassroomRepository struct {
	pool *pgxpool.Pool
}

// NewClassroomRepository creates a new ClassroomRepository.
func NewClassroomRepository(pool *pgxpool.Pool) *ClassroomRepository {
	return &ClassroomRepository{pool: pool}
}

const classroomColumns = `id, code, name, building, floor, capacity, type, is_available, created_at, updated_at`

func scanClassroom(row pgx.Row) (*model.Classroom, error) {
	c := &model.Classroom{}
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Building, &c.Floor, &c.Capacity, &c.Type,
		&c.IsAvailable, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves classrooms matching the filter ordered by code.
func (r *ClassroomRepository) List(ctx context.Context, f model.ClassroomFilter) ([]model.Classroom, error) {
	var w where
	if f.Search != "" {
		w.add("(code ILIKE '%' || ?::text || '%' OR name ILIKE '%' || ?::text || '%')", f.Search)
	}
	if f.Building != "" {
		w.add("building = ?", f.Building)
	}
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	if f.MinCapacity > 0 {
		w.add("capacity >= ?", f.MinCapacity)
	}
	if f.OnlyActive {
		w.add("is_available = ?", true)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+classroomColumns+` FROM classrooms`+w.sql()+` ORDER BY code`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classrooms []model.Classroom
	for rows.Next() {
		c, err := scanClassroom(rows)
		if err != nil {
			return nil, err
		}
		classrooms = append(classrooms, *c)
	}
	return classrooms, rows.Err()
}

// GetByID retrieves a classroom by ID.
func (r *ClassroomRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Classroom, error) {
	return scanClassroom(r.pool.QueryRow(ctx, `SELECT `+classroomColumns+` FROM classrooms WHERE id = $1`, id))
}

// Create inserts a new classroom.
func (r *ClassroomRepository) Create(ctx context.Context, c *model.Classroom) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO classrooms (code, name, building, floor, capacity, type, is_available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		c.Code, c.Name, c.Building, c.Floor, c.Capacity, c.Type, c.IsAvailable,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies an existing classroom.
func (r *ClassroomRepository) Update(ctx context.Context, c *model.Classroom) error {
	return r.pool.QueryRow(ctx,
		`UPDATE classrooms
		 SET code = $1, name = $2, building = $3, floor = $4, capacity = $5, type = $6,
		     is_available = $7, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8
		 RETURNING created_at, updated_at`,
		c.Code, c.Name, c.Building, c.Floor, c.Capacity, c.Type, c.IsAvailable, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

// Upsert inserts or updates a classroom keyed by code. Returns true when a row was inserted.
func (r *ClassroomRepository) Upsert(ctx context.Context, c *model.Classroom) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classrooms (code, name, building, floor, capacity, type, is_available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (code) DO UPDATE
		 SET name = EXCLUDED.name, building = COALESCE(EXCLUDED.building, classrooms.building),
		     floor = COALESCE(EXCLUDED.floor, classrooms.floor), capacity = EXCLUDED.capacity,
		     type = EXCLUDED.type, is_available = EXCLUDED.is_available, updated_at = CURRENT_TIMESTAMP
		 RETURNING id, created_at, updated_at, (xmax = 0)`,
		c.Code, c.Name, c.Building, c.Floor, c.Capacity, c.Type, c.IsAvailable,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &inserted)
	return inserted, err
}

// Delete removes a classroom by ID.
func (r *ClassroomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM classrooms WHERE id = $1`, id))
}

// Buildings returns the distinct building names.
func (r *ClassroomRepository) Buildings(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT building FROM classrooms WHERE building IS NOT NULL ORDER BY building`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
