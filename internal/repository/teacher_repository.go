package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TeacherRepository handles teacher data access.
type TeacherRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{pool: pool}
}

const teacherColumns = `id, code, first_name, last_name, email, department, contract_type, max_hours, created_at, updated_at`

func scanTeacher(row pgx.Row) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := row.Scan(&t.ID, &t.Code, &t.FirstName, &t.LastName, &t.Email, &t.Department,
		&t.ContractType, &t.MaxHours, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanTeachers(rows pgx.Rows) ([]model.Teacher, error) {
	defer rows.Close()
	var teachers []model.Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, *t)
	}
	return teachers, rows.Err()
}

// List retrieves a paginated list of teachers matching search, and the total count.
func (r *TeacherRepository) List(ctx context.Context, search string, limit, offset int) ([]model.Teacher, int, error) {
	var w where
	if search != "" {
		w.add("(first_name || ' ' || last_name ILIKE '%' || ?::text || '%' OR email ILIKE '%' || ?::text || '%' OR code ILIKE ?::text || '%')", search)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM teachers`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + teacherColumns + ` FROM teachers` + w.sql() + ` ORDER BY last_name, first_name`
	query += w.page(limit, offset)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	teachers, err := scanTeachers(rows)
	return teachers, total, err
}

// ListAll retrieves every teacher ordered by surname.
func (r *TeacherRepository) ListAll(ctx context.Context) ([]model.Teacher, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teacherColumns+` FROM teachers ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	return scanTeachers(rows)
}

// GetByID retrieves a teacher by ID.
func (r *TeacherRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Teacher, error) {
	return scanTeacher(r.pool.QueryRow(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE id = $1`, id))
}

// GetByCode retrieves a teacher by staff code.
func (r *TeacherRepository) GetByCode(ctx context.Context, code string) (*model.Teacher, error) {
	return scanTeacher(r.pool.QueryRow(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE code = $1`, code))
}

// Create inserts a new teacher.
func (r *TeacherRepository) Create(ctx context.Context, t *model.Teacher) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO teachers (code, first_name, last_name, email, department, contract_type, max_hours)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		t.Code, t.FirstName, t.LastName, t.Email, t.Department, t.ContractType, t.MaxHours,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update modifies an existing teacher.
func (r *TeacherRepository) Update(ctx context.Context, t *model.Teacher) error {
	return r.pool.QueryRow(ctx,
		`UPDATE teachers
		 SET code = $1, first_name = $2, last_name = $3, email = $4, department = $5,
		     contract_type = $6, max_hours = $7, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8
		 RETURNING created_at, updated_at`,
		t.Code, t.FirstName, t.LastName, t.Email, t.Department, t.ContractType, t.MaxHours, t.ID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// Upsert inserts or updates a teacher keyed by code. Returns true when a row was inserted.
func (r *TeacherRepository) Upsert(ctx context.Context, t *model.Teacher) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO teachers (code, first_name, last_name, email, department, contract_type, max_hours)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (code) DO UPDATE
		 SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, email = EXCLUDED.email,
		     department = COALESCE(EXCLUDED.department, teachers.department),
		     contract_type = COALESCE(EXCLUDED.contract_type, teachers.contract_type),
		     max_hours = EXCLUDED.max_hours, updated_at = CURRENT_TIMESTAMP
		 RETURNING id, created_at, updated_at, (xmax = 0)`,
		t.Code, t.FirstName, t.LastName, t.Email, t.Department, t.ContractType, t.MaxHours,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &inserted)
	return inserted, err
}

// Delete removes a teacher by ID.
func (r *TeacherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM teachers WHERE id = $1`, id))
}
