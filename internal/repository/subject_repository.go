package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubjectRepository handles subject and subject group data access.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

const subjectColumns = `id, code, name, credits::float8, year, type, department, description, program_id, created_at, updated_at`

func scanSubject(row pgx.Row) (*model.Subject, error) {
	s := &model.Subject{}
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Credits, &s.Year, &s.Type,
		&s.Department, &s.Description, &s.ProgramID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func subjectWhere(f model.SubjectFilter) *where {
	w := &where{}
	if f.Search != "" {
		w.add("(name ILIKE '%' || ?::text || '%' OR code ILIKE '%' || ?::text || '%')", f.Search)
	}
	if f.Year > 0 {
		w.add("year = ?", f.Year)
	}
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	if f.ProgramID != nil {
		w.add("program_id = ?", *f.ProgramID)
	}
	return w
}

// List retrieves a filtered, paginated list of subjects and the total match count.
func (r *SubjectRepository) List(ctx context.Context, f model.SubjectFilter, limit, offset int) ([]model.Subject, int, error) {
	w := subjectWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subjects`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + subjectColumns + ` FROM subjects` + w.sql() + ` ORDER BY year, name`
	query += w.page(limit, offset)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, 0, err
		}
		subjects = append(subjects, *s)
	}
	return subjects, total, rows.Err()
}

// ListAll retrieves every subject, used by dedupe and exports.
func (r *SubjectRepository) ListAll(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+subjectColumns+` FROM subjects ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, *s)
	}
	return subjects, rows.Err()
}

// GetByID retrieves a subject by ID.
func (r *SubjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subject, error) {
	return scanSubject(r.pool.QueryRow(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id))
}

// GetByCode retrieves a subject by its code.
func (r *SubjectRepository) GetByCode(ctx context.Context, code string) (*model.Subject, error) {
	return scanSubject(r.pool.QueryRow(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE code = $1`, code))
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subjects (code, name, credits, year, type, department, description, program_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		s.Code, s.Name, s.Credits, s.Year, s.Type, s.Department, s.Description, s.ProgramID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update modifies an existing subject.
func (r *SubjectRepository) Update(ctx context.Context, s *model.Subject) error {
	return r.pool.QueryRow(ctx,
		`UPDATE subjects
		 SET code = $1, name = $2, credits = $3, year = $4, type = $5, department = $6,
		     description = $7, program_id = $8, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $9
		 RETURNING created_at, updated_at`,
		s.Code, s.Name, s.Credits, s.Year, s.Type, s.Department, s.Description, s.ProgramID, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// Upsert inserts or updates a subject keyed by code. Returns true when a row was inserted.
func (r *SubjectRepository) Upsert(ctx context.Context, s *model.Subject) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (code, name, credits, year, type, department, description, program_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (code) DO UPDATE
		 SET name = EXCLUDED.name, credits = EXCLUDED.credits, year = EXCLUDED.year, type = EXCLUDED.type,
		     department = COALESCE(EXCLUDED.department, subjects.department),
		     description = COALESCE(EXCLUDED.description, subjects.description),
		     program_id = COALESCE(EXCLUDED.program_id, subjects.program_id),
		     updated_at = CURRENT_TIMESTAMP
		 RETURNING id, created_at, updated_at, (xmax = 0)`,
		s.Code, s.Name, s.Credits, s.Year, s.Type, s.Department, s.Description, s.ProgramID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &inserted)
	return inserted, err
}

// Delete removes a subject by ID.
func (r *SubjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id))
}

// ─── Subject groups ──────────────────────────────────────────────────────────

const subjectGroupSelect = `
	SELECT g.id, g.subject_id, g.semester_id, g.group_code, g.group_type, g.max_students,
	       g.created_at, g.updated_at, s.code, s.name
	FROM subject_groups g
	JOIN subjects s ON s.id = g.subject_id`

func scanSubjectGroup(row pgx.Row) (*model.SubjectGroup, error) {
	g := &model.SubjectGroup{}
	err := row.Scan(&g.ID, &g.SubjectID, &g.SemesterID, &g.GroupCode, &g.GroupType, &g.MaxStudents,
		&g.CreatedAt, &g.UpdatedAt, &g.SubjectCode, &g.SubjectName)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListGroups retrieves subject groups filtered by subject and/or semester.
func (r *SubjectRepository) ListGroups(ctx context.Context, subjectID, semesterID *uuid.UUID) ([]model.SubjectGroup, error) {
	var w where
	if subjectID != nil {
		w.add("g.subject_id = ?", *subjectID)
	}
	if semesterID != nil {
		w.add("g.semester_id = ?", *semesterID)
	}

	rows, err := r.pool.Query(ctx, subjectGroupSelect+w.sql()+` ORDER BY s.code, g.group_code`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.SubjectGroup
	for rows.Next() {
		g, err := scanSubjectGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// GetGroup retrieves a subject group by ID.
func (r *SubjectRepository) GetGroup(ctx context.Context, id uuid.UUID) (*model.SubjectGroup, error) {
	return scanSubjectGroup(r.pool.QueryRow(ctx, subjectGroupSelect+` WHERE g.id = $1`, id))
}

// FindGroup retrieves a subject group by its natural key.
func (r *SubjectRepository) FindGroup(ctx context.Context, subjectID, semesterID uuid.UUID, code string) (*model.SubjectGroup, error) {
	return scanSubjectGroup(r.pool.QueryRow(ctx,
		subjectGroupSelect+` WHERE g.subject_id = $1 AND g.semester_id = $2 AND g.group_code = $3`,
		subjectID, semesterID, code))
}

// CreateGroup inserts a new subject group.
func (r *SubjectRepository) CreateGroup(ctx context.Context, g *model.SubjectGroup) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subject_groups (subject_id, semester_id, group_code, group_type, max_students)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		g.SubjectID, g.SemesterID, g.GroupCode, g.GroupType, g.MaxStudents,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

// UpdateGroup modifies an existing subject group.
func (r *SubjectRepository) UpdateGroup(ctx context.Context, g *model.SubjectGroup) error {
	return r.pool.QueryRow(ctx,
		`UPDATE subject_groups
		 SET subject_id = $1, semester_id = $2, group_code = $3, group_type = $4, max_students = $5,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING created_at, updated_at`,
		g.SubjectID, g.SemesterID, g.GroupCode, g.GroupType, g.MaxStudents, g.ID,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
}

// DeleteGroup removes a subject group by ID.
func (r *SubjectRepository) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM subject_groups WHERE id = $1`, id))
}
