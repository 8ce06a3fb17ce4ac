package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentGroupRepository handles student group data access.
type StudentGroupRepository struct {
	pool *pgxpool.Pool
}

// NewStudentGroupRepository creates a new StudentGroupRepository.
func NewStudentGroupRepository(pool *pgxpool.Pool) *StudentGroupRepository {
	return &StudentGroupRepository{pool: pool}
}

const studentGroupColumns = `id, name, year, shift, max_students, program_id, created_at, updated_at`

func scanStudentGroup(row pgx.Row) (*model.StudentGroup, error) {
	g := &model.StudentGroup{}
	if err := row.Scan(&g.ID, &g.Name, &g.Year, &g.Shift, &g.MaxStudents, &g.ProgramID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return g, nil
}

// List retrieves student groups, optionally filtered by year and shift.
func (r *StudentGroupRepository) List(ctx context.Context, year int, shift model.Shift) ([]model.StudentGroup, error) {
	var w where
	if year > 0 {
		w.add("year = ?", year)
	}
	if shift != "" {
		w.add("shift = ?", shift)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+studentGroupColumns+` FROM student_groups`+w.sql()+` ORDER BY year, name`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.StudentGroup
	for rows.Next() {
		g, err := scanStudentGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// GetByID retrieves a student group by ID.
func (r *StudentGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StudentGroup, error) {
	return scanStudentGroup(r.pool.QueryRow(ctx, `SELECT `+studentGroupColumns+` FROM student_groups WHERE id = $1`, id))
}

// GetByName retrieves a student group by name, case-insensitively.
func (r *StudentGroupRepository) GetByName(ctx context.Context, name string) (*model.StudentGroup, error) {
	return scanStudentGroup(r.pool.QueryRow(ctx, `SELECT `+studentGroupColumns+` FROM student_groups WHERE upper(name) = upper($1)`, name))
}

// Create inserts a new student group.
func (r *StudentGroupRepository) Create(ctx context.Context, g *model.StudentGroup) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO student_groups (name, year, shift, max_students, program_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		g.Name, g.Year, g.Shift, g.MaxStudents, g.ProgramID,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}

// Update modifies an existing student group.
func (r *StudentGroupRepository) Update(ctx context.Context, g *model.StudentGroup) error {
	return r.pool.QueryRow(ctx,
		`UPDATE student_groups
		 SET name = $1, year = $2, shift = $3, max_students = $4, program_id = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING created_at, updated_at`,
		g.Name, g.Year, g.Shift, g.MaxStudents, g.ProgramID, g.ID,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
}

// Upsert inserts or updates a student group keyed by name. Returns true when a row was inserted.
func (r *StudentGroupRepository) Upsert(ctx context.Context, g *model.StudentGroup) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO student_groups (name, year, shift, max_students, program_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (name) DO UPDATE
		 SET year = EXCLUDED.year, shift = EXCLUDED.shift, max_students = EXCLUDED.max_students,
		     program_id = COALESCE(EXCLUDED.program_id, student_groups.program_id),
		     updated_at = CURRENT_TIMESTAMP
		 RETURNING id, created_at, updated_at, (xmax = 0)`,
		g.Name, g.Year, g.Shift, g.MaxStudents, g.ProgramID,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt, &inserted)
	return inserted, err
}

// Delete removes a student group by ID.
func (r *StudentGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM student_groups WHERE id = $1`, id))
}

// ─── Time slots ──────────────────────────────────────────────────────────────

// TimeSlotRepository handles time slot data access.
type TimeSlotRepository struct {
	pool *pgxpool.Pool
}

// NewTimeSlotRepository creates a new TimeSlotRepository.
func NewTimeSlotRepository(pool *pgxpool.Pool) *TimeSlotRepository {
	return &TimeSlotRepository{pool: pool}
}

const timeSlotColumns = `id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), slot_type, created_at`

func scanTimeSlot(row pgx.Row) (*model.TimeSlot, error) {
	t := &model.TimeSlot{}
	if err := row.Scan(&t.ID, &t.DayOfWeek, &t.StartTime, &t.EndTime, &t.SlotType, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves every time slot ordered by day and start.
func (r *TimeSlotRepository) List(ctx context.Context) ([]model.TimeSlot, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+timeSlotColumns+` FROM time_slots ORDER BY day_of_week, start_time, end_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.TimeSlot
	for rows.Next() {
		t, err := scanTimeSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *t)
	}
	return slots, rows.Err()
}

// GetByID retrieves a time slot by ID.
func (r *TimeSlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	return scanTimeSlot(r.pool.QueryRow(ctx, `SELECT `+timeSlotColumns+` FROM time_slots WHERE id = $1`, id))
}

// FindOrCreate returns the slot with the given day and bounds, creating it if needed.
func (r *TimeSlotRepository) FindOrCreate(ctx context.Context, t *model.TimeSlot) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO time_slots (day_of_week, start_time, end_time, slot_type)
		 VALUES ($1, $2::time, $3::time, $4)
		 ON CONFLICT (day_of_week, start_time, end_time) DO UPDATE SET slot_type = time_slots.slot_type
		 RETURNING id, slot_type, created_at`,
		t.DayOfWeek, t.StartTime, t.EndTime, t.SlotType,
	).Scan(&t.ID, &t.SlotType, &t.CreatedAt)
}

// Delete removes a time slot by ID.
func (r *TimeSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM time_slots WHERE id = $1`, id))
}
