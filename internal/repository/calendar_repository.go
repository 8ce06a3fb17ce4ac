package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CalendarRepository handles academic year and semester data access.
type CalendarRepository struct {
	pool *pgxpool.Pool
}

// NewCalendarRepository creates a new CalendarRepository.
func NewCalendarRepository(pool *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{pool: pool}
}

const academicYearColumns = `id, name, start_date, end_date, is_current, created_at, updated_at`

func scanAcademicYear(row pgx.Row) (*model.AcademicYear, error) {
	y := &model.AcademicYear{}
	if err := row.Scan(&y.ID, &y.Name, &y.StartDate, &y.EndDate, &y.IsCurrent, &y.CreatedAt, &y.UpdatedAt); err != nil {
		return nil, err
	}
	return y, nil
}

// ListYears retrieves all academic years, newest first.
func (r *CalendarRepository) ListYears(ctx context.Context) ([]model.AcademicYear, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+academicYearColumns+` FROM academic_years ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []model.AcademicYear
	for rows.Next() {
		y, err := scanAcademicYear(rows)
		if err != nil {
			return nil, err
		}
		years = append(years, *y)
	}
	return years, rows.Err()
}

// GetYear retrieves an academic year by ID.
func (r *CalendarRepository) GetYear(ctx context.Context, id uuid.UUID) (*model.AcademicYear, error) {
	return scanAcademicYear(r.pool.QueryRow(ctx, `SELECT `+academicYearColumns+` FROM academic_years WHERE id = $1`, id))
}

// GetYearByName retrieves an academic year by its name, e.g. "2025-2026".
func (r *CalendarRepository) GetYearByName(ctx context.Context, name string) (*model.AcademicYear, error) {
	return scanAcademicYear(r.pool.QueryRow(ctx, `SELECT `+academicYearColumns+` FROM academic_years WHERE name = $1`, name))
}

// SaveYear inserts (ID == uuid.Nil) or updates an academic year. Marking a year as
// current clears the flag on every other year in the same transaction.
func (r *CalendarRepository) SaveYear(ctx context.Context, y *model.AcademicYear) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if y.IsCurrent {
			if _, err := tx.Exec(ctx, `UPDATE academic_years SET is_current = FALSE WHERE is_current AND id <> $1`, y.ID); err != nil {
				return err
			}
		}

		if y.ID == uuid.Nil {
			return tx.QueryRow(ctx,
				`INSERT INTO academic_years (name, start_date, end_date, is_current)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id, created_at, updated_at`,
				y.Name, y.StartDate, y.EndDate, y.IsCurrent,
			).Scan(&y.ID, &y.CreatedAt, &y.UpdatedAt)
		}

		return tx.QueryRow(ctx,
			`UPDATE academic_years
			 SET name = $1, start_date = $2, end_date = $3, is_current = $4, updated_at = CURRENT_TIMESTAMP
			 WHERE id = $5
			 RETURNING created_at, updated_at`,
			y.Name, y.StartDate, y.EndDate, y.IsCurrent, y.ID,
		).Scan(&y.CreatedAt, &y.UpdatedAt)
	})
}

// DeleteYear removes an academic year. Fails with a FK violation while semesters exist.
func (r *CalendarRepository) DeleteYear(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM academic_years WHERE id = $1`, id))
}

const semesterColumns = `id, academic_year_id, name, number, start_date, end_date, created_at, updated_at`

func scanSemester(row pgx.Row) (*model.Semester, error) {
	s := &model.Semester{}
	if err := row.Scan(&s.ID, &s.AcademicYearID, &s.Name, &s.Number, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// ListSemesters retrieves semesters, optionally restricted to one academic year.
func (r *CalendarRepository) ListSemesters(ctx context.Context, yearID *uuid.UUID) ([]model.Semester, error) {
	var w where
	if yearID != nil {
		w.add("academic_year_id = ?", *yearID)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+semesterColumns+` FROM semesters`+w.sql()+` ORDER BY start_date NULLS LAST, number`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var semesters []model.Semester
	for rows.Next() {
		s, err := scanSemester(rows)
		if err != nil {
			return nil, err
		}
		semesters = append(semesters, *s)
	}
	return semesters, rows.Err()
}

// GetSemester retrieves a semester by ID.
func (r *CalendarRepository) GetSemester(ctx context.Context, id uuid.UUID) (*model.Semester, error) {
	return scanSemester(r.pool.QueryRow(ctx, `SELECT `+semesterColumns+` FROM semesters WHERE id = $1`, id))
}

// CurrentSemester retrieves semester `number` of the current academic year.
func (r *CalendarRepository) CurrentSemester(ctx context.Context, number int) (*model.Semester, error) {
	return scanSemester(r.pool.QueryRow(ctx,
		`SELECT s.id, s.academic_year_id, s.name, s.number, s.start_date, s.end_date, s.created_at, s.updated_at
		 FROM semesters s
		 JOIN academic_years y ON y.id = s.academic_year_id
		 WHERE y.is_current AND s.number = $1`, number))
}

// CreateSemester inserts a new semester.
func (r *CalendarRepository) CreateSemester(ctx context.Context, s *model.Semester) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO semesters (academic_year_id, name, number, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		s.AcademicYearID, s.Name, s.Number, s.StartDate, s.EndDate,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// UpdateSemester modifies an existing semester.
func (r *CalendarRepository) UpdateSemester(ctx context.Context, s *model.Semester) error {
	return r.pool.QueryRow(ctx,
		`UPDATE semesters
		 SET academic_year_id = $1, name = $2, number = $3, start_date = $4, end_date = $5, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6
		 RETURNING created_at, updated_at`,
		s.AcademicYearID, s.Name, s.Number, s.StartDate, s.EndDate, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// DeleteSemester removes a semester by ID.
func (r *CalendarRepository) DeleteSemester(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM semesters WHERE id = $1`, id))
}
