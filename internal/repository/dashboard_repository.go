package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// SummaryCounts holds the catalogue sizes shown on the dashboard.
type SummaryCounts struct {
	Subjects      int `json:"subjects"`
	Teachers      int `json:"teachers"`
	Classrooms    int `json:"classrooms"`
	StudentGroups int `json:"student_groups"`
	Software      int `json:"software"`
	Programs      int `json:"programs"`
}

// GetSummaryCounts retrieves the high-level catalogue counts.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (SummaryCounts, error) {
	var c SummaryCounts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM subjects),
			(SELECT COUNT(*) FROM teachers),
			(SELECT COUNT(*) FROM classrooms),
			(SELECT COUNT(*) FROM student_groups),
			(SELECT COUNT(*) FROM software),
			(SELECT COUNT(*) FROM programs)`,
	).Scan(&c.Subjects, &c.Teachers, &c.Classrooms, &c.StudentGroups, &c.Software, &c.Programs)
	return c, err
}

// ClassroomTypeCounts retrieves the number of classrooms per type.
func (r *DashboardRepository) ClassroomTypeCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT type, COUNT(*) FROM classrooms GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// SemesterScheduleCounts holds assignment progress figures for one semester.
type SemesterScheduleCounts struct {
	Assignments   int `json:"assignments"`
	SubjectGroups int `json:"subject_groups"`
	OpenConflicts int `json:"open_conflicts"`
}

// GetSemesterCounts retrieves assignment progress for a semester.
func (r *DashboardRepository) GetSemesterCounts(ctx context.Context, semesterID uuid.UUID) (SemesterScheduleCounts, error) {
	var c SemesterScheduleCounts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM assignments WHERE semester_id = $1),
			(SELECT COUNT(*) FROM subject_groups WHERE semester_id = $1),
			(SELECT COUNT(*) FROM scheduling_conflicts WHERE semester_id = $1 AND NOT resolved)`,
		semesterID,
	).Scan(&c.Assignments, &c.SubjectGroups, &c.OpenConflicts)
	return c, err
}
