package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentRepository handles timetable assignments and their classrooms.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// GetByID retrieves an assignment with its classrooms.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a := &model.Assignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, semester_id, subject_id, subject_group_id, teacher_id, student_group_id, time_slot_id,
		        hours_per_week::float8, color, notes, created_by, created_at, updated_at
		 FROM assignments WHERE id = $1`, id,
	).Scan(&a.ID, &a.SemesterID, &a.SubjectID, &a.SubjectGroupID, &a.TeacherID, &a.StudentGroupID,
		&a.TimeSlotID, &a.HoursPerWeek, &a.Color, &a.Notes, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT ac.id, ac.classroom_id, c.code, ac.is_full_semester,
		        COALESCE(ARRAY(SELECT w.week_number::int FROM assignment_classroom_weeks w
		                       WHERE w.assignment_classroom_id = ac.id ORDER BY w.week_number), '{}')
		 FROM assignment_classrooms ac
		 JOIN classrooms c ON c.id = ac.classroom_id
		 WHERE ac.assignment_id = $1
		 ORDER BY c.code`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	a.Classrooms = []model.AssignmentClassroom{}
	for rows.Next() {
		var ac model.AssignmentClassroom
		if err := rows.Scan(&ac.ID, &ac.ClassroomID, &ac.ClassroomCode, &ac.IsFullSemester, &ac.Weeks); err != nil {
			return nil, err
		}
		a.Classrooms = append(a.Classrooms, ac)
	}
	return a, rows.Err()
}

// Create inserts an assignment and its classrooms in one transaction.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO assignments (semester_id, subject_id, subject_group_id, teacher_id, student_group_id,
			                          time_slot_id, hours_per_week, color, notes, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id, created_at, updated_at`,
			a.SemesterID, a.SubjectID, a.SubjectGroupID, a.TeacherID, a.StudentGroupID,
			a.TimeSlotID, a.HoursPerWeek, a.Color, a.Notes, a.CreatedBy,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return err
		}
		return insertClassrooms(ctx, tx, a)
	})
}

// Update modifies an assignment and replaces its classrooms in one transaction.
func (r *AssignmentRepository) Update(ctx context.Context, a *model.Assignment) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE assignments
			 SET semester_id = $1, subject_id = $2, subject_group_id = $3, teacher_id = $4, student_group_id = $5,
			     time_slot_id = $6, hours_per_week = $7, color = $8, notes = $9, updated_at = CURRENT_TIMESTAMP
			 WHERE id = $10
			 RETURNING created_by, created_at, updated_at`,
			a.SemesterID, a.SubjectID, a.SubjectGroupID, a.TeacherID, a.StudentGroupID,
			a.TimeSlotID, a.HoursPerWeek, a.Color, a.Notes, a.ID,
		).Scan(&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM assignment_classrooms WHERE assignment_id = $1`, a.ID); err != nil {
			return err
		}
		return insertClassrooms(ctx, tx, a)
	})
}

func insertClassrooms(ctx context.Context, tx pgx.Tx, a *model.Assignment) error {
	for i := range a.Classrooms {
		ac := &a.Classrooms[i]
		ac.IsFullSemester = len(ac.Weeks) == 0
		err := tx.QueryRow(ctx,
			`INSERT INTO assignment_classrooms (assignment_id, classroom_id, is_full_semester)
			 VALUES ($1, $2, $3)
			 RETURNING id`,
			a.ID, ac.ClassroomID, ac.IsFullSemester,
		).Scan(&ac.ID)
		if err != nil {
			return err
		}
		if err := copyWeeks(ctx, tx, "assignment_classroom_weeks", "assignment_classroom_id", ac.ID, ac.Weeks); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an assignment. Classrooms and weeks cascade.
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id))
}

const assignmentViewSelect = `
	SELECT a.id, a.semester_id, a.subject_id, s.code, s.name, a.subject_group_id, sg.group_code,
	       a.teacher_id, t.first_name || ' ' || t.last_name,
	       a.student_group_id, stg.name,
	       ts.day_of_week, to_char(ts.start_time, 'HH24:MI'), to_char(ts.end_time, 'HH24:MI'),
	       COALESCE(ARRAY(SELECT c.code FROM assignment_classrooms ac
	                      JOIN classrooms c ON c.id = ac.classroom_id
	                      WHERE ac.assignment_id = a.id ORDER BY c.code), '{}'),
	       a.color
	FROM assignments a
	JOIN subjects s ON s.id = a.subject_id
	JOIN subject_groups sg ON sg.id = a.subject_group_id
	LEFT JOIN teachers t ON t.id = a.teacher_id
	LEFT JOIN student_groups stg ON stg.id = a.student_group_id
	LEFT JOIN time_slots ts ON ts.id = a.time_slot_id`

// List retrieves denormalized assignment rows matching the filter, ordered by weekday
// and start time.
func (r *AssignmentRepository) List(ctx context.Context, f model.AssignmentFilter) ([]model.AssignmentView, error) {
	var w where
	w.add("a.semester_id = ?", f.SemesterID)
	if f.StudentGroupID != nil {
		w.add("a.student_group_id = ?", *f.StudentGroupID)
	}
	if f.TeacherID != nil {
		w.add("a.teacher_id = ?", *f.TeacherID)
	}
	if f.SubjectID != nil {
		w.add("a.subject_id = ?", *f.SubjectID)
	}
	if f.ClassroomID != nil {
		w.add("EXISTS (SELECT 1 FROM assignment_classrooms x WHERE x.assignment_id = a.id AND x.classroom_id = ?)", *f.ClassroomID)
	}

	rows, err := r.pool.Query(ctx,
		assignmentViewSelect+w.sql()+` ORDER BY ts.day_of_week NULLS LAST, ts.start_time NULLS LAST, s.name, sg.group_code`,
		w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.AssignmentView
	for rows.Next() {
		var v model.AssignmentView
		err := rows.Scan(&v.ID, &v.SemesterID, &v.SubjectID, &v.SubjectCode, &v.SubjectName, &v.SubjectGroupID,
			&v.GroupCode, &v.TeacherID, &v.TeacherName, &v.StudentGroupID, &v.StudentGroupName,
			&v.DayOfWeek, &v.StartTime, &v.EndTime, &v.ClassroomCodes, &v.Color)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// IDsBySemester returns the IDs of every assignment of a semester that has a time slot.
func (r *AssignmentRepository) IDsBySemester(ctx context.Context, semesterID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM assignments WHERE semester_id = $1 AND time_slot_id IS NOT NULL ORDER BY created_at`, semesterID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

// Unassigned retrieves the subject groups of a semester without any classroom, either
// because they have no assignment or because their assignments have no classroom.
func (r *AssignmentRepository) Unassigned(ctx context.Context, semesterID uuid.UUID) ([]model.UnassignedGroup, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sg.id, s.code, s.name, sg.group_code, s.year,
		        EXISTS (SELECT 1 FROM assignments a WHERE a.subject_group_id = sg.id AND a.semester_id = $1)
		 FROM subject_groups sg
		 JOIN subjects s ON s.id = sg.subject_id
		 WHERE sg.semester_id = $1
		   AND NOT EXISTS (
		       SELECT 1 FROM assignments a
		       JOIN assignment_classrooms ac ON ac.assignment_id = a.id
		       WHERE a.subject_group_id = sg.id AND a.semester_id = $1)
		   AND NOT EXISTS (
		       SELECT 1 FROM subject_group_profile_members m
		       JOIN profile_classroom_assignments pa ON pa.profile_id = m.profile_id
		       WHERE m.subject_group_id = sg.id AND pa.semester_id = $1)
		 ORDER BY s.year, s.name, sg.group_code`, semesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.UnassignedGroup
	for rows.Next() {
		var g model.UnassignedGroup
		if err := rows.Scan(&g.SubjectGroupID, &g.SubjectCode, &g.SubjectName, &g.GroupCode, &g.Year, &g.HasAssignment); err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

// ─── Stored conflicts ────────────────────────────────────────────────────────

// ReplaceConflicts swaps the unresolved conflicts of a semester for a fresh scan result.
// Resolved findings are kept.
func (r *AssignmentRepository) ReplaceConflicts(ctx context.Context, semesterID uuid.UUID, conflicts []model.SchedulingConflict) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM scheduling_conflicts WHERE semester_id = $1 AND NOT resolved`, semesterID); err != nil {
			return err
		}
		if len(conflicts) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"scheduling_conflicts"},
			[]string{"semester_id", "assignment_id", "conflict_type", "severity", "description"},
			pgx.CopyFromSlice(len(conflicts), func(i int) ([]interface{}, error) {
				c := conflicts[i]
				return []interface{}{semesterID, c.AssignmentID, string(c.ConflictType), string(c.Severity), c.Description}, nil
			}),
		)
		return err
	})
}

// ListConflicts retrieves the stored conflicts of a semester.
func (r *AssignmentRepository) ListConflicts(ctx context.Context, semesterID uuid.UUID, includeResolved bool) ([]model.SchedulingConflict, error) {
	var w where
	w.add("semester_id = ?", semesterID)
	if !includeResolved {
		w.add("resolved = ?", false)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, semester_id, assignment_id, conflict_type, severity, description, resolved
		 FROM scheduling_conflicts`+w.sql()+` ORDER BY created_at`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.SchedulingConflict
	for rows.Next() {
		var c model.SchedulingConflict
		if err := rows.Scan(&c.ID, &c.SemesterID, &c.AssignmentID, &c.ConflictType, &c.Severity, &c.Description, &c.Resolved); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ResolveConflict marks a stored conflict as resolved.
func (r *AssignmentRepository) ResolveConflict(ctx context.Context, id uuid.UUID) error {
	return affected(r.pool.Exec(ctx, `UPDATE scheduling_conflicts SET resolved = TRUE WHERE id = $1`, id))
}
