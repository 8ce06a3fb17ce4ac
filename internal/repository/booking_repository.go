package repository

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository reads the occupied intervals of classrooms, teachers and student
// groups in a semester, merging assignments and profile bookings.
type BookingRepository struct {
	pool          *pgxpool.Pool
	semesterWeeks int
}

// NewBookingRepository creates a new BookingRepository. semesterWeeks is the number of
// teaching weeks a full-semester booking covers.
func NewBookingRepository(pool *pgxpool.Pool, semesterWeeks int) *BookingRepository {
	return &BookingRepository{pool: pool, semesterWeeks: semesterWeeks}
}

// One row per (assignment, classroom).
const assignmentClassroomBookings = `
	SELECT 'assignment', a.id, a.subject_id, s.name, a.subject_group_id, sg.group_code,
	       COALESCE(t.first_name || ' ' || t.last_name, ''), ac.classroom_id, c.code,
	       ts.day_of_week, to_char(ts.start_time, 'HH24:MI'), to_char(ts.end_time, 'HH24:MI'),
	       ac.is_full_semester,
	       COALESCE(ARRAY(SELECT w.week_number::int FROM assignment_classroom_weeks w
	                      WHERE w.assignment_classroom_id = ac.id), '{}')
	FROM assignment_classrooms ac
	JOIN assignments a ON a.id = ac.assignment_id
	JOIN time_slots ts ON ts.id = a.time_slot_id
	JOIN subjects s ON s.id = a.subject_id
	JOIN subject_groups sg ON sg.id = a.subject_group_id
	JOIN classrooms c ON c.id = ac.classroom_id
	LEFT JOIN teachers t ON t.id = a.teacher_id
	WHERE a.semester_id = $1`

// One row per profile booking. Profiles have no single subject group; the profile name
// stands in for the group code.
const profileClassroomBookings = `
	SELECT 'profile_assignment', pa.id, p.subject_id, s.name, '00000000-0000-0000-0000-000000000000'::uuid, p.name,
	       '', pa.classroom_id, c.code,
	       ts.day_of_week, to_char(ts.start_time, 'HH24:MI'), to_char(ts.end_time, 'HH24:MI'),
	       pa.is_full_semester,
	       COALESCE(ARRAY(SELECT w.week_number::int FROM profile_assignment_weeks w
	                      WHERE w.profile_assignment_id = pa.id), '{}')
	FROM profile_classroom_assignments pa
	JOIN subject_group_profiles p ON p.id = pa.profile_id
	JOIN subjects s ON s.id = p.subject_id
	JOIN time_slots ts ON ts.id = pa.time_slot_id
	JOIN classrooms c ON c.id = pa.classroom_id
	WHERE pa.semester_id = $1`

// One row per assignment; weeks are the union over its classrooms, full semester when it
// has none or any classroom is booked for the whole semester.
const assignmentPersonBookings = `
	SELECT 'assignment', a.id, a.subject_id, s.name, a.subject_group_id, sg.group_code,
	       COALESCE(t.first_name || ' ' || t.last_name, ''), '00000000-0000-0000-0000-000000000000'::uuid, '',
	       ts.day_of_week, to_char(ts.start_time, 'HH24:MI'), to_char(ts.end_time, 'HH24:MI'),
	       COALESCE(bool_or(ac.is_full_semester), TRUE),
	       COALESCE(array_agg(DISTINCT w.week_number::int) FILTER (WHERE w.week_number IS NOT NULL), '{}')
	FROM assignments a
	JOIN time_slots ts ON ts.id = a.time_slot_id
	JOIN subjects s ON s.id = a.subject_id
	JOIN subject_groups sg ON sg.id = a.subject_group_id
	LEFT JOIN teachers t ON t.id = a.teacher_id
	LEFT JOIN assignment_classrooms ac ON ac.assignment_id = a.id
	LEFT JOIN assignment_classroom_weeks w ON w.assignment_classroom_id = ac.id
	WHERE a.semester_id = $1`

const assignmentPersonGroupBy = `
	GROUP BY a.id, s.name, sg.group_code, t.first_name, t.last_name, ts.day_of_week, ts.start_time, ts.end_time`

func (r *BookingRepository) scan(rows pgx.Rows) ([]schedule.Booking, error) {
	defer rows.Close()

	var bookings []schedule.Booking
	for rows.Next() {
		var (
			b          schedule.Booking
			source     string
			day        int
			start, end string
			full       bool
			weeks      []int
		)
		err := rows.Scan(&source, &b.ID, &b.SubjectID, &b.SubjectName, &b.SubjectGroupID, &b.GroupCode,
			&b.TeacherName, &b.ClassroomID, &b.ClassroomCode, &day, &start, &end, &full, &weeks)
		if err != nil {
			return nil, err
		}

		startClock, err := schedule.ParseClock(start)
		if err != nil {
			return nil, err
		}
		endClock, err := schedule.ParseClock(end)
		if err != nil {
			return nil, err
		}

		b.Source = schedule.Source(source)
		b.Interval = schedule.Interval{Day: day, Start: startClock, End: endClock}
		if full {
			b.Weeks = schedule.FullSemester(r.semesterWeeks)
		} else {
			b.Weeks = schedule.NewWeekSet(weeks, r.semesterWeeks)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...interface{}) ([]schedule.Booking, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return r.scan(rows)
}

// ClassroomBookings returns the bookings of one classroom in a semester.
func (r *BookingRepository) ClassroomBookings(ctx context.Context, semesterID, classroomID uuid.UUID) ([]schedule.Booking, error) {
	assignments, err := r.query(ctx, assignmentClassroomBookings+` AND ac.classroom_id = $2`, semesterID, classroomID)
	if err != nil {
		return nil, err
	}
	profiles, err := r.query(ctx, profileClassroomBookings+` AND pa.classroom_id = $2`, semesterID, classroomID)
	if err != nil {
		return nil, err
	}
	return append(assignments, profiles...), nil
}

// AllClassroomBookings returns every classroom booking of a semester; each booking
// carries its ClassroomID.
func (r *BookingRepository) AllClassroomBookings(ctx context.Context, semesterID uuid.UUID) ([]schedule.Booking, error) {
	assignments, err := r.query(ctx, assignmentClassroomBookings, semesterID)
	if err != nil {
		return nil, err
	}
	profiles, err := r.query(ctx, profileClassroomBookings, semesterID)
	if err != nil {
		return nil, err
	}
	return append(assignments, profiles...), nil
}

// TeacherBookings returns the scheduled assignments of a teacher in a semester.
func (r *BookingRepository) TeacherBookings(ctx context.Context, semesterID, teacherID uuid.UUID) ([]schedule.Booking, error) {
	return r.query(ctx, assignmentPersonBookings+` AND a.teacher_id = $2`+assignmentPersonGroupBy, semesterID, teacherID)
}

// StudentGroupBookings returns the scheduled assignments of a student group in a semester.
func (r *BookingRepository) StudentGroupBookings(ctx context.Context, semesterID, studentGroupID uuid.UUID) ([]schedule.Booking, error) {
	return r.query(ctx, assignmentPersonBookings+` AND a.student_group_id = $2`+assignmentPersonGroupBy, semesterID, studentGroupID)
}

// FootprintScope names what a cascading delete starts from.
type FootprintScope int

const (
	FootprintSubject FootprintScope = iota
	FootprintSubjectGroup
	FootprintProfile
)

// BookedRoom is one semester and classroom held by a booking. ClassroomID is nil for
// assignments without classrooms.
type BookedRoom struct {
	SemesterID  uuid.UUID
	ClassroomID *uuid.UUID
}

var footprintQueries = map[FootprintScope]string{
	FootprintSubject: `
		SELECT a.semester_id, ac.classroom_id
		FROM assignments a
		LEFT JOIN assignment_classrooms ac ON ac.assignment_id = a.id
		WHERE a.subject_id = $1
		UNION
		SELECT pa.semester_id, pa.classroom_id
		FROM profile_classroom_assignments pa
		JOIN subject_group_profiles p ON p.id = pa.profile_id
		WHERE p.subject_id = $1`,
	FootprintSubjectGroup: `
		SELECT a.semester_id, ac.classroom_id
		FROM assignments a
		LEFT JOIN assignment_classrooms ac ON ac.assignment_id = a.id
		WHERE a.subject_group_id = $1`,
	FootprintProfile: `
		SELECT DISTINCT pa.semester_id, pa.classroom_id
		FROM profile_classroom_assignments pa
		WHERE pa.profile_id = $1`,
}

// Footprint lists the rooms held by the assignments and profile bookings that deleting
// the subject, subject group or profile id would cascade to.
func (r *BookingRepository) Footprint(ctx context.Context, scope FootprintScope, id uuid.UUID) ([]BookedRoom, error) {
	rows, err := r.pool.Query(ctx, footprintQueries[scope], id)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (BookedRoom, error) {
		var b BookedRoom
		err := row.Scan(&b.SemesterID, &b.ClassroomID)
		return b, err
	})
}
