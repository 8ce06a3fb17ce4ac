package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment places a subject group in the timetable: who teaches it, which student
// group attends, when, and in which classrooms.
type Assignment struct {
	ID             uuid.UUID             `json:"id"`
	SemesterID     uuid.UUID             `json:"semester_id"`
	SubjectID      uuid.UUID             `json:"subject_id"`
	SubjectGroupID uuid.UUID             `json:"subject_group_id"`
	TeacherID      *uuid.UUID            `json:"teacher_id"`
	StudentGroupID *uuid.UUID            `json:"student_group_id"`
	TimeSlotID     *uuid.UUID            `json:"time_slot_id"`
	HoursPerWeek   float64               `json:"hours_per_week"`
	Color          *string               `json:"color"`
	Notes          *string               `json:"notes"`
	Classrooms     []AssignmentClassroom `json:"classrooms"`
	CreatedBy      *string               `json:"created_by"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// AssignmentClassroom is one classroom of an assignment, used either the whole
// semester or on specific weeks.
type AssignmentClassroom struct {
	ID             uuid.UUID `json:"id"`
	ClassroomID    uuid.UUID `json:"classroom_id"`
	ClassroomCode  string    `json:"classroom_code,omitempty"`
	IsFullSemester bool      `json:"is_full_semester"`
	Weeks          []int     `json:"weeks"`
}

// AssignmentView is a denormalized assignment row for timetables and exports.
type AssignmentView struct {
	ID               uuid.UUID  `json:"id"`
	SemesterID       uuid.UUID  `json:"semester_id"`
	SubjectID        uuid.UUID  `json:"subject_id"`
	SubjectCode      string     `json:"subject_code"`
	SubjectName      string     `json:"subject_name"`
	SubjectGroupID   uuid.UUID  `json:"subject_group_id"`
	GroupCode        string     `json:"group_code"`
	TeacherID        *uuid.UUID `json:"teacher_id"`
	TeacherName      *string    `json:"teacher_name"`
	StudentGroupID   *uuid.UUID `json:"student_group_id"`
	StudentGroupName *string    `json:"student_group_name"`
	DayOfWeek        *int       `json:"day_of_week"`
	StartTime        *string    `json:"start_time"`
	EndTime          *string    `json:"end_time"`
	ClassroomCodes   []string   `json:"classroom_codes"`
	Color            *string    `json:"color"`
}

// AssignmentFilter selects assignments for listings and timetables.
type AssignmentFilter struct {
	SemesterID     uuid.UUID
	StudentGroupID *uuid.UUID
	TeacherID      *uuid.UUID
	ClassroomID    *uuid.UUID
	SubjectID      *uuid.UUID
}

// AssignmentRequest is the payload for creating or updating an assignment.
type AssignmentRequest struct {
	SemesterID     uuid.UUID                  `json:"semester_id" binding:"required"`
	SubjectGroupID uuid.UUID                  `json:"subject_group_id" binding:"required"`
	TeacherID      *uuid.UUID                 `json:"teacher_id"`
	StudentGroupID *uuid.UUID                 `json:"student_group_id"`
	TimeSlotID     *uuid.UUID                 `json:"time_slot_id"`
	HoursPerWeek   float64                    `json:"hours_per_week" binding:"gte=0,lte=40"`
	Color          *string                    `json:"color" binding:"omitempty,hexcolor"`
	Notes          *string                    `json:"notes" binding:"omitempty,max=2000"`
	Classrooms     []AssignmentClassroomInput `json:"classrooms" binding:"omitempty,dive"`
	DryRun         bool                       `json:"dry_run"`
}

// AssignmentClassroomInput is one classroom line of an assignment payload.
// An empty week list means the full semester.
type AssignmentClassroomInput struct {
	ClassroomID uuid.UUID `json:"classroom_id" binding:"required"`
	Weeks       []int     `json:"weeks" binding:"omitempty,weeks"`
}

// UnassignedGroup is a subject group without any classroom in a semester.
type UnassignedGroup struct {
	SubjectGroupID uuid.UUID `json:"subject_group_id"`
	SubjectCode    string    `json:"subject_code"`
	SubjectName    string    `json:"subject_name"`
	GroupCode      string    `json:"group_code"`
	Year           int       `json:"year"`
	HasAssignment  bool      `json:"has_assignment"`
}
