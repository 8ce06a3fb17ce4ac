package model

import "github.com/google/uuid"

// AssignmentCheck is the input of a classroom assignment validation.
type AssignmentCheck struct {
	SemesterID          uuid.UUID  `json:"semester_id" binding:"required"`
	SubjectID           uuid.UUID  `json:"subject_id"`
	SubjectGroupID      uuid.UUID  `json:"subject_group_id" binding:"required"`
	StudentGroupID      *uuid.UUID `json:"student_group_id"`
	TeacherID           *uuid.UUID `json:"teacher_id"`
	ClassroomID         uuid.UUID  `json:"classroom_id" binding:"required"`
	TimeSlotID          *uuid.UUID `json:"time_slot_id"`
	Weeks               []int      `json:"weeks" binding:"omitempty,weeks"`
	ExcludeAssignmentID *uuid.UUID `json:"exclude_assignment_id"`
}

// ProfileCheck is the input of a profile classroom assignment validation.
type ProfileCheck struct {
	ProfileID                  uuid.UUID  `json:"profile_id" binding:"required"`
	ClassroomID                uuid.UUID  `json:"classroom_id" binding:"required"`
	SemesterID                 uuid.UUID  `json:"semester_id" binding:"required"`
	TimeSlotID                 *uuid.UUID `json:"time_slot_id"`
	Weeks                      []int      `json:"weeks" binding:"omitempty,weeks"`
	ExcludeProfileAssignmentID *uuid.UUID `json:"exclude_profile_assignment_id"`
}

// ConflictType names the resource that is double-booked.
type ConflictType string

const (
	ConflictTeacher        ConflictType = "TEACHER"
	ConflictClassroom      ConflictType = "CLASSROOM"
	ConflictGroup          ConflictType = "GROUP"
	ConflictTimePreference ConflictType = "TIME_PREFERENCE"
)

// Conflict describes one collision found during validation.
type Conflict struct {
	Type          ConflictType `json:"type"`
	Source        string       `json:"source"`
	BookingID     uuid.UUID    `json:"booking_id"`
	SubjectName   string       `json:"subject_name"`
	GroupCode     string       `json:"group_code"`
	ClassroomCode string       `json:"classroom_code,omitempty"`
	TeacherName   string       `json:"teacher_name,omitempty"`
	Weeks         []int        `json:"weeks"`
}

// ValidationResult accumulates blocking errors and non-blocking warnings.
type ValidationResult struct {
	IsValid   bool       `json:"is_valid"`
	Errors    []string   `json:"errors"`
	Warnings  []string   `json:"warnings"`
	Conflicts []Conflict `json:"conflicts"`
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid:   true,
		Errors:    []string{},
		Warnings:  []string{},
		Conflicts: []Conflict{},
	}
}

// AddError records a blocking error.
func (r *ValidationResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

// AddWarning records a non-blocking warning.
func (r *ValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// AddConflict records a collision and its error message.
func (r *ValidationResult) AddConflict(c Conflict, msg string) {
	r.Conflicts = append(r.Conflicts, c)
	r.AddError(msg)
}

// Merge folds another result into r. Messages already present in r are not repeated,
// so per-classroom results of one assignment can be combined.
func (r *ValidationResult) Merge(o *ValidationResult) {
	if o == nil {
		return
	}
	for _, e := range o.Errors {
		if !contains(r.Errors, e) {
			r.AddError(e)
		}
	}
	for _, w := range o.Warnings {
		if !contains(r.Warnings, w) {
			r.AddWarning(w)
		}
	}
	for _, c := range o.Conflicts {
		dup := false
		for _, have := range r.Conflicts {
			if have.Type == c.Type && have.BookingID == c.BookingID && have.ClassroomCode == c.ClassroomCode {
				dup = true
				break
			}
		}
		if !dup {
			r.Conflicts = append(r.Conflicts, c)
		}
	}
	if !o.IsValid {
		r.IsValid = false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Severity grades a stored scheduling conflict.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// SchedulingConflict is a persisted finding of a semester-wide conflict scan.
type SchedulingConflict struct {
	ID           uuid.UUID    `json:"id"`
	SemesterID   uuid.UUID    `json:"semester_id"`
	AssignmentID uuid.UUID    `json:"assignment_id"`
	ConflictType ConflictType `json:"conflict_type"`
	Severity     Severity     `json:"severity"`
	Description  string       `json:"description"`
	Resolved     bool         `json:"resolved"`
}
