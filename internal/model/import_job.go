package model

import (
	"time"

	"github.com/google/uuid"
)

// ImportKind names the entity a file import populates.
type ImportKind string

const (
	ImportTeachers      ImportKind = "teachers"
	ImportClassrooms    ImportKind = "classrooms"
	ImportStudentGroups ImportKind = "student_groups"
	ImportSubjects      ImportKind = "subjects"
	ImportSoftware      ImportKind = "software"
	ImportAssignments   ImportKind = "assignments"
)

// ImportKinds lists every supported import kind.
var ImportKinds = []ImportKind{
	ImportTeachers, ImportClassrooms, ImportStudentGroups, ImportSubjects, ImportSoftware, ImportAssignments,
}

// Valid reports whether k is a supported import kind.
func (k ImportKind) Valid() bool {
	for _, v := range ImportKinds {
		if v == k {
			return true
		}
	}
	return false
}

// ImportStatus is the lifecycle state of an import job.
type ImportStatus string

const (
	ImportQueued    ImportStatus = "queued"
	ImportRunning   ImportStatus = "running"
	ImportCompleted ImportStatus = "completed"
	ImportFailed    ImportStatus = "failed"
)

// RowError is a problem found in one row of an imported file.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport summarizes the outcome of an import.
type ImportReport struct {
	Kind     ImportKind `json:"kind"`
	DryRun   bool       `json:"dry_run"`
	Total    int        `json:"total"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
	Warnings []RowError `json:"warnings,omitempty"`
}

// AddError records a row error and counts the row as skipped.
func (r *ImportReport) AddError(row int, msg string) {
	r.Errors = append(r.Errors, RowError{Row: row, Message: msg})
	r.Skipped++
}

// AddWarning records a note on a row that was still counted.
func (r *ImportReport) AddWarning(row int, msg string) {
	r.Warnings = append(r.Warnings, RowError{Row: row, Message: msg})
}

// ImportJob tracks an asynchronous import submitted through the API.
type ImportJob struct {
	ID          uuid.UUID     `json:"id"`
	Kind        ImportKind    `json:"kind"`
	Filename    string        `json:"filename"`
	FilePath    string        `json:"-"`
	Options     ImportOptions `json:"options"`
	Status      ImportStatus  `json:"status"`
	Report      *ImportReport `json:"report"`
	Error       *string       `json:"error"`
	SubmittedBy *string       `json:"submitted_by"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   *time.Time    `json:"started_at"`
	FinishedAt  *time.Time    `json:"finished_at"`
}

// ImportOptions tunes how a file is read and applied.
type ImportOptions struct {
	DryRun     bool       `json:"dry_run"`
	Sheet      string     `json:"sheet,omitempty"`
	Encoding   string     `json:"encoding,omitempty"`
	Delimiter  string     `json:"delimiter,omitempty"`
	SkipRows   int        `json:"skip_rows,omitempty"`
	SemesterID *uuid.UUID `json:"semester_id,omitempty"`
}
