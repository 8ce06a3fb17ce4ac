package model

import (
	"time"

	"github.com/google/uuid"
)

// AcademicYear is a school year, e.g. "2025-2026". At most one year is current.
type AcademicYear struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsCurrent bool      `json:"is_current"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AcademicYearRequest is the payload for creating or updating an academic year.
// Dates use YYYY-MM-DD.
type AcademicYearRequest struct {
	Name      string `json:"name" binding:"required,min=4,max=20"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02"`
	IsCurrent bool   `json:"is_current"`
}

// Semester is one half of an academic year.
type Semester struct {
	ID             uuid.UUID  `json:"id"`
	AcademicYearID uuid.UUID  `json:"academic_year_id"`
	Name           string     `json:"name"`
	Number         int        `json:"number"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SemesterRequest is the payload for creating or updating a semester.
type SemesterRequest struct {
	AcademicYearID uuid.UUID `json:"academic_year_id" binding:"required"`
	Name           string    `json:"name" binding:"required,min=2,max=50"`
	Number         int       `json:"number" binding:"required,oneof=1 2"`
	StartDate      string    `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate        string    `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// Program is a degree programme (grau, màster, postgrau).
type Program struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgramRequest is the payload for creating or updating a programme.
type ProgramRequest struct {
	Code     string `json:"code" binding:"required,min=2,max=30"`
	Name     string `json:"name" binding:"required,min=2,max=200"`
	Type     string `json:"type" binding:"required,oneof=grau master postgrau"`
	IsActive *bool  `json:"is_active"`
}
