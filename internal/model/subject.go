package model

import (
	"time"

	"github.com/google/uuid"
)

// SubjectType classifies a subject within the curriculum.
type SubjectType string

const (
	SubjectMandatory SubjectType = "OBLIGATORIA"
	SubjectElective  SubjectType = "OPTATIVA"
	SubjectThesis    SubjectType = "TFG"
)

// Subject represents a course of the curriculum.
type Subject struct {
	ID          uuid.UUID   `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Credits     float64     `json:"credits"`
	Year        int         `json:"year"`
	Type        SubjectType `json:"type"`
	Department  *string     `json:"department"`
	Description *string     `json:"description"`
	ProgramID   *uuid.UUID  `json:"program_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SubjectFilter narrows subject listings.
type SubjectFilter struct {
	Search    string
	Year      int
	Type      SubjectType
	ProgramID *uuid.UUID
}

// SubjectRequest is the payload for creating or updating a subject.
type SubjectRequest struct {
	Code        string      `json:"code" binding:"required,min=2,max=30"`
	Name        string      `json:"name" binding:"required,min=2,max=200"`
	Credits     float64     `json:"credits" binding:"gte=0,lte=60"`
	Year        int         `json:"year" binding:"required,min=1,max=6"`
	Type        SubjectType `json:"type" binding:"required,oneof=OBLIGATORIA OPTATIVA TFG"`
	Department  *string     `json:"department" binding:"omitempty,max=100"`
	Description *string     `json:"description" binding:"omitempty,max=2000"`
	ProgramID   *uuid.UUID  `json:"program_id"`
}

// ToSubject builds a Subject from the request.
func (r SubjectRequest) ToSubject() *Subject {
	return &Subject{
		Code:        r.Code,
		Name:        r.Name,
		Credits:     r.Credits,
		Year:        r.Year,
		Type:        r.Type,
		Department:  r.Department,
		Description: r.Description,
		ProgramID:   r.ProgramID,
	}
}

// GroupType classifies a subject group's teaching format.
type GroupType string

const (
	GroupTheory     GroupType = "THEORY"
	GroupPractice   GroupType = "PRACTICE"
	GroupLaboratory GroupType = "LABORATORY"
	GroupSeminar    GroupType = "SEMINAR"
)

// SubjectGroup is a teaching group of a subject in a given semester (e.g. "M1", "T2").
type SubjectGroup struct {
	ID          uuid.UUID `json:"id"`
	SubjectID   uuid.UUID `json:"subject_id"`
	SemesterID  uuid.UUID `json:"semester_id"`
	GroupCode   string    `json:"group_code"`
	GroupType   GroupType `json:"group_type"`
	MaxStudents *int      `json:"max_students"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Read-only, joined from subjects.
	SubjectCode string `json:"subject_code,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
}

// SubjectGroupRequest is the payload for creating or updating a subject group.
type SubjectGroupRequest struct {
	SubjectID   uuid.UUID `json:"subject_id" binding:"required"`
	SemesterID  uuid.UUID `json:"semester_id" binding:"required"`
	GroupCode   string    `json:"group_code" binding:"required,min=1,max=20"`
	GroupType   GroupType `json:"group_type" binding:"required,oneof=THEORY PRACTICE LABORATORY SEMINAR"`
	MaxStudents *int      `json:"max_students" binding:"omitempty,min=1,max=500"`
}
