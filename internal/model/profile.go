package model

import (
	"time"

	"github.com/google/uuid"
)

// SubjectGroupProfile bundles some groups of a subject that share classroom
// requirements (e.g. the groups doing the "Animació 3D" itinerary).
type SubjectGroupProfile struct {
	ID          uuid.UUID              `json:"id"`
	SubjectID   uuid.UUID              `json:"subject_id"`
	Name        string                 `json:"name"`
	Description *string                `json:"description"`
	MemberIDs   []uuid.UUID            `json:"member_ids"`
	Software    []SoftwareRequirement  `json:"software"`
	Equipment   []EquipmentRequirement `json:"equipment"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ProfileRequest is the payload for creating or updating a profile with its members
// and requirements.
type ProfileRequest struct {
	SubjectID   uuid.UUID                `json:"subject_id" binding:"required"`
	Name        string                   `json:"name" binding:"required,min=1,max=200"`
	Description *string                  `json:"description" binding:"omitempty,max=2000"`
	MemberIDs   []uuid.UUID              `json:"member_ids" binding:"omitempty,dive,required"`
	Software    []RequirementSoftwareRow `json:"software" binding:"omitempty,dive"`
	Equipment   []RequirementEquipRow    `json:"equipment" binding:"omitempty,dive"`
}

// RequirementSoftwareRow is one software line of a requirement payload.
type RequirementSoftwareRow struct {
	SoftwareID uuid.UUID `json:"software_id" binding:"required"`
	IsRequired bool      `json:"is_required"`
}

// RequirementEquipRow is one equipment line of a requirement payload.
type RequirementEquipRow struct {
	EquipmentTypeID  uuid.UUID `json:"equipment_type_id" binding:"required"`
	QuantityRequired int       `json:"quantity_required" binding:"required,min=1,max=500"`
	IsRequired       bool      `json:"is_required"`
}

// ProfileAssignment books a classroom for a whole profile at a time slot.
type ProfileAssignment struct {
	ID             uuid.UUID `json:"id"`
	ProfileID      uuid.UUID `json:"profile_id"`
	ClassroomID    uuid.UUID `json:"classroom_id"`
	SemesterID     uuid.UUID `json:"semester_id"`
	TimeSlotID     uuid.UUID `json:"time_slot_id"`
	IsFullSemester bool      `json:"is_full_semester"`
	Weeks          []int     `json:"weeks"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileAssignmentRequest is the payload for booking a classroom for a profile.
type ProfileAssignmentRequest struct {
	ClassroomID uuid.UUID `json:"classroom_id" binding:"required"`
	SemesterID  uuid.UUID `json:"semester_id" binding:"required"`
	TimeSlotID  uuid.UUID `json:"time_slot_id" binding:"required"`
	Weeks       []int     `json:"weeks" binding:"omitempty,weeks"`
	DryRun      bool      `json:"dry_run"`
}
