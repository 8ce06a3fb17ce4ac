package model

import (
	"time"

	"github.com/google/uuid"
)

// ClassroomType is the kind of space a classroom offers.
type ClassroomType string

const (
	ClassroomLecture      ClassroomType = "aula"
	ClassroomLab          ClassroomType = "laboratori"
	ClassroomWorkshop     ClassroomType = "taller"
	ClassroomSeminar      ClassroomType = "seminari"
	ClassroomComputer     ClassroomType = "informatica"
	ClassroomProjects     ClassroomType = "projectes"
	ClassroomTheory       ClassroomType = "teorica"
	ClassroomMultipurpose ClassroomType = "polivalent"
)

// ClassroomTypes lists every accepted classroom type.
var ClassroomTypes = []ClassroomType{
	ClassroomLecture, ClassroomLab, ClassroomWorkshop, ClassroomSeminar,
	ClassroomComputer, ClassroomProjects, ClassroomTheory, ClassroomMultipurpose,
}

// Classroom is a bookable teaching space.
type Classroom struct {
	ID          uuid.UUID     `json:"id"`
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Building    *string       `json:"building"`
	Floor       *int          `json:"floor"`
	Capacity    int           `json:"capacity"`
	Type        ClassroomType `json:"type"`
	IsAvailable bool          `json:"is_available"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ClassroomFilter narrows classroom listings.
type ClassroomFilter struct {
	Search      string
	Building    string
	Type        ClassroomType
	MinCapacity int
	OnlyActive  bool
}

// ClassroomRequest is the payload for creating or updating a classroom.
type ClassroomRequest struct {
	Code        string        `json:"code" binding:"required,min=1,max=30"`
	Name        string        `json:"name" binding:"required,min=1,max=200"`
	Building    *string       `json:"building" binding:"omitempty,max=100"`
	Floor       *int          `json:"floor" binding:"omitempty,min=-3,max=20"`
	Capacity    int           `json:"capacity" binding:"gte=0,lte=1000"`
	Type        ClassroomType `json:"type" binding:"required,oneof=aula laboratori taller seminari informatica projectes teorica polivalent"`
	IsAvailable *bool         `json:"is_available"`
}

// ClassroomDetail is a classroom with its installed software and equipment, as shown
// in the classroom directory.
type ClassroomDetail struct {
	Classroom
	Software  []ClassroomSoftware  `json:"software"`
	Equipment []EquipmentInventory `json:"equipment"`
}
