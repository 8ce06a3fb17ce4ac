package model

import (
	"time"

	"github.com/google/uuid"
)

// EquipmentStatus is the condition of an inventory item.
type EquipmentStatus string

const (
	EquipmentOperational EquipmentStatus = "operational"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentBroken      EquipmentStatus = "broken"
)

// EquipmentType is a catalogue entry such as "Projector" or "iMac 27".
type EquipmentType struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EquipmentTypeRequest is the payload for creating or updating an equipment type.
type EquipmentTypeRequest struct {
	Code        string  `json:"code" binding:"required,min=1,max=30"`
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	Category    string  `json:"category" binding:"required,oneof=audiovisual computing furniture climate office"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

// EquipmentInventory is a quantity of an equipment type placed in a classroom.
type EquipmentInventory struct {
	ID              uuid.UUID       `json:"id"`
	EquipmentTypeID uuid.UUID       `json:"equipment_type_id"`
	EquipmentName   string          `json:"equipment_name,omitempty"`
	ClassroomID     uuid.UUID       `json:"classroom_id"`
	Quantity        int             `json:"quantity"`
	Status          EquipmentStatus `json:"status"`
	SerialNumber    *string         `json:"serial_number"`
	Notes           *string         `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EquipmentInventoryRequest is the payload for creating or updating an inventory row.
type EquipmentInventoryRequest struct {
	EquipmentTypeID uuid.UUID       `json:"equipment_type_id" binding:"required"`
	ClassroomID     uuid.UUID       `json:"classroom_id" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,min=1,max=1000"`
	Status          EquipmentStatus `json:"status" binding:"required,oneof=operational maintenance broken"`
	SerialNumber    *string         `json:"serial_number" binding:"omitempty,max=100"`
	Notes           *string         `json:"notes" binding:"omitempty,max=2000"`
}

// EquipmentRequirement links an equipment type to a subject or profile.
type EquipmentRequirement struct {
	EquipmentTypeID  uuid.UUID `json:"equipment_type_id"`
	EquipmentName    string    `json:"equipment_name"`
	QuantityRequired int       `json:"quantity_required"`
	IsRequired       bool      `json:"is_required"`
}
