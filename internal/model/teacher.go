package model

import (
	"time"

	"github.com/google/uuid"
)

// Teacher is a member of the teaching staff.
type Teacher struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Department   *string   `json:"department"`
	ContractType *string   `json:"contract_type"`
	MaxHours     int       `json:"max_hours"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns "First Last".
func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// TeacherRequest is the payload for creating or updating a teacher.
type TeacherRequest struct {
	Code         string  `json:"code" binding:"required,min=2,max=30"`
	FirstName    string  `json:"first_name" binding:"required,min=1,max=100"`
	LastName     string  `json:"last_name" binding:"required,min=1,max=150"`
	Email        string  `json:"email" binding:"required,email,max=200"`
	Department   *string `json:"department" binding:"omitempty,max=100"`
	ContractType *string `json:"contract_type" binding:"omitempty,max=50"`
	MaxHours     int     `json:"max_hours" binding:"gte=0,lte=60"`
}
