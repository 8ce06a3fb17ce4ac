package model

import (
	"time"

	"github.com/google/uuid"
)

// Shift is the part of the day a student group attends.
type Shift string

const (
	ShiftMorning   Shift = "mati"
	ShiftAfternoon Shift = "tarda"
)

// StudentGroup is a cohort of students that follows a common timetable (e.g. "GR1-M1").
type StudentGroup struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Year        int        `json:"year"`
	Shift       Shift      `json:"shift"`
	MaxStudents int        `json:"max_students"`
	ProgramID   *uuid.UUID `json:"program_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StudentGroupRequest is the payload for creating or updating a student group.
type StudentGroupRequest struct {
	Name        string     `json:"name" binding:"required,min=2,max=50"`
	Year        int        `json:"year" binding:"required,min=1,max=6"`
	Shift       Shift      `json:"shift" binding:"required,oneof=mati tarda"`
	MaxStudents int        `json:"max_students" binding:"gte=0,lte=500"`
	ProgramID   *uuid.UUID `json:"program_id"`
}

// TimeSlot is a recurring weekly interval (day + start/end).
type TimeSlot struct {
	ID        uuid.UUID `json:"id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	SlotType  Shift     `json:"slot_type"`
	CreatedAt time.Time `json:"created_at"`
}

// TimeSlotRequest is the payload for creating a time slot.
type TimeSlotRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime string `json:"start_time" binding:"required,clock"`
	EndTime   string `json:"end_time" binding:"required,clock"`
	SlotType  Shift  `json:"slot_type" binding:"omitempty,oneof=mati tarda"`
}
