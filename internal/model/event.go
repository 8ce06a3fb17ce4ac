package model

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleEventType names a change to the timetable.
type ScheduleEventType string

const (
	EventAssignmentCreated        ScheduleEventType = "assignment.created"
	EventAssignmentUpdated        ScheduleEventType = "assignment.updated"
	EventAssignmentDeleted        ScheduleEventType = "assignment.deleted"
	EventProfileAssignmentCreated ScheduleEventType = "profile_assignment.created"
	EventProfileAssignmentDeleted ScheduleEventType = "profile_assignment.deleted"
)

// ScheduleEvent is published whenever a booking of a semester changes.
type ScheduleEvent struct {
	Type         ScheduleEventType `json:"type"`
	SemesterID   uuid.UUID         `json:"semester_id"`
	EntityID     uuid.UUID         `json:"entity_id"`
	ClassroomIDs []uuid.UUID       `json:"classroom_ids,omitempty"`
	Actor        string            `json:"actor"`
	At           time.Time         `json:"at"`
}
