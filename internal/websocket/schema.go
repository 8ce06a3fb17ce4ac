package websocket

import (
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing      Action = "ping"
	ActionSubscribe Action = "subscribe"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// SubscribeRequest switches the stream to another semester. A nil SemesterID
// streams every semester.
type SubscribeRequest struct {
	Action     Action     `json:"action"`
	SemesterID *uuid.UUID `json:"semester_id"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError      Event = "error"
	EventSubscribed Event = "subscribed"
	EventSchedule   Event = "schedule"
	EventPong       Event = "pong"
)

type SubscribedResponse struct {
	Event      Event      `json:"event"`
	SemesterID *uuid.UUID `json:"semester_id"`
}

// ScheduleResponse forwards a timetable change.
type ScheduleResponse struct {
	Event  Event               `json:"event"`
	Change model.ScheduleEvent `json:"change"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
