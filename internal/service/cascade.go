package service

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type footprintReader interface {
	Footprint(ctx context.Context, scope repository.FootprintScope, id uuid.UUID) ([]repository.BookedRoom, error)
}

type occupancyInvalidator interface {
	InvalidateSemester(ctx context.Context, semesterID uuid.UUID)
	InvalidateAll(ctx context.Context)
}

type eventPublisher interface {
	Publish(ctx context.Context, evt model.ScheduleEvent)
}

// cascadeDelete removes a record whose delete cascades into bookings. The rooms those
// bookings held are read first so their semesters can be invalidated and announced.
type cascadeDelete struct {
	footprint footprintReader
	cache     occupancyInvalidator
	events    eventPublisher
	log       zerolog.Logger
}

func (d cascadeDelete) run(ctx context.Context, scope repository.FootprintScope, evt model.ScheduleEventType,
	id uuid.UUID, actor string, remove func(context.Context, uuid.UUID) error) error {
	booked, ferr := d.footprint.Footprint(ctx, scope, id)
	if err := remove(ctx, id); err != nil {
		return notFound(err)
	}

	if ferr != nil {
		d.log.Warn().Err(ferr).Str("id", id.String()).Msg("cascaded bookings unknown, dropping every occupancy entry")
		d.cache.InvalidateAll(ctx)
		return nil
	}

	var order []uuid.UUID
	rooms := make(map[uuid.UUID][]uuid.UUID)
	for _, b := range booked {
		if _, ok := rooms[b.SemesterID]; !ok {
			order = append(order, b.SemesterID)
			rooms[b.SemesterID] = nil
		}
		if b.ClassroomID != nil {
			rooms[b.SemesterID] = append(rooms[b.SemesterID], *b.ClassroomID)
		}
	}
	for _, semesterID := range order {
		d.cache.InvalidateSemester(ctx, semesterID)
		d.events.Publish(ctx, model.ScheduleEvent{
			Type:         evt,
			SemesterID:   semesterID,
			EntityID:     id,
			ClassroomIDs: uniqueIDs(rooms[semesterID]),
			Actor:        actor,
		})
	}
	return nil
}
