package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFootprint struct {
	rooms []repository.BookedRoom
	err   error
	scope repository.FootprintScope
}

func (f *fakeFootprint) Footprint(_ context.Context, scope repository.FootprintScope, _ uuid.UUID) ([]repository.BookedRoom, error) {
	f.scope = scope
	return f.rooms, f.err
}

type fakeCache struct {
	semesters []uuid.UUID
	all       int
}

func (f *fakeCache) InvalidateSemester(_ context.Context, id uuid.UUID) {
	f.semesters = append(f.semesters, id)
}
func (f *fakeCache) InvalidateAll(context.Context) { f.all++ }

type fakeEvents struct{ published []model.ScheduleEvent }

func (f *fakeEvents) Publish(_ context.Context, evt model.ScheduleEvent) {
	f.published = append(f.published, evt)
}

func newCascade(fp *fakeFootprint) (cascadeDelete, *fakeCache, *fakeEvents) {
	cache, events := &fakeCache{}, &fakeEvents{}
	return cascadeDelete{footprint: fp, cache: cache, events: events, log: zerolog.Nop()}, cache, events
}

func TestCascadeDeleteAnnouncesEverySemester(t *testing.T) {
	autumn, spring := uuid.New(), uuid.New()
	room1, room2 := uuid.New(), uuid.New()
	fp := &fakeFootprint{rooms: []repository.BookedRoom{
		{SemesterID: autumn, ClassroomID: &room1},
		{SemesterID: autumn, ClassroomID: &room1},
		{SemesterID: autumn, ClassroomID: &room2},
		{SemesterID: spring},
	}}
	d, cache, events := newCascade(fp)

	subjectID := uuid.New()
	var removed uuid.UUID
	err := d.run(context.Background(), repository.FootprintSubject, model.EventAssignmentDeleted, subjectID, "admin",
		func(_ context.Context, id uuid.UUID) error { removed = id; return nil })
	require.NoError(t, err)

	assert.Equal(t, subjectID, removed)
	assert.Equal(t, repository.FootprintSubject, fp.scope)
	assert.Equal(t, []uuid.UUID{autumn, spring}, cache.semesters)
	assert.Zero(t, cache.all)

	require.Len(t, events.published, 2)
	first := events.published[0]
	assert.Equal(t, model.EventAssignmentDeleted, first.Type)
	assert.Equal(t, autumn, first.SemesterID)
	assert.Equal(t, subjectID, first.EntityID)
	assert.Equal(t, "admin", first.Actor)
	assert.ElementsMatch(t, []uuid.UUID{room1, room2}, first.ClassroomIDs)
	assert.Equal(t, spring, events.published[1].SemesterID)
	assert.Empty(t, events.published[1].ClassroomIDs)
}

func TestCascadeDeleteWithoutBookings(t *testing.T) {
	d, cache, events := newCascade(&fakeFootprint{})

	err := d.run(context.Background(), repository.FootprintProfile, model.EventProfileAssignmentDeleted, uuid.New(), "admin",
		func(context.Context, uuid.UUID) error { return nil })
	require.NoError(t, err)
	assert.Empty(t, cache.semesters)
	assert.Empty(t, events.published)
}

func TestCascadeDeleteUnknownFootprintDropsWholeCache(t *testing.T) {
	d, cache, events := newCascade(&fakeFootprint{err: errors.New("connection reset")})

	err := d.run(context.Background(), repository.FootprintSubjectGroup, model.EventAssignmentDeleted, uuid.New(), "admin",
		func(context.Context, uuid.UUID) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, cache.all)
	assert.Empty(t, events.published)
}

func TestCascadeDeleteMissingRecord(t *testing.T) {
	sem, room := uuid.New(), uuid.New()
	d, cache, events := newCascade(&fakeFootprint{rooms: []repository.BookedRoom{{SemesterID: sem, ClassroomID: &room}}})

	err := d.run(context.Background(), repository.FootprintSubject, model.EventAssignmentDeleted, uuid.New(), "admin",
		func(context.Context, uuid.UUID) error { return pgx.ErrNoRows })
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, cache.semesters)
	assert.Empty(t, events.published)
}
