package service

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StudentGroupService handles student groups and the weekly time slots.
type StudentGroupService struct {
	groupRepo *repository.StudentGroupRepository
	slotRepo  *repository.TimeSlotRepository
	log       zerolog.Logger
}

func NewStudentGroupService(groupRepo *repository.StudentGroupRepository, slotRepo *repository.TimeSlotRepository, log zerolog.Logger) *StudentGroupService {
	return &StudentGroupService{
		groupRepo: groupRepo,
		slotRepo:  slotRepo,
		log:       log.With().Str("component", "student_group_service").Logger(),
	}
}

func studentGroupFromRequest(req model.StudentGroupRequest) *model.StudentGroup {
	return &model.StudentGroup{
		Name:        req.Name,
		Year:        req.Year,
		Shift:       req.Shift,
		MaxStudents: req.MaxStudents,
		ProgramID:   req.ProgramID,
	}
}

func (s *StudentGroupService) List(ctx context.Context, year int, shift model.Shift) ([]model.StudentGroup, error) {
	return s.groupRepo.List(ctx, year, shift)
}

func (s *StudentGroupService) GetByID(ctx context.Context, id uuid.UUID) (*model.StudentGroup, error) {
	g, err := s.groupRepo.GetByID(ctx, id)
	return g, notFound(err)
}

func (s *StudentGroupService) Create(ctx context.Context, req model.StudentGroupRequest) (*model.StudentGroup, error) {
	g := studentGroupFromRequest(req)
	if err := s.groupRepo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *StudentGroupService) Update(ctx context.Context, id uuid.UUID, req model.StudentGroupRequest) (*model.StudentGroup, error) {
	g := studentGroupFromRequest(req)
	g.ID = id
	if err := s.groupRepo.Update(ctx, g); err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

func (s *StudentGroupService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.groupRepo.Delete(ctx, id))
}

// --- Time slots ---

func (s *StudentGroupService) ListSlots(ctx context.Context) ([]model.TimeSlot, error) {
	return s.slotRepo.List(ctx)
}

// FindOrCreateSlot returns the slot with the same day and times, creating it if needed.
// The slot type defaults to the period the start time falls in.
func (s *StudentGroupService) FindOrCreateSlot(ctx context.Context, req model.TimeSlotRequest) (*model.TimeSlot, error) {
	start, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		return nil, invalid("start_time: %v", err)
	}
	end, err := schedule.ParseClock(req.EndTime)
	if err != nil {
		return nil, invalid("end_time: %v", err)
	}
	if end <= start {
		return nil, invalid("end_time must be after start_time")
	}
	slotType := req.SlotType
	if slotType == "" {
		slotType = model.Shift(schedule.PeriodOf(start))
	}
	slot := &model.TimeSlot{
		DayOfWeek: req.DayOfWeek,
		StartTime: start.String(),
		EndTime:   end.String(),
		SlotType:  slotType,
	}
	if err := s.slotRepo.FindOrCreate(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// PeriodSlot returns the standard slot for a weekday and period (matí 09:00-14:30,
// tarda 15:00-19:30), creating it if needed.
func (s *StudentGroupService) PeriodSlot(ctx context.Context, day int, period schedule.Period) (*model.TimeSlot, error) {
	start, end, err := schedule.PeriodBounds(period)
	if err != nil {
		return nil, invalid("%v", err)
	}
	return s.FindOrCreateSlot(ctx, model.TimeSlotRequest{
		DayOfWeek: day,
		StartTime: start.String(),
		EndTime:   end.String(),
		SlotType:  model.Shift(period),
	})
}

func (s *StudentGroupService) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	return notFound(s.slotRepo.Delete(ctx, id))
}
