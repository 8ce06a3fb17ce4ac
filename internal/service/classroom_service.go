package service

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ClassroomService handles classrooms and the classroom directory.
type ClassroomService struct {
	classroomRepo *repository.ClassroomRepository
	softwareRepo  *repository.SoftwareRepository
	equipmentRepo *repository.EquipmentRepository
	occupancy     *OccupancyService
	log           zerolog.Logger
}

func NewClassroomService(classroomRepo *repository.ClassroomRepository, softwareRepo *repository.SoftwareRepository,
	equipmentRepo *repository.EquipmentRepository, occupancy *OccupancyService, log zerolog.Logger) *ClassroomService {
	return &ClassroomService{
		classroomRepo: classroomRepo,
		softwareRepo:  softwareRepo,
		equipmentRepo: equipmentRepo,
		occupancy:     occupancy,
		log:           log.With().Str("component", "classroom_service").Logger(),
	}
}

func classroomFromRequest(req model.ClassroomRequest) *model.Classroom {
	c := &model.Classroom{
		Code:        req.Code,
		Name:        req.Name,
		Building:    req.Building,
		Floor:       req.Floor,
		Capacity:    req.Capacity,
		Type:        req.Type,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		c.IsAvailable = *req.IsAvailable
	}
	return c
}

func (s *ClassroomService) List(ctx context.Context, f model.ClassroomFilter) ([]model.Classroom, error) {
	return s.classroomRepo.List(ctx, f)
}

func (s *ClassroomService) Buildings(ctx context.Context) ([]string, error) {
	return s.classroomRepo.Buildings(ctx)
}

func (s *ClassroomService) GetByID(ctx context.Context, id uuid.UUID) (*model.Classroom, error) {
	c, err := s.classroomRepo.GetByID(ctx, id)
	return c, notFound(err)
}

// Detail returns a classroom with its installed software and equipment.
func (s *ClassroomService) Detail(ctx context.Context, id uuid.UUID) (*model.ClassroomDetail, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sw, err := s.softwareRepo.ListInstalled(ctx, id)
	if err != nil {
		return nil, err
	}
	eq, err := s.equipmentRepo.ListInventory(ctx, &id)
	if err != nil {
		return nil, err
	}
	return &model.ClassroomDetail{Classroom: *c, Software: sw, Equipment: eq}, nil
}

func (s *ClassroomService) Create(ctx context.Context, req model.ClassroomRequest) (*model.Classroom, error) {
	c := classroomFromRequest(req)
	if err := s.classroomRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClassroomService) Update(ctx context.Context, id uuid.UUID, req model.ClassroomRequest) (*model.Classroom, error) {
	c := classroomFromRequest(req)
	c.ID = id
	if err := s.classroomRepo.Update(ctx, c); err != nil {
		return nil, notFound(err)
	}
	// Capacity and availability feed the building summaries.
	s.occupancy.InvalidateClassroom(ctx, id)
	return c, nil
}

func (s *ClassroomService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.classroomRepo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.occupancy.InvalidateClassroom(ctx, id)
	return nil
}
