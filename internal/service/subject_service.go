package service

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SubjectService handles subjects, their groups and their classroom requirements.
type SubjectService struct {
	subjectRepo   *repository.SubjectRepository
	softwareRepo  *repository.SoftwareRepository
	equipmentRepo *repository.EquipmentRepository
	cascade       cascadeDelete
	log           zerolog.Logger
}

func NewSubjectService(subjectRepo *repository.SubjectRepository, softwareRepo *repository.SoftwareRepository,
	equipmentRepo *repository.EquipmentRepository, bookings *repository.BookingRepository,
	occupancy *OccupancyService, activity *ActivityService, log zerolog.Logger) *SubjectService {
	log = log.With().Str("component", "subject_service").Logger()
	return &SubjectService{
		subjectRepo:   subjectRepo,
		softwareRepo:  softwareRepo,
		equipmentRepo: equipmentRepo,
		cascade:       cascadeDelete{footprint: bookings, cache: occupancy, events: activity, log: log},
		log:           log,
	}
}

func (s *SubjectService) List(ctx context.Context, f model.SubjectFilter, limit, offset int) ([]model.Subject, int, error) {
	return s.subjectRepo.List(ctx, f, limit, offset)
}

func (s *SubjectService) GetByID(ctx context.Context, id uuid.UUID) (*model.Subject, error) {
	sub, err := s.subjectRepo.GetByID(ctx, id)
	return sub, notFound(err)
}

func (s *SubjectService) Create(ctx context.Context, req model.SubjectRequest) (*model.Subject, error) {
	sub := req.ToSubject()
	if err := s.subjectRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubjectService) Update(ctx context.Context, id uuid.UUID, req model.SubjectRequest) (*model.Subject, error) {
	sub := req.ToSubject()
	sub.ID = id
	if err := s.subjectRepo.Update(ctx, sub); err != nil {
		return nil, notFound(err)
	}
	return sub, nil
}

// Delete removes a subject together with its groups, assignments and profile bookings.
func (s *SubjectService) Delete(ctx context.Context, actor string, id uuid.UUID) error {
	return s.cascade.run(ctx, repository.FootprintSubject, model.EventAssignmentDeleted, id, actor, s.subjectRepo.Delete)
}

// --- Groups ---

func (s *SubjectService) ListGroups(ctx context.Context, subjectID, semesterID *uuid.UUID) ([]model.SubjectGroup, error) {
	return s.subjectRepo.ListGroups(ctx, subjectID, semesterID)
}

func (s *SubjectService) GetGroup(ctx context.Context, id uuid.UUID) (*model.SubjectGroup, error) {
	g, err := s.subjectRepo.GetGroup(ctx, id)
	return g, notFound(err)
}

func groupFromRequest(req model.SubjectGroupRequest) *model.SubjectGroup {
	return &model.SubjectGroup{
		SubjectID:   req.SubjectID,
		SemesterID:  req.SemesterID,
		GroupCode:   req.GroupCode,
		GroupType:   req.GroupType,
		MaxStudents: req.MaxStudents,
	}
}

func (s *SubjectService) CreateGroup(ctx context.Context, req model.SubjectGroupRequest) (*model.SubjectGroup, error) {
	g := groupFromRequest(req)
	if err := s.subjectRepo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *SubjectService) UpdateGroup(ctx context.Context, id uuid.UUID, req model.SubjectGroupRequest) (*model.SubjectGroup, error) {
	g := groupFromRequest(req)
	g.ID = id
	if err := s.subjectRepo.UpdateGroup(ctx, g); err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

func (s *SubjectService) DeleteGroup(ctx context.Context, actor string, id uuid.UUID) error {
	return s.cascade.run(ctx, repository.FootprintSubjectGroup, model.EventAssignmentDeleted, id, actor, s.subjectRepo.DeleteGroup)
}

// --- Requirements ---

// SubjectRequirements is the software and equipment a subject needs in its classrooms.
type SubjectRequirements struct {
	Software  []model.SoftwareRequirement  `json:"software"`
	Equipment []model.EquipmentRequirement `json:"equipment"`
}

// RequirementsRequest replaces a subject's requirements.
type RequirementsRequest struct {
	Software  []model.RequirementSoftwareRow `json:"software" binding:"omitempty,dive"`
	Equipment []model.RequirementEquipRow    `json:"equipment" binding:"omitempty,dive"`
}

func (s *SubjectService) Requirements(ctx context.Context, subjectID uuid.UUID) (*SubjectRequirements, error) {
	if _, err := s.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}
	sw, err := s.softwareRepo.SubjectRequirements(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	eq, err := s.equipmentRepo.SubjectRequirements(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return &SubjectRequirements{Software: sw, Equipment: eq}, nil
}

// SetRequirements replaces both requirement lists of a subject.
func (s *SubjectService) SetRequirements(ctx context.Context, subjectID uuid.UUID, req RequirementsRequest) (*SubjectRequirements, error) {
	if _, err := s.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}
	if err := s.softwareRepo.SetSubjectRequirements(ctx, subjectID, req.Software); err != nil {
		return nil, err
	}
	if err := s.equipmentRepo.SetSubjectRequirements(ctx, subjectID, req.Equipment); err != nil {
		return nil, err
	}
	return s.Requirements(ctx, subjectID)
}
