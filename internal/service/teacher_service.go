package service

import (
	"context"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type TeacherService struct {
	teacherRepo *repository.TeacherRepository
	log         zerolog.Logger
}

func NewTeacherService(teacherRepo *repository.TeacherRepository, log zerolog.Logger) *TeacherService {
	return &TeacherService{
		teacherRepo: teacherRepo,
		log:         log.With().Str("component", "teacher_service").Logger(),
	}
}

func teacherFromRequest(req model.TeacherRequest) *model.Teacher {
	return &model.Teacher{
		Code:         req.Code,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Department:   req.Department,
		ContractType: req.ContractType,
		MaxHours:     req.MaxHours,
	}
}

func (s *TeacherService) List(ctx context.Context, search string, limit, offset int) ([]model.Teacher, int, error) {
	return s.teacherRepo.List(ctx, search, limit, offset)
}

func (s *TeacherService) GetByID(ctx context.Context, id uuid.UUID) (*model.Teacher, error) {
	t, err := s.teacherRepo.GetByID(ctx, id)
	return t, notFound(err)
}

func (s *TeacherService) Create(ctx context.Context, req model.TeacherRequest) (*model.Teacher, error) {
	t := teacherFromRequest(req)
	if err := s.teacherRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TeacherService) Update(ctx context.Context, id uuid.UUID, req model.TeacherRequest) (*model.Teacher, error) {
	t := teacherFromRequest(req)
	t.ID = id
	if err := s.teacherRepo.Update(ctx, t); err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (s *TeacherService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.teacherRepo.Delete(ctx, id))
}
