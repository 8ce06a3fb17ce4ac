package service

import (
	"context"
	"fmt"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProfileResult is the outcome of a profile booking write.
type ProfileResult struct {
	Assignment *model.ProfileAssignment `json:"assignment,omitempty"`
	Validation *model.ValidationResult  `json:"validation"`
}

// ProfileService manages subject group profiles and their classroom bookings.
type ProfileService struct {
	profileRepo *repository.ProfileRepository
	subjectRepo *repository.SubjectRepository
	validation  *ValidationService
	occupancy   *OccupancyService
	activity    *ActivityService
	cascade     cascadeDelete
	log         zerolog.Logger
}

func NewProfileService(profileRepo *repository.ProfileRepository, subjectRepo *repository.SubjectRepository,
	bookings *repository.BookingRepository, validation *ValidationService, occupancy *OccupancyService,
	activity *ActivityService, log zerolog.Logger) *ProfileService {
	log = log.With().Str("component", "profile_service").Logger()
	return &ProfileService{
		profileRepo: profileRepo,
		subjectRepo: subjectRepo,
		validation:  validation,
		occupancy:   occupancy,
		activity:    activity,
		cascade:     cascadeDelete{footprint: bookings, cache: occupancy, events: activity, log: log},
		log:         log,
	}
}

func (s *ProfileService) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]model.SubjectGroupProfile, error) {
	return s.profileRepo.ListBySubject(ctx, subjectID)
}

func (s *ProfileService) GetByID(ctx context.Context, id uuid.UUID) (*model.SubjectGroupProfile, error) {
	p, err := s.profileRepo.GetByID(ctx, id)
	return p, notFound(err)
}

// Save creates (id == uuid.Nil) or replaces a profile. Every member must be a group
// of the profile's subject.
func (s *ProfileService) Save(ctx context.Context, actor string, id uuid.UUID, req model.ProfileRequest) (*model.SubjectGroupProfile, error) {
	seen := make(map[uuid.UUID]bool, len(req.MemberIDs))
	members := make([]uuid.UUID, 0, len(req.MemberIDs))
	for _, gid := range req.MemberIDs {
		if seen[gid] {
			continue
		}
		seen[gid] = true
		g, err := s.subjectRepo.GetGroup(ctx, gid)
		if err != nil {
			if notFound(err) == ErrNotFound {
				return nil, invalid("subject group %s does not exist", gid)
			}
			return nil, err
		}
		if g.SubjectID != req.SubjectID {
			return nil, invalid("group %s belongs to another subject", g.GroupCode)
		}
		members = append(members, gid)
	}

	var old *model.SubjectGroupProfile
	if id != uuid.Nil {
		var err error
		if old, err = s.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}

	p := &model.SubjectGroupProfile{
		ID:          id,
		SubjectID:   req.SubjectID,
		Name:        req.Name,
		Description: req.Description,
		MemberIDs:   members,
	}
	if err := s.profileRepo.Save(ctx, p, req.Software, req.Equipment); err != nil {
		return nil, notFound(err)
	}

	action := model.AuditCreate
	if old != nil {
		action = model.AuditUpdate
	}
	saved, err := s.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	s.activity.Audit(ctx, actor, "subject_group_profiles", p.ID, action, old, saved)
	return saved, nil
}

func (s *ProfileService) Delete(ctx context.Context, actor string, id uuid.UUID) error {
	old, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	err = s.cascade.run(ctx, repository.FootprintProfile, model.EventProfileAssignmentDeleted, id, actor, s.profileRepo.Delete)
	if err != nil {
		return err
	}
	s.activity.Audit(ctx, actor, "subject_group_profiles", id, model.AuditDelete, old, nil)
	return nil
}

// --- Profile classroom bookings ---

func (s *ProfileService) ListAssignments(ctx context.Context, profileID uuid.UUID, semesterID *uuid.UUID) ([]model.ProfileAssignment, error) {
	return s.profileRepo.ListAssignments(ctx, profileID, semesterID)
}

// Validate runs the profile classroom validation without writing.
func (s *ProfileService) Validate(ctx context.Context, check model.ProfileCheck) (*model.ValidationResult, error) {
	return s.validation.ValidateProfileClassroomAssignment(ctx, check)
}

// CreateAssignment books a classroom for a profile after validating it. A failed
// validation returns the result together with a *ValidationFailedError.
func (s *ProfileService) CreateAssignment(ctx context.Context, actor string, profileID uuid.UUID, req model.ProfileAssignmentRequest) (*ProfileResult, error) {
	slotID := req.TimeSlotID
	result, err := s.validation.ValidateProfileClassroomAssignment(ctx, model.ProfileCheck{
		ProfileID:   profileID,
		ClassroomID: req.ClassroomID,
		SemesterID:  req.SemesterID,
		TimeSlotID:  &slotID,
		Weeks:       req.Weeks,
	})
	if err != nil {
		return nil, fmt.Errorf("validate profile booking: %w", err)
	}
	if !result.IsValid {
		return &ProfileResult{Validation: result}, &ValidationFailedError{Result: result}
	}
	if req.DryRun {
		return &ProfileResult{Validation: result}, nil
	}

	pa := &model.ProfileAssignment{
		ProfileID:   profileID,
		ClassroomID: req.ClassroomID,
		SemesterID:  req.SemesterID,
		TimeSlotID:  req.TimeSlotID,
		Weeks:       normalizeWeeks(req.Weeks, s.validation.SemesterWeeks()),
	}
	if err := s.profileRepo.CreateAssignment(ctx, pa); err != nil {
		return nil, fmt.Errorf("create profile booking: %w", err)
	}

	s.occupancy.InvalidateSemester(ctx, pa.SemesterID)
	s.activity.Audit(ctx, actor, "profile_classroom_assignments", pa.ID, model.AuditCreate, nil, pa)
	s.activity.Publish(ctx, model.ScheduleEvent{
		Type:         model.EventProfileAssignmentCreated,
		SemesterID:   pa.SemesterID,
		EntityID:     pa.ID,
		ClassroomIDs: []uuid.UUID{pa.ClassroomID},
		Actor:        actor,
	})
	s.log.Info().
		Str("profile_id", profileID.String()).
		Str("classroom_id", pa.ClassroomID.String()).
		Msg("Profile classroom booked")
	return &ProfileResult{Assignment: pa, Validation: result}, nil
}

func (s *ProfileService) DeleteAssignment(ctx context.Context, actor string, id uuid.UUID) error {
	pa, err := s.profileRepo.GetAssignment(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := s.profileRepo.DeleteAssignment(ctx, id); err != nil {
		return notFound(err)
	}
	s.occupancy.InvalidateSemester(ctx, pa.SemesterID)
	s.activity.Audit(ctx, actor, "profile_classroom_assignments", id, model.AuditDelete, pa, nil)
	s.activity.Publish(ctx, model.ScheduleEvent{
		Type:         model.EventProfileAssignmentDeleted,
		SemesterID:   pa.SemesterID,
		EntityID:     id,
		ClassroomIDs: []uuid.UUID{pa.ClassroomID},
		Actor:        actor,
	})
	return nil
}
