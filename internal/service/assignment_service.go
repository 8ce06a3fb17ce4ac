package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AssignmentResult is the outcome of an assignment write or dry run.
type AssignmentResult struct {
	Assignment *model.Assignment       `json:"assignment,omitempty"`
	Validation *model.ValidationResult `json:"validation"`
}

// ConflictScan summarizes a semester-wide conflict scan.
type ConflictScan struct {
	SemesterID  uuid.UUID                  `json:"semester_id"`
	Assignments int                        `json:"assignments_checked"`
	Conflicts   []model.SchedulingConflict `json:"conflicts"`
}

// AssignmentService creates, edits and audits timetable assignments.
type AssignmentService struct {
	assignmentRepo *repository.AssignmentRepository
	subjectRepo    *repository.SubjectRepository
	validation     *ValidationService
	occupancy      *OccupancyService
	activity       *ActivityService
	log            zerolog.Logger
}

func NewAssignmentService(assignmentRepo *repository.AssignmentRepository, subjectRepo *repository.SubjectRepository,
	validation *ValidationService, occupancy *OccupancyService, activity *ActivityService, log zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		subjectRepo:    subjectRepo,
		validation:     validation,
		occupancy:      occupancy,
		activity:       activity,
		log:            log.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *AssignmentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a, err := s.assignmentRepo.GetByID(ctx, id)
	return a, notFound(err)
}

func (s *AssignmentService) List(ctx context.Context, f model.AssignmentFilter) ([]model.AssignmentView, error) {
	return s.assignmentRepo.List(ctx, f)
}

func (s *AssignmentService) Unassigned(ctx context.Context, semesterID uuid.UUID) ([]model.UnassignedGroup, error) {
	return s.assignmentRepo.Unassigned(ctx, semesterID)
}

// Validate checks a classroom assignment without writing anything.
func (s *AssignmentService) Validate(ctx context.Context, check model.AssignmentCheck) (*model.ValidationResult, error) {
	if check.SubjectID == uuid.Nil {
		g, err := s.subjectRepo.GetGroup(ctx, check.SubjectGroupID)
		if err == nil {
			check.SubjectID = g.SubjectID
		}
	}
	return s.validation.ValidateClassroomAssignment(ctx, check)
}

// Create validates and stores a new assignment. A failed validation returns the result
// together with a *ValidationFailedError; a dry run stops after validating.
func (s *AssignmentService) Create(ctx context.Context, actor string, req model.AssignmentRequest) (*AssignmentResult, error) {
	a, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := s.validateAssignment(ctx, a, nil)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return &AssignmentResult{Validation: result}, &ValidationFailedError{Result: result}
	}
	if req.DryRun {
		return &AssignmentResult{Validation: result}, nil
	}

	if actor != "" {
		a.CreatedBy = &actor
	}
	if err := s.assignmentRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	s.afterWrite(ctx, actor, model.EventAssignmentCreated, a, nil)
	return &AssignmentResult{Assignment: a, Validation: result}, nil
}

// Update validates and replaces an assignment, ignoring its own current bookings.
func (s *AssignmentService) Update(ctx context.Context, actor string, id uuid.UUID, req model.AssignmentRequest) (*AssignmentResult, error) {
	old, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	a.ID = id

	result, err := s.validateAssignment(ctx, a, &id)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return &AssignmentResult{Validation: result}, &ValidationFailedError{Result: result}
	}
	if req.DryRun {
		return &AssignmentResult{Validation: result}, nil
	}

	if err := s.assignmentRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update assignment: %w", notFound(err))
	}

	if old.SemesterID != a.SemesterID {
		s.occupancy.InvalidateSemester(ctx, old.SemesterID)
	}
	s.afterWrite(ctx, actor, model.EventAssignmentUpdated, a, old)
	return &AssignmentResult{Assignment: a, Validation: result}, nil
}

// Delete removes an assignment and its classrooms.
func (s *AssignmentService) Delete(ctx context.Context, actor string, id uuid.UUID) error {
	old, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.assignmentRepo.Delete(ctx, id); err != nil {
		return notFound(err)
	}

	s.occupancy.InvalidateSemester(ctx, old.SemesterID)
	s.activity.Audit(ctx, actor, "assignments", id, model.AuditDelete, old, nil)
	s.activity.Publish(ctx, model.ScheduleEvent{
		Type:         model.EventAssignmentDeleted,
		SemesterID:   old.SemesterID,
		EntityID:     id,
		ClassroomIDs: classroomIDs(old),
		Actor:        actor,
	})
	return nil
}

func (s *AssignmentService) afterWrite(ctx context.Context, actor string, evt model.ScheduleEventType, a, old *model.Assignment) {
	s.occupancy.InvalidateSemester(ctx, a.SemesterID)

	action := model.AuditCreate
	if old != nil {
		action = model.AuditUpdate
	}
	s.activity.Audit(ctx, actor, "assignments", a.ID, action, old, a)

	ids := classroomIDs(a)
	if old != nil {
		ids = append(ids, classroomIDs(old)...)
	}
	s.activity.Publish(ctx, model.ScheduleEvent{
		Type:         evt,
		SemesterID:   a.SemesterID,
		EntityID:     a.ID,
		ClassroomIDs: uniqueIDs(ids),
		Actor:        actor,
	})

	s.log.Info().
		Str("assignment_id", a.ID.String()).
		Str("event", string(evt)).
		Str("actor", actor).
		Int("classrooms", len(a.Classrooms)).
		Msg("Assignment saved")
}

// fromRequest resolves the subject from the subject group and normalizes classroom weeks.
func (s *AssignmentService) fromRequest(ctx context.Context, req model.AssignmentRequest) (*model.Assignment, error) {
	g, err := s.subjectRepo.GetGroup(ctx, req.SubjectGroupID)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return nil, invalid("subject group %s does not exist", req.SubjectGroupID)
		}
		return nil, err
	}
	if g.SemesterID != req.SemesterID {
		return nil, invalid("group %s belongs to another semester", g.GroupCode)
	}

	weeks := s.validation.SemesterWeeks()
	a := &model.Assignment{
		SemesterID:     req.SemesterID,
		SubjectID:      g.SubjectID,
		SubjectGroupID: g.ID,
		TeacherID:      req.TeacherID,
		StudentGroupID: req.StudentGroupID,
		TimeSlotID:     req.TimeSlotID,
		HoursPerWeek:   req.HoursPerWeek,
		Color:          req.Color,
		Notes:          req.Notes,
		Classrooms:     make([]model.AssignmentClassroom, 0, len(req.Classrooms)),
	}
	seen := make(map[uuid.UUID]bool, len(req.Classrooms))
	for _, c := range req.Classrooms {
		if seen[c.ClassroomID] {
			return nil, invalid("classroom %s listed twice", c.ClassroomID)
		}
		seen[c.ClassroomID] = true
		norm := normalizeWeeks(c.Weeks, weeks)
		a.Classrooms = append(a.Classrooms, model.AssignmentClassroom{
			ClassroomID:    c.ClassroomID,
			IsFullSemester: len(norm) == 0,
			Weeks:          norm,
		})
	}
	return a, nil
}

// validateAssignment validates a against the semester, ignoring exclude.
func (s *AssignmentService) validateAssignment(ctx context.Context, a *model.Assignment, exclude *uuid.UUID) (*model.ValidationResult, error) {
	base := model.AssignmentCheck{
		SemesterID:          a.SemesterID,
		SubjectID:           a.SubjectID,
		SubjectGroupID:      a.SubjectGroupID,
		StudentGroupID:      a.StudentGroupID,
		TeacherID:           a.TeacherID,
		TimeSlotID:          a.TimeSlotID,
		ExcludeAssignmentID: exclude,
	}
	res, err := s.validation.ValidateAssignment(ctx, base, a.Classrooms)
	if err != nil {
		return nil, fmt.Errorf("validate assignment: %w", err)
	}
	return res, nil
}

// ScanConflicts re-validates every scheduled assignment of a semester and stores the
// collisions found, replacing the previous unresolved findings.
func (s *AssignmentService) ScanConflicts(ctx context.Context, semesterID uuid.UUID) (*ConflictScan, error) {
	ids, err := s.assignmentRepo.IDsBySemester(ctx, semesterID)
	if err != nil {
		return nil, err
	}

	scan := &ConflictScan{SemesterID: semesterID, Conflicts: []model.SchedulingConflict{}}
	seen := make(map[string]bool)
	for _, id := range ids {
		a, err := s.assignmentRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load assignment %s: %w", id, err)
		}
		result, err := s.validateAssignment(ctx, a, &a.ID)
		if err != nil {
			return nil, err
		}
		scan.Assignments++
		scan.Conflicts = append(scan.Conflicts, conflictsOf(semesterID, a.ID, result, seen)...)
	}

	if err := s.assignmentRepo.ReplaceConflicts(ctx, semesterID, scan.Conflicts); err != nil {
		return nil, fmt.Errorf("store conflicts: %w", err)
	}
	s.log.Info().
		Str("semester_id", semesterID.String()).
		Int("assignments", scan.Assignments).
		Int("conflicts", len(scan.Conflicts)).
		Msg("Conflict scan complete")
	return scan, nil
}

func (s *AssignmentService) ListConflicts(ctx context.Context, semesterID uuid.UUID, includeResolved bool) ([]model.SchedulingConflict, error) {
	return s.assignmentRepo.ListConflicts(ctx, semesterID, includeResolved)
}

func (s *AssignmentService) ResolveConflict(ctx context.Context, id uuid.UUID) error {
	return notFound(s.assignmentRepo.ResolveConflict(ctx, id))
}

// conflictsOf turns the collisions of one assignment into stored findings. A pair of
// assignments colliding with each other is reported once; seen tracks reported pairs.
func conflictsOf(semesterID, assignmentID uuid.UUID, result *model.ValidationResult, seen map[string]bool) []model.SchedulingConflict {
	var out []model.SchedulingConflict
	for _, c := range result.Conflicts {
		a, b := assignmentID.String(), c.BookingID.String()
		if b < a {
			a, b = b, a
		}
		key := string(c.Type) + ":" + a + ":" + b + ":" + c.ClassroomCode
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, model.SchedulingConflict{
			SemesterID:   semesterID,
			AssignmentID: assignmentID,
			ConflictType: c.Type,
			Severity:     severityOf(c.Type),
			Description:  describeConflict(c),
		})
	}
	return out
}

func severityOf(t model.ConflictType) model.Severity {
	switch t {
	case model.ConflictClassroom:
		return model.SeverityCritical
	case model.ConflictTeacher:
		return model.SeverityHigh
	case model.ConflictGroup:
		return model.SeverityMedium
	}
	return model.SeverityLow
}

func describeConflict(c model.Conflict) string {
	set := make(schedule.WeekSet, len(c.Weeks))
	for _, w := range c.Weeks {
		set[w] = struct{}{}
	}
	weeks := set.String()
	switch c.Type {
	case model.ConflictClassroom:
		return fmt.Sprintf("Aula %s compartida amb %s (%s), setmanes %s", c.ClassroomCode, c.SubjectName, c.GroupCode, weeks)
	case model.ConflictTeacher:
		return fmt.Sprintf("Professor %s coincideix amb %s (%s), setmanes %s", c.TeacherName, c.SubjectName, c.GroupCode, weeks)
	}
	return fmt.Sprintf("Grup coincideix amb %s (%s), setmanes %s", c.SubjectName, c.GroupCode, weeks)
}

// normalizeWeeks sorts and de-duplicates week numbers. A selection covering the whole
// semester is returned as nil (full semester).
func normalizeWeeks(weeks []int, n int) []int {
	if len(weeks) == 0 {
		return nil
	}
	set := schedule.NewWeekSet(weeks, n)
	if set.IsFull(n) {
		return nil
	}
	return set.Sorted()
}

func classroomIDs(a *model.Assignment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a.Classrooms))
	for _, c := range a.Classrooms {
		ids = append(ids, c.ClassroomID)
	}
	return ids
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
