package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// ValidationStore is the read model the validator needs.
type ValidationStore interface {
	Classroom(ctx context.Context, id uuid.UUID) (*model.Classroom, error)
	SubjectGroup(ctx context.Context, id uuid.UUID) (*model.SubjectGroup, error)
	StudentGroup(ctx context.Context, id uuid.UUID) (*model.StudentGroup, error)
	Teacher(ctx context.Context, id uuid.UUID) (*model.Teacher, error)
	TimeSlot(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error)
	Profile(ctx context.Context, id uuid.UUID) (*model.SubjectGroupProfile, error)
	ProfilesForGroup(ctx context.Context, subjectID, subjectGroupID uuid.UUID) ([]model.SubjectGroupProfile, error)
	LargestProfileMember(ctx context.Context, profileID uuid.UUID) (int, error)
	SubjectSoftware(ctx context.Context, subjectID uuid.UUID) ([]model.SoftwareRequirement, error)
	SubjectEquipment(ctx context.Context, subjectID uuid.UUID) ([]model.EquipmentRequirement, error)
	InstalledSoftware(ctx context.Context, classroomID uuid.UUID) (map[uuid.UUID]bool, error)
	OperationalEquipment(ctx context.Context, classroomID uuid.UUID) (map[uuid.UUID]int, error)
	ClassroomBookings(ctx context.Context, semesterID, classroomID uuid.UUID) ([]schedule.Booking, error)
	TeacherBookings(ctx context.Context, semesterID, teacherID uuid.UUID) ([]schedule.Booking, error)
	StudentGroupBookings(ctx context.Context, semesterID, studentGroupID uuid.UUID) ([]schedule.Booking, error)
}

// ValidationService checks classroom assignments against requirements, capacity and
// existing bookings before they are written.
type ValidationService struct {
	store         ValidationStore
	semesterWeeks int
	checks        *prometheus.CounterVec
	log           zerolog.Logger
}

// NewValidationService creates a new ValidationService. checks may be nil.
func NewValidationService(store ValidationStore, semesterWeeks int, checks *prometheus.CounterVec, log zerolog.Logger) *ValidationService {
	if semesterWeeks <= 0 {
		semesterWeeks = schedule.DefaultSemesterWeeks
	}
	return &ValidationService{
		store:         store,
		semesterWeeks: semesterWeeks,
		checks:        checks,
		log:           log.With().Str("component", "validation_service").Logger(),
	}
}

// SemesterWeeks returns the number of teaching weeks of a full semester.
func (s *ValidationService) SemesterWeeks() int {
	return s.semesterWeeks
}

// ValidateClassroomAssignment checks one classroom of an assignment. All checks run and
// accumulate; only a missing classroom or subject group stops early. Store failures are
// returned as errors, not as validation messages.
func (s *ValidationService) ValidateClassroomAssignment(ctx context.Context, check model.AssignmentCheck) (*model.ValidationResult, error) {
	return s.validateClassroom(ctx, check, true)
}

// ValidateAssignment checks every classroom of an assignment, then its teacher and
// student group once over the union of the classrooms' weeks. Without classrooms only
// the participants are checked.
func (s *ValidationService) ValidateAssignment(ctx context.Context, base model.AssignmentCheck, classrooms []model.AssignmentClassroom) (*model.ValidationResult, error) {
	if len(classrooms) == 0 {
		return s.ValidateParticipants(ctx, base)
	}

	result := model.NewValidationResult()
	weeks := make(schedule.WeekSet)
	for _, c := range classrooms {
		check := base
		check.ClassroomID = c.ClassroomID
		check.Weeks = c.Weeks
		res, err := s.validateClassroom(ctx, check, false)
		if err != nil {
			return nil, fmt.Errorf("validate classroom %s: %w", c.ClassroomID, err)
		}
		result.Merge(res)
		weeks = weeks.Union(schedule.NewWeekSet(c.Weeks, s.semesterWeeks))
	}

	participants := base
	participants.Weeks = nil
	if !weeks.IsFull(s.semesterWeeks) {
		participants.Weeks = weeks.Sorted()
	}
	res, err := s.ValidateParticipants(ctx, participants)
	if err != nil {
		return nil, err
	}
	result.Merge(res)
	return result, nil
}

func (s *ValidationService) validateClassroom(ctx context.Context, check model.AssignmentCheck, participants bool) (*model.ValidationResult, error) {
	res := model.NewValidationResult()
	defer s.observe("classroom", res)

	classroom, err := s.store.Classroom(ctx, check.ClassroomID)
	if errors.Is(notFound(err), ErrNotFound) {
		res.AddError("L'aula seleccionada no existeix")
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load classroom: %w", err)
	}
	if !classroom.IsAvailable {
		res.AddError(fmt.Sprintf("L'aula %s no està disponible", classroom.Code))
	}

	group, err := s.store.SubjectGroup(ctx, check.SubjectGroupID)
	if errors.Is(notFound(err), ErrNotFound) {
		res.AddError("El grup d'assignatura no existeix")
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load subject group: %w", err)
	}
	subjectID := check.SubjectID
	if subjectID == uuid.Nil {
		subjectID = group.SubjectID
	}

	// 1. Software and equipment requirements.
	if err := s.checkRequirements(ctx, res, subjectID, group.ID, classroom.ID); err != nil {
		return nil, err
	}

	// 2. Capacity.
	size := 0
	if group.MaxStudents != nil {
		size = *group.MaxStudents
	}
	if check.StudentGroupID != nil {
		sg, err := s.store.StudentGroup(ctx, *check.StudentGroupID)
		switch {
		case errors.Is(notFound(err), ErrNotFound):
			res.AddError("El grup d'estudiants no existeix")
		case err != nil:
			return nil, fmt.Errorf("load student group: %w", err)
		case sg.MaxStudents > size:
			size = sg.MaxStudents
		}
	}
	if size > 0 && classroom.Capacity < size {
		res.AddWarning(fmt.Sprintf(
			"La capacitat de l'aula (%d) és inferior al màxim d'estudiants del grup (%d)", classroom.Capacity, size))
	}

	// 3. Time conflicts.
	if check.TimeSlotID == nil {
		return res, nil
	}
	interval, err := s.interval(ctx, *check.TimeSlotID)
	if errors.Is(err, ErrNotFound) {
		res.AddError("La franja horària no existeix")
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	weeks := schedule.NewWeekSet(check.Weeks, s.semesterWeeks)

	var exclude uuid.UUID
	if check.ExcludeAssignmentID != nil {
		exclude = *check.ExcludeAssignmentID
	}

	bookings, err := s.store.ClassroomBookings(ctx, check.SemesterID, classroom.ID)
	if err != nil {
		return nil, fmt.Errorf("load classroom bookings: %w", err)
	}
	for _, c := range schedule.FindClashes(interval, weeks, bookings, exclude) {
		res.AddConflict(conflictOf(model.ConflictClassroom, c), fmt.Sprintf(
			"L'aula %s ja està assignada a %s (%s) les setmanes: %s",
			c.Booking.ClassroomCode, c.Booking.SubjectName, c.Booking.GroupCode, c.CommonWeeks))
	}

	if !participants {
		return res, nil
	}
	if err := s.checkParticipants(ctx, res, check, group.ID, interval, weeks, exclude); err != nil {
		return nil, err
	}
	return res, nil
}

// ValidateParticipants checks the teacher and student group of an assignment that has
// no classroom yet.
func (s *ValidationService) ValidateParticipants(ctx context.Context, check model.AssignmentCheck) (*model.ValidationResult, error) {
	res := model.NewValidationResult()
	defer s.observe("participants", res)

	if check.TimeSlotID == nil {
		return res, nil
	}
	interval, err := s.interval(ctx, *check.TimeSlotID)
	if errors.Is(err, ErrNotFound) {
		res.AddError("La franja horària no existeix")
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	var exclude uuid.UUID
	if check.ExcludeAssignmentID != nil {
		exclude = *check.ExcludeAssignmentID
	}
	weeks := schedule.NewWeekSet(check.Weeks, s.semesterWeeks)
	if err := s.checkParticipants(ctx, res, check, check.SubjectGroupID, interval, weeks, exclude); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ValidationService) checkParticipants(ctx context.Context, res *model.ValidationResult, check model.AssignmentCheck,
	groupID uuid.UUID, interval schedule.Interval, weeks schedule.WeekSet, exclude uuid.UUID) error {
	if check.StudentGroupID != nil {
		bookings, err := s.store.StudentGroupBookings(ctx, check.SemesterID, *check.StudentGroupID)
		if err != nil {
			return fmt.Errorf("load student group bookings: %w", err)
		}
		for _, c := range schedule.FindClashes(interval, weeks, bookings, exclude) {
			// Several classrooms of the same subject group are not a clash.
			if c.Booking.SubjectGroupID == groupID {
				continue
			}
			res.AddConflict(conflictOf(model.ConflictGroup, c), fmt.Sprintf(
				"El grup d'estudiants ja té classe de %s (%s) en aquest horari les setmanes: %s",
				c.Booking.SubjectName, c.Booking.GroupCode, c.CommonWeeks))
		}
	}

	if check.TeacherID != nil {
		return s.checkTeacher(ctx, res, check, interval, weeks, exclude)
	}
	return nil
}

func (s *ValidationService) checkTeacher(ctx context.Context, res *model.ValidationResult, check model.AssignmentCheck,
	interval schedule.Interval, weeks schedule.WeekSet, exclude uuid.UUID) error {
	teacher, err := s.store.Teacher(ctx, *check.TeacherID)
	if errors.Is(notFound(err), ErrNotFound) {
		res.AddError("El professor no existeix")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load teacher: %w", err)
	}

	bookings, err := s.store.TeacherBookings(ctx, check.SemesterID, teacher.ID)
	if err != nil {
		return fmt.Errorf("load teacher bookings: %w", err)
	}
	for _, c := range schedule.FindClashes(interval, weeks, bookings, exclude) {
		res.AddConflict(conflictOf(model.ConflictTeacher, c), fmt.Sprintf(
			"%s ja imparteix %s (%s) en aquest horari les setmanes: %s",
			teacher.FullName(), c.Booking.SubjectName, c.Booking.GroupCode, c.CommonWeeks))
	}

	if teacher.MaxHours <= 0 {
		return nil
	}
	var kept []schedule.Booking
	for _, b := range bookings {
		if b.ID != exclude {
			kept = append(kept, b)
		}
	}
	minutes := schedule.TotalMinutes(kept) + interval.Minutes()
	if minutes > teacher.MaxHours*60 {
		res.AddWarning(fmt.Sprintf(
			"%s superaria les %d hores setmanals màximes (%.1f h)", teacher.FullName(), teacher.MaxHours, float64(minutes)/60))
	}
	return nil
}

// checkRequirements verifies profile requirements when the subject group belongs to
// any profile, and subject-level requirements otherwise.
func (s *ValidationService) checkRequirements(ctx context.Context, res *model.ValidationResult, subjectID, groupID, classroomID uuid.UUID) error {
	profiles, err := s.store.ProfilesForGroup(ctx, subjectID, groupID)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	installed, err := s.store.InstalledSoftware(ctx, classroomID)
	if err != nil {
		return fmt.Errorf("load installed software: %w", err)
	}
	equipment, err := s.store.OperationalEquipment(ctx, classroomID)
	if err != nil {
		return fmt.Errorf("load classroom equipment: %w", err)
	}

	if len(profiles) > 0 {
		for _, p := range profiles {
			checkSoftware(res, p.Software, installed, fmt.Sprintf("per al perfil \"%s\"", p.Name))
			checkEquipment(res, p.Equipment, equipment, fmt.Sprintf("per al perfil \"%s\"", p.Name))
		}
		return nil
	}

	software, err := s.store.SubjectSoftware(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("load subject software: %w", err)
	}
	needs, err := s.store.SubjectEquipment(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("load subject equipment: %w", err)
	}
	checkSoftware(res, software, installed, "per a aquesta assignatura")
	checkEquipment(res, needs, equipment, "per a aquesta assignatura")
	return nil
}

func checkSoftware(res *model.ValidationResult, reqs []model.SoftwareRequirement, installed map[uuid.UUID]bool, scope string) {
	var required, optional []string
	for _, r := range reqs {
		if installed[r.SoftwareID] {
			continue
		}
		if r.IsRequired {
			required = append(required, r.SoftwareName)
		} else {
			optional = append(optional, r.SoftwareName)
		}
	}
	if len(required) > 0 {
		res.AddError(fmt.Sprintf("L'aula no té el software obligatori %s: %s", scope, strings.Join(required, ", ")))
	}
	if len(optional) > 0 {
		res.AddWarning(fmt.Sprintf("L'aula no té el software recomanat %s: %s", scope, strings.Join(optional, ", ")))
	}
}

func checkEquipment(res *model.ValidationResult, reqs []model.EquipmentRequirement, available map[uuid.UUID]int, scope string) {
	var required, optional []string
	for _, r := range reqs {
		have := available[r.EquipmentTypeID]
		if have >= r.QuantityRequired {
			continue
		}
		line := fmt.Sprintf("%s (%d/%d)", r.EquipmentName, have, r.QuantityRequired)
		if r.IsRequired {
			required = append(required, line)
		} else {
			optional = append(optional, line)
		}
	}
	if len(required) > 0 {
		res.AddError(fmt.Sprintf("L'aula no té l'equipament obligatori %s: %s", scope, strings.Join(required, ", ")))
	}
	if len(optional) > 0 {
		res.AddWarning(fmt.Sprintf("L'aula no té l'equipament recomanat %s: %s", scope, strings.Join(optional, ", ")))
	}
}

// ValidateProfileClassroomAssignment checks a classroom booking for a whole profile.
func (s *ValidationService) ValidateProfileClassroomAssignment(ctx context.Context, check model.ProfileCheck) (*model.ValidationResult, error) {
	res := model.NewValidationResult()
	defer s.observe("profile", res)

	profile, err := s.store.Profile(ctx, check.ProfileID)
	if errors.Is(notFound(err), ErrNotFound) {
		res.AddError("El perfil no existeix")
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	classroom, err := s.store.Classroom(ctx, check.ClassroomID)
	if errors.Is(notFound(err), ErrNotFound) {
		res.AddError("L'aula seleccionada no existeix")
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load classroom: %w", err)
	}
	if !classroom.IsAvailable {
		res.AddError(fmt.Sprintf("L'aula %s no està disponible", classroom.Code))
	}

	installed, err := s.store.InstalledSoftware(ctx, classroom.ID)
	if err != nil {
		return nil, fmt.Errorf("load installed software: %w", err)
	}
	equipment, err := s.store.OperationalEquipment(ctx, classroom.ID)
	if err != nil {
		return nil, fmt.Errorf("load classroom equipment: %w", err)
	}
	scope := fmt.Sprintf("per al perfil \"%s\"", profile.Name)
	checkSoftware(res, profile.Software, installed, scope)
	checkEquipment(res, profile.Equipment, equipment, scope)

	size, err := s.store.LargestProfileMember(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("load profile members: %w", err)
	}
	if size > 0 && classroom.Capacity < size {
		res.AddWarning(fmt.Sprintf(
			"La capacitat de l'aula (%d) és inferior al màxim d'estudiants del grup (%d)", classroom.Capacity, size))
	}

	if check.TimeSlotID == nil {
		return res, nil
	}
	interval, err := s.interval(ctx, *check.TimeSlotID)
	if errors.Is(err, ErrNotFound) {
		res.AddError("La franja horària no existeix")
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	var exclude uuid.UUID
	if check.ExcludeProfileAssignmentID != nil {
		exclude = *check.ExcludeProfileAssignmentID
	}
	bookings, err := s.store.ClassroomBookings(ctx, check.SemesterID, classroom.ID)
	if err != nil {
		return nil, fmt.Errorf("load classroom bookings: %w", err)
	}
	weeks := schedule.NewWeekSet(check.Weeks, s.semesterWeeks)
	for _, c := range schedule.FindClashes(interval, weeks, bookings, exclude) {
		res.AddConflict(conflictOf(model.ConflictClassroom, c), fmt.Sprintf(
			"L'aula %s ja està assignada a %s (%s) les setmanes: %s",
			c.Booking.ClassroomCode, c.Booking.SubjectName, c.Booking.GroupCode, c.CommonWeeks))
	}
	return res, nil
}

func (s *ValidationService) interval(ctx context.Context, timeSlotID uuid.UUID) (schedule.Interval, error) {
	slot, err := s.store.TimeSlot(ctx, timeSlotID)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return schedule.Interval{}, ErrNotFound
		}
		return schedule.Interval{}, fmt.Errorf("load time slot: %w", err)
	}
	return slotInterval(slot)
}

func slotInterval(slot *model.TimeSlot) (schedule.Interval, error) {
	start, err := schedule.ParseClock(slot.StartTime)
	if err != nil {
		return schedule.Interval{}, fmt.Errorf("time slot %s: %w", slot.ID, err)
	}
	end, err := schedule.ParseClock(slot.EndTime)
	if err != nil {
		return schedule.Interval{}, fmt.Errorf("time slot %s: %w", slot.ID, err)
	}
	return schedule.Interval{Day: slot.DayOfWeek, Start: start, End: end}, nil
}

func conflictOf(t model.ConflictType, c schedule.Clash) model.Conflict {
	return model.Conflict{
		Type:          t,
		Source:        string(c.Booking.Source),
		BookingID:     c.Booking.ID,
		SubjectName:   c.Booking.SubjectName,
		GroupCode:     c.Booking.GroupCode,
		ClassroomCode: c.Booking.ClassroomCode,
		TeacherName:   c.Booking.TeacherName,
		Weeks:         c.CommonWeeks.Sorted(),
	}
}

func (s *ValidationService) observe(kind string, res *model.ValidationResult) {
	if s.checks == nil {
		return
	}
	outcome := "valid"
	if !res.IsValid {
		outcome = "invalid"
	}
	s.checks.WithLabelValues(kind, outcome).Inc()
}

// ─── Repository-backed store ─────────────────────────────────────────────────

type repoValidationStore struct {
	classrooms    *repository.ClassroomRepository
	subjects      *repository.SubjectRepository
	studentGroups *repository.StudentGroupRepository
	teachers      *repository.TeacherRepository
	timeSlots     *repository.TimeSlotRepository
	profiles      *repository.ProfileRepository
	software      *repository.SoftwareRepository
	equipment     *repository.EquipmentRepository
	bookings      *repository.BookingRepository
}

// NewValidationStore builds a ValidationStore over the Postgres repositories.
func NewValidationStore(
	classrooms *repository.ClassroomRepository,
	subjects *repository.SubjectRepository,
	studentGroups *repository.StudentGroupRepository,
	teachers *repository.TeacherRepository,
	timeSlots *repository.TimeSlotRepository,
	profiles *repository.ProfileRepository,
	software *repository.SoftwareRepository,
	equipment *repository.EquipmentRepository,
	bookings *repository.BookingRepository,
) ValidationStore {
	return &repoValidationStore{
		classrooms:    classrooms,
		subjects:      subjects,
		studentGroups: studentGroups,
		teachers:      teachers,
		timeSlots:     timeSlots,
		profiles:      profiles,
		software:      software,
		equipment:     equipment,
		bookings:      bookings,
	}
}

func (r *repoValidationStore) Classroom(ctx context.Context, id uuid.UUID) (*model.Classroom, error) {
	return r.classrooms.GetByID(ctx, id)
}

func (r *repoValidationStore) SubjectGroup(ctx context.Context, id uuid.UUID) (*model.SubjectGroup, error) {
	return r.subjects.GetGroup(ctx, id)
}

func (r *repoValidationStore) StudentGroup(ctx context.Context, id uuid.UUID) (*model.StudentGroup, error) {
	return r.studentGroups.GetByID(ctx, id)
}

func (r *repoValidationStore) Teacher(ctx context.Context, id uuid.UUID) (*model.Teacher, error) {
	return r.teachers.GetByID(ctx, id)
}

func (r *repoValidationStore) TimeSlot(ctx context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	return r.timeSlots.GetByID(ctx, id)
}

func (r *repoValidationStore) Profile(ctx context.Context, id uuid.UUID) (*model.SubjectGroupProfile, error) {
	return r.profiles.GetByID(ctx, id)
}

func (r *repoValidationStore) ProfilesForGroup(ctx context.Context, subjectID, subjectGroupID uuid.UUID) ([]model.SubjectGroupProfile, error) {
	return r.profiles.ListForGroup(ctx, subjectID, subjectGroupID)
}

func (r *repoValidationStore) LargestProfileMember(ctx context.Context, profileID uuid.UUID) (int, error) {
	return r.profiles.LargestMemberSize(ctx, profileID)
}

func (r *repoValidationStore) SubjectSoftware(ctx context.Context, subjectID uuid.UUID) ([]model.SoftwareRequirement, error) {
	return r.software.SubjectRequirements(ctx, subjectID)
}

func (r *repoValidationStore) SubjectEquipment(ctx context.Context, subjectID uuid.UUID) ([]model.EquipmentRequirement, error) {
	return r.equipment.SubjectRequirements(ctx, subjectID)
}

func (r *repoValidationStore) InstalledSoftware(ctx context.Context, classroomID uuid.UUID) (map[uuid.UUID]bool, error) {
	return r.software.InstalledIDs(ctx, classroomID)
}

func (r *repoValidationStore) OperationalEquipment(ctx context.Context, classroomID uuid.UUID) (map[uuid.UUID]int, error) {
	return r.equipment.OperationalQuantities(ctx, classroomID)
}

func (r *repoValidationStore) ClassroomBookings(ctx context.Context, semesterID, classroomID uuid.UUID) ([]schedule.Booking, error) {
	return r.bookings.ClassroomBookings(ctx, semesterID, classroomID)
}

func (r *repoValidationStore) TeacherBookings(ctx context.Context, semesterID, teacherID uuid.UUID) ([]schedule.Booking, error) {
	return r.bookings.TeacherBookings(ctx, semesterID, teacherID)
}

func (r *repoValidationStore) StudentGroupBookings(ctx context.Context, semesterID, studentGroupID uuid.UUID) ([]schedule.Booking, error) {
	return r.bookings.StudentGroupBookings(ctx, semesterID, studentGroupID)
}
