package service

import (
	"context"
	"testing"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	classrooms    map[uuid.UUID]*model.Classroom
	subjectGroups map[uuid.UUID]*model.SubjectGroup
	studentGroups map[uuid.UUID]*model.StudentGroup
	teachers      map[uuid.UUID]*model.Teacher
	slots         map[uuid.UUID]*model.TimeSlot
	profiles      map[uuid.UUID]*model.SubjectGroupProfile
	largest       map[uuid.UUID]int

	subjectSoftware  []model.SoftwareRequirement
	subjectEquipment []model.EquipmentRequirement
	installed        map[uuid.UUID]bool
	equipment        map[uuid.UUID]int

	classroomBookings map[uuid.UUID][]schedule.Booking
	teacherBookings   map[uuid.UUID][]schedule.Booking
	groupBookings     map[uuid.UUID][]schedule.Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		classrooms:        map[uuid.UUID]*model.Classroom{},
		subjectGroups:     map[uuid.UUID]*model.SubjectGroup{},
		studentGroups:     map[uuid.UUID]*model.StudentGroup{},
		teachers:          map[uuid.UUID]*model.Teacher{},
		slots:             map[uuid.UUID]*model.TimeSlot{},
		profiles:          map[uuid.UUID]*model.SubjectGroupProfile{},
		largest:           map[uuid.UUID]int{},
		installed:         map[uuid.UUID]bool{},
		equipment:         map[uuid.UUID]int{},
		classroomBookings: map[uuid.UUID][]schedule.Booking{},
		teacherBookings:   map[uuid.UUID][]schedule.Booking{},
		groupBookings:     map[uuid.UUID][]schedule.Booking{},
	}
}

func get[T any](m map[uuid.UUID]*T, id uuid.UUID) (*T, error) {
	if v, ok := m[id]; ok {
		return v, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) Classroom(_ context.Context, id uuid.UUID) (*model.Classroom, error) {
	return get(f.classrooms, id)
}
func (f *fakeStore) SubjectGroup(_ context.Context, id uuid.UUID) (*model.SubjectGroup, error) {
	return get(f.subjectGroups, id)
}
func (f *fakeStore) StudentGroup(_ context.Context, id uuid.UUID) (*model.StudentGroup, error) {
	return get(f.studentGroups, id)
}
func (f *fakeStore) Teacher(_ context.Context, id uuid.UUID) (*model.Teacher, error) {
	return get(f.teachers, id)
}
func (f *fakeStore) TimeSlot(_ context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	return get(f.slots, id)
}
func (f *fakeStore) Profile(_ context.Context, id uuid.UUID) (*model.SubjectGroupProfile, error) {
	return get(f.profiles, id)
}
func (f *fakeStore) ProfilesForGroup(_ context.Context, subjectID, groupID uuid.UUID) ([]model.SubjectGroupProfile, error) {
	var out []model.SubjectGroupProfile
	for _, p := range f.profiles {
		if p.SubjectID != subjectID {
			continue
		}
		for _, m := range p.MemberIDs {
			if m == groupID {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}
func (f *fakeStore) LargestProfileMember(_ context.Context, id uuid.UUID) (int, error) {
	return f.largest[id], nil
}
func (f *fakeStore) SubjectSoftware(context.Context, uuid.UUID) ([]model.SoftwareRequirement, error) {
	return f.subjectSoftware, nil
}
func (f *fakeStore) SubjectEquipment(context.Context, uuid.UUID) ([]model.EquipmentRequirement, error) {
	return f.subjectEquipment, nil
}
func (f *fakeStore) InstalledSoftware(context.Context, uuid.UUID) (map[uuid.UUID]bool, error) {
	return f.installed, nil
}
func (f *fakeStore) OperationalEquipment(context.Context, uuid.UUID) (map[uuid.UUID]int, error) {
	return f.equipment, nil
}
func (f *fakeStore) ClassroomBookings(_ context.Context, _, id uuid.UUID) ([]schedule.Booking, error) {
	return f.classroomBookings[id], nil
}
func (f *fakeStore) TeacherBookings(_ context.Context, _, id uuid.UUID) ([]schedule.Booking, error) {
	return f.teacherBookings[id], nil
}
func (f *fakeStore) StudentGroupBookings(_ context.Context, _, id uuid.UUID) ([]schedule.Booking, error) {
	return f.groupBookings[id], nil
}

type fixture struct {
	store     *fakeStore
	svc       *ValidationService
	semester  uuid.UUID
	subject   uuid.UUID
	group     *model.SubjectGroup
	classroom *model.Classroom
	slot      *model.TimeSlot
}

func newFixture() *fixture {
	store := newFakeStore()
	f := &fixture{
		store:    store,
		svc:      NewValidationService(store, 15, nil, zerolog.Nop()),
		semester: uuid.New(),
		subject:  uuid.New(),
	}

	size := 25
	f.group = &model.SubjectGroup{ID: uuid.New(), SubjectID: f.subject, GroupCode: "M1", MaxStudents: &size}
	f.classroom = &model.Classroom{ID: uuid.New(), Code: "P.1.3", Capacity: 30, IsAvailable: true}
	f.slot = &model.TimeSlot{ID: uuid.New(), DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"}

	store.subjectGroups[f.group.ID] = f.group
	store.classrooms[f.classroom.ID] = f.classroom
	store.slots[f.slot.ID] = f.slot
	return f
}

func (f *fixture) check() model.AssignmentCheck {
	slot := f.slot.ID
	return model.AssignmentCheck{
		SemesterID:     f.semester,
		SubjectID:      f.subject,
		SubjectGroupID: f.group.ID,
		ClassroomID:    f.classroom.ID,
		TimeSlotID:     &slot,
	}
}

func booking(day int, start, end string, weeks ...int) schedule.Booking {
	return schedule.Booking{
		Source:         schedule.SourceAssignment,
		ID:             uuid.New(),
		SubjectName:    "Tipografia",
		SubjectGroupID: uuid.New(),
		GroupCode:      "T1",
		ClassroomCode:  "P.1.3",
		Interval:       schedule.Interval{Day: day, Start: schedule.MustClock(start), End: schedule.MustClock(end)},
		Weeks:          schedule.NewWeekSet(weeks, 15),
	}
}

func TestValidateClassroomAssignment_Clean(t *testing.T) {
	f := newFixture()

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), f.check())
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidateClassroomAssignment_MissingClassroom(t *testing.T) {
	f := newFixture()
	check := f.check()
	check.ClassroomID = uuid.New()

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), check)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{"L'aula seleccionada no existeix"}, res.Errors)
}

func TestValidateClassroomAssignment_UnavailableClassroom(t *testing.T) {
	f := newFixture()
	f.classroom.IsAvailable = false

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), f.check())
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors[0], "no està disponible")
}

func TestValidateClassroomAssignment_CapacityIsWarning(t *testing.T) {
	f := newFixture()
	f.classroom.Capacity = 20
	sg := &model.StudentGroup{ID: uuid.New(), Name: "GR1-M1", MaxStudents: 40}
	f.store.studentGroups[sg.ID] = sg
	check := f.check()
	check.StudentGroupID = &sg.ID

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), check)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "(20)")
	assert.Contains(t, res.Warnings[0], "(40)")
}

func TestValidateClassroomAssignment_SubjectSoftware(t *testing.T) {
	f := newFixture()
	photoshop, blender := uuid.New(), uuid.New()
	f.store.subjectSoftware = []model.SoftwareRequirement{
		{SoftwareID: photoshop, SoftwareName: "Photoshop", IsRequired: true},
		{SoftwareID: blender, SoftwareName: "Blender", IsRequired: false},
	}

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), f.check())
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Photoshop")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Blender")

	f.store.installed[photoshop] = true
	res, err = f.svc.ValidateClassroomAssignment(context.Background(), f.check())
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestValidateClassroomAssignment_ProfileOverridesSubjectRequirements(t *testing.T) {
	f := newFixture()
	f.store.subjectSoftware = []model.SoftwareRequirement{
		{SoftwareID: uuid.New(), SoftwareName: "Photoshop", IsRequired: true},
	}
	projectors := uuid.New()
	profile := &model.SubjectGroupProfile{
		ID:        uuid.New(),
		SubjectID: f.subject,
		Name:      "Animació 3D",
		MemberIDs: []uuid.UUID{f.group.ID},
		Equipment: []model.EquipmentRequirement{
			{EquipmentTypeID: projectors, EquipmentName: "Projector", QuantityRequired: 2, IsRequired: true},
		},
	}
	f.store.profiles[profile.ID] = profile
	f.store.equipment[projectors] = 1

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), f.check())
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Animació 3D")
	assert.Contains(t, res.Errors[0], "Projector (1/2)")
}

func TestValidateClassroomAssignment_ClassroomOverlap(t *testing.T) {
	f := newFixture()
	existing := booking(1, "10:00", "12:00", 3, 4)
	f.store.classroomBookings[f.classroom.ID] = []schedule.Booking{
		existing,
		booking(1, "11:00", "13:00"), // touches but does not overlap 09:00-11:00
		booking(2, "09:00", "11:00"), // other day
	}

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), f.check())
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, model.ConflictClassroom, res.Conflicts[0].Type)
	assert.Equal(t, []int{3, 4}, res.Conflicts[0].Weeks)
	assert.Contains(t, res.Errors[0], "Tipografia (T1) les setmanes: 3-4")
}

func TestValidateClassroomAssignment_DisjointWeeksDoNotClash(t *testing.T) {
	f := newFixture()
	f.store.classroomBookings[f.classroom.ID] = []schedule.Booking{booking(1, "09:00", "11:00", 1, 2, 3)}
	check := f.check()
	check.Weeks = []int{8, 9}

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), check)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestValidateClassroomAssignment_ExcludesEditedAssignment(t *testing.T) {
	f := newFixture()
	existing := booking(1, "09:00", "11:00")
	f.store.classroomBookings[f.classroom.ID] = []schedule.Booking{existing}
	check := f.check()
	check.ExcludeAssignmentID = &existing.ID

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), check)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestValidateClassroomAssignment_StudentGroupClash(t *testing.T) {
	f := newFixture()
	sg := &model.StudentGroup{ID: uuid.New(), Name: "GR1-M1", MaxStudents: 20}
	f.store.studentGroups[sg.ID] = sg

	sameGroup := booking(1, "09:00", "11:00")
	sameGroup.SubjectGroupID = f.group.ID
	other := booking(1, "10:00", "11:30")
	f.store.groupBookings[sg.ID] = []schedule.Booking{sameGroup, other}

	check := f.check()
	check.StudentGroupID = &sg.ID

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), check)
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, model.ConflictGroup, res.Conflicts[0].Type)
	assert.Equal(t, other.ID, res.Conflicts[0].BookingID)
}

func TestValidateClassroomAssignment_TeacherClashAndHours(t *testing.T) {
	f := newFixture()
	teacher := &model.Teacher{ID: uuid.New(), FirstName: "Anna", LastName: "Puig", MaxHours: 3}
	f.store.teachers[teacher.ID] = teacher
	f.store.teacherBookings[teacher.ID] = []schedule.Booking{
		booking(1, "10:00", "11:00"),
		booking(3, "15:00", "16:30"),
	}
	check := f.check()
	check.TeacherID = &teacher.ID

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), check)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, model.ConflictTeacher, res.Conflicts[0].Type)
	assert.Contains(t, res.Errors[0], "Anna Puig")
	// 1h + 1.5h booked + 2h candidate = 4.5h > 3h
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "4.5 h")
}

func TestValidateClassroomAssignment_NoSlotSkipsTimeChecks(t *testing.T) {
	f := newFixture()
	f.store.classroomBookings[f.classroom.ID] = []schedule.Booking{booking(1, "09:00", "11:00")}
	check := f.check()
	check.TimeSlotID = nil

	res, err := f.svc.ValidateClassroomAssignment(context.Background(), check)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestValidateParticipants(t *testing.T) {
	f := newFixture()
	teacher := &model.Teacher{ID: uuid.New(), FirstName: "Joan", LastName: "Vila"}
	f.store.teachers[teacher.ID] = teacher
	f.store.teacherBookings[teacher.ID] = []schedule.Booking{booking(1, "09:30", "10:30")}
	check := f.check()
	check.TeacherID = &teacher.ID

	res, err := f.svc.ValidateParticipants(context.Background(), check)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, model.ConflictTeacher, res.Conflicts[0].Type)
}

func TestValidateProfileClassroomAssignment(t *testing.T) {
	f := newFixture()
	maya := uuid.New()
	profile := &model.SubjectGroupProfile{
		ID:        uuid.New(),
		SubjectID: f.subject,
		Name:      "Animació",
		Software:  []model.SoftwareRequirement{{SoftwareID: maya, SoftwareName: "Maya", IsRequired: true}},
	}
	f.store.profiles[profile.ID] = profile
	f.store.largest[profile.ID] = 45
	f.store.classroomBookings[f.classroom.ID] = []schedule.Booking{booking(1, "08:00", "09:30")}

	slot := f.slot.ID
	res, err := f.svc.ValidateProfileClassroomAssignment(context.Background(), model.ProfileCheck{
		ProfileID:   profile.ID,
		ClassroomID: f.classroom.ID,
		SemesterID:  f.semester,
		TimeSlotID:  &slot,
	})
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Len(t, res.Errors, 2) // missing Maya + clash
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "(45)")
}

func TestValidateProfileClassroomAssignment_MissingProfile(t *testing.T) {
	f := newFixture()

	res, err := f.svc.ValidateProfileClassroomAssignment(context.Background(), model.ProfileCheck{
		ProfileID:   uuid.New(),
		ClassroomID: f.classroom.ID,
		SemesterID:  f.semester,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"El perfil no existeix"}, res.Errors)
}

func TestValidationResultMergeDeduplicates(t *testing.T) {
	a := model.NewValidationResult()
	a.AddWarning("w")
	b := model.NewValidationResult()
	b.AddWarning("w")
	b.AddError("e")

	a.Merge(b)
	a.Merge(b)
	assert.False(t, a.IsValid)
	assert.Equal(t, []string{"e"}, a.Errors)
	assert.Equal(t, []string{"w"}, a.Warnings)
}

func TestValidateAssignment_ParticipantsCheckedOnce(t *testing.T) {
	f := newFixture()
	second := &model.Classroom{ID: uuid.New(), Code: "P.1.4", Capacity: 30, IsAvailable: true}
	f.store.classrooms[second.ID] = second

	teacher := &model.Teacher{ID: uuid.New(), FirstName: "Anna", LastName: "Puig"}
	f.store.teachers[teacher.ID] = teacher
	f.store.teacherBookings[teacher.ID] = []schedule.Booking{booking(1, "09:00", "11:00", 1, 2, 3)}

	sg := &model.StudentGroup{ID: uuid.New(), Name: "GR1-M1", MaxStudents: 20}
	f.store.studentGroups[sg.ID] = sg
	f.store.groupBookings[sg.ID] = []schedule.Booking{booking(1, "10:00", "12:00", 3, 4)}

	base := f.check()
	base.ClassroomID = uuid.Nil
	base.TeacherID = &teacher.ID
	base.StudentGroupID = &sg.ID

	res, err := f.svc.ValidateAssignment(context.Background(), base, []model.AssignmentClassroom{
		{ClassroomID: f.classroom.ID, Weeks: []int{1, 2}},
		{ClassroomID: second.ID, Weeks: []int{2, 3}},
	})
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{
		"El grup d'estudiants ja té classe de Tipografia (T1) en aquest horari les setmanes: 3",
		"Anna Puig ja imparteix Tipografia (T1) en aquest horari les setmanes: 1-3",
	}, res.Errors)
	require.Len(t, res.Conflicts, 2)
}

func TestValidateAssignment_FullSemesterClassroomWidensParticipants(t *testing.T) {
	f := newFixture()
	second := &model.Classroom{ID: uuid.New(), Code: "P.1.4", Capacity: 30, IsAvailable: true}
	f.store.classrooms[second.ID] = second

	teacher := &model.Teacher{ID: uuid.New(), FirstName: "Anna", LastName: "Puig"}
	f.store.teachers[teacher.ID] = teacher
	f.store.teacherBookings[teacher.ID] = []schedule.Booking{booking(1, "09:00", "11:00", 10)}

	base := f.check()
	base.TeacherID = &teacher.ID

	res, err := f.svc.ValidateAssignment(context.Background(), base, []model.AssignmentClassroom{
		{ClassroomID: f.classroom.ID, Weeks: []int{1, 2}},
		{ClassroomID: second.ID, IsFullSemester: true},
	})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "setmanes: 10")
}

func TestValidateAssignment_WithoutClassrooms(t *testing.T) {
	f := newFixture()
	teacher := &model.Teacher{ID: uuid.New(), FirstName: "Anna", LastName: "Puig"}
	f.store.teachers[teacher.ID] = teacher
	f.store.teacherBookings[teacher.ID] = []schedule.Booking{booking(1, "10:00", "11:00")}

	base := f.check()
	base.TeacherID = &teacher.ID

	res, err := f.svc.ValidateAssignment(context.Background(), base, nil)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, model.ConflictTeacher, res.Conflicts[0].Type)
}
