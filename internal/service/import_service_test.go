package service

import (
	"context"
	"testing"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/importer"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(fields map[string]string) importer.Record {
	return importer.Record{Row: 2, Fields: fields}
}

func TestTeacherFromRecord(t *testing.T) {
	tch, err := teacherFromRecord(record(map[string]string{
		"code":  "P042",
		"name":  "Puig Soler, Anna",
		"email": "APUIG@bau.cat",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Anna", tch.FirstName)
	assert.Equal(t, "Puig Soler", tch.LastName)
	assert.Equal(t, "apuig@bau.cat", tch.Email)
	assert.Equal(t, defaultTeacherMaxHours, tch.MaxHours)
	assert.Nil(t, tch.Department)

	_, err = teacherFromRecord(record(map[string]string{"code": "P1", "first_name": "Anna"}))
	assert.EqualError(t, err, "falta el camp email")

	_, err = teacherFromRecord(record(map[string]string{
		"code": "P1", "first_name": "Anna", "email": "a@bau.cat", "max_hours": "moltes",
	}))
	assert.Error(t, err)
}

func TestClassroomFromRecord(t *testing.T) {
	c, err := classroomFromRecord(record(map[string]string{
		"code":     "L.1.2",
		"capacity": "24",
		"type":     "Laboratori",
	}))
	require.NoError(t, err)
	assert.Equal(t, "L.1.2", c.Name)
	require.NotNil(t, c.Floor)
	assert.Equal(t, 1, *c.Floor)
	assert.Equal(t, 24, c.Capacity)
	assert.Equal(t, model.ClassroomLab, c.Type)
	assert.True(t, c.IsAvailable)

	c, err = classroomFromRecord(record(map[string]string{"code": "TALLER", "floor": "-1", "is_available": "no"}))
	require.NoError(t, err)
	assert.Equal(t, -1, *c.Floor)
	assert.Equal(t, model.ClassroomLecture, c.Type)
	assert.False(t, c.IsAvailable)

	_, err = classroomFromRecord(record(map[string]string{"code": "X", "type": "piscina"}))
	assert.Error(t, err)
}

func TestStudentGroupFromRecord(t *testing.T) {
	programID := uuid.New()
	programs := map[string]uuid.UUID{"GDIS": programID}

	g, err := studentGroupFromRecord(record(map[string]string{"name": "GR2-T1", "program_code": "gdis"}), programs)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Year)
	assert.Equal(t, model.ShiftAfternoon, g.Shift)
	assert.Equal(t, defaultGroupSize, g.MaxStudents)
	require.NotNil(t, g.ProgramID)
	assert.Equal(t, programID, *g.ProgramID)

	g, err = studentGroupFromRecord(record(map[string]string{"name": "MUDI", "year": "1", "shift": "Matí"}), programs)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftMorning, g.Shift)

	_, err = studentGroupFromRecord(record(map[string]string{"name": "MUDI"}), programs)
	assert.EqualError(t, err, "falta el camp year")

	_, err = studentGroupFromRecord(record(map[string]string{"name": "GR1-M1", "program_code": "XX"}), programs)
	assert.Error(t, err)
}

func TestSubjectFromRecord(t *testing.T) {
	s, err := subjectFromRecord(record(map[string]string{
		"code": "GD101", "name": "Tipografia", "credits": "4,5", "year": "1", "type": "OP",
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, 4.5, s.Credits)
	assert.Equal(t, model.SubjectElective, s.Type)

	s, err = subjectFromRecord(record(map[string]string{"code": "GD102", "name": "Dibuix", "year": "2"}), nil)
	require.NoError(t, err)
	assert.Equal(t, float64(defaultSubjectCredits), s.Credits)
	assert.Equal(t, model.SubjectMandatory, s.Type)

	_, err = subjectFromRecord(record(map[string]string{"code": "GD103", "name": "Dibuix"}), nil)
	assert.Error(t, err)
}

func TestSoftwareFromRecord(t *testing.T) {
	sw, err := softwareFromRecord(record(map[string]string{
		"name":              "Adobe Photoshop",
		"license_type":      "Educativa",
		"operating_systems": "Windows, Mac, win",
		"expiry_date":       "31/12/2026",
	}))
	require.NoError(t, err)
	assert.Equal(t, model.LicenseEducational, sw.LicenseType)
	assert.Equal(t, []string{"windows", "macos"}, sw.OperatingSystems)
	require.NotNil(t, sw.ExpiryDate)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), *sw.ExpiryDate)

	sw, err = softwareFromRecord(record(map[string]string{"name": "Blender", "license_type": "lliure"}))
	require.NoError(t, err)
	assert.Equal(t, model.LicenseFree, sw.LicenseType)
	assert.Empty(t, sw.OperatingSystems)
	assert.Nil(t, sw.ExpiryDate)

	_, err = softwareFromRecord(record(map[string]string{"name": "X", "operating_systems": "amiga"}))
	assert.Error(t, err)
	_, err = softwareFromRecord(record(map[string]string{"name": "X", "expiry_date": "demà"}))
	assert.Error(t, err)
}

func TestSlotFromRecord(t *testing.T) {
	spec, err := slotFromRecord(record(map[string]string{"day": "Dimarts", "start_time": "15:00", "end_time": "17:30"}))
	require.NoError(t, err)
	assert.Equal(t, 2, spec.Day)
	assert.Equal(t, schedule.MustClock("15:00"), spec.Start)
	assert.Equal(t, schedule.PeriodAfternoon, spec.Period)
	assert.Equal(t, "2|15:00|17:30", spec.key())

	spec, err = slotFromRecord(record(map[string]string{"day": "1", "period": "matí"}))
	require.NoError(t, err)
	assert.Equal(t, schedule.MorningStart, spec.Start)
	assert.Equal(t, schedule.MorningEnd, spec.End)

	_, err = slotFromRecord(record(map[string]string{"day": "1", "start_time": "12:00", "end_time": "10:00"}))
	assert.Error(t, err)

	_, err = slotFromRecord(record(map[string]string{"day": "1"}))
	assert.EqualError(t, err, "falta el camp start_time")

	_, err = slotFromRecord(record(map[string]string{"start_time": "09:00"}))
	assert.EqualError(t, err, "falta el camp day")
}

func TestClassroomIndex(t *testing.T) {
	p13 := model.Classroom{ID: uuid.New(), Code: "P.1.3"}
	g02 := model.Classroom{ID: uuid.New(), Code: "G.0.2"}
	idx := newClassroomIndex([]model.Classroom{p13, g02})

	c, ok := idx.lookup("p13")
	require.True(t, ok)
	assert.Equal(t, p13.ID, c.ID)

	found, err := idx.resolve(importer.ClassroomCodes("P.1.3 (aula), p.1.3 / G.0.2"))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, p13.ID, found[0].ID)
	assert.Equal(t, g02.ID, found[1].ID)

	_, err = idx.resolve([]string{"P.1.3", "Z.9.9"})
	assert.EqualError(t, err, "aules desconegudes: Z.9.9")
}

func TestAssignmentKey(t *testing.T) {
	group := uuid.New()
	sg := uuid.New()
	spec := slotSpec{Day: 3, Start: schedule.MustClock("09:00"), End: schedule.MustClock("11:00")}

	assert.Equal(t, group.String()+"|3|09:00|11:00|-", assignmentKey(group, spec, nil))
	assert.Equal(t, group.String()+"|3|09:00|11:00|"+sg.String(), assignmentKey(group, spec, &sg))
}

func TestUpsertCounting(t *testing.T) {
	ctx := context.Background()
	rep := &model.ImportReport{}

	require.NoError(t, upsert(ctx, rep, 2, true, func() error { return pgx.ErrNoRows }, nil))
	require.NoError(t, upsert(ctx, rep, 3, true, func() error { return nil }, nil))
	require.NoError(t, upsert(ctx, rep, 4, false, nil, func() (bool, error) { return true, nil }))
	require.NoError(t, upsert(ctx, rep, 5, false, nil, func() (bool, error) { return false, assert.AnError }))

	assert.Equal(t, 2, rep.Inserted)
	assert.Equal(t, 1, rep.Updated)
	assert.Equal(t, 1, rep.Skipped)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, 5, rep.Errors[0].Row)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := upsert(cancelled, rep, 6, false, nil, func() (bool, error) { return false, context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "horari-gr1-m1-semestre-1.xlsx", exportFilename("GR1-M1", "Semestre 1", ExportXLSX))
	assert.Equal(t, "horari-aula-p-1-3-1r-semestre.pdf", exportFilename("Aula P.1.3", "1r semestre", ExportPDF))
	assert.Equal(t, "horari-nuria-pages-semestre-2.xlsx", exportFilename("Núria Pagès", "Semestre 2", ExportXLSX))
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportXLSX, f)

	f, err = ParseExportFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseExportFormat("docx")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type fakeGroups struct {
	groups  map[string]*model.SubjectGroup
	deleted []uuid.UUID
}

func (f *fakeGroups) FindGroup(_ context.Context, subjectID, semesterID uuid.UUID, code string) (*model.SubjectGroup, error) {
	if g, ok := f.groups[subjectID.String()+code]; ok {
		return g, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeGroups) CreateGroup(_ context.Context, g *model.SubjectGroup) error {
	g.ID = uuid.New()
	f.groups[g.SubjectID.String()+g.GroupCode] = g
	return nil
}

func (f *fakeGroups) DeleteGroup(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	for k, g := range f.groups {
		if g.ID == id {
			delete(f.groups, k)
		}
	}
	return nil
}

type fakeSlots struct{}

func (fakeSlots) FindOrCreate(_ context.Context, t *model.TimeSlot) error {
	t.ID = uuid.New()
	return nil
}

type fakeWriter struct {
	err     error
	created []model.AssignmentRequest
}

func (f *fakeWriter) Create(_ context.Context, _ string, req model.AssignmentRequest) (*AssignmentResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &AssignmentResult{Assignment: &model.Assignment{ID: uuid.New()}, Validation: model.NewValidationResult()}, nil
}

func (f *fakeWriter) Update(_ context.Context, _ string, id uuid.UUID, req model.AssignmentRequest) (*AssignmentResult, error) {
	return f.Create(context.Background(), "", req)
}

func newAssignmentImport(groups *fakeGroups, writer *fakeWriter, dryRun bool) *assignmentImport {
	return &assignmentImport{
		groups:     groups,
		slots:      fakeSlots{},
		writer:     writer,
		lookups:    &assignmentLookups{slots: map[string]uuid.UUID{}, existing: map[string]uuid.UUID{}},
		actor:      "test",
		semesterID: uuid.New(),
		weeks:      15,
		dryRun:     dryRun,
		log:        zerolog.Nop(),
	}
}

func importRow(subject *model.Subject, group string, classroom model.Classroom, studentGroup *uuid.UUID) *assignmentRow {
	return &assignmentRow{
		subject:        subject,
		groupCode:      group,
		studentGroupID: studentGroup,
		slot:           slotSpec{Day: 1, Start: schedule.MustClock("09:00"), End: schedule.MustClock("11:00")},
		classrooms:     []model.Classroom{classroom},
		hours:          2,
	}
}

func TestAssignmentImportRemovesGroupOfRejectedRow(t *testing.T) {
	ctx := context.Background()
	groups := &fakeGroups{groups: map[string]*model.SubjectGroup{}}
	writer := &fakeWriter{err: &ValidationFailedError{Result: &model.ValidationResult{Errors: []string{"L'aula P.1.1 està ocupada"}}}}
	imp := newAssignmentImport(groups, writer, false)
	subject := &model.Subject{ID: uuid.New(), Code: "GD101"}
	rep := &model.ImportReport{}

	err := imp.apply(ctx, importRow(subject, "M1", model.Classroom{ID: uuid.New(), Code: "P.1.1"}, nil), rep, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ocupada")
	require.Len(t, groups.deleted, 1)
	assert.Empty(t, groups.groups)
	assert.Zero(t, rep.Inserted)
}

func TestAssignmentImportKeepsExistingGroupOnRejection(t *testing.T) {
	ctx := context.Background()
	subject := &model.Subject{ID: uuid.New(), Code: "GD101"}
	existing := &model.SubjectGroup{ID: uuid.New(), SubjectID: subject.ID, GroupCode: "M1"}
	groups := &fakeGroups{groups: map[string]*model.SubjectGroup{subject.ID.String() + "M1": existing}}
	writer := &fakeWriter{err: &ValidationFailedError{Result: &model.ValidationResult{Errors: []string{"conflicte"}}}}
	imp := newAssignmentImport(groups, writer, false)

	require.Error(t, imp.apply(ctx, importRow(subject, "M1", model.Classroom{ID: uuid.New(), Code: "P.1.1"}, nil), &model.ImportReport{}, 2))
	assert.Empty(t, groups.deleted)
	assert.Len(t, groups.groups, 1)
}

func TestAssignmentImportCreatesGroupAndSlot(t *testing.T) {
	ctx := context.Background()
	groups := &fakeGroups{groups: map[string]*model.SubjectGroup{}}
	writer := &fakeWriter{}
	imp := newAssignmentImport(groups, writer, false)
	subject := &model.Subject{ID: uuid.New(), Code: "GD101"}
	rep := &model.ImportReport{}

	require.NoError(t, imp.apply(ctx, importRow(subject, "M1", model.Classroom{ID: uuid.New(), Code: "P.1.1"}, nil), rep, 2))
	assert.Equal(t, 1, rep.Inserted)
	assert.Empty(t, groups.deleted)
	require.Len(t, writer.created, 1)
	assert.Equal(t, groups.groups[subject.ID.String()+"M1"].ID, writer.created[0].SubjectGroupID)
	assert.Len(t, imp.lookups.slots, 1)
}

func TestAssignmentImportDryRunChecksEarlierRows(t *testing.T) {
	ctx := context.Background()
	groups := &fakeGroups{groups: map[string]*model.SubjectGroup{}}
	writer := &fakeWriter{}
	imp := newAssignmentImport(groups, writer, true)
	subject := &model.Subject{ID: uuid.New(), Code: "GD101"}
	other := &model.Subject{ID: uuid.New(), Code: "GD102"}
	classroom := model.Classroom{ID: uuid.New(), Code: "P.1.1"}
	studentGroup := uuid.New()
	rep := &model.ImportReport{}

	require.NoError(t, imp.apply(ctx, importRow(subject, "M1", classroom, &studentGroup), rep, 2))

	err := imp.apply(ctx, importRow(other, "M1", classroom, &studentGroup), rep, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "L'aula P.1.1 ja està ocupada per GD101 M1 (fila 2, setmanes 1-15)")
	assert.Contains(t, err.Error(), "El grup d'estudiants ja té GD101 M1")

	// Another group of the same subject in a different classroom does not clash on the student group.
	require.NoError(t, imp.apply(ctx, importRow(subject, "M1", model.Classroom{ID: uuid.New(), Code: "P.1.2"}, &studentGroup), rep, 4))

	assert.Equal(t, 2, rep.Inserted)
	require.Len(t, rep.Warnings, 2)
	assert.Equal(t, 2, rep.Warnings[0].Row)
	assert.Empty(t, writer.created)
	assert.Empty(t, groups.groups)
}
