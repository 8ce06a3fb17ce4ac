package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/importer"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/google/uuid"
)

// Row parsers turn one imported record into a model. Their error messages end up in
// the import report shown to the administrators, hence the Catalan.

const (
	defaultTeacherMaxHours = 20
	defaultGroupSize       = 30
	defaultSubjectCredits  = 6
)

func missing(field string) error {
	return fmt.Errorf("falta el camp %s", field)
}

func badValue(field, value string) error {
	return fmt.Errorf("valor no vàlid per a %s: %q", field, value)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intField(rec importer.Record, field string, def int) (int, error) {
	v := rec.Get(field)
	if v == "" {
		return def, nil
	}
	n, err := importer.ParseInt(v)
	if err != nil {
		return 0, badValue(field, v)
	}
	return n, nil
}

func teacherFromRecord(rec importer.Record) (*model.Teacher, error) {
	t := &model.Teacher{
		Code:         rec.Get("code", "teacher_code"),
		FirstName:    rec.Get("first_name"),
		LastName:     rec.Get("last_name"),
		Email:        strings.ToLower(rec.Get("email")),
		Department:   optional(rec.Get("department")),
		ContractType: optional(rec.Get("contract_type")),
	}
	if t.Code == "" {
		return nil, missing("code")
	}
	if t.FirstName == "" && t.LastName == "" {
		t.FirstName, t.LastName = importer.SplitTeacherName(rec.Get("name", "full_name"))
	}
	if t.FirstName == "" {
		return nil, missing("first_name")
	}
	if t.Email == "" {
		return nil, missing("email")
	}
	if !strings.Contains(t.Email, "@") {
		return nil, badValue("email", t.Email)
	}

	var err error
	if t.MaxHours, err = intField(rec, "max_hours", defaultTeacherMaxHours); err != nil {
		return nil, err
	}
	if t.MaxHours < 0 || t.MaxHours > 60 {
		return nil, badValue("max_hours", rec.Get("max_hours"))
	}
	return t, nil
}

func classroomTypeOf(v string) (model.ClassroomType, error) {
	if v == "" {
		return model.ClassroomLecture, nil
	}
	folded := strings.ToLower(importer.FoldAccents(v))
	for _, t := range model.ClassroomTypes {
		if folded == string(t) {
			return t, nil
		}
	}
	switch folded {
	case "lab", "laboratory":
		return model.ClassroomLab, nil
	case "workshop":
		return model.ClassroomWorkshop, nil
	case "computer", "ordinadors":
		return model.ClassroomComputer, nil
	}
	return "", badValue("type", v)
}

func classroomFromRecord(rec importer.Record) (*model.Classroom, error) {
	c := &model.Classroom{
		Code:        rec.Get("code"),
		Name:        rec.Get("name"),
		Building:    optional(rec.Get("building")),
		IsAvailable: true,
	}
	if c.Code == "" {
		return nil, missing("code")
	}
	if c.Name == "" {
		c.Name = c.Code
	}

	if v := rec.Get("floor"); v != "" {
		n, err := importer.ParseInt(v)
		if err != nil {
			return nil, badValue("floor", v)
		}
		c.Floor = &n
	} else if n, ok := importer.FloorFromCode(c.Code); ok {
		c.Floor = &n
	}

	var err error
	if c.Capacity, err = intField(rec, "capacity", 0); err != nil {
		return nil, err
	}
	if c.Capacity < 0 {
		return nil, badValue("capacity", rec.Get("capacity"))
	}
	if c.Type, err = classroomTypeOf(rec.Get("type")); err != nil {
		return nil, err
	}
	if v := rec.Get("is_available"); v != "" {
		if c.IsAvailable, err = importer.ParseBool(v); err != nil {
			return nil, badValue("is_available", v)
		}
	}
	return c, nil
}

func shiftOf(v, name string) (model.Shift, error) {
	switch strings.ToLower(importer.FoldAccents(v)) {
	case "":
		return importer.InferShift(name), nil
	case "mati", "m", "morning":
		return model.ShiftMorning, nil
	case "tarda", "t", "afternoon":
		return model.ShiftAfternoon, nil
	}
	return "", badValue("shift", v)
}

func studentGroupFromRecord(rec importer.Record, programs map[string]uuid.UUID) (*model.StudentGroup, error) {
	g := &model.StudentGroup{Name: rec.Get("name", "student_group")}
	if g.Name == "" {
		return nil, missing("name")
	}

	var err error
	if g.Year, err = intField(rec, "year", 0); err != nil {
		return nil, err
	}
	if g.Year == 0 {
		n, ok := importer.YearFromGroupName(g.Name)
		if !ok {
			return nil, missing("year")
		}
		g.Year = n
	}
	if g.Year < 1 || g.Year > 6 {
		return nil, badValue("year", rec.Get("year"))
	}
	if g.Shift, err = shiftOf(rec.Get("shift"), g.Name); err != nil {
		return nil, err
	}
	if g.MaxStudents, err = intField(rec, "max_students", defaultGroupSize); err != nil {
		return nil, err
	}
	if g.ProgramID, err = programOf(rec, programs); err != nil {
		return nil, err
	}
	return g, nil
}

func programOf(rec importer.Record, programs map[string]uuid.UUID) (*uuid.UUID, error) {
	code := rec.Get("program_code")
	if code == "" {
		return nil, nil
	}
	id, ok := programs[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("pla d'estudis desconegut: %s", code)
	}
	return &id, nil
}

func subjectTypeOf(v string) (model.SubjectType, error) {
	switch strings.ToUpper(importer.FoldAccents(v)) {
	case "", "OBLIGATORIA", "OB", "FB", "BASICA":
		return model.SubjectMandatory, nil
	case "OPTATIVA", "OP", "OPT":
		return model.SubjectElective, nil
	case "TFG", "TFM":
		return model.SubjectThesis, nil
	}
	return "", badValue("type", v)
}

func subjectFromRecord(rec importer.Record, programs map[string]uuid.UUID) (*model.Subject, error) {
	s := &model.Subject{
		Code:       rec.Get("code", "subject_code"),
		Name:       rec.Get("name", "subject_name"),
		Department: optional(rec.Get("department")),
	}
	if s.Code == "" {
		return nil, missing("code")
	}
	if s.Name == "" {
		return nil, missing("name")
	}

	s.Credits = defaultSubjectCredits
	if v := rec.Get("credits", "ects"); v != "" {
		f, err := importer.ParseFloat(v)
		if err != nil || f < 0 || f > 60 {
			return nil, badValue("credits", v)
		}
		s.Credits = f
	}

	var err error
	if s.Year, err = intField(rec, "year", 0); err != nil {
		return nil, err
	}
	if s.Year < 1 || s.Year > 6 {
		return nil, missing("year")
	}
	if s.Type, err = subjectTypeOf(rec.Get("type")); err != nil {
		return nil, err
	}
	if s.ProgramID, err = programOf(rec, programs); err != nil {
		return nil, err
	}
	return s, nil
}

func groupTypeOf(v string) (model.GroupType, error) {
	switch strings.ToUpper(importer.FoldAccents(v)) {
	case "", "THEORY", "TEORIA":
		return model.GroupTheory, nil
	case "PRACTICE", "PRACTICA", "PRACTIQUES":
		return model.GroupPractice, nil
	case "LABORATORY", "LABORATORI", "LAB":
		return model.GroupLaboratory, nil
	case "SEMINAR", "SEMINARI":
		return model.GroupSeminar, nil
	}
	return "", badValue("group_type", v)
}

var operatingSystems = map[string]string{
	"windows": "windows", "win": "windows",
	"macos": "macos", "mac": "macos", "osx": "macos", "mac os": "macos",
	"linux": "linux", "ubuntu": "linux",
}

func licenseTypeOf(v string) (model.LicenseType, error) {
	switch strings.ToLower(importer.FoldAccents(v)) {
	case "", "proprietary", "propietaria", "comercial":
		return model.LicenseProprietary, nil
	case "free", "gratuita", "lliure", "open source":
		return model.LicenseFree, nil
	case "educational", "educativa", "campus":
		return model.LicenseEducational, nil
	}
	return "", badValue("license_type", v)
}

// parseImportDate accepts ISO dates and the day-first layouts spreadsheets produce.
func parseImportDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{repository.DateLayout, "02/01/2006", "2/1/2006", "02-01-2006", "2006/01/02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("format de data no reconegut")
}

func softwareFromRecord(rec importer.Record) (*model.Software, error) {
	sw := &model.Software{
		Name:          rec.Get("name"),
		Version:       optional(rec.Get("version")),
		Category:      optional(rec.Get("category")),
		ProviderName:  optional(rec.Get("provider_name")),
		ProviderEmail: optional(strings.ToLower(rec.Get("provider_email"))),
	}
	if sw.Name == "" {
		return nil, missing("name")
	}

	var err error
	if sw.LicenseType, err = licenseTypeOf(rec.Get("license_type")); err != nil {
		return nil, err
	}
	sw.OperatingSystems = []string{}
	for _, name := range importer.SplitList(rec.Get("operating_systems")) {
		canonical, ok := operatingSystems[strings.ToLower(name)]
		if !ok {
			return nil, badValue("operating_systems", name)
		}
		if !contains(sw.OperatingSystems, canonical) {
			sw.OperatingSystems = append(sw.OperatingSystems, canonical)
		}
	}
	if v := rec.Get("expiry_date"); v != "" {
		if sw.ExpiryDate, err = parseImportDate(v); err != nil {
			return nil, badValue("expiry_date", v)
		}
	}
	return sw, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// slotSpec is the weekly interval an assignment row asks for.
type slotSpec struct {
	Day    int
	Start  schedule.Clock
	End    schedule.Clock
	Period schedule.Period
}

func (s slotSpec) key() string {
	return fmt.Sprintf("%d|%s|%s", s.Day, s.Start, s.End)
}

// slotFromRecord reads day plus either explicit times or a period ("mati"/"tarda").
func slotFromRecord(rec importer.Record) (slotSpec, error) {
	v := rec.Get("day", "day_of_week")
	if v == "" {
		return slotSpec{}, missing("day")
	}
	day, err := schedule.ParseDay(v)
	if err != nil {
		return slotSpec{}, badValue("day", v)
	}
	spec := slotSpec{Day: day}

	startRaw, endRaw := rec.Get("start_time"), rec.Get("end_time")
	if startRaw == "" && endRaw == "" {
		period := schedule.Period(strings.ToLower(importer.FoldAccents(rec.Get("period", "shift"))))
		start, end, err := schedule.PeriodBounds(period)
		if err != nil {
			return slotSpec{}, missing("start_time")
		}
		spec.Start, spec.End, spec.Period = start, end, period
		return spec, nil
	}

	if spec.Start, err = schedule.ParseClock(startRaw); err != nil {
		return slotSpec{}, badValue("start_time", startRaw)
	}
	if spec.End, err = schedule.ParseClock(endRaw); err != nil {
		return slotSpec{}, badValue("end_time", endRaw)
	}
	if spec.End <= spec.Start {
		return slotSpec{}, errors.New("l'hora de fi ha de ser posterior a la d'inici")
	}
	spec.Period = schedule.PeriodOf(spec.Start)
	return spec, nil
}
