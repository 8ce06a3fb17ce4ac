package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/export"
	"github.com/Josepmarimon/bau-assist-sub002/internal/importer"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExportFormat is the output of a timetable export.
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportPDF  ExportFormat = "pdf"
)

// ParseExportFormat defaults to xlsx.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", ExportXLSX:
		return ExportXLSX, nil
	case ExportPDF:
		return f, nil
	}
	return "", invalid("unknown export format %q", s)
}

// ContentType is the MIME type of the rendered file.
func (f ExportFormat) ContentType() string {
	if f == ExportPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// TimetableRequest selects the timetable to export. Exactly one of StudentGroupID,
// TeacherID and ClassroomID is set.
type TimetableRequest struct {
	SemesterID     uuid.UUID
	StudentGroupID *uuid.UUID
	TeacherID      *uuid.UUID
	ClassroomID    *uuid.UUID
	Format         ExportFormat
}

// ExportFile is a rendered export ready to be served or written to disk.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IDExport is the catalogue id map used by external spreadsheets to reference rows.
type IDExport struct {
	ExportDate    time.Time                 `json:"export_date"`
	Description   string                    `json:"description"`
	StudentGroups map[string]IDStudentGroup `json:"student_groups"`
	Subjects      map[string]IDSubject      `json:"subjects"`
	Teachers      map[string]IDTeacher      `json:"teachers"`
	Classrooms    map[string]IDClassroom    `json:"classrooms"`
	Semesters     map[string]IDSemester     `json:"semesters"`
	AcademicYears map[string]IDAcademicYear `json:"academic_years"`
}

type IDStudentGroup struct {
	Name  string      `json:"name"`
	Year  int         `json:"year"`
	Shift model.Shift `json:"shift"`
}

type IDSubject struct {
	Code    string            `json:"code"`
	Name    string            `json:"name"`
	Year    int               `json:"year"`
	Type    model.SubjectType `json:"type"`
	Credits float64           `json:"credits"`
}

type IDTeacher struct {
	Code       string  `json:"code"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Department *string `json:"department"`
}

type IDClassroom struct {
	Code     string              `json:"code"`
	Name     string              `json:"name"`
	Building *string             `json:"building"`
	Capacity int                 `json:"capacity"`
	Type     model.ClassroomType `json:"type"`
}

type IDSemester struct {
	Name           string     `json:"name"`
	Number         int        `json:"number"`
	AcademicYearID uuid.UUID  `json:"academic_year_id"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}

type IDAcademicYear struct {
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
}

// ExportRepositories groups the lookups an export needs.
type ExportRepositories struct {
	Assignments   *repository.AssignmentRepository
	Calendar      *repository.CalendarRepository
	Subjects      *repository.SubjectRepository
	Teachers      *repository.TeacherRepository
	Classrooms    *repository.ClassroomRepository
	StudentGroups *repository.StudentGroupRepository
}

type ExportService struct {
	repos    ExportRepositories
	fontPath string
	log      zerolog.Logger
}

func NewExportService(repos ExportRepositories, fontPath string, log zerolog.Logger) *ExportService {
	return &ExportService{
		repos:    repos,
		fontPath: fontPath,
		log:      log.With().Str("component", "export_service").Logger(),
	}
}

// Timetable renders the weekly timetable of a student group, teacher or classroom.
func (s *ExportService) Timetable(ctx context.Context, req TimetableRequest) (*ExportFile, error) {
	if req.SemesterID == uuid.Nil {
		return nil, ErrSemesterRequired
	}
	selected := 0
	for _, id := range []*uuid.UUID{req.StudentGroupID, req.TeacherID, req.ClassroomID} {
		if id != nil {
			selected++
		}
	}
	if selected != 1 {
		return nil, invalid("choose exactly one of student_group_id, teacher_id or classroom_id")
	}
	if req.Format == "" {
		req.Format = ExportXLSX
	}
	if req.Format == ExportPDF && s.fontPath == "" {
		return nil, invalid("PDF export needs PDF_FONT_PATH")
	}

	semester, err := s.repos.Calendar.GetSemester(ctx, req.SemesterID)
	if err != nil {
		return nil, notFound(err)
	}
	title, err := s.timetableTitle(ctx, req)
	if err != nil {
		return nil, err
	}

	views, err := s.repos.Assignments.List(ctx, model.AssignmentFilter{
		SemesterID:     req.SemesterID,
		StudentGroupID: req.StudentGroupID,
		TeacherID:      req.TeacherID,
		ClassroomID:    req.ClassroomID,
	})
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	tt := export.BuildTimetable(title, semester.Name, views)

	var buf bytes.Buffer
	switch req.Format {
	case ExportPDF:
		err = export.WritePDF(&buf, tt, s.fontPath)
	default:
		err = export.WriteXLSX(&buf, tt)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s timetable: %w", req.Format, err)
	}

	s.log.Info().Str("title", title).Str("format", string(req.Format)).Int("assignments", len(views)).Msg("Timetable exported")
	return &ExportFile{
		Filename:    exportFilename(title, semester.Name, req.Format),
		ContentType: req.Format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func (s *ExportService) timetableTitle(ctx context.Context, req TimetableRequest) (string, error) {
	switch {
	case req.StudentGroupID != nil:
		g, err := s.repos.StudentGroups.GetByID(ctx, *req.StudentGroupID)
		if err != nil {
			return "", notFound(err)
		}
		return g.Name, nil
	case req.TeacherID != nil:
		t, err := s.repos.Teachers.GetByID(ctx, *req.TeacherID)
		if err != nil {
			return "", notFound(err)
		}
		return t.FullName(), nil
	default:
		c, err := s.repos.Classrooms.GetByID(ctx, *req.ClassroomID)
		if err != nil {
			return "", notFound(err)
		}
		return "Aula " + c.Code, nil
	}
}

// exportFilename builds "horari-gr1-m1-semestre-1.xlsx".
func exportFilename(title, semester string, f ExportFormat) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(importer.FoldAccents("horari " + title + " " + semester)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-") + "." + string(f)
}

// IDs exports the catalogue keyed by id.
func (s *ExportService) IDs(ctx context.Context) (*IDExport, error) {
	out := &IDExport{
		ExportDate:    time.Now().UTC(),
		Description:   "Identificadors de la base de dades per referenciar grups, assignatures, professors, aules i semestres",
		StudentGroups: map[string]IDStudentGroup{},
		Subjects:      map[string]IDSubject{},
		Teachers:      map[string]IDTeacher{},
		Classrooms:    map[string]IDClassroom{},
		Semesters:     map[string]IDSemester{},
		AcademicYears: map[string]IDAcademicYear{},
	}

	groups, err := s.repos.StudentGroups.List(ctx, 0, "")
	if err != nil {
		return nil, fmt.Errorf("list student groups: %w", err)
	}
	for _, g := range groups {
		out.StudentGroups[g.ID.String()] = IDStudentGroup{Name: g.Name, Year: g.Year, Shift: g.Shift}
	}

	subjects, err := s.repos.Subjects.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	for _, sub := range subjects {
		out.Subjects[sub.ID.String()] = IDSubject{Code: sub.Code, Name: sub.Name, Year: sub.Year, Type: sub.Type, Credits: sub.Credits}
	}

	teachers, err := s.repos.Teachers.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	for _, t := range teachers {
		out.Teachers[t.ID.String()] = IDTeacher{Code: t.Code, FullName: t.FullName(), Email: t.Email, Department: t.Department}
	}

	classrooms, err := s.repos.Classrooms.List(ctx, model.ClassroomFilter{})
	if err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	for _, c := range classrooms {
		out.Classrooms[c.ID.String()] = IDClassroom{Code: c.Code, Name: c.Name, Building: c.Building, Capacity: c.Capacity, Type: c.Type}
	}

	years, err := s.repos.Calendar.ListYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	for _, y := range years {
		out.AcademicYears[y.ID.String()] = IDAcademicYear{Name: y.Name, IsCurrent: y.IsCurrent}
	}

	semesters, err := s.repos.Calendar.ListSemesters(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	for _, sem := range semesters {
		out.Semesters[sem.ID.String()] = IDSemester{
			Name:           sem.Name,
			Number:         sem.Number,
			AcademicYearID: sem.AcademicYearID,
			StartDate:      sem.StartDate,
			EndDate:        sem.EndDate,
		}
	}

	s.log.Info().
		Int("student_groups", len(out.StudentGroups)).
		Int("subjects", len(out.Subjects)).
		Int("teachers", len(out.Teachers)).
		Int("classrooms", len(out.Classrooms)).
		Msg("Catalogue ids exported")
	return out, nil
}
