package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CalendarService manages academic years, semesters and degree programmes.
type CalendarService struct {
	calendarRepo *repository.CalendarRepository
	programRepo  *repository.ProgramRepository
	log          zerolog.Logger
	now          func() time.Time
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(calendarRepo *repository.CalendarRepository, programRepo *repository.ProgramRepository, log zerolog.Logger) *CalendarService {
	return &CalendarService{
		calendarRepo: calendarRepo,
		programRepo:  programRepo,
		log:          log.With().Str("component", "calendar_service").Logger(),
		now:          time.Now,
	}
}

// --- Academic years ---

func (s *CalendarService) ListYears(ctx context.Context) ([]model.AcademicYear, error) {
	return s.calendarRepo.ListYears(ctx)
}

func (s *CalendarService) GetYear(ctx context.Context, id uuid.UUID) (*model.AcademicYear, error) {
	y, err := s.calendarRepo.GetYear(ctx, id)
	return y, notFound(err)
}

// SaveYear creates (id == uuid.Nil) or updates an academic year.
func (s *CalendarService) SaveYear(ctx context.Context, id uuid.UUID, req model.AcademicYearRequest) (*model.AcademicYear, error) {
	start, err := time.Parse(repository.DateLayout, req.StartDate)
	if err != nil {
		return nil, invalid("start_date: %v", err)
	}
	end, err := time.Parse(repository.DateLayout, req.EndDate)
	if err != nil {
		return nil, invalid("end_date: %v", err)
	}
	if !end.After(start) {
		return nil, invalid("end_date must be after start_date")
	}

	y := &model.AcademicYear{ID: id, Name: req.Name, StartDate: start, EndDate: end, IsCurrent: req.IsCurrent}
	if err := s.calendarRepo.SaveYear(ctx, y); err != nil {
		return nil, notFound(err)
	}
	if y.IsCurrent {
		s.log.Info().Str("year", y.Name).Msg("Current academic year changed")
	}
	return y, nil
}

func (s *CalendarService) DeleteYear(ctx context.Context, id uuid.UUID) error {
	return notFound(s.calendarRepo.DeleteYear(ctx, id))
}

// --- Semesters ---

func (s *CalendarService) ListSemesters(ctx context.Context, yearID *uuid.UUID) ([]model.Semester, error) {
	return s.calendarRepo.ListSemesters(ctx, yearID)
}

func (s *CalendarService) GetSemester(ctx context.Context, id uuid.UUID) (*model.Semester, error) {
	sem, err := s.calendarRepo.GetSemester(ctx, id)
	return sem, notFound(err)
}

func (s *CalendarService) semesterFromRequest(req model.SemesterRequest) (*model.Semester, error) {
	start, err := repository.ParseDate(req.StartDate)
	if err != nil {
		return nil, invalid("start_date: %v", err)
	}
	end, err := repository.ParseDate(req.EndDate)
	if err != nil {
		return nil, invalid("end_date: %v", err)
	}
	if start != nil && end != nil && !end.After(*start) {
		return nil, invalid("end_date must be after start_date")
	}
	return &model.Semester{
		AcademicYearID: req.AcademicYearID,
		Name:           req.Name,
		Number:         req.Number,
		StartDate:      start,
		EndDate:        end,
	}, nil
}

func (s *CalendarService) CreateSemester(ctx context.Context, req model.SemesterRequest) (*model.Semester, error) {
	sem, err := s.semesterFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.calendarRepo.CreateSemester(ctx, sem); err != nil {
		return nil, err
	}
	return sem, nil
}

func (s *CalendarService) UpdateSemester(ctx context.Context, id uuid.UUID, req model.SemesterRequest) (*model.Semester, error) {
	sem, err := s.semesterFromRequest(req)
	if err != nil {
		return nil, err
	}
	sem.ID = id
	if err := s.calendarRepo.UpdateSemester(ctx, sem); err != nil {
		return nil, notFound(err)
	}
	return sem, nil
}

func (s *CalendarService) DeleteSemester(ctx context.Context, id uuid.UUID) error {
	return notFound(s.calendarRepo.DeleteSemester(ctx, id))
}

// CurrentSemester returns the semester of the current academic year that contains
// today: September to January is the first semester, the rest of the year the second.
func (s *CalendarService) CurrentSemester(ctx context.Context) (*model.Semester, error) {
	number := semesterNumber(s.now())
	sem, err := s.calendarRepo.CurrentSemester(ctx, number)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return nil, ErrNoCurrentSemester
		}
		return nil, fmt.Errorf("current semester: %w", err)
	}
	return sem, nil
}

// ResolveSemester returns the given semester id, or the current semester's when nil.
func (s *CalendarService) ResolveSemester(ctx context.Context, id *uuid.UUID) (uuid.UUID, error) {
	if id != nil && *id != uuid.Nil {
		return *id, nil
	}
	sem, err := s.CurrentSemester(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return sem.ID, nil
}

func semesterNumber(t time.Time) int {
	if m := t.Month(); m >= time.September || m == time.January {
		return 1
	}
	return 2
}

// SeedYear creates an academic year named "YYYY-YYYY+1" starting on the given year
// with its two semesters, and marks it current when requested. Existing rows are kept.
func (s *CalendarService) SeedYear(ctx context.Context, startYear int, current bool) (*model.AcademicYear, []model.Semester, error) {
	name := fmt.Sprintf("%d-%d", startYear, startYear+1)
	y, err := s.calendarRepo.GetYearByName(ctx, name)
	if err != nil && notFound(err) != ErrNotFound {
		return nil, nil, err
	}
	if y == nil {
		y = &model.AcademicYear{
			Name:      name,
			StartDate: time.Date(startYear, time.September, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(startYear+1, time.July, 31, 0, 0, 0, 0, time.UTC),
		}
	}
	if current {
		y.IsCurrent = true
	}
	if err := s.calendarRepo.SaveYear(ctx, y); err != nil {
		return nil, nil, fmt.Errorf("save year %s: %w", name, err)
	}

	existing, err := s.calendarRepo.ListSemesters(ctx, &y.ID)
	if err != nil {
		return nil, nil, err
	}
	have := make(map[int]bool, len(existing))
	for _, sem := range existing {
		have[sem.Number] = true
	}

	bounds := [2][2]time.Time{
		{time.Date(startYear, time.September, 8, 0, 0, 0, 0, time.UTC), time.Date(startYear+1, time.January, 31, 0, 0, 0, 0, time.UTC)},
		{time.Date(startYear+1, time.February, 2, 0, 0, 0, 0, time.UTC), time.Date(startYear+1, time.June, 30, 0, 0, 0, 0, time.UTC)},
	}
	for i, b := range bounds {
		number := i + 1
		if have[number] {
			continue
		}
		start, end := b[0], b[1]
		sem := model.Semester{
			AcademicYearID: y.ID,
			Name:           fmt.Sprintf("%d%s semestre", number, ordinalSuffix(number)),
			Number:         number,
			StartDate:      &start,
			EndDate:        &end,
		}
		if err := s.calendarRepo.CreateSemester(ctx, &sem); err != nil {
			return nil, nil, fmt.Errorf("create semester %d: %w", number, err)
		}
		existing = append(existing, sem)
	}
	return y, existing, nil
}

func ordinalSuffix(n int) string {
	if n == 1 {
		return "r"
	}
	return "n"
}

// --- Programmes ---

func (s *CalendarService) ListPrograms(ctx context.Context) ([]model.Program, error) {
	return s.programRepo.List(ctx)
}

func (s *CalendarService) GetProgram(ctx context.Context, id uuid.UUID) (*model.Program, error) {
	p, err := s.programRepo.GetByID(ctx, id)
	return p, notFound(err)
}

func (s *CalendarService) SaveProgram(ctx context.Context, id uuid.UUID, req model.ProgramRequest) (*model.Program, error) {
	p := &model.Program{ID: id, Code: req.Code, Name: req.Name, Type: req.Type, IsActive: true}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	var err error
	if id == uuid.Nil {
		err = s.programRepo.Create(ctx, p)
	} else {
		err = s.programRepo.Update(ctx, p)
	}
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *CalendarService) DeleteProgram(ctx context.Context, id uuid.UUID) error {
	return notFound(s.programRepo.Delete(ctx, id))
}
