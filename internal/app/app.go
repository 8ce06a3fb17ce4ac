// Package app wires repositories and services over one PostgreSQL pool and Redis
// client. Both the API server and bauctl build on it.
package app

import (
	"context"
	"fmt"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/database"
	"github.com/Josepmarimon/bau-assist-sub002/internal/mail"
	"github.com/Josepmarimon/bau-assist-sub002/internal/metrics"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const appName = "BAU Assist"

// Repositories holds every repository.
type Repositories struct {
	Calendar      *repository.CalendarRepository
	Programs      *repository.ProgramRepository
	Subjects      *repository.SubjectRepository
	Teachers      *repository.TeacherRepository
	Classrooms    *repository.ClassroomRepository
	StudentGroups *repository.StudentGroupRepository
	TimeSlots     *repository.TimeSlotRepository
	Software      *repository.SoftwareRepository
	Equipment     *repository.EquipmentRepository
	Profiles      *repository.ProfileRepository
	Assignments   *repository.AssignmentRepository
	Bookings      *repository.BookingRepository
	ImportJobs    *repository.ImportJobRepository
	Dashboard     *repository.DashboardRepository
}

// Services holds every service.
type Services struct {
	Auth          *service.AuthService
	Activity      *service.ActivityService
	Calendar      *service.CalendarService
	Subjects      *service.SubjectService
	Teachers      *service.TeacherService
	Classrooms    *service.ClassroomService
	StudentGroups *service.StudentGroupService
	Inventory     *service.InventoryService
	Occupancy     *service.OccupancyService
	Validation    *service.ValidationService
	Assignments   *service.AssignmentService
	Profiles      *service.ProfileService
	Licenses      *service.LicenseService
	Dashboard     *service.DashboardService
	Imports       *service.ImportService
	Exports       *service.ExportService
	Dedupe        *service.DedupeService
}

// App is the connected application core.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Metrics  *metrics.Metrics
	Repos    Repositories
	Services Services
}

// New connects to PostgreSQL and Redis and builds every repository and service.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Pool:    pool,
		Redis:   rdb,
		Metrics: metrics.New(),
	}
	a.Repos = newRepositories(pool, cfg)
	a.Services = newServices(a.Repos, rdb, a.Metrics, cfg, log)
	return a, nil
}

// Close releases the Redis client and the pool.
func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func newRepositories(pool *pgxpool.Pool, cfg *config.Config) Repositories {
	return Repositories{
		Calendar:      repository.NewCalendarRepository(pool),
		Programs:      repository.NewProgramRepository(pool),
		Subjects:      repository.NewSubjectRepository(pool),
		Teachers:      repository.NewTeacherRepository(pool),
		Classrooms:    repository.NewClassroomRepository(pool),
		StudentGroups: repository.NewStudentGroupRepository(pool),
		TimeSlots:     repository.NewTimeSlotRepository(pool),
		Software:      repository.NewSoftwareRepository(pool),
		Equipment:     repository.NewEquipmentRepository(pool),
		Profiles:      repository.NewProfileRepository(pool),
		Assignments:   repository.NewAssignmentRepository(pool),
		Bookings:      repository.NewBookingRepository(pool, cfg.SemesterWeeks),
		ImportJobs:    repository.NewImportJobRepository(pool),
		Dashboard:     repository.NewDashboardRepository(pool),
	}
}

// MailSender returns SendGrid when a key is configured and a logging sender otherwise.
func MailSender(cfg *config.Config, log zerolog.Logger) mail.Sender {
	if cfg.SendGridAPIKey == "" {
		return mail.LogSender{Log: log.With().Str("component", "mail").Logger()}
	}
	return mail.NewSendGrid(cfg.SendGridAPIKey, appName, cfg.MailFrom, log)
}

func newServices(r Repositories, rdb *redis.Client, m *metrics.Metrics, cfg *config.Config, log zerolog.Logger) Services {
	var s Services

	s.Auth = service.NewAuthService(cfg, rdb)
	s.Activity = service.NewActivityService(rdb, log)
	s.Calendar = service.NewCalendarService(r.Calendar, r.Programs, log)
	s.Teachers = service.NewTeacherService(r.Teachers, log)
	s.StudentGroups = service.NewStudentGroupService(r.StudentGroups, r.TimeSlots, log)
	s.Inventory = service.NewInventoryService(r.Software, r.Equipment, log)
	s.Occupancy = service.NewOccupancyService(r.Bookings, r.Classrooms, rdb, cfg.OccupancyTTL, log)
	s.Subjects = service.NewSubjectService(r.Subjects, r.Software, r.Equipment, r.Bookings, s.Occupancy, s.Activity, log)
	s.Classrooms = service.NewClassroomService(r.Classrooms, r.Software, r.Equipment, s.Occupancy, log)

	store := service.NewValidationStore(r.Classrooms, r.Subjects, r.StudentGroups, r.Teachers,
		r.TimeSlots, r.Profiles, r.Software, r.Equipment, r.Bookings)
	s.Validation = service.NewValidationService(store, cfg.SemesterWeeks, m.ValidationChecks, log)
	s.Assignments = service.NewAssignmentService(r.Assignments, r.Subjects, s.Validation, s.Occupancy, s.Activity, log)
	s.Profiles = service.NewProfileService(r.Profiles, r.Subjects, r.Bookings, s.Validation, s.Occupancy, s.Activity, log)

	s.Licenses = service.NewLicenseService(s.Inventory, MailSender(cfg, log), cfg.LicenseAlertRecipients, cfg.LicenseAlertDays, log)
	s.Dashboard = service.NewDashboardService(r.Dashboard, s.Calendar, s.Assignments, s.Licenses)

	s.Imports = service.NewImportService(service.ImportRepositories{
		Jobs:          r.ImportJobs,
		Teachers:      r.Teachers,
		Classrooms:    r.Classrooms,
		StudentGroups: r.StudentGroups,
		Subjects:      r.Subjects,
		Software:      r.Software,
		Programs:      r.Programs,
		TimeSlots:     r.TimeSlots,
	}, s.Assignments, s.Occupancy, s.Activity, rdb, m.ImportRows, cfg.UploadDir, cfg.SemesterWeeks, log)

	s.Exports = service.NewExportService(service.ExportRepositories{
		Assignments:   r.Assignments,
		Calendar:      r.Calendar,
		Subjects:      r.Subjects,
		Teachers:      r.Teachers,
		Classrooms:    r.Classrooms,
		StudentGroups: r.StudentGroups,
	}, cfg.PDFFontPath, log)

	s.Dedupe = service.NewDedupeService(r.Subjects, r.Teachers, log)
	return s
}
