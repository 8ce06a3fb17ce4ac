package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/importer"
	"github.com/Josepmarimon/bau-assist-sub002/internal/matching"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrUnknownImportKind = errors.New("unknown import kind")

// ImportRepositories groups the stores an import writes to.
type ImportRepositories struct {
	Jobs          *repository.ImportJobRepository
	Teachers      *repository.TeacherRepository
	Classrooms    *repository.ClassroomRepository
	StudentGroups *repository.StudentGroupRepository
	Subjects      *repository.SubjectRepository
	Software      *repository.SoftwareRepository
	Programs      *repository.ProgramRepository
	TimeSlots     *repository.TimeSlotRepository
}

// ImportService loads catalogue data and timetables from CSV, XLSX and JSON files.
// Rows are upserted by natural key; bad rows are reported and skipped.
type ImportService struct {
	repos       ImportRepositories
	assignments *AssignmentService
	occupancy   *OccupancyService
	activity    *ActivityService
	rdb         *redis.Client
	rows        *prometheus.CounterVec
	uploadDir   string
	weeks       int
	log         zerolog.Logger
}

func NewImportService(repos ImportRepositories, assignments *AssignmentService, occupancy *OccupancyService,
	activity *ActivityService, rdb *redis.Client, rows *prometheus.CounterVec, uploadDir string, semesterWeeks int,
	log zerolog.Logger) *ImportService {
	return &ImportService{
		repos:       repos,
		assignments: assignments,
		occupancy:   occupancy,
		activity:    activity,
		rdb:         rdb,
		rows:        rows,
		uploadDir:   uploadDir,
		weeks:       semesterWeeks,
		log:         log.With().Str("component", "import_service").Logger(),
	}
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

// Submit stores an uploaded file and queues it for the import worker.
func (s *ImportService) Submit(ctx context.Context, actor string, kind model.ImportKind, filename string, src io.Reader, opts model.ImportOptions) (*model.ImportJob, error) {
	if !kind.Valid() {
		return nil, ErrUnknownImportKind
	}
	if kind == model.ImportAssignments && opts.SemesterID == nil {
		return nil, ErrSemesterRequired
	}
	if _, err := importer.DetectFormat(filename); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.uploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.uploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
	if err := saveUpload(path, src); err != nil {
		return nil, err
	}

	job := &model.ImportJob{
		Kind:     kind,
		Filename: filepath.Base(filename),
		FilePath: path,
		Options:  opts,
	}
	if actor != "" {
		job.SubmittedBy = &actor
	}
	if err := s.repos.Jobs.Create(ctx, job); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("create import job: %w", err)
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.ImportJobsQueue, job.ID.String()).Err(); err != nil {
		_ = s.repos.Jobs.Finish(ctx, job.ID, nil, fmt.Errorf("queue job: %w", err))
		return nil, fmt.Errorf("queue import job: %w", err)
	}

	s.log.Info().Str("job_id", job.ID.String()).Str("kind", string(kind)).Str("file", job.Filename).Msg("Import job queued")
	return job, nil
}

func saveUpload(path string, src io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write upload: %w", err)
	}
	return f.Close()
}

func (s *ImportService) GetJob(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	j, err := s.repos.Jobs.GetByID(ctx, id)
	return j, notFound(err)
}

// RunJob executes a queued job and records its outcome. The uploaded file is removed
// once the job completes.
func (s *ImportService) RunJob(ctx context.Context, id uuid.UUID) error {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job.Status != model.ImportQueued {
		s.log.Warn().Str("job_id", id.String()).Str("status", string(job.Status)).Msg("Skipping import job that is not queued")
		return nil
	}
	if err := s.repos.Jobs.MarkRunning(ctx, id); err != nil {
		return err
	}

	actor := ""
	if job.SubmittedBy != nil {
		actor = *job.SubmittedBy
	}
	report, runErr := s.ImportFile(ctx, actor, job.Kind, job.FilePath, job.Options)
	if err := s.repos.Jobs.Finish(ctx, id, report, runErr); err != nil {
		return fmt.Errorf("finish import job: %w", err)
	}
	if runErr == nil {
		_ = os.Remove(job.FilePath)
	}
	return runErr
}

// ─── Imports ─────────────────────────────────────────────────────────────────

// ImportFile reads a file from disk and applies it.
func (s *ImportService) ImportFile(ctx context.Context, actor string, kind model.ImportKind, path string, opts model.ImportOptions) (*model.ImportReport, error) {
	records, err := importer.ReadFile(path, importer.Options{
		Sheet:     opts.Sheet,
		Encoding:  opts.Encoding,
		Delimiter: opts.Delimiter,
		SkipRows:  opts.SkipRows,
	})
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, actor, kind, records, opts)
}

// Apply upserts already parsed records. A dry run reports what would change without
// writing anything.
func (s *ImportService) Apply(ctx context.Context, actor string, kind model.ImportKind, records []importer.Record, opts model.ImportOptions) (*model.ImportReport, error) {
	report := &model.ImportReport{
		Kind:   kind,
		DryRun: opts.DryRun,
		Total:  len(records),
		Errors: []model.RowError{},
	}

	var err error
	switch kind {
	case model.ImportTeachers:
		err = s.importTeachers(ctx, records, opts.DryRun, report)
	case model.ImportClassrooms:
		err = s.importClassrooms(ctx, records, opts.DryRun, report)
	case model.ImportStudentGroups:
		err = s.importStudentGroups(ctx, records, opts.DryRun, report)
	case model.ImportSubjects:
		err = s.importSubjects(ctx, records, opts, report)
	case model.ImportSoftware:
		err = s.importSoftware(ctx, records, opts.DryRun, report)
	case model.ImportAssignments:
		if opts.SemesterID == nil {
			return nil, ErrSemesterRequired
		}
		err = s.importAssignments(ctx, actor, *opts.SemesterID, records, opts.DryRun, report)
	default:
		return nil, ErrUnknownImportKind
	}
	s.observe(report)
	if err != nil {
		return report, err
	}

	if !opts.DryRun && report.Inserted+report.Updated > 0 {
		s.activity.Audit(ctx, actor, string(kind), uuid.Nil, model.AuditImport, nil, report)
		if kind == model.ImportClassrooms {
			s.occupancy.InvalidateAll(ctx)
		}
	}

	s.log.Info().
		Str("kind", string(kind)).
		Bool("dry_run", opts.DryRun).
		Int("total", report.Total).
		Int("inserted", report.Inserted).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Msg("Import applied")
	return report, nil
}

func (s *ImportService) observe(r *model.ImportReport) {
	if s.rows == nil {
		return
	}
	kind := string(r.Kind)
	s.rows.WithLabelValues(kind, "inserted").Add(float64(r.Inserted))
	s.rows.WithLabelValues(kind, "updated").Add(float64(r.Updated))
	s.rows.WithLabelValues(kind, "skipped").Add(float64(r.Skipped))
}

// exists maps a lookup result onto found / not found, passing other errors through.
func exists(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// upsert counts one row. In a dry run only lookup runs; otherwise write reports whether
// it inserted. Row-level database errors are recorded in the report; only a cancelled
// context aborts the import.
func upsert(ctx context.Context, rep *model.ImportReport, row int, dryRun bool, lookup func() error, write func() (bool, error)) error {
	var inserted bool
	var err error
	if dryRun {
		var found bool
		found, err = exists(lookup())
		inserted = !found
	} else {
		inserted, err = write()
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rep.AddError(row, err.Error())
		return nil
	}
	if inserted {
		rep.Inserted++
	} else {
		rep.Updated++
	}
	return nil
}

func (s *ImportService) importTeachers(ctx context.Context, records []importer.Record, dryRun bool, rep *model.ImportReport) error {
	for _, rec := range records {
		t, err := teacherFromRecord(rec)
		if err != nil {
			rep.AddError(rec.Row, err.Error())
			continue
		}
		err = upsert(ctx, rep, rec.Row, dryRun,
			func() error { _, err := s.repos.Teachers.GetByCode(ctx, t.Code); return err },
			func() (bool, error) { return s.repos.Teachers.Upsert(ctx, t) })
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ImportService) importClassrooms(ctx context.Context, records []importer.Record, dryRun bool, rep *model.ImportReport) error {
	existing, err := s.loadClassrooms(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		c, err := classroomFromRecord(rec)
		if err != nil {
			rep.AddError(rec.Row, err.Error())
			continue
		}
		err = upsert(ctx, rep, rec.Row, dryRun,
			func() error {
				if _, ok := existing.lookup(c.Code); ok {
					return nil
				}
				return pgx.ErrNoRows
			},
			func() (bool, error) { return s.repos.Classrooms.Upsert(ctx, c) })
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ImportService) programIndex(ctx context.Context) (map[string]uuid.UUID, error) {
	programs, err := s.repos.Programs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load programs: %w", err)
	}
	out := make(map[string]uuid.UUID, len(programs))
	for _, p := range programs {
		out[strings.ToUpper(p.Code)] = p.ID
	}
	return out, nil
}

func (s *ImportService) importStudentGroups(ctx context.Context, records []importer.Record, dryRun bool, rep *model.ImportReport) error {
	programs, err := s.programIndex(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		g, err := studentGroupFromRecord(rec, programs)
		if err != nil {
			rep.AddError(rec.Row, err.Error())
			continue
		}
		err = upsert(ctx, rep, rec.Row, dryRun,
			func() error { _, err := s.repos.StudentGroups.GetByName(ctx, g.Name); return err },
			func() (bool, error) { return s.repos.StudentGroups.Upsert(ctx, g) })
		if err != nil {
			return err
		}
	}
	return nil
}

// importSubjects upserts subjects and, when a semester is given, the subject groups
// listed in the "groups" column.
func (s *ImportService) importSubjects(ctx context.Context, records []importer.Record, opts model.ImportOptions, rep *model.ImportReport) error {
	programs, err := s.programIndex(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		subj, err := subjectFromRecord(rec, programs)
		if err != nil {
			rep.AddError(rec.Row, err.Error())
			continue
		}
		groupType, err := groupTypeOf(rec.Get("group_type"))
		if err != nil {
			rep.AddError(rec.Row, err.Error())
			continue
		}
		groups := importer.SplitList(rec.Get("groups", "group_code"))

		err = upsert(ctx, rep, rec.Row, opts.DryRun,
			func() error { _, err := s.repos.Subjects.GetByCode(ctx, subj.Code); return err },
			func() (bool, error) {
				inserted, err := s.repos.Subjects.Upsert(ctx, subj)
				if err != nil || opts.SemesterID == nil {
					return inserted, err
				}
				for _, code := range groups {
					if err := s.ensureGroup(ctx, subj.ID, *opts.SemesterID, code, groupType); err != nil {
						return inserted, fmt.Errorf("grup %s: %w", code, err)
					}
				}
				return inserted, nil
			})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ImportService) ensureGroup(ctx context.Context, subjectID, semesterID uuid.UUID, code string, groupType model.GroupType) error {
	_, err := s.repos.Subjects.FindGroup(ctx, subjectID, semesterID, code)
	found, err := exists(err)
	if err != nil || found {
		return err
	}
	return s.repos.Subjects.CreateGroup(ctx, &model.SubjectGroup{
		SubjectID:  subjectID,
		SemesterID: semesterID,
		GroupCode:  code,
		GroupType:  groupType,
	})
}

func (s *ImportService) importSoftware(ctx context.Context, records []importer.Record, dryRun bool, rep *model.ImportReport) error {
	classrooms, err := s.loadClassrooms(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		sw, err := softwareFromRecord(rec)
		if err != nil {
			rep.AddError(rec.Row, err.Error())
			continue
		}
		installIn, err := classrooms.resolve(importer.ClassroomCodes(rec.Get("classrooms")))
		if err != nil {
			rep.AddError(rec.Row, err.Error())
			continue
		}

		err = upsert(ctx, rep, rec.Row, dryRun,
			func() error { _, err := s.repos.Software.GetByName(ctx, sw.Name); return err },
			func() (bool, error) {
				inserted, err := s.repos.Software.Upsert(ctx, sw)
				if err != nil {
					return inserted, err
				}
				for _, c := range installIn {
					if err := s.repos.Software.Install(ctx, &model.ClassroomSoftware{
						ClassroomID:      c.ID,
						SoftwareID:       sw.ID,
						InstalledVersion: sw.Version,
					}); err != nil {
						return inserted, fmt.Errorf("instal·lació a %s: %w", c.Code, err)
					}
				}
				return inserted, nil
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// ─── Assignments ─────────────────────────────────────────────────────────────

// assignmentLookups holds the catalogue indexes an assignment import resolves against.
type assignmentLookups struct {
	subjects      map[string]*model.Subject
	teachers      map[string]uuid.UUID
	studentGroups map[string]uuid.UUID
	classrooms    classroomIndex
	slots         map[string]uuid.UUID
	existing      map[string]uuid.UUID
}

func (s *ImportService) loadAssignmentLookups(ctx context.Context, semesterID uuid.UUID) (*assignmentLookups, error) {
	l := &assignmentLookups{
		subjects:      map[string]*model.Subject{},
		teachers:      map[string]uuid.UUID{},
		studentGroups: map[string]uuid.UUID{},
		slots:         map[string]uuid.UUID{},
		existing:      map[string]uuid.UUID{},
	}

	subjects, err := s.repos.Subjects.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	for i := range subjects {
		l.subjects[strings.ToUpper(subjects[i].Code)] = &subjects[i]
	}

	teachers, err := s.repos.Teachers.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load teachers: %w", err)
	}
	for _, t := range teachers {
		l.teachers["code:"+strings.ToUpper(t.Code)] = t.ID
		l.teachers["email:"+strings.ToLower(t.Email)] = t.ID
		l.teachers["name:"+matching.Normalize(t.FullName())] = t.ID
	}

	groups, err := s.repos.StudentGroups.List(ctx, 0, "")
	if err != nil {
		return nil, fmt.Errorf("load student groups: %w", err)
	}
	for _, g := range groups {
		l.studentGroups[strings.ToUpper(g.Name)] = g.ID
	}

	if l.classrooms, err = s.loadClassrooms(ctx); err != nil {
		return nil, err
	}

	slots, err := s.repos.TimeSlots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}
	for _, ts := range slots {
		start, err1 := schedule.ParseClock(ts.StartTime)
		end, err2 := schedule.ParseClock(ts.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		l.slots[slotSpec{Day: ts.DayOfWeek, Start: start, End: end}.key()] = ts.ID
	}

	views, err := s.assignments.List(ctx, model.AssignmentFilter{SemesterID: semesterID})
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	for _, v := range views {
		if v.DayOfWeek == nil || v.StartTime == nil || v.EndTime == nil {
			continue
		}
		start, err1 := schedule.ParseClock(*v.StartTime)
		end, err2 := schedule.ParseClock(*v.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		spec := slotSpec{Day: *v.DayOfWeek, Start: start, End: end}
		l.existing[assignmentKey(v.SubjectGroupID, spec, v.StudentGroupID)] = v.ID
	}
	return l, nil
}

// assignmentKey is the natural key of an imported assignment row.
func assignmentKey(subjectGroupID uuid.UUID, spec slotSpec, studentGroupID *uuid.UUID) string {
	sg := "-"
	if studentGroupID != nil {
		sg = studentGroupID.String()
	}
	return subjectGroupID.String() + "|" + spec.key() + "|" + sg
}

func (l *assignmentLookups) teacher(rec importer.Record) (*uuid.UUID, error) {
	var (
		key   string
		label string
	)
	switch {
	case rec.Has("teacher_code"):
		label = rec.Get("teacher_code")
		key = "code:" + strings.ToUpper(label)
	case rec.Has("teacher_email"):
		label = rec.Get("teacher_email")
		key = "email:" + strings.ToLower(label)
	case rec.Has("teacher", "teacher_name"):
		label = rec.Get("teacher", "teacher_name")
		first, last := importer.SplitTeacherName(label)
		key = "name:" + matching.Normalize(first+" "+last)
	default:
		return nil, nil
	}
	id, ok := l.teachers[key]
	if !ok {
		return nil, fmt.Errorf("professor desconegut: %s", label)
	}
	return &id, nil
}

func (l *assignmentLookups) studentGroup(rec importer.Record) (*uuid.UUID, error) {
	name := rec.Get("student_group")
	if name == "" {
		return nil, nil
	}
	id, ok := l.studentGroups[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("grup d'estudiants desconegut: %s", name)
	}
	return &id, nil
}

// assignmentRow is an assignment row with every reference resolved except the ones
// that may have to be created (subject group and time slot).
type assignmentRow struct {
	subject        *model.Subject
	groupCode      string
	teacherID      *uuid.UUID
	studentGroupID *uuid.UUID
	slot           slotSpec
	classrooms     []model.Classroom
	weeks          []int
	hours          float64
}

func (s *ImportService) parseAssignmentRow(rec importer.Record, l *assignmentLookups) (*assignmentRow, error) {
	row := &assignmentRow{}

	code := rec.Get("subject_code")
	if code == "" {
		return nil, missing("subject_code")
	}
	var ok bool
	if row.subject, ok = l.subjects[strings.ToUpper(code)]; !ok {
		return nil, fmt.Errorf("assignatura desconeguda: %s", code)
	}
	if row.groupCode = rec.Get("group_code"); row.groupCode == "" {
		return nil, missing("group_code")
	}

	var err error
	if row.teacherID, err = l.teacher(rec); err != nil {
		return nil, err
	}
	if row.studentGroupID, err = l.studentGroup(rec); err != nil {
		return nil, err
	}
	if row.slot, err = slotFromRecord(rec); err != nil {
		return nil, err
	}
	if row.classrooms, err = l.classrooms.resolve(importer.ClassroomCodes(rec.Get("classrooms"))); err != nil {
		return nil, err
	}
	if v := rec.Get("weeks"); v != "" {
		if row.weeks, err = schedule.ParseWeeks(v, s.weeks); err != nil {
			return nil, badValue("weeks", v)
		}
	}

	row.hours = float64(row.slot.End-row.slot.Start) / 60
	if v := rec.Get("hours_per_week"); v != "" {
		if row.hours, err = importer.ParseFloat(v); err != nil || row.hours < 0 || row.hours > 40 {
			return nil, badValue("hours_per_week", v)
		}
	}
	return row, nil
}

// assignmentGroups is the subject group store of an assignment import.
type assignmentGroups interface {
	FindGroup(ctx context.Context, subjectID, semesterID uuid.UUID, code string) (*model.SubjectGroup, error)
	CreateGroup(ctx context.Context, g *model.SubjectGroup) error
	DeleteGroup(ctx context.Context, id uuid.UUID) error
}

type slotCreator interface {
	FindOrCreate(ctx context.Context, t *model.TimeSlot) error
}

type assignmentWriter interface {
	Create(ctx context.Context, actor string, req model.AssignmentRequest) (*AssignmentResult, error)
	Update(ctx context.Context, actor string, id uuid.UUID, req model.AssignmentRequest) (*AssignmentResult, error)
}

// plannedBooking is a row accepted earlier in the same dry run. Nothing is written
// during a dry run, so later rows are checked against these in memory.
type plannedBooking struct {
	line           int
	label          string
	groupKey       string
	interval       schedule.Interval
	weeks          schedule.WeekSet
	classrooms     map[uuid.UUID]string
	teacherID      *uuid.UUID
	studentGroupID *uuid.UUID
}

// assignmentImport applies the rows of one assignment file to a semester.
type assignmentImport struct {
	groups     assignmentGroups
	slots      slotCreator
	writer     assignmentWriter
	lookups    *assignmentLookups
	actor      string
	semesterID uuid.UUID
	weeks      int
	dryRun     bool
	planned    []plannedBooking
	log        zerolog.Logger
}

func (s *ImportService) importAssignments(ctx context.Context, actor string, semesterID uuid.UUID, records []importer.Record, dryRun bool, rep *model.ImportReport) error {
	l, err := s.loadAssignmentLookups(ctx, semesterID)
	if err != nil {
		return err
	}

	imp := &assignmentImport{
		groups:     s.repos.Subjects,
		slots:      s.repos.TimeSlots,
		writer:     s.assignments,
		lookups:    l,
		actor:      actor,
		semesterID: semesterID,
		weeks:      s.weeks,
		dryRun:     dryRun,
		log:        s.log,
	}
	for _, rec := range records {
		row, err := s.parseAssignmentRow(rec, l)
		if err != nil {
			rep.AddError(rec.Row, err.Error())
			continue
		}
		if err := imp.apply(ctx, row, rep, rec.Row); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rep.AddError(rec.Row, err.Error())
		}
	}
	return nil
}

func (imp *assignmentImport) apply(ctx context.Context, row *assignmentRow, rep *model.ImportReport, line int) error {
	group, err := imp.groups.FindGroup(ctx, row.subject.ID, imp.semesterID, row.groupCode)
	found, err := exists(err)
	if err != nil {
		return err
	}
	slotID, haveSlot := imp.lookups.slots[row.slot.key()]

	if imp.dryRun {
		return imp.plan(ctx, row, group, found, slotID, haveSlot, rep, line)
	}

	createdGroup := false
	if !found {
		group = &model.SubjectGroup{
			SubjectID:  row.subject.ID,
			SemesterID: imp.semesterID,
			GroupCode:  row.groupCode,
			GroupType:  model.GroupTheory,
		}
		if err := imp.groups.CreateGroup(ctx, group); err != nil {
			return fmt.Errorf("crear grup %s: %w", row.groupCode, err)
		}
		createdGroup = true
	}
	if !haveSlot {
		ts := &model.TimeSlot{
			DayOfWeek: row.slot.Day,
			StartTime: row.slot.Start.String(),
			EndTime:   row.slot.End.String(),
			SlotType:  model.Shift(row.slot.Period),
		}
		if err := imp.slots.FindOrCreate(ctx, ts); err != nil {
			imp.dropGroup(ctx, group, createdGroup)
			return fmt.Errorf("crear franja horària: %w", err)
		}
		slotID = ts.ID
		imp.lookups.slots[row.slot.key()] = ts.ID
	}

	key := assignmentKey(group.ID, row.slot, row.studentGroupID)
	existingID, update := imp.lookups.existing[key]
	res, err := imp.write(ctx, row, group.ID, slotID, existingID, update)
	if err != nil {
		imp.dropGroup(ctx, group, createdGroup)
		return err
	}
	imp.logWarnings(res, line)

	if update {
		rep.Updated++
		return nil
	}
	rep.Inserted++
	if res.Assignment != nil {
		imp.lookups.existing[key] = res.Assignment.ID
	}
	return nil
}

// plan validates a row without writing. Rows whose group or slot would be created are
// only checked against earlier rows of the file and reported as warnings.
func (imp *assignmentImport) plan(ctx context.Context, row *assignmentRow, group *model.SubjectGroup, found bool,
	slotID uuid.UUID, haveSlot bool, rep *model.ImportReport, line int) error {
	groupKey := "new:" + row.subject.ID.String() + "|" + row.groupCode
	if found {
		groupKey = group.ID.String()
	}
	booking := imp.booking(row, groupKey, line)
	if clashes := imp.fileClashes(booking); len(clashes) > 0 {
		return errors.New(strings.Join(clashes, "; "))
	}

	update := false
	if found && haveSlot {
		var existingID uuid.UUID
		existingID, update = imp.lookups.existing[assignmentKey(group.ID, row.slot, row.studentGroupID)]
		res, err := imp.write(ctx, row, group.ID, slotID, existingID, update)
		if err != nil {
			return err
		}
		imp.logWarnings(res, line)
	} else {
		rep.AddWarning(line, "no validada contra l'horari existent: el grup o la franja horària encara no existeixen")
	}

	imp.planned = append(imp.planned, booking)
	if update {
		rep.Updated++
	} else {
		rep.Inserted++
	}
	return nil
}

func (imp *assignmentImport) write(ctx context.Context, row *assignmentRow, groupID, slotID, existingID uuid.UUID, update bool) (*AssignmentResult, error) {
	req := model.AssignmentRequest{
		SemesterID:     imp.semesterID,
		SubjectGroupID: groupID,
		TeacherID:      row.teacherID,
		StudentGroupID: row.studentGroupID,
		TimeSlotID:     &slotID,
		HoursPerWeek:   row.hours,
		DryRun:         imp.dryRun,
	}
	for _, c := range row.classrooms {
		req.Classrooms = append(req.Classrooms, model.AssignmentClassroomInput{ClassroomID: c.ID, Weeks: row.weeks})
	}

	var (
		res *AssignmentResult
		err error
	)
	if update {
		res, err = imp.writer.Update(ctx, imp.actor, existingID, req)
	} else {
		res, err = imp.writer.Create(ctx, imp.actor, req)
	}
	var vErr *ValidationFailedError
	if errors.As(err, &vErr) {
		return nil, errors.New(strings.Join(vErr.Result.Errors, "; "))
	}
	return res, err
}

// dropGroup removes a subject group created for a row that was then rejected.
func (imp *assignmentImport) dropGroup(ctx context.Context, group *model.SubjectGroup, created bool) {
	if !created {
		return
	}
	if err := imp.groups.DeleteGroup(ctx, group.ID); err != nil {
		imp.log.Error().Err(err).Str("subject_group_id", group.ID.String()).Msg("Failed to remove subject group of a rejected row")
	}
}

func (imp *assignmentImport) logWarnings(res *AssignmentResult, line int) {
	if res == nil || res.Validation == nil {
		return
	}
	for _, w := range res.Validation.Warnings {
		imp.log.Debug().Int("row", line).Str("warning", w).Msg("Imported assignment has a warning")
	}
}

func (imp *assignmentImport) booking(row *assignmentRow, groupKey string, line int) plannedBooking {
	b := plannedBooking{
		line:           line,
		label:          row.subject.Code + " " + row.groupCode,
		groupKey:       groupKey,
		interval:       schedule.Interval{Day: row.slot.Day, Start: row.slot.Start, End: row.slot.End},
		weeks:          schedule.NewWeekSet(row.weeks, imp.weeks),
		classrooms:     make(map[uuid.UUID]string, len(row.classrooms)),
		teacherID:      row.teacherID,
		studentGroupID: row.studentGroupID,
	}
	for _, c := range row.classrooms {
		b.classrooms[c.ID] = c.Code
	}
	return b
}

// fileClashes checks a row against the rows accepted earlier in the file.
func (imp *assignmentImport) fileClashes(b plannedBooking) []string {
	var out []string
	for _, p := range imp.planned {
		if !p.interval.Overlaps(b.interval) {
			continue
		}
		common := p.weeks.Intersect(b.weeks)
		if len(common) == 0 {
			continue
		}
		where := fmt.Sprintf("%s (fila %d, setmanes %s)", p.label, p.line, common)
		for id, code := range b.classrooms {
			if _, ok := p.classrooms[id]; ok {
				out = append(out, fmt.Sprintf("L'aula %s ja està ocupada per %s", code, where))
			}
		}
		if b.teacherID != nil && p.teacherID != nil && *b.teacherID == *p.teacherID {
			out = append(out, "El professor ja imparteix "+where)
		}
		if b.studentGroupID != nil && p.studentGroupID != nil && *b.studentGroupID == *p.studentGroupID && b.groupKey != p.groupKey {
			out = append(out, "El grup d'estudiants ja té "+where)
		}
	}
	sort.Strings(out)
	return out
}

// ─── Classroom lookup ────────────────────────────────────────────────────────

// classroomIndex finds classrooms by any spelling of their code.
type classroomIndex map[string]model.Classroom

func (s *ImportService) loadClassrooms(ctx context.Context) (classroomIndex, error) {
	classrooms, err := s.repos.Classrooms.List(ctx, model.ClassroomFilter{})
	if err != nil {
		return nil, fmt.Errorf("load classrooms: %w", err)
	}
	return newClassroomIndex(classrooms), nil
}

func newClassroomIndex(classrooms []model.Classroom) classroomIndex {
	idx := make(classroomIndex, len(classrooms)*4)
	for _, c := range classrooms {
		for _, v := range importer.CodeVariants(c.Code) {
			if _, taken := idx[v]; !taken {
				idx[v] = c
			}
		}
	}
	return idx
}

func (idx classroomIndex) lookup(code string) (model.Classroom, bool) {
	for _, v := range importer.CodeVariants(code) {
		if c, ok := idx[v]; ok {
			return c, true
		}
	}
	return model.Classroom{}, false
}

func (idx classroomIndex) resolve(codes []string) ([]model.Classroom, error) {
	out := make([]model.Classroom, 0, len(codes))
	var unknown []string
	seen := map[uuid.UUID]bool{}
	for _, code := range codes {
		c, ok := idx.lookup(code)
		if !ok {
			unknown = append(unknown, code)
			continue
		}
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("aules desconegudes: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
