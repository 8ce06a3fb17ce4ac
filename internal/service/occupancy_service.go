package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ClassroomOccupancy is the occupancy grid of one classroom in one semester.
type ClassroomOccupancy struct {
	ClassroomID   uuid.UUID `json:"classroom_id"`
	ClassroomCode string    `json:"classroom_code"`
	ClassroomName string    `json:"classroom_name"`
	SemesterID    uuid.UUID `json:"semester_id"`
	schedule.Occupancy
}

// OccupancySummary is one classroom row of a building summary.
type OccupancySummary struct {
	ClassroomID      uuid.UUID `json:"classroom_id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Capacity         int       `json:"capacity"`
	MorningPercent   int       `json:"morning_occupancy"`
	AfternoonPercent int       `json:"afternoon_occupancy"`
	TotalPercent     int       `json:"total_occupancy"`
}

// BuildingOccupancy groups classroom summaries by building.
type BuildingOccupancy struct {
	Building       string             `json:"building"`
	AveragePercent int                `json:"average_occupancy"`
	Classrooms     []OccupancySummary `json:"classrooms"`
}

// OccupancyService computes classroom occupancy grids and caches them in Redis.
type OccupancyService struct {
	bookingRepo   *repository.BookingRepository
	classroomRepo *repository.ClassroomRepository
	rdb           *redis.Client
	ttl           time.Duration
	log           zerolog.Logger
}

func NewOccupancyService(bookingRepo *repository.BookingRepository, classroomRepo *repository.ClassroomRepository,
	rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *OccupancyService {
	return &OccupancyService{
		bookingRepo:   bookingRepo,
		classroomRepo: classroomRepo,
		rdb:           rdb,
		ttl:           ttl,
		log:           log.With().Str("component", "occupancy_service").Logger(),
	}
}

// Classroom returns the occupancy of a classroom, from cache when possible.
func (s *OccupancyService) Classroom(ctx context.Context, semesterID, classroomID uuid.UUID) (*ClassroomOccupancy, error) {
	key := config.CacheKey.ClassroomOccupancyKey(semesterID.String(), classroomID.String())
	var cached ClassroomOccupancy
	if s.getCached(ctx, key, &cached) {
		return &cached, nil
	}

	c, err := s.classroomRepo.GetByID(ctx, classroomID)
	if err != nil {
		return nil, notFound(err)
	}
	bookings, err := s.bookingRepo.ClassroomBookings(ctx, semesterID, classroomID)
	if err != nil {
		return nil, fmt.Errorf("classroom bookings: %w", err)
	}

	occ := &ClassroomOccupancy{
		ClassroomID:   c.ID,
		ClassroomCode: c.Code,
		ClassroomName: c.Name,
		SemesterID:    semesterID,
		Occupancy:     schedule.ComputeOccupancy(bookings),
	}
	s.setCached(ctx, key, occ)
	return occ, nil
}

// Buildings returns the occupancy summary of every available classroom grouped by
// building, busiest classrooms first.
func (s *OccupancyService) Buildings(ctx context.Context, semesterID uuid.UUID) ([]BuildingOccupancy, error) {
	key := config.CacheKey.BuildingOccupancyKey(semesterID.String())
	var cached []BuildingOccupancy
	if s.getCached(ctx, key, &cached) {
		return cached, nil
	}

	classrooms, err := s.classroomRepo.List(ctx, model.ClassroomFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.AllClassroomBookings(ctx, semesterID)
	if err != nil {
		return nil, fmt.Errorf("semester bookings: %w", err)
	}
	byClassroom := make(map[uuid.UUID][]schedule.Booking)
	for _, b := range bookings {
		byClassroom[b.ClassroomID] = append(byClassroom[b.ClassroomID], b)
	}

	result := SummarizeBuildings(classrooms, byClassroom)
	s.setCached(ctx, key, result)
	return result, nil
}

// SummarizeBuildings computes per-classroom occupancy and groups it by building.
// Classrooms without building are reported under "-".
func SummarizeBuildings(classrooms []model.Classroom, bookings map[uuid.UUID][]schedule.Booking) []BuildingOccupancy {
	index := make(map[string]int)
	var out []BuildingOccupancy
	for _, c := range classrooms {
		building := "-"
		if c.Building != nil && *c.Building != "" {
			building = *c.Building
		}
		i, ok := index[building]
		if !ok {
			i = len(out)
			index[building] = i
			out = append(out, BuildingOccupancy{Building: building})
		}
		occ := schedule.ComputeOccupancy(bookings[c.ID])
		out[i].Classrooms = append(out[i].Classrooms, OccupancySummary{
			ClassroomID:      c.ID,
			Code:             c.Code,
			Name:             c.Name,
			Capacity:         c.Capacity,
			MorningPercent:   occ.MorningPercent,
			AfternoonPercent: occ.AfternoonPercent,
			TotalPercent:     occ.TotalPercent,
		})
	}

	for i := range out {
		rows := out[i].Classrooms
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].TotalPercent > rows[b].TotalPercent })
		sum := 0
		for _, r := range rows {
			sum += r.TotalPercent
		}
		if len(rows) > 0 {
			out[i].AveragePercent = (sum + len(rows)/2) / len(rows)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Building < out[b].Building })
	return out
}

// InvalidateSemester drops every cached occupancy entry of a semester.
func (s *OccupancyService) InvalidateSemester(ctx context.Context, semesterID uuid.UUID) {
	s.deletePattern(ctx, config.CacheKey.SemesterOccupancyPattern(semesterID.String()))
}

// InvalidateClassroom drops a classroom's cached grids and every building summary.
func (s *OccupancyService) InvalidateClassroom(ctx context.Context, classroomID uuid.UUID) {
	s.deletePattern(ctx, config.CacheKey.ClassroomOccupancyPattern(classroomID.String()))
	s.deletePattern(ctx, config.CacheKey.BuildingOccupancyPattern())
}

// InvalidateAll drops the whole occupancy cache, e.g. after a bulk import.
func (s *OccupancyService) InvalidateAll(ctx context.Context) {
	s.deletePattern(ctx, config.CacheKey.OccupancyPattern())
}

func (s *OccupancyService) deletePattern(ctx context.Context, pattern string) {
	if s == nil || s.rdb == nil {
		return
	}
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warn().Err(err).Str("pattern", pattern).Msg("Failed to scan occupancy cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Str("pattern", pattern).Msg("Failed to invalidate occupancy cache")
		return
	}
	s.log.Debug().Str("pattern", pattern).Int("keys", len(keys)).Msg("Occupancy cache invalidated")
}

func (s *OccupancyService) getCached(ctx context.Context, key string, dst interface{}) bool {
	if s.rdb == nil || s.ttl <= 0 {
		return false
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Occupancy cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt occupancy cache entry")
		return false
	}
	return true
}

func (s *OccupancyService) setCached(ctx context.Context, key string, v interface{}) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Occupancy cache write failed")
	}
}
