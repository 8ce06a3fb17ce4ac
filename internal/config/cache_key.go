package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ClassroomOccupancyKey returns the cache key for a classroom's occupancy in a semester
func (r *CacheKeyStruct) ClassroomOccupancyKey(semesterID, classroomID string) string {
	return fmt.Sprintf("occupancy:%s:classroom:%s", semesterID, classroomID)
}

// SemesterOccupancyPattern matches every cached occupancy entry of a semester
func (r *CacheKeyStruct) SemesterOccupancyPattern(semesterID string) string {
	return fmt.Sprintf("occupancy:%s:*", semesterID)
}

// ClassroomOccupancyPattern matches the cached occupancy of a classroom in every semester
func (r *CacheKeyStruct) ClassroomOccupancyPattern(classroomID string) string {
	return fmt.Sprintf("occupancy:*:classroom:%s", classroomID)
}

// BuildingOccupancyPattern matches the per-building summaries of every semester
func (r *CacheKeyStruct) BuildingOccupancyPattern() string {
	return "occupancy:*:buildings"
}

// OccupancyPattern matches every cached occupancy entry
func (r *CacheKeyStruct) OccupancyPattern() string {
	return "occupancy:*"
}

// BuildingOccupancyKey returns the cache key for the per-building occupancy summary
func (r *CacheKeyStruct) BuildingOccupancyKey(semesterID string) string {
	return fmt.Sprintf("occupancy:%s:buildings", semesterID)
}

// RevokedTokenKey returns the cache key marking an API token as revoked
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("token:revoked:%s", jti)
}

// ScheduleEventsChannel returns the Redis PubSub channel for timetable changes
func (r *CacheKeyStruct) ScheduleEventsChannel() string {
	return "schedule:events"
}

var CacheKey = NewCacheKeyStruct()
