package service

import (
	"context"
	"errors"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/repository"
)

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	Counts           repository.SummaryCounts           `json:"counts"`
	ClassroomsByType map[string]int                     `json:"classrooms_by_type"`
	CurrentSemester  *model.Semester                    `json:"current_semester"`
	Schedule         *repository.SemesterScheduleCounts `json:"schedule,omitempty"`
	UnassignedGroups int                                `json:"unassigned_groups"`
	LicenseAlerts    []model.LicenseAlert               `json:"license_alerts"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo        *repository.DashboardRepository
	calendar    *CalendarService
	assignments *AssignmentService
	licenses    *LicenseService
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository, calendar *CalendarService,
	assignments *AssignmentService, licenses *LicenseService) *DashboardService {
	return &DashboardService{repo: repo, calendar: calendar, assignments: assignments, licenses: licenses}
}

// GetDashboardData gathers catalogue counts, the current semester's scheduling progress
// and licence alerts. A missing current semester leaves the schedule section empty.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	counts, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	byType, err := s.repo.ClassroomTypeCounts(ctx)
	if err != nil {
		return nil, err
	}

	alerts, err := s.licenses.Alerts(ctx)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []model.LicenseAlert{}
	}

	data := &DashboardData{
		Counts:           counts,
		ClassroomsByType: byType,
		LicenseAlerts:    alerts,
	}

	sem, err := s.calendar.CurrentSemester(ctx)
	if errors.Is(err, ErrNoCurrentSemester) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	data.CurrentSemester = sem

	sc, err := s.repo.GetSemesterCounts(ctx, sem.ID)
	if err != nil {
		return nil, err
	}
	data.Schedule = &sc

	unassigned, err := s.assignments.Unassigned(ctx, sem.ID)
	if err != nil {
		return nil, err
	}
	data.UnassignedGroups = len(unassigned)

	return data, nil
}
