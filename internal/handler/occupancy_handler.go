package handler

import (
	"net/http"

	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OccupancyHandler serves classroom occupancy grids.
type OccupancyHandler struct {
	occupancyService *service.OccupancyService
	calendarService  *service.CalendarService
}

func NewOccupancyHandler(occupancyService *service.OccupancyService, calendarService *service.CalendarService) *OccupancyHandler {
	return &OccupancyHandler{occupancyService: occupancyService, calendarService: calendarService}
}

func (h *OccupancyHandler) semester(c *gin.Context) (uuid.UUID, bool) {
	id, ok := queryID(c, "semester_id")
	if !ok {
		return uuid.Nil, false
	}
	semesterID, err := h.calendarService.ResolveSemester(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return uuid.Nil, false
	}
	return semesterID, true
}

// Classroom godoc
// GET /api/v1/occupancy/classrooms/:id?semester_id=
// Hourly Mon-Fri grid with morning, afternoon and total percentages.
func (h *OccupancyHandler) Classroom(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	semesterID, ok := h.semester(c)
	if !ok {
		return
	}
	occ, err := h.occupancyService.Classroom(c.Request.Context(), semesterID, id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, occ)
}

// Buildings godoc
// GET /api/v1/occupancy/buildings?semester_id=
func (h *OccupancyHandler) Buildings(c *gin.Context) {
	semesterID, ok := h.semester(c)
	if !ok {
		return
	}
	buildings, err := h.occupancyService.Buildings(c.Request.Context(), semesterID)
	if err != nil {
		failErr(c, err)
		return
	}
	if buildings == nil {
		buildings = []service.BuildingOccupancy{}
	}
	response.Success(c, http.StatusOK, gin.H{"semester_id": semesterID, "buildings": buildings})
}
