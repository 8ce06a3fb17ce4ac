package handler

import (
	"net/http"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/Josepmarimon/bau-assist-sub002/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CalendarHandler handles academic years, semesters and study programs.
type CalendarHandler struct {
	calendarService *service.CalendarService
}

func NewCalendarHandler(calendarService *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// ListYears godoc
// GET /api/v1/academic-years
func (h *CalendarHandler) ListYears(c *gin.Context) {
	years, err := h.calendarService.ListYears(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if years == nil {
		years = []model.AcademicYear{}
	}
	response.Success(c, http.StatusOK, gin.H{"academic_years": years})
}

// GetYear godoc
// GET /api/v1/academic-years/:id
func (h *CalendarHandler) GetYear(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	year, err := h.calendarService.GetYear(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"academic_year": year})
}

// CreateYear godoc
// POST /api/v1/academic-years
// Marking the year as current clears the flag on every other year.
func (h *CalendarHandler) CreateYear(c *gin.Context) {
	var req model.AcademicYearRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	year, err := h.calendarService.SaveYear(c.Request.Context(), uuid.Nil, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"academic_year": year})
}

// UpdateYear godoc
// PUT /api/v1/academic-years/:id
func (h *CalendarHandler) UpdateYear(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.AcademicYearRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	year, err := h.calendarService.SaveYear(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"academic_year": year})
}

// DeleteYear godoc
// DELETE /api/v1/academic-years/:id
func (h *CalendarHandler) DeleteYear(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.calendarService.DeleteYear(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "academic year deleted successfully"})
}

// ListSemesters godoc
// GET /api/v1/semesters?academic_year_id=
func (h *CalendarHandler) ListSemesters(c *gin.Context) {
	yearID, ok := queryID(c, "academic_year_id")
	if !ok {
		return
	}
	semesters, err := h.calendarService.ListSemesters(c.Request.Context(), yearID)
	if err != nil {
		failErr(c, err)
		return
	}
	if semesters == nil {
		semesters = []model.Semester{}
	}
	response.Success(c, http.StatusOK, gin.H{"semesters": semesters})
}

// CurrentSemester godoc
// GET /api/v1/semesters/current
// The semester of the current academic year that contains today.
func (h *CalendarHandler) CurrentSemester(c *gin.Context) {
	sem, err := h.calendarService.CurrentSemester(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"semester": sem})
}

// GetSemester godoc
// GET /api/v1/semesters/:id
func (h *CalendarHandler) GetSemester(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sem, err := h.calendarService.GetSemester(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"semester": sem})
}

// CreateSemester godoc
// POST /api/v1/semesters
func (h *CalendarHandler) CreateSemester(c *gin.Context) {
	var req model.SemesterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	sem, err := h.calendarService.CreateSemester(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"semester": sem})
}

// UpdateSemester godoc
// PUT /api/v1/semesters/:id
func (h *CalendarHandler) UpdateSemester(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.SemesterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	sem, err := h.calendarService.UpdateSemester(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"semester": sem})
}

// DeleteSemester godoc
// DELETE /api/v1/semesters/:id
func (h *CalendarHandler) DeleteSemester(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.calendarService.DeleteSemester(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "semester deleted successfully"})
}

// ListPrograms godoc
// GET /api/v1/programs
func (h *CalendarHandler) ListPrograms(c *gin.Context) {
	programs, err := h.calendarService.ListPrograms(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if programs == nil {
		programs = []model.Program{}
	}
	response.Success(c, http.StatusOK, gin.H{"programs": programs})
}

// GetProgram godoc
// GET /api/v1/programs/:id
func (h *CalendarHandler) GetProgram(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.calendarService.GetProgram(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"program": p})
}

// CreateProgram godoc
// POST /api/v1/programs
func (h *CalendarHandler) CreateProgram(c *gin.Context) {
	var req model.ProgramRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	p, err := h.calendarService.SaveProgram(c.Request.Context(), uuid.Nil, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"program": p})
}

// UpdateProgram godoc
// PUT /api/v1/programs/:id
func (h *CalendarHandler) UpdateProgram(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ProgramRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	p, err := h.calendarService.SaveProgram(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"program": p})
}

// DeleteProgram godoc
// DELETE /api/v1/programs/:id
func (h *CalendarHandler) DeleteProgram(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.calendarService.DeleteProgram(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "program deleted successfully"})
}
