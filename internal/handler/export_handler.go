package handler

import (
	"fmt"
	"net/http"

	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/gin-gonic/gin"
)

// ExportHandler serves timetable downloads and the catalogue id export.
type ExportHandler struct {
	exportService   *service.ExportService
	calendarService *service.CalendarService
}

func NewExportHandler(exportService *service.ExportService, calendarService *service.CalendarService) *ExportHandler {
	return &ExportHandler{exportService: exportService, calendarService: calendarService}
}

// Timetable godoc
// GET /api/v1/exports/timetable?semester_id=&student_group_id=|teacher_id=|classroom_id=&format=xlsx|pdf
func (h *ExportHandler) Timetable(c *gin.Context) {
	h.timetable(c, false)
}

// GroupTimetable godoc
// GET /api/v1/public/timetables?student_group_id=&semester_id=&format=
// Public variant limited to student group timetables.
func (h *ExportHandler) GroupTimetable(c *gin.Context) {
	h.timetable(c, true)
}

func (h *ExportHandler) timetable(c *gin.Context, groupOnly bool) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		failErr(c, err)
		return
	}
	semesterParam, ok := queryID(c, "semester_id")
	if !ok {
		return
	}
	req := service.TimetableRequest{Format: format}
	if req.StudentGroupID, ok = queryID(c, "student_group_id"); !ok {
		return
	}
	if groupOnly {
		if req.StudentGroupID == nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"student_group_id": "required"})
			return
		}
	} else {
		if req.TeacherID, ok = queryID(c, "teacher_id"); !ok {
			return
		}
		if req.ClassroomID, ok = queryID(c, "classroom_id"); !ok {
			return
		}
	}
	if req.SemesterID, err = h.calendarService.ResolveSemester(c.Request.Context(), semesterParam); err != nil {
		failErr(c, err)
		return
	}

	file, err := h.exportService.Timetable(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// IDs godoc
// GET /api/v1/exports/ids
// Catalogue rows keyed by id, for referencing them from external spreadsheets.
func (h *ExportHandler) IDs(c *gin.Context) {
	out, err := h.exportService.IDs(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}
