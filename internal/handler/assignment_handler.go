package handler

import (
	"net/http"

	"github.com/Josepmarimon/bau-assist-sub002/internal/middleware"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/Josepmarimon/bau-assist-sub002/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AssignmentHandler handles timetable assignments, their validation and the
// semester conflict report.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
	calendarService   *service.CalendarService
}

func NewAssignmentHandler(assignmentService *service.AssignmentService, calendarService *service.CalendarService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService, calendarService: calendarService}
}

// semester reads ?semester_id=, falling back to the current semester.
func (h *AssignmentHandler) semester(c *gin.Context) (uuid.UUID, bool) {
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

// List godoc
// GET /api/v1/assignments?semester_id=&student_group_id=&teacher_id=&classroom_id=&subject_id=
func (h *AssignmentHandler) List(c *gin.Context) {
	semesterID, ok := h.semester(c)
	if !ok {
		return
	}
	f := model.AssignmentFilter{SemesterID: semesterID}
	for name, dst := range map[string]**uuid.UUID{
		"student_group_id": &f.StudentGroupID,
		"teacher_id":       &f.TeacherID,
		"classroom_id":     &f.ClassroomID,
		"subject_id":       &f.SubjectID,
	} {
		if *dst, ok = queryID(c, name); !ok {
			return
		}
	}

	views, err := h.assignmentService.List(c.Request.Context(), f)
	if err != nil {
		failErr(c, err)
		return
	}
	if views == nil {
		views = []model.AssignmentView{}
	}
	response.Success(c, http.StatusOK, gin.H{"semester_id": semesterID, "assignments": views})
}

// Get godoc
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	a, err := h.assignmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignment": a})
}

// Validate godoc
// POST /api/v1/assignments/validate
// Checks one classroom for a subject group without writing. Always 200.
func (h *AssignmentHandler) Validate(c *gin.Context) {
	var check model.AssignmentCheck
	if fields := validator.Bind(c, &check); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	result, err := h.assignmentService.Validate(c.Request.Context(), check)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Create godoc
// POST /api/v1/assignments
// Rejected with 422 and the validation result when any classroom has errors.
// With dry_run the result is returned and nothing is stored.
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req model.AssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	res, err := h.assignmentService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		failErr(c, err)
		return
	}
	status := http.StatusCreated
	if req.DryRun {
		status = http.StatusOK
	}
	response.Success(c, status, res)
}

// Update godoc
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.AssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	res, err := h.assignmentService.Update(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Delete godoc
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.assignmentService.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "assignment deleted successfully"})
}

// Unassigned godoc
// GET /api/v1/assignments/unassigned?semester_id=
// Subject groups without any classroom in the semester.
func (h *AssignmentHandler) Unassigned(c *gin.Context) {
	semesterID, ok := h.semester(c)
	if !ok {
		return
	}
	groups, err := h.assignmentService.Unassigned(c.Request.Context(), semesterID)
	if err != nil {
		failErr(c, err)
		return
	}
	if groups == nil {
		groups = []model.UnassignedGroup{}
	}
	response.Success(c, http.StatusOK, gin.H{"semester_id": semesterID, "subject_groups": groups})
}

// ScanConflicts godoc
// POST /api/v1/conflicts/scan?semester_id=
// Re-validates every assignment of the semester and replaces the stored findings.
func (h *AssignmentHandler) ScanConflicts(c *gin.Context) {
	semesterID, ok := h.semester(c)
	if !ok {
		return
	}
	scan, err := h.assignmentService.ScanConflicts(c.Request.Context(), semesterID)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, scan)
}

// ListConflicts godoc
// GET /api/v1/conflicts?semester_id=&include_resolved=
func (h *AssignmentHandler) ListConflicts(c *gin.Context) {
	semesterID, ok := h.semester(c)
	if !ok {
		return
	}
	conflicts, err := h.assignmentService.ListConflicts(c.Request.Context(), semesterID, c.Query("include_resolved") == "true")
	if err != nil {
		failErr(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []model.SchedulingConflict{}
	}
	response.Success(c, http.StatusOK, gin.H{"semester_id": semesterID, "conflicts": conflicts})
}

// ResolveConflict godoc
// PATCH /api/v1/conflicts/:id/resolve
func (h *AssignmentHandler) ResolveConflict(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.assignmentService.ResolveConflict(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "conflict resolved"})
}
