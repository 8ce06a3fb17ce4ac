package handler

import (
	"net/http"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/middleware"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/Josepmarimon/bau-assist-sub002/internal/validator"
	"github.com/gin-gonic/gin"
)

type SubjectHandler struct {
	subjectService *service.SubjectService
}

func NewSubjectHandler(subjectService *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// List godoc
// GET /api/v1/subjects?search=&year=&type=&program_id=&page=&per_page=
func (h *SubjectHandler) List(c *gin.Context) {
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	programID, ok := queryID(c, "program_id")
	if !ok {
		return
	}
	page, perPage, offset := pageParams(c)

	f := model.SubjectFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Year:      year,
		Type:      model.SubjectType(strings.ToUpper(c.Query("type"))),
		ProgramID: programID,
	}
	subjects, total, err := h.subjectService.List(c.Request.Context(), f, perPage, offset)
	if err != nil {
		failErr(c, err)
		return
	}
	if subjects == nil {
		subjects = []model.Subject{}
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"subjects": subjects}, response.NewPagination(page, perPage, total))
}

// Get godoc
// GET /api/v1/subjects/:id
func (h *SubjectHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sub, err := h.subjectService.GetByID(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subject": sub})
}

// Create godoc
// POST /api/v1/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var req model.SubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.subjectService.Create(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"subject": sub})
}

// Update godoc
// PUT /api/v1/subjects/:id
func (h *SubjectHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.SubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.subjectService.Update(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subject": sub})
}

// Delete godoc
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.subjectService.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "subject deleted successfully"})
}

// ListGroups godoc
// GET /api/v1/subject-groups?subject_id=&semester_id=
func (h *SubjectHandler) ListGroups(c *gin.Context) {
	subjectID, ok := queryID(c, "subject_id")
	if !ok {
		return
	}
	semesterID, ok := queryID(c, "semester_id")
	if !ok {
		return
	}
	groups, err := h.subjectService.ListGroups(c.Request.Context(), subjectID, semesterID)
	if err != nil {
		failErr(c, err)
		return
	}
	if groups == nil {
		groups = []model.SubjectGroup{}
	}
	response.Success(c, http.StatusOK, gin.H{"subject_groups": groups})
}

// GetGroup godoc
// GET /api/v1/subject-groups/:id
func (h *SubjectHandler) GetGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	g, err := h.subjectService.GetGroup(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subject_group": g})
}

// CreateGroup godoc
// POST /api/v1/subject-groups
func (h *SubjectHandler) CreateGroup(c *gin.Context) {
	var req model.SubjectGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	g, err := h.subjectService.CreateGroup(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"subject_group": g})
}

// UpdateGroup godoc
// PUT /api/v1/subject-groups/:id
func (h *SubjectHandler) UpdateGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.SubjectGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	g, err := h.subjectService.UpdateGroup(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subject_group": g})
}

// DeleteGroup godoc
// DELETE /api/v1/subject-groups/:id
func (h *SubjectHandler) DeleteGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.subjectService.DeleteGroup(c.Request.Context(), middleware.Actor(c), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "subject group deleted successfully"})
}

// GetRequirements godoc
// GET /api/v1/subjects/:id/requirements
// Software and equipment the subject needs when it has no profiles.
func (h *SubjectHandler) GetRequirements(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reqs, err := h.subjectService.Requirements(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, reqs)
}

// SetRequirements godoc
// PUT /api/v1/subjects/:id/requirements
func (h *SubjectHandler) SetRequirements(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.RequirementsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	reqs, err := h.subjectService.SetRequirements(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, reqs)
}
