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

// ProfileHandler handles subject group profiles and their classroom bookings.
type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// List godoc
// GET /api/v1/subjects/:id/profiles
func (h *ProfileHandler) List(c *gin.Context) {
	subjectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	profiles, err := h.profileService.ListBySubject(c.Request.Context(), subjectID)
	if err != nil {
		failErr(c, err)
		return
	}
	if profiles == nil {
		profiles = []model.SubjectGroupProfile{}
	}
	response.Success(c, http.StatusOK, gin.H{"profiles": profiles})
}

// Get godoc
// GET /api/v1/profiles/:id
func (h *ProfileHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.profileService.GetByID(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

// Save godoc
// POST /api/v1/profiles
// PUT  /api/v1/profiles/:id
// Members, software and equipment are replaced as a whole.
func (h *ProfileHandler) Save(c *gin.Context) {
	id := uuid.Nil
	if c.Param("id") != "" {
		var ok bool
		if id, ok = paramID(c, "id"); !ok {
			return
		}
	}
	var req model.ProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	p, err := h.profileService.Save(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	status := http.StatusOK
	if id == uuid.Nil {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"profile": p})
}

// Delete godoc
// DELETE /api/v1/profiles/:id
func (h *ProfileHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.profileService.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "profile deleted successfully"})
}

// ListAssignments godoc
// GET /api/v1/profiles/:id/assignments?semester_id=
func (h *ProfileHandler) ListAssignments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	semesterID, ok := queryID(c, "semester_id")
	if !ok {
		return
	}
	list, err := h.profileService.ListAssignments(c.Request.Context(), id, semesterID)
	if err != nil {
		failErr(c, err)
		return
	}
	if list == nil {
		list = []model.ProfileAssignment{}
	}
	response.Success(c, http.StatusOK, gin.H{"assignments": list})
}

// Validate godoc
// POST /api/v1/profiles/validate
// Always 200: the result says whether the booking would be accepted.
func (h *ProfileHandler) Validate(c *gin.Context) {
	var check model.ProfileCheck
	if fields := validator.Bind(c, &check); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	result, err := h.profileService.Validate(c.Request.Context(), check)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// CreateAssignment godoc
// POST /api/v1/profiles/:id/assignments
// Rejected with 422 and the validation result when the booking has errors.
func (h *ProfileHandler) CreateAssignment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ProfileAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	res, err := h.profileService.CreateAssignment(c.Request.Context(), middleware.Actor(c), id, req)
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

// DeleteAssignment godoc
// DELETE /api/v1/profile-assignments/:id
func (h *ProfileHandler) DeleteAssignment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.profileService.DeleteAssignment(c.Request.Context(), middleware.Actor(c), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "profile booking deleted successfully"})
}
