package handler

import (
	"net/http"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/schedule"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/Josepmarimon/bau-assist-sub002/internal/validator"
	"github.com/gin-gonic/gin"
)

// StudentGroupHandler handles student groups and weekly time slots.
type StudentGroupHandler struct {
	groupService *service.StudentGroupService
}

func NewStudentGroupHandler(groupService *service.StudentGroupService) *StudentGroupHandler {
	return &StudentGroupHandler{groupService: groupService}
}

// List godoc
// GET /api/v1/student-groups?year=&shift=
func (h *StudentGroupHandler) List(c *gin.Context) {
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	groups, err := h.groupService.List(c.Request.Context(), year, model.Shift(c.Query("shift")))
	if err != nil {
		failErr(c, err)
		return
	}
	if groups == nil {
		groups = []model.StudentGroup{}
	}
	response.Success(c, http.StatusOK, gin.H{"student_groups": groups})
}

// Get godoc
// GET /api/v1/student-groups/:id
func (h *StudentGroupHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	g, err := h.groupService.GetByID(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student_group": g})
}

// Create godoc
// POST /api/v1/student-groups
func (h *StudentGroupHandler) Create(c *gin.Context) {
	var req model.StudentGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	g, err := h.groupService.Create(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"student_group": g})
}

// Update godoc
// PUT /api/v1/student-groups/:id
func (h *StudentGroupHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.StudentGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	g, err := h.groupService.Update(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student_group": g})
}

// Delete godoc
// DELETE /api/v1/student-groups/:id
func (h *StudentGroupHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.groupService.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "student group deleted successfully"})
}

// ListSlots godoc
// GET /api/v1/time-slots
func (h *StudentGroupHandler) ListSlots(c *gin.Context) {
	slots, err := h.groupService.ListSlots(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if slots == nil {
		slots = []model.TimeSlot{}
	}
	response.Success(c, http.StatusOK, gin.H{"time_slots": slots})
}

// CreateSlot godoc
// POST /api/v1/time-slots
// Returns the existing slot when one with the same day and times exists.
func (h *StudentGroupHandler) CreateSlot(c *gin.Context) {
	var req model.TimeSlotRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	slot, err := h.groupService.FindOrCreateSlot(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"time_slot": slot})
}

type periodSlotRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	Period    string `json:"period" binding:"required,oneof=mati tarda"`
}

// PeriodSlot godoc
// POST /api/v1/time-slots/period
// Finds or creates the standard morning or afternoon slot of a weekday.
func (h *StudentGroupHandler) PeriodSlot(c *gin.Context) {
	var req periodSlotRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	slot, err := h.groupService.PeriodSlot(c.Request.Context(), req.DayOfWeek, schedule.Period(req.Period))
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"time_slot": slot})
}

// DeleteSlot godoc
// DELETE /api/v1/time-slots/:id
func (h *StudentGroupHandler) DeleteSlot(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.groupService.DeleteSlot(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "time slot deleted successfully"})
}
