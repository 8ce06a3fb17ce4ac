package handler

import (
	"net/http"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/Josepmarimon/bau-assist-sub002/internal/validator"
	"github.com/gin-gonic/gin"
)

// ClassroomHandler serves classrooms and the public classroom directory.
type ClassroomHandler struct {
	classroomService *service.ClassroomService
	inventoryService *service.InventoryService
}

func NewClassroomHandler(classroomService *service.ClassroomService, inventoryService *service.InventoryService) *ClassroomHandler {
	return &ClassroomHandler{classroomService: classroomService, inventoryService: inventoryService}
}

// List godoc
// GET /api/v1/classrooms?search=&building=&type=&min_capacity=&active=
func (h *ClassroomHandler) List(c *gin.Context) {
	minCapacity, ok := queryInt(c, "min_capacity")
	if !ok {
		return
	}
	f := model.ClassroomFilter{
		Search:      strings.TrimSpace(c.Query("search")),
		Building:    c.Query("building"),
		Type:        model.ClassroomType(c.Query("type")),
		MinCapacity: minCapacity,
		OnlyActive:  c.Query("active") == "true",
	}
	classrooms, err := h.classroomService.List(c.Request.Context(), f)
	if err != nil {
		failErr(c, err)
		return
	}
	if classrooms == nil {
		classrooms = []model.Classroom{}
	}
	response.Success(c, http.StatusOK, gin.H{"classrooms": classrooms})
}

// Buildings godoc
// GET /api/v1/classrooms/buildings
func (h *ClassroomHandler) Buildings(c *gin.Context) {
	buildings, err := h.classroomService.Buildings(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if buildings == nil {
		buildings = []string{}
	}
	response.Success(c, http.StatusOK, gin.H{"buildings": buildings})
}

// Get godoc
// GET /api/v1/classrooms/:id
// Includes installed software and equipment.
func (h *ClassroomHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.classroomService.Detail(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"classroom": detail})
}

// Create godoc
// POST /api/v1/classrooms
func (h *ClassroomHandler) Create(c *gin.Context) {
	var req model.ClassroomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	room, err := h.classroomService.Create(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"classroom": room})
}

// Update godoc
// PUT /api/v1/classrooms/:id
func (h *ClassroomHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.ClassroomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	room, err := h.classroomService.Update(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"classroom": room})
}

// Delete godoc
// DELETE /api/v1/classrooms/:id
func (h *ClassroomHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.classroomService.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "classroom deleted successfully"})
}

// ListSoftware godoc
// GET /api/v1/classrooms/:id/software
func (h *ClassroomHandler) ListSoftware(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	installed, err := h.inventoryService.Installed(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	if installed == nil {
		installed = []model.ClassroomSoftware{}
	}
	response.Success(c, http.StatusOK, gin.H{"software": installed})
}

// InstallSoftware godoc
// POST /api/v1/classrooms/:id/software
func (h *ClassroomHandler) InstallSoftware(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.InstallRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	cs, err := h.inventoryService.Install(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"installation": cs})
}

// UninstallSoftware godoc
// DELETE /api/v1/classrooms/:id/software/:software_id
func (h *ClassroomHandler) UninstallSoftware(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	softwareID, ok := paramID(c, "software_id")
	if !ok {
		return
	}
	if err := h.inventoryService.Uninstall(c.Request.Context(), id, softwareID); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "software uninstalled successfully"})
}
