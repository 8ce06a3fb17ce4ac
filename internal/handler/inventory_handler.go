package handler

import (
	"net/http"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/Josepmarimon/bau-assist-sub002/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler handles software, equipment types and equipment inventory.
type InventoryHandler struct {
	inventoryService *service.InventoryService
	licenseService   *service.LicenseService
}

func NewInventoryHandler(inventoryService *service.InventoryService, licenseService *service.LicenseService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, licenseService: licenseService}
}

// ListSoftware godoc
// GET /api/v1/software?search=&category=
func (h *InventoryHandler) ListSoftware(c *gin.Context) {
	list, err := h.inventoryService.ListSoftware(c.Request.Context(), strings.TrimSpace(c.Query("search")), c.Query("category"))
	if err != nil {
		failErr(c, err)
		return
	}
	if list == nil {
		list = []model.Software{}
	}
	response.Success(c, http.StatusOK, gin.H{"software": list})
}

// GetSoftware godoc
// GET /api/v1/software/:id
func (h *InventoryHandler) GetSoftware(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sw, err := h.inventoryService.GetSoftware(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"software": sw})
}

// CreateSoftware godoc
// POST /api/v1/software
func (h *InventoryHandler) CreateSoftware(c *gin.Context) {
	var req model.SoftwareRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	sw, err := h.inventoryService.CreateSoftware(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"software": sw})
}

// UpdateSoftware godoc
// PUT /api/v1/software/:id
func (h *InventoryHandler) UpdateSoftware(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.SoftwareRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	sw, err := h.inventoryService.UpdateSoftware(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"software": sw})
}

// DeleteSoftware godoc
// DELETE /api/v1/software/:id
func (h *InventoryHandler) DeleteSoftware(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.inventoryService.DeleteSoftware(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "software deleted successfully"})
}

// LicenseAlerts godoc
// GET /api/v1/software/licenses/alerts
// Expired licences and licences expiring within the alert window.
func (h *InventoryHandler) LicenseAlerts(c *gin.Context) {
	alerts, err := h.licenseService.Alerts(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if alerts == nil {
		alerts = []model.LicenseAlert{}
	}
	response.Success(c, http.StatusOK, gin.H{"alerts": alerts})
}

// ListTypes godoc
// GET /api/v1/equipment-types?category=
func (h *InventoryHandler) ListTypes(c *gin.Context) {
	types, err := h.inventoryService.ListTypes(c.Request.Context(), c.Query("category"))
	if err != nil {
		failErr(c, err)
		return
	}
	if types == nil {
		types = []model.EquipmentType{}
	}
	response.Success(c, http.StatusOK, gin.H{"equipment_types": types})
}

// GetType godoc
// GET /api/v1/equipment-types/:id
func (h *InventoryHandler) GetType(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := h.inventoryService.GetType(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment_type": t})
}

// SaveType godoc
// POST /api/v1/equipment-types
// PUT  /api/v1/equipment-types/:id
func (h *InventoryHandler) SaveType(c *gin.Context) {
	id := uuid.Nil
	if c.Param("id") != "" {
		var ok bool
		if id, ok = paramID(c, "id"); !ok {
			return
		}
	}
	var req model.EquipmentTypeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	t, err := h.inventoryService.SaveType(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	status := http.StatusOK
	if id == uuid.Nil {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"equipment_type": t})
}

// DeleteType godoc
// DELETE /api/v1/equipment-types/:id
func (h *InventoryHandler) DeleteType(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.inventoryService.DeleteType(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "equipment type deleted successfully"})
}

// ListInventory godoc
// GET /api/v1/equipment?classroom_id=
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	classroomID, ok := queryID(c, "classroom_id")
	if !ok {
		return
	}
	items, err := h.inventoryService.ListInventory(c.Request.Context(), classroomID)
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []model.EquipmentInventory{}
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": items})
}

// SaveInventory godoc
// POST /api/v1/equipment
// PUT  /api/v1/equipment/:id
func (h *InventoryHandler) SaveInventory(c *gin.Context) {
	id := uuid.Nil
	if c.Param("id") != "" {
		var ok bool
		if id, ok = paramID(c, "id"); !ok {
			return
		}
	}
	var req model.EquipmentInventoryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	item, err := h.inventoryService.SaveInventory(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	status := http.StatusOK
	if id == uuid.Nil {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"equipment": item})
}

// DeleteInventory godoc
// DELETE /api/v1/equipment/:id
func (h *InventoryHandler) DeleteInventory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.inventoryService.DeleteInventory(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "equipment deleted successfully"})
}
