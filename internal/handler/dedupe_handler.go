package handler

import (
	"net/http"

	"github.com/Josepmarimon/bau-assist-sub002/internal/matching"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/Josepmarimon/bau-assist-sub002/internal/validator"
	"github.com/gin-gonic/gin"
)

// DedupeHandler finds catalogue entries that probably name the same thing.
type DedupeHandler struct {
	dedupeService *service.DedupeService
}

func NewDedupeHandler(dedupeService *service.DedupeService) *DedupeHandler {
	return &DedupeHandler{dedupeService: dedupeService}
}

// Candidates godoc
// GET /api/v1/dedupe/:target?min=exact|high|medium|partial
func (h *DedupeHandler) Candidates(c *gin.Context) {
	target, err := service.ParseDedupeTarget(c.Param("target"))
	if err != nil {
		failErr(c, err)
		return
	}
	pairs, err := h.dedupeService.Candidates(c.Request.Context(), target, matching.ParseMatchType(c.Query("min")))
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"target": target, "candidates": pairs})
}

type matchNamesRequest struct {
	Names []string `json:"names" binding:"required,min=1,max=2000"`
}

// MatchNames godoc
// POST /api/v1/dedupe/:target/match
// Finds the closest catalogue entry for each posted name.
func (h *DedupeHandler) MatchNames(c *gin.Context) {
	target, err := service.ParseDedupeTarget(c.Param("target"))
	if err != nil {
		failErr(c, err)
		return
	}
	var req matchNamesRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	matches, err := h.dedupeService.MatchNames(c.Request.Context(), target, req.Names)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"target": target, "matches": matches})
}
