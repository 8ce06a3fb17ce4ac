package handler

import (
	"net/http"
	"strconv"

	"github.com/Josepmarimon/bau-assist-sub002/internal/middleware"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ImportHandler accepts catalogue and timetable files and reports on import jobs.
type ImportHandler struct {
	importService   *service.ImportService
	calendarService *service.CalendarService
	maxUploadBytes  int64
}

func NewImportHandler(importService *service.ImportService, calendarService *service.CalendarService, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{importService: importService, calendarService: calendarService, maxUploadBytes: maxUploadBytes}
}

// Kinds godoc
// GET /api/v1/imports/kinds
func (h *ImportHandler) Kinds(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"kinds": model.ImportKinds})
}

// Upload godoc
// POST /api/v1/imports/:kind (multipart: file, dry_run, sheet, encoding, delimiter, skip_rows, semester_id)
// Stores the file and queues it; poll the returned job for the report.
// Assignment imports without semester_id use the current semester.
func (h *ImportHandler) Upload(c *gin.Context) {
	kind := model.ImportKind(c.Param("kind"))
	if !kind.Valid() {
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownImport)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()
	if header.Size > h.maxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	opts, fields := importOptions(c)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if kind == model.ImportAssignments {
		semesterID, err := h.calendarService.ResolveSemester(c.Request.Context(), opts.SemesterID)
		if err != nil {
			failErr(c, err)
			return
		}
		opts.SemesterID = &semesterID
	}

	job, err := h.importService.Submit(c.Request.Context(), middleware.Actor(c), kind, header.Filename, file, opts)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"job": job})
}

func importOptions(c *gin.Context) (model.ImportOptions, map[string]string) {
	opts := model.ImportOptions{
		DryRun:    c.PostForm("dry_run") == "true",
		Sheet:     c.PostForm("sheet"),
		Encoding:  c.PostForm("encoding"),
		Delimiter: c.PostForm("delimiter"),
	}
	fields := map[string]string{}
	if raw := c.PostForm("skip_rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields["skip_rows"] = "must be a non-negative integer"
		}
		opts.SkipRows = n
	}
	if raw := c.PostForm("semester_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fields["semester_id"] = "must be a valid uuid"
		}
		opts.SemesterID = &id
	}
	if len(fields) > 0 {
		return opts, fields
	}
	return opts, nil
}

// GetJob godoc
// GET /api/v1/imports/jobs/:id
func (h *ImportHandler) GetJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	job, err := h.importService.GetJob(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"job": job})
}
