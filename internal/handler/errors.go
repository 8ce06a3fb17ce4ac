package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/importer"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// failErr maps a service error onto the API envelope. Unknown errors are logged with
// the request logger and reported as internal.
func failErr(c *gin.Context, err error) {
	var vf *service.ValidationFailedError
	var pgErr *pgconn.PgError

	switch {
	case errors.As(err, &vf):
		response.FailWithData(c, http.StatusUnprocessableEntity, response.ErrAssignmentConflict, vf.Result)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSemesterRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrSemesterRequired)
	case errors.Is(err, service.ErrNoCurrentSemester):
		response.Fail(c, http.StatusNotFound, response.ErrNoCurrentSemester)
	case errors.Is(err, service.ErrUnknownImportKind):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownImport)
	case errors.Is(err, importer.ErrUnsupportedFormat):
		response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
	case errors.Is(err, service.ErrInvalidInput):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, map[string]string{
			"detail": strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": "),
		})
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation:
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// paramID parses a uuid path parameter, answering 400 when malformed.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional uuid query parameter.
func queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, map[string]string{name: "must be a valid uuid"})
		return nil, false
	}
	return &id, true
}

// queryInt parses an optional integer query parameter, 0 when absent.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, map[string]string{name: "must be an integer"})
		return 0, false
	}
	return n, true
}

// pageParams reads ?page= and ?per_page= and returns page, perPage, offset.
func pageParams(c *gin.Context) (int, int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	page, perPage = response.ClampPage(page, perPage)
	return page, perPage, (page - 1) * perPage
}
