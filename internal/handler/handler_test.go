package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/importer"
	"github.com/Josepmarimon/bau-assist-sub002/internal/middleware"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func serve(h gin.HandlerFunc, route, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, h)
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestFailErr(t *testing.T) {
	result := model.NewValidationResult()
	result.IsValid = false
	result.Errors = []string{"L'aula P.1.3 ja està ocupada"}

	tests := []struct {
		name   string
		err    error
		status int
		code   response.ErrCode
	}{
		{"validation failed", fmt.Errorf("create: %w", &service.ValidationFailedError{Result: result}), http.StatusUnprocessableEntity, response.ErrAssignmentConflict},
		{"not found", service.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
		{"no rows", fmt.Errorf("get: %w", pgx.ErrNoRows), http.StatusNotFound, response.ErrNotFound},
		{"semester required", service.ErrSemesterRequired, http.StatusBadRequest, response.ErrSemesterRequired},
		{"no current semester", service.ErrNoCurrentSemester, http.StatusNotFound, response.ErrNoCurrentSemester},
		{"unknown import kind", service.ErrUnknownImportKind, http.StatusBadRequest, response.ErrUnknownImport},
		{"unsupported file", importer.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile},
		{"invalid input", fmt.Errorf("%w: end before start", service.ErrInvalidInput), http.StatusBadRequest, response.ErrInvalidPayload},
		{"unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict, response.ErrConflict},
		{"foreign key violation", fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"}), http.StatusConflict, response.ErrDependencyExists},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(func(c *gin.Context) { failErr(c, tt.err) }, "/x", http.MethodGet, "/x", nil, "")
			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestFailErrCarriesValidationResult(t *testing.T) {
	result := model.NewValidationResult()
	result.IsValid = false
	result.Errors = []string{"Capacitat insuficient"}
	result.Warnings = []string{"El professor supera les hores màximes"}

	rec := serve(func(c *gin.Context) { failErr(c, &service.ValidationFailedError{Result: result}) }, "/x", http.MethodPost, "/x", nil, "")
	env := decode(t, rec)

	var got model.ValidationResult
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.False(t, got.IsValid)
	assert.Equal(t, result.Errors, got.Errors)
	assert.Equal(t, result.Warnings, got.Warnings)
}

func TestFailErrInvalidInputDetail(t *testing.T) {
	rec := serve(func(c *gin.Context) {
		failErr(c, fmt.Errorf("%w: end_time must be after start_time", service.ErrInvalidInput))
	}, "/x", http.MethodPost, "/x", nil, "")
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "end_time must be after start_time", env.Error.Fields["detail"])
}

func TestParamAndQueryIDs(t *testing.T) {
	id := uuid.New()
	h := func(c *gin.Context) {
		pid, ok := paramID(c, "id")
		if !ok {
			return
		}
		qid, ok := queryID(c, "semester_id")
		if !ok {
			return
		}
		year, ok := queryInt(c, "year")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": pid, "semester": qid, "year": year})
	}

	rec := serve(h, "/items/:id", http.MethodGet, "/items/"+id.String()+"?year=2", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%q,"semester":null,"year":2}`, id), rec.Body.String())

	rec = serve(h, "/items/:id", http.MethodGet, "/items/P.1.3", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.ErrInvalidID, decode(t, rec).Error.Code)

	rec = serve(h, "/items/:id", http.MethodGet, "/items/"+id.String()+"?semester_id=primer", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, response.ErrInvalidQuery, env.Error.Code)
	assert.Contains(t, env.Error.Fields, "semester_id")

	rec = serve(h, "/items/:id", http.MethodGet, "/items/"+id.String()+"?year=segon", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPageParams(t *testing.T) {
	var page, perPage, offset int
	h := func(c *gin.Context) {
		page, perPage, offset = pageParams(c)
		c.Status(http.StatusNoContent)
	}

	serve(h, "/x", http.MethodGet, "/x?page=3&per_page=25", nil, "")
	assert.Equal(t, []int{3, 25, 50}, []int{page, perPage, offset})

	serve(h, "/x", http.MethodGet, "/x?page=0&per_page=1000", nil, "")
	assert.Equal(t, []int{1, 100, 0}, []int{page, perPage, offset})
}

func multipartForm(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if withFile {
		fw, err := w.CreateFormFile("file", "professors.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte("code;first_name;last_name\nP001;Anna;Puig\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestImportOptions(t *testing.T) {
	semesterID := uuid.New()
	var opts model.ImportOptions
	var fields map[string]string
	h := func(c *gin.Context) {
		opts, fields = importOptions(c)
		c.Status(http.StatusNoContent)
	}

	body, ct := multipartForm(t, map[string]string{
		"dry_run":     "true",
		"sheet":       "Horaris",
		"delimiter":   ";",
		"skip_rows":   "2",
		"semester_id": semesterID.String(),
	}, false)
	serve(h, "/x", http.MethodPost, "/x", body, ct)

	assert.Nil(t, fields)
	assert.True(t, opts.DryRun)
	assert.Equal(t, "Horaris", opts.Sheet)
	assert.Equal(t, ";", opts.Delimiter)
	assert.Equal(t, 2, opts.SkipRows)
	require.NotNil(t, opts.SemesterID)
	assert.Equal(t, semesterID, *opts.SemesterID)

	body, ct = multipartForm(t, map[string]string{"skip_rows": "-1", "semester_id": "primer"}, false)
	serve(h, "/x", http.MethodPost, "/x", body, ct)
	assert.Contains(t, fields, "skip_rows")
	assert.Contains(t, fields, "semester_id")
}

func TestUploadRejectsBadRequests(t *testing.T) {
	h := NewImportHandler(nil, nil, 1024)

	rec := serve(h.Upload, "/imports/:kind", http.MethodPost, "/imports/rooms", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.ErrUnknownImport, decode(t, rec).Error.Code)

	body, ct := multipartForm(t, map[string]string{"dry_run": "true"}, false)
	rec = serve(h.Upload, "/imports/:kind", http.MethodPost, "/imports/teachers", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.ErrFileRequired, decode(t, rec).Error.Code)

	body, ct = multipartForm(t, map[string]string{"skip_rows": "x"}, true)
	rec = serve(h.Upload, "/imports/:kind", http.MethodPost, "/imports/teachers", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.ErrValidation, decode(t, rec).Error.Code)

	small := NewImportHandler(nil, nil, 8)
	body, ct = multipartForm(t, nil, true)
	rec = serve(small.Upload, "/imports/:kind", http.MethodPost, "/imports/teachers", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGroupTimetableRequiresGroup(t *testing.T) {
	h := NewExportHandler(nil, nil)

	rec := serve(h.GroupTimetable, "/timetables", http.MethodGet, "/timetables?format=pdf", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, response.ErrValidation, env.Error.Code)
	assert.Contains(t, env.Error.Fields, "student_group_id")

	rec = serve(h.GroupTimetable, "/timetables", http.MethodGet, "/timetables?format=docx", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func authRouter(auth *service.AuthService, h gin.HandlerFunc, method, path string) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, middleware.RequireJWT(auth), h)
	return r
}

func TestAuthMe(t *testing.T) {
	auth := service.NewAuthService(&config.Config{JWTSecret: "s", JWTIssuer: "bau-assist-test", JWTExpiry: time.Hour}, nil)
	issued, err := auth.IssueToken("secretaria", []string{string(model.PermissionCatalogRead)}, time.Hour)
	require.NoError(t, err)

	h := NewAuthHandler(auth)
	r := authRouter(auth, h.Me, http.MethodGet, "/auth/me")
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Subject     string   `json:"subject"`
		JTI         string   `json:"jti"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &me))
	assert.Equal(t, "secretaria", me.Subject)
	assert.Equal(t, issued.ID, me.JTI)
	assert.Equal(t, []string{"catalog:read"}, me.Permissions)
}

func TestSemesterFilter(t *testing.T) {
	s1, s2 := uuid.New(), uuid.New()
	f := &semesterFilter{}
	assert.True(t, f.match(model.ScheduleEvent{SemesterID: s1}))

	f.set(&s1)
	assert.True(t, f.match(model.ScheduleEvent{SemesterID: s1}))
	assert.False(t, f.match(model.ScheduleEvent{SemesterID: s2}))

	f.set(nil)
	assert.True(t, f.match(model.ScheduleEvent{SemesterID: s2}))
}

func TestUpgraderOrigins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/v1/schedule", nil)
	req.Header.Set("Origin", "https://assist.bau.cat")

	assert.True(t, buildUpgrader(nil).CheckOrigin(req))
	assert.True(t, buildUpgrader([]string{"https://ASSIST.bau.cat"}).CheckOrigin(req))
	assert.False(t, buildUpgrader([]string{"https://other.example"}).CheckOrigin(req))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 42s", formatDuration(42*time.Second))
	assert.Equal(t, "2h 5m 0s", formatDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "1d 1h 0m 3s", formatDuration(25*time.Hour+3*time.Second))
}
