package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 0, 41)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPagination(2, 500, 0)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.TotalPages)
}

func TestRequestIDPropagation(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrNotFound)
	})

	const id = "8a4a3e0c-5f4e-4f36-9d0a-0f2f5b1c9a11"
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", id)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, id, body.Metadata.RequestID)
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrNotFound, body.Error.Code)
	assert.Equal(t, GetMessage(ErrNotFound), body.Error.Message)
}

func TestRequestIDRejectsGarbage(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) { Success(c, http.StatusOK, nil) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "<script>")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.NotEqual(t, "<script>", rec.Header().Get("X-Request-ID"))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestFailWithData(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		FailWithData(c, http.StatusUnprocessableEntity, ErrAssignmentConflict, gin.H{"errors": []string{"a"}})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ASSIGNMENT_CONFLICT"`)
	assert.Contains(t, rec.Body.String(), `"errors":["a"]`)
}
