package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSemesterNumber(t *testing.T) {
	assert.Equal(t, 1, semesterNumber(time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, semesterNumber(time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, semesterNumber(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, semesterNumber(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
}
