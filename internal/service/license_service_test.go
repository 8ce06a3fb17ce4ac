package service

import (
	"testing"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestLicenseStatusOf(t *testing.T) {
	today := time.Date(2025, 10, 1, 15, 30, 0, 0, time.UTC)

	status, days := LicenseStatusOf(time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), today, 30)
	assert.Equal(t, model.LicenseExpired, status)
	assert.Equal(t, -1, days)

	status, days = LicenseStatusOf(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), today, 30)
	assert.Equal(t, model.LicenseExpiringSoon, status)
	assert.Equal(t, 0, days)

	status, days = LicenseStatusOf(time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC), today, 30)
	assert.Equal(t, model.LicenseExpiringSoon, status)
	assert.Equal(t, 30, days)

	status, _ = LicenseStatusOf(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), today, 30)
	assert.Equal(t, model.LicenseOK, status)
}
