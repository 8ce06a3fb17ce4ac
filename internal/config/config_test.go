package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SEMESTER_WEEKS", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, 15, cfg.SemesterWeeks)
	assert.Equal(t, 10*time.Minute, cfg.OccupancyTTL)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEMESTER_WEEKS", "18")
	t.Setenv("MAX_DB_CONNS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " https://bau.cat , ,https://admin.bau.cat")
	t.Setenv("LICENSE_ALERT_RECIPIENTS", "it@bau.cat")

	cfg := Load()

	assert.Equal(t, 18, cfg.SemesterWeeks)
	assert.Equal(t, int32(16), cfg.MaxDBConns)
	assert.Equal(t, []string{"https://bau.cat", "https://admin.bau.cat"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"it@bau.cat"}, cfg.LicenseAlertRecipients)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "occupancy:s1:classroom:c1", CacheKey.ClassroomOccupancyKey("s1", "c1"))
	assert.Equal(t, "occupancy:s1:*", CacheKey.SemesterOccupancyPattern("s1"))
	assert.Equal(t, "token:revoked:abc", CacheKey.RevokedTokenKey("abc"))
}
