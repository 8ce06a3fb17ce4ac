package model

import (
	"time"

	"github.com/google/uuid"
)

// LicenseType describes how a software package is licensed.
type LicenseType string

const (
	LicenseFree        LicenseType = "free"
	LicenseEducational LicenseType = "educational"
	LicenseProprietary LicenseType = "proprietary"
)

// Software is an application that can be installed in classrooms.
type Software struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	Version          *string     `json:"version"`
	Category         *string     `json:"category"`
	LicenseType      LicenseType `json:"license_type"`
	OperatingSystems []string    `json:"operating_systems"`
	ExpiryDate       *time.Time  `json:"expiry_date"`
	ProviderName     *string     `json:"provider_name"`
	ProviderEmail    *string     `json:"provider_email"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// SoftwareRequest is the payload for creating or updating software.
type SoftwareRequest struct {
	Name             string      `json:"name" binding:"required,min=1,max=200"`
	Version          *string     `json:"version" binding:"omitempty,max=50"`
	Category         *string     `json:"category" binding:"omitempty,max=100"`
	LicenseType      LicenseType `json:"license_type" binding:"required,oneof=free educational proprietary"`
	OperatingSystems []string    `json:"operating_systems" binding:"omitempty,dive,oneof=windows macos linux"`
	ExpiryDate       string      `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	ProviderName     *string     `json:"provider_name" binding:"omitempty,max=200"`
	ProviderEmail    *string     `json:"provider_email" binding:"omitempty,email"`
}

// ClassroomSoftware is a software installation in a classroom.
type ClassroomSoftware struct {
	ClassroomID      uuid.UUID  `json:"classroom_id"`
	SoftwareID       uuid.UUID  `json:"software_id"`
	SoftwareName     string     `json:"software_name"`
	InstalledVersion *string    `json:"installed_version"`
	InstalledAt      *time.Time `json:"installed_at"`
}

// SoftwareRequirement links software to a subject or a subject group profile.
type SoftwareRequirement struct {
	SoftwareID   uuid.UUID `json:"software_id"`
	SoftwareName string    `json:"software_name"`
	IsRequired   bool      `json:"is_required"`
}

// LicenseStatus is derived from a licence expiry date.
type LicenseStatus string

const (
	LicenseOK           LicenseStatus = "ok"
	LicenseExpiringSoon LicenseStatus = "expiring_soon"
	LicenseExpired      LicenseStatus = "expired"
)

// LicenseAlert is a software licence that needs attention.
type LicenseAlert struct {
	SoftwareID      uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	Version         *string       `json:"version,omitempty"`
	ExpiryDate      time.Time     `json:"expiry_date"`
	DaysUntilExpiry int           `json:"days_until_expiry"`
	Status          LicenseStatus `json:"status"`
	ProviderName    *string       `json:"provider_name,omitempty"`
	ProviderEmail   *string       `json:"provider_email,omitempty"`
}
