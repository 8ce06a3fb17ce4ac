package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionCatalogRead allows viewing subjects, teachers, classrooms, groups and calendars.
	PermissionCatalogRead Permission = "catalog:read"

	// PermissionCatalogWrite allows creating, updating, and deleting catalogue entities.
	PermissionCatalogWrite Permission = "catalog:write"

	// PermissionScheduleRead allows viewing assignments, timetables and occupancy.
	PermissionScheduleRead Permission = "schedule:read"

	// PermissionScheduleWrite allows creating, updating, and deleting assignments.
	PermissionScheduleWrite Permission = "schedule:write"

	// PermissionInventoryWrite allows managing software installations and equipment.
	PermissionInventoryWrite Permission = "inventory:write"

	// PermissionImportsRun allows uploading files for import.
	PermissionImportsRun Permission = "imports:run"

	// PermissionReportsRead allows viewing dashboards, exports and licence alerts.
	PermissionReportsRead Permission = "reports:read"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionCatalogRead,
	PermissionCatalogWrite,
	PermissionScheduleRead,
	PermissionScheduleWrite,
	PermissionInventoryWrite,
	PermissionImportsRun,
	PermissionReportsRead,
}

// ValidPermission reports whether code names a known permission.
func ValidPermission(code string) bool {
	for _, p := range AllPermissions {
		if string(p) == code {
			return true
		}
	}
	return false
}
