package router

import (
	"context"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/handler"
	"github.com/Josepmarimon/bau-assist-sub002/internal/metrics"
	"github.com/Josepmarimon/bau-assist-sub002/internal/middleware"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Calendar     *handler.CalendarHandler
	Subject      *handler.SubjectHandler
	Teacher      *handler.TeacherHandler
	Classroom    *handler.ClassroomHandler
	StudentGroup *handler.StudentGroupHandler
	Inventory    *handler.InventoryHandler
	Profile      *handler.ProfileHandler
	Assignment   *handler.AssignmentHandler
	Occupancy    *handler.OccupancyHandler
	Dashboard    *handler.DashboardHandler
	Import       *handler.ImportHandler
	Export       *handler.ExportHandler
	Dedupe       *handler.DedupeHandler
	WS           *handler.WSHandler
	System       *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background helpers such as the public rate limiter's cleanup loop.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	m *metrics.Metrics,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the recovery and metrics middlewares see the request logger.
	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics(m))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	perm := middleware.RequirePermission
	catalogRead := perm(model.PermissionCatalogRead)
	catalogWrite := perm(model.PermissionCatalogWrite)
	scheduleRead := perm(model.PermissionScheduleRead)
	scheduleWrite := perm(model.PermissionScheduleWrite)
	inventoryWrite := perm(model.PermissionInventoryWrite)
	importsRun := perm(model.PermissionImportsRun)
	reportsRead := perm(model.PermissionReportsRead)

	// ─── 0. Public Group (No Auth, Rate Limited) ───────────────────────
	publicLimiter := middleware.NewRateLimiter(ctx, cfg.PublicRatePerMinute, time.Minute)
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(publicLimiter.Middleware(), middleware.CacheControl(60))
	{
		publicAPI.GET("/classrooms", handlers.Classroom.List)
		publicAPI.GET("/classrooms/:id", handlers.Classroom.Get)
		publicAPI.GET("/software", handlers.Inventory.ListSoftware)
		publicAPI.GET("/student-groups", handlers.StudentGroup.List)
		publicAPI.GET("/timetables", handlers.Export.GroupTimetable)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.RequireJWT(authService))

	// ─── 1. Auth ───────────────────────────────────────────────────────
	{
		api.GET("/auth/me", handlers.Auth.Me)
		api.POST("/auth/logout", handlers.Auth.Logout)
	}

	// ─── 2. Calendar ───────────────────────────────────────────────────
	{
		api.GET("/academic-years", catalogRead, handlers.Calendar.ListYears)
		api.GET("/academic-years/:id", catalogRead, handlers.Calendar.GetYear)
		api.POST("/academic-years", catalogWrite, handlers.Calendar.CreateYear)
		api.PUT("/academic-years/:id", catalogWrite, handlers.Calendar.UpdateYear)
		api.DELETE("/academic-years/:id", catalogWrite, handlers.Calendar.DeleteYear)

		api.GET("/semesters", catalogRead, handlers.Calendar.ListSemesters)
		api.GET("/semesters/current", catalogRead, handlers.Calendar.CurrentSemester)
		api.GET("/semesters/:id", catalogRead, handlers.Calendar.GetSemester)
		api.POST("/semesters", catalogWrite, handlers.Calendar.CreateSemester)
		api.PUT("/semesters/:id", catalogWrite, handlers.Calendar.UpdateSemester)
		api.DELETE("/semesters/:id", catalogWrite, handlers.Calendar.DeleteSemester)

		api.GET("/programs", catalogRead, handlers.Calendar.ListPrograms)
		api.GET("/programs/:id", catalogRead, handlers.Calendar.GetProgram)
		api.POST("/programs", catalogWrite, handlers.Calendar.CreateProgram)
		api.PUT("/programs/:id", catalogWrite, handlers.Calendar.UpdateProgram)
		api.DELETE("/programs/:id", catalogWrite, handlers.Calendar.DeleteProgram)
	}

	// ─── 3. Subjects, groups and profiles ──────────────────────────────
	subjects := api.Group("/subjects")
	{
		subjects.GET("", catalogRead, handlers.Subject.List)
		subjects.GET("/:id", catalogRead, handlers.Subject.Get)
		subjects.POST("", catalogWrite, handlers.Subject.Create)
		subjects.PUT("/:id", catalogWrite, handlers.Subject.Update)
		subjects.DELETE("/:id", catalogWrite, handlers.Subject.Delete)
		subjects.GET("/:id/requirements", catalogRead, handlers.Subject.GetRequirements)
		subjects.PUT("/:id/requirements", catalogWrite, handlers.Subject.SetRequirements)
		subjects.GET("/:id/profiles", catalogRead, handlers.Profile.List)
	}

	groups := api.Group("/subject-groups")
	{
		groups.GET("", catalogRead, handlers.Subject.ListGroups)
		groups.GET("/:id", catalogRead, handlers.Subject.GetGroup)
		groups.POST("", catalogWrite, handlers.Subject.CreateGroup)
		groups.PUT("/:id", catalogWrite, handlers.Subject.UpdateGroup)
		groups.DELETE("/:id", catalogWrite, handlers.Subject.DeleteGroup)
	}

	profiles := api.Group("/profiles")
	{
		profiles.POST("/validate", scheduleRead, handlers.Profile.Validate)
		profiles.GET("/:id", catalogRead, handlers.Profile.Get)
		profiles.POST("", catalogWrite, handlers.Profile.Save)
		profiles.PUT("/:id", catalogWrite, handlers.Profile.Save)
		profiles.DELETE("/:id", catalogWrite, handlers.Profile.Delete)
		profiles.GET("/:id/assignments", scheduleRead, handlers.Profile.ListAssignments)
		profiles.POST("/:id/assignments", scheduleWrite, handlers.Profile.CreateAssignment)
	}
	api.DELETE("/profile-assignments/:id", scheduleWrite, handlers.Profile.DeleteAssignment)

	// ─── 4. Teachers, classrooms, student groups, slots ────────────────
	teachers := api.Group("/teachers")
	{
		teachers.GET("", catalogRead, handlers.Teacher.List)
		teachers.GET("/:id", catalogRead, handlers.Teacher.Get)
		teachers.POST("", catalogWrite, handlers.Teacher.Create)
		teachers.PUT("/:id", catalogWrite, handlers.Teacher.Update)
		teachers.DELETE("/:id", catalogWrite, handlers.Teacher.Delete)
	}

	classrooms := api.Group("/classrooms")
	{
		classrooms.GET("", catalogRead, handlers.Classroom.List)
		classrooms.GET("/buildings", catalogRead, handlers.Classroom.Buildings)
		classrooms.GET("/:id", catalogRead, handlers.Classroom.Get)
		classrooms.POST("", catalogWrite, handlers.Classroom.Create)
		classrooms.PUT("/:id", catalogWrite, handlers.Classroom.Update)
		classrooms.DELETE("/:id", catalogWrite, handlers.Classroom.Delete)
		classrooms.GET("/:id/software", catalogRead, handlers.Classroom.ListSoftware)
		classrooms.POST("/:id/software", inventoryWrite, handlers.Classroom.InstallSoftware)
		classrooms.DELETE("/:id/software/:software_id", inventoryWrite, handlers.Classroom.UninstallSoftware)
	}

	studentGroups := api.Group("/student-groups")
	{
		studentGroups.GET("", catalogRead, handlers.StudentGroup.List)
		studentGroups.GET("/:id", catalogRead, handlers.StudentGroup.Get)
		studentGroups.POST("", catalogWrite, handlers.StudentGroup.Create)
		studentGroups.PUT("/:id", catalogWrite, handlers.StudentGroup.Update)
		studentGroups.DELETE("/:id", catalogWrite, handlers.StudentGroup.Delete)
	}

	slots := api.Group("/time-slots")
	{
		slots.GET("", catalogRead, handlers.StudentGroup.ListSlots)
		slots.POST("", catalogWrite, handlers.StudentGroup.CreateSlot)
		slots.POST("/period", catalogWrite, handlers.StudentGroup.PeriodSlot)
		slots.DELETE("/:id", catalogWrite, handlers.StudentGroup.DeleteSlot)
	}

	// ─── 5. Software and equipment ─────────────────────────────────────
	software := api.Group("/software")
	{
		software.GET("", catalogRead, handlers.Inventory.ListSoftware)
		software.GET("/licenses/alerts", reportsRead, handlers.Inventory.LicenseAlerts)
		software.GET("/:id", catalogRead, handlers.Inventory.GetSoftware)
		software.POST("", inventoryWrite, handlers.Inventory.CreateSoftware)
		software.PUT("/:id", inventoryWrite, handlers.Inventory.UpdateSoftware)
		software.DELETE("/:id", inventoryWrite, handlers.Inventory.DeleteSoftware)
	}

	equipmentTypes := api.Group("/equipment-types")
	{
		equipmentTypes.GET("", catalogRead, handlers.Inventory.ListTypes)
		equipmentTypes.GET("/:id", catalogRead, handlers.Inventory.GetType)
		equipmentTypes.POST("", inventoryWrite, handlers.Inventory.SaveType)
		equipmentTypes.PUT("/:id", inventoryWrite, handlers.Inventory.SaveType)
		equipmentTypes.DELETE("/:id", inventoryWrite, handlers.Inventory.DeleteType)
	}

	equipment := api.Group("/equipment")
	{
		equipment.GET("", catalogRead, handlers.Inventory.ListInventory)
		equipment.POST("", inventoryWrite, handlers.Inventory.SaveInventory)
		equipment.PUT("/:id", inventoryWrite, handlers.Inventory.SaveInventory)
		equipment.DELETE("/:id", inventoryWrite, handlers.Inventory.DeleteInventory)
	}

	// ─── 6. Scheduling ─────────────────────────────────────────────────
	assignments := api.Group("/assignments")
	{
		assignments.GET("", scheduleRead, handlers.Assignment.List)
		assignments.GET("/unassigned", scheduleRead, handlers.Assignment.Unassigned)
		assignments.POST("/validate", scheduleRead, handlers.Assignment.Validate)
		assignments.GET("/:id", scheduleRead, handlers.Assignment.Get)
		assignments.POST("", scheduleWrite, handlers.Assignment.Create)
		assignments.PUT("/:id", scheduleWrite, handlers.Assignment.Update)
		assignments.DELETE("/:id", scheduleWrite, handlers.Assignment.Delete)
	}

	conflicts := api.Group("/conflicts")
	{
		conflicts.GET("", scheduleRead, handlers.Assignment.ListConflicts)
		conflicts.POST("/scan", scheduleWrite, handlers.Assignment.ScanConflicts)
		conflicts.PATCH("/:id/resolve", scheduleWrite, handlers.Assignment.ResolveConflict)
	}

	occupancy := api.Group("/occupancy")
	{
		occupancy.GET("/classrooms/:id", scheduleRead, handlers.Occupancy.Classroom)
		occupancy.GET("/buildings", scheduleRead, handlers.Occupancy.Buildings)
	}

	// ─── 7. Imports, exports, dedupe ───────────────────────────────────
	imports := api.Group("/imports")
	{
		imports.GET("/kinds", importsRun, handlers.Import.Kinds)
		imports.GET("/jobs/:id", importsRun, handlers.Import.GetJob)
		imports.POST("/:kind", importsRun, handlers.Import.Upload)
	}

	exports := api.Group("/exports")
	{
		exports.GET("/timetable", reportsRead, handlers.Export.Timetable)
		exports.GET("/ids", reportsRead, handlers.Export.IDs)
	}

	dedupe := api.Group("/dedupe")
	{
		dedupe.GET("/:target", catalogRead, handlers.Dedupe.Candidates)
		dedupe.POST("/:target/match", catalogRead, handlers.Dedupe.MatchNames)
	}

	// ─── 8. Reports and system ─────────────────────────────────────────
	{
		api.GET("/dashboard", reportsRead, handlers.Dashboard.GetDashboardData)
		api.GET("/system/status", reportsRead, handlers.System.StatusStream)
	}

	// ─── 9. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireJWT(authService), scheduleRead)
	{
		ws.GET("/schedule", handlers.WS.ScheduleStream)
	}

	return router
}
