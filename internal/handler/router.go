package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kursplatform/kurs-api/internal/middleware"
	"github.com/kursplatform/kurs-api/internal/models"
	"github.com/kursplatform/kurs-api/internal/service"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Category   *CategoryHandler
	Course     *CourseHandler
	Enrollment *EnrollmentHandler
	Message    *MessageHandler
	Stats      *StatsHandler
	Report     *ReportHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes mounts the API route tree on the given prefix. Three
// tiers: public, authenticated, and admin-only.
func RegisterRoutes(r *gin.Engine, prefix string, authService *service.AuthService, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	api.POST("/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	api.GET("/courses", h.Course.Catalog)
	api.GET("/courses/:id", middleware.OptionalJWT(authService), h.Course.Detail)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	{
		authed.POST("/auth/logout", h.Auth.Logout)

		authed.GET("/profile", h.User.Profile)
		authed.PUT("/profile", h.User.UpdateProfile)
		authed.GET("/users", h.User.Directory)

		authed.GET("/messages", h.Message.Inbox)
		authed.POST("/messages", h.Message.Send)
		authed.PUT("/messages/:id/read", h.Message.MarkRead)

		authed.GET("/enrollments", h.Enrollment.MyCourses)
		authed.POST("/enrollments", h.Enrollment.Enroll)
		authed.PUT("/enrollments/:id/progress", h.Enrollment.UpdateProgress)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/categories", h.Category.List)
		admin.POST("/categories", h.Category.Create)
		admin.PUT("/categories/:id", h.Category.Update)
		admin.DELETE("/categories/:id", h.Category.Delete)

		admin.GET("/courses", h.Course.AdminList)
		admin.POST("/courses", h.Course.Create)
		admin.PUT("/courses/:id", h.Course.Update)
		admin.DELETE("/courses/:id", h.Course.Delete)

		admin.GET("/users", h.User.AdminList)
		admin.PUT("/users/:id", h.User.ChangeRole)
		admin.DELETE("/users/:id", h.User.Delete)

		admin.GET("/stats", h.Stats.Platform)
		admin.GET("/reports/users", h.Report.UsersCSV)
		admin.GET("/reports/enrollments", h.Report.EnrollmentsPDF)
	}
}
