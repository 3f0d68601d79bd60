package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/handler"
	"github.com/noah-isme/campus-lms-api/internal/middleware"
	"github.com/noah-isme/campus-lms-api/internal/models"
	"github.com/noah-isme/campus-lms-api/internal/service"
	"github.com/noah-isme/campus-lms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-lms-api/pkg/middleware/requestid"
)

type handlers struct {
	auth          *handler.AuthHandler
	requests      *handler.MentorRequestHandler
	capacity      *handler.MentorCapacityHandler
	notices       *handler.NoticeHandler
	submissions   *handler.SubmissionHandler
	bugReports    *handler.BugReportHandler
	assignments   *handler.AssignmentHandler
	reports       *handler.ReportHandler
	observability *handler.MetricsHandler
}

type routerOptions struct {
	apiPrefix      string
	allowedOrigins []string
	enableDocs     bool
	metrics        *service.MetricsService
	tokens         middleware.TokenValidator
	logger         *zap.Logger
}

func newRouter(h handlers, opts routerOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.logger, "/health", "/metrics"))
	r.Use(corsmiddleware.New(opts.allowedOrigins))
	r.Use(middleware.Metrics(opts.metrics))

	r.GET("/health", h.observability.Health)
	r.GET("/metrics", h.observability.Prometheus)
	if opts.enableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.apiPrefix)
	api.POST("/auth/login", h.auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(opts.tokens), middleware.WithResponseMeta())

	secured.GET("/auth/me", h.auth.Me)

	admin := middleware.AdminOnly()
	requesters := middleware.RequireRoles(models.RoleStudent, models.RoleAdmin, models.RoleSuperAdmin)
	mentors := middleware.RequireRoles(models.RoleMentor, models.RoleAdmin, models.RoleSuperAdmin)

	secured.POST("/mentor-requests", requesters, h.requests.Create)
	secured.GET("/mentor-requests", h.requests.List)
	secured.GET("/mentor-requests/inconsistencies", admin, h.requests.Inconsistencies)
	secured.GET("/mentor-requests/:id", h.requests.Get)
	secured.POST("/mentor-requests/:id/review", admin, h.requests.Review)

	secured.GET("/notices", admin, h.notices.Current)
	secured.DELETE("/notices", admin, h.notices.Dismiss)

	secured.GET("/mentors/capacity", h.capacity.List)

	secured.POST("/submissions/goals", middleware.RequireRoles(models.RoleStudent), h.submissions.SubmitGoal)
	secured.POST("/submissions/reflections", middleware.RequireRoles(models.RoleStudent), h.submissions.SubmitReflection)
	secured.GET("/submissions/mentees", mentors, h.submissions.Mentees)
	secured.POST("/submissions/goals/:id/review", middleware.RequireRoles(models.RoleMentor), h.submissions.ReviewGoal)
	secured.POST("/submissions/reflections/:id/review", middleware.RequireRoles(models.RoleMentor), h.submissions.ReviewReflection)

	secured.POST("/bug-reports", h.bugReports.Create)
	secured.GET("/bug-reports", admin, h.bugReports.List)
	secured.PATCH("/bug-reports/:id/status", admin, h.bugReports.UpdateStatus)

	secured.POST("/associate-assignments", admin, h.assignments.Create)
	secured.GET("/associate-assignments", admin, h.assignments.List)
	secured.DELETE("/associate-assignments/:id", admin, h.assignments.Delete)

	secured.GET("/reports/attendance", admin, h.reports.Attendance)

	return r
}
