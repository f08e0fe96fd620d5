package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearning-analytics-console/internal/middleware"
	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/service"
)

type viewGuard interface {
	Check(view models.View) service.Decision
}

// Routes groups the handlers mounted by Register.
type Routes struct {
	Guard    viewGuard
	Session  *SessionHandler
	Views    *ViewHandler
	Reports  *ReportHandler
	Accounts *AccountHandler
	Metrics  *MetricsHandler
}

// Register mounts the console routes on r. Each view route sits behind the guard for its view.
func Register(r gin.IRouter, routes Routes) {
	guard := func(view models.View) gin.HandlerFunc {
		return middleware.RequireView(routes.Guard, view)
	}

	if routes.Metrics != nil {
		r.GET("/health", routes.Metrics.Health)
		r.GET("/ready", routes.Metrics.Ready)
		r.GET("/metrics", routes.Metrics.Prometheus)
	}

	r.GET("/session", routes.Session.Status)
	r.POST("/login", guard(models.ViewLogin), routes.Session.Login)
	r.POST("/register", guard(models.ViewRegister), routes.Session.Register)
	r.POST("/logout", routes.Session.Logout)

	r.GET(models.ViewDashboard.Path(), guard(models.ViewDashboard), routes.Views.Dashboard)
	r.GET(models.ViewStudents.Path(), guard(models.ViewStudents), routes.Views.Students)
	r.POST("/students/sort", guard(models.ViewStudents), routes.Views.SortStudents)
	r.GET(models.ViewCourses.Path(), guard(models.ViewCourses), routes.Views.Courses)
	r.GET(models.ViewCourseDetail.Path(), guard(models.ViewCourseDetail), routes.Views.CourseDetail)
	r.GET(models.ViewSearch.Path(), guard(models.ViewSearch), routes.Views.Search)

	r.GET(models.ViewReports.Path(), guard(models.ViewReports), routes.Reports.View)
	r.POST(models.ViewReports.Path(), guard(models.ViewReports), routes.Reports.Generate)
	r.GET("/exports/:token", guard(models.ViewReports), routes.Reports.Download)

	r.GET(models.ViewProfile.Path(), guard(models.ViewProfile), routes.Accounts.Profile)
	r.PUT(models.ViewProfile.Path(), guard(models.ViewProfile), routes.Accounts.UpdateProfile)
	r.GET(models.ViewSettings.Path(), guard(models.ViewSettings), routes.Accounts.Settings)
}
