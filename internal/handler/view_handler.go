package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearning-analytics-console/internal/middleware"
	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/service"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
	"github.com/noah-isme/elearning-analytics-console/pkg/response"
)

type dashboardService interface {
	Load(ctx context.Context) (*models.DashboardView, error)
}

type studentService interface {
	List(ctx context.Context) (*models.Table[models.StudentRow], error)
	Sort(ctx context.Context, field string) (*models.Table[models.StudentRow], error)
}

type courseService interface {
	List(ctx context.Context, spec *models.SortSpec) (*models.Table[models.CourseSummary], error)
	Detail(ctx context.Context, name string, spec *models.SortSpec) (*models.CourseDetail, error)
}

type searchService interface {
	Search(ctx context.Context, query string, spec *models.SortSpec) (*models.SearchResult, error)
}

// ViewHandler serves the data-backed console views.
type ViewHandler struct {
	dashboard dashboardService
	students  studentService
	courses   courseService
	search    searchService
}

// NewViewHandler constructs the handler.
func NewViewHandler(dashboard dashboardService, students studentService, courses courseService, search searchService) *ViewHandler {
	return &ViewHandler{dashboard: dashboard, students: students, courses: courses, search: search}
}

// SortRequest toggles the sort on a column.
type SortRequest struct {
	Key string `json:"key" binding:"required"`
}

// Dashboard godoc
// @Summary Dashboard charts and top students
// @Tags Views
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router / [get]
func (h *ViewHandler) Dashboard(c *gin.Context) {
	view, err := h.dashboard.Load(c.Request.Context())
	if err != nil {
		writeViewError(c, err)
		return
	}
	middleware.SetMeta(c, "updated_at", view.UpdatedAt)
	middleware.SetMeta(c, "total", view.TotalStudents)
	response.OK(c, view, middleware.ExtractMeta(c))
}

// Students godoc
// @Summary Student table
// @Tags Views
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /students [get]
func (h *ViewHandler) Students(c *gin.Context) {
	table, err := h.students.List(c.Request.Context())
	if err != nil {
		writeViewError(c, err)
		return
	}
	setTableMeta(c, table)
	response.OK(c, table, middleware.ExtractMeta(c))
}

// SortStudents godoc
// @Summary Toggle the student table sort
// @Description Sorting the same column twice flips between ascending and descending
// @Tags Views
// @Accept json
// @Produce json
// @Param payload body SortRequest true "Column key"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/sort [post]
func (h *ViewHandler) SortStudents(c *gin.Context) {
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sort payload"))
		return
	}
	table, err := h.students.Sort(c.Request.Context(), req.Key)
	if err != nil {
		writeViewError(c, err)
		return
	}
	setTableMeta(c, table)
	response.OK(c, table, middleware.ExtractMeta(c))
}

// Courses godoc
// @Summary Course overview
// @Tags Views
// @Produce json
// @Param sort query string false "Column key"
// @Param direction query string false "ascending or descending"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *ViewHandler) Courses(c *gin.Context) {
	spec, ok := sortFromQuery(c)
	if !ok {
		return
	}
	table, err := h.courses.List(c.Request.Context(), spec)
	if err != nil {
		writeViewError(c, err)
		return
	}
	setTableMeta(c, table)
	response.OK(c, table, middleware.ExtractMeta(c))
}

// CourseDetail godoc
// @Summary Students enrolled in one course
// @Tags Views
// @Produce json
// @Param courseName path string true "Course title"
// @Param sort query string false "Column key"
// @Param direction query string false "ascending or descending"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{courseName} [get]
func (h *ViewHandler) CourseDetail(c *gin.Context) {
	name := strings.TrimSpace(c.Param("courseName"))
	if name == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "courseName is required"))
		return
	}
	spec, ok := sortFromQuery(c)
	if !ok {
		return
	}
	detail, err := h.courses.Detail(c.Request.Context(), name, spec)
	if err != nil {
		writeViewError(c, err)
		return
	}
	setTableMeta(c, &detail.Students)
	response.OK(c, detail, middleware.ExtractMeta(c))
}

// Search godoc
// @Summary Search students
// @Description An empty query returns an empty table without calling the backend
// @Tags Views
// @Produce json
// @Param q query string false "Search text"
// @Param sort query string false "Column key"
// @Param direction query string false "ascending or descending"
// @Success 200 {object} response.Envelope
// @Router /search [get]
func (h *ViewHandler) Search(c *gin.Context) {
	spec, ok := sortFromQuery(c)
	if !ok {
		return
	}
	result, err := h.search.Search(c.Request.Context(), c.Query("q"), spec)
	if err != nil {
		writeViewError(c, err)
		return
	}
	setTableMeta(c, &result.Results)
	response.OK(c, result, middleware.ExtractMeta(c))
}

// setTableMeta mirrors the table's freshness and sort into the response meta.
func setTableMeta[T any](c *gin.Context, table *models.Table[T]) {
	if table == nil {
		return
	}
	middleware.SetMeta(c, "updated_at", table.UpdatedAt)
	middleware.SetMeta(c, "total", table.Total)
	if table.Sort != nil {
		middleware.SetMeta(c, "sort", table.Sort.Field)
		middleware.SetMeta(c, "direction", table.Sort.Direction)
	}
}

func sortFromQuery(c *gin.Context) (*models.SortSpec, bool) {
	spec, err := service.ParseSort(strings.TrimSpace(c.Query("sort")), strings.TrimSpace(c.Query("direction")))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return spec, true
}

// writeViewError reports a view load failure. An expired session carries the login redirect.
func writeViewError(c *gin.Context, err error) {
	if appErrors.IsAuthorizationFailure(err) {
		response.Error(c, err, map[string]interface{}{"redirect": models.PathLogin})
		return
	}
	response.Error(c, err)
}
