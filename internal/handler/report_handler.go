package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/service"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
	"github.com/noah-isme/elearning-analytics-console/pkg/response"
)

type reportService interface {
	View(ctx context.Context, req models.ReportRequest) (*models.ReportsView, error)
	Export(ctx context.Context, req models.ReportRequest) (*models.ReportResult, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

var reportContentTypes = map[models.ReportFormat]string{
	models.ReportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	models.ReportFormatCSV:  "text/csv",
	models.ReportFormatPDF:  "application/pdf",
}

// ReportHandler exposes report generation and export downloads.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// View godoc
// @Summary Report filters and current selection size
// @Tags Reports
// @Produce json
// @Param course query string false "Course filter, All for every course"
// @Param engagement query string false "Engagement filter, All for every level"
// @Param format query string false "xlsx, csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) View(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report query"))
		return
	}
	view, err := h.service.View(c.Request.Context(), req)
	if err != nil {
		writeViewError(c, err)
		return
	}
	response.OK(c, view)
}

// Generate godoc
// @Summary Generate a student report
// @Description Filters the student list and serializes it. With download=true the file is streamed directly, otherwise a signed download link is returned.
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body models.ReportRequest true "Report filters"
// @Param download query bool false "Stream the file instead of returning a link"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}
	result, err := h.service.Export(c.Request.Context(), req)
	if err != nil {
		writeViewError(c, err)
		return
	}
	if c.Query("download") == "true" {
		attachment(c, result.Filename)
		c.Data(http.StatusOK, contentType(result.Format), result.Content)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a generated report via signed token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.service.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	var size int64 = -1
	if info, err := download.File.Stat(); err == nil {
		size = info.Size()
	}
	attachment(c, download.Filename)
	c.DataFromReader(http.StatusOK, size, contentType(download.Format), download.File, nil)
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
}

func contentType(format models.ReportFormat) string {
	if ct, ok := reportContentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}
