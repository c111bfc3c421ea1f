package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bunkmate/bunkmate-api/internal/dto"
	"github.com/bunkmate/bunkmate-api/internal/middleware"
	appErrors "github.com/bunkmate/bunkmate-api/pkg/errors"
	"github.com/bunkmate/bunkmate-api/pkg/response"
)

type reportService interface {
	BuildForUser(ctx context.Context, userID string) (*dto.WeeklyReportSummary, error)
	RunWeekly(ctx context.Context) (dto.WeeklyRunResult, error)
	ExportCSV(ctx context.Context, userID string) ([]byte, error)
	ExportPDF(ctx context.Context, userID string) ([]byte, error)
}

// ReportHandler wires report endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Weekly godoc
// @Summary Weekly report preview for the current user
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /reports/weekly [get]
func (h *ReportHandler) Weekly(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, err := h.service.BuildForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}

// Run godoc
// @Summary Trigger the weekly report batch
// @Description Sends the summary email to every subscribed user
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /reports/weekly/run [post]
func (h *ReportHandler) Run(c *gin.Context) {
	result, err := h.service.RunWeekly(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Download the current standings
// @Tags Reports
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reports/weekly/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	stamp := time.Now().UTC().Format("2006-01-02")

	switch format {
	case "csv":
		out, err := h.service.ExportCSV(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.csv", stamp))
		c.Data(http.StatusOK, "text/csv", out)
	case "pdf":
		out, err := h.service.ExportPDF(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.pdf", stamp))
		c.Data(http.StatusOK, "application/pdf", out)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
