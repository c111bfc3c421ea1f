package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bunkmate/bunkmate-api/internal/dto"
	"github.com/bunkmate/bunkmate-api/internal/middleware"
	appErrors "github.com/bunkmate/bunkmate-api/pkg/errors"
	"github.com/bunkmate/bunkmate-api/pkg/response"
)

type dashboardService interface {
	Overview(ctx context.Context, userID string) (*dto.DashboardResponse, error)
	Predict(ctx context.Context, userID, subjectID string, classesToMiss int) (*dto.PredictionResponse, error)
}

// DashboardHandler wires dashboard and simulator endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Overview godoc
// @Summary Attendance dashboard for the current user
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, overview, nil)
}

// Predict godoc
// @Summary Bunk simulator projection
// @Description Projects the percentage after missing the next N classes
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param subjectId query string true "Subject ID"
// @Param classesToMiss query int true "Number of upcoming classes to miss"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /simulator/predict [get]
func (h *DashboardHandler) Predict(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	subjectID := strings.TrimSpace(c.Query("subjectId"))
	if subjectID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subjectId is required"))
		return
	}

	classesToMiss, err := strconv.Atoi(strings.TrimSpace(c.Query("classesToMiss")))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classesToMiss must be an integer"))
		return
	}

	prediction, err := h.service.Predict(c.Request.Context(), claims.UserID, subjectID, classesToMiss)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, prediction, nil)
}
