package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bunkmate/bunkmate-api/internal/dto"
	"github.com/bunkmate/bunkmate-api/internal/middleware"
	"github.com/bunkmate/bunkmate-api/pkg/response"
)

type leaderboardService interface {
	Build(ctx context.Context) ([]dto.LeaderboardEntry, bool, error)
}

// LeaderboardHandler serves the public attendance ranking.
type LeaderboardHandler struct {
	service leaderboardService
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(service leaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// Leaderboard godoc
// @Summary Public attendance leaderboard
// @Description Every user with at least one recorded class, ranked by overall percentage
// @Tags Leaderboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaderboard [get]
func (h *LeaderboardHandler) Leaderboard(c *gin.Context) {
	start := time.Now()
	entries, cacheHit, err := h.service.Build(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, entries, nil, meta)
}
