package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkmate/bunkmate-api/internal/dto"
)

type fakeDashboardSrv struct {
	overview    *dto.DashboardResponse
	overviewErr error
	prediction  *dto.PredictionResponse
	predictErr  error
	lastPredict struct {
		userID        string
		subjectID     string
		classesToMiss int
	}
}

func (f *fakeDashboardSrv) Overview(context.Context, string) (*dto.DashboardResponse, error) {
	return f.overview, f.overviewErr
}

func (f *fakeDashboardSrv) Predict(_ context.Context, userID, subjectID string, classesToMiss int) (*dto.PredictionResponse, error) {
	f.lastPredict.userID = userID
	f.lastPredict.subjectID = subjectID
	f.lastPredict.classesToMiss = classesToMiss
	return f.prediction, f.predictErr
}

func TestDashboardHandlerOverview(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{
		overview: &dto.DashboardResponse{OverallPercentage: 68, TotalClasses: 50, AttendedClasses: 34},
	})

	c, rec := newTestContext(t, http.MethodGet, "/dashboard", nil)
	asUser(c, "user-1")

	handler.Overview(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	var resp dto.DashboardResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &resp))
	assert.InDelta(t, 68.0, resp.OverallPercentage, 0.001)
}

func TestDashboardHandlerOverviewRequiresAuth(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	c, rec := newTestContext(t, http.MethodGet, "/dashboard", nil)
	handler.Overview(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerPredict(t *testing.T) {
	service := &fakeDashboardSrv{
		prediction: &dto.PredictionResponse{SubjectID: "sub-1", Projected: 60, Safe: false},
	}
	handler := NewDashboardHandler(service)

	c, rec := newTestContext(t, http.MethodGet, "/simulator/predict?subjectId=sub-1&classesToMiss=5", nil)
	asUser(c, "user-1")

	handler.Predict(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", service.lastPredict.userID)
	assert.Equal(t, "sub-1", service.lastPredict.subjectID)
	assert.Equal(t, 5, service.lastPredict.classesToMiss)
}

func TestDashboardHandlerPredictRequiresSubject(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	c, rec := newTestContext(t, http.MethodGet, "/simulator/predict?classesToMiss=5", nil)
	asUser(c, "user-1")

	handler.Predict(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandlerPredictRejectsNonInteger(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	c, rec := newTestContext(t, http.MethodGet, "/simulator/predict?subjectId=sub-1&classesToMiss=two", nil)
	asUser(c, "user-1")

	handler.Predict(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
