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

type fakeReportSrv struct {
	summary *dto.WeeklyReportSummary
	result  dto.WeeklyRunResult
	csv     []byte
	pdf     []byte
	err     error
}

func (f *fakeReportSrv) BuildForUser(context.Context, string) (*dto.WeeklyReportSummary, error) {
	return f.summary, f.err
}

func (f *fakeReportSrv) RunWeekly(context.Context) (dto.WeeklyRunResult, error) {
	return f.result, f.err
}

func (f *fakeReportSrv) ExportCSV(context.Context, string) ([]byte, error) {
	return f.csv, f.err
}

func (f *fakeReportSrv) ExportPDF(context.Context, string) ([]byte, error) {
	return f.pdf, f.err
}

func TestReportHandlerWeekly(t *testing.T) {
	handler := NewReportHandler(&fakeReportSrv{
		summary: &dto.WeeklyReportSummary{Name: "Asha", OverallPercentage: 70},
	})

	c, rec := newTestContext(t, http.MethodGet, "/reports/weekly", nil)
	asUser(c, "user-1")

	handler.Weekly(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	var summary dto.WeeklyReportSummary
	require.NoError(t, json.Unmarshal(envelope.Data, &summary))
	assert.Equal(t, "Asha", summary.Name)
}

func TestReportHandlerWeeklyRequiresAuth(t *testing.T) {
	handler := NewReportHandler(&fakeReportSrv{})

	c, rec := newTestContext(t, http.MethodGet, "/reports/weekly", nil)
	handler.Weekly(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportHandlerRun(t *testing.T) {
	handler := NewReportHandler(&fakeReportSrv{
		result: dto.WeeklyRunResult{UsersProcessed: 3, ReportsSent: 2, Failures: 1},
	})

	c, rec := newTestContext(t, http.MethodPost, "/reports/weekly/run", nil)
	asUser(c, "user-1")

	handler.Run(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	var result dto.WeeklyRunResult
	require.NoError(t, json.Unmarshal(envelope.Data, &result))
	assert.Equal(t, 2, result.ReportsSent)
	assert.Equal(t, 1, result.Failures)
}

func TestReportHandlerExportCSV(t *testing.T) {
	handler := NewReportHandler(&fakeReportSrv{csv: []byte("Subject,Attended\nMaths,18\n")})

	c, rec := newTestContext(t, http.MethodGet, "/reports/weekly/export?format=csv", nil)
	asUser(c, "user-1")

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "Maths")
}

func TestReportHandlerExportPDF(t *testing.T) {
	handler := NewReportHandler(&fakeReportSrv{pdf: []byte("%PDF-1.4")})

	c, rec := newTestContext(t, http.MethodGet, "/reports/weekly/export?format=pdf", nil)
	asUser(c, "user-1")

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestReportHandlerExportRejectsUnknownFormat(t *testing.T) {
	handler := NewReportHandler(&fakeReportSrv{})

	c, rec := newTestContext(t, http.MethodGet, "/reports/weekly/export?format=xml", nil)
	asUser(c, "user-1")

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
