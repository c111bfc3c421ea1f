package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/bunkmate/bunkmate-api/internal/dto"
	"github.com/bunkmate/bunkmate-api/internal/models"
	"github.com/bunkmate/bunkmate-api/pkg/attendance"
	appErrors "github.com/bunkmate/bunkmate-api/pkg/errors"
)

type dashboardSubjectRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// DashboardService computes per-user attendance rollups and the bunk
// simulator projection.
type DashboardService struct {
	subjects  dashboardSubjectRepository
	logger    *zap.Logger
	threshold int
	warning   int
}

// DashboardServiceParams bundles DashboardService dependencies.
type DashboardServiceParams struct {
	Subjects  dashboardSubjectRepository
	Logger    *zap.Logger
	Threshold int
	Warning   int
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Threshold <= 0 || params.Threshold >= 100 {
		params.Threshold = attendance.DefaultThreshold
	}
	if params.Warning <= 0 || params.Warning > params.Threshold {
		params.Warning = attendance.WarningThreshold
	}
	return &DashboardService{
		subjects:  params.Subjects,
		logger:    params.Logger,
		threshold: params.Threshold,
		warning:   params.Warning,
	}
}

// Overview aggregates the user's subjects into the dashboard payload.
// A user without subjects gets a zeroed rollup, not an error.
func (s *DashboardService) Overview(ctx context.Context, userID string) (*dto.DashboardResponse, error) {
	subjects, err := s.subjects.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	resp := &dto.DashboardResponse{Subjects: make([]dto.SubjectBreakdown, 0, len(subjects))}
	for _, subject := range subjects {
		row, err := s.breakdown(subject)
		if err != nil {
			return nil, err
		}
		resp.Subjects = append(resp.Subjects, row)
		resp.TotalClasses += subject.Total
		resp.AttendedClasses += subject.Attended
	}

	overall, err := attendance.Percentage(resp.AttendedClasses, resp.TotalClasses)
	if err != nil {
		return nil, err
	}
	resp.OverallPercentage = overall
	return resp, nil
}

// Predict projects the subject's percentage after missing the next
// classesToMiss classes without attending any.
func (s *DashboardService) Predict(ctx context.Context, userID, subjectID string, classesToMiss int) (*dto.PredictionResponse, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
	}
	if subject.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}

	current, err := attendance.Percentage(subject.Attended, subject.Total)
	if err != nil {
		return nil, err
	}
	projected, err := attendance.Predict(subject.Attended, subject.Total, classesToMiss)
	if err != nil {
		return nil, err
	}

	return &dto.PredictionResponse{
		SubjectID:     subject.ID,
		SubjectName:   subject.Name,
		ClassesToMiss: classesToMiss,
		Current:       current,
		Projected:     projected,
		Safe:          projected >= float64(s.threshold),
	}, nil
}

func (s *DashboardService) breakdown(subject models.Subject) (dto.SubjectBreakdown, error) {
	percentage, err := attendance.Percentage(subject.Attended, subject.Total)
	if err != nil {
		return dto.SubjectBreakdown{}, err
	}
	needed, err := attendance.ClassesNeeded(subject.Attended, subject.Total, s.threshold)
	if err != nil {
		return dto.SubjectBreakdown{}, err
	}
	slack, err := attendance.BunkSlack(subject.Attended, subject.Total, s.threshold)
	if err != nil {
		return dto.SubjectBreakdown{}, err
	}

	return dto.SubjectBreakdown{
		SubjectID:     subject.ID,
		Name:          subject.Name,
		Total:         subject.Total,
		Attended:      subject.Attended,
		Percentage:    percentage,
		ClassesNeeded: needed,
		BunkSlack:     slack,
		Status:        attendance.Status(percentage, float64(s.threshold), float64(s.warning)),
	}, nil
}
