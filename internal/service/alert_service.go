package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bunkmate/bunkmate-api/internal/dto"
	"github.com/bunkmate/bunkmate-api/internal/mailer"
	"github.com/bunkmate/bunkmate-api/internal/models"
	"github.com/bunkmate/bunkmate-api/pkg/attendance"
	appErrors "github.com/bunkmate/bunkmate-api/pkg/errors"
	"github.com/bunkmate/bunkmate-api/pkg/jobs"
)

type alertUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// AlertService decides when a subject edit crosses the attendance
// threshold downward and hands the resulting notification to the mail
// queue.
type AlertService struct {
	users     alertUserRepository
	queue     jobEnqueuer
	metrics   *MetricsService
	logger    *zap.Logger
	threshold int
}

// AlertServiceParams bundles AlertService dependencies.
type AlertServiceParams struct {
	Users     alertUserRepository
	Queue     jobEnqueuer
	Metrics   *MetricsService
	Logger    *zap.Logger
	Threshold int
}

// NewAlertService constructs an AlertService.
func NewAlertService(params AlertServiceParams) *AlertService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Threshold <= 0 || params.Threshold >= 100 {
		params.Threshold = attendance.DefaultThreshold
	}
	return &AlertService{
		users:     params.Users,
		queue:     params.Queue,
		metrics:   params.Metrics,
		logger:    params.Logger,
		threshold: params.Threshold,
	}
}

// Evaluate compares the percentage before and after an edit. The alert
// fires only on the downward crossing, so a subject that was already
// below the threshold stays silent on further drops.
func (s *AlertService) Evaluate(before, after models.Subject) (dto.AlertDecision, error) {
	previous, err := attendance.Percentage(before.Attended, before.Total)
	if err != nil {
		return dto.AlertDecision{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid counts before edit")
	}
	current, err := attendance.Percentage(after.Attended, after.Total)
	if err != nil {
		return dto.AlertDecision{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid counts after edit")
	}

	limit := float64(s.threshold)
	return dto.AlertDecision{
		ShouldAlert:        current < limit && previous >= limit,
		UserID:             after.UserID,
		SubjectID:          after.ID,
		SubjectName:        after.Name,
		PreviousPercentage: previous,
		CurrentPercentage:  current,
	}, nil
}

// Dispatch enqueues the alert email for a firing decision. Users who
// turned notifications off are skipped without error.
func (s *AlertService) Dispatch(ctx context.Context, decision dto.AlertDecision) error {
	if !decision.ShouldAlert {
		return nil
	}

	user, err := s.users.FindByID(ctx, decision.UserID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alert recipient")
	}
	if !user.NotificationsEnabled {
		s.logger.Debug("alert suppressed, notifications disabled",
			zap.String("user_id", user.ID),
			zap.String("subject_id", decision.SubjectID),
		)
		return nil
	}

	msg := mailer.AlertMessage(user.Name, user.Email, decision.SubjectName, decision.CurrentPercentage, s.threshold)
	if err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "attendance_alert",
		Payload: msg,
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue alert email")
	}

	s.metrics.RecordAlertFired()
	s.logger.Info("attendance alert queued",
		zap.String("user_id", user.ID),
		zap.String("subject", decision.SubjectName),
		zap.Float64("percentage", decision.CurrentPercentage),
	)
	return nil
}
