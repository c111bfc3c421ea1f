package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bunkmate/bunkmate-api/internal/dto"
	"github.com/bunkmate/bunkmate-api/internal/mailer"
	"github.com/bunkmate/bunkmate-api/internal/models"
	"github.com/bunkmate/bunkmate-api/pkg/attendance"
	appErrors "github.com/bunkmate/bunkmate-api/pkg/errors"
	"github.com/bunkmate/bunkmate-api/pkg/export"
)

type reportUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

type reportSubjectRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Subject, error)
}

// ReportService builds weekly attendance summaries and delivers them
// to every subscribed user.
type ReportService struct {
	users     reportUserRepository
	subjects  reportSubjectRepository
	mailer    mailer.Mailer
	metrics   *MetricsService
	logger    *zap.Logger
	threshold int
	warning   int
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	now       func() time.Time

	cooldown time.Duration
	runMu    sync.Mutex
	lastRun  time.Time
}

// ReportServiceParams bundles ReportService dependencies.
type ReportServiceParams struct {
	Users     reportUserRepository
	Subjects  reportSubjectRepository
	Mailer    mailer.Mailer
	Metrics   *MetricsService
	Logger    *zap.Logger
	Threshold int
	Warning   int
	Now       func() time.Time
	// RunCooldown is the minimum gap between batch runs. It keeps an
	// authenticated user from hammering the manual trigger and
	// emailing everyone repeatedly.
	RunCooldown time.Duration
}

// NewReportService constructs a ReportService.
func NewReportService(params ReportServiceParams) *ReportService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Threshold <= 0 || params.Threshold >= 100 {
		params.Threshold = attendance.DefaultThreshold
	}
	if params.Warning <= 0 || params.Warning > params.Threshold {
		params.Warning = attendance.WarningThreshold
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.RunCooldown <= 0 {
		params.RunCooldown = 10 * time.Minute
	}
	return &ReportService{
		users:     params.Users,
		subjects:  params.Subjects,
		mailer:    params.Mailer,
		metrics:   params.Metrics,
		logger:    params.Logger,
		threshold: params.Threshold,
		warning:   params.Warning,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		now:       params.Now,
		cooldown:  params.RunCooldown,
	}
}

// BuildForUser assembles one user's summary without sending anything.
func (s *ReportService) BuildForUser(ctx context.Context, userID string) (*dto.WeeklyReportSummary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return s.summarize(ctx, *user)
}

// RunWeekly sends the summary to every user with notifications on. A
// failure for one user is counted and logged, never propagated, so a
// bad address cannot block the rest of the batch. Runs inside the
// cooldown window are refused.
func (s *ReportService) RunWeekly(ctx context.Context) (dto.WeeklyRunResult, error) {
	s.runMu.Lock()
	if !s.lastRun.IsZero() && s.now().Sub(s.lastRun) < s.cooldown {
		s.runMu.Unlock()
		return dto.WeeklyRunResult{}, appErrors.Clone(appErrors.ErrConflict, "report batch ran recently, try again later")
	}
	s.lastRun = s.now()
	s.runMu.Unlock()

	enabled := true
	users, err := s.users.List(ctx, models.UserFilter{NotificationsEnabled: &enabled})
	if err != nil {
		return dto.WeeklyRunResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list report recipients")
	}

	var result dto.WeeklyRunResult
	for _, user := range users {
		result.UsersProcessed++

		summary, err := s.summarize(ctx, user)
		if err != nil {
			result.Failures++
			s.metrics.RecordReportEmail(false)
			s.logger.Error("weekly report build failed", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}

		msg := mailer.WeeklyReportMessage(*summary, s.threshold)
		if err := s.mailer.Send(ctx, msg); err != nil {
			result.Failures++
			s.metrics.RecordReportEmail(false)
			s.logger.Error("weekly report send failed", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}

		result.ReportsSent++
		s.metrics.RecordReportEmail(true)
	}

	s.logger.Info("weekly report run finished",
		zap.Int("processed", result.UsersProcessed),
		zap.Int("sent", result.ReportsSent),
		zap.Int("failures", result.Failures),
	)
	return result, nil
}

// ExportCSV renders the user's current standings as CSV bytes.
func (s *ReportService) ExportCSV(ctx context.Context, userID string) ([]byte, error) {
	data, _, err := s.dataset(ctx, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return out, nil
}

// ExportPDF renders the user's current standings as a PDF document.
func (s *ReportService) ExportPDF(ctx context.Context, userID string) ([]byte, error) {
	data, user, err := s.dataset(ctx, userID)
	if err != nil {
		return nil, err
	}
	subtitle := fmt.Sprintf("%s, generated %s", user.Name, s.now().UTC().Format("2 Jan 2006"))
	out, err := s.pdf.Render(data, "Attendance Report", subtitle)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return out, nil
}

func (s *ReportService) summarize(ctx context.Context, user models.User) (*dto.WeeklyReportSummary, error) {
	subjects, err := s.subjects.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	summary := &dto.WeeklyReportSummary{
		UserID:         user.ID,
		Name:           user.Name,
		Email:          user.Email,
		BelowThreshold: make([]dto.SubjectStanding, 0),
	}
	for _, subject := range subjects {
		summary.TotalClasses += subject.Total
		summary.AttendedClasses += subject.Attended

		percentage, err := attendance.Percentage(subject.Attended, subject.Total)
		if err != nil {
			return nil, err
		}
		// A subject with no held classes sits at 0% and is listed
		// too, so unstarted courses are not hidden from the report.
		if percentage < float64(s.threshold) {
			summary.BelowThreshold = append(summary.BelowThreshold, dto.SubjectStanding{
				Name:       subject.Name,
				Percentage: percentage,
			})
		}
	}

	overall, err := attendance.Percentage(summary.AttendedClasses, summary.TotalClasses)
	if err != nil {
		return nil, err
	}
	summary.OverallPercentage = overall
	return summary, nil
}

func (s *ReportService) dataset(ctx context.Context, userID string) (export.Dataset, *models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return export.Dataset{}, nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return export.Dataset{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	subjects, err := s.subjects.ListByUser(ctx, userID)
	if err != nil {
		return export.Dataset{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	data := export.Dataset{
		Headers: []string{"Subject", "Attended", "Total", "Percentage", "Status"},
		Rows:    make([]map[string]string, 0, len(subjects)),
	}
	for _, subject := range subjects {
		percentage, err := attendance.Percentage(subject.Attended, subject.Total)
		if err != nil {
			return export.Dataset{}, nil, err
		}
		status := attendance.Status(percentage, float64(s.threshold), float64(s.warning))
		data.Rows = append(data.Rows, map[string]string{
			"Subject":    subject.Name,
			"Attended":   fmt.Sprintf("%d", subject.Attended),
			"Total":      fmt.Sprintf("%d", subject.Total),
			"Percentage": fmt.Sprintf("%.2f", percentage),
			"Status":     string(status),
		})
	}
	return data, user, nil
}
