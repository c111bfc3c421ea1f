package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bunkmate/bunkmate-api/internal/dto"
	"github.com/bunkmate/bunkmate-api/internal/models"
	appErrors "github.com/bunkmate/bunkmate-api/pkg/errors"
)

type subjectRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

type alertDispatcher interface {
	Evaluate(before, after models.Subject) (dto.AlertDecision, error)
	Dispatch(ctx context.Context, decision dto.AlertDecision) error
}

type leaderboardInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// SubjectService manages per-user subject ledgers. Every mutation is
// scoped to the owning user and feeds the alert evaluation.
type SubjectService struct {
	repo      subjectRepository
	alerts    alertDispatcher
	cache     leaderboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// SubjectServiceParams bundles SubjectService dependencies.
type SubjectServiceParams struct {
	Repo      subjectRepository
	Alerts    alertDispatcher
	Cache     leaderboardInvalidator
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(params SubjectServiceParams) *SubjectService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &SubjectService{
		repo:      params.Repo,
		alerts:    params.Alerts,
		cache:     params.Cache,
		validator: params.Validator,
		logger:    params.Logger,
	}
}

// List returns the user's subjects, oldest first.
func (s *SubjectService) List(ctx context.Context, userID string) ([]models.Subject, error) {
	subjects, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Create adds a new subject ledger for the user.
func (s *SubjectService) Create(ctx context.Context, userID string, req dto.CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject := &models.Subject{
		UserID:   userID,
		Name:     req.Name,
		Total:    req.Total,
		Attended: req.Attended,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	s.invalidateLeaderboard(ctx)
	return subject, nil
}

// Update applies a partial edit and runs the threshold check against
// the counts before and after the change.
func (s *SubjectService) Update(ctx context.Context, userID, subjectID string, req dto.UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.findOwned(ctx, userID, subjectID)
	if err != nil {
		return nil, err
	}

	before := *subject
	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Total != nil {
		subject.Total = *req.Total
	}
	if req.Attended != nil {
		subject.Attended = *req.Attended
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}

	decision, err := s.alerts.Evaluate(before, *subject)
	if err != nil {
		s.logger.Warn("alert evaluation failed", zap.String("subject_id", subject.ID), zap.Error(err))
	} else if err := s.alerts.Dispatch(ctx, decision); err != nil {
		s.logger.Warn("alert dispatch failed", zap.String("subject_id", subject.ID), zap.Error(err))
	}

	s.invalidateLeaderboard(ctx)
	return subject, nil
}

// Delete removes a subject ledger owned by the user.
func (s *SubjectService) Delete(ctx context.Context, userID, subjectID string) error {
	if _, err := s.findOwned(ctx, userID, subjectID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, subjectID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	s.invalidateLeaderboard(ctx)
	return nil
}

// findOwned loads a subject and hides it from other users entirely.
func (s *SubjectService) findOwned(ctx context.Context, userID, subjectID string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch subject")
	}
	if subject.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	return subject, nil
}

func (s *SubjectService) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "leaderboard*"); err != nil {
		s.logger.Warn("leaderboard cache invalidation failed", zap.Error(err))
	}
}
