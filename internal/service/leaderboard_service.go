package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bunkmate/bunkmate-api/internal/dto"
	"github.com/bunkmate/bunkmate-api/internal/models"
	"github.com/bunkmate/bunkmate-api/pkg/attendance"
	appErrors "github.com/bunkmate/bunkmate-api/pkg/errors"
)

const leaderboardCacheKey = "leaderboard:v1"

type leaderboardUserRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

type leaderboardSubjectRepository interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

// LeaderboardService ranks every user by overall attendance. The board
// is public, so entries expose names but never emails or identifiers.
type LeaderboardService struct {
	users    leaderboardUserRepository
	subjects leaderboardSubjectRepository
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
}

// LeaderboardServiceParams bundles LeaderboardService dependencies.
type LeaderboardServiceParams struct {
	Users    leaderboardUserRepository
	Subjects leaderboardSubjectRepository
	Cache    *CacheService
	TTL      time.Duration
	Logger   *zap.Logger
}

// NewLeaderboardService constructs a LeaderboardService.
func NewLeaderboardService(params LeaderboardServiceParams) *LeaderboardService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.TTL <= 0 {
		params.TTL = 5 * time.Minute
	}
	return &LeaderboardService{
		users:    params.Users,
		subjects: params.Subjects,
		cache:    params.Cache,
		ttl:      params.TTL,
		logger:   params.Logger,
	}
}

// Build returns the ranked board, serving from cache when possible. The
// second return reports whether the cache answered.
func (s *LeaderboardService) Build(ctx context.Context) ([]dto.LeaderboardEntry, bool, error) {
	var cached []dto.LeaderboardEntry
	if hit, err := s.cache.Get(ctx, leaderboardCacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	entries, err := s.compute(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, leaderboardCacheKey, entries, s.ttl); err != nil {
		s.logger.Warn("failed to cache leaderboard", zap.Error(err))
	}
	return entries, false, nil
}

func (s *LeaderboardService) compute(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	users, err := s.users.List(ctx, models.UserFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	subjects, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	known := make(map[string]*dto.LeaderboardEntry, len(users))
	order := make([]string, 0, len(users))
	for _, user := range users {
		known[user.ID] = &dto.LeaderboardEntry{
			Name:     user.Name,
			Semester: user.Semester,
			Batch:    user.Batch,
		}
		order = append(order, user.ID)
	}

	// Ledgers pointing at deleted accounts are skipped rather than
	// failing the whole board.
	for _, subject := range subjects {
		entry, ok := known[subject.UserID]
		if !ok {
			continue
		}
		entry.TotalClasses += subject.Total
		entry.AttendedClasses += subject.Attended
	}

	entries := make([]dto.LeaderboardEntry, 0, len(order))
	for _, id := range order {
		entry := known[id]
		if entry.TotalClasses == 0 {
			continue
		}
		percentage, err := attendance.Percentage(entry.AttendedClasses, entry.TotalClasses)
		if err != nil {
			return nil, err
		}
		entry.Percentage = percentage
		entries = append(entries, *entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Percentage != entries[j].Percentage {
			return entries[i].Percentage > entries[j].Percentage
		}
		return entries[i].Name < entries[j].Name
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
