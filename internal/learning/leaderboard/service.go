// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/mathlab/internal/platform/calendar"
	"github.com/taibuivan/mathlab/internal/platform/constants"
	"github.com/taibuivan/mathlab/internal/platform/metrics"
)

// Service implements leaderboard use cases.
type Service struct {
	repository Repository
	cache      Cache
	clock      *calendar.Clock
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewService constructs a new leaderboard [Service].
func NewService(repository Repository, cache Cache, clock *calendar.Clock, recorder metrics.Recorder, logger *slog.Logger) *Service {
	if clock == nil {
		clock = calendar.New(nil)
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repository: repository,
		cache:      cache,
		clock:      clock,
		metrics:    recorder,
		logger:     logger,
	}
}

// CacheKey names the cached top list of a league for the week starting at weekStart.
func CacheKey(league string, weekStart time.Time) string {
	return constants.RedisPrefixLeaderboard + league + ":" + calendar.Key(weekStart)
}

/*
Weekly returns the top of a league for the current week.

Description: The cache holds the top MaxLimit entries per league and week,
so every limit is served from the same key. Cache failures are logged and
the list is read from Postgres.

Parameters:
  - context: context.Context
  - league: string (empty means the default league)
  - limit: int (clamped to [1, MaxLimit], 0 means DefaultLimit)

Returns:
  - []*Entry: At most limit entries
  - error: Database errors
*/
func (service *Service) Weekly(context context.Context, league string, limit int) ([]*Entry, error) {
	league = strings.TrimSpace(league)
	if league == "" {
		league = constants.DefaultLeague
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	week := service.currentWeek()
	key := CacheKey(league, week.Start)

	if entries, ok := service.cached(context, key); ok {
		service.metrics.RecordLeaderboardCache(true)
		return head(entries, limit), nil
	}
	service.metrics.RecordLeaderboardCache(false)

	entries, err := service.repository.Top(context, league, week, MaxLimit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard_service_top_failed: %w", err)
	}

	service.store(context, key, entries)
	return head(entries, limit), nil
}

/*
MyRank returns the caller's standing in the current week.

Description: A user without an entry gets a zero-XP entry in the default
league. Its rank is reported as nil until the next re-rank.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Standing: Rank, league and weekly XP
  - error: Database errors
*/
func (service *Service) MyRank(context context.Context, userID string) (*Standing, error) {
	week := service.currentWeek()

	standing, err := service.repository.Find(context, userID, week)
	if err == nil {
		return standing, nil
	}
	if !errors.Is(err, errEntryNotFound) {
		return nil, fmt.Errorf("leaderboard_service_find_failed: %w", err)
	}

	if err := service.repository.Create(context, userID, constants.DefaultLeague, week); err != nil {
		return nil, fmt.Errorf("leaderboard_service_create_failed: %w", err)
	}

	return &Standing{
		Rank:      nil,
		League:    constants.DefaultLeague,
		WeeklyXP:  0,
		WeekStart: calendar.Key(week.Start),
		WeekEnd:   calendar.Key(week.End),
	}, nil
}

/*
UpdateWeeklyXP adds delta to the user's entry for the current week.

Description: The credit is one atomic statement. The league is re-ranked
afterwards on a best-effort basis, then the cached bronze list of the week
is dropped. Failures of either follow-up are only logged.

Parameters:
  - context: context.Context
  - userID: string
  - delta: int (non-positive values are ignored)

Returns:
  - error: Storage failures
*/
func (service *Service) UpdateWeeklyXP(context context.Context, userID string, delta int) error {
	if delta <= 0 {
		return nil
	}

	week := service.currentWeek()
	league, err := service.repository.AddWeeklyXP(context, userID, delta, week)
	if err != nil {
		return fmt.Errorf("leaderboard_service_add_weekly_xp_failed: %w", err)
	}

	// The credit is already committed; a stale rank is repaired by the next credit.
	if err := service.repository.Rerank(context, league, week); err != nil {
		service.logger.Warn("leaderboard_rerank_failed",
			slog.String("league", league), slog.String("week_start", calendar.Key(week.Start)), slog.Any("error", err))
	}

	key := CacheKey(constants.DefaultLeague, week.Start)
	if err := service.cache.Delete(context, key); err != nil {
		service.logger.Warn("leaderboard_cache_invalidate_failed", slog.String("key", key), slog.Any("error", err))
	}

	return nil
}

func (service *Service) currentWeek() Week {
	start := service.clock.WeekStart()
	return Week{Start: start, End: calendar.WeekEnd(start)}
}

func (service *Service) cached(context context.Context, key string) ([]*Entry, bool) {
	raw, ok, err := service.cache.Get(context, key)
	if err != nil {
		service.logger.Warn("leaderboard_cache_read_failed", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entries []*Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		service.logger.Warn("leaderboard_cache_corrupt", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return entries, true
}

func (service *Service) store(context context.Context, key string, entries []*Entry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		service.logger.Warn("leaderboard_cache_encode_failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := service.cache.Set(context, key, raw, constants.LeaderboardCacheTTL); err != nil {
		service.logger.Warn("leaderboard_cache_write_failed", slog.String("key", key), slog.Any("error", err))
	}
}

func head(entries []*Entry, limit int) []*Entry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
