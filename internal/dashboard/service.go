package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	weekDays          = 7
	bestSellerLimit   = 5
	lowStockThreshold = 10
	lowStockLimit     = 5
	cacheKey          = "dashboard:overview"
	cacheTTL          = time.Minute
)

// Service assembles the dashboard. The aggregate queries are independent,
// so they fan out concurrently; a short Redis cache absorbs repeat loads.
type Service struct {
	repo   Repository
	cache  *redis.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service instance. The cache client may be nil.
func NewService(repo Repository, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// Overview returns the dashboard payload, from cache when fresh.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached Overview
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	ov, err := s.build(ctx)
	if err != nil {
		return Overview{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(ov); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("cache dashboard", slog.Any("error", err))
			}
		}
	}
	return ov, nil
}

func (s *Service) build(ctx context.Context) (Overview, error) {
	today := s.startOfDay(s.now())
	var ov Overview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.repo.SalesTotalBetween(gctx, today, today.AddDate(0, 0, 1))
		ov.TodaySales = total
		return err
	})
	g.Go(func() error {
		week, err := s.weekTotals(gctx, today)
		ov.Week = week
		return err
	})
	g.Go(func() error {
		best, err := s.repo.BestSellers(gctx, bestSellerLimit)
		ov.BestSellers = best
		return err
	})
	g.Go(func() error {
		low, err := s.repo.LowStock(gctx, lowStockThreshold, lowStockLimit)
		ov.LowStock = low
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	ov.WeekChart = string(BarChart(ov.Week))
	return ov, nil
}

// weekTotals covers the last seven days ending today, oldest first.
func (s *Service) weekTotals(ctx context.Context, today time.Time) ([]DayTotal, error) {
	out := make([]DayTotal, 0, weekDays)
	for i := weekDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		total, err := s.repo.SalesTotalBetween(ctx, day, day.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		out = append(out, DayTotal{Label: day.Format("02/01"), Total: total})
	}
	return out, nil
}

func (s *Service) startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
