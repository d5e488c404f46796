package service

import (
	"context"

	"wanderlust/internal/recommendations/cache"
	"wanderlust/internal/recommendations/engine"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/model"
)

type RecommendationService interface {
	// ForUser never fails: any engine or cache problem yields an empty list.
	ForUser(ctx context.Context, userID string) []model.Recommendation
	Invalidate(ctx context.Context, userID string) error
}

type recommendationService struct {
	engine engine.Engine
	cache  cache.Cache
	log    *logger.Logger
}

func NewRecommendationService(engine engine.Engine, cache cache.Cache, log *logger.Logger) RecommendationService {
	return &recommendationService{
		engine: engine,
		cache:  cache,
		log:    log,
	}
}

func (s *recommendationService) ForUser(ctx context.Context, userID string) []model.Recommendation {
	cached, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.log.Warn("Recommendation cache read failed", "user_id", userID, "error", err)
	}
	if ok {
		s.log.Debug("Recommendations served from cache", "user_id", userID, "count", len(cached))
		return cached
	}

	recs, err := s.engine.Recommend(ctx, userID)
	if err != nil {
		s.log.Warn("Recommendation engine unavailable", "user_id", userID, "error", err)
		return []model.Recommendation{}
	}

	if err := s.cache.Set(ctx, userID, recs); err != nil {
		s.log.Warn("Recommendation cache write failed", "user_id", userID, "error", err)
	}
	s.log.Info("Recommendations fetched", "user_id", userID, "count", len(recs))
	return recs
}

func (s *recommendationService) Invalidate(ctx context.Context, userID string) error {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		return err
	}
	s.log.Debug("Recommendation cache invalidated", "user_id", userID)
	return nil
}
