package service

import (
	"context"
	"strings"

	"checkpoint-service/internal/repository"
)

// AnalyticsService exposes the dashboard aggregates. Pass-through over the
// analytics repository apart from input checks.
type AnalyticsService struct {
	analyticsRepo *repository.AnalyticsRepository
}

func NewAnalyticsService(analyticsRepo *repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo}
}

// IncompleteJourneysByLane counts dummy log rows grouped by lane.
func (s *AnalyticsService) IncompleteJourneysByLane(ctx context.Context) ([]repository.LaneCount, error) {
	return s.analyticsRepo.IncompleteByLane(ctx)
}

// CheckpointThroughput counts distinct vehicles per checkpoint in a lane.
func (s *AnalyticsService) CheckpointThroughput(ctx context.Context, lane string) ([]repository.CheckpointCount, error) {
	lane = strings.TrimSpace(lane)
	if lane == "" {
		return nil, ErrInvalidInput
	}
	return s.analyticsRepo.VehiclesByCheckpoint(ctx, lane)
}

// TypeDistribution counts registered vehicles per derived type.
func (s *AnalyticsService) TypeDistribution(ctx context.Context) ([]repository.TypeCount, error) {
	return s.analyticsRepo.VehiclesByType(ctx)
}
