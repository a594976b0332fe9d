package store

import (
	"context"

	"billing-backend/internal/apperr"
	"billing-backend/internal/models"
)

func (s *Store) RecordRun(ctx context.Context, run *models.GenerationRun) error {
	if err := s.DB.WithContext(ctx).Create(run).Error; err != nil {
		return apperr.Storage("Failed to record generation run", err)
	}
	return nil
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.GenerationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	runs := []models.GenerationRun{}
	if err := s.DB.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, apperr.Storage("Failed to retrieve generation runs", err)
	}
	return runs, nil
}
