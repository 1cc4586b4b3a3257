package service

import (
	"context"

	"go.uber.org/zap"

	"repairflow/internal/content/seed"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
)

type DocumentWriter interface {
	Upsert(ctx context.Context, docs []domain.Document) error
}

type SeedService struct {
	writer DocumentWriter
	logger *zap.Logger
}

// NewSeedService accepts a nil writer for read-only backends; Seed then
// reports a configuration error.
func NewSeedService(writer DocumentWriter, logger *zap.Logger) *SeedService {
	return &SeedService{
		writer: writer,
		logger: logger,
	}
}

// Seed upserts the fixed seed documents and returns how many were written.
func (s *SeedService) Seed(ctx context.Context) (int, error) {
	if s.writer == nil {
		return 0, apperrors.NewConfigurationError(
			"content backend is read-only",
			"Set CONTENT_BACKEND to sanity or mysql to seed content documents.",
		)
	}

	docs, err := seed.Documents()
	if err != nil {
		return 0, apperrors.NewInternalError("loading seed documents", err)
	}

	if err := s.writer.Upsert(ctx, docs); err != nil {
		return 0, err
	}

	s.logger.Info("content seeded", zap.Int("documents", len(docs)))
	return len(docs), nil
}
