package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"repairflow/internal/content/codec"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
)

type ContentSource interface {
	Documents(ctx context.Context, docType, locale string) ([]domain.Document, error)
}

// Loader builds the step graph for a locale from flow step, step group and
// garment documents. Garments contribute the repair restrictions.
type Loader struct {
	source ContentSource
	logger *zap.Logger
}

func NewLoader(source ContentSource, logger *zap.Logger) *Loader {
	return &Loader{
		source: source,
		logger: logger,
	}
}

func (l *Loader) Load(ctx context.Context, locale string) (*domain.Flow, error) {
	if locale == "" {
		locale = domain.DefaultLocale
	}

	var stepDocs, groupDocs, garmentDocs []domain.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stepDocs, err = l.source.Documents(gctx, domain.DocTypeStep, locale)
		return err
	})
	g.Go(func() (err error) {
		groupDocs, err = l.source.Documents(gctx, domain.DocTypeStepGroup, locale)
		return err
	})
	g.Go(func() (err error) {
		garmentDocs, err = l.source.Documents(gctx, domain.DocTypeGarment, locale)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	steps := make([]domain.Step, 0, len(stepDocs))
	for _, d := range stepDocs {
		step, err := codec.DecodeStep(d, locale)
		if err != nil {
			return nil, apperrors.NewInternalError("decoding flow step", err)
		}
		steps = append(steps, step)
	}

	groups := make([]domain.StepGroup, 0, len(groupDocs))
	for _, d := range groupDocs {
		group, err := codec.DecodeStepGroup(d, locale)
		if err != nil {
			return nil, apperrors.NewInternalError("decoding step group", err)
		}
		groups = append(groups, group)
	}

	garments := make([]domain.Garment, 0, len(garmentDocs))
	for _, d := range garmentDocs {
		garment, err := codec.DecodeGarment(d, locale)
		if err != nil {
			return nil, apperrors.NewInternalError("decoding garment", err)
		}
		garments = append(garments, garment)
	}

	flow, err := domain.NewFlow(steps, groups, domain.RestrictionsFor(garments))
	if err != nil {
		return nil, apperrors.NewInternalError("invalid flow configuration", err)
	}

	l.logger.Debug("flow loaded",
		zap.String("locale", locale),
		zap.Int("steps", len(flow.Steps)),
		zap.Int("groups", len(flow.Groups)),
		zap.Int("restrictedGarments", len(flow.Restrictions)),
	)
	return flow, nil
}
