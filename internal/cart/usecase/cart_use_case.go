package usecase

import (
	"context"

	"go.uber.org/zap"

	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
	"repairflow/internal/pricing"
)

type StateRepository interface {
	Find(ctx context.Context, sessionID string) (*domain.FormState, error)
	Save(ctx context.Context, sessionID string, state domain.FormState) error
	Delete(ctx context.Context, sessionID string) error
}

type FlowLoader interface {
	Load(ctx context.Context, locale string) (*domain.Flow, error)
}

type PricingSource interface {
	Pricing(ctx context.Context) (pricing.Tables, error)
}

type Cart struct {
	State   domain.FormState  `json:"state"`
	Pricing pricing.Breakdown `json:"pricing"`
}

// CartUseCase is the form and cart state store. Each edit is a
// read-modify-write of the whole state; the last write wins.
type CartUseCase struct {
	repo    StateRepository
	flows   FlowLoader
	pricing PricingSource
	logger  *zap.Logger
}

func NewCartUseCase(repo StateRepository, flows FlowLoader, pricing PricingSource, logger *zap.Logger) *CartUseCase {
	return &CartUseCase{
		repo:    repo,
		flows:   flows,
		pricing: pricing,
		logger:  logger,
	}
}

// Hydrate returns the stored state for a session, creating an empty one in
// the given locale on first access.
func (uc *CartUseCase) Hydrate(ctx context.Context, sessionID, locale string) (*Cart, error) {
	state, err := uc.State(ctx, sessionID, locale)
	if err != nil {
		return nil, err
	}
	return uc.priced(ctx, state)
}

// State is Hydrate without pricing.
func (uc *CartUseCase) State(ctx context.Context, sessionID, locale string) (domain.FormState, error) {
	state, err := uc.repo.Find(ctx, sessionID)
	if err == nil {
		return *state, nil
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return domain.FormState{}, err
	}

	fresh := domain.NewFormState(locale)
	if err := uc.repo.Save(ctx, sessionID, fresh); err != nil {
		return domain.FormState{}, err
	}
	uc.logger.Debug("cart created", zap.String("sessionId", sessionID), zap.String("locale", fresh.Language))
	return fresh, nil
}

func (uc *CartUseCase) UpdateField(ctx context.Context, sessionID, field, value string) (*Cart, error) {
	state, err := uc.State(ctx, sessionID, "")
	if err != nil {
		return nil, err
	}

	flow, err := uc.flows.Load(ctx, state.Locale())
	if err != nil {
		return nil, err
	}

	if err := state.Set(field, value, flow.Restrictions); err != nil {
		return nil, err
	}

	if err := uc.repo.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}

	uc.logger.Debug("cart field updated",
		zap.String("sessionId", sessionID),
		zap.String("field", field),
	)
	return uc.priced(ctx, state)
}

// Reset discards every selection. The session keeps its language.
func (uc *CartUseCase) Reset(ctx context.Context, sessionID string) (*Cart, error) {
	language := ""
	if state, err := uc.repo.Find(ctx, sessionID); err == nil {
		language = state.Language
	}

	if err := uc.repo.Delete(ctx, sessionID); err != nil {
		return nil, err
	}

	uc.logger.Debug("cart reset", zap.String("sessionId", sessionID))
	return uc.priced(ctx, domain.NewFormState(language))
}

func (uc *CartUseCase) priced(ctx context.Context, state domain.FormState) (*Cart, error) {
	tables, err := uc.pricing.Pricing(ctx)
	if err != nil {
		return nil, err
	}
	return &Cart{
		State:   state,
		Pricing: pricing.Compute(state, tables),
	}, nil
}
