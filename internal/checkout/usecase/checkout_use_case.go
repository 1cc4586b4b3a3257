package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	cartusecase "repairflow/internal/cart/usecase"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
	"repairflow/internal/flow/service"
	"repairflow/internal/pricing"
)

type CartStore interface {
	Hydrate(ctx context.Context, sessionID, locale string) (*cartusecase.Cart, error)
	Reset(ctx context.Context, sessionID string) (*cartusecase.Cart, error)
}

type FlowLoader interface {
	Load(ctx context.Context, locale string) (*domain.Flow, error)
}

type PricingSource interface {
	Pricing(ctx context.Context) (pricing.Tables, error)
}

type OrderMailer interface {
	OrderConfirmation(ctx context.Context, state domain.FormState, breakdown pricing.Breakdown) error
}

type Result struct {
	ConfirmationStep string
	Total            int64
}

// CheckoutUseCase submits a finished wizard: it checks every step on the
// session's path, emails the order summary and clears the cart.
type CheckoutUseCase struct {
	carts   CartStore
	flows   FlowLoader
	pricing PricingSource
	mailer  OrderMailer
	logger  *zap.Logger
}

func NewCheckoutUseCase(carts CartStore, flows FlowLoader, prices PricingSource, mailer OrderMailer, logger *zap.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		carts:   carts,
		flows:   flows,
		pricing: prices,
		mailer:  mailer,
		logger:  logger,
	}
}

// Execute checks out the session's cart. accountEmail fills in the contact
// email when the wizard left it empty.
func (uc *CheckoutUseCase) Execute(ctx context.Context, sessionID, accountEmail string) (*Result, error) {
	cart, err := uc.carts.Hydrate(ctx, sessionID, "")
	if err != nil {
		return nil, err
	}
	state := cart.State

	flow, err := uc.flows.Load(ctx, state.Locale())
	if err != nil {
		return nil, err
	}
	if state.Email == "" && accountEmail != "" {
		if err := state.Set(domain.FieldEmail, accountEmail, flow.Restrictions); err != nil {
			return nil, err
		}
	}
	tables, err := uc.pricing.Pricing(ctx)
	if err != nil {
		return nil, err
	}

	if err := validate(service.NewNavigator(flow), state, tables); err != nil {
		return nil, err
	}

	breakdown := pricing.Compute(state, tables)
	if err := uc.mailer.OrderConfirmation(ctx, state, breakdown); err != nil {
		return nil, err
	}

	if _, err := uc.carts.Reset(ctx, sessionID); err != nil {
		uc.logger.Warn("order sent but cart was not cleared", zap.String("sessionId", sessionID), zap.Error(err))
	}

	confirmation := domain.TerminalSlug
	if step, ok := flow.Confirmation(); ok {
		confirmation = step.Slug
	}

	uc.logger.Info("order submitted",
		zap.String("sessionId", sessionID),
		zap.String("garment", state.Garment),
		zap.String("repairType", state.RepairType),
		zap.Int64("total", breakdown.Total),
	)
	return &Result{ConfirmationStep: confirmation, Total: breakdown.Total}, nil
}

func validate(nav *service.Navigator, state domain.FormState, tables pricing.Tables) error {
	var details []apperrors.ValidationDetail
	seen := map[string]bool{}
	add := func(field, message string) {
		if seen[field] {
			return
		}
		seen[field] = true
		details = append(details, apperrors.ValidationDetail{Field: field, Message: message})
	}

	for _, slug := range nav.Path(state) {
		missing, err := nav.Missing(slug, state)
		if err != nil {
			return err
		}
		for _, field := range missing {
			add(field, fmt.Sprintf("%s is required", field))
		}
	}

	if state.Email == "" {
		add(domain.FieldEmail, "email is required")
	}
	if field, ok := tables.PerUnit[state.RepairType]; ok && state.Units(field) < 1 {
		add(field, fmt.Sprintf("%s must be at least 1", field))
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("order is incomplete", details...)
	}
	return nil
}
