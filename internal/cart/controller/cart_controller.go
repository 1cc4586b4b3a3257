package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"repairflow/internal/cart/usecase"
	"repairflow/internal/commons"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
	"repairflow/internal/pricing"
)

type CartUseCase interface {
	Hydrate(ctx context.Context, sessionID, locale string) (*usecase.Cart, error)
	UpdateField(ctx context.Context, sessionID, field, value string) (*usecase.Cart, error)
	Reset(ctx context.Context, sessionID string) (*usecase.Cart, error)
}

type UpdateFieldRequest struct {
	Value string `json:"value"`
}

type CartResponse struct {
	TraceID   string            `json:"traceId"`
	State     domain.FormState  `json:"state"`
	Pricing   pricing.Breakdown `json:"pricing"`
	Timestamp time.Time         `json:"timestamp"`
}

type CartController struct {
	useCase CartUseCase
	logger  *zap.Logger
}

func NewCartController(useCase CartUseCase, logger *zap.Logger) *CartController {
	return &CartController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, func(sessionID string) (*usecase.Cart, error) {
		return c.useCase.Hydrate(r.Context(), sessionID, r.URL.Query().Get("locale"))
	})
}

func (c *CartController) UpdateField(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, func(sessionID string) (*usecase.Cart, error) {
		var req UpdateFieldRequest
		if err := commons.DecodeBody(r, &req); err != nil {
			return nil, err
		}
		return c.useCase.UpdateField(r.Context(), sessionID, chi.URLParam(r, "name"), req.Value)
	})
}

func (c *CartController) Reset(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, func(sessionID string) (*usecase.Cart, error) {
		return c.useCase.Reset(r.Context(), sessionID)
	})
}

func (c *CartController) handle(w http.ResponseWriter, r *http.Request, fn func(sessionID string) (*usecase.Cart, error)) {
	traceID := commons.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))

	sessionID, ok := commons.SessionID(r.Context())
	if !ok {
		commons.WriteError(w, r, apperrors.NewValidationError("missing wizard session", apperrors.ValidationDetail{
			Field:   "session",
			Message: "the wizard session cookie is required",
		}), logger)
		return
	}

	cart, err := fn(sessionID)
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, CartResponse{
		TraceID:   traceID,
		State:     cart.State,
		Pricing:   cart.Pricing,
		Timestamp: time.Now().UTC(),
	}, logger)
}
