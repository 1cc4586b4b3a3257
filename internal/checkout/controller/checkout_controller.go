package controller

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"repairflow/internal/auth"
	"repairflow/internal/checkout/usecase"
	"repairflow/internal/commons"
	apperrors "repairflow/internal/errors"
)

type CheckoutUseCase interface {
	Execute(ctx context.Context, sessionID, accountEmail string) (*usecase.Result, error)
}

type CheckoutResponse struct {
	TraceID          string    `json:"traceId"`
	ConfirmationStep string    `json:"confirmationStep"`
	Total            int64     `json:"total"`
	Currency         string    `json:"currency"`
	Timestamp        time.Time `json:"timestamp"`
}

type CheckoutController struct {
	useCase CheckoutUseCase
	logger  *zap.Logger
}

func NewCheckoutController(useCase CheckoutUseCase, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *CheckoutController) Submit(w http.ResponseWriter, r *http.Request) {
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

	var accountEmail string
	if user, ok := auth.UserFromContext(r.Context()); ok {
		accountEmail = user.Email
	}

	result, err := c.useCase.Execute(r.Context(), sessionID, accountEmail)
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, CheckoutResponse{
		TraceID:          traceID,
		ConfirmationStep: result.ConfirmationStep,
		Total:            result.Total,
		Currency:         "NOK",
		Timestamp:        time.Now().UTC(),
	}, logger)
}
