package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repairflow/internal/auth"
	"repairflow/internal/checkout/usecase"
	"repairflow/internal/commons"
	apperrors "repairflow/internal/errors"
)

type mockCheckoutUseCase struct {
	ExecuteFunc func(ctx context.Context, sessionID, accountEmail string) (*usecase.Result, error)
}

func (m *mockCheckoutUseCase) Execute(ctx context.Context, sessionID, accountEmail string) (*usecase.Result, error) {
	return m.ExecuteFunc(ctx, sessionID, accountEmail)
}

func checkoutRequest(sessionID string, user *auth.User) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	ctx := req.Context()
	if sessionID != "" {
		ctx = commons.WithSessionID(ctx, sessionID)
	}
	if user != nil {
		ctx = auth.WithUser(ctx, user)
	}
	return req.WithContext(ctx)
}

func TestCheckoutController_Submit(t *testing.T) {
	ctrl := NewCheckoutController(&mockCheckoutUseCase{
		ExecuteFunc: func(ctx context.Context, sessionID, accountEmail string) (*usecase.Result, error) {
			assert.Equal(t, "sess-1", sessionID)
			assert.Equal(t, "kari@example.no", accountEmail)
			return &usecase.Result{ConfirmationStep: "confirmation", Total: 457}, nil
		},
	}, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Submit(rec, checkoutRequest("sess-1", &auth.User{Email: "kari@example.no"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "confirmation", resp.ConfirmationStep)
	assert.Equal(t, int64(457), resp.Total)
	assert.Equal(t, "NOK", resp.Currency)
}

func TestCheckoutController_Submit_Incomplete(t *testing.T) {
	ctrl := NewCheckoutController(&mockCheckoutUseCase{
		ExecuteFunc: func(ctx context.Context, sessionID, accountEmail string) (*usecase.Result, error) {
			return nil, apperrors.NewValidationError("order is incomplete", apperrors.ValidationDetail{Field: "city", Message: "city is required"})
		},
	}, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Submit(rec, checkoutRequest("sess-1", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp commons.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "city", resp.Details[0].Field)
}

func TestCheckoutController_Submit_NoSession(t *testing.T) {
	ctrl := NewCheckoutController(&mockCheckoutUseCase{}, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Submit(rec, checkoutRequest("", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
