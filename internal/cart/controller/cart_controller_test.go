package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repairflow/internal/cart/usecase"
	"repairflow/internal/commons"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
	"repairflow/internal/pricing"
)

type mockCartUseCase struct {
	HydrateFunc     func(ctx context.Context, sessionID, locale string) (*usecase.Cart, error)
	UpdateFieldFunc func(ctx context.Context, sessionID, field, value string) (*usecase.Cart, error)
	ResetFunc       func(ctx context.Context, sessionID string) (*usecase.Cart, error)
}

func (m *mockCartUseCase) Hydrate(ctx context.Context, sessionID, locale string) (*usecase.Cart, error) {
	return m.HydrateFunc(ctx, sessionID, locale)
}

func (m *mockCartUseCase) UpdateField(ctx context.Context, sessionID, field, value string) (*usecase.Cart, error) {
	return m.UpdateFieldFunc(ctx, sessionID, field, value)
}

func (m *mockCartUseCase) Reset(ctx context.Context, sessionID string) (*usecase.Cart, error) {
	return m.ResetFunc(ctx, sessionID)
}

func newRouter(ctrl *CartController) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get("X-Test-Session"); id != "" {
				r = r.WithContext(commons.WithSessionID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/api/cart", ctrl.Get)
	r.Put("/api/cart/fields/{name}", ctrl.UpdateField)
	r.Delete("/api/cart", ctrl.Reset)
	return r
}

func TestCartController_Get(t *testing.T) {
	ctrl := NewCartController(&mockCartUseCase{
		HydrateFunc: func(ctx context.Context, sessionID, locale string) (*usecase.Cart, error) {
			assert.Equal(t, "s1", sessionID)
			assert.Equal(t, "en", locale)
			return &usecase.Cart{State: domain.NewFormState(locale), Pricing: pricing.Breakdown{Lines: []pricing.Line{}}}, nil
		},
	}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/cart?locale=en", nil)
	req.Header.Set("X-Test-Session", "s1")
	rec := httptest.NewRecorder()
	newRouter(ctrl).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "en", resp.State.Language)
}

func TestCartController_UpdateField(t *testing.T) {
	ctrl := NewCartController(&mockCartUseCase{
		UpdateFieldFunc: func(ctx context.Context, sessionID, field, value string) (*usecase.Cart, error) {
			assert.Equal(t, domain.FieldButtonCount, field)
			assert.Equal(t, "3", value)
			state := domain.FormState{RepairType: domain.RepairButtons, ButtonCount: value}
			return &usecase.Cart{State: state, Pricing: pricing.Compute(state, pricing.DefaultTables())}, nil
		},
	}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/api/cart/fields/buttonCount", strings.NewReader(`{"value": "3"}`))
	req.Header.Set("X-Test-Session", "s1")
	rec := httptest.NewRecorder()
	newRouter(ctrl).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(117), resp.Pricing.Total)
}

func TestCartController_UpdateField_InvalidBody(t *testing.T) {
	ctrl := NewCartController(&mockCartUseCase{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/api/cart/fields/garment", strings.NewReader(`{`))
	req.Header.Set("X-Test-Session", "s1")
	rec := httptest.NewRecorder()
	newRouter(ctrl).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartController_UpdateField_ValidationError(t *testing.T) {
	ctrl := NewCartController(&mockCartUseCase{
		UpdateFieldFunc: func(ctx context.Context, sessionID, field, value string) (*usecase.Cart, error) {
			return nil, apperrors.NewValidationError("invalid field value", apperrors.ValidationDetail{Field: field, Message: "locked"})
		},
	}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/api/cart/fields/category", strings.NewReader(`{"value": "standard"}`))
	req.Header.Set("X-Test-Session", "s1")
	rec := httptest.NewRecorder()
	newRouter(ctrl).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp commons.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "category", resp.Details[0].Field)
}

func TestCartController_Reset(t *testing.T) {
	called := false
	ctrl := NewCartController(&mockCartUseCase{
		ResetFunc: func(ctx context.Context, sessionID string) (*usecase.Cart, error) {
			called = true
			return &usecase.Cart{State: domain.NewFormState("")}, nil
		},
	}, zap.NewNop())

	req := httptest.NewRequest(http.MethodDelete, "/api/cart", nil)
	req.Header.Set("X-Test-Session", "s1")
	rec := httptest.NewRecorder()
	newRouter(ctrl).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestCartController_MissingSession(t *testing.T) {
	ctrl := NewCartController(&mockCartUseCase{}, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(ctrl).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
