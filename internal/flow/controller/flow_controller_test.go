package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repairflow/internal/commons"
	contentservice "repairflow/internal/content/service"
	"repairflow/internal/content/seed"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
	"repairflow/internal/flow/service"
	"repairflow/internal/section"
)

type mockStateReader struct {
	StateFunc func(ctx context.Context, sessionID, locale string) (domain.FormState, error)
}

func (m *mockStateReader) State(ctx context.Context, sessionID, locale string) (domain.FormState, error) {
	return m.StateFunc(ctx, sessionID, locale)
}

func stateOf(state domain.FormState) *mockStateReader {
	return &mockStateReader{
		StateFunc: func(ctx context.Context, sessionID, locale string) (domain.FormState, error) {
			return state, nil
		},
	}
}

func newTestRouter(t *testing.T, states StateReader) http.Handler {
	t.Helper()
	src, err := seed.NewSource()
	require.NoError(t, err)

	loader := service.NewLoader(src, zap.NewNop())
	renderer := section.NewRenderer(loader, contentservice.NewCatalogService(src, zap.NewNop()), zap.NewNop())
	ctrl := NewFlowController(loader, renderer, states, zap.NewNop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(commons.WithSessionID(r.Context(), "s1")))
		})
	})
	r.Get("/api/flow", ctrl.GetFlow)
	r.Get("/api/flow/steps/{slug}", ctrl.GetStep)
	r.Post("/api/flow/steps/{slug}/continue", ctrl.Continue)
	r.Get("/api/flow/steps/{slug}/previous", ctrl.Previous)
	return r
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestFlowController_GetFlow(t *testing.T) {
	rec := serve(newTestRouter(t, stateOf(domain.FormState{})), http.MethodGet, "/api/flow?locale=en")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp FlowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "en", resp.Locale)
	assert.Equal(t, "garment", resp.Start)
	assert.Len(t, resp.Steps, 9)
	assert.Len(t, resp.Groups, 4)
	assert.Equal(t, []string{domain.RepairHemming, domain.RepairOtherRequest}, resp.Restrictions[domain.GarmentCurtains])
	assert.Equal(t, "Choose repair", resp.Steps[1].Label)
}

func TestFlowController_GetStep(t *testing.T) {
	h := newTestRouter(t, stateOf(domain.FormState{Garment: domain.GarmentCurtains, Language: "en"}))

	rec := serve(h, http.MethodGet, "/api/flow/steps/repair-type")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, section.KindRepairPicker, resp.Section.Kind)
	assert.Equal(t, "Choose repair", resp.Section.Label)
	assert.Len(t, resp.Section.Options, 2)
}

func TestFlowController_GetStep_NotFound(t *testing.T) {
	rec := serve(newTestRouter(t, stateOf(domain.FormState{})), http.MethodGet, "/api/flow/steps/payment")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp commons.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error)
}

func TestFlowController_Continue(t *testing.T) {
	tests := []struct {
		name         string
		slug         string
		state        domain.FormState
		wantNext     string
		wantTerminal bool
	}{
		{name: "branch to description", slug: "repair-type", state: domain.FormState{Garment: "dress", RepairType: domain.RepairOtherRequest}, wantNext: "description"},
		{name: "branch to buttons", slug: "repair-type", state: domain.FormState{Garment: "shirt", RepairType: domain.RepairButtons}, wantNext: "button-count"},
		{name: "no required fields", slug: "checkout", state: domain.FormState{}, wantNext: "confirmation"},
		{name: "terminal", slug: "confirmation", state: domain.FormState{}, wantNext: domain.TerminalSlug, wantTerminal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestRouter(t, stateOf(tt.state)), http.MethodPost, "/api/flow/steps/"+tt.slug+"/continue")

			require.Equal(t, http.StatusOK, rec.Code)
			var resp ContinueResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.slug, resp.Current)
			assert.Equal(t, tt.wantNext, resp.Next)
			assert.Equal(t, tt.wantTerminal, resp.Terminal)
		})
	}
}

func TestFlowController_Continue_MissingFields(t *testing.T) {
	h := newTestRouter(t, stateOf(domain.FormState{Name: "Kari"}))

	rec := serve(h, http.MethodPost, "/api/flow/steps/contact/continue")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp commons.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Details, 4)
	assert.Equal(t, domain.FieldEmail, resp.Details[0].Field)
}

func TestFlowController_Previous(t *testing.T) {
	h := newTestRouter(t, stateOf(domain.FormState{Garment: "shirt", RepairType: domain.RepairButtons}))

	rec := serve(h, http.MethodGet, "/api/flow/steps/delivery/previous")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp PreviousResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "button-count", resp.Previous)

	rec = serve(h, http.MethodGet, "/api/flow/steps/garment/previous")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = PreviousResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Previous)
}

func TestFlowController_StateError(t *testing.T) {
	h := newTestRouter(t, &mockStateReader{
		StateFunc: func(ctx context.Context, sessionID, locale string) (domain.FormState, error) {
			return domain.FormState{}, apperrors.NewInternalError("redis down", nil)
		},
	})

	rec := serve(h, http.MethodPost, "/api/flow/steps/garment/continue")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
