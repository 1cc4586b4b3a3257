package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"repairflow/internal/commons"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
	"repairflow/internal/flow/service"
	"repairflow/internal/section"
)

type FlowLoader interface {
	Load(ctx context.Context, locale string) (*domain.Flow, error)
}

type SectionRenderer interface {
	Render(ctx context.Context, slug string, state domain.FormState, locale string) (*section.Section, error)
}

type StateReader interface {
	State(ctx context.Context, sessionID, locale string) (domain.FormState, error)
}

type StepDTO struct {
	Slug         string          `json:"slug"`
	Label        string          `json:"label"`
	GroupID      string          `json:"groupId,omitempty"`
	Position     int             `json:"position"`
	Section      string          `json:"section"`
	Start        bool            `json:"start,omitempty"`
	Confirmation bool            `json:"confirmation,omitempty"`
	Next         string          `json:"next,omitempty"`
	Branches     []domain.Branch `json:"branches,omitempty"`
	Required     []string        `json:"required,omitempty"`
}

type GroupDTO struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Position int      `json:"position"`
	Steps    []string `json:"steps"`
}

type FlowResponse struct {
	TraceID      string              `json:"traceId"`
	Locale       string              `json:"locale"`
	Start        string              `json:"start"`
	Steps        []StepDTO           `json:"steps"`
	Groups       []GroupDTO          `json:"groups"`
	Restrictions map[string][]string `json:"restrictions"`
	Timestamp    time.Time           `json:"timestamp"`
}

type SectionResponse struct {
	TraceID   string           `json:"traceId"`
	Section   *section.Section `json:"section"`
	Timestamp time.Time        `json:"timestamp"`
}

type ContinueResponse struct {
	TraceID   string    `json:"traceId"`
	Current   string    `json:"current"`
	Next      string    `json:"next"`
	Terminal  bool      `json:"terminal"`
	Timestamp time.Time `json:"timestamp"`
}

type PreviousResponse struct {
	TraceID   string    `json:"traceId"`
	Current   string    `json:"current"`
	Previous  string    `json:"previous,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type FlowController struct {
	flows    FlowLoader
	renderer SectionRenderer
	states   StateReader
	logger   *zap.Logger
}

func NewFlowController(flows FlowLoader, renderer SectionRenderer, states StateReader, logger *zap.Logger) *FlowController {
	return &FlowController{
		flows:    flows,
		renderer: renderer,
		states:   states,
		logger:   logger,
	}
}

func (c *FlowController) GetFlow(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = domain.DefaultLocale
	}

	flow, err := c.flows.Load(r.Context(), locale)
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	resp := FlowResponse{
		TraceID:      traceID,
		Locale:       locale,
		Start:        flow.Start().Slug,
		Steps:        make([]StepDTO, 0, len(flow.Steps)),
		Groups:       make([]GroupDTO, 0, len(flow.Groups)),
		Restrictions: flow.Restrictions,
		Timestamp:    time.Now().UTC(),
	}
	for _, s := range flow.Steps {
		resp.Steps = append(resp.Steps, StepDTO{
			Slug:         s.Slug,
			Label:        s.Label,
			GroupID:      s.GroupID,
			Position:     s.Position,
			Section:      s.Section,
			Start:        s.Start,
			Confirmation: s.Confirmation,
			Next:         s.Next,
			Branches:     s.Branches,
			Required:     s.Required,
		})
	}
	for _, g := range flow.Groups {
		resp.Groups = append(resp.Groups, GroupDTO{
			ID:       g.ID,
			Label:    g.Label,
			Position: g.Position,
			Steps:    g.Steps,
		})
	}

	commons.WriteJSON(w, http.StatusOK, resp, logger)
}

func (c *FlowController) GetStep(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))

	state, locale, err := c.sessionState(r)
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	s, err := c.renderer.Render(r.Context(), chi.URLParam(r, "slug"), state, locale)
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, SectionResponse{
		TraceID:   traceID,
		Section:   s,
		Timestamp: time.Now().UTC(),
	}, logger)
}

// Continue advances from a step once its required fields are filled in.
func (c *FlowController) Continue(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))
	slug := chi.URLParam(r, "slug")

	nav, state, err := c.navigator(r)
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	missing, err := nav.Missing(slug, state)
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}
	if len(missing) > 0 {
		details := make([]apperrors.ValidationDetail, 0, len(missing))
		for _, field := range missing {
			details = append(details, apperrors.ValidationDetail{Field: field, Message: field + " is required"})
		}
		commons.WriteError(w, r, apperrors.NewValidationError("step is incomplete", details...), logger)
		return
	}

	next, err := nav.Next(slug, state)
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	logger.Debug("step continued", zap.String("from", slug), zap.String("to", next))
	commons.WriteJSON(w, http.StatusOK, ContinueResponse{
		TraceID:   traceID,
		Current:   slug,
		Next:      next,
		Terminal:  next == domain.TerminalSlug,
		Timestamp: time.Now().UTC(),
	}, logger)
}

func (c *FlowController) Previous(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))
	slug := chi.URLParam(r, "slug")

	nav, state, err := c.navigator(r)
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	prev, err := nav.Previous(slug, state)
	if err != nil && !errors.Is(err, service.ErrNoPreviousStep) {
		commons.WriteError(w, r, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, PreviousResponse{
		TraceID:   traceID,
		Current:   slug,
		Previous:  prev,
		Timestamp: time.Now().UTC(),
	}, logger)
}

func (c *FlowController) navigator(r *http.Request) (*service.Navigator, domain.FormState, error) {
	state, locale, err := c.sessionState(r)
	if err != nil {
		return nil, domain.FormState{}, err
	}
	flow, err := c.flows.Load(r.Context(), locale)
	if err != nil {
		return nil, domain.FormState{}, err
	}
	return service.NewNavigator(flow), state, nil
}

// sessionState reads the wizard state for the request. The locale query
// parameter wins over the session's language.
func (c *FlowController) sessionState(r *http.Request) (domain.FormState, string, error) {
	locale := r.URL.Query().Get("locale")

	state := domain.NewFormState(locale)
	if sessionID, ok := commons.SessionID(r.Context()); ok {
		var err error
		if state, err = c.states.State(r.Context(), sessionID, locale); err != nil {
			return domain.FormState{}, "", err
		}
	}

	if locale == "" {
		locale = state.Locale()
	}
	return state, locale, nil
}
