// Package section resolves which wizard section to show for a step and
// builds the payload that section needs: picker options with prices, the
// price summary, progress, and the neighbouring steps.
package section

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
	"repairflow/internal/flow/service"
	"repairflow/internal/pricing"
)

const (
	KindGarmentPicker  = "garment-picker"
	KindRepairPicker   = "repair-picker"
	KindMeasurements   = "measurements"
	KindButtonCount    = "button-count"
	KindDescription    = "description"
	KindDeliveryPicker = "delivery-picker"
	KindContact        = "contact"
	KindSummary        = "summary"
	KindConfirmation   = "confirmation"
	KindGeneric        = "generic"
)

var knownKinds = map[string]struct{}{
	KindGarmentPicker:  {},
	KindRepairPicker:   {},
	KindMeasurements:   {},
	KindButtonCount:    {},
	KindDescription:    {},
	KindDeliveryPicker: {},
	KindContact:        {},
	KindSummary:        {},
	KindConfirmation:   {},
}

type FlowLoader interface {
	Load(ctx context.Context, locale string) (*domain.Flow, error)
}

type Catalog interface {
	Garments(ctx context.Context, locale string) ([]domain.Garment, error)
	RepairTypes(ctx context.Context, locale string) ([]domain.RepairType, error)
	Pricing(ctx context.Context) (pricing.Tables, error)
}

type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	PerUnit     bool   `json:"perUnit,omitempty"`
	Selected    bool   `json:"selected"`
}

type Section struct {
	Slug           string             `json:"slug"`
	Label          string             `json:"label"`
	Kind           string             `json:"kind"`
	GroupID        string             `json:"groupId,omitempty"`
	Required       []string           `json:"required"`
	Missing        []string           `json:"missing"`
	Values         map[string]string  `json:"values"`
	Options        []Option           `json:"options,omitempty"`
	Categories     []Option           `json:"categories,omitempty"`
	CategoryLocked bool               `json:"categoryLocked,omitempty"`
	Tiers          []Option           `json:"tiers,omitempty"`
	UnitPrice      int64              `json:"unitPrice,omitempty"`
	Summary        *pricing.Breakdown `json:"summary,omitempty"`
	Progress       service.Progress   `json:"progress"`
	Previous       string             `json:"previous,omitempty"`
	Next           string             `json:"next"`
}

type Renderer struct {
	flows   FlowLoader
	catalog Catalog
	logger  *zap.Logger
}

func NewRenderer(flows FlowLoader, catalog Catalog, logger *zap.Logger) *Renderer {
	return &Renderer{
		flows:   flows,
		catalog: catalog,
		logger:  logger,
	}
}

func (r *Renderer) Render(ctx context.Context, slug string, state domain.FormState, locale string) (*Section, error) {
	flow, err := r.flows.Load(ctx, locale)
	if err != nil {
		return nil, err
	}

	step, ok := flow.Step(slug)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("step %q not found", slug))
	}
	nav := service.NewNavigator(flow)

	s := &Section{
		Slug:     step.Slug,
		Label:    step.Label,
		Kind:     kindOf(step),
		GroupID:  step.GroupID,
		Required: append([]string{}, step.Required...),
		Values:   make(map[string]string, len(step.Required)),
	}
	for _, field := range step.Required {
		s.Values[field] = state.Value(field)
	}

	if s.Missing, err = nav.Missing(slug, state); err != nil {
		return nil, err
	}
	if s.Missing == nil {
		s.Missing = []string{}
	}
	if s.Progress, err = nav.Progress(slug, state); err != nil {
		return nil, err
	}
	if s.Next, err = nav.Next(slug, state); err != nil {
		return nil, err
	}
	s.Previous, err = nav.Previous(slug, state)
	if err != nil && !errors.Is(err, service.ErrNoPreviousStep) {
		return nil, err
	}

	if err := r.attachPayload(ctx, s, nav, state, locale); err != nil {
		return nil, err
	}

	r.logger.Debug("section rendered",
		zap.String("slug", slug),
		zap.String("kind", s.Kind),
		zap.String("next", s.Next),
	)
	return s, nil
}

func (r *Renderer) attachPayload(ctx context.Context, s *Section, nav *service.Navigator, state domain.FormState, locale string) error {
	var (
		garments []domain.Garment
		repairs  []domain.RepairType
		tables   pricing.Tables
	)

	g, gctx := errgroup.WithContext(ctx)
	if s.Kind == KindGarmentPicker {
		g.Go(func() (err error) {
			garments, err = r.catalog.Garments(gctx, locale)
			return err
		})
	}
	if s.Kind == KindRepairPicker {
		g.Go(func() (err error) {
			repairs, err = r.catalog.RepairTypes(gctx, locale)
			return err
		})
	}
	switch s.Kind {
	case KindGarmentPicker, KindRepairPicker, KindButtonCount, KindDeliveryPicker, KindSummary:
		g.Go(func() (err error) {
			tables, err = r.catalog.Pricing(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	switch s.Kind {
	case KindGarmentPicker:
		s.Options = garmentOptions(garments, state)
		s.Categories = categoryOptions(tables, state)
		s.CategoryLocked = state.Garment == domain.GarmentOuterWear
	case KindRepairPicker:
		s.Options = repairOptions(repairs, nav, tables, state)
	case KindButtonCount:
		s.UnitPrice = tables.Repair[domain.RepairButtons]
	case KindDeliveryPicker:
		s.Options = deliveryOptions(tables, state)
		s.Tiers = tierOptions(tables, state)
	case KindSummary:
		summary := pricing.Compute(state, tables)
		s.Summary = &summary
	}
	return nil
}

func kindOf(step domain.Step) string {
	if _, ok := knownKinds[step.Section]; ok {
		return step.Section
	}
	return KindGeneric
}

func garmentOptions(garments []domain.Garment, state domain.FormState) []Option {
	opts := make([]Option, 0, len(garments))
	for _, g := range garments {
		opts = append(opts, Option{
			Value:       g.Slug,
			Label:       g.Label,
			Description: g.Description,
			Selected:    g.Slug == state.Garment,
		})
	}
	return opts
}

func categoryOptions(tables pricing.Tables, state domain.FormState) []Option {
	keys := sortedKeys(tables.Category)
	opts := make([]Option, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, Option{
			Value:    k,
			Label:    k,
			Price:    tables.Category[k],
			Selected: k == state.Category,
		})
	}
	return opts
}

// repairOptions lists the repair types the selected garment accepts, in
// catalog order.
func repairOptions(repairs []domain.RepairType, nav *service.Navigator, tables pricing.Tables, state domain.FormState) []Option {
	slugs := make([]string, 0, len(repairs))
	bySlug := make(map[string]domain.RepairType, len(repairs))
	for _, rt := range repairs {
		slugs = append(slugs, rt.Slug)
		bySlug[rt.Slug] = rt
	}

	candidates := nav.Candidates(state.Garment, slugs)
	opts := make([]Option, 0, len(candidates))
	for _, slug := range candidates {
		rt := bySlug[slug]
		_, perUnit := tables.PerUnit[slug]
		opts = append(opts, Option{
			Value:       slug,
			Label:       rt.Label,
			Description: rt.Description,
			Price:       tables.Repair[slug],
			PerUnit:     perUnit,
			Selected:    slug == state.RepairType,
		})
	}
	return opts
}

func deliveryOptions(tables pricing.Tables, state domain.FormState) []Option {
	keys := sortedKeys(tables.Shipping)
	opts := make([]Option, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, Option{
			Value:    k,
			Label:    k,
			Price:    tables.ShippingPrice(k, ""),
			Selected: k == state.DeliveryType,
		})
	}
	return opts
}

// tierOptions lists the tiers of the selected delivery type. A delivery type
// with a single tier needs no choice and yields none.
func tierOptions(tables pricing.Tables, state domain.FormState) []Option {
	tiers := tables.Shipping[state.DeliveryType]
	if len(tiers) < 2 {
		return nil
	}

	selected := state.ShippingTier
	if selected == "" {
		selected = tables.DefaultTier[state.DeliveryType]
	}

	keys := make([]string, 0, len(tiers))
	for k := range tiers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if tiers[keys[i]] != tiers[keys[j]] {
			return tiers[keys[i]] < tiers[keys[j]]
		}
		return keys[i] < keys[j]
	})

	opts := make([]Option, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, Option{
			Value:    k,
			Label:    k,
			Price:    tiers[k],
			Selected: k == selected,
		})
	}
	return opts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
