package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"repairflow/internal/content/codec"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
	"repairflow/internal/pricing"
)

type ContentSource interface {
	Documents(ctx context.Context, docType, locale string) ([]domain.Document, error)
}

// DocumentFinder is implemented by sources that can fetch a single document
// by id. Singleton documents are read through it when available.
type DocumentFinder interface {
	FindByID(ctx context.Context, id, locale string) (*domain.Document, error)
}

// CatalogService reads the non-graph content: garments, repair types, the
// pricing overlay and site settings.
type CatalogService struct {
	source ContentSource
	logger *zap.Logger
}

func NewCatalogService(source ContentSource, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		source: source,
		logger: logger,
	}
}

func (s *CatalogService) Garments(ctx context.Context, locale string) ([]domain.Garment, error) {
	docs, err := s.source.Documents(ctx, domain.DocTypeGarment, localeOrDefault(locale))
	if err != nil {
		return nil, err
	}

	garments := make([]domain.Garment, 0, len(docs))
	for _, d := range docs {
		g, err := codec.DecodeGarment(d, localeOrDefault(locale))
		if err != nil {
			return nil, apperrors.NewInternalError("decoding garment", err)
		}
		garments = append(garments, g)
	}
	sort.SliceStable(garments, func(i, j int) bool {
		return garments[i].Position < garments[j].Position
	})
	return garments, nil
}

func (s *CatalogService) RepairTypes(ctx context.Context, locale string) ([]domain.RepairType, error) {
	docs, err := s.source.Documents(ctx, domain.DocTypeRepairType, localeOrDefault(locale))
	if err != nil {
		return nil, err
	}

	types := make([]domain.RepairType, 0, len(docs))
	for _, d := range docs {
		rt, err := codec.DecodeRepairType(d, localeOrDefault(locale))
		if err != nil {
			return nil, apperrors.NewInternalError("decoding repair type", err)
		}
		types = append(types, rt)
	}
	sort.SliceStable(types, func(i, j int) bool {
		return types[i].Position < types[j].Position
	})
	return types, nil
}

// Pricing returns the static price tables with any CMS pricing documents
// merged over them. Without a pricing document the defaults apply unchanged.
func (s *CatalogService) Pricing(ctx context.Context) (pricing.Tables, error) {
	docs, err := s.singleton(ctx, domain.DocTypePricing, domain.PricingDocID, domain.DefaultLocale)
	if err != nil {
		return pricing.Tables{}, err
	}

	tables := pricing.DefaultTables()
	for _, d := range docs {
		override, err := codec.DecodePricing(d)
		if err != nil {
			return pricing.Tables{}, apperrors.NewInternalError("decoding pricing", err)
		}
		tables = tables.Merge(override)
	}
	return tables, nil
}

func (s *CatalogService) SiteSettings(ctx context.Context, locale string) (domain.SiteSettings, error) {
	docs, err := s.singleton(ctx, domain.DocTypeSiteSettings, domain.SiteSettingsDocID, localeOrDefault(locale))
	if err != nil {
		return domain.SiteSettings{}, err
	}
	if len(docs) == 0 {
		s.logger.Warn("no site settings document, using defaults")
		return domain.SiteSettings{DefaultLocale: domain.DefaultLocale}, nil
	}

	settings, err := codec.DecodeSiteSettings(docs[0], localeOrDefault(locale))
	if err != nil {
		return domain.SiteSettings{}, apperrors.NewInternalError("decoding site settings", err)
	}
	return settings, nil
}

func (s *CatalogService) singleton(ctx context.Context, docType, id, locale string) ([]domain.Document, error) {
	finder, ok := s.source.(DocumentFinder)
	if !ok {
		return s.source.Documents(ctx, docType, locale)
	}

	doc, err := finder.FindByID(ctx, id, locale)
	if _, notFound := apperrors.IsNotFoundError(err); notFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []domain.Document{*doc}, nil
}

func localeOrDefault(locale string) string {
	if locale == "" {
		return domain.DefaultLocale
	}
	return locale
}
