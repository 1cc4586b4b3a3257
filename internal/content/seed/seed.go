package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"

	"repairflow/internal/domain"
)

//go:embed seed.yaml
var seedFile []byte

// Documents returns the fixed seed documents in file order.
func Documents() ([]domain.Document, error) {
	return parse(seedFile)
}

func parse(data []byte) ([]domain.Document, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing seed documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(raw))
	for i, fields := range raw {
		id, _ := fields["_id"].(string)
		docType, _ := fields["_type"].(string)
		if id == "" || docType == "" {
			return nil, fmt.Errorf("seed document %d: _id and _type are required", i)
		}
		locale, _ := fields["language"].(string)

		body, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("encoding seed document %q: %w", id, err)
		}
		docs = append(docs, domain.Document{
			ID:     id,
			Type:   docType,
			Locale: locale,
			Body:   body,
		})
	}
	return docs, nil
}

// Source serves the seed documents as a read-only content backend, for local
// development and for the CLI when no CMS is reachable.
type Source struct {
	docs []domain.Document
}

func NewSource() (*Source, error) {
	docs, err := Documents()
	if err != nil {
		return nil, err
	}
	return &Source{docs: docs}, nil
}

func (s *Source) Documents(_ context.Context, docType, locale string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range s.docs {
		if d.Type != docType {
			continue
		}
		if d.Locale != "" && d.Locale != locale {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
