package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repairflow/internal/config"
	"repairflow/internal/content/repository"
	"repairflow/internal/content/service"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
)

func TestNewModule_SeedBackend(t *testing.T) {
	cfg := &config.Config{Content: config.ContentConfig{Backend: config.ContentBackendSeed}}

	m, err := NewModule(cfg, nil, zap.NewNop())
	require.NoError(t, err)

	docs, err := m.Source.Documents(context.Background(), domain.DocTypeStep, "nb")
	require.NoError(t, err)
	assert.Len(t, docs, 9)

	_, err = m.Seeder.Seed(context.Background())
	_, ok := apperrors.IsConfigurationError(err)
	assert.True(t, ok)
}

func TestNewModule_SanityBackend(t *testing.T) {
	cfg := &config.Config{
		Content: config.ContentConfig{Backend: config.ContentBackendSanity},
		Sanity:  config.SanityConfig{ProjectID: "abc123", Dataset: "production", APIVersion: "2023-05-03"},
	}

	m, err := NewModule(cfg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, m.SeedController)
}

func TestNewModule_MySQLWithoutDatabase(t *testing.T) {
	cfg := &config.Config{Content: config.ContentConfig{Backend: config.ContentBackendMySQL}}

	_, err := NewModule(cfg, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestNewModule_UnknownBackend(t *testing.T) {
	cfg := &config.Config{Content: config.ContentConfig{Backend: "postgres"}}

	_, err := NewModule(cfg, nil, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalidContentBackend)
}

func TestMySQLBackend_ReadsSingletonsByID(t *testing.T) {
	var source service.ContentSource = repository.NewMySQLDocumentRepository(nil)

	_, ok := source.(service.DocumentFinder)
	assert.True(t, ok)
}
