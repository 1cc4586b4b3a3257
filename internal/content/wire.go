package content

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"repairflow/internal/config"
	"repairflow/internal/content/controller"
	"repairflow/internal/content/repository"
	"repairflow/internal/content/sanity"
	"repairflow/internal/content/seed"
	"repairflow/internal/content/service"
)

type Module struct {
	Source         service.ContentSource
	Catalog        *service.CatalogService
	Seeder         *service.SeedService
	SeedController *controller.SeedController
}

// NewModule selects the content backend. db is only used by the mysql
// backend and may be nil otherwise.
func NewModule(cfg *config.Config, db *sql.DB, logger *zap.Logger) (*Module, error) {
	var source service.ContentSource
	var writer service.DocumentWriter

	switch cfg.Content.Backend {
	case config.ContentBackendSanity:
		client := sanity.NewClient(cfg.Sanity, logger)
		source, writer = client, client
	case config.ContentBackendMySQL:
		if db == nil {
			return nil, fmt.Errorf("mysql content backend requires a database connection")
		}
		repo := repository.NewMySQLDocumentRepository(db)
		source, writer = repo, repo
	case config.ContentBackendSeed:
		src, err := seed.NewSource()
		if err != nil {
			return nil, fmt.Errorf("loading seed content: %w", err)
		}
		source = src
	default:
		return nil, config.ErrInvalidContentBackend
	}

	seeder := service.NewSeedService(writer, logger)
	return &Module{
		Source:         source,
		Catalog:        service.NewCatalogService(source, logger),
		Seeder:         seeder,
		SeedController: controller.NewSeedController(seeder, cfg.Content.SeedSecret, logger),
	}, nil
}
