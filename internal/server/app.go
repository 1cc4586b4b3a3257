package server

import (
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"repairflow/internal/auth"
	"repairflow/internal/cart"
	"repairflow/internal/checkout"
	"repairflow/internal/config"
	"repairflow/internal/content"
	"repairflow/internal/flow"
	"repairflow/internal/mailer"
)

// NewHandler wires every module into the HTTP API. db is only needed by the
// mysql content backend.
func NewHandler(cfg *config.Config, db *sql.DB, rdb redis.Cmdable, logger *zap.Logger) (http.Handler, error) {
	contentModule, err := content.NewModule(cfg, db, logger)
	if err != nil {
		return nil, err
	}

	loader := flow.NewLoader(contentModule.Source, logger)
	cartModule := cart.NewModule(rdb, cfg.Cart, loader, contentModule.Catalog, logger)
	flowModule := flow.NewModule(loader, contentModule.Catalog, cartModule.UseCase, logger)
	mailerModule := mailer.NewModule(cfg, contentModule.Catalog, logger)
	checkoutModule := checkout.NewModule(cartModule.UseCase, loader, contentModule.Catalog, mailerModule.Service, logger)

	verifier := auth.NewHTTPVerifier(cfg.Auth, logger)

	return NewRouter(Controllers{
		Flow:     flowModule.Controller,
		Cart:     cartModule.Controller,
		Checkout: checkoutModule.Controller,
		Email:    mailerModule.Controller,
		Seed:     contentModule.SeedController,
	}, auth.RequireSession(verifier, logger), cfg.Cart.TTL, logger), nil
}
