package cart

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"repairflow/internal/cart/controller"
	"repairflow/internal/cart/repository"
	"repairflow/internal/cart/usecase"
	"repairflow/internal/config"
)

type Module struct {
	UseCase    *usecase.CartUseCase
	Controller *controller.CartController
}

func NewModule(client redis.Cmdable, cfg config.CartConfig, flows usecase.FlowLoader, prices usecase.PricingSource, logger *zap.Logger) *Module {
	repo := repository.NewRedisStateRepository(client, cfg.KeyPrefix, cfg.TTL)
	uc := usecase.NewCartUseCase(repo, flows, prices, logger)

	return &Module{
		UseCase:    uc,
		Controller: controller.NewCartController(uc, logger),
	}
}
