package checkout

import (
	"go.uber.org/zap"

	"repairflow/internal/checkout/controller"
	"repairflow/internal/checkout/usecase"
)

type Module struct {
	Controller *controller.CheckoutController
}

func NewModule(carts usecase.CartStore, flows usecase.FlowLoader, prices usecase.PricingSource, mailer usecase.OrderMailer, logger *zap.Logger) *Module {
	uc := usecase.NewCheckoutUseCase(carts, flows, prices, mailer, logger)
	return &Module{
		Controller: controller.NewCheckoutController(uc, logger),
	}
}
