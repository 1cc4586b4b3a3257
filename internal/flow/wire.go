package flow

import (
	"go.uber.org/zap"

	"repairflow/internal/flow/controller"
	"repairflow/internal/flow/service"
	"repairflow/internal/section"
)

type Module struct {
	Loader     *service.Loader
	Controller *controller.FlowController
}

func NewLoader(source service.ContentSource, logger *zap.Logger) *service.Loader {
	return service.NewLoader(source, logger)
}

func NewModule(loader *service.Loader, catalog section.Catalog, states controller.StateReader, logger *zap.Logger) *Module {
	renderer := section.NewRenderer(loader, catalog, logger)

	return &Module{
		Loader:     loader,
		Controller: controller.NewFlowController(loader, renderer, states, logger),
	}
}
