package mailer

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"repairflow/internal/config"
	"repairflow/internal/domain"
	"repairflow/internal/mailer/controller"
	"repairflow/internal/mailer/provider"
	"repairflow/internal/mailer/service"
)

const sendTimeout = 10 * time.Second

type Module struct {
	Service    *service.MailService
	Controller *controller.EmailController
}

func NewModule(cfg *config.Config, settings service.SettingsSource, logger *zap.Logger) *Module {
	sendGrid := provider.NewSendGridSender(cfg.SendGrid, logger)
	customerIO := provider.NewCustomerIOSender(cfg.CustomerIO, &http.Client{Timeout: sendTimeout}, logger)

	svc := service.NewMailService(sendGrid, map[string]service.TemplateSender{
		domain.ProviderSendGrid:   sendGrid,
		domain.ProviderCustomerIO: customerIO,
	}, settings, logger)

	return &Module{
		Service:    svc,
		Controller: controller.NewEmailController(svc, logger),
	}
}
