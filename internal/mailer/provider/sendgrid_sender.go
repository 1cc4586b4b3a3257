package provider

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"repairflow/internal/config"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
)

const sendGridEndpoint = "/v3/mail/send"

type SendGridSender struct {
	cfg    config.SendGridConfig
	logger *zap.Logger
}

func NewSendGridSender(cfg config.SendGridConfig, logger *zap.Logger) *SendGridSender {
	return &SendGridSender{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *SendGridSender) SendFreeform(ctx context.Context, email domain.FreeformEmail) error {
	if err := s.configured(); err != nil {
		return err
	}

	m := mail.NewV3MailInit(s.from(), email.Subject, mail.NewEmail(email.To.Name, email.To.Email), mail.NewContent("text/plain", email.Text))
	if email.HTML != "" {
		m.AddContent(mail.NewContent("text/html", email.HTML))
	}
	if email.ReplyTo != nil {
		m.SetReplyTo(mail.NewEmail(email.ReplyTo.Name, email.ReplyTo.Email))
	}
	return s.send(ctx, m)
}

func (s *SendGridSender) SendTemplate(ctx context.Context, email domain.TemplateEmail) error {
	if err := s.configured(); err != nil {
		return err
	}

	m := mail.NewV3Mail()
	m.SetFrom(s.from())
	m.SetTemplateID(email.TemplateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(email.To.Name, email.To.Email))
	for k, v := range email.Data {
		p.SetDynamicTemplateData(k, v)
	}
	m.AddPersonalizations(p)

	return s.send(ctx, m)
}

func (s *SendGridSender) send(ctx context.Context, m *mail.SGMailV3) error {
	request := sendgrid.GetRequest(s.cfg.APIKey, sendGridEndpoint, s.cfg.Host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(m)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return apperrors.NewUpstreamError(domain.ProviderSendGrid, 0, "request failed", err)
	}

	switch {
	case response.StatusCode == 401 || response.StatusCode == 403:
		return apperrors.NewConfigurationError(
			fmt.Sprintf("sendgrid rejected the API key (status %d)", response.StatusCode),
			"Check that SENDGRID_API_KEY is valid and has the Mail Send permission.",
		)
	case response.StatusCode >= 300:
		msg := gjson.Get(response.Body, "errors.0.message").String()
		if msg == "" {
			msg = "mail send failed"
		}
		return apperrors.NewUpstreamError(domain.ProviderSendGrid, response.StatusCode, msg, nil)
	}

	s.logger.Info("email sent",
		zap.String("provider", domain.ProviderSendGrid),
		zap.Int("status", response.StatusCode),
	)
	return nil
}

func (s *SendGridSender) configured() error {
	if s.cfg.APIKey == "" || s.cfg.FromEmail == "" {
		return apperrors.NewConfigurationError(
			"sendgrid is not configured",
			"Set SENDGRID_API_KEY and SENDGRID_FROM_EMAIL to send email through SendGrid.",
		)
	}
	return nil
}

func (s *SendGridSender) from() *mail.Email {
	return mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
}
