package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"repairflow/internal/config"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
)

// CustomerIOSender sends transactional messages through the Customer.io App
// API. TemplateEmail.TemplateID is the transactional message id.
type CustomerIOSender struct {
	cfg    config.CustomerIOConfig
	rest   *rest.Client
	logger *zap.Logger
}

func NewCustomerIOSender(cfg config.CustomerIOConfig, httpClient *http.Client, logger *zap.Logger) *CustomerIOSender {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CustomerIOSender{
		cfg:    cfg,
		rest:   &rest.Client{HTTPClient: httpClient},
		logger: logger,
	}
}

type customerIORequest struct {
	TransactionalMessageID string                 `json:"transactional_message_id"`
	To                     string                 `json:"to"`
	Identifiers            map[string]string      `json:"identifiers"`
	MessageData            map[string]interface{} `json:"message_data,omitempty"`
}

func (s *CustomerIOSender) SendTemplate(ctx context.Context, email domain.TemplateEmail) error {
	if s.cfg.AppAPIKey == "" {
		return apperrors.NewConfigurationError(
			"customer.io is not configured",
			"Set CUSTOMERIO_APP_API_KEY to an App API key to send transactional messages.",
		)
	}

	data, err := json.Marshal(customerIORequest{
		TransactionalMessageID: email.TemplateID,
		To:                     email.To.Email,
		Identifiers:            map[string]string{"email": email.To.Email},
		MessageData:            email.Data,
	})
	if err != nil {
		return fmt.Errorf("encoding customer.io request: %w", err)
	}

	resp, err := s.rest.SendWithContext(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: strings.TrimRight(s.cfg.BaseURL, "/") + "/v1/send/email",
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + s.cfg.AppAPIKey,
		},
		Body: data,
	})
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return apperrors.NewUpstreamError(domain.ProviderCustomerIO, status, "request failed", err)
	}
	body := []byte(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.NewConfigurationError(
			fmt.Sprintf("customer.io rejected the App API key (status %d)", resp.StatusCode),
			"Check that CUSTOMERIO_APP_API_KEY is a valid App API key.",
		)
	case resp.StatusCode >= 300:
		msg := gjson.GetBytes(body, "meta.error").String()
		if msg == "" {
			msg = "transactional send failed"
		}
		return apperrors.NewUpstreamError(domain.ProviderCustomerIO, resp.StatusCode, msg, nil)
	}

	s.logger.Info("email sent",
		zap.String("provider", domain.ProviderCustomerIO),
		zap.String("deliveryId", gjson.GetBytes(body, "delivery_id").String()),
	)
	return nil
}
