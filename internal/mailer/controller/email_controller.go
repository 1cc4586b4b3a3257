package controller

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"repairflow/internal/commons"
	"repairflow/internal/domain"
	"repairflow/internal/mailer/service"
)

type MailService interface {
	Contact(ctx context.Context, msg service.ContactMessage) error
	Template(ctx context.Context, req service.TemplateRequest) error
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Locale  string `json:"locale"`
}

type TemplateEmailRequest struct {
	Provider   string                 `json:"provider"`
	TemplateID string                 `json:"templateId"`
	To         string                 `json:"to"`
	Name       string                 `json:"name"`
	Data       map[string]interface{} `json:"data"`
}

type SentResponse struct {
	TraceID   string    `json:"traceId"`
	Sent      bool      `json:"sent"`
	Timestamp time.Time `json:"timestamp"`
}

type EmailController struct {
	service MailService
	logger  *zap.Logger
}

func NewEmailController(service MailService, logger *zap.Logger) *EmailController {
	return &EmailController{
		service: service,
		logger:  logger,
	}
}

func (c *EmailController) Contact(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))

	var req ContactRequest
	if err := commons.DecodeBody(r, &req); err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	err := c.service.Contact(r.Context(), service.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
		Locale:  req.Locale,
	})
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, SentResponse{TraceID: traceID, Sent: true, Timestamp: time.Now().UTC()}, logger)
}

func (c *EmailController) Template(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))

	var req TemplateEmailRequest
	if err := commons.DecodeBody(r, &req); err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	err := c.service.Template(r.Context(), service.TemplateRequest{
		Provider:   req.Provider,
		TemplateID: req.TemplateID,
		To:         domain.Recipient{Name: req.Name, Email: req.To},
		Data:       req.Data,
	})
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, SentResponse{TraceID: traceID, Sent: true, Timestamp: time.Now().UTC()}, logger)
}
