package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
	"repairflow/internal/pricing"
)

type FreeformSender interface {
	SendFreeform(ctx context.Context, email domain.FreeformEmail) error
}

type TemplateSender interface {
	SendTemplate(ctx context.Context, email domain.TemplateEmail) error
}

type SettingsSource interface {
	SiteSettings(ctx context.Context, locale string) (domain.SiteSettings, error)
}

type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
	Locale  string
}

type TemplateRequest struct {
	Provider   string
	TemplateID string
	To         domain.Recipient
	Data       map[string]interface{}
}

// MailService composes outgoing email. Freeform mail always goes through
// SendGrid; templates go to the provider the caller names.
type MailService struct {
	freeform  FreeformSender
	templates map[string]TemplateSender
	settings  SettingsSource
	logger    *zap.Logger
}

func NewMailService(freeform FreeformSender, templates map[string]TemplateSender, settings SettingsSource, logger *zap.Logger) *MailService {
	return &MailService{
		freeform:  freeform,
		templates: templates,
		settings:  settings,
		logger:    logger,
	}
}

// Contact forwards a contact form to the shop's address with the sender as
// reply-to, then sends the sender a receipt when a receipt template is set.
func (s *MailService) Contact(ctx context.Context, msg ContactMessage) error {
	if err := validateContact(msg); err != nil {
		return err
	}

	settings, err := s.settings.SiteSettings(ctx, msg.Locale)
	if err != nil {
		return err
	}
	if settings.ContactEmail == "" {
		return apperrors.NewConfigurationError(
			"no contact address configured",
			"Set contactEmail in the site settings document.",
		)
	}

	text := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\n%s", msg.Name, msg.Email, msg.Phone, msg.Message)
	err = s.freeform.SendFreeform(ctx, domain.FreeformEmail{
		To:      domain.Recipient{Name: settings.Title, Email: settings.ContactEmail},
		ReplyTo: &domain.Recipient{Name: msg.Name, Email: msg.Email},
		Subject: fmt.Sprintf("Contact form: %s", msg.Name),
		Text:    text,
	})
	if err != nil {
		return err
	}

	if settings.ContactTemplateID == "" {
		return nil
	}
	return s.Template(ctx, TemplateRequest{
		Provider:   domain.ProviderSendGrid,
		TemplateID: settings.ContactTemplateID,
		To:         domain.Recipient{Name: msg.Name, Email: msg.Email},
		Data:       map[string]interface{}{"name": msg.Name, "message": msg.Message},
	})
}

func (s *MailService) Template(ctx context.Context, req TemplateRequest) error {
	if req.Provider == "" {
		req.Provider = domain.ProviderSendGrid
	}

	var details []apperrors.ValidationDetail
	sender, ok := s.templates[req.Provider]
	if !ok {
		details = append(details, apperrors.ValidationDetail{Field: "provider", Message: "provider must be sendgrid or customerio"})
	}
	if req.TemplateID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "templateId", Message: "templateId is required"})
	}
	if !validEmail(req.To.Email) {
		details = append(details, apperrors.ValidationDetail{Field: "to", Message: "to must be a valid email address"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	if err := sender.SendTemplate(ctx, domain.TemplateEmail{To: req.To, TemplateID: req.TemplateID, Data: req.Data}); err != nil {
		return err
	}

	s.logger.Info("template email sent",
		zap.String("provider", req.Provider),
		zap.String("templateId", req.TemplateID),
	)
	return nil
}

// OrderConfirmation emails the order summary to the customer using the
// order template from the site settings.
func (s *MailService) OrderConfirmation(ctx context.Context, state domain.FormState, breakdown pricing.Breakdown) error {
	settings, err := s.settings.SiteSettings(ctx, state.Locale())
	if err != nil {
		return err
	}
	if settings.OrderTemplateID == "" {
		return apperrors.NewConfigurationError(
			"no order confirmation template configured",
			"Set orderTemplateId in the site settings document.",
		)
	}

	return s.Template(ctx, TemplateRequest{
		Provider:   domain.ProviderSendGrid,
		TemplateID: settings.OrderTemplateID,
		To:         domain.Recipient{Name: state.Name, Email: state.Email},
		Data:       orderData(state, breakdown),
	})
}

func orderData(state domain.FormState, breakdown pricing.Breakdown) map[string]interface{} {
	lines := make([]map[string]interface{}, 0, len(breakdown.Lines))
	for _, l := range breakdown.Lines {
		lines = append(lines, map[string]interface{}{
			"kind":      l.Kind,
			"key":       l.Key,
			"quantity":  l.Quantity,
			"unitPrice": l.UnitPrice,
			"amount":    l.Amount,
		})
	}

	return map[string]interface{}{
		"name":         state.Name,
		"email":        state.Email,
		"phone":        state.Phone,
		"address":      state.Address,
		"postalCode":   state.PostalCode,
		"city":         state.City,
		"garment":      state.Garment,
		"repairType":   state.RepairType,
		"category":     state.Category,
		"buttonCount":  state.ButtonCount,
		"measurements": state.Measurements,
		"description":  state.Description,
		"deliveryType": state.DeliveryType,
		"shippingTier": state.ShippingTier,
		"lines":        lines,
		"total":        breakdown.Total,
		"currency":     "NOK",
	}
}

func validateContact(msg ContactMessage) error {
	var details []apperrors.ValidationDetail
	if strings.TrimSpace(msg.Name) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if !validEmail(msg.Email) {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email must be a valid email address"})
	}
	if strings.TrimSpace(msg.Message) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "message", Message: "message is required"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\r\n")
}
