package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"repairflow/internal/config"
	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
)

func newSendGrid(t *testing.T, handler http.HandlerFunc) *SendGridSender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewSendGridSender(config.SendGridConfig{
		APIKey:    "SG.test",
		FromEmail: "post@example.no",
		FromName:  "Sy og fiks",
		Host:      srv.URL,
	}, zap.NewNop())
}

func TestSendGridSender_SendFreeform(t *testing.T) {
	var body []byte
	s := newSendGrid(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	})

	err := s.SendFreeform(context.Background(), domain.FreeformEmail{
		To:      domain.Recipient{Email: "post@example.no"},
		ReplyTo: &domain.Recipient{Name: "Kari", Email: "kari@example.no"},
		Subject: "Contact form",
		Text:    "Hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "post@example.no", gjson.GetBytes(body, "from.email").String())
	assert.Equal(t, "kari@example.no", gjson.GetBytes(body, "reply_to.email").String())
	assert.Equal(t, "Contact form", gjson.GetBytes(body, "subject").String())
	assert.Equal(t, "text/plain", gjson.GetBytes(body, "content.0.type").String())
	assert.Equal(t, int64(1), gjson.GetBytes(body, "content.#").Int())
}

func TestSendGridSender_SendTemplate(t *testing.T) {
	var body []byte
	s := newSendGrid(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	})

	err := s.SendTemplate(context.Background(), domain.TemplateEmail{
		To:         domain.Recipient{Name: "Kari", Email: "kari@example.no"},
		TemplateID: "d-order-confirmation",
		Data:       map[string]interface{}{"total": 457, "garment": "trousers"},
	})
	require.NoError(t, err)

	assert.Equal(t, "d-order-confirmation", gjson.GetBytes(body, "template_id").String())
	assert.Equal(t, "kari@example.no", gjson.GetBytes(body, "personalizations.0.to.0.email").String())
	assert.Equal(t, int64(457), gjson.GetBytes(body, "personalizations.0.dynamic_template_data.total").Int())
}

func TestSendGridSender_NotConfigured(t *testing.T) {
	s := NewSendGridSender(config.SendGridConfig{}, zap.NewNop())

	err := s.SendTemplate(context.Background(), domain.TemplateEmail{TemplateID: "d-1"})

	ce, ok := apperrors.IsConfigurationError(err)
	require.True(t, ok)
	assert.Contains(t, ce.Instruction, "SENDGRID_API_KEY")
}

func TestSendGridSender_RejectedKey(t *testing.T) {
	s := newSendGrid(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"errors": [{"message": "The provided authorization grant is invalid"}]}`)
	})

	err := s.SendFreeform(context.Background(), domain.FreeformEmail{To: domain.Recipient{Email: "a@b.no"}, Subject: "s", Text: "t"})

	_, ok := apperrors.IsConfigurationError(err)
	assert.True(t, ok)
}

func TestSendGridSender_UpstreamError(t *testing.T) {
	s := newSendGrid(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"errors": [{"message": "The template_id must be a valid GUID"}]}`)
	})

	err := s.SendTemplate(context.Background(), domain.TemplateEmail{To: domain.Recipient{Email: "a@b.no"}, TemplateID: "bad"})

	ue, ok := apperrors.IsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ue.StatusCode)
	assert.Equal(t, "The template_id must be a valid GUID", ue.Message)
}
