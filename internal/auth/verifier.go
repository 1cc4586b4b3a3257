package auth

import (
	"context"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"repairflow/internal/config"
	apperrors "repairflow/internal/errors"
)

const provider = "auth"

type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HTTPVerifier checks a session cookie against a NextAuth-compatible session
// endpoint. A session is authenticated when the endpoint returns a user email.
type HTTPVerifier struct {
	cfg    config.AuthConfig
	rest   *rest.Client
	logger *zap.Logger
}

func NewHTTPVerifier(cfg config.AuthConfig, logger *zap.Logger) *HTTPVerifier {
	return &HTTPVerifier{
		cfg:    cfg,
		rest:   &rest.Client{HTTPClient: &http.Client{Timeout: cfg.Timeout}},
		logger: logger,
	}
}

func (v *HTTPVerifier) CookieName() string {
	return v.cfg.CookieName
}

func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*User, error) {
	if v.cfg.SessionURL == "" {
		return nil, apperrors.NewConfigurationError(
			"auth session endpoint is not configured",
			"Set AUTH_SESSION_URL to the session endpoint of the auth service, for example https://shop.example/api/auth/session.",
		)
	}
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("sign in to continue")
	}

	cookie := &http.Cookie{Name: v.cfg.CookieName, Value: token}
	resp, err := v.rest.SendWithContext(ctx, rest.Request{
		Method:  rest.Get,
		BaseURL: v.cfg.SessionURL,
		Headers: map[string]string{
			"Accept": "application/json",
			"Cookie": cookie.String(),
		},
	})
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, apperrors.NewUpstreamError(provider, status, "session request failed", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.NewUnauthorizedError("session is not valid")
	case resp.StatusCode >= http.StatusMultipleChoices:
		return nil, apperrors.NewUpstreamError(provider, resp.StatusCode, "session check failed", nil)
	}

	user := gjson.Get(resp.Body, "user")
	email := user.Get("email").String()
	if email == "" {
		return nil, apperrors.NewUnauthorizedError("session is not valid")
	}

	return &User{Email: email, Name: user.Get("name").String()}, nil
}
