package controller

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"repairflow/internal/commons"
	apperrors "repairflow/internal/errors"
)

type SeedService interface {
	Seed(ctx context.Context) (int, error)
}

type SeedResponse struct {
	TraceID   string    `json:"traceId"`
	Upserted  int       `json:"upserted"`
	Timestamp time.Time `json:"timestamp"`
}

type SeedController struct {
	service SeedService
	secret  string
	logger  *zap.Logger
}

// NewSeedController guards the endpoint with a bearer secret. An empty secret
// leaves it open, which is only meant for local development.
func NewSeedController(service SeedService, secret string, logger *zap.Logger) *SeedController {
	return &SeedController{
		service: service,
		secret:  secret,
		logger:  logger,
	}
}

func (c *SeedController) Seed(w http.ResponseWriter, r *http.Request) {
	traceID := commons.TraceID(r.Context())
	logger := c.logger.With(zap.String("traceId", traceID))

	if !c.authorized(r) {
		logger.Warn("seed request rejected")
		commons.WriteError(w, r, apperrors.NewUnauthorizedError("a valid seed secret is required"), logger)
		return
	}

	n, err := c.service.Seed(r.Context())
	if err != nil {
		commons.WriteError(w, r, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, SeedResponse{
		TraceID:   traceID,
		Upserted:  n,
		Timestamp: time.Now().UTC(),
	}, logger)
}

func (c *SeedController) authorized(r *http.Request) bool {
	if c.secret == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(c.secret)) == 1
}
