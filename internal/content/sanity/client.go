// Package sanity reads and writes content documents through the Sanity
// HTTP API: GROQ queries for reads and createOrReplace mutations for writes.
package sanity

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

const provider = "sanity"

// documentsQuery selects documents of one type that are either shared by all
// languages or written in the requested one.
const documentsQuery = `*[_type == $type && (!defined(language) || language == $locale)] | order(position asc)`

type Client struct {
	rest       *rest.Client
	queryURL   string
	mutateURL  string
	readToken  string
	writeToken string
	logger     *zap.Logger
}

type Option func(*Client)

// WithBaseURL points both reads and writes at one host, for tests and proxies.
func WithBaseURL(base string, apiVersion, dataset string) Option {
	return func(c *Client) {
		base = strings.TrimRight(base, "/")
		c.queryURL = fmt.Sprintf("%s/v%s/data/query/%s", base, apiVersion, dataset)
		c.mutateURL = fmt.Sprintf("%s/v%s/data/mutate/%s", base, apiVersion, dataset)
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.rest = &rest.Client{HTTPClient: hc}
	}
}

func NewClient(cfg config.SanityConfig, logger *zap.Logger, opts ...Option) *Client {
	readHost := "api.sanity.io"
	if cfg.UseCDN {
		readHost = "apicdn.sanity.io"
	}

	c := &Client{
		rest:       &rest.Client{HTTPClient: &http.Client{Timeout: cfg.Timeout}},
		queryURL:   fmt.Sprintf("https://%s.%s/v%s/data/query/%s", cfg.ProjectID, readHost, cfg.APIVersion, cfg.Dataset),
		mutateURL:  fmt.Sprintf("https://%s.api.sanity.io/v%s/data/mutate/%s", cfg.ProjectID, cfg.APIVersion, cfg.Dataset),
		readToken:  cfg.ReadToken,
		writeToken: cfg.WriteToken,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Documents(ctx context.Context, docType, locale string) ([]domain.Document, error) {
	req := rest.Request{
		Method:  rest.Get,
		BaseURL: c.queryURL,
		Headers: map[string]string{"Accept": "application/json"},
		QueryParams: map[string]string{
			"query":   documentsQuery,
			"$type":   quote(docType),
			"$locale": quote(locale),
		},
	}
	if c.readToken != "" {
		req.Headers["Authorization"] = "Bearer " + c.readToken
	}

	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(body, "result")
	if !result.IsArray() {
		return nil, apperrors.NewUpstreamError(provider, http.StatusOK, "query response has no result array", nil)
	}

	docs := make([]domain.Document, 0, len(result.Array()))
	for _, r := range result.Array() {
		docs = append(docs, domain.Document{
			ID:     r.Get("_id").String(),
			Type:   r.Get("_type").String(),
			Locale: r.Get("language").String(),
			Body:   json.RawMessage(r.Raw),
		})
	}

	c.logger.Debug("sanity query",
		zap.String("type", docType),
		zap.String("locale", locale),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

type mutation struct {
	CreateOrReplace json.RawMessage `json:"createOrReplace"`
}

type mutateRequest struct {
	Mutations []mutation `json:"mutations"`
}

// Upsert writes every document with createOrReplace in a single transaction.
func (c *Client) Upsert(ctx context.Context, docs []domain.Document) error {
	if c.writeToken == "" {
		return apperrors.NewConfigurationError(
			"sanity write token is not configured",
			"Set SANITY_WRITE_TOKEN to a Sanity API token with write access to the dataset.",
		)
	}
	if len(docs) == 0 {
		return nil
	}

	payload := mutateRequest{Mutations: make([]mutation, 0, len(docs))}
	for _, d := range docs {
		payload.Mutations = append(payload.Mutations, mutation{CreateOrReplace: d.Body})
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding sanity mutations: %w", err)
	}

	body, err := c.send(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: c.mutateURL,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + c.writeToken,
		},
		Body: data,
	})
	if err != nil {
		return err
	}

	c.logger.Info("sanity documents upserted",
		zap.Int("documents", len(docs)),
		zap.String("transactionId", gjson.GetBytes(body, "transactionId").String()),
	)
	return nil
}

func (c *Client) send(ctx context.Context, req rest.Request) ([]byte, error) {
	resp, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, apperrors.NewUpstreamError(provider, status, "request failed", err)
	}
	body := []byte(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("sanity rejected the credentials (status %d)", resp.StatusCode),
			"Check that SANITY_READ_TOKEN and SANITY_WRITE_TOKEN are valid for the project and dataset.",
		)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewUpstreamError(provider, resp.StatusCode, errorMessage(body), nil)
	}
	return body, nil
}

func errorMessage(body []byte) string {
	for _, path := range []string{"error.description", "message", "error"} {
		if m := gjson.GetBytes(body, path); m.Type == gjson.String && m.String() != "" {
			return m.String()
		}
	}
	return "unexpected response"
}

// quote encodes a GROQ parameter value, which Sanity expects as JSON.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
