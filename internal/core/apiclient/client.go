// Package apiclient talks to the external REST API. One Client exists per entity
// collection; each method is exactly one HTTP round trip with no retries, caching or
// request deduplication.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/backoffice/internal/core/domain"
	"github.com/duynhne/backoffice/middleware"
)

const maxResponseBytes = 10 << 20

type operation string

const (
	opList   operation = "list"
	opGet    operation = "get"
	opCreate operation = "create"
	opUpdate operation = "update"
	opDelete operation = "delete"
)

// StatusError carries a non-2xx response from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Client implements domain.ResourceClient against {base}/{resource}.
type Client[T domain.Record, In any] struct {
	resource   string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for one resource collection, e.g.
// New[domain.Item, domain.ItemInput]("http://localhost:8080/api", "items", hc, logger).
func New[T domain.Record, In any](baseURL, resource string, httpClient *http.Client, logger *zap.Logger) *Client[T, In] {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client[T, In]{
		resource:   resource,
		endpoint:   baseURL + "/" + resource,
		httpClient: httpClient,
		logger:     logger.With(zap.String("resource", resource)),
	}
}

// List returns the collection in server order.
func (c *Client[T, In]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.do(ctx, opList, "", http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Get returns one record by identifier.
func (c *Client[T, In]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	if err := c.do(ctx, opGet, id, http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts a new record and returns it with its server-assigned identifier.
func (c *Client[T, In]) Create(ctx context.Context, in In) (*T, error) {
	var out T
	if err := c.do(ctx, opCreate, "", http.MethodPost, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the record's fields with PUT {base}/{id}.
func (c *Client[T, In]) Update(ctx context.Context, id string, in In) (*T, error) {
	var out T
	if err := c.do(ctx, opUpdate, id, http.MethodPut, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the record with DELETE {base}/{id}. Any 2xx is an acknowledgement.
func (c *Client[T, In]) Delete(ctx context.Context, id string) error {
	return c.do(ctx, opDelete, id, http.MethodDelete, nil, nil)
}

func (c *Client[T, In]) do(ctx context.Context, op operation, id, method string, body, out any) (err error) {
	ctx, span := middleware.StartSpan(ctx, "api."+c.resource+"."+string(op), trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(
		attribute.String("layer", "client"),
		attribute.String("api.resource", c.resource),
		attribute.String("api.operation", string(op)),
	))
	defer span.End()
	if id != "" {
		span.SetAttributes(attribute.String("api.record_id", id))
	}

	start := time.Now()
	status := 0
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = outcomeLabel(err)
			middleware.RecordError(ctx, err)
			c.logger.Error("API request failed",
				zap.String("operation", string(op)),
				zap.String("record_id", id),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		}
		middleware.ObserveAPIRequest(c.resource, string(op), outcome, time.Since(start))
	}()

	target := c.endpoint
	if id != "" {
		target += "/" + url.PathEscape(id)
	}

	var reqBody io.Reader
	if body != nil {
		b, merr := json.Marshal(body)
		if merr != nil {
			return fmt.Errorf("%s: encode request: %w", c.describe(op, id), merr)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.describe(op, id), err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	middleware.InjectTraceHeaders(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", c.describe(op, id), domain.ErrNetwork, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.status_code", status))

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: read response: %w: %w", c.describe(op, id), domain.ErrNetwork, err)
	}

	if status < 200 || status > 299 {
		return fmt.Errorf("%s: %w: %w", c.describe(op, id), classify(op, status), &StatusError{
			StatusCode: status,
			Body:       string(bytes.TrimSpace(payload)),
		})
	}

	// An empty 2xx body leaves the result zero-valued.
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s: decode response: %w: %w", c.describe(op, id), domain.ErrServer, err)
	}
	return nil
}

func (c *Client[T, In]) describe(op operation, id string) string {
	if id == "" {
		return fmt.Sprintf("%s %s", op, c.resource)
	}
	return fmt.Sprintf("%s %s %q", op, c.resource, id)
}

// classify maps a non-2xx status onto the error taxonomy.
func classify(op operation, status int) error {
	switch {
	case op == opList:
		return domain.ErrServer
	case status == http.StatusNotFound && op != opCreate:
		return domain.ErrNotFound
	case status >= 400 && status < 500:
		return domain.ErrValidation
	default:
		return domain.ErrServer
	}
}

func outcomeLabel(err error) string {
	switch kind := domain.Kind(err); {
	case errors.Is(kind, domain.ErrNetwork):
		return "network_error"
	case errors.Is(kind, domain.ErrNotFound):
		return "not_found"
	case errors.Is(kind, domain.ErrValidation):
		return "validation_error"
	case errors.Is(kind, domain.ErrServer):
		return "server_error"
	default:
		return "error"
	}
}
