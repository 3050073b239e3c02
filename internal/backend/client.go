// Package backend contains the REST resource clients of the operations
// dashboard: one service per backend resource, sharing a single HTTP core
// that attaches the bearer token, forwards correlation headers, traces each
// call and turns failures into typed errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/reqctx"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
	tracerName     = "github.com/jcmexdev/bizops-dashboard/internal/backend"
)

// TokenSource supplies the bearer token of the caller behind ctx. An empty
// token means the call is sent without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) string { return string(t) }

// Client is the shared HTTP core. Use the resource services hanging off it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	validate   *validator.Validate
	tracer     trace.Tracer
	logger     *slog.Logger

	Orders             *OrderService
	Customers          *CustomerService
	Suppliers          *SupplierService
	Products           *ProductService
	Deliveries         *DeliveryService
	Taxes              *TaxService
	Addresses          *AddressService
	TaxIdentifications *TaxIdentificationService
	Shipping           *ShippingService
	Auth               *AuthService
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     StaticToken(""),
		validate:   newValidator(),
		tracer:     otel.Tracer(tracerName),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Orders = &OrderService{c: c}
	c.Customers = &CustomerService{crud: newCRUD[domain.Customer](c, "customer", "/customers", http.MethodPut)}
	c.Suppliers = &SupplierService{crud: newCRUD[domain.Supplier](c, "supplier", "/suppliers", http.MethodPut)}
	c.Products = &ProductService{crud: newCRUD[domain.Product](c, "product", "/products", http.MethodPut)}
	c.Deliveries = &DeliveryService{crud: newCRUD[domain.Delivery](c, "delivery", "/shippings", http.MethodPut)}
	c.Taxes = &TaxService{crud: newCRUD[domain.Tax](c, "tax", "/taxes", http.MethodPatch)}
	c.Addresses = &AddressService{crud: newCRUD[domain.Address](c, "address", "/address", http.MethodPatch).scoped()}
	c.TaxIdentifications = &TaxIdentificationService{crud: newCRUD[domain.TaxIdentification](c, "tax identification", "/tax-identifications", http.MethodPatch).scoped()}
	c.Shipping = &ShippingService{c: c}
	c.Auth = &AuthService{c: c}
	return c
}

// request describes one backend call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// authRequired gates the call locally when there is no token.
	authRequired bool
}

// send performs the call and returns the raw response body of a 2xx answer.
func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	token := c.tokens.Token(ctx)
	if r.authRequired && token == "" {
		return nil, ErrUnauthenticated
	}

	ctx, span := c.tracer.Start(ctx, "backend "+r.method+" "+r.path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.method),
			attribute.String("url.path", r.path),
		),
	)
	defer span.End()

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode %s %s body: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("backend: build %s %s: %w", r.method, r.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := reqctx.RequestID(ctx); id != "" {
		req.Header.Set(reqctx.HeaderXRequestID, id)
	}
	if key := reqctx.IdempotencyKey(ctx); key != "" {
		req.Header.Set(reqctx.HeaderXIdempotencyKey, key)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.logger.DebugContext(ctx, "backend request", "method", r.method, "path", r.path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "transport failure")
		c.logger.WarnContext(ctx, "backend request failed", "method", r.method, "path", r.path, "error", err)
		return nil, &TransportError{Method: r.method, Path: r.path, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: r.method, Path: r.path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:  r.method,
			Path:    r.path,
			Status:  resp.StatusCode,
			Message: errorMessage(raw),
		}
		span.SetStatus(otelcodes.Error, apiErr.Error())
		c.logger.WarnContext(ctx, "backend returned error", "method", r.method, "path", r.path, "status", resp.StatusCode)
		return nil, apiErr
	}

	return raw, nil
}

// errorMessage pulls a human message out of an error body. The backend
// sends {"message": "..."} or {"message": ["...", "..."]}; anything else
// is returned as trimmed text.
func errorMessage(raw []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		var single string
		if json.Unmarshal(body.Message, &single) == nil && single != "" {
			return single
		}
		var many []string
		if json.Unmarshal(body.Message, &many) == nil && len(many) > 0 {
			return strings.Join(many, "; ")
		}
		if body.Error != "" {
			return body.Error
		}
	}

	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}

// decodeObject decodes a single JSON object and validates it.
func decodeObject[T any](c *Client, resource string, raw []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &SchemaError{Resource: resource, Err: err}
	}
	if err := c.validateResponse(resource, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// decodeList decodes a list response through the list envelope and
// validates every element.
func decodeList[T any](c *Client, resource string, raw []byte) ([]T, error) {
	data, err := unwrapList(raw)
	if err != nil {
		return nil, &SchemaError{Resource: resource, Err: err}
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &SchemaError{Resource: resource, Err: err}
	}
	for i := range out {
		if err := c.validateResponse(resource, &out[i]); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

var (
	errEmptyBody        = errors.New("empty body")
	errNoDataArray      = errors.New("object envelope without a data array")
	errUnknownListShape = errors.New("list body is neither an array nor a data envelope")
	errMissingOrder     = errors.New("response has no order object")
	errMissingData      = errors.New("response has no data object")
)

// unwrapList is the list envelope. A list body is exactly one of:
//
//	[ ... ]                 bare array
//	{ "data": [ ... ], ...} data envelope (extra keys such as meta are ignored)
//
// Any other shape is rejected.
func unwrapList(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errEmptyBody
	}

	switch trimmed[0] {
	case '[':
		return trimmed, nil
	case '{':
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		data := bytes.TrimSpace(env.Data)
		if len(data) == 0 || data[0] != '[' {
			return nil, errNoDataArray
		}
		return data, nil
	default:
		return nil, errUnknownListShape
	}
}
