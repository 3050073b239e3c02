package wilayah

import (
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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultUpstream is the public boundary service.
	DefaultUpstream = "https://wilayah.id/api"

	tracerName = "github.com/jcmexdev/bizops-dashboard/internal/wilayah"
)

var errNoData = errors.New("response has no data array")

// Layout decides how a level and parent code become a URL path.
type Layout int

const (
	// LayoutUpstream is the boundary service itself: /regencies/11.json.
	LayoutUpstream Layout = iota
	// LayoutProxy is the gateway passthrough: /regencies/11.
	LayoutProxy
)

func (l Layout) path(level Level, parentCode string) string {
	p := "/" + string(level)
	if level != LevelProvince {
		p += "/" + url.PathEscape(parentCode)
	}
	if l == LayoutUpstream {
		p += ".json"
	}
	return p
}

// Meta is the metadata block of a region list answer.
type Meta struct {
	AdministrativeAreaLevel int    `json:"administrative_area_level"`
	UpdatedAt               string `json:"updated_at"`
}

// Response is the body of a region list answer.
type Response struct {
	Data []Region `json:"data"`
	Meta *Meta    `json:"meta,omitempty"`
}

// HTTPSource reads regions from the boundary service or a proxy of it.
type HTTPSource struct {
	baseURL    string
	layout     Layout
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
}

type HTTPOption func(*HTTPSource)

func WithLayout(l Layout) HTTPOption {
	return func(s *HTTPSource) { s.layout = l }
}

func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.httpClient = hc }
}

func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(s *HTTPSource) { s.logger = l }
}

func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultUpstream
	}
	s := &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tracer:     otel.Tracer(tracerName),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPSource) Regions(ctx context.Context, level Level, parentCode string) ([]Region, error) {
	if err := checkRequest(level, parentCode); err != nil {
		return nil, err
	}
	path := s.layout.path(level, parentCode)

	ctx, span := s.tracer.Start(ctx, "wilayah GET "+string(level),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("wilayah.level", string(level)),
			attribute.String("wilayah.parent", parentCode),
		),
	)
	defer span.End()

	fail := func(status int, err error) error {
		span.SetStatus(otelcodes.Error, "fetch failed")
		s.logger.WarnContext(ctx, "region fetch failed", "level", string(level), "parent", parentCode, "status", status, "error", err)
		return &FetchError{Level: level, Parent: parentCode, Status: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("wilayah: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fail(resp.StatusCode, nil)
	}

	var body struct {
		Data *[]Region `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fail(0, err)
	}
	if body.Data == nil {
		return nil, fail(0, errNoData)
	}
	out := make([]Region, 0, len(*body.Data))
	for _, r := range *body.Data {
		if r.Code != "" {
			out = append(out, r)
		}
	}
	return out, nil
}
