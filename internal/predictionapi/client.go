// Package predictionapi is the client of the remote prediction service. The
// service is opaque: only the keys each view depends on are required, and
// anything else is passed through.
package predictionapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "startup-insights/internal/common/errors"
	commonhttp "startup-insights/internal/common/http"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/common/metrics"
	"startup-insights/internal/common/observability"
	"startup-insights/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Service is what the coordinator and the workers need from the remote API.
type Service interface {
	Predict(ctx context.Context, profile *models.StartupProfile) (*models.PredictionResult, error)
	PeerComparison(ctx context.Context, profile *models.StartupProfile) (*models.PeerComparisonReport, error)
	CompareToStartup(ctx context.Context, profile *models.StartupProfile, selected string) (*models.PeerSelectionComparison, error)
}

// Lister fetches the investor listing.
type Lister interface {
	ListStartups(ctx context.Context) ([]map[string]interface{}, error)
	DebugStartups(ctx context.Context) (*DebugListing, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *commonhttp.Client
	obs     *observability.Observability
	logger  logger.Logger
}

var (
	_ Service = (*Client)(nil)
	_ Lister  = (*Client)(nil)
)

func NewClient(cfg Config, obs *observability.Observability, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    commonhttp.NewClient(timeout),
		obs:     obs,
		logger:  logger.Component(log, "predictionapi"),
	}
}

// WithHTTPClient swaps the transport, used with httptest servers.
func (c *Client) WithHTTPClient(hc *commonhttp.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) Predict(ctx context.Context, profile *models.StartupProfile) (*models.PredictionResult, error) {
	body, err := c.call(ctx, apperrors.CallPredict, "POST", "/predict", profile)
	if err != nil {
		return nil, err
	}
	result, err := decodePrediction(body)
	return result, c.settle(apperrors.CallPredict, err)
}

func (c *Client) PeerComparison(ctx context.Context, profile *models.StartupProfile) (*models.PeerComparisonReport, error) {
	body, err := c.call(ctx, apperrors.CallPeerComparison, "POST", "/peer_comparison", profile)
	if err != nil {
		return nil, err
	}
	report, err := decodePeerComparison(body)
	return report, c.settle(apperrors.CallPeerComparison, err)
}

func (c *Client) CompareToStartup(ctx context.Context, profile *models.StartupProfile, selected string) (*models.PeerSelectionComparison, error) {
	req := models.CompareRequest{StartupData: profile, SelectedStartupName: selected}
	body, err := c.call(ctx, apperrors.CallCompareToStartup, "POST", "/compare_to_startup", req)
	if err != nil {
		return nil, err
	}
	cmp, err := decodeSelection(body)
	return cmp, c.settle(apperrors.CallCompareToStartup, err)
}

// ListStartups returns the raw records of GET /startups.
func (c *Client) ListStartups(ctx context.Context) ([]map[string]interface{}, error) {
	body, err := c.call(ctx, apperrors.CallListStartups, "GET", "/startups", nil)
	if err != nil {
		return nil, err
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, c.settle(apperrors.CallListStartups, &apperrors.RemoteCallError{Call: apperrors.CallListStartups, Cause: err})
	}
	return records, c.settle(apperrors.CallListStartups, nil)
}

// DebugListing is the response of GET /debug_startups.
type DebugListing struct {
	Count    int                      `json:"count"`
	Startups []map[string]interface{} `json:"startups"`
}

// DebugStartups returns the full stored records with their count.
func (c *Client) DebugStartups(ctx context.Context) (*DebugListing, error) {
	body, err := c.call(ctx, apperrors.CallListStartups, "GET", "/debug_startups", nil)
	if err != nil {
		return nil, err
	}
	var out DebugListing
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, c.settle(apperrors.CallListStartups, &apperrors.RemoteCallError{Call: apperrors.CallListStartups, Cause: err})
	}
	if out.Startups == nil {
		return nil, c.settle(apperrors.CallListStartups, apperrors.NewMalformedResponse(apperrors.CallListStartups, "startups"))
	}
	return &out, c.settle(apperrors.CallListStartups, nil)
}

// call performs the request and returns the body of a 2xx response. Transport
// and status failures are returned as *errors.RemoteCallError.
func (c *Client) call(ctx context.Context, call apperrors.RemoteCall, method, path string, body interface{}) ([]byte, error) {
	ctx, span := c.obs.StartSpan(ctx, "prediction."+string(call),
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)
	defer span.End()

	start := time.Now()
	url := c.baseURL + path

	var (
		resp *commonhttp.Response
		err  error
	)
	if method == "GET" {
		resp, err = c.http.GetJSON(ctx, url)
	} else {
		resp, err = c.http.PostJSON(ctx, url, body)
	}
	metrics.RemoteCallDuration.WithLabelValues(string(call)).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		metrics.RemoteCallsTotal.WithLabelValues(string(call), "transport_error").Inc()
		c.logger.Warn("prediction service unreachable", map[string]interface{}{
			"call":  string(call),
			"error": err.Error(),
		})
		return nil, &apperrors.RemoteCallError{Call: call, Cause: err}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !resp.OK() {
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", resp.StatusCode))
		metrics.RemoteCallsTotal.WithLabelValues(string(call), "http_error").Inc()
		c.logger.Warn("prediction service returned error status", map[string]interface{}{
			"call":       string(call),
			"statusCode": resp.StatusCode,
		})
		return nil, &apperrors.RemoteCallError{Call: call, StatusCode: resp.StatusCode, Cause: errorDetail(resp.Body)}
	}
	return resp.Body, nil
}

// settle records the decode outcome. Malformed responses are logged apart
// from other failures so they can be diagnosed.
func (c *Client) settle(call apperrors.RemoteCall, err error) error {
	switch {
	case err == nil:
		metrics.RemoteCallsTotal.WithLabelValues(string(call), "success").Inc()
	case apperrors.IsMalformed(err):
		metrics.RemoteCallsTotal.WithLabelValues(string(call), "malformed").Inc()
		c.logger.Error("malformed prediction service response", map[string]interface{}{
			"call":  string(call),
			"error": err.Error(),
		})
	default:
		metrics.RemoteCallsTotal.WithLabelValues(string(call), "decode_error").Inc()
		c.logger.Warn("undecodable prediction service response", map[string]interface{}{
			"call":  string(call),
			"error": err.Error(),
		})
	}
	return err
}

// errorDetail extracts the FastAPI style {"detail": ...} message when present.
func errorDetail(body []byte) error {
	var payload struct {
		Detail interface{} `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		return fmt.Errorf("%v", payload.Detail)
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		text = "empty response body"
	}
	return fmt.Errorf("%s", text)
}
