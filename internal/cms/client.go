package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// ClientConfig locates a dataset on the query API.
type ClientConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	// RateLimit caps queries per second; zero disables throttling.
	RateLimit float64
	// BaseURL overrides the project host, mostly for tests.
	BaseURL string
}

// HTTPClient implements Source against the CMS HTTP query endpoint.
type HTTPClient struct {
	cfg     ClientConfig
	http    httpDoer
	limiter *rate.Limiter
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Description string `json:"description"`
	} `json:"error"`
}

func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	cfg.APIVersion = strings.TrimPrefix(strings.TrimSpace(cfg.APIVersion), "v")
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2021-10-21"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	client := &HTTPClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	if cfg.RateLimit > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return client
}

func (c *HTTPClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
		return
	}
	c.http = client
}

func (c *HTTPClient) endpoint() string {
	base := c.cfg.BaseURL
	if base == "" {
		host := "api.sanity.io"
		if c.cfg.UseCDN {
			host = "apicdn.sanity.io"
		}
		base = "https://" + c.cfg.ProjectID + "." + host
	}
	return fmt.Sprintf("%s/v%s/data/query/%s", base, c.cfg.APIVersion, url.PathEscape(c.cfg.Dataset))
}

// Query runs a GROQ query and decodes its result into out. A null result leaves
// out untouched.
func (c *HTTPClient) Query(ctx context.Context, name, query string, params map[string]any, out any) error {
	outcome := "error"
	defer func() {
		metrics.CMSRequests.WithLabelValues(name, outcome).Inc()
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrRequest, err)
		}
	}

	values := url.Values{}
	values.Set("query", query)
	for key, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("%w: encode param %s: %v", ErrRequest, key, err)
		}
		values.Set("$"+key, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint()+"?"+values.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if token := strings.TrimSpace(c.cfg.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrRequest, err)
	}

	logrus.WithFields(logrus.Fields{
		"query":    name,
		"status":   resp.StatusCode,
		"duration": time.Since(started),
	}).Debug("cms query")

	var decoded queryResponse
	decodeErr := json.Unmarshal(body, &decoded)
	if decoded.Error != nil && decoded.Error.Description != "" {
		return fmt.Errorf("%w: %s", ErrResponse, decoded.Error.Description)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrResponse, resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: decode response: %v", ErrResponse, decodeErr)
	}

	if len(decoded.Result) > 0 && string(decoded.Result) != "null" {
		if err := json.Unmarshal(decoded.Result, out); err != nil {
			return fmt.Errorf("%w: decode result: %v", ErrResponse, err)
		}
	}

	outcome = "ok"
	return nil
}

// Slugs lists the slugs of every document of docType.
func (c *HTTPClient) Slugs(ctx context.Context, docType string) ([]string, error) {
	var slugs []string
	if err := c.Query(ctx, "slugs", slugsQuery, map[string]any{"type": docType}, &slugs); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if strings.TrimSpace(slug) != "" {
			result = append(result, slug)
		}
	}
	return result, nil
}

// Record fetches one record by slug. An unknown slug yields a zero Record.
func (c *HTTPClient) Record(ctx context.Context, slug string) (content.Record, error) {
	var record content.Record
	if err := c.Query(ctx, "record", recordQuery, map[string]any{"slug": slug}, &record); err != nil {
		return content.Record{}, err
	}
	return record, nil
}

// Records lists records under a named ordering.
func (c *HTTPClient) Records(ctx context.Context, ordering string) ([]content.Record, error) {
	query, err := RecordsQuery(ordering)
	if err != nil {
		return nil, err
	}
	var records []content.Record
	if err := c.Query(ctx, "records", query, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Designer fetches one designer with their records.
func (c *HTTPClient) Designer(ctx context.Context, slug string) (content.Designer, error) {
	var designer content.Designer
	if err := c.Query(ctx, "designer", DesignerQuery, map[string]any{"slug": slug}, &designer); err != nil {
		return content.Designer{}, err
	}
	return designer, nil
}
