// Package publicdata fetches forecast, visitor and attraction concentration
// rows from the data.go.kr open APIs.
package publicdata

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
	"strconv"
	"time"

	"github.com/couchcryptid/tourism-dashboard-service/internal/config"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
	"github.com/sony/gobreaker"
)

// Upstream source names, used as metric labels and cache key segments.
const (
	SourceForecast      = "forecast"
	SourceConcentration = "concentration"
	SourceVisitors      = "visitors"
)

// ErrProvider is returned when a provider answers with a non-success result code.
var ErrProvider = errors.New("provider error")

const (
	forecastPath      = "/getUltraSrtFcst"
	concentrationPath = "/tatsCnctrRatedList"
	visitorsPath      = "/locgoRegnVisitrDDList"

	forecastRows      = 100
	concentrationRows = 6000
	visitorRows       = 1000
)

// Client implements domain.Source against the data.go.kr endpoints.
type Client struct {
	serviceKey string
	httpClient *http.Client
	backoff    Backoff
	loc        *time.Location

	weatherURL string
	tourURL    string
	predictURL string

	weatherCB *gobreaker.CircuitBreaker
	tourCB    *gobreaker.CircuitBreaker
	predictCB *gobreaker.CircuitBreaker

	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a client from the upstream settings in cfg.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: cfg.UpstreamTimeout},
		backoff: Backoff{
			MaxRetries:      cfg.UpstreamRetries,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		loc:        cfg.ProviderLocation,
		weatherURL: cfg.WeatherBaseURL,
		tourURL:    cfg.TourDataBaseURL,
		predictURL: cfg.TourPredictBaseURL,
		weatherCB:  newBreaker("weather"),
		tourCB:     newBreaker("tour_data"),
		predictCB:  newBreaker("tour_predict"),
		metrics:    metrics,
		logger:     logger,
	}
}

// ForecastParams returns the query for the ultra-short-term forecast issued
// an hour before now at the region's grid point.
func (c *Client) ForecastParams(region domain.Region, now time.Time) url.Values {
	baseDate, baseTime := domain.ForecastBase(now, c.loc)
	return url.Values{
		"serviceKey": {c.serviceKey},
		"pageNo":     {"1"},
		"numOfRows":  {strconv.Itoa(forecastRows)},
		"dataType":   {"JSON"},
		"base_date":  {baseDate},
		"base_time":  {baseTime},
		"nx":         {strconv.Itoa(region.NX)},
		"ny":         {strconv.Itoa(region.NY)},
	}
}

// ConcentrationParams returns the query for a district's predicted attraction
// concentration rates.
func (c *Client) ConcentrationParams(region domain.Region) url.Values {
	return url.Values{
		"serviceKey": {c.serviceKey},
		"pageNo":     {"1"},
		"numOfRows":  {strconv.Itoa(concentrationRows)},
		"MobileOS":   {"ETC"},
		"MobileApp":  {"AppTest"},
		"areaCd":     {domain.AreaCode},
		"signguCd":   {region.SignguCode},
		"_type":      {"json"},
	}
}

// VisitorParams returns the query for daily district visitor counts.
func (c *Client) VisitorParams(startYmd, endYmd string) url.Values {
	return url.Values{
		"serviceKey": {c.serviceKey},
		"pageNo":     {"1"},
		"numOfRows":  {strconv.Itoa(visitorRows)},
		"MobileOS":   {"ETC"},
		"MobileApp":  {"AppTest"},
		"startYmd":   {startYmd},
		"endYmd":     {endYmd},
		"_type":      {"json"},
	}
}

func (c *Client) UltraShortForecast(ctx context.Context, region domain.Region, now time.Time) ([]domain.RawForecastItem, error) {
	var items []domain.RawForecastItem
	err := c.fetch(ctx, SourceForecast, c.weatherCB, c.weatherURL+forecastPath, c.ForecastParams(region, now), &items)
	return items, err
}

func (c *Client) Concentration(ctx context.Context, region domain.Region) ([]domain.RawConcentrationRow, error) {
	var rows []domain.RawConcentrationRow
	err := c.fetch(ctx, SourceConcentration, c.predictCB, c.predictURL+concentrationPath, c.ConcentrationParams(region), &rows)
	return rows, err
}

func (c *Client) VisitorStats(ctx context.Context, startYmd, endYmd string) ([]domain.RawVisitorRow, error) {
	var rows []domain.RawVisitorRow
	err := c.fetch(ctx, SourceVisitors, c.tourCB, c.tourURL+visitorsPath, c.VisitorParams(startYmd, endYmd), &rows)
	return rows, err
}

func (c *Client) fetch(ctx context.Context, source string, cb *gobreaker.CircuitBreaker, endpoint string, params url.Values, out any) error {
	start := time.Now()
	err := c.doFetch(ctx, cb, endpoint, params, out)
	c.metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		c.logger.Warn("upstream request failed", "source", source, "error", err)
		return fmt.Errorf("%s request: %w", source, err)
	}
	c.metrics.UpstreamRequests.WithLabelValues(source, "success").Inc()
	return nil
}

func (c *Client) doFetch(ctx context.Context, cb *gobreaker.CircuitBreaker, endpoint string, params url.Values, out any) error {
	resp, err := doWithRetry(ctx, c.httpClient, c.backoff, cb, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	return DecodeItems(body, out)
}

// Provider response envelope shared by all data.go.kr JSON endpoints.

type envelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items json.RawMessage `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

type itemList struct {
	Item json.RawMessage `json:"item"`
}

// DecodeItems checks the result code of a provider response and decodes
// body.items.item into out, which must point to a slice. An empty-string items
// value yields no rows, and a single object item is treated as a one-element list.
func DecodeItems(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	h := env.Response.Header
	if h.ResultCode != "00" && h.ResultCode != "0000" {
		return fmt.Errorf("%w: %s %s", ErrProvider, h.ResultCode, h.ResultMsg)
	}

	raw := bytes.TrimSpace(env.Response.Body.Items)
	if len(raw) == 0 || bytes.Equal(raw, []byte(`""`)) || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var list itemList
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}
	item := bytes.TrimSpace(list.Item)
	if len(item) == 0 || bytes.Equal(item, []byte("null")) {
		return nil
	}
	if item[0] == '{' {
		item = append(append([]byte{'['}, item...), ']')
	}
	if err := json.Unmarshal(item, out); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}
	return nil
}
