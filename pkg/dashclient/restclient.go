package dashclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ctrmdash/internal/coordinator"
	"ctrmdash/internal/domain"
	"ctrmdash/internal/render"
	"ctrmdash/internal/views"

	"github.com/go-resty/resty/v2"
)

// APIError is the error body returned by the dashboard server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashboard error %d %s: %s", e.Status, e.Code, e.Message)
}

type RESTClient struct {
	client *resty.Client
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// commands are not idempotent; only reads are retried
			if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	return &RESTClient{client: client}
}

func (c *RESTClient) do(ctx context.Context, method, path string, body, out any) error {
	req := c.client.R().SetContext(ctx).SetError(&APIError{})
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr, ok := resp.Error().(*APIError)
		if !ok || apiErr.Code == "" {
			return &APIError{Status: resp.StatusCode(), Code: "http_error", Message: resp.Status()}
		}
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return nil
}

func (c *RESTClient) Health(ctx context.Context) (views.Health, error) {
	var out views.Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *RESTClient) Dashboard(ctx context.Context) (views.DashboardView, error) {
	var out views.DashboardView
	err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &out)
	return out, err
}

func (c *RESTClient) Reference(ctx context.Context) (domain.Reference, error) {
	var out domain.Reference
	err := c.do(ctx, http.MethodGet, "/api/reference", nil, &out)
	return out, err
}

func (c *RESTClient) Trades(ctx context.Context) (render.TradeTable, error) {
	var out render.TradeTable
	err := c.do(ctx, http.MethodGet, "/api/trades", nil, &out)
	return out, err
}

func (c *RESTClient) Trade(ctx context.Context, id int) (render.TradeDetail, error) {
	var out render.TradeDetail
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/trades/%d", id), nil, &out)
	return out, err
}

func (c *RESTClient) command(ctx context.Context, method, path string, body any) (coordinator.Result, error) {
	var out coordinator.Result
	err := c.do(ctx, method, path, body, &out)
	return out, err
}

func (c *RESTClient) SetFilters(ctx context.Context, p domain.FilterPatch) (coordinator.Result, error) {
	return c.command(ctx, http.MethodPut, "/api/filters", p)
}

func (c *RESTClient) ResetFilters(ctx context.Context) (coordinator.Result, error) {
	return c.command(ctx, http.MethodDelete, "/api/filters", nil)
}

func (c *RESTClient) SelectKPI(ctx context.Context, kpi string) (coordinator.Result, error) {
	return c.command(ctx, http.MethodPost, "/api/kpis/"+kpi+"/select", nil)
}

func (c *RESTClient) ApplyRecommendation(ctx context.Context, id int) (coordinator.Result, error) {
	return c.command(ctx, http.MethodPost, fmt.Sprintf("/api/recommendations/%d/apply", id), nil)
}

func (c *RESTClient) OpenTrade(ctx context.Context, id int) (coordinator.Result, error) {
	return c.command(ctx, http.MethodPost, fmt.Sprintf("/api/trades/%d/open", id), nil)
}

func (c *RESTClient) CloseTrade(ctx context.Context) (coordinator.Result, error) {
	return c.command(ctx, http.MethodPost, "/api/drawer/close", nil)
}

func (c *RESTClient) AdvanceTrade(ctx context.Context) (coordinator.Result, error) {
	return c.command(ctx, http.MethodPost, "/api/drawer/advance", nil)
}

func (c *RESTClient) ToggleForecast(ctx context.Context, show bool) (coordinator.Result, error) {
	return c.command(ctx, http.MethodPut, "/api/market/forecast", map[string]bool{"show": show})
}
