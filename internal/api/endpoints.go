package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"tradedeck-console/internal/models"
)

// strategiesResponse wraps GET /strategies.
type strategiesResponse struct {
	Strategies []models.Strategy `json:"strategies"`
}

// ordersResponse wraps GET /orders.
type ordersResponse struct {
	Orders []models.OrderEvent `json:"orders"`
}

// logsResponse wraps GET /logs.
type logsResponse struct {
	Logs []models.LogLine `json:"logs"`
}

// controlLogResponse wraps GET /control-log.
type controlLogResponse struct {
	Log []models.ControlLogEntry `json:"log"`
}

// ActionResult is the backend's acknowledgement of a control action.
// Success false on a 2xx response means the intent was accepted but the
// executor has not confirmed it yet.
type ActionResult struct {
	Success  bool   `json:"success"`
	Affected int    `json:"affected,omitempty"`
	Failed   int    `json:"failed,omitempty"`
	Message  string `json:"message,omitempty"`
}

// controlRequest is the body of strategy control POSTs that need one.
type controlRequest struct {
	StrategyName string `json:"strategy_name"`
	Confirm      bool   `json:"confirm"`
}

// Telemetry fetches session, margin, latency, feed, circuit breaker and
// delta figures.
func (c *Client) Telemetry(ctx context.Context) (*models.Telemetry, error) {
	var out models.Telemetry
	if err := c.Do(ctx, http.MethodGet, "/telemetry", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Strategies fetches the state of every strategy in the fleet.
func (c *Client) Strategies(ctx context.Context) ([]models.Strategy, error) {
	var out strategiesResponse
	if err := c.Do(ctx, http.MethodGet, "/strategies", nil, &out); err != nil {
		return nil, err
	}
	return out.Strategies, nil
}

// Exposure fetches aggregated cross-strategy exposure.
func (c *Client) Exposure(ctx context.Context) (*models.Exposure, error) {
	var out models.Exposure
	if err := c.Do(ctx, http.MethodGet, "/exposure", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Infra fetches live infrastructure metrics.
func (c *Client) Infra(ctx context.Context) (*models.Infra, error) {
	var out models.Infra
	if err := c.Do(ctx, http.MethodGet, "/infra", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Orders fetches recent order flow events.
func (c *Client) Orders(ctx context.Context) ([]models.OrderEvent, error) {
	var out ordersResponse
	if err := c.Do(ctx, http.MethodGet, "/orders", nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// Logs fetches the combined system log view.
func (c *Client) Logs(ctx context.Context) ([]models.LogLine, error) {
	var out logsResponse
	if err := c.Do(ctx, http.MethodGet, "/logs", nil, &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// ControlLog fetches the backend's recent control actions for audit.
func (c *Client) ControlLog(ctx context.Context, limit int) ([]models.ControlLogEntry, error) {
	path := "/control-log"
	if limit > 0 {
		path = fmt.Sprintf("/control-log?limit=%d", limit)
	}
	var out controlLogResponse
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Log, nil
}

// PauseStrategy requests a pause of one strategy.
func (c *Client) PauseStrategy(ctx context.Context, name string) (*ActionResult, error) {
	return c.strategyAction(ctx, name, "pause", nil)
}

// ResumeStrategy requests a resume of one strategy.
func (c *Client) ResumeStrategy(ctx context.Context, name string) (*ActionResult, error) {
	return c.strategyAction(ctx, name, "resume", nil)
}

// StopStrategy permanently stops one strategy. The backend demands the
// confirm flag in the body; callers reach this only through the command
// dispatcher's confirmation gate.
func (c *Client) StopStrategy(ctx context.Context, name string) (*ActionResult, error) {
	return c.strategyAction(ctx, name, "stop", &controlRequest{StrategyName: name, Confirm: true})
}

// StartStrategy starts a stopped strategy.
func (c *Client) StartStrategy(ctx context.Context, name string) (*ActionResult, error) {
	return c.strategyAction(ctx, name, "start", nil)
}

func (c *Client) strategyAction(ctx context.Context, name, action string, body *controlRequest) (*ActionResult, error) {
	var out ActionResult
	path := fmt.Sprintf("/strategies/%s/%s", url.PathEscape(name), action)
	var req interface{}
	if body != nil {
		req = body
	}
	if err := c.Do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PauseAll pauses every running strategy.
func (c *Client) PauseAll(ctx context.Context) (*ActionResult, error) {
	var out ActionResult
	if err := c.Do(ctx, http.MethodPost, "/strategies/pause-all", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Kill engages the global kill switch. Open positions are not squared off
// and the halted state persists across backend restarts.
func (c *Client) Kill(ctx context.Context) (*ActionResult, error) {
	var out ActionResult
	if err := c.Do(ctx, http.MethodPost, "/strategies/kill", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unkill disengages the global kill switch.
func (c *Client) Unkill(ctx context.Context) (*ActionResult, error) {
	var out ActionResult
	if err := c.Do(ctx, http.MethodPost, "/strategies/unkill", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
