// Package mockclient queries the mock telemetry HTTP API.
package mockclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/timerange"
	"github.com/rs/zerolog/log"
)

type Client struct {
	endpoint string
	http     *http.Client
}

func New(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: telemetry.RequestTimeout},
	}
}

func (c *Client) Name() string { return "mock" }

func (c *Client) FetchMetric(ctx context.Context, q telemetry.MetricQuery) (telemetry.MetricSeries, error) {
	params := url.Values{}
	params.Set("service_name", q.Service)
	params.Set("metric_name", q.Metric)
	params.Set("start_time", timerange.FormatISO(q.Start))
	params.Set("end_time", timerange.FormatISO(q.End))
	params.Set("period", strconv.Itoa(q.PeriodSeconds))

	var series telemetry.MetricSeries
	if err := c.get(ctx, "/metrics", params, &series); err != nil {
		return telemetry.MetricSeries{}, fmt.Errorf("mock API call failed for metrics: %w", err)
	}
	return series.Normalize(q.Metric, q.Statistic)
}

func (c *Client) FetchLogs(ctx context.Context, q telemetry.LogQuery) (telemetry.LogBatch, error) {
	params := url.Values{}
	params.Set("log_group_name", q.LogGroup)
	params.Set("start_time", strconv.FormatInt(q.StartMillis, 10))
	params.Set("end_time", strconv.FormatInt(q.EndMillis, 10))
	params.Set("filter_pattern", q.FilterPattern)
	params.Set("limit", strconv.Itoa(q.Limit))

	var batch telemetry.LogBatch
	if err := c.get(ctx, "/logs", params, &batch); err != nil {
		return telemetry.LogBatch{}, fmt.Errorf("mock API call failed for logs: %w", err)
	}
	return telemetry.NewLogBatch(batch.Events), nil
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.endpoint + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	log.Debug().Str("url", reqURL).Msg("Querying mock telemetry API")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		msg = eb.Error
		if eb.Details != "" {
			msg += ": " + eb.Details
		}
	}
	err := fmt.Errorf("status %d: %s", status, msg)
	if status == http.StatusNotFound {
		return errors.Join(telemetry.ErrNotFound, err)
	}
	return err
}
