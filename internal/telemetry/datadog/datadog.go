// Package datadog serves the telemetry contract from the Datadog metrics and
// logs APIs, reading AWS integration data forwarded into Datadog.
package datadog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
	"github.com/ricardonunez-io/ranger/internal/inventory"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/timerange"
	"github.com/rs/zerolog/log"
)

const maxPageSize = 1000

type metricsAPI interface {
	QueryMetrics(ctx context.Context, from int64, to int64, query string) (datadogV1.MetricsQueryResponse, *http.Response, error)
}

type logsAPI interface {
	ListLogsGet(ctx context.Context, o ...datadogV2.ListLogsGetOptionalParameters) (datadogV2.LogsListResponse, *http.Response, error)
}

type Source struct {
	metrics metricsAPI
	logs    logsAPI
}

func InitializeDataDog() *datadog.APIClient {
	configuration := datadog.NewConfiguration()
	configuration.AddDefaultHeader("DD-APPLICATION-KEY", os.Getenv("DD_APPLICATION_KEY"))
	return datadog.NewAPIClient(configuration)
}

func New(client *datadog.APIClient) *Source {
	return &Source{
		metrics: datadogV1.NewMetricsApi(client),
		logs:    datadogV2.NewLogsApi(client),
	}
}

func (s *Source) Name() string { return "datadog" }

var aggregations = map[string]string{
	"average":     "avg",
	"sum":         "sum",
	"maximum":     "max",
	"minimum":     "min",
	"samplecount": "count",
}

func aggregation(statistic string) string {
	if agg, ok := aggregations[strings.ToLower(statistic)]; ok {
		return agg
	}
	return "avg"
}

// MetricQuery renders the Datadog query for an AWS integration metric, e.g.
// avg:aws.ec2.cpuutilization{instanceid:i-123}.rollup(avg, 60).
func MetricQuery(q telemetry.MetricQuery) string {
	target := inventory.MetricTarget(q.Service)
	ns := strings.ToLower(strings.ReplaceAll(target.Namespace, "/", "."))

	tags := make([]string, len(target.Dimensions))
	for i, d := range target.Dimensions {
		tags[i] = fmt.Sprintf("%s:%s", strings.ToLower(d.Name), d.Value)
	}

	agg := aggregation(q.Statistic)
	query := fmt.Sprintf("%s:%s.%s{%s}", agg, ns, strings.ToLower(q.Metric), strings.Join(tags, ","))
	if q.PeriodSeconds > 0 {
		query += fmt.Sprintf(".rollup(%s, %d)", agg, q.PeriodSeconds)
	}
	return query
}

func (s *Source) FetchMetric(ctx context.Context, q telemetry.MetricQuery) (telemetry.MetricSeries, error) {
	query := MetricQuery(q)

	ctx, cancel := context.WithTimeout(ctx, telemetry.RequestTimeout)
	defer cancel()

	resp, _, err := s.metrics.QueryMetrics(datadog.NewDefaultContext(ctx), q.Start.Unix(), q.End.Unix(), query)
	if err != nil {
		log.Err(err).Str("query", query).Msg("Error when calling MetricsApi.QueryMetrics")
		return telemetry.MetricSeries{}, fmt.Errorf("datadog QueryMetrics: %w", err)
	}

	var series telemetry.MetricSeries
	if len(resp.Series) > 0 {
		for _, point := range resp.Series[0].Pointlist {
			if len(point) < 2 || point[0] == nil {
				continue
			}
			ts := time.UnixMilli(int64(*point[0]))
			series.Timestamps = append(series.Timestamps, timerange.FormatISO(ts))
			if point[1] == nil {
				series.Values = append(series.Values, telemetry.Value{})
			} else {
				series.Values = append(series.Values, telemetry.Number(*point[1]))
			}
		}
	}
	return series.Normalize(q.Metric, q.Statistic)
}

// LogQuery scopes the search to logs forwarded from one CloudWatch log group.
func LogQuery(q telemetry.LogQuery) string {
	query := fmt.Sprintf("@aws.awslogs.logGroup:%q", q.LogGroup)
	if q.FilterPattern != "" {
		query += fmt.Sprintf(" (%s)", q.FilterPattern)
	}
	return query
}

func (s *Source) FetchLogs(ctx context.Context, q telemetry.LogQuery) (telemetry.LogBatch, error) {
	from := time.UnixMilli(q.StartMillis).UTC()
	to := time.UnixMilli(q.EndMillis).UTC()
	query := LogQuery(q)

	ctx, cancel := context.WithTimeout(ctx, telemetry.RequestTimeout)
	defer cancel()
	ddCtx := datadog.NewDefaultContext(ctx)

	var events []telemetry.LogEvent
	var cursor *string

	for q.Limit <= 0 || len(events) < q.Limit {
		params := datadogV2.NewListLogsGetOptionalParameters()
		sort := datadogV2.LOGSSORT_TIMESTAMP_ASCENDING
		params.Sort = &sort
		params.FilterFrom = &from
		params.FilterTo = &to
		params.FilterQuery = &query
		pageSize := int32(maxPageSize)
		if q.Limit > 0 && q.Limit-len(events) < maxPageSize {
			pageSize = int32(q.Limit - len(events))
		}
		params.PageLimit = &pageSize

		if cursor != nil {
			params.PageCursor = cursor
		}

		resp, _, err := s.logs.ListLogsGet(ddCtx, *params)
		if err != nil {
			log.Err(err).Str("query", query).Msg("Error when calling LogsApi.ListLogsGet")
			return telemetry.LogBatch{}, fmt.Errorf("datadog ListLogsGet: %w", err)
		}

		for _, l := range resp.Data {
			if e, ok := toEvent(l); ok {
				events = append(events, e)
			}
		}

		if resp.Meta == nil || resp.Meta.Page == nil || resp.Meta.Page.After == nil {
			break
		}
		after := *resp.Meta.Page.After
		if after == "" {
			break
		}
		cursor = &after
	}

	if q.Limit > 0 && len(events) > q.Limit {
		events = events[:q.Limit]
	}

	log.Info().
		Str("logGroup", q.LogGroup).
		Int("logCount", len(events)).
		Msg("Successfully retrieved logs from DataDog")

	return telemetry.NewLogBatch(events), nil
}

func toEvent(l datadogV2.Log) (telemetry.LogEvent, bool) {
	if l.Attributes == nil || l.Attributes.Timestamp == nil {
		return telemetry.LogEvent{}, false
	}
	a := l.Attributes
	ts := a.Timestamp.UnixMilli()
	e := telemetry.LogEvent{Timestamp: ts, IngestionTime: ts}
	if a.Message != nil {
		e.Message = *a.Message
	}
	switch {
	case a.Host != nil:
		e.LogStreamName = *a.Host
	case a.Service != nil:
		e.LogStreamName = *a.Service
	}
	return e, true
}
