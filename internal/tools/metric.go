package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/timerange"
	"github.com/rs/zerolog/log"
)

const metricDescription = "Fetches a specific metric (like CPUUtilization, MemoryUtilization, NetworkIn, " +
	"DatabaseConnections) for a given AWS service or resource over a time range. Requires service_name and metric_name."

// Period is a sample period in seconds. Zero, an empty string and "auto"
// all mean the period is picked from the queried span. Explicit values must
// be whole and non-negative.
type Period int

func (p *Period) set(n float64) error {
	if n < 0 || n != math.Trunc(n) || math.IsInf(n, 0) {
		return fmt.Errorf("period_seconds must be a non-negative whole number of seconds, got %v", n)
	}
	*p = Period(n)
	return nil
}

func (p *Period) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*p = 0
		return nil
	}

	var n float64
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return p.set(n)
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("period_seconds must be a number or \"auto\": %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		*p = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("period_seconds must be a number or \"auto\", got %q", s)
	}
	return p.set(n)
}

type MetricArgs struct {
	ServiceName   string `json:"service_name" jsonschema:"required" jsonschema_description:"The name or ID of the AWS service/resource (e.g. 'ec2-instance-A', 'ecs-service-X', 'lambda-function-Y')."`
	MetricName    string `json:"metric_name" jsonschema:"required" jsonschema_description:"The metric to fetch (e.g. 'CPUUtilization', 'MemoryUtilization', 'NetworkIn', 'Errors')."`
	TimeRange     string `json:"time_range_str" jsonschema:"default=last hour" jsonschema_description:"Time range such as 'last hour', 'last 3 hours', 'today' or 'yesterday'."`
	Statistic     string `json:"statistic" jsonschema:"default=Average" jsonschema_description:"Statistic to aggregate by: Average, Sum, Maximum, Minimum or SampleCount."`
	PeriodSeconds Period `json:"period_seconds" jsonschema_description:"Sample period in seconds. Omit or use 0 to choose automatically from the time range."`
}

var defaultMetricArgs = MetricArgs{
	TimeRange: timerange.DefaultPhrase,
	Statistic: "Average",
}

func (d Deps) fetchMetric(ctx context.Context, in MetricArgs) Result {
	if d.Source == nil {
		return Failure("no telemetry source configured", "metric_name", in.MetricName)
	}
	if strings.TrimSpace(in.TimeRange) == "" {
		in.TimeRange = timerange.DefaultPhrase
	}
	if strings.TrimSpace(in.Statistic) == "" {
		in.Statistic = defaultMetricArgs.Statistic
	}

	r := timerange.Resolve(in.TimeRange, d.now())
	var warnings []string
	if r.Fallback {
		log.Warn().Str("time_range", in.TimeRange).Msg(r.Warning)
		warnings = append(warnings, r.Warning)
	}
	period := timerange.SelectPeriod(r, int(in.PeriodSeconds))

	log.Info().
		Str("source", d.Source.Name()).
		Str("service", in.ServiceName).
		Str("metric", in.MetricName).
		Str("start", r.ISOStart()).
		Str("end", r.ISOEnd()).
		Int("period", period).
		Msg("Fetching metric")

	series, err := d.Source.FetchMetric(ctx, telemetry.MetricQuery{
		Service:       in.ServiceName,
		Metric:        in.MetricName,
		Statistic:     in.Statistic,
		Start:         r.Start,
		End:           r.End,
		PeriodSeconds: period,
	})
	if err != nil {
		log.Error().Err(err).Str("metric", in.MetricName).Msg("Metric fetch failed")
		res := Failure(err.Error(), "metric_name", in.MetricName)
		res.Warnings = warnings
		return res
	}

	res := Success(series)
	res.Warnings = warnings
	return res
}
