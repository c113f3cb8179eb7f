// Package rca decides when a metric reading warrants a correlated error-log
// fetch and merges both results into the payload the oracle summarizes.
package rca

import (
	"fmt"
	"strings"

	"github.com/ricardonunez-io/ranger/internal/fuzzy"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/timerange"
	"github.com/ricardonunez-io/ranger/internal/tools"
)

const (
	ErrorFilterPattern = "ERROR OR Exception OR Timeout OR OOM OR Fail"
	CorrelatedLimit    = 10
)

type Rule struct {
	Name      string
	Keyword   string
	Threshold float64
}

// Rules are evaluated in order and the first breached one is reported.
var Rules = []Rule{
	{Name: "cpu", Keyword: "CPU", Threshold: 80},
	{Name: "memory", Keyword: "MEMORY", Threshold: 85},
}

type Finding struct {
	Service   string                `json:"service"`
	Metric    string                `json:"metric"`
	TimeRange string                `json:"time_range"`
	Rule      string                `json:"rule"`
	Mean      float64               `json:"mean"`
	Threshold float64               `json:"threshold"`
	Stats     telemetry.SeriesStats `json:"stats"`
	Logs      *tools.Result         `json:"-"`
	Patterns  []fuzzy.Pattern       `json:"patterns,omitempty"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s averaged %.2f over %s (threshold %.0f)", f.Service, f.Metric, f.Mean, f.TimeRange, f.Threshold)
}

// Evaluate fires only for a successful metric-tool result whose metric name
// matches a rule keyword and whose mean over numeric values exceeds that
// rule's threshold. Series without numeric values never fire.
func Evaluate(toolName string, args map[string]any, result tools.Result) (Finding, bool) {
	if toolName != tools.MetricToolName || !result.OK() {
		return Finding{}, false
	}
	series, ok := asSeries(result.Value)
	if !ok {
		return Finding{}, false
	}
	stats := series.Stats()
	if stats.Count == 0 {
		return Finding{}, false
	}

	metric := stringArg(args, "metric_name")
	upper := strings.ToUpper(metric)
	for _, r := range Rules {
		if !strings.Contains(upper, r.Keyword) || stats.Mean <= r.Threshold {
			continue
		}
		return Finding{
			Service:   stringArg(args, "service_name"),
			Metric:    metric,
			TimeRange: phrase(args),
			Rule:      r.Name,
			Mean:      stats.Mean,
			Threshold: r.Threshold,
			Stats:     stats,
		}, true
	}
	return Finding{}, false
}

func ShouldCorrelate(toolName string, args map[string]any, result tools.Result) bool {
	_, ok := Evaluate(toolName, args, result)
	return ok
}

// CorrelatedLogArgs builds the error-log query for the same service and time
// phrase as the triggering metric call.
func CorrelatedLogArgs(args map[string]any) map[string]any {
	return map[string]any{
		"service_or_log_group_name": stringArg(args, "service_name"),
		"time_range_str":            phrase(args),
		"filter_pattern":            ErrorFilterPattern,
		"limit":                     CorrelatedLimit,
	}
}

func asSeries(v any) (telemetry.MetricSeries, bool) {
	switch s := v.(type) {
	case telemetry.MetricSeries:
		return s, true
	case *telemetry.MetricSeries:
		if s != nil {
			return *s, true
		}
	}
	return telemetry.MetricSeries{}, false
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func phrase(args map[string]any) string {
	if p := strings.TrimSpace(stringArg(args, "time_range_str")); p != "" {
		return p
	}
	return timerange.DefaultPhrase
}
