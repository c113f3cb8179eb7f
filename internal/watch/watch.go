// Package watch periodically checks one metric and emits a finding whenever
// the anomaly trigger fires.
package watch

import (
	"context"
	"time"

	"github.com/ricardonunez-io/ranger/internal/rca"
	"github.com/ricardonunez-io/ranger/internal/timerange"
	"github.com/ricardonunez-io/ranger/internal/tools"
	"github.com/rs/zerolog/log"
)

const DefaultInterval = 5 * time.Minute

type Config struct {
	Registry  *tools.Registry
	Service   string
	Metric    string
	Statistic string
	TimeRange string
	Interval  time.Duration
}

func (c Config) args() map[string]any {
	args := map[string]any{
		"service_name":   c.Service,
		"metric_name":    c.Metric,
		"time_range_str": c.TimeRange,
	}
	if c.Statistic != "" {
		args["statistic"] = c.Statistic
	}
	return args
}

// Run checks once immediately and then every interval until ctx is done.
// The returned channel is closed when Run stops.
func Run(ctx context.Context, cfg Config) <-chan rca.Finding {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.TimeRange == "" {
		cfg.TimeRange = timerange.DefaultPhrase
	}

	log.Info().
		Str("service", cfg.Service).
		Str("metric", cfg.Metric).
		Dur("interval", cfg.Interval).
		Msg("Starting metric watch")
	findings := make(chan rca.Finding)

	go func() {
		defer close(findings)

		check(ctx, cfg, findings)
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping metric watch")
				return
			case <-ticker.C:
				check(ctx, cfg, findings)
			}
		}
	}()

	return findings
}

func check(ctx context.Context, cfg Config, findings chan<- rca.Finding) {
	metricTool, ok := cfg.Registry.Lookup(tools.MetricToolName)
	if !ok {
		log.Error().Msg("Metric tool is not registered")
		return
	}

	args := cfg.args()
	result := metricTool.Invoke(ctx, args)
	if !result.OK() {
		log.Error().Str("error", result.Err.Message).Str("service", cfg.Service).Msg("Metric check failed")
		return
	}

	finding, fired := rca.Evaluate(tools.MetricToolName, args, result)
	if !fired {
		log.Info().Str("service", cfg.Service).Str("metric", cfg.Metric).Msg("Metric within threshold")
		return
	}

	logsTool, _ := cfg.Registry.Lookup(tools.LogsToolName)
	outcome := rca.NewOutcome(result)
	outcome.Attach(rca.FetchCorrelated(ctx, logsTool, rca.CorrelatedLogArgs(args)))
	finding.Logs = outcome.Correlated
	finding.Patterns = outcome.Patterns

	log.Warn().Str("finding", finding.String()).Int("patterns", len(finding.Patterns)).Msg("Anomaly detected")

	select {
	case findings <- finding:
	case <-ctx.Done():
	}
}
