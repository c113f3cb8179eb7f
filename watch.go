package main

import (
	"time"

	"github.com/ricardonunez-io/ranger/internal/rca"
	"github.com/ricardonunez-io/ranger/internal/timerange"
	"github.com/ricardonunez-io/ranger/internal/watch"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newWatchCommand(cfg *config) *cobra.Command {
	wc := watch.Config{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically check a metric and alert on anomalies",
		Long: `Check one metric of one service on an interval. When the metric
crosses its anomaly threshold, recent error logs are fetched and grouped,
and the finding is posted to Slack (or logged when Slack is not configured).`,
		Example: `  ranger watch --service high-load-service --metric CPUUtilization --interval 1m`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			registry, err := newRegistry(ctx, *cfg)
			if err != nil {
				return err
			}
			wc.Registry = registry
			notifier := newNotifier(*cfg)

			for finding := range watch.Run(ctx, wc) {
				if notifier == nil {
					logFinding(finding)
					continue
				}
				if err := notifier.Notify(ctx, finding); err != nil {
					log.Err(err).Str("service", finding.Service).Msg("Failed to send RCA alert to Slack")
				}
			}

			log.Info().Msg("Watch stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&wc.Service, "service", "", "service to watch")
	cmd.Flags().StringVar(&wc.Metric, "metric", "CPUUtilization", "metric name")
	cmd.Flags().StringVar(&wc.Statistic, "statistic", "", "statistic (default Average)")
	cmd.Flags().StringVar(&wc.TimeRange, "time-range", timerange.DefaultPhrase, "window checked on every tick")
	cmd.Flags().DurationVar(&wc.Interval, "interval", watch.DefaultInterval, "time between checks")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}

func logFinding(f rca.Finding) {
	log.Warn().
		Str("service", f.Service).
		Str("metric", f.Metric).
		Str("rule", f.Rule).
		Float64("mean", f.Mean).
		Float64("threshold", f.Threshold).
		Int("patterns", len(f.Patterns)).
		Time("detectedAt", time.Now()).
		Msg("RCA finding")
}
