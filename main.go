package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ricardonunez-io/ranger/internal/dialogue"
	"github.com/ricardonunez-io/ranger/internal/oracle"
	slackpkg "github.com/ricardonunez-io/ranger/internal/slack"
	"github.com/ricardonunez-io/ranger/internal/tools"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Ranger exited with error")
	}
}

func newRootCommand() *cobra.Command {
	var cfg config

	root := &cobra.Command{
		Use:   "ranger",
		Short: "Conversational assistant for cloud metrics and logs",
		Long: `Ranger answers operational questions about a fleet of services.
It fetches metrics and logs, lists the workload, suggests scaling actions,
and correlates error logs when a metric crosses its anomaly threshold.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = loadConfig()
			zerolog.SetGlobalLevel(cfg.LogLevel)
		},
	}

	root.AddCommand(
		newChatCommand(&cfg),
		newMockAPICommand(&cfg),
		newWatchCommand(&cfg),
	)
	return root
}

// newRegistry builds the tool set over the configured telemetry backend.
func newRegistry(ctx context.Context, cfg config) (*tools.Registry, error) {
	src, err := newSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("backend", src.Name()).Msg("Telemetry backend ready")
	return tools.NewRegistry(tools.Deps{Source: src, Clock: time.Now}), nil
}

func newNotifier(cfg config) *slackpkg.Notifier {
	if !cfg.Slack.Enabled() {
		log.Info().Msg("SLACK_BOT_TOKEN or SLACK_CHANNEL_ID not set, RCA alerts will only be logged")
		return nil
	}
	return slackpkg.NewNotifier(cfg.Slack)
}

func newOrchestrator(cfg config, registry *tools.Registry) *dialogue.Orchestrator {
	if cfg.AnthropicKey == "" {
		log.Warn().Msg("ANTHROPIC_API_KEY is not set, turns will report a configuration error")
	}

	var opts []dialogue.Option
	if n := newNotifier(cfg); n != nil {
		opts = append(opts, dialogue.WithNotifier(n))
	}
	return dialogue.New(oracle.NewAnthropic(cfg.oracleConfig()), registry, opts...)
}
