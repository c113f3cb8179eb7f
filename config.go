package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ricardonunez-io/ranger/internal/oracle"
	slackpkg "github.com/ricardonunez-io/ranger/internal/slack"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/telemetry/cloudwatch"
	"github.com/ricardonunez-io/ranger/internal/telemetry/datadog"
	"github.com/ricardonunez-io/ranger/internal/telemetry/mockclient"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultMockEndpoint = "http://localhost:8080"
	defaultMockAddr     = ":8080"
	defaultAWSRegion    = "us-east-1"
)

type config struct {
	AnthropicKey   string
	AnthropicModel string
	Backend        string
	MockEndpoint   string
	AWSRegion      string
	Slack          slackpkg.Config
	LogLevel       zerolog.Level
	MockAddr       string
}

func loadConfig() config {
	cfg := config{
		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel: envOr("ANTHROPIC_MODEL", oracle.DefaultModel),
		Backend:        strings.ToUpper(os.Getenv("TELEMETRY_BACKEND")),
		MockEndpoint:   envOr("MOCK_API_ENDPOINT", defaultMockEndpoint),
		AWSRegion:      envOr("AWS_REGION", defaultAWSRegion),
		Slack: slackpkg.Config{
			BotToken:  os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
		},
		LogLevel: parseLevel(os.Getenv("LOG_LEVEL")),
		MockAddr: envOr("MOCK_API_ADDR", defaultMockAddr),
	}

	if !telemetry.ValidBackends.Includes(cfg.Backend) {
		if cfg.Backend != "" {
			log.Warn().Str("value", cfg.Backend).Msg("Invalid TELEMETRY_BACKEND, defaulting to MOCK")
		}
		cfg.Backend = string(telemetry.MOCK)
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("value", s).Msg("Invalid LOG_LEVEL, defaulting to info")
		return zerolog.InfoLevel
	}
	return level
}

func (c config) oracleConfig() oracle.Config {
	oc := oracle.DefaultConfig(c.AnthropicKey)
	oc.Model = c.AnthropicModel
	return oc
}

func newSource(ctx context.Context, c config) (telemetry.Source, error) {
	switch {
	case telemetry.CLOUDWATCH.Match(c.Backend):
		src, err := cloudwatch.New(ctx, c.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize CloudWatch backend: %w", err)
		}
		return src, nil
	case telemetry.DATADOG.Match(c.Backend):
		if os.Getenv("DD_API_KEY") == "" || os.Getenv("DD_APPLICATION_KEY") == "" {
			return nil, errors.New("DD_API_KEY and DD_APPLICATION_KEY are required for the DATADOG backend")
		}
		return datadog.New(datadog.InitializeDataDog()), nil
	default:
		return mockclient.New(c.MockEndpoint), nil
	}
}
