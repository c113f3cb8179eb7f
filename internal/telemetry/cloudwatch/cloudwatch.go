// Package cloudwatch serves the telemetry contract from AWS CloudWatch and
// CloudWatch Logs.
package cloudwatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/ricardonunez-io/ranger/internal/inventory"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/timerange"
	"github.com/rs/zerolog/log"
)

type metricsAPI interface {
	GetMetricData(ctx context.Context, in *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error)
}

type logsAPI interface {
	FilterLogEvents(ctx context.Context, in *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

type Source struct {
	metrics metricsAPI
	logs    logsAPI
}

func New(ctx context.Context, region string) (*Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Source{
		metrics: cloudwatch.NewFromConfig(cfg),
		logs:    cloudwatchlogs.NewFromConfig(cfg),
	}, nil
}

func (s *Source) Name() string { return "cloudwatch" }

func (s *Source) FetchMetric(ctx context.Context, q telemetry.MetricQuery) (telemetry.MetricSeries, error) {
	target := inventory.MetricTarget(q.Service)

	dims := make([]cwtypes.Dimension, len(target.Dimensions))
	for i, d := range target.Dimensions {
		dims[i] = cwtypes.Dimension{Name: aws.String(d.Name), Value: aws.String(d.Value)}
	}

	ctx, cancel := context.WithTimeout(ctx, telemetry.RequestTimeout)
	defer cancel()

	out, err := s.metrics.GetMetricData(ctx, &cloudwatch.GetMetricDataInput{
		MetricDataQueries: []cwtypes.MetricDataQuery{{
			Id: aws.String("m1"),
			MetricStat: &cwtypes.MetricStat{
				Metric: &cwtypes.Metric{
					Namespace:  aws.String(target.Namespace),
					MetricName: aws.String(q.Metric),
					Dimensions: dims,
				},
				Period: aws.Int32(int32(q.PeriodSeconds)),
				Stat:   aws.String(q.Statistic),
			},
			ReturnData: aws.Bool(true),
		}},
		StartTime: aws.Time(q.Start),
		EndTime:   aws.Time(q.End),
		ScanBy:    cwtypes.ScanByTimestampAscending,
	})
	if err != nil {
		log.Err(err).Str("metric", q.Metric).Str("namespace", target.Namespace).Msg("Error when calling CloudWatch GetMetricData")
		return telemetry.MetricSeries{}, fmt.Errorf("cloudwatch GetMetricData: %w", err)
	}

	var series telemetry.MetricSeries
	if len(out.MetricDataResults) > 0 {
		r := out.MetricDataResults[0]
		series.Timestamps = make([]string, len(r.Timestamps))
		for i, ts := range r.Timestamps {
			series.Timestamps[i] = timerange.FormatISO(ts)
		}
		series.Values = make([]telemetry.Value, len(r.Values))
		for i, v := range r.Values {
			series.Values[i] = telemetry.Number(v)
		}
	}
	return series.Normalize(q.Metric, q.Statistic)
}

func (s *Source) FetchLogs(ctx context.Context, q telemetry.LogQuery) (telemetry.LogBatch, error) {
	in := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(q.LogGroup),
		StartTime:    aws.Int64(q.StartMillis),
		EndTime:      aws.Int64(q.EndMillis),
	}
	if q.Limit > 0 {
		in.Limit = aws.Int32(int32(q.Limit))
	}
	if q.FilterPattern != "" {
		in.FilterPattern = aws.String(q.FilterPattern)
	}

	ctx, cancel := context.WithTimeout(ctx, telemetry.RequestTimeout)
	defer cancel()

	out, err := s.logs.FilterLogEvents(ctx, in)
	if err != nil {
		var notFound *cwltypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return telemetry.LogBatch{}, fmt.Errorf("log group '%s' not found: %w", q.LogGroup, telemetry.ErrNotFound)
		}
		log.Err(err).Str("logGroup", q.LogGroup).Msg("Error when calling CloudWatch Logs FilterLogEvents")
		return telemetry.LogBatch{}, fmt.Errorf("cloudwatch FilterLogEvents: %w", err)
	}

	events := make([]telemetry.LogEvent, 0, len(out.Events))
	for _, e := range out.Events {
		events = append(events, telemetry.LogEvent{
			Timestamp:     aws.ToInt64(e.Timestamp),
			Message:       aws.ToString(e.Message),
			IngestionTime: aws.ToInt64(e.IngestionTime),
			LogStreamName: aws.ToString(e.LogStreamName),
		})
	}

	log.Info().
		Str("logGroup", q.LogGroup).
		Int("logCount", len(events)).
		Msg("Successfully retrieved logs from CloudWatch")

	return telemetry.NewLogBatch(events), nil
}
