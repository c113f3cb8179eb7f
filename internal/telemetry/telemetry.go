// Package telemetry defines the query contract shared by every metrics/logs
// backend and the data shapes they return.
package telemetry

import (
	"context"
	"errors"
	"time"
)

const RequestTimeout = 15 * time.Second

var ErrNotFound = errors.New("resource not found")

type MetricQuery struct {
	Service       string
	Metric        string
	Statistic     string
	Start         time.Time
	End           time.Time
	PeriodSeconds int
}

type LogQuery struct {
	LogGroup      string
	StartMillis   int64
	EndMillis     int64
	FilterPattern string
	Limit         int
}

type Source interface {
	Name() string
	FetchMetric(ctx context.Context, q MetricQuery) (MetricSeries, error)
	FetchLogs(ctx context.Context, q LogQuery) (LogBatch, error)
}
