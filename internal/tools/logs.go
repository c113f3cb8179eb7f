package tools

import (
	"context"
	"strings"

	"github.com/ricardonunez-io/ranger/internal/inventory"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/timerange"
	"github.com/rs/zerolog/log"
)

const logsDescription = "Fetches log events from the CloudWatch log group of a service over a time range, " +
	"optionally filtered by a pattern such as 'ERROR' or 'Exception'. Requires service_or_log_group_name."

const DefaultLogLimit = 50

type LogsArgs struct {
	ServiceOrLogGroup string `json:"service_or_log_group_name" jsonschema:"required" jsonschema_description:"A service name (e.g. 'ecs-service-X') or a log group path (e.g. '/aws/lambda/my-function')."`
	TimeRange         string `json:"time_range_str" jsonschema:"default=last hour" jsonschema_description:"Time range such as 'last hour', 'last 15 minutes' or 'yesterday'."`
	FilterPattern     string `json:"filter_pattern" jsonschema_description:"Optional filter; terms separated by ' OR ' match any of them."`
	Limit             int    `json:"limit" jsonschema:"default=50" jsonschema_description:"Maximum number of events to return."`
}

var defaultLogsArgs = LogsArgs{
	TimeRange: timerange.DefaultPhrase,
	Limit:     DefaultLogLimit,
}

func (d Deps) fetchLogs(ctx context.Context, in LogsArgs) Result {
	group := inventory.LogGroupFor(in.ServiceOrLogGroup)
	if d.Source == nil {
		return Failure("no telemetry source configured", "log_group_name", group)
	}
	if strings.TrimSpace(in.TimeRange) == "" {
		in.TimeRange = timerange.DefaultPhrase
	}
	if in.Limit <= 0 {
		in.Limit = DefaultLogLimit
	}

	r := timerange.Resolve(in.TimeRange, d.now())
	var warnings []string
	if r.Fallback {
		log.Warn().Str("time_range", in.TimeRange).Msg(r.Warning)
		warnings = append(warnings, r.Warning)
	}

	log.Info().
		Str("source", d.Source.Name()).
		Str("log_group", group).
		Str("filter", in.FilterPattern).
		Int("limit", in.Limit).
		Msg("Fetching logs")

	batch, err := d.Source.FetchLogs(ctx, telemetry.LogQuery{
		LogGroup:      group,
		StartMillis:   r.StartMillis(),
		EndMillis:     r.EndMillis(),
		FilterPattern: in.FilterPattern,
		Limit:         in.Limit,
	})
	if err != nil {
		log.Error().Err(err).Str("log_group", group).Msg("Log fetch failed")
		res := Failure(err.Error(), "log_group_name", group)
		res.Warnings = warnings
		return res
	}

	res := Success(batch)
	res.Warnings = warnings
	return res
}
