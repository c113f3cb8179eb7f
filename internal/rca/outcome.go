package rca

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ricardonunez-io/ranger/internal/fuzzy"
	"github.com/ricardonunez-io/ranger/internal/inventory"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/tools"
)

// Outcome is the single payload recorded for a dispatched tool call. A turn
// whose trigger was skipped and one that was evaluated without firing
// produce the same JSON.
type Outcome struct {
	Primary    tools.Result    `json:"primary_tool_output"`
	Correlated *tools.Result   `json:"rca_error_logs_output,omitempty"`
	Patterns   []fuzzy.Pattern `json:"rca_error_patterns,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
}

func NewOutcome(primary tools.Result) Outcome {
	o := Outcome{Primary: primary}
	o.Warnings = append(o.Warnings, primary.Warnings...)
	return o
}

// Attach records the correlated log fetch and groups its events into
// recurring patterns.
func (o *Outcome) Attach(logs tools.Result) {
	o.Correlated = &logs
	o.Warnings = append(o.Warnings, logs.Warnings...)
	if batch, ok := logs.Value.(telemetry.LogBatch); ok && logs.OK() {
		o.Patterns = fuzzy.Group(batch.Events)
	}
}

// FetchCorrelated runs the error-log fetch for a fired trigger. A missing
// or panicking log tool becomes an error payload so the primary result
// still reaches the summary.
func FetchCorrelated(ctx context.Context, logsTool tools.Tool, args map[string]any) (res tools.Result) {
	group := inventory.LogGroupFor(stringArg(args, "service_or_log_group_name"))
	if logsTool == nil {
		return tools.Failure(fmt.Sprintf("Failed to fetch RCA logs: tool %s is not registered", tools.LogsToolName), "log_group_name", group)
	}

	defer func() {
		if r := recover(); r != nil {
			res = tools.Failure(fmt.Sprintf("Failed to fetch RCA logs: %v", r), "log_group_name", group)
		}
	}()
	return logsTool.Invoke(ctx, args)
}

func (o Outcome) JSON() (string, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
