package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ricardonunez-io/ranger/internal/conversation"
	"github.com/ricardonunez-io/ranger/internal/oracle"
	"github.com/ricardonunez-io/ranger/internal/rca"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOracle struct {
	action       oracle.Action
	proposeErr   error
	summary      string
	summarizeErr error

	requests []oracle.Request
	outcomes []oracle.Outcome
}

func (s *stubOracle) ProposeAction(_ context.Context, req oracle.Request) (oracle.Action, error) {
	s.requests = append(s.requests, req)
	return s.action, s.proposeErr
}

func (s *stubOracle) Summarize(_ context.Context, req oracle.Request, out oracle.Outcome) (string, error) {
	s.requests = append(s.requests, req)
	s.outcomes = append(s.outcomes, out)
	return s.summary, s.summarizeErr
}

type fakeSource struct {
	values    []float64
	logs      []telemetry.LogEvent
	logQuery  *telemetry.LogQuery
	logsErr   error
	logsPanic bool
	panicking bool
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchMetric(_ context.Context, q telemetry.MetricQuery) (telemetry.MetricSeries, error) {
	if f.panicking {
		panic("backend exploded")
	}
	s := telemetry.MetricSeries{}
	for _, v := range f.values {
		s.Timestamps = append(s.Timestamps, "2025-05-07T12:00:00Z")
		s.Values = append(s.Values, telemetry.Number(v))
	}
	return s.Normalize(q.Metric, q.Statistic)
}

func (f *fakeSource) FetchLogs(_ context.Context, q telemetry.LogQuery) (telemetry.LogBatch, error) {
	f.logQuery = &q
	if f.logsPanic {
		panic("logs backend exploded")
	}
	if f.logsErr != nil {
		return telemetry.LogBatch{}, f.logsErr
	}
	return telemetry.NewLogBatch(f.logs), nil
}

type recordingNotifier struct {
	findings []rca.Finding
	err      error
}

func (r *recordingNotifier) Notify(_ context.Context, f rca.Finding) error {
	r.findings = append(r.findings, f)
	return r.err
}

func newOrchestrator(orc oracle.Oracle, src telemetry.Source, opts ...Option) *Orchestrator {
	reg := tools.NewRegistry(tools.Deps{
		Source: src,
		Clock:  func() time.Time { return time.Date(2025, 5, 7, 12, 0, 0, 0, time.UTC) },
		Intn:   func(int) int { return 0 },
	})
	return New(orc, reg, opts...)
}

func toolAction(name string, args map[string]any) oracle.Action {
	return oracle.Action{Calls: []conversation.ToolCall{{ID: "toolu_1", Name: name, Arguments: args}}}
}

func TestHandle_TextOnly(t *testing.T) {
	orc := &stubOracle{action: oracle.Action{Text: "Hello! How can I help?"}}
	o := newOrchestrator(orc, &fakeSource{})
	s := conversation.NewSession()

	reply, err := o.Handle(context.Background(), s, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", reply.Summary)
	assert.Empty(t, reply.Tool)
	assert.Nil(t, reply.Display)
	assert.Equal(t, 2, s.Len())

	req := orc.requests[0]
	assert.Equal(t, oracle.SystemPrompt, req.System)
	assert.Len(t, req.Tools, len(tools.Kinds))
	assert.Equal(t, "hi", req.History[len(req.History)-1].Content)
}

func TestHandle_UnknownTool(t *testing.T) {
	orc := &stubOracle{action: toolAction("FooBar", nil)}
	src := &fakeSource{}
	o := newOrchestrator(orc, src)
	s := conversation.NewSession()

	reply, err := o.Handle(context.Background(), s, "do something odd")
	require.NoError(t, err)
	assert.Equal(t, "LLM suggested an unknown tool: FooBar", reply.Summary)
	assert.Equal(t, 2, s.Len())
	assert.Empty(t, orc.outcomes, "no summary step")
	assert.Nil(t, src.logQuery)

	msgs := s.Messages()
	assert.Equal(t, conversation.RoleAssistant, msgs[1].Role)
	assert.Equal(t, reply.Summary, msgs[1].Content)
}

func TestHandle_ToolPathAppendsFourEntries(t *testing.T) {
	orc := &stubOracle{
		action:  toolAction(tools.MetricToolName, map[string]any{"service_name": "ec2-instance-A", "metric_name": "CPUUtilization"}),
		summary: "CPU is fine.",
	}
	src := &fakeSource{values: []float64{20, 30}}
	o := newOrchestrator(orc, src)
	s := conversation.NewSession()

	reply, err := o.Handle(context.Background(), s, "cpu for ec2-instance-A")
	require.NoError(t, err)
	assert.Equal(t, "CPU is fine.", reply.Summary)
	assert.Equal(t, tools.MetricToolName, reply.Tool)
	assert.Empty(t, reply.RemediationScript)
	series, ok := reply.Display.(telemetry.MetricSeries)
	require.True(t, ok)
	assert.Len(t, series.Values, 2)

	msgs := s.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, conversation.RoleUser, msgs[0].Role)
	require.NotNil(t, msgs[1].ToolCall)
	assert.Equal(t, "toolu_1", msgs[1].ToolCall.ID)
	assert.Equal(t, conversation.RoleTool, msgs[2].Role)
	assert.Equal(t, "toolu_1", msgs[2].ToolCallID)
	assert.Equal(t, "CPU is fine.", msgs[3].Content)

	assert.Nil(t, src.logQuery, "no correlated fetch below threshold")
	assert.NotContains(t, msgs[2].Content, "rca_error_logs_output")
	assert.Equal(t, msgs[2].Content, orc.outcomes[0].Content)
}

func TestHandle_AnomalyTriggersCorrelatedFetch(t *testing.T) {
	orc := &stubOracle{
		action: toolAction(tools.MetricToolName, map[string]any{
			"service_name":   "high-load-service",
			"metric_name":    "CPUUtilization",
			"time_range_str": "last 3 hours",
		}),
		summary: "CPU is high and there are errors.",
	}
	src := &fakeSource{
		values: []float64{88, 92, 85},
		logs: []telemetry.LogEvent{
			{Timestamp: 1, Message: "ERROR ErrorCode=DB_CONN_TIMEOUT UserID=101"},
			{Timestamp: 2, Message: "ERROR ErrorCode=DB_CONN_TIMEOUT UserID=202"},
		},
	}
	n := &recordingNotifier{err: errors.New("slack down")}
	o := newOrchestrator(orc, src, WithNotifier(n))
	s := conversation.NewSession()

	reply, err := o.Handle(context.Background(), s, "cpu for high-load-service over the last 3 hours")
	require.NoError(t, err)
	assert.Equal(t, "CPU is high and there are errors.", reply.Summary)

	require.NotNil(t, src.logQuery)
	assert.Equal(t, rca.ErrorFilterPattern, src.logQuery.FilterPattern)
	assert.Equal(t, rca.CorrelatedLimit, src.logQuery.Limit)
	assert.Equal(t, "/app/high-load-service", src.logQuery.LogGroup)
	assert.Equal(t, int64(3*time.Hour/time.Millisecond), src.logQuery.EndMillis-src.logQuery.StartMillis)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(orc.outcomes[0].Content), &payload))
	assert.Contains(t, payload, "primary_tool_output")
	assert.Contains(t, payload, "rca_error_logs_output")
	assert.Contains(t, payload, "rca_error_patterns")

	require.Len(t, n.findings, 1, "notifier failure must not fail the turn")
	assert.Equal(t, "high-load-service", n.findings[0].Service)
	assert.Len(t, n.findings[0].Patterns, 1)
	assert.Equal(t, 4, s.Len())
}

func TestHandle_CorrelatedFetchFailureKeepsPrimary(t *testing.T) {
	cases := []struct {
		name    string
		src     *fakeSource
		wantErr string
	}{
		{"backend error", &fakeSource{values: []float64{88, 92, 85}, logsErr: errors.New("throttled")}, "throttled"},
		{"backend panic", &fakeSource{values: []float64{88, 92, 85}, logsPanic: true}, "Failed to fetch RCA logs: logs backend exploded"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			orc := &stubOracle{
				action: toolAction(tools.MetricToolName, map[string]any{
					"service_name": "high-load-service",
					"metric_name":  "CPUUtilization",
				}),
				summary: "CPU is high; error logs were unavailable.",
			}
			o := newOrchestrator(orc, c.src)
			s := conversation.NewSession()

			reply, err := o.Handle(context.Background(), s, "cpu for high-load-service")
			require.NoError(t, err)
			assert.Equal(t, "CPU is high; error logs were unavailable.", reply.Summary)
			assert.Equal(t, 4, s.Len())

			series, ok := reply.Display.(telemetry.MetricSeries)
			require.True(t, ok, "display: got %T", reply.Display)
			assert.Len(t, series.Values, 3)

			require.Len(t, orc.outcomes, 1)
			var payload struct {
				Primary    json.RawMessage `json:"primary_tool_output"`
				Correlated map[string]any  `json:"rca_error_logs_output"`
			}
			require.NoError(t, json.Unmarshal([]byte(orc.outcomes[0].Content), &payload))
			assert.NotEmpty(t, payload.Primary)
			assert.Contains(t, payload.Correlated["error"], c.wantErr)
			assert.Equal(t, "/app/high-load-service", payload.Correlated["log_group_name"])
		})
	}
}

func TestHandle_ScalingReturnsRemediationScript(t *testing.T) {
	orc := &stubOracle{
		action: toolAction(tools.ScalingToolName, map[string]any{
			"service_name":         "high-load-service-asg",
			"service_type":         "EC2 AutoScalingGroup",
			"metric_name":          "CPUUtilization",
			"current_metric_value": "92%",
		}),
		summary: "Here is a scaling suggestion.",
	}
	o := newOrchestrator(orc, &fakeSource{})

	reply, err := o.Handle(context.Background(), conversation.NewSession(), "how do I fix it?")
	require.NoError(t, err)
	assert.Contains(t, reply.RemediationScript, "aws autoscaling set-desired-capacity")
	assert.Contains(t, reply.RemediationScript, "NEW_DESIRED_VALUE")
}

func TestHandle_MissingArgumentsAreData(t *testing.T) {
	orc := &stubOracle{action: toolAction(tools.MetricToolName, map[string]any{"service_name": "svc"}), summary: "Which metric?"}
	o := newOrchestrator(orc, &fakeSource{})
	s := conversation.NewSession()

	reply, err := o.Handle(context.Background(), s, "metrics please")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.IsType(t, &tools.ErrorPayload{}, reply.Display)
	assert.Contains(t, orc.outcomes[0].Content, "missing required argument")
	assert.True(t, orc.outcomes[0].Failed)
	assert.True(t, s.Messages()[2].IsError, "tool result entry should carry the failure flag")
}

func TestHandle_ConfigErrorLeavesHistoryUntouched(t *testing.T) {
	orc := &stubOracle{proposeErr: oracle.ErrNotConfigured}
	o := newOrchestrator(orc, &fakeSource{})
	s := conversation.NewSession()

	reply, err := o.Handle(context.Background(), s, "hi")
	require.NoError(t, err)
	assert.Contains(t, reply.Summary, "Configuration error")
	assert.Equal(t, 0, s.Len())
}

func TestHandle_OracleFault(t *testing.T) {
	orc := &stubOracle{proposeErr: fmt.Errorf("anthropic API error: %w", errors.New("429 rate limited"))}
	o := newOrchestrator(orc, &fakeSource{})
	s := conversation.NewSession()

	reply, err := o.Handle(context.Background(), s, "hi")
	require.NoError(t, err)
	assert.Contains(t, reply.Summary, "Sorry, an error occurred")
	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Content, "An internal error occurred")

	orc.proposeErr = nil
	orc.action = oracle.Action{Text: "back again"}
	reply, err = o.Handle(context.Background(), s, "hello?")
	require.NoError(t, err)
	assert.Equal(t, "back again", reply.Summary)
	assert.Equal(t, 4, s.Len())
}

func TestHandle_SummarizeFault(t *testing.T) {
	orc := &stubOracle{
		action:       toolAction(tools.WorkloadToolName, nil),
		summarizeErr: errors.New("connection reset"),
	}
	o := newOrchestrator(orc, &fakeSource{})
	s := conversation.NewSession()

	reply, err := o.Handle(context.Background(), s, "overview")
	require.NoError(t, err)
	assert.Contains(t, reply.Summary, "connection reset")
	assert.Equal(t, 2, s.Len())
}

func TestHandle_DispatchPanicIsRecovered(t *testing.T) {
	orc := &stubOracle{action: toolAction(tools.MetricToolName, map[string]any{"service_name": "svc", "metric_name": "CPUUtilization"})}
	o := newOrchestrator(orc, &fakeSource{panicking: true})
	s := conversation.NewSession()

	reply, err := o.Handle(context.Background(), s, "cpu")
	require.NoError(t, err)
	assert.Contains(t, reply.Summary, "panicked")
	assert.Equal(t, 2, s.Len())
}

func TestHandle_OnlyFirstCallHonoredAndIDAssigned(t *testing.T) {
	orc := &stubOracle{
		action: oracle.Action{Calls: []conversation.ToolCall{
			{Name: tools.NodeCountToolName, Arguments: map[string]any{}},
			{Name: "FooBar"},
		}},
		summary: "Which cluster?",
	}
	o := newOrchestrator(orc, &fakeSource{})
	s := conversation.NewSession()

	reply, err := o.Handle(context.Background(), s, "how many nodes?")
	require.NoError(t, err)
	assert.Equal(t, tools.NodeCountToolName, reply.Tool)
	assert.Equal(t, tools.NodeCountReply{NodeCountText: tools.NodeCountClarification}, reply.Display)

	msgs := s.Messages()
	require.Len(t, msgs, 4)
	assert.NotEmpty(t, msgs[1].ToolCall.ID)
	assert.Equal(t, msgs[1].ToolCall.ID, msgs[2].ToolCallID)
}

func TestHandle_TurnInFlight(t *testing.T) {
	o := newOrchestrator(&stubOracle{action: oracle.Action{Text: "ok"}}, &fakeSource{})
	s := conversation.NewSession()
	require.True(t, s.TryBegin())

	_, err := o.Handle(context.Background(), s, "hi")
	assert.ErrorIs(t, err, ErrTurnInFlight)
	assert.Equal(t, 0, s.Len())
	s.End()
}
