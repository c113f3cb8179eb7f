// Package dialogue runs one conversational turn: ask the oracle what to do,
// dispatch at most one tool (plus the correlated log fetch when a metric
// looks anomalous), and have the oracle summarize the result.
package dialogue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ricardonunez-io/ranger/internal/conversation"
	"github.com/ricardonunez-io/ranger/internal/oracle"
	"github.com/ricardonunez-io/ranger/internal/rca"
	"github.com/ricardonunez-io/ranger/internal/tools"
	"github.com/rs/zerolog/log"
)

var ErrTurnInFlight = errors.New("a turn is already being processed for this session")

type State string

const (
	Idle                State = "idle"
	AwaitingIntent      State = "awaiting_intent"
	Dispatching         State = "dispatching"
	CorrelatingOptional State = "correlating"
	Summarizing         State = "summarizing"
)

// Notifier receives findings from fired anomaly triggers.
type Notifier interface {
	Notify(ctx context.Context, f rca.Finding) error
}

type Orchestrator struct {
	oracle   oracle.Oracle
	registry *tools.Registry
	notifier Notifier
	system   string
}

type Option func(*Orchestrator)

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Orchestrator) { o.system = prompt }
}

func New(orc oracle.Oracle, registry *tools.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{oracle: orc, registry: registry, system: oracle.SystemPrompt}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Handle processes one user message against the session. History is only
// mutated once the turn has an outcome: two entries for a text reply or a
// reported error, four for a dispatched tool, none for a configuration error.
func (o *Orchestrator) Handle(ctx context.Context, s *conversation.Session, text string) (Reply, error) {
	if !s.TryBegin() {
		return Reply{}, ErrTurnInFlight
	}
	defer s.End()

	logger := log.With().Str("session", s.ID).Logger()
	user := conversation.UserMessage(text)
	req := oracle.Request{
		System:  o.system,
		History: append(s.Messages(), user),
		Tools:   o.registry.Definitions(),
	}

	logger.Debug().Str("state", string(AwaitingIntent)).Msg("Proposing action")
	action, err := o.oracle.ProposeAction(ctx, req)
	if errors.Is(err, oracle.ErrNotConfigured) {
		logger.Error().Err(err).Msg("Oracle not configured")
		return Reply{Summary: fmt.Sprintf("Configuration error: %v", err)}, nil
	}
	if err != nil {
		return o.fault(s, user, err), nil
	}

	if !action.WantsTool() {
		s.Append(user, conversation.AssistantMessage(action.Text))
		logger.Debug().Str("state", string(Idle)).Msg("Answered without tools")
		return Reply{Summary: action.Text}, nil
	}

	if len(action.Calls) > 1 {
		logger.Warn().Int("calls", len(action.Calls)).Msg("Oracle requested several tools; only the first is used")
	}
	call := action.Calls[0]
	if call.ID == "" {
		call.ID = uuid.NewString()
	}

	tool, ok := o.registry.Lookup(call.Name)
	if !ok {
		msg := fmt.Sprintf("LLM suggested an unknown tool: %s", call.Name)
		logger.Warn().Str("tool", call.Name).Msg("Unknown tool requested")
		s.Append(user, conversation.AssistantMessage(msg))
		return Reply{Summary: msg}, nil
	}

	logger.Debug().Str("state", string(Dispatching)).Str("tool", call.Name).Msg("Dispatching tool")
	outcome, finding, fired, err := o.dispatch(ctx, tool, call)
	if err != nil {
		return o.fault(s, user, err), nil
	}

	content, err := outcome.JSON()
	if err != nil {
		return o.fault(s, user, fmt.Errorf("failed to encode tool outcome: %w", err)), nil
	}

	logger.Debug().Str("state", string(Summarizing)).Msg("Summarizing tool outcome")
	result := oracle.Outcome{Text: action.Text, Call: call, Content: content, Failed: !outcome.Primary.OK()}
	summary, err := o.oracle.Summarize(ctx, req, result)
	if err != nil {
		return o.fault(s, user, err), nil
	}

	s.Append(
		user,
		conversation.InvocationMessage(action.Text, call),
		result.Message(),
		conversation.AssistantMessage(summary),
	)

	if fired {
		o.notify(ctx, finding)
	}

	return newReply(summary, call.Name, outcome.Primary), nil
}

func (o *Orchestrator) dispatch(ctx context.Context, tool tools.Tool, call conversation.ToolCall) (out rca.Outcome, finding rca.Finding, fired bool, err error) {
	primary, err := invoke(ctx, tool, call)
	if err != nil {
		return out, finding, false, err
	}
	out = rca.NewOutcome(primary)

	finding, fired = rca.Evaluate(call.Name, call.Arguments, primary)
	if !fired {
		return out, finding, false, nil
	}

	log.Info().
		Str("service", finding.Service).
		Str("metric", finding.Metric).
		Float64("mean", finding.Mean).
		Float64("threshold", finding.Threshold).
		Str("state", string(CorrelatingOptional)).
		Msg("Metric above threshold, fetching error logs")

	logsTool, _ := o.registry.Lookup(tools.LogsToolName)
	out.Attach(rca.FetchCorrelated(ctx, logsTool, rca.CorrelatedLogArgs(call.Arguments)))
	if !out.Correlated.OK() {
		log.Warn().Str("error", out.Correlated.Err.Message).Msg("Correlated log fetch failed")
	}
	finding.Logs = out.Correlated
	finding.Patterns = out.Patterns
	return out, finding, true, nil
}

func invoke(ctx context.Context, tool tools.Tool, call conversation.ToolCall) (res tools.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", call.Name, r)
		}
	}()
	return tool.Invoke(ctx, call.Arguments), nil
}

func (o *Orchestrator) fault(s *conversation.Session, user conversation.Message, err error) Reply {
	log.Error().Err(err).Str("session", s.ID).Msg("Turn failed")
	s.Append(user, conversation.AssistantMessage(fmt.Sprintf("An internal error occurred: %v", err)))
	return Reply{Summary: fmt.Sprintf("Sorry, an error occurred: %v", err)}
}

func (o *Orchestrator) notify(ctx context.Context, f rca.Finding) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Notify(ctx, f); err != nil {
		log.Error().Err(err).Str("service", f.Service).Msg("Failed to send RCA notification")
	}
}
