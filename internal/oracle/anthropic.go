package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ricardonunez-io/ranger/internal/conversation"
	"github.com/ricardonunez-io/ranger/internal/tools"
	"github.com/rs/zerolog/log"
)

type Anthropic struct {
	cfg    Config
	client anthropic.Client
}

func NewAnthropic(cfg Config) *Anthropic {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Anthropic{cfg: cfg, client: anthropic.NewClient(opts...)}
}

func (a *Anthropic) ProposeAction(ctx context.Context, req Request) (Action, error) {
	if a.cfg.APIKey == "" {
		return Action{}, ErrNotConfigured
	}

	params := a.params(req, messages(req.History))
	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Action{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var action Action
	var texts []string
	for _, block := range message.Content {
		switch block.Type {
		case "text":
			if t := strings.TrimSpace(block.Text); t != "" {
				texts = append(texts, t)
			}
		case "tool_use":
			args := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return Action{}, fmt.Errorf("failed to parse tool input for %s: %w", block.Name, err)
				}
			}
			action.Calls = append(action.Calls, conversation.ToolCall{ID: block.ID, Name: block.Name, Arguments: args})
		}
	}
	action.Text = strings.Join(texts, "\n\n")

	log.Debug().
		Str("stop_reason", string(message.StopReason)).
		Int("tool_calls", len(action.Calls)).
		Msg("Oracle proposed action")

	if action.Text == "" && len(action.Calls) == 0 {
		return Action{}, fmt.Errorf("empty response from anthropic")
	}
	return action, nil
}

func (a *Anthropic) Summarize(ctx context.Context, req Request, outcome Outcome) (string, error) {
	if a.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	history := append(req.History[:len(req.History):len(req.History)],
		conversation.InvocationMessage(outcome.Text, outcome.Call),
		outcome.Message(),
	)

	params := a.params(req, messages(history))
	if len(params.Tools) > 0 {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var texts []string
	for _, block := range message.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			texts = append(texts, strings.TrimSpace(block.Text))
		}
	}
	if len(texts) == 0 {
		return "", fmt.Errorf("no text content in anthropic response")
	}
	return strings.Join(texts, "\n\n"), nil
}

func (a *Anthropic) params(req Request, msgs []anthropic.MessageParam) anthropic.MessageNewParams {
	system := req.System
	for _, m := range req.History {
		if m.Role == conversation.RoleSystem && m.Content != "" {
			system += "\n\n" + m.Content
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.cfg.Model),
		MaxTokens:   a.cfg.MaxTokens,
		Messages:    msgs,
		Temperature: anthropic.Float(Temperature),
		Tools:       toolParams(req.Tools),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

func toolParams(defs []tools.Definition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: d.Properties,
				Required:   d.Required,
			},
		}})
	}
	return out
}

// messages maps history onto alternating user/assistant turns. Tool results
// travel as user content; consecutive entries with the same role are folded
// into one message.
func messages(history []conversation.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	var role anthropic.MessageParamRole
	var blocks []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(blocks) == 0 {
			return
		}
		if role == anthropic.MessageParamRoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
		blocks = nil
	}
	push := func(r anthropic.MessageParamRole, b ...anthropic.ContentBlockParamUnion) {
		if r != role {
			flush()
			role = r
		}
		blocks = append(blocks, b...)
	}

	for _, m := range history {
		switch m.Role {
		case conversation.RoleUser:
			if m.Content != "" {
				push(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(m.Content))
			}
		case conversation.RoleAssistant:
			var b []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				b = append(b, anthropic.NewTextBlock(m.Content))
			}
			if m.ToolCall != nil {
				args := m.ToolCall.Arguments
				if args == nil {
					args = map[string]any{}
				}
				b = append(b, anthropic.NewToolUseBlock(m.ToolCall.ID, args, m.ToolCall.Name))
			}
			if len(b) > 0 {
				push(anthropic.MessageParamRoleAssistant, b...)
			}
		case conversation.RoleTool:
			push(anthropic.MessageParamRoleUser, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, m.IsError))
		}
	}
	flush()
	return out
}
