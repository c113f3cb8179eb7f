// Package oracle is the language-model side of a turn: propose an action for
// the conversation so far, then summarize the outcome of that action.
package oracle

import (
	"context"
	"errors"

	"github.com/ricardonunez-io/ranger/internal/conversation"
	"github.com/ricardonunez-io/ranger/internal/tools"
)

var ErrNotConfigured = errors.New("oracle is not configured: ANTHROPIC_API_KEY is not set")

// Request carries everything the oracle sees. History already ends with the
// user message for the current turn.
type Request struct {
	System  string
	History []conversation.Message
	Tools   []tools.Definition
}

// Action is either plain text or one or more tool calls, possibly with
// accompanying text.
type Action struct {
	Text  string
	Calls []conversation.ToolCall
}

func (a Action) WantsTool() bool { return len(a.Calls) > 0 }

// Outcome is the result of executing an Action's tool call. Content is the
// serialized tool payload; Failed marks a primary result that is an error
// payload.
type Outcome struct {
	Text    string
	Call    conversation.ToolCall
	Content string
	Failed  bool
}

// Message is the history entry that answers the outcome's call.
func (o Outcome) Message() conversation.Message {
	if o.Failed {
		return conversation.ToolErrorMessage(o.Call.ID, o.Content)
	}
	return conversation.ToolResultMessage(o.Call.ID, o.Content)
}

type Oracle interface {
	ProposeAction(ctx context.Context, req Request) (Action, error)
	Summarize(ctx context.Context, req Request, outcome Outcome) (string, error)
}
