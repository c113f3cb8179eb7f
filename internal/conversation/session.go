// Package conversation holds per-session chat history.
package conversation

import (
	"sync"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Message is one history entry. An assistant message with a ToolCall is an
// invocation request; a tool message answers the call named by ToolCallID.
type Message struct {
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	ToolCall   *ToolCall `json:"tool_call,omitempty"`
	ToolCallID string    `json:"tool_call_id,omitempty"`
	IsError    bool      `json:"is_error,omitempty"`
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

func InvocationMessage(text string, call ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCall: &call}
}

func ToolResultMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// ToolErrorMessage answers a call whose tool reported a failure.
func ToolErrorMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, IsError: true}
}

// Session is an append-only history plus a guard that admits one turn at a
// time.
type Session struct {
	ID string

	mu       sync.Mutex
	messages []Message
	turn     sync.Mutex
}

func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

func (s *Session) Append(msgs ...Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msgs...)
}

// Messages returns a copy of the history.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// TryBegin reports whether a new turn may start. Every successful TryBegin
// must be paired with End.
func (s *Session) TryBegin() bool {
	return s.turn.TryLock()
}

func (s *Session) End() {
	s.turn.Unlock()
}
