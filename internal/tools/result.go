package tools

import "encoding/json"

// ErrorPayload is the data form of a tool failure. It serializes as
// {"error": Message, Field: Value} so the oracle can see what failed.
type ErrorPayload struct {
	Message string
	Field   string
	Value   string
}

func (e ErrorPayload) Error() string { return e.Message }

func (e ErrorPayload) MarshalJSON() ([]byte, error) {
	m := map[string]string{"error": e.Message}
	if e.Field != "" {
		m[e.Field] = e.Value
	}
	return json.Marshal(m)
}

// Result holds exactly one of a success value or an error payload. Warnings
// are surfaced next to the result, never inside it.
type Result struct {
	Value    any
	Err      *ErrorPayload
	Warnings []string
}

func Success(v any) Result {
	return Result{Value: v}
}

func Failure(message, field, value string) Result {
	return Result{Err: &ErrorPayload{Message: message, Field: field, Value: value}}
}

func (r Result) OK() bool { return r.Err == nil }

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(r.Err)
	}
	return json.Marshal(r.Value)
}
