package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Definition is what the oracle sees of a tool: its name, what it is for and
// the JSON schema of its arguments.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Properties  map[string]any `json:"properties"`
	Required    []string       `json:"required"`
}

func reflectSchema(v any) *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	return r.Reflect(v)
}

func properties(s *jsonschema.Schema) map[string]any {
	b, _ := json.Marshal(s)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	props, _ := m["properties"].(map[string]any)
	if props == nil {
		props = map[string]any{}
	}
	return props
}
