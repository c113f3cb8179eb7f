package dialogue

import "github.com/ricardonunez-io/ranger/internal/tools"

// Reply is what a front end renders for a turn. Display is the primary tool
// payload (or its error payload) and is nil when no tool ran.
type Reply struct {
	Summary           string `json:"summary"`
	Display           any    `json:"display,omitempty"`
	Tool              string `json:"tool,omitempty"`
	RemediationScript string `json:"remediation_script,omitempty"`
}

func newReply(summary, toolName string, primary tools.Result) Reply {
	r := Reply{Summary: summary, Tool: toolName, Display: primary.Value}
	if !primary.OK() {
		r.Display = primary.Err
	}
	if toolName == tools.ScalingToolName {
		if s, ok := primary.Value.(tools.ScalingSuggestion); ok {
			r.RemediationScript = s.ScriptSuggestion
		}
	}
	return r
}
