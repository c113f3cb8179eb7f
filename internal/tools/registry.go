// Package tools is the fixed catalog of operations the oracle may invoke.
// Every tool validates its arguments against a reflected schema and reports
// failures as data so a conversation can always continue.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/rs/zerolog/log"
)

type Tool interface {
	Kind() Kind
	Definition() Definition
	Invoke(ctx context.Context, args map[string]any) Result
}

type Deps struct {
	Source telemetry.Source
	Clock  func() time.Time
	Intn   func(n int) int
}

func (d Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

func (d Deps) intn(n int) int {
	if d.Intn != nil {
		return d.Intn(n)
	}
	return rand.IntN(n)
}

type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

func NewRegistry(d Deps) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(Kinds))}
	for _, k := range Kinds {
		t := build(k, d)
		r.tools = append(r.tools, t)
		r.byName[k.String()] = t
	}
	return r
}

func build(k Kind, d Deps) Tool {
	switch k {
	case Metric:
		return newTool(k, metricDescription, defaultMetricArgs, d.fetchMetric)
	case Logs:
		return newTool(k, logsDescription, defaultLogsArgs, d.fetchLogs)
	case Scaling:
		return newTool(k, scalingDescription, ScalingArgs{}, suggestScaling)
	case Workload:
		return newTool(k, workloadDescription, WorkloadArgs{}, workloadOverview)
	case Services:
		return newTool(k, servicesDescription, ServicesArgs{}, listRunningServices)
	case NodeCount:
		return newTool(k, nodeCountDescription, NodeCountArgs{}, d.clusterNodeCount)
	default:
		panic(fmt.Sprintf("tools: no constructor for %s", k))
	}
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, len(r.tools))
	for i, t := range r.tools {
		defs[i] = t.Definition()
	}
	return defs
}

// tool adapts a typed function into the uniform Tool interface. Arguments are
// checked for required keys, layered over declared defaults, then decoded.
type tool[In any] struct {
	kind       Kind
	defaults   In
	definition Definition
	run        func(ctx context.Context, in In) Result
}

func newTool[In any](kind Kind, description string, defaults In, run func(context.Context, In) Result) *tool[In] {
	s := reflectSchema(new(In))
	return &tool[In]{
		kind:     kind,
		defaults: defaults,
		definition: Definition{
			Name:        kind.String(),
			Description: description,
			Properties:  properties(s),
			Required:    append([]string{}, s.Required...),
		},
		run: run,
	}
}

func (t *tool[In]) Kind() Kind             { return t.kind }
func (t *tool[In]) Definition() Definition { return t.definition }

func (t *tool[In]) Invoke(ctx context.Context, args map[string]any) Result {
	name := t.kind.String()

	if missing := t.missing(args); len(missing) > 0 {
		log.Warn().Str("tool", name).Strs("missing", missing).Msg("Tool invoked without required arguments")
		return Failure(fmt.Sprintf("missing required argument(s) for %s: %s", name, strings.Join(missing, ", ")), "tool", name)
	}

	in := t.defaults
	raw, err := json.Marshal(args)
	if err == nil {
		err = json.Unmarshal(raw, &in)
	}
	if err != nil {
		return Failure(fmt.Sprintf("invalid arguments for %s: %v", name, err), "tool", name)
	}

	log.Info().Str("tool", name).Interface("args", args).Msg("Invoking tool")
	return t.run(ctx, in)
}

func (t *tool[In]) missing(args map[string]any) []string {
	var missing []string
	for _, key := range t.definition.Required {
		v, ok := args[key]
		if !ok || v == nil {
			missing = append(missing, key)
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}
