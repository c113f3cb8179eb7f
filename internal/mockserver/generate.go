package mockserver

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/timerange"
)

const (
	MaxPoints    = 1000
	minLogEvents = 10
	maxLogEvents = 50
)

// Generator produces plausible metric and log data. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

type band struct {
	lo, hi float64
	places int
}

func (g *Generator) band(service, metric string) band {
	upper := strings.ToUpper(metric)
	switch {
	case strings.Contains(upper, "CPU"):
		if strings.Contains(service, "high-load-service") {
			return band{75, 95, 2}
		}
		if strings.Contains(service, "spiky-service") && g.rng.Float64() < 0.3 {
			return band{60, 90, 2}
		}
		return band{10, 40, 2}
	case strings.Contains(upper, "MEMORY"):
		return band{40, 75, 2}
	case strings.Contains(metric, "NetworkIn"), strings.Contains(metric, "NetworkOut"):
		return band{100000, 5000000, 0}
	case strings.Contains(metric, "Disk"):
		return band{10, 200, 0}
	case strings.Contains(metric, "DatabaseConnections"):
		return band{5, 50, 0}
	case strings.Contains(metric, "Invocations"):
		return band{100, 1000, 0}
	case strings.Contains(metric, "Errors"):
		return band{0, 5, 0}
	default:
		return band{0, 100, 2}
	}
}

// Metric emits one point per period from start through end inclusive, capped
// at MaxPoints. A non-positive period yields a single point.
func (g *Generator) Metric(service, metric string, start, end time.Time, period int) telemetry.MetricSeries {
	g.mu.Lock()
	defer g.mu.Unlock()

	series := telemetry.MetricSeries{Timestamps: []string{}, Values: []telemetry.Value{}, Label: metric}
	step := time.Duration(period) * time.Second
	for t := start; !t.After(end) && len(series.Timestamps) < MaxPoints; t = t.Add(step) {
		b := g.band(service, metric)
		series.Timestamps = append(series.Timestamps, timerange.FormatISO(t))
		series.Values = append(series.Values, telemetry.Number(round(g.uniform(b.lo, b.hi), b.places)))
		if step <= 0 {
			break
		}
	}
	return series
}

var (
	logLevels   = []string{"INFO", "WARN", "ERROR", "DEBUG"}
	errorCodes  = []string{"DB_CONN_TIMEOUT", "NULL_PTR_EX", "AUTH_FAILURE", "DISK_FULL"}
	warnTypes   = []string{"HighLatencyDetected", "QueueDepthApproachingLimit", "DeprecatedAPICall"}
	infoActions = []string{"UserLogin", "DataProcessed", "RequestReceived", "TaskCompleted"}
)

func pick[T any](rng *rand.Rand, xs []T) T {
	return xs[rng.IntN(len(xs))]
}

func shortName(group string) string {
	if i := strings.LastIndex(group, "/"); i >= 0 {
		group = group[i+1:]
	}
	group = strings.ReplaceAll(group, "-logs", "")
	return strings.ReplaceAll(group, "-log", "")
}

// matchesFilter treats " OR " as a disjunction of case-insensitive substring
// terms. An empty filter matches everything.
func matchesFilter(message, filter string) bool {
	if strings.TrimSpace(filter) == "" {
		return true
	}
	lower := strings.ToLower(message)
	for _, term := range strings.Split(filter, " OR ") {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Logs generates 10 to 50 candidate events in [startMs, endMs], keeps those
// matching filter, and returns at most limit of them in timestamp order.
func (g *Generator) Logs(group string, startMs, endMs int64, filter string, limit int) []telemetry.LogEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	service := shortName(group)
	n := minLogEvents + g.rng.IntN(maxLogEvents-minLogEvents+1)
	events := make([]telemetry.LogEvent, 0, n)

	for range n {
		ts := endMs
		if startMs <= endMs {
			ts = startMs + g.rng.Int64N(endMs-startMs+1)
		}
		level := pick(g.rng, logLevels)

		var b strings.Builder
		fmt.Fprintf(&b, "Timestamp=%d, Level=%s, Service=%s, TransactionID=%08x, UserID=%d, ",
			ts, level, service, g.rng.Uint32(), 100+g.rng.IntN(900))
		switch level {
		case "ERROR":
			fmt.Fprintf(&b, "Status=FAILED, ErrorCode=%s, Details: Critical error processing request.", pick(g.rng, errorCodes))
		case "WARN":
			fmt.Fprintf(&b, "Status=WARNING, WarningType=%s, Details: Potential issue identified.", pick(g.rng, warnTypes))
		case "INFO":
			fmt.Fprintf(&b, "Status=SUCCESS, Action=%s, Details: Operation completed as expected.", pick(g.rng, infoActions))
		default:
			fmt.Fprintf(&b, "Status=DEBUG, Details: Debugging information, variable_value=%d.", g.rng.IntN(1025))
		}

		msg := b.String()
		if !matchesFilter(msg, filter) {
			continue
		}
		events = append(events, telemetry.LogEvent{
			Timestamp:     ts,
			Message:       msg,
			IngestionTime: ts + 10 + g.rng.Int64N(91),
			LogStreamName: fmt.Sprintf("%s-stream-%s-%d", service, time.UnixMilli(ts).UTC().Format("2006-01-02-15"), 1+g.rng.IntN(3)),
		})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}
