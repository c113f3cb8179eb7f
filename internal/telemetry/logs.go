package telemetry

import "sort"

type LogEvent struct {
	Timestamp     int64  `json:"timestamp"`
	Message       string `json:"message"`
	IngestionTime int64  `json:"ingestionTime"`
	LogStreamName string `json:"logStreamName"`
}

type LogBatch struct {
	Events []LogEvent `json:"events"`
}

// NewLogBatch sorts events ascending by timestamp and clamps ingestion times
// that precede their event.
func NewLogBatch(events []LogEvent) LogBatch {
	out := make([]LogEvent, len(events))
	copy(out, events)
	for i := range out {
		if out[i].IngestionTime < out[i].Timestamp {
			out[i].IngestionTime = out[i].Timestamp
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return LogBatch{Events: out}
}

func (b LogBatch) Messages() []string {
	msgs := make([]string, 0, len(b.Events))
	for _, e := range b.Events {
		if e.Message != "" {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}
