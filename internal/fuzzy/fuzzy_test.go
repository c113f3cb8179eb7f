package fuzzy

import (
	"testing"

	"github.com/ricardonunez-io/ranger/internal/telemetry"
)

func events(msgs ...string) []telemetry.LogEvent {
	out := make([]telemetry.LogEvent, len(msgs))
	for i, m := range msgs {
		out[i] = telemetry.LogEvent{Timestamp: int64(1000 * (i + 1)), Message: m, LogStreamName: "svc-stream-1"}
	}
	return out
}

func TestNormalize_UUIDs(t *testing.T) {
	got := Normalize("Failed to process request 550e8400-e29b-41d4-a716-446655440000")
	want := "Failed to process request <UUID>"
	if got != want {
		t.Errorf("Normalize UUID:\ngot  %q\nwant %q", got, want)
	}
}

func TestNormalize_IPs(t *testing.T) {
	got := Normalize("Connection from 192.168.1.1:8080 refused")
	want := "Connection from <IP> refused"
	if got != want {
		t.Errorf("Normalize IP:\ngot  %q\nwant %q", got, want)
	}
}

func TestNormalize_KeyValueLog(t *testing.T) {
	got := Normalize("Timestamp=1746619200000, Level=ERROR, Service=ecs-service-X, TransactionID=1a2b3c4d, UserID=512, Status=FAILED, ErrorCode=DISK_FULL")
	want := "Timestamp=<NUM>, Level=ERROR, Service=ecs-service-X, TransactionID=<ID>, UserID=<NUM>, Status=FAILED, ErrorCode=DISK_FULL"
	if got != want {
		t.Errorf("Normalize key/value:\ngot  %q\nwant %q", got, want)
	}
}

func TestNormalize_Timestamps(t *testing.T) {
	input := "Event at 2024-01-15T10:30:00Z was processed"
	if got := Normalize(input); got != "Event at <TIMESTAMP> was processed" {
		t.Errorf("Normalize timestamp: got %q", got)
	}
}

func TestNormalize_EmptyString(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Errorf("Normalize empty: got %q, want empty", got)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"abc", "abc", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abd", 1},
		{"abc", "abcd", 1},
	}
	for _, c := range cases {
		if d := levenshtein(c.a, c.b); d != c.want {
			t.Errorf("levenshtein(%q, %q): got %d, want %d", c.a, c.b, d, c.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if s := similarity("hello", "hello"); s != 1.0 {
		t.Errorf("similarity identical: got %f, want 1.0", s)
	}
	if s := similarity("abc", "xyz"); s >= 0.5 {
		t.Errorf("similarity different: got %f, want < 0.5", s)
	}
}

func TestGroup_NormalizedRepeats(t *testing.T) {
	patterns := Group(events(
		"ERROR TransactionID=aa11bb22 UserID=101 ErrorCode=DB_CONN_TIMEOUT",
		"ERROR TransactionID=cc33dd44 UserID=202 ErrorCode=DB_CONN_TIMEOUT",
		"ERROR TransactionID=ee55ff66 UserID=303 ErrorCode=DB_CONN_TIMEOUT",
	))
	if len(patterns) != 1 {
		t.Fatalf("Group: got %d patterns, want 1", len(patterns))
	}
	p := patterns[0]
	if p.Count != 3 {
		t.Errorf("count: got %d, want 3", p.Count)
	}
	if p.FirstSeen != 1000 || p.LastSeen != 3000 {
		t.Errorf("seen: got [%d, %d], want [1000, 3000]", p.FirstSeen, p.LastSeen)
	}
	if len(p.Streams) != 1 {
		t.Errorf("streams: got %v, want one stream", p.Streams)
	}
}

func TestGroup_ErrorCodesStayApart(t *testing.T) {
	patterns := Group(events(
		"Level=ERROR, Status=FAILED, ErrorCode=DB_CONN_TIMEOUT, Details: Critical error processing request.",
		"Level=ERROR, Status=FAILED, ErrorCode=DISK_FULL, Details: Critical error processing request.",
		"Level=ERROR, Status=FAILED, ErrorCode=DISK_FULL, Details: Critical error processing request.",
	))
	if len(patterns) != 2 {
		t.Fatalf("Group: got %d patterns, want 2", len(patterns))
	}
	if patterns[0].Count != 2 {
		t.Errorf("most frequent first: got count %d, want 2", patterns[0].Count)
	}
}

func TestGroup_OrderIsDeterministic(t *testing.T) {
	in := events("alpha failure", "beta warning issued", "gamma notice posted")
	for range 5 {
		patterns := GroupWithThreshold(in, 0.99)
		if len(patterns) != 3 || patterns[0].Template != "alpha failure" || patterns[2].Template != "gamma notice posted" {
			t.Fatalf("order: got %+v", patterns)
		}
	}
}

func TestGroup_Empty(t *testing.T) {
	if patterns := Group(nil); len(patterns) != 0 {
		t.Errorf("Group empty: got %d patterns, want 0", len(patterns))
	}
}

func TestGroup_SamplesLimited(t *testing.T) {
	msgs := make([]string, 100)
	for i := range msgs {
		msgs[i] = "Identical error message"
	}
	patterns := Group(events(msgs...))
	if len(patterns) != 1 {
		t.Fatalf("Group samples: got %d patterns, want 1", len(patterns))
	}
	if len(patterns[0].Samples) > maxSamplesPerPattern {
		t.Errorf("Group samples: got %d samples, want <= %d", len(patterns[0].Samples), maxSamplesPerPattern)
	}
}

func TestGroupWithThreshold_LowThresholdMerges(t *testing.T) {
	patterns := GroupWithThreshold(events("Error processing order for Alice", "Error processing order for Bob"), 0.7)
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(patterns))
	}
	if patterns[0].Count != 2 {
		t.Errorf("count: got %d, want 2", patterns[0].Count)
	}
}
