package render

import (
	"strings"
	"testing"

	"github.com/ricardonunez-io/ranger/internal/dialogue"
	"github.com/ricardonunez-io/ranger/internal/inventory"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/tools"
)

func TestSparkline(t *testing.T) {
	got := Sparkline([]telemetry.Value{telemetry.Number(0), telemetry.Number(50), {}, telemetry.Number(100)})
	if got != "▁▄ █" {
		t.Errorf("Sparkline: got %q, want %q", got, "▁▄ █")
	}
	if got := Sparkline([]telemetry.Value{telemetry.Number(5), telemetry.Number(5)}); got != "▁▁" {
		t.Errorf("Sparkline flat: got %q", got)
	}
}

func TestSeries(t *testing.T) {
	s := telemetry.MetricSeries{
		Timestamps: []string{"2025-05-07T11:00:00Z", "2025-05-07T11:05:00Z"},
		Values:     []telemetry.Value{telemetry.Number(88), {}},
		Label:      "CPUUtilization (Average)",
	}
	out := Series(s)
	for _, want := range []string{"CPUUtilization (Average)", "88.00", "n/a", "mean=88.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Series output missing %q:\n%s", want, out)
		}
	}

	empty := Series(telemetry.MetricSeries{Label: "CPUUtilization (Average) - No data"})
	if !strings.Contains(empty, "No data") {
		t.Errorf("empty series: got %q", empty)
	}
}

func TestLogs(t *testing.T) {
	b := telemetry.NewLogBatch([]telemetry.LogEvent{
		{Timestamp: 1746615600000, Message: "Level=ERROR, ErrorCode=DISK_FULL", LogStreamName: "svc-stream-1"},
	})
	out := Logs(b)
	for _, want := range []string{"2025-05-07 11:00:00", "svc-stream-1", "DISK_FULL"} {
		if !strings.Contains(out, want) {
			t.Errorf("Logs output missing %q:\n%s", want, out)
		}
	}
	if got := Logs(telemetry.NewLogBatch(nil)); !strings.Contains(got, "No log events") {
		t.Errorf("empty logs: got %q", got)
	}
}

func TestReply(t *testing.T) {
	out := Reply(dialogue.Reply{
		Summary:           "Consider scaling up.",
		Display:           tools.ScalingSuggestion{SuggestionText: "High CPU", ScriptSuggestion: "aws autoscaling ..."},
		Tool:              tools.ScalingToolName,
		RemediationScript: "aws autoscaling set-desired-capacity",
	})
	for _, want := range []string{"Consider scaling up.", "Remediation script", "aws autoscaling set-desired-capacity", "tool: SuggestScalingAction"} {
		if !strings.Contains(out, want) {
			t.Errorf("Reply output missing %q:\n%s", want, out)
		}
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(&tools.ErrorPayload{Message: "log group not found"}); !strings.Contains(got, "log group not found") {
		t.Errorf("error payload: got %q", got)
	}
	listing := tools.ServiceListing{ServicesList: inventory.FilterRunning("RDS", "")}
	if got := Display(listing); !strings.Contains(got, "rds-database-Z") {
		t.Errorf("services: got %q", got)
	}
	if got := Display(tools.NodeCountReply{NodeCountText: "x"}); got != "" {
		t.Errorf("text payloads render through the summary: got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate: got %q, want abc…", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate short: got %q", got)
	}
}
