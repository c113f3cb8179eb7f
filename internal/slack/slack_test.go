package slack

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ricardonunez-io/ranger/internal/fuzzy"
	"github.com/ricardonunez-io/ranger/internal/rca"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/tools"
)

func finding() rca.Finding {
	logs := tools.Success(telemetry.NewLogBatch(nil))
	return rca.Finding{
		Service:   "high-load-service",
		Metric:    "CPUUtilization",
		TimeRange: "last hour",
		Rule:      "cpu",
		Mean:      91.5,
		Threshold: 80,
		Stats:     telemetry.SeriesStats{Count: 3, Min: 85, Max: 97, Mean: 91.5, Latest: 92},
		Logs:      &logs,
		Patterns: []fuzzy.Pattern{
			{Template: "ErrorCode=DB_CONN_TIMEOUT", Count: 4, Samples: []string{"ErrorCode=DB_CONN_TIMEOUT UserID=101"}},
		},
	}
}

func TestSeverity(t *testing.T) {
	cases := []struct {
		mean float64
		want string
	}{
		{80, "low"},
		{82, "medium"},
		{86, "high"},
		{96, "critical"},
	}
	for _, c := range cases {
		f := rca.Finding{Mean: c.mean, Threshold: 80}
		if got := Severity(f); got != c.want {
			t.Errorf("Severity(%.0f): got %q, want %q", c.mean, got, c.want)
		}
	}
}

func TestLogsSection(t *testing.T) {
	f := finding()
	if got := logsSection(f); !strings.Contains(got, "4× `ErrorCode=DB_CONN_TIMEOUT UserID=101`") {
		t.Errorf("logsSection patterns: got %q", got)
	}

	f.Patterns = nil
	if got := logsSection(f); !strings.Contains(got, "none found") {
		t.Errorf("logsSection empty: got %q", got)
	}

	failed := tools.Failure("log group not found", "log_group_name", "/app/x")
	f.Logs = &failed
	if got := logsSection(f); !strings.Contains(got, "log group not found") {
		t.Errorf("logsSection failure: got %q", got)
	}

	f.Logs = nil
	if got := logsSection(f); got != "" {
		t.Errorf("logsSection without logs: got %q, want empty", got)
	}
}

func TestBlocks(t *testing.T) {
	blocks := Blocks(finding(), time.Date(2025, 5, 7, 12, 0, 0, 0, time.UTC))
	if len(blocks) != 5 {
		t.Fatalf("blocks: got %d, want 5", len(blocks))
	}
}

func TestNotify_PostsToChannel(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat.postMessage") {
			t.Errorf("path: got %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"channel":"C123","ts":"1715083200.000100"}`)
	}))
	defer srv.Close()

	n := NewNotifier(Config{BotToken: "xoxb-test", ChannelID: "C123", APIURL: srv.URL + "/"})
	if err := n.Notify(context.Background(), finding()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if form.Get("channel") != "C123" {
		t.Errorf("channel: got %q, want C123", form.Get("channel"))
	}
	if !strings.Contains(form.Get("blocks"), "high-load-service") {
		t.Errorf("blocks should mention the service: %q", form.Get("blocks"))
	}
}

func TestNotify_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":false,"error":"channel_not_found"}`)
	}))
	defer srv.Close()

	n := NewNotifier(Config{BotToken: "xoxb-test", ChannelID: "C404", APIURL: srv.URL + "/"})
	if err := n.Notify(context.Background(), finding()); err == nil {
		t.Fatal("expected error")
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{BotToken: "x"}).Enabled() {
		t.Error("config without channel should be disabled")
	}
	if !(Config{BotToken: "x", ChannelID: "C"}).Enabled() {
		t.Error("config with token and channel should be enabled")
	}
}
