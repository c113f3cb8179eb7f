// Package render turns turn replies into terminal text.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ricardonunez-io/ranger/internal/dialogue"
	"github.com/ricardonunez-io/ranger/internal/telemetry"
	"github.com/ricardonunez-io/ranger/internal/tools"
)

const (
	maxSeriesRows  = 20
	maxLogRows     = 15
	maxMessageCols = 100
)

var (
	summaryStyle = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	scriptStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func Reply(r dialogue.Reply) string {
	var parts []string
	if r.Summary != "" {
		parts = append(parts, summaryStyle.Render(r.Summary))
	}
	if body := Display(r.Display); body != "" {
		parts = append(parts, body)
	}
	if r.RemediationScript != "" {
		parts = append(parts, labelStyle.Render("Remediation script (review before running):"))
		parts = append(parts, scriptStyle.Render(r.RemediationScript))
	}
	if r.Tool != "" {
		parts = append(parts, mutedStyle.Render("tool: "+r.Tool))
	}
	return strings.Join(parts, "\n\n")
}

// Display renders the payloads the tools produce. Text-only payloads are
// left to the summary.
func Display(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case *tools.ErrorPayload:
		return errorStyle.Render("error: " + d.Message)
	case telemetry.MetricSeries:
		return Series(d)
	case telemetry.LogBatch:
		return Logs(d)
	case tools.ServiceListing:
		return Services(d)
	default:
		return ""
	}
}

func Series(s telemetry.MetricSeries) string {
	if s.Empty() {
		return mutedStyle.Render(s.Label)
	}

	st := s.Stats()
	header := fmt.Sprintf("%s  %s", labelStyle.Render(s.Label), Sparkline(s.Values))
	stats := mutedStyle.Render(fmt.Sprintf("n=%d  min=%.2f  max=%.2f  mean=%.2f  latest=%.2f", st.Count, st.Min, st.Max, st.Mean, st.Latest))

	start := max(0, len(s.Values)-maxSeriesRows)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Timestamp", "Value")
	for i := start; i < len(s.Values); i++ {
		t.Row(s.Timestamps[i], formatValue(s.Values[i]))
	}

	out := []string{header, stats, t.String()}
	if start > 0 {
		out = append(out, mutedStyle.Render(fmt.Sprintf("(%d earlier points not shown)", start)))
	}
	return strings.Join(out, "\n")
}

func Logs(b telemetry.LogBatch) string {
	if len(b.Events) == 0 {
		return mutedStyle.Render("No log events found.")
	}

	start := max(0, len(b.Events)-maxLogRows)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Time (UTC)", "Stream", "Message")
	for _, e := range b.Events[start:] {
		t.Row(time.UnixMilli(e.Timestamp).UTC().Format("2006-01-02 15:04:05"), e.LogStreamName, truncate(e.Message, maxMessageCols))
	}

	out := t.String()
	if start > 0 {
		out += "\n" + mutedStyle.Render(fmt.Sprintf("(%d earlier events not shown)", start))
	}
	return out
}

func Services(l tools.ServiceListing) string {
	if len(l.ServicesList) == 0 {
		return ""
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Service", "Type", "Application")
	for _, s := range l.ServicesList {
		t.Row(s.Name, s.Type, s.AppGroup)
	}
	return t.String()
}

var sparks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws numeric values on an eight-level scale. Non-numeric
// values are drawn as spaces.
func Sparkline(values []telemetry.Value) string {
	lo, hi, seen := 0.0, 0.0, false
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if !seen || v.Float < lo {
			lo = v.Float
		}
		if !seen || v.Float > hi {
			hi = v.Float
		}
		seen = true
	}

	var b strings.Builder
	for _, v := range values {
		if !v.Valid {
			b.WriteRune(' ')
			continue
		}
		idx := 0
		if hi > lo {
			idx = int((v.Float - lo) / (hi - lo) * float64(len(sparks)-1))
		}
		b.WriteRune(sparks[idx])
	}
	return b.String()
}

func formatValue(v telemetry.Value) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.Float)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
