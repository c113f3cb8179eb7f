package timerange

import (
	"fmt"
	"strings"
	"time"
)

type Phrase string

const (
	LastHour      Phrase = "LAST_HOUR"
	Last30Minutes Phrase = "LAST_30_MINUTES"
	Last15Minutes Phrase = "LAST_15_MINUTES"
	Last3Hours    Phrase = "LAST_3_HOURS"
	Last6Hours    Phrase = "LAST_6_HOURS"
	Last12Hours   Phrase = "LAST_12_HOURS"
	Last24Hours   Phrase = "LAST_24_HOURS"
	Today         Phrase = "TODAY"
	Yesterday     Phrase = "YESTERDAY"
)

const DefaultPhrase = "last hour"

type rule struct {
	phrase  Phrase
	matches []string
	window  func(now time.Time) (time.Time, time.Time)
}

func trailing(d time.Duration) func(time.Time) (time.Time, time.Time) {
	return func(now time.Time) (time.Time, time.Time) {
		return now.Add(-d), now
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Order matters: the first rule whose substring appears in the phrase wins.
var rules = []rule{
	{LastHour, []string{"last hour", "past hour"}, trailing(time.Hour)},
	{Last30Minutes, []string{"last 30 minutes"}, trailing(30 * time.Minute)},
	{Last15Minutes, []string{"last 15 minutes"}, trailing(15 * time.Minute)},
	{Last3Hours, []string{"last 3 hours"}, trailing(3 * time.Hour)},
	{Last6Hours, []string{"last 6 hours"}, trailing(6 * time.Hour)},
	{Last12Hours, []string{"last 12 hours"}, trailing(12 * time.Hour)},
	{Last24Hours, []string{"last 24 hours", "past day"}, trailing(24 * time.Hour)},
	{Today, []string{"today"}, func(now time.Time) (time.Time, time.Time) {
		return midnight(now), now
	}},
	{Yesterday, []string{"yesterday"}, func(now time.Time) (time.Time, time.Time) {
		end := midnight(now)
		return end.Add(-24 * time.Hour), end
	}},
}

// Range is a resolved UTC window. Fallback is set when the phrase matched no
// rule and the window defaulted to the last hour.
type Range struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Phrase   Phrase    `json:"phrase"`
	Fallback bool      `json:"fallback,omitempty"`
	Warning  string    `json:"warning,omitempty"`
}

func Resolve(phrase string, now time.Time) Range {
	now = now.UTC()
	lower := strings.ToLower(phrase)

	for _, r := range rules {
		for _, m := range r.matches {
			if strings.Contains(lower, m) {
				start, end := r.window(now)
				return Range{Start: start, End: end, Phrase: r.phrase}
			}
		}
	}

	start, end := trailing(time.Hour)(now)
	return Range{
		Start:    start,
		End:      end,
		Phrase:   LastHour,
		Fallback: true,
		Warning:  fmt.Sprintf("could not parse time range %q, defaulting to last hour", phrase),
	}
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

func (r Range) StartMillis() int64 { return r.Start.UnixMilli() }
func (r Range) EndMillis() int64   { return r.End.UnixMilli() }

func (r Range) ISOStart() string { return FormatISO(r.Start) }
func (r Range) ISOEnd() string   { return FormatISO(r.End) }

func FormatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
