// Package fuzzy clusters log events into recurring error patterns.
package fuzzy

import (
	"sort"

	"github.com/ricardonunez-io/ranger/internal/telemetry"
)

type Pattern struct {
	Template  string   `json:"template"`
	Count     int      `json:"count"`
	Samples   []string `json:"samples"`
	FirstSeen int64    `json:"first_seen"`
	LastSeen  int64    `json:"last_seen"`
	Streams   []string `json:"log_streams,omitempty"`
}

// DefaultSimilarityThreshold keeps messages that differ only in an error
// code apart while merging templates that differ by a character or two.
const DefaultSimilarityThreshold = 0.95

const (
	maxSamplesPerPattern = 3
	maxStreamsPerPattern = 5
)

func Group(events []telemetry.LogEvent) []Pattern {
	return GroupWithThreshold(events, DefaultSimilarityThreshold)
}

// GroupWithThreshold buckets events by normalized template, then merges
// buckets whose templates are at least threshold similar. Patterns are
// ordered by count, then by first occurrence.
func GroupWithThreshold(events []telemetry.LogEvent, threshold float64) []Pattern {
	var buckets []*Pattern
	byTemplate := make(map[string]*Pattern)

	for _, e := range events {
		tmpl := Normalize(e.Message)
		p, ok := byTemplate[tmpl]
		if !ok {
			p = &Pattern{Template: tmpl, FirstSeen: e.Timestamp, LastSeen: e.Timestamp}
			byTemplate[tmpl] = p
			buckets = append(buckets, p)
		}
		p.add(e)
	}

	merged := merge(buckets, threshold)

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Count != merged[j].Count {
			return merged[i].Count > merged[j].Count
		}
		return merged[i].FirstSeen < merged[j].FirstSeen
	})
	return merged
}

func (p *Pattern) add(e telemetry.LogEvent) {
	p.Count++
	if len(p.Samples) < maxSamplesPerPattern {
		p.Samples = append(p.Samples, e.Message)
	}
	p.FirstSeen = min(p.FirstSeen, e.Timestamp)
	p.LastSeen = max(p.LastSeen, e.Timestamp)
	p.addStream(e.LogStreamName)
}

func (p *Pattern) addStream(stream string) {
	if stream == "" || len(p.Streams) >= maxStreamsPerPattern {
		return
	}
	for _, s := range p.Streams {
		if s == stream {
			return
		}
	}
	p.Streams = append(p.Streams, stream)
}

func (p *Pattern) absorb(o *Pattern) {
	p.Count += o.Count
	for _, s := range o.Samples {
		if len(p.Samples) < maxSamplesPerPattern {
			p.Samples = append(p.Samples, s)
		}
	}
	for _, s := range o.Streams {
		p.addStream(s)
	}
	p.FirstSeen = min(p.FirstSeen, o.FirstSeen)
	p.LastSeen = max(p.LastSeen, o.LastSeen)
}

func merge(buckets []*Pattern, threshold float64) []Pattern {
	absorbed := make([]bool, len(buckets))
	for i := range buckets {
		if absorbed[i] {
			continue
		}
		for j := i + 1; j < len(buckets); j++ {
			if absorbed[j] {
				continue
			}
			if similarity(buckets[i].Template, buckets[j].Template) >= threshold {
				buckets[i].absorb(buckets[j])
				absorbed[j] = true
			}
		}
	}

	out := make([]Pattern, 0, len(buckets))
	for i, b := range buckets {
		if !absorbed[i] {
			out = append(out, *b)
		}
	}
	return out
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(longest)
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}
