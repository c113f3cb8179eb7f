package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Value is a nullable sample. Anything that is not a finite JSON number
// decodes as non-numeric and is skipped by Stats.
type Value struct {
	Float float64
	Valid bool
	raw   json.RawMessage
}

func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Valid {
		return json.Marshal(v.Float)
	}
	if len(v.raw) > 0 {
		return v.raw, nil
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		*v = Number(f)
		return nil
	}
	*v = Value{raw: append(json.RawMessage(nil), trimmed...)}
	return nil
}

type MetricSeries struct {
	Timestamps []string `json:"Timestamps"`
	Values     []Value  `json:"Values"`
	Label      string   `json:"Label"`
}

// Normalize enforces the series invariants: both sequences non-nil and of
// equal length, and an explicit "No data" label for empty results.
func (s MetricSeries) Normalize(metric, statistic string) (MetricSeries, error) {
	if len(s.Timestamps) != len(s.Values) {
		return MetricSeries{}, fmt.Errorf("metric series for %s has %d timestamps but %d values", metric, len(s.Timestamps), len(s.Values))
	}
	if s.Timestamps == nil {
		s.Timestamps = []string{}
	}
	if s.Values == nil {
		s.Values = []Value{}
	}
	base := metric
	if statistic != "" {
		base = fmt.Sprintf("%s (%s)", metric, statistic)
	}
	if len(s.Values) == 0 {
		s.Label = base + " - No data"
	} else if s.Label == "" {
		s.Label = base
	}
	return s, nil
}

func (s MetricSeries) Empty() bool {
	return len(s.Values) == 0
}

type SeriesStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Latest float64 `json:"latest"`
}

// Stats summarizes the numeric samples only. Count is zero when the series
// holds no numeric values.
func (s MetricSeries) Stats() SeriesStats {
	var st SeriesStats
	sum := 0.0
	for _, v := range s.Values {
		if !v.Valid {
			continue
		}
		if st.Count == 0 || v.Float < st.Min {
			st.Min = v.Float
		}
		if st.Count == 0 || v.Float > st.Max {
			st.Max = v.Float
		}
		sum += v.Float
		st.Latest = v.Float
		st.Count++
	}
	if st.Count > 0 {
		st.Mean = sum / float64(st.Count)
	}
	return st
}
