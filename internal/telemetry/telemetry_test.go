package telemetry

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_DecodesNonNumericAsInvalid(t *testing.T) {
	var s MetricSeries
	body := `{"Timestamps":["a","b","c","d"],"Values":[88,null,"n/a",92.5],"Label":"CPUUtilization"}`
	require.NoError(t, json.Unmarshal([]byte(body), &s))

	require.Len(t, s.Values, 4)
	assert.True(t, s.Values[0].Valid)
	assert.False(t, s.Values[1].Valid)
	assert.False(t, s.Values[2].Valid)
	assert.Equal(t, 92.5, s.Values[3].Float)

	out, err := json.Marshal(s.Values)
	require.NoError(t, err)
	assert.JSONEq(t, `[88,null,"n/a",92.5]`, string(out))
}

func TestNumber_RejectsNaN(t *testing.T) {
	assert.False(t, Number(math.NaN()).Valid)
	assert.False(t, Number(math.Inf(1)).Valid)
	assert.True(t, Number(0).Valid)
}

func TestStats_IgnoresNonNumeric(t *testing.T) {
	s := MetricSeries{
		Timestamps: []string{"a", "b", "c"},
		Values:     []Value{Number(80), {}, Number(90)},
	}
	st := s.Stats()
	assert.Equal(t, 2, st.Count)
	assert.Equal(t, 85.0, st.Mean)
	assert.Equal(t, 80.0, st.Min)
	assert.Equal(t, 90.0, st.Max)
	assert.Equal(t, 90.0, st.Latest)
}

func TestNormalize_EmptySeries(t *testing.T) {
	s, err := MetricSeries{}.Normalize("CPUUtilization", "Average")
	require.NoError(t, err)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Timestamps":[],"Values":[],"Label":"CPUUtilization (Average) - No data"}`, string(out))
	assert.Zero(t, s.Stats().Count)
}

func TestNormalize_LengthMismatch(t *testing.T) {
	_, err := MetricSeries{Timestamps: []string{"a"}}.Normalize("CPUUtilization", "Average")
	assert.Error(t, err)
}

func TestNormalize_KeepsBackendLabel(t *testing.T) {
	s, err := MetricSeries{Timestamps: []string{"a"}, Values: []Value{Number(1)}, Label: "custom"}.Normalize("m", "Sum")
	require.NoError(t, err)
	assert.Equal(t, "custom", s.Label)

	s, err = MetricSeries{Timestamps: []string{"a"}, Values: []Value{Number(1)}}.Normalize("m", "Sum")
	require.NoError(t, err)
	assert.Equal(t, "m (Sum)", s.Label)
}

func TestNewLogBatch_SortsAndClamps(t *testing.T) {
	b := NewLogBatch([]LogEvent{
		{Timestamp: 300, IngestionTime: 310, Message: "c"},
		{Timestamp: 100, IngestionTime: 50, Message: "a"},
		{Timestamp: 200, IngestionTime: 250, Message: ""},
	})
	require.Len(t, b.Events, 3)
	assert.Equal(t, int64(100), b.Events[0].Timestamp)
	assert.Equal(t, int64(100), b.Events[0].IngestionTime)
	assert.Equal(t, int64(300), b.Events[2].Timestamp)
	assert.Equal(t, []string{"a", "c"}, b.Messages())
}

func TestNewLogBatch_NeverNull(t *testing.T) {
	out, err := json.Marshal(NewLogBatch(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[]}`, string(out))
}

func TestValidBackends(t *testing.T) {
	assert.True(t, ValidBackends.Includes("mock"))
	assert.True(t, ValidBackends.Includes("CloudWatch"))
	assert.True(t, ValidBackends.Includes("DATADOG"))
	assert.False(t, ValidBackends.Includes("prometheus"))
	assert.False(t, ValidBackends.Includes(""))
}
