package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	ev := RunEvent{
		Type:       TypeRunCompleted,
		RunID:      "run-1",
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Digest:     "abc",
		Summary:    &Summary{FactsRead: 3, LinkedSets: 1, Updated: 2},
	}

	rec, err := record("cpi.linkage.runs", ev)
	require.NoError(t, err)
	assert.Equal(t, "cpi.linkage.runs", rec.Topic)
	assert.Equal(t, []byte("run-1"), rec.Key)
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "run.completed", string(rec.Headers[0].Value))

	var decoded RunEvent
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, ev, decoded)
}

func TestRecordOmitsEmptyFields(t *testing.T) {
	rec, err := record("t", RunEvent{Type: TypeRunStarted, RunID: "r"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Value, &raw))
	assert.NotContains(t, raw, "summary")
	assert.NotContains(t, raw, "error")
	assert.NotContains(t, raw, "digest")
}

func TestInMemoryPublisher(t *testing.T) {
	p := NewInMemoryPublisher()
	require.NoError(t, p.Publish(context.Background(), RunEvent{Type: TypeRunStarted}))
	require.NoError(t, p.Publish(context.Background(), RunEvent{Type: TypeRunFailed, Error: "boom"}))

	assert.Equal(t, []Type{TypeRunStarted, TypeRunFailed}, p.Types())
	assert.Equal(t, "boom", p.Events()[1].Error)
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), RunEvent{}))
}
