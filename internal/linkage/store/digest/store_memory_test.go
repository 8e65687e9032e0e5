package digest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	_, err := store.Last(ctx)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.Error(t, store.Record(ctx, Record{}))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, Record{Digest: "abc", RunID: "run-1", RecordedAt: at}))
	require.NoError(t, store.Record(ctx, Record{Digest: "def", RunID: "run-2", RecordedAt: at.Add(time.Hour)}))

	rec, err := store.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, "def", rec.Digest)
	assert.Equal(t, "run-2", rec.RunID)
	assert.Equal(t, at.Add(time.Hour), rec.RecordedAt)
}
