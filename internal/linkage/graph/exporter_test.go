package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
)

func TestParticipantRows(t *testing.T) {
	alias := "P1::KF, P2::COG"
	rows := participantRows(models.Plan{Instructions: []models.Instruction{
		{Key: "P1::KF", Alias: &alias},
		{Key: "P3::TARGET"},
	}})

	require.Len(t, rows, 2)
	assert.Equal(t, map[string]any{
		"key":            "P1::KF",
		"participant_id": "P1",
		"domain_name":    "KF",
		"alias":          alias,
	}, rows[0])
	assert.Nil(t, rows[1]["alias"])
	assert.Equal(t, "TARGET", rows[1]["domain_name"])
}

func TestMappingRows(t *testing.T) {
	rows := mappingRows([]models.RawFact{
		{ParticipantIDA: "P2", DomainA: "COG", ParticipantIDB: "P1", DomainB: "KF"},
		{ParticipantIDA: "P1", DomainA: "KF", ParticipantIDB: "P2", DomainB: "COG"},
		{ParticipantIDA: "P1", DomainA: "KF", ParticipantIDB: "P1", DomainB: "KF"},
		{ParticipantIDA: "", DomainA: "KF", ParticipantIDB: "P1", DomainB: "KF"},
		{ParticipantIDA: "P3", DomainA: "TARGET", ParticipantIDB: "P1", DomainB: "KF"},
	})

	assert.Equal(t, []map[string]any{
		{"a": "P1::KF", "b": "P2::COG"},
		{"a": "P1::KF", "b": "P3::TARGET"},
	}, rows)
}

func TestChunk(t *testing.T) {
	rows := make([]map[string]any, 5)
	batches := chunk(rows, 2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[2], 1)
	assert.Empty(t, chunk(nil, 2))
}

func TestExportWithoutClientIsNoop(t *testing.T) {
	e := NewExporter(nil, 0, nil)
	assert.Equal(t, defaultBatchSize, e.batchSize)
	assert.NoError(t, e.Export(context.Background(), nil, models.Plan{}))
}
