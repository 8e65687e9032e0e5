package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/CBIIT/ccdi-cpi-etl/pkg/domain-errors"
)

func TestNewParticipantKey(t *testing.T) {
	t.Run("joins id and domain", func(t *testing.T) {
		key, err := NewParticipantKey("P1", "KF")
		require.NoError(t, err)
		assert.Equal(t, ParticipantKey("P1::KF"), key)

		id, domain := key.Parts()
		assert.Equal(t, "P1", id)
		assert.Equal(t, "KF", domain)
	})

	t.Run("rejects empty parts", func(t *testing.T) {
		_, err := NewParticipantKey("", "KF")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = NewParticipantKey("P1", "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseParticipantKey(t *testing.T) {
	key, err := ParseParticipantKey("PT-1::COG")
	require.NoError(t, err)
	assert.Equal(t, ParticipantKey("PT-1::COG"), key)

	for _, raw := range []string{"", "P1", "::KF", "P1::"} {
		_, err := ParseParticipantKey(raw)
		assert.Error(t, err, raw)
	}
}

func TestNewMappingFact(t *testing.T) {
	fact, err := NewMappingFact(RawFact{ParticipantIDA: "P1", DomainA: "KF", ParticipantIDB: "P2", DomainB: "COG"})
	require.NoError(t, err)
	assert.Equal(t, ParticipantKey("P1::KF"), fact.A)
	assert.Equal(t, ParticipantKey("P2::COG"), fact.B)
	assert.False(t, fact.IsSelfPair())

	_, err = NewMappingFact(RawFact{ParticipantIDA: "P1", DomainA: "KF", DomainB: "COG"})
	assert.Error(t, err)
}

func TestLinkedSetAlias(t *testing.T) {
	set := LinkedSet{Members: []ParticipantKey{"P1::KF", "P2::COG"}}
	assert.Equal(t, "P1::KF, P2::COG", set.Alias())
	assert.True(t, set.Contains("P2::COG"))
	assert.False(t, set.Contains("P3::TARGET"))
}

func TestPlanDigest(t *testing.T) {
	alias := "A, B"
	plan := Plan{Instructions: []Instruction{{Key: "A", Alias: &alias}, {Key: "B", Alias: &alias}, {Key: "C"}}}
	same := Plan{Instructions: []Instruction{{Key: "A", Alias: &alias}, {Key: "B", Alias: &alias}, {Key: "C"}}}
	assert.Equal(t, plan.Digest(), same.Digest())
	assert.Equal(t, 2, plan.AliasedCount())

	empty := ""
	cleared := Plan{Instructions: []Instruction{{Key: "A", Alias: &alias}, {Key: "B", Alias: &alias}, {Key: "C", Alias: &empty}}}
	assert.NotEqual(t, plan.Digest(), cleared.Digest(), "nil and empty alias must differ")
}

func TestParseAlias(t *testing.T) {
	set := LinkedSet{Members: []ParticipantKey{"P1::KF", "P2::COG"}}
	assert.Equal(t, set.Members, ParseAlias(set.Alias()))
	assert.Nil(t, ParseAlias(""))
}
