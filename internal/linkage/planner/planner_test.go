package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/resolver"
)

func fact(a, b string) models.MappingFact {
	return models.MappingFact{A: models.ParticipantKey(a), B: models.ParticipantKey(b)}
}

func universe(ks ...string) []models.ParticipantKey {
	out := make([]models.ParticipantKey, len(ks))
	for i, k := range ks {
		out[i] = models.ParticipantKey(k)
	}
	return out
}

// entry flattens an instruction for comparison; "<nil>" marks a clear.
func entries(plan models.Plan) map[string]string {
	out := make(map[string]string, plan.Len())
	for _, in := range plan.Instructions {
		if in.Alias == nil {
			out[string(in.Key)] = "<nil>"
			continue
		}
		out[string(in.Key)] = *in.Alias
	}
	return out
}

func TestBuild_PairWithUnlinkedParticipant(t *testing.T) {
	res := resolver.Resolve([]models.MappingFact{fact("P1::KF", "P2::COG")})
	plan := Build(res, universe("P1::KF", "P2::COG", "P3::TARGET"))

	assert.Equal(t, map[string]string{
		"P1::KF":     "P1::KF, P2::COG",
		"P2::COG":    "P1::KF, P2::COG",
		"P3::TARGET": "<nil>",
	}, entries(plan))
}

func TestBuild_AliasIncludesOwnKey(t *testing.T) {
	res := resolver.Resolve([]models.MappingFact{fact("B", "A")})
	plan := Build(res, universe("A", "B"))

	for _, in := range plan.Instructions {
		require.NotNil(t, in.Alias)
		assert.Contains(t, *in.Alias, string(in.Key))
	}
}

func TestBuild_Chain(t *testing.T) {
	res := resolver.Resolve([]models.MappingFact{fact("A", "B"), fact("B", "C"), fact("D", "E")})
	plan := Build(res, universe("E", "D", "C", "B", "A"))

	require.Equal(t, 5, plan.Len())
	assert.Equal(t, map[string]string{
		"A": "A, B, C",
		"B": "A, B, C",
		"C": "A, B, C",
		"D": "D, E",
		"E": "D, E",
	}, entries(plan))

	var order []models.ParticipantKey
	for _, in := range plan.Instructions {
		order = append(order, in.Key)
	}
	assert.Equal(t, universe("A", "B", "C", "D", "E"), order)
}

func TestBuild_NoFactKeyIsCleared(t *testing.T) {
	res := resolver.Resolve(nil)
	plan := Build(res, universe("X::KF"))

	require.Equal(t, 1, plan.Len())
	assert.Nil(t, plan.Instructions[0].Alias)
	assert.False(t, plan.Instructions[0].HasAlias())
	assert.Equal(t, 0, plan.AliasedCount())
}

func TestBuild_SelfPairOnlyKeyIsCleared(t *testing.T) {
	res := resolver.Resolve([]models.MappingFact{fact("A", "A")})
	plan := Build(res, universe("A"))

	assert.Equal(t, map[string]string{"A": "<nil>"}, entries(plan))
}

func TestBuild_Idempotent(t *testing.T) {
	facts := []models.MappingFact{fact("A", "B"), fact("C", "B"), fact("X", "Y")}
	u := universe("A", "B", "C", "X", "Y", "Z")

	first := Build(resolver.Resolve(facts), u)
	second := Build(resolver.Resolve(facts), u)

	assert.Equal(t, entries(first), entries(second))
	assert.Equal(t, first.Digest(), second.Digest())
}

func TestBuild_UniverseDuplicatesAndEmptyKeys(t *testing.T) {
	res := resolver.Resolve([]models.MappingFact{fact("A", "B")})
	plan := Build(res, universe("A", "A", "", "B"))

	assert.Equal(t, 2, plan.Len())
}

func TestBuild_OrphansCounted(t *testing.T) {
	res := resolver.Resolve([]models.MappingFact{fact("A", "GONE")})
	plan := Build(res, universe("A"))

	assert.Equal(t, 1, plan.Orphans)
	assert.Equal(t, map[string]string{"A": "A, GONE"}, entries(plan))
}
