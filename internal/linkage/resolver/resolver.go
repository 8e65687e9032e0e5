// Package resolver closes pairwise mapping facts into linked sets.
//
// Facts are edges of an undirected graph whose vertices are participant keys.
// Every connected component with at least two members becomes one linked set
// whose members are deduplicated and sorted, so the same facts always yield
// the same sets regardless of input order, pair orientation or duplicates.
package resolver

import (
	"sort"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
	pstrings "github.com/CBIIT/ccdi-cpi-etl/pkg/platform/strings"
)

// Stats summarizes one resolution.
type Stats struct {
	FactsRead   int `json:"facts_read"`
	FactsLinked int `json:"facts_linked"`
	SelfPairs   int `json:"self_pairs"`
	Skipped     int `json:"skipped"`
	Vertices    int `json:"vertices"`
	Classes     int `json:"classes"`
	LinkedKeys  int `json:"linked_keys"`
}

// Resolution maps every key in a multi-member component to its linked set.
type Resolution struct {
	classes map[models.ParticipantKey]*models.LinkedSet
	sets    []*models.LinkedSet
	Skipped []*InvalidFactError
	Stats   Stats
}

// Lookup returns the linked set containing key.
func (r *Resolution) Lookup(key models.ParticipantKey) (models.LinkedSet, bool) {
	set, ok := r.classes[key]
	if !ok {
		return models.LinkedSet{}, false
	}
	return *set, true
}

// Keys returns every key that belongs to a linked set, sorted.
func (r *Resolution) Keys() []models.ParticipantKey {
	keys := make([]models.ParticipantKey, 0, len(r.classes))
	for k := range r.classes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Sets returns the distinct linked sets ordered by first member.
func (r *Resolution) Sets() []models.LinkedSet {
	out := make([]models.LinkedSet, len(r.sets))
	for i, s := range r.sets {
		out[i] = *s
	}
	return out
}

// ResolveRows builds keys from raw source rows and resolves them. Rows with
// an empty id or domain are reported as invalid facts.
func ResolveRows(rows []models.RawFact) *Resolution {
	facts := make([]models.MappingFact, len(rows))
	for i, row := range rows {
		facts[i] = models.MappingFact{
			A: joinKey(row.ParticipantIDA, row.DomainA),
			B: joinKey(row.ParticipantIDB, row.DomainB),
		}
	}
	return Resolve(facts)
}

// joinKey builds a key, leaving it empty when either part is missing so
// Resolve reports the row instead of linking a half key.
func joinKey(participantID, domain string) models.ParticipantKey {
	key, err := models.NewParticipantKey(participantID, domain)
	if err != nil {
		return ""
	}
	return key
}

// Resolve computes the linked sets for facts. Invalid facts are skipped and
// reported; they never abort the run.
func Resolve(facts []models.MappingFact) *Resolution {
	res := &Resolution{
		classes: make(map[models.ParticipantKey]*models.LinkedSet),
	}
	res.Stats.FactsRead = len(facts)

	ids := make(map[models.ParticipantKey]int, len(facts))
	keys := make([]models.ParticipantKey, 0, len(facts))
	ds := newDisjointSet(len(facts))

	vertex := func(k models.ParticipantKey) int {
		if id, ok := ids[k]; ok {
			return id
		}
		id := ds.add()
		ids[k] = id
		keys = append(keys, k)
		return id
	}

	for i, f := range facts {
		if reason := validate(f); reason != "" {
			res.Skipped = append(res.Skipped, &InvalidFactError{Index: i, Fact: f, Reason: reason})
			continue
		}
		if f.IsSelfPair() {
			res.Stats.SelfPairs++
			continue
		}
		ds.union(vertex(f.A), vertex(f.B))
		res.Stats.FactsLinked++
	}
	res.Stats.Skipped = len(res.Skipped)
	res.Stats.Vertices = ds.size()

	components := make(map[int][]string)
	for id, k := range keys {
		root := ds.find(id)
		components[root] = append(components[root], string(k))
	}

	for _, members := range components {
		members = pstrings.SortedUnique(members)
		if len(members) < 2 {
			continue
		}
		set := &models.LinkedSet{Members: make([]models.ParticipantKey, len(members))}
		for i, m := range members {
			set.Members[i] = models.ParticipantKey(m)
			res.classes[set.Members[i]] = set
		}
		res.sets = append(res.sets, set)
	}
	sort.Slice(res.sets, func(i, j int) bool {
		return res.sets[i].Members[0] < res.sets[j].Members[0]
	})

	res.Stats.Classes = len(res.sets)
	res.Stats.LinkedKeys = len(res.classes)
	return res
}

func validate(f models.MappingFact) string {
	switch {
	case f.A.IsZero() && f.B.IsZero():
		return "both participant keys are empty"
	case f.A.IsZero():
		return "first participant key is empty"
	case f.B.IsZero():
		return "second participant key is empty"
	}
	return ""
}
