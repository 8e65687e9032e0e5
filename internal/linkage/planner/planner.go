// Package planner turns a resolution into a full-replace write plan.
package planner

import (
	"sort"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/resolver"
)

// Build emits exactly one instruction per distinct universe key, ordered by
// key. Keys in a linked set get the set's alias value, which lists every
// member including the key itself; all other keys get a nil alias so stale
// values are cleared.
func Build(res *resolver.Resolution, universe []models.ParticipantKey) models.Plan {
	known := make(map[models.ParticipantKey]struct{}, len(universe))
	ordered := make([]models.ParticipantKey, 0, len(universe))
	for _, k := range universe {
		if k.IsZero() {
			continue
		}
		if _, dup := known[k]; dup {
			continue
		}
		known[k] = struct{}{}
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	// Sets are shared by their members; render each alias once.
	aliases := make(map[string]*string)
	plan := models.Plan{Instructions: make([]models.Instruction, 0, len(ordered))}
	for _, k := range ordered {
		in := models.Instruction{Key: k}
		if set, ok := res.Lookup(k); ok {
			first := string(set.Members[0])
			alias, rendered := aliases[first]
			if !rendered {
				s := set.Alias()
				alias = &s
				aliases[first] = alias
			}
			in.Alias = alias
		}
		plan.Instructions = append(plan.Instructions, in)
	}

	for _, k := range res.Keys() {
		if _, ok := known[k]; !ok {
			plan.Orphans++
		}
	}
	return plan
}
