package handler

import (
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/resolver"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/service"
)

// PreviewResponse summarizes an unapplied plan.
type PreviewResponse struct {
	Digest       string         `json:"digest"`
	Stats        resolver.Stats `json:"stats"`
	Instructions int            `json:"instructions"`
	Aliased      int            `json:"aliased"`
	Orphans      int            `json:"orphans"`
	InvalidFacts []string       `json:"invalid_facts,omitempty"`
}

const maxReportedInvalidFacts = 100

func FromPreview(p *service.Preview) PreviewResponse {
	resp := PreviewResponse{
		Digest:       p.Digest,
		Stats:        p.Resolution.Stats,
		Instructions: p.Plan.Len(),
		Aliased:      p.Plan.AliasedCount(),
		Orphans:      p.Plan.Orphans,
	}
	for i, invalid := range p.Resolution.Skipped {
		if i == maxReportedInvalidFacts {
			break
		}
		resp.InvalidFacts = append(resp.InvalidFacts, invalid.Error())
	}
	return resp
}
