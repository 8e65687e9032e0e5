// Package snapshot publishes the linked sets of a run as a dated JSON
// document: an array of {"related": [...members]} objects ordered by first
// member.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
)

const dateLayout = "2006-01-02"

type document struct {
	Related []string `json:"related"`
}

// Encode writes sets as the snapshot document.
func Encode(w io.Writer, sets []models.LinkedSet) error {
	docs := make([]document, len(sets))
	for i, set := range sets {
		members := make([]string, len(set.Members))
		for j, m := range set.Members {
			members[j] = string(m)
		}
		docs[i] = document{Related: members}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ObjectName is the snapshot name for a run on day at, e.g. json-file/2026-03-01.json.
func ObjectName(prefix string, at time.Time) string {
	return prefix + at.UTC().Format(dateLayout) + ".json"
}
