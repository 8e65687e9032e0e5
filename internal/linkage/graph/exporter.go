// Package graph mirrors participants, their domains and mapping facts into
// Neo4j. Each participant node carries the alias value of its linked set.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/neo4jdb"
)

const defaultBatchSize = 1000

var constraints = []string{
	`CREATE CONSTRAINT participant_key_unique IF NOT EXISTS FOR (p:Participant) REQUIRE p.key IS UNIQUE`,
	`CREATE CONSTRAINT domain_name_unique IF NOT EXISTS FOR (d:Domain) REQUIRE d.name IS UNIQUE`,
}

const upsertParticipants = `
UNWIND $rows AS r
MERGE (p:Participant {key: r.key})
SET p.participant_id = r.participant_id,
    p.domain_name = r.domain_name,
    p.alternative_participants = r.alias,
    p.synced_at = $synced_at
MERGE (d:Domain {name: r.domain_name})
MERGE (p)-[:IN_DOMAIN]->(d)
`

const upsertMappings = `
UNWIND $rows AS r
MERGE (a:Participant {key: r.a})
MERGE (b:Participant {key: r.b})
MERGE (a)-[m:MAPS_TO]->(b)
SET m.synced_at = $synced_at
`

const pruneMappings = `
MATCH ()-[m:MAPS_TO]->()
WHERE m.synced_at <> $synced_at
DELETE m
`

// Exporter writes one run into Neo4j.
type Exporter struct {
	client    *neo4jdb.Client
	batchSize int
	log       *slog.Logger
}

// NewExporter constructs an exporter. A non-positive batchSize uses the default.
func NewExporter(client *neo4jdb.Client, batchSize int, log *slog.Logger) *Exporter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{client: client, batchSize: batchSize, log: log}
}

// Export upserts every planned participant and every valid mapping fact,
// then removes mapping edges the run no longer carries.
func (e *Exporter) Export(ctx context.Context, facts []models.RawFact, plan models.Plan) error {
	if e.client == nil || e.client.Driver == nil {
		return nil
	}
	syncedAt := time.Now().UTC().Format(time.RFC3339Nano)

	session := e.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: e.client.Database,
	})
	defer session.Close(ctx)

	for _, q := range constraints {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			e.log.WarnContext(ctx, "neo4j schema init failed (continuing)", "error", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}

	for _, batch := range chunk(participantRows(plan), e.batchSize) {
		if err := e.write(ctx, session, upsertParticipants, batch, syncedAt); err != nil {
			return fmt.Errorf("upsert participants: %w", err)
		}
	}
	for _, batch := range chunk(mappingRows(facts), e.batchSize) {
		if err := e.write(ctx, session, upsertMappings, batch, syncedAt); err != nil {
			return fmt.Errorf("upsert mappings: %w", err)
		}
	}
	if err := e.write(ctx, session, pruneMappings, nil, syncedAt); err != nil {
		return fmt.Errorf("prune mappings: %w", err)
	}
	return nil
}

func (e *Exporter) write(ctx context.Context, session neo4j.SessionWithContext, query string, rows []map[string]any, syncedAt string) error {
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"rows": rows, "synced_at": syncedAt})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

// participantRows flattens the plan. A cleared alias is written as null,
// which removes the property.
func participantRows(plan models.Plan) []map[string]any {
	rows := make([]map[string]any, 0, plan.Len())
	for _, in := range plan.Instructions {
		participantID, domain := in.Key.Parts()
		var alias any
		if in.Alias != nil {
			alias = *in.Alias
		}
		rows = append(rows, map[string]any{
			"key":            string(in.Key),
			"participant_id": participantID,
			"domain_name":    domain,
			"alias":          alias,
		})
	}
	return rows
}

// mappingRows keeps facts with both keys present and drops self-pairs and
// repeats of the same unordered pair.
func mappingRows(facts []models.RawFact) []map[string]any {
	seen := make(map[[2]models.ParticipantKey]struct{}, len(facts))
	rows := make([]map[string]any, 0, len(facts))
	for _, f := range facts {
		a, errA := models.NewParticipantKey(f.ParticipantIDA, f.DomainA)
		b, errB := models.NewParticipantKey(f.ParticipantIDB, f.DomainB)
		if errA != nil || errB != nil || a == b {
			continue
		}
		if b < a {
			a, b = b, a
		}
		pair := [2]models.ParticipantKey{a, b}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		rows = append(rows, map[string]any{"a": string(a), "b": string(b)})
	}
	return rows
}

func chunk(rows []map[string]any, size int) [][]map[string]any {
	var out [][]map[string]any
	for len(rows) > 0 {
		n := min(size, len(rows))
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	return out
}
