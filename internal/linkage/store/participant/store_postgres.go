package participant

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/sentinel"
	txcontext "github.com/CBIIT/ccdi-cpi-etl/pkg/platform/tx"
)

//go:embed schema.sql
var schemaSQL string

const defaultTxTimeout = 5 * time.Minute

// PostgresStore reads mapping facts and participants from PostgreSQL and
// applies alias plans to the participant table.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgres constructs a PostgreSQL-backed participant store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: defaultTxTimeout}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

// EnsureSchema creates the participant, mapping and statistic tables.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// RunInTx runs fn inside one transaction. Stores called with the context
// passed to fn join that transaction. A context already carrying a
// transaction is reused.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// FetchFacts returns every mapping row. NULL columns come back empty so the
// resolver can report the row as invalid.
func (s *PostgresStore) FetchFacts(ctx context.Context) ([]models.RawFact, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT participant_id1, domain_name1, participant_id2, domain_name2
		FROM mapping
	`)
	if err != nil {
		return nil, fmt.Errorf("query mapping facts: %w", err)
	}
	defer rows.Close()

	var facts []models.RawFact
	for rows.Next() {
		var p1, d1, p2, d2 sql.NullString
		if err := rows.Scan(&p1, &d1, &p2, &d2); err != nil {
			return nil, fmt.Errorf("scan mapping fact: %w", err)
		}
		facts = append(facts, models.RawFact{
			ParticipantIDA: p1.String,
			DomainA:        d1.String,
			ParticipantIDB: p2.String,
			DomainB:        d2.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mapping facts: %w", err)
	}
	return facts, nil
}

// ListParticipantKeys returns the key of every participant row. Rows with an
// empty id or domain cannot carry aliases and are left out.
func (s *PostgresStore) ListParticipantKeys(ctx context.Context) ([]models.ParticipantKey, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT participant_id, domain_name
		FROM participant
		ORDER BY participant_id, domain_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var keys []models.ParticipantKey
	for rows.Next() {
		var participantID, domain string
		if err := rows.Scan(&participantID, &domain); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		key, err := models.NewParticipantKey(participantID, domain)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return keys, nil
}

// ApplyPlan writes every instruction in one transaction: the plan is copied
// into a temporary table and joined onto participant, touching only rows
// whose value differs. Re-applying the same plan changes nothing.
func (s *PostgresStore) ApplyPlan(ctx context.Context, plan models.Plan) (models.ApplyResult, error) {
	var result models.ApplyResult
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		exec := s.execer(ctx)

		if _, err := exec.ExecContext(ctx, `
			CREATE TEMPORARY TABLE linkage_plan (
				participant_id           TEXT NOT NULL,
				domain_name              TEXT NOT NULL,
				alternative_participants TEXT
			) ON COMMIT DROP
		`); err != nil {
			return fmt.Errorf("create plan table: %w", err)
		}

		if err := copyPlan(ctx, exec, plan); err != nil {
			return err
		}

		res, err := exec.ExecContext(ctx, `
			UPDATE participant p
			SET alternative_participants = t.alternative_participants
			FROM linkage_plan t
			WHERE p.participant_id = t.participant_id
			  AND p.domain_name = t.domain_name
			  AND p.alternative_participants IS DISTINCT FROM t.alternative_participants
		`)
		if err != nil {
			return fmt.Errorf("update participant aliases: %w", err)
		}
		updated, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("count updated participants: %w", err)
		}
		result.Updated = int(updated)

		if err := exec.QueryRowContext(ctx, `
			SELECT COUNT(*)
			FROM linkage_plan t
			WHERE NOT EXISTS (
				SELECT 1 FROM participant p
				WHERE p.participant_id = t.participant_id AND p.domain_name = t.domain_name
			)
		`).Scan(&result.Unmatched); err != nil {
			return fmt.Errorf("count unmatched instructions: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.ApplyResult{}, err
	}
	return result, nil
}

func copyPlan(ctx context.Context, exec txcontext.Executor, plan models.Plan) error {
	stmt, err := exec.PrepareContext(ctx, pq.CopyIn("linkage_plan", "participant_id", "domain_name", "alternative_participants"))
	if err != nil {
		return fmt.Errorf("prepare plan copy: %w", err)
	}
	defer stmt.Close()

	for _, in := range plan.Instructions {
		participantID, domain := in.Key.Parts()
		var alias any
		if in.Alias != nil {
			alias = *in.Alias
		}
		if _, err := stmt.ExecContext(ctx, participantID, domain, alias); err != nil {
			return fmt.Errorf("copy plan instruction %s: %w", in.Key, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush plan copy: %w", err)
	}
	return nil
}

// RefreshStatistics recomputes per-domain participant counts, the mapping
// row count and the number of distinct alias values.
func (s *PostgresStore) RefreshStatistics(ctx context.Context) error {
	exec := s.execer(ctx)
	statements := []struct {
		name  string
		query string
		args  []any
	}{
		{"clear domain statistics", `DELETE FROM statistic WHERE is_domain`, nil},
		{"insert domain statistics", `
			INSERT INTO statistic (counts_name, counts, is_domain)
			SELECT domain_name, COUNT(*), TRUE
			FROM participant
			GROUP BY domain_name
			ON CONFLICT (counts_name) DO UPDATE SET counts = EXCLUDED.counts, is_domain = EXCLUDED.is_domain
		`, nil},
		{"upsert mapped participant count", `
			INSERT INTO statistic (counts_name, counts, is_domain)
			VALUES ($1, (SELECT COUNT(*) FROM mapping), FALSE)
			ON CONFLICT (counts_name) DO UPDATE SET counts = EXCLUDED.counts
		`, []any{models.StatMappedParticipantCount}},
		{"upsert unique participant count", `
			INSERT INTO statistic (counts_name, counts, is_domain)
			VALUES ($1, (SELECT COUNT(DISTINCT alternative_participants) FROM participant), FALSE)
			ON CONFLICT (counts_name) DO UPDATE SET counts = EXCLUDED.counts
		`, []any{models.StatUniqueParticipantCount}},
	}
	for _, st := range statements {
		if _, err := exec.ExecContext(ctx, st.query, st.args...); err != nil {
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}
	return nil
}

// ListStatistics returns all statistic rows ordered by name.
func (s *PostgresStore) ListStatistics(ctx context.Context) ([]models.Statistic, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT counts_name, counts, is_domain FROM statistic ORDER BY counts_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query statistics: %w", err)
	}
	defer rows.Close()

	var stats []models.Statistic
	for rows.Next() {
		var st models.Statistic
		if err := rows.Scan(&st.Name, &st.Count, &st.IsDomain); err != nil {
			return nil, fmt.Errorf("scan statistic: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statistics: %w", err)
	}
	return stats, nil
}

// FindAlias returns the stored alias value for key, nil when the participant
// has none, or sentinel.ErrNotFound when the participant does not exist.
func (s *PostgresStore) FindAlias(ctx context.Context, key models.ParticipantKey) (*string, error) {
	participantID, domain := key.Parts()
	var alias sql.NullString
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT alternative_participants
		FROM participant
		WHERE participant_id = $1 AND domain_name = $2
	`, participantID, domain).Scan(&alias)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find alias: %w", err)
	}
	if !alias.Valid {
		return nil, nil
	}
	return &alias.String, nil
}
