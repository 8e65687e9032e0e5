package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/events"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/metrics"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/planner"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/resolver"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/store/digest"
	dErrors "github.com/CBIIT/ccdi-cpi-etl/pkg/domain-errors"
	"github.com/CBIIT/ccdi-cpi-etl/pkg/platform/sentinel"
)

var tracer = otel.Tracer("cpi.linkage")

// Pipeline stages, used as metric labels and span names.
const (
	stageFetch    = "fetch"
	stageResolve  = "resolve"
	stageApply    = "apply"
	stageSnapshot = "snapshot"
	stageGraph    = "graph"
)

// maxLoggedInvalidFacts bounds per-fact warnings for one run.
const maxLoggedInvalidFacts = 20

type ParticipantStore interface {
	FetchFacts(ctx context.Context) ([]models.RawFact, error)
	ListParticipantKeys(ctx context.Context) ([]models.ParticipantKey, error)
	ApplyPlan(ctx context.Context, plan models.Plan) (models.ApplyResult, error)
	RefreshStatistics(ctx context.Context) error
	FindAlias(ctx context.Context, key models.ParticipantKey) (*string, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DigestStore interface {
	Last(ctx context.Context) (digest.Record, error)
	Record(ctx context.Context, rec digest.Record) error
}

type SnapshotUploader interface {
	Upload(ctx context.Context, sets []models.LinkedSet, at time.Time) (string, error)
}

type GraphExporter interface {
	Export(ctx context.Context, facts []models.RawFact, plan models.Plan) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev events.RunEvent) error
}

// Service runs the linkage pipeline: read facts and participants, resolve
// linked sets, plan and atomically apply aliases, then publish side effects.
// Only one run executes at a time per Service.
type Service struct {
	store         ParticipantStore
	digests       DigestStore
	snapshots     SnapshotUploader
	graph         GraphExporter
	events        EventPublisher
	logger        *slog.Logger
	metrics       *metrics.Metrics
	skipUnchanged bool
	now           func() time.Time
	newRunID      func() string

	running sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithDigestStore(d DigestStore) Option {
	return func(s *Service) {
		s.digests = d
	}
}

func WithSnapshotUploader(u SnapshotUploader) Option {
	return func(s *Service) {
		s.snapshots = u
	}
}

func WithGraphExporter(g GraphExporter) Option {
	return func(s *Service) {
		s.graph = g
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithSkipUnchanged skips the apply when the plan digest matches the last
// recorded one. Requires a digest store.
func WithSkipUnchanged(skip bool) Option {
	return func(s *Service) {
		s.skipUnchanged = skip
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(next func() string) Option {
	return func(s *Service) {
		s.newRunID = next
	}
}

// New constructs a Service.
func New(store ParticipantStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("participant store is required")
	}
	s := &Service{
		store:    store,
		events:   events.NopPublisher{},
		logger:   slog.Default(),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Preview is a resolved and planned run that has not been applied.
type Preview struct {
	Facts      []models.RawFact
	Resolution *resolver.Resolution
	Plan       models.Plan
	Digest     string
}

// RunReport describes one completed run.
type RunReport struct {
	RunID            string             `json:"run_id"`
	StartedAt        time.Time          `json:"started_at"`
	FinishedAt       time.Time          `json:"finished_at"`
	Digest           string             `json:"digest"`
	Stats            resolver.Stats     `json:"stats"`
	Instructions     int                `json:"instructions"`
	Aliased          int                `json:"aliased"`
	Orphans          int                `json:"orphans"`
	Applied          models.ApplyResult `json:"applied"`
	Unchanged        bool               `json:"unchanged"`
	SnapshotLocation string             `json:"snapshot_location,omitempty"`
	Warnings         []string           `json:"warnings,omitempty"`
}

// AliasLookup is the persisted alias value of one participant.
type AliasLookup struct {
	Key     models.ParticipantKey   `json:"key"`
	Alias   *string                 `json:"alternative_participants"`
	Members []models.ParticipantKey `json:"members"`
}

// Run executes one full pipeline run. A *ResolutionError means nothing was
// written; an *ApplyError means the plan did not persist and the run can be
// repeated. Snapshot, graph and digest failures after a successful apply are
// reported as warnings.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	if !s.running.TryLock() {
		return nil, dErrors.New(dErrors.CodeConflict, "a linkage run is already in progress")
	}
	defer s.running.Unlock()

	report := &RunReport{RunID: s.newRunID(), StartedAt: s.now()}
	log := s.logger.With("run_id", report.RunID)

	ctx, span := tracer.Start(ctx, "linkage.Run", trace.WithAttributes(attribute.String("run_id", report.RunID)))
	defer span.End()

	s.publish(ctx, log, events.RunEvent{Type: events.TypeRunStarted, RunID: report.RunID, OccurredAt: report.StartedAt})

	p, err := s.prepare(ctx, log)
	if err != nil {
		s.fail(ctx, span, log, report, err)
		return nil, err
	}
	report.Digest = p.Digest
	report.Stats = p.Resolution.Stats
	report.Instructions = p.Plan.Len()
	report.Aliased = p.Plan.AliasedCount()
	report.Orphans = p.Plan.Orphans
	span.SetAttributes(
		attribute.String("plan_digest", p.Digest),
		attribute.Int("plan_instructions", report.Instructions),
	)

	if s.unchanged(ctx, log, p.Digest) {
		report.Unchanged = true
		report.FinishedAt = s.now()
		s.incrementRun(metrics.OutcomeUnchanged)
		log.InfoContext(ctx, "plan unchanged since last apply; skipping", "digest", p.Digest)
		s.complete(ctx, log, report)
		return report, nil
	}

	applied, err := s.apply(ctx, p)
	if err != nil {
		s.fail(ctx, span, log, report, err)
		return nil, err
	}
	report.Applied = applied
	log.InfoContext(ctx, "plan applied",
		"updated", applied.Updated,
		"unmatched", applied.Unmatched,
		"instructions", report.Instructions,
	)

	report.Warnings = append(report.Warnings, s.afterApply(ctx, log, report, p)...)
	report.FinishedAt = s.now()

	if s.metrics != nil {
		s.metrics.RecordSuccess(report.FinishedAt, applied.Updated)
	}
	s.incrementRun(metrics.OutcomeApplied)
	span.SetStatus(codes.Ok, "")
	s.complete(ctx, log, report)
	return report, nil
}

// Preview resolves and plans without writing anything.
func (s *Service) Preview(ctx context.Context) (*Preview, error) {
	ctx, span := tracer.Start(ctx, "linkage.Preview")
	defer span.End()

	p, err := s.prepare(ctx, s.logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return p, nil
}

// Aliases returns the persisted alias value for a participant key of the
// form <id>::<domain>.
func (s *Service) Aliases(ctx context.Context, rawKey string) (*AliasLookup, error) {
	key, err := models.ParseParticipantKey(rawKey)
	if err != nil {
		return nil, err
	}
	alias, err := s.store.FindAlias(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "participant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load participant aliases")
	}
	lookup := &AliasLookup{Key: key, Alias: alias, Members: []models.ParticipantKey{}}
	if alias != nil {
		lookup.Members = models.ParseAlias(*alias)
	}
	return lookup, nil
}

func (s *Service) prepare(ctx context.Context, log *slog.Logger) (*Preview, error) {
	start := time.Now()
	facts, err := s.store.FetchFacts(ctx)
	if err != nil {
		return nil, &ResolutionError{Op: "fetch facts", Err: err}
	}
	universe, err := s.store.ListParticipantKeys(ctx)
	if err != nil {
		return nil, &ResolutionError{Op: "list participants", Err: err}
	}
	s.observeStage(stageFetch, start)

	if err := ctx.Err(); err != nil {
		return nil, &ResolutionError{Op: "resolve", Err: err}
	}

	start = time.Now()
	res := resolver.ResolveRows(facts)
	plan := planner.Build(res, universe)
	p := &Preview{Facts: facts, Resolution: res, Plan: plan, Digest: plan.Digest()}
	s.observeStage(stageResolve, start)

	for i, invalid := range res.Skipped {
		if i == maxLoggedInvalidFacts {
			log.WarnContext(ctx, "further invalid facts not logged", "remaining", len(res.Skipped)-i)
			break
		}
		log.WarnContext(ctx, "skipping invalid mapping fact", "index", invalid.Index, "reason", invalid.Reason)
	}
	log.InfoContext(ctx, "linked sets resolved",
		"facts", res.Stats.FactsRead,
		"invalid", res.Stats.Skipped,
		"self_pairs", res.Stats.SelfPairs,
		"sets", res.Stats.Classes,
		"linked_keys", res.Stats.LinkedKeys,
		"participants", plan.Len(),
		"orphans", plan.Orphans,
	)
	if s.metrics != nil {
		s.metrics.RecordResolution(res.Stats.FactsRead, res.Stats.Skipped, res.Stats.Classes, plan.Len())
	}
	return p, nil
}

func (s *Service) unchanged(ctx context.Context, log *slog.Logger, planDigest string) bool {
	if !s.skipUnchanged || s.digests == nil {
		return false
	}
	last, err := s.digests.Last(ctx)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			log.WarnContext(ctx, "could not read last plan digest; applying", "error", err)
		}
		return false
	}
	return last.Digest == planDigest
}

// apply writes the plan and refreshes statistics in one transaction.
func (s *Service) apply(ctx context.Context, p *Preview) (models.ApplyResult, error) {
	ctx, span := tracer.Start(ctx, "linkage.Apply")
	defer span.End()
	start := time.Now()

	var applied models.ApplyResult
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		result, err := s.store.ApplyPlan(ctx, p.Plan)
		if err != nil {
			return err
		}
		if err := s.store.RefreshStatistics(ctx); err != nil {
			return err
		}
		applied = result
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply failed")
		return models.ApplyResult{}, &ApplyError{Plan: p.Plan, Digest: p.Digest, Err: err}
	}
	s.observeStage(stageApply, start)
	return applied, nil
}

// afterApply records the digest and runs the snapshot upload and graph
// export concurrently. Failures become warnings.
func (s *Service) afterApply(ctx context.Context, log *slog.Logger, report *RunReport, p *Preview) []string {
	var (
		mu       sync.Mutex
		warnings []string
	)
	warn := func(kind, msg string, err error) {
		log.WarnContext(ctx, msg, "error", err)
		if s.metrics != nil {
			s.metrics.IncrementSideEffectError(kind)
		}
		mu.Lock()
		warnings = append(warnings, msg+": "+err.Error())
		mu.Unlock()
	}

	if s.digests != nil {
		rec := digest.Record{Digest: p.Digest, RunID: report.RunID, RecordedAt: s.now()}
		if err := s.digests.Record(ctx, rec); err != nil {
			warn("digest", "record plan digest failed", err)
		}
	}

	var g errgroup.Group
	if s.snapshots != nil {
		g.Go(func() error {
			start := time.Now()
			location, err := s.snapshots.Upload(ctx, p.Resolution.Sets(), report.StartedAt)
			if err != nil {
				warn(stageSnapshot, "snapshot upload failed", err)
				return nil
			}
			s.observeStage(stageSnapshot, start)
			mu.Lock()
			report.SnapshotLocation = location
			mu.Unlock()
			log.InfoContext(ctx, "snapshot uploaded", "location", location)
			return nil
		})
	}
	if s.graph != nil {
		g.Go(func() error {
			start := time.Now()
			if err := s.graph.Export(ctx, p.Facts, p.Plan); err != nil {
				warn(stageGraph, "graph export failed", err)
				return nil
			}
			s.observeStage(stageGraph, start)
			return nil
		})
	}
	_ = g.Wait()
	return warnings
}

func (s *Service) complete(ctx context.Context, log *slog.Logger, report *RunReport) {
	err := s.publishErr(ctx, events.RunEvent{
		Type:       events.TypeRunCompleted,
		RunID:      report.RunID,
		OccurredAt: report.FinishedAt,
		Digest:     report.Digest,
		Summary: &events.Summary{
			FactsRead:    report.Stats.FactsRead,
			InvalidFacts: report.Stats.Skipped,
			LinkedSets:   report.Stats.Classes,
			Instructions: report.Instructions,
			Aliased:      report.Aliased,
			Orphans:      report.Orphans,
			Updated:      report.Applied.Updated,
			Unmatched:    report.Applied.Unmatched,
			Skipped:      report.Unchanged,
		},
	})
	if err != nil {
		log.WarnContext(ctx, "publish run completed event failed", "error", err)
		report.Warnings = append(report.Warnings, "publish run completed event failed: "+err.Error())
	}
	log.InfoContext(ctx, "linkage run completed",
		"digest", report.Digest,
		"updated", report.Applied.Updated,
		"unchanged", report.Unchanged,
		"warnings", len(report.Warnings),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
}

func (s *Service) fail(ctx context.Context, span trace.Span, log *slog.Logger, report *RunReport, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.incrementRun(metrics.OutcomeFailed)
	log.ErrorContext(ctx, "linkage run failed", "error", err)

	// The run context may already be canceled; the failure event still goes out.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	s.publish(pubCtx, log, events.RunEvent{
		Type:       events.TypeRunFailed,
		RunID:      report.RunID,
		OccurredAt: s.now(),
		Error:      err.Error(),
	})
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, ev events.RunEvent) {
	if err := s.publishErr(ctx, ev); err != nil {
		log.WarnContext(ctx, "publish run event failed", "type", ev.Type, "error", err)
	}
}

func (s *Service) publishErr(ctx context.Context, ev events.RunEvent) error {
	if s.events == nil {
		return nil
	}
	return s.events.Publish(ctx, ev)
}

func (s *Service) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStage(stage, start)
	}
}

func (s *Service) incrementRun(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRun(outcome)
	}
}
