package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/events"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/graph"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/handler"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/metrics"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/service"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/snapshot"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/store/digest"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/store/participant"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/config"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/gcs"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/kafka"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/neo4jdb"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/postgres"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/redis"
)

// app owns every client a command needs and closes them in reverse order.
type app struct {
	log     *slog.Logger
	db      *sql.DB
	redis   *redis.Client
	store   *participant.PostgresStore
	service *service.Service
	closers []func() error
}

// newReadOnlyApp connects only to PostgreSQL. Enough for previews, alias
// lookups and migrations.
func newReadOnlyApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &app{log: log, db: db, store: participant.NewPostgres(db)}
	a.closers = append(a.closers, db.Close)

	a.service, err = service.New(a.store, service.WithLogger(log))
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// newApp connects to PostgreSQL and every configured side-effect target.
// Unconfigured targets are left out of the service.
func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a, err := newReadOnlyApp(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithSkipUnchanged(cfg.Run.SkipUnchanged),
	}

	fail := func(err error) (*app, error) {
		a.Close()
		return nil, err
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fail(err)
	}
	if rc != nil {
		a.redis = rc
		a.closers = append(a.closers, rc.Close)
		opts = append(opts, service.WithDigestStore(digest.NewRedis(rc.Client)))
	} else if cfg.Run.SkipUnchanged {
		log.Warn("skip unchanged requested without redis; every run applies")
	}

	kc, err := kafka.NewClient(ctx, cfg.Kafka)
	if err != nil {
		return fail(err)
	}
	if kc != nil {
		a.closers = append(a.closers, closeKafka(kc))
		opts = append(opts, service.WithEventPublisher(events.NewKafkaPublisher(kc, cfg.Kafka.Topic)))
	}

	nc, err := neo4jdb.New(ctx, cfg.Neo4j, log)
	if err != nil {
		return fail(err)
	}
	if nc != nil {
		a.closers = append(a.closers, func() error { return nc.Close(context.Background()) })
		opts = append(opts, service.WithGraphExporter(graph.NewExporter(nc, cfg.Neo4j.BatchSize, log)))
	}

	switch {
	case cfg.Snapshot.Bucket != "":
		sc, err := gcs.NewClient(ctx)
		if err != nil {
			return fail(err)
		}
		a.closers = append(a.closers, sc.Close)
		opts = append(opts, service.WithSnapshotUploader(snapshot.NewGCSUploader(sc, cfg.Snapshot.Bucket, cfg.Snapshot.Prefix)))
	case cfg.Snapshot.Dir != "":
		opts = append(opts, service.WithSnapshotUploader(snapshot.NewDirWriter(cfg.Snapshot.Dir, cfg.Snapshot.Prefix)))
	}

	a.service, err = service.New(a.store, opts...)
	if err != nil {
		return fail(err)
	}
	log.Info("linkage service ready",
		"redis", rc != nil,
		"kafka", kc != nil,
		"neo4j", nc != nil,
		"snapshot_bucket", cfg.Snapshot.Bucket,
		"snapshot_dir", cfg.Snapshot.Dir,
	)
	return a, nil
}

func closeKafka(c *kgo.Client) func() error {
	return func() error {
		c.Close()
		return nil
	}
}

func (a *app) healthChecks() map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"postgres": a.db.PingContext,
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	return checks
}

// Close releases every client. Errors are logged.
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("closing clients", "error", fmt.Sprint(err))
	}
}
