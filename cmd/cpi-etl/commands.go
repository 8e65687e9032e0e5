package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/handler"
	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/snapshot"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/config"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/httpserver"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/kafka"
	"github.com/CBIIT/ccdi-cpi-etl/internal/platform/logger"
)

const shutdownTimeout = 30 * time.Second

type cli struct {
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "cpi-etl",
		Short: "Resolve CPI participant mappings into linked alias sets",
		Long: `cpi-etl reads pairwise participant mapping facts, closes them into linked
sets and writes every participant's alias list back to the participant table
in one transaction.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file; environment variables override it")

	root.AddCommand(
		c.runCmd(),
		c.resolveCmd(),
		c.aliasesCmd(),
		c.statsCmd(),
		c.serveCmd(),
		c.migrateCmd(),
	)
	return root
}

func (c *cli) runCmd() *cobra.Command {
	var skipUnchanged bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve linked sets and apply them to the participant table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("skip-unchanged") {
				c.cfg.Run.SkipUnchanged = skipUnchanged
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.Run.Timeout)
			defer cancel()

			a, err := newApp(ctx, c.cfg, logger.New(c.cfg.Log.Level, c.cfg.Log.Format))
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.service.Run(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&skipUnchanged, "skip-unchanged", false, "skip the apply when the plan matches the last applied plan")
	return cmd
}

func (c *cli) resolveCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve and plan without writing to the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.Run.Timeout)
			defer cancel()

			a, err := newReadOnlyApp(ctx, c.cfg, logger.New(c.cfg.Log.Level, c.cfg.Log.Format))
			if err != nil {
				return err
			}
			defer a.Close()

			preview, err := a.service.Preview(ctx)
			if err != nil {
				return err
			}
			if out != "" {
				if err := snapshot.WriteFile(out, preview.Resolution.Sets()); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), handler.FromPreview(preview))
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the linked sets as snapshot JSON to this file")
	return cmd
}

func (c *cli) aliasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aliases <participant_id::domain>",
		Short: "Print the stored alias value of one participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newReadOnlyApp(cmd.Context(), c.cfg, logger.New(c.cfg.Log.Level, c.cfg.Log.Format))
			if err != nil {
				return err
			}
			defer a.Close()

			lookup, err := a.service.Aliases(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), lookup)
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve health, metrics, alias lookups and the run trigger over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logger.New(c.cfg.Log.Level, c.cfg.Log.Format)

			a, err := newApp(ctx, c.cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if c.cfg.Server.AdminToken == "" {
				log.Warn("CPI_ADMIN_TOKEN not set; run endpoints will reject every request")
			}
			router := handler.NewRouter(handler.New(a.service, log, c.cfg.Run.Timeout), handler.RouterConfig{
				AdminToken: c.cfg.Server.AdminToken,
				Checks:     a.healthChecks(),
				Logger:     log,
			})
			srv := httpserver.New(c.cfg.Server.Addr, router)

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting cpi-etl server", "addr", c.cfg.Server.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			return nil
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the participant, mapping and statistic tables and the run events topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logger.New(c.cfg.Log.Level, c.cfg.Log.Format)

			a, err := newReadOnlyApp(ctx, c.cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.EnsureSchema(ctx); err != nil {
				return err
			}
			log.Info("schema ready")

			client, err := kafka.NewClient(ctx, c.cfg.Kafka)
			if err != nil {
				return err
			}
			if client == nil {
				return nil
			}
			defer client.Close()
			if err := kafka.EnsureTopic(ctx, client, c.cfg.Kafka.Topic); err != nil {
				return err
			}
			log.Info("events topic ready", "topic", c.cfg.Kafka.Topic)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the statistic rows written by the last applied run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newReadOnlyApp(cmd.Context(), c.cfg, logger.New(c.cfg.Log.Level, c.cfg.Log.Format))
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.store.ListStatistics(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}
}
