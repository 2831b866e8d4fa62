package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hotlist/internal/app"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const batchLockKey = "hotlist:lock:batch-recalc"

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recalculate matches for one job, one candidate or every active job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			return runRecalc(ctx, cmd, c)
		})
	},
}

var (
	recalcJobID       string
	recalcCandidateID string
	recalcPurge       bool
	recalcMetricsAddr string
	recalcLockTTL     time.Duration
)

func init() {
	recalcCmd.Flags().StringVar(&recalcJobID, "job", "", "Recalculate a single job by id")
	recalcCmd.Flags().StringVar(&recalcCandidateID, "candidate", "", "Recalculate a single candidate by id")
	recalcCmd.Flags().BoolVar(&recalcPurge, "purge", false, "Delete unreviewed matches of each job before rescanning")
	recalcCmd.Flags().StringVar(&recalcMetricsAddr, "metrics-addr", "", "Serve /metrics on this address while running (default: metrics.address)")
	recalcCmd.Flags().DurationVar(&recalcLockTTL, "lock-ttl", 2*time.Hour, "Expiry of the batch lock held in Redis")
	recalcCmd.MarkFlagsMutuallyExclusive("job", "candidate")
	rootCmd.AddCommand(recalcCmd)
}

func runRecalc(ctx context.Context, cmd *cobra.Command, c *app.Container) error {
	switch {
	case recalcJobID != "":
		id, err := uuid.Parse(recalcJobID)
		if err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}
		res, err := c.Lifecycle.RecalculateJobByID(ctx, id, recalcPurge)
		if err != nil {
			return err
		}
		if res == nil {
			return fmt.Errorf("job %s not found", id)
		}
		return printJSON(cmd, res)

	case recalcCandidateID != "":
		id, err := uuid.Parse(recalcCandidateID)
		if err != nil {
			return fmt.Errorf("invalid candidate id: %w", err)
		}
		res, err := c.Lifecycle.RecalculateCandidateByID(ctx, id)
		if err != nil {
			return err
		}
		if res == nil {
			return fmt.Errorf("candidate %s not found", id)
		}
		return printJSON(cmd, res)
	}

	addr := recalcMetricsAddr
	if addr == "" {
		addr = c.Config.Metrics.Address
	}
	if addr != "" {
		srv := serveMetrics(addr, c.Logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	release, err := acquireBatchLock(ctx, c)
	if err != nil {
		return err
	}
	defer release()

	res, err := c.Batch.Run(ctx, recalcPurge)
	if res != nil {
		if perr := printJSON(cmd, res); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

// acquireBatchLock keeps two sweeps from running at once. Without Redis the
// sweep runs unlocked.
func acquireBatchLock(ctx context.Context, c *app.Container) (func(), error) {
	if err := c.Cache.Ping(ctx); err != nil {
		c.Logger.Warn("redis unavailable, running batch without lock", zap.Error(err))
		return func() {}, nil
	}

	token := uuid.NewString()
	ok, err := c.Cache.SetIfNotExists(ctx, batchLockKey, token, recalcLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another batch recalculation is running")
	}
	return func() {
		if _, err := c.Cache.Release(context.WithoutCancel(ctx), batchLockKey, token); err != nil {
			c.Logger.Warn("release batch lock failed", zap.Error(err))
		}
	}, nil
}

func serveMetrics(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
