package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/denizcargo/opswatch/internal/notify"
	"github.com/denizcargo/opswatch/internal/progression"
	"github.com/denizcargo/opswatch/internal/scheduler"
	"github.com/denizcargo/opswatch/internal/store"
)

// NewRunCommand creates the run command: the long-running daemon.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the notification and progression daemon",
		Long: `Start the opswatch daemon.

The daemon opens the SQLite database (creating it if it doesn't exist)
and runs two tasks on every tick: the notification generation pass and
the progression sweep. Both also fire once immediately on startup.

Example:
  opswatch run --db ./opswatch.db
  opswatch run --config /etc/opswatch.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(rootOpts, cmd)
		},
	}
	return cmd
}

func runDaemon(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	setupLogging(cfg, opts.Verbose)

	slog.Info("opening database", "path", cfg.DBPath)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	gen := notify.New(st, notify.WithBatchLimits(cfg.ContractBatch, cfg.ShipmentBatch))
	eng := progression.New(st,
		progression.WithWindow(cfg.PendingWindow()),
		progression.WithPendingLimit(cfg.PendingLimit),
	)

	sched := scheduler.New(cfg.ScanInterval)
	sched.Add("notification-scan", func(ctx context.Context) {
		gen.CheckAndGenerateNotifications(ctx)
	})
	sched.Add("progression-sweep", func(ctx context.Context) {
		if _, err := eng.CheckAndAutoComplete(ctx); err != nil {
			slog.Error("progression sweep failed", "error", err)
		}
	})

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("daemon starting", "db", cfg.DBPath, "interval", cfg.ScanInterval)
	fmt.Fprintln(cmd.OutOrStdout(), "opswatch started. Press Ctrl-C to stop.")

	sched.Run(ctx)

	slog.Info("daemon stopped gracefully")
	return nil
}
