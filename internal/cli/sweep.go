package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denizcargo/opswatch/internal/progression"
	"github.com/denizcargo/opswatch/internal/store"
)

// sweepResult is the sweep command's output payload.
type sweepResult struct {
	Processed     int `json:"processed"`
	AutoCompleted int `json:"auto_completed"`
}

func (r sweepResult) String() string {
	return fmt.Sprintf("%d notifications processed, %d auto-completed", r.Processed, r.AutoCompleted)
}

// NewSweepCommand creates the sweep command: one progression pass, now.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one workflow-progression sweep",
		Long: `Run one workflow-progression sweep and exit.

The sweep evaluates every active progression rule against the pending
action-required notifications and auto-completes the ones whose
conditions now hold.

Example:
  opswatch sweep --db ./opswatch.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(rootOpts, cmd)
		},
	}
	return cmd
}

func runSweep(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	setupLogging(cfg, opts.Verbose)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	eng := progression.New(st,
		progression.WithWindow(cfg.PendingWindow()),
		progression.WithPendingLimit(cfg.PendingLimit),
	)

	res, err := eng.CheckAndAutoComplete(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "sweep failed", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(sweepResult{
		Processed:     res.Processed,
		AutoCompleted: res.AutoCompleted,
	})
}
