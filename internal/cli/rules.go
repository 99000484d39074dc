package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/denizcargo/opswatch/internal/rulespec"
	"github.com/denizcargo/opswatch/internal/store"
)

// NewRulesCommand creates the rules command group: the admin surface for
// progression rules.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage progression rules",
	}
	cmd.AddCommand(newRulesListCommand(rootOpts))
	cmd.AddCommand(newRulesImportCommand(rootOpts))
	cmd.AddCommand(newRulesStatsCommand(rootOpts))
	return cmd
}

func newRulesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List progression rules",
		Long: `List every progression rule (active and inactive) in evaluation
order: priority ascending, then notification type.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			setupLogging(cfg, rootOpts.Verbose)

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			rules, err := st.ListRules(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to list rules", err)
			}

			if rootOpts.Format == "json" {
				out := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
				type ruleRow struct {
					ID               string `json:"id"`
					NotificationType string `json:"notification_type"`
					EntityType       string `json:"entity_type"`
					Priority         int    `json:"priority"`
					IsActive         bool   `json:"is_active"`
					Description      string `json:"description,omitempty"`
				}
				rows := make([]ruleRow, 0, len(rules))
				for _, r := range rules {
					rows = append(rows, ruleRow{
						ID:               r.ID,
						NotificationType: r.NotificationType,
						EntityType:       string(r.EntityType),
						Priority:         r.Priority,
						IsActive:         r.IsActive,
						Description:      r.Description,
					})
				}
				return out.Success(rows)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tENTITY\tPRIORITY\tACTIVE\tDESCRIPTION")
			for _, r := range rules {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%s\n",
					r.ID, r.NotificationType, r.EntityType, r.Priority, r.IsActive, r.Description)
			}
			return w.Flush()
		},
	}
}

func newRulesImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import progression rules from a YAML document",
		Long: `Import progression rules from a YAML document.

The document is validated against the rule schema before anything is
written; a document with any validation error is rejected as a whole.
Existing rules with the same id are updated in place.

Example:
  opswatch rules import --db ./opswatch.db ./rules.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			setupLogging(cfg, rootOpts.Verbose)

			rules, verrs, err := rulespec.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read rule document", err)
			}
			if len(verrs) > 0 {
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				msgs := make([]string, 0, len(verrs))
				for _, ve := range verrs {
					msgs = append(msgs, ve.Error())
				}
				_ = out.Error(verrs[0].Code, "rule document rejected", msgs)
				return NewExitError(ExitFailure, fmt.Sprintf("rule document rejected: %s", strings.Join(msgs, "; ")))
			}

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			now := time.Now().UTC()
			for i := range rules {
				rules[i].CreatedAt = now
				rules[i].UpdatedAt = now
				if err := st.UpsertRule(cmd.Context(), rules[i]); err != nil {
					return WrapExitError(ExitFailure, "failed to import rules", err)
				}
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(fmt.Sprintf("%d rules imported", len(rules)))
		},
	}
}

func newRulesStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-rule auto-completion statistics",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			setupLogging(cfg, rootOpts.Verbose)

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			stats, err := st.RuleStats(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to load rule stats", err)
			}

			if rootOpts.Format == "json" {
				out := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
				return out.Success(stats)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RULE\tTYPE\tAUTO-COMPLETED\tLAST MATCH")
			for _, s := range stats {
				last := "-"
				if s.LastMatchedAt != nil {
					last = s.LastMatchedAt.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					s.RuleID, s.NotificationType, s.AutoCompleted, last)
			}
			return w.Flush()
		},
	}
}
