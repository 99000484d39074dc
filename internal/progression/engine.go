// Package progression implements the workflow-progression engine: it
// sweeps open action-required notifications and auto-completes the ones
// whose declarative rule conditions now hold against live entity state.
//
// Auto-completion is one-way. The engine never reopens a notification and
// never deletes one; a completed notification keeps its audit trail
// (which rule matched, when, and why).
package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/denizcargo/opswatch/internal/condition"
	"github.com/denizcargo/opswatch/internal/domain"
	"github.com/denizcargo/opswatch/internal/snapshot"
	"github.com/denizcargo/opswatch/internal/store"
)

// Sweep bounds. Notifications older than the window are left to manual
// handling; the limit caps one pass's work.
const (
	DefaultWindow       = 30 * 24 * time.Hour
	DefaultPendingLimit = 500
)

// Result summarizes one sweep.
type Result struct {
	Processed     int // Open notifications examined
	AutoCompleted int // Notifications closed by a matching rule
}

// Engine sweeps pending notifications against the active rule set.
type Engine struct {
	store  *store.Store
	loader *snapshot.Loader
	eval   *condition.Evaluator
	now    func() time.Time

	window       time.Duration
	pendingLimit int
}

// Option configures an Engine.
type Option func(*Engine)

// WithNow overrides the wall clock.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithWindow overrides the pending-notification age window.
func WithWindow(window time.Duration) Option {
	return func(e *Engine) { e.window = window }
}

// WithPendingLimit overrides the per-sweep notification cap.
func WithPendingLimit(limit int) Option {
	return func(e *Engine) { e.pendingLimit = limit }
}

// New creates an Engine backed by the given store.
func New(st *store.Store, opts ...Option) *Engine {
	loader := &snapshot.Loader{Store: st}
	e := &Engine{
		store:        st,
		loader:       loader,
		eval:         &condition.Evaluator{Related: loader.RelatedStatus},
		now:          time.Now,
		window:       DefaultWindow,
		pendingLimit: DefaultPendingLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckAndAutoComplete runs one sweep: load the active rules, load the
// bounded pending batch, and for each notification evaluate its type's
// rules in priority order, completing on the first match.
//
// Per-notification failures are logged and skipped; the sweep itself only
// fails when the rule set or the batch cannot be loaded at all.
func (e *Engine) CheckAndAutoComplete(ctx context.Context) (Result, error) {
	var res Result

	rules, err := e.store.ActiveRules(ctx)
	if err != nil {
		return res, fmt.Errorf("progression: load rules: %w", err)
	}
	if len(rules) == 0 {
		return res, nil
	}
	byType := groupByType(rules)

	since := e.now().Add(-e.window)
	pending, err := e.store.PendingNotifications(ctx, since, e.pendingLimit)
	if err != nil {
		return res, fmt.Errorf("progression: load pending: %w", err)
	}

	for i := range pending {
		n := &pending[i]
		res.Processed++

		matched, err := e.sweepOne(ctx, n, byType[n.Type])
		if err != nil {
			slog.Warn("progression sweep failed for notification",
				"notification_id", n.ID, "type", n.Type, "error", err)
			continue
		}
		if matched {
			res.AutoCompleted++
		}
	}

	slog.Info("progression sweep complete",
		"rules", len(rules),
		"processed", res.Processed,
		"auto_completed", res.AutoCompleted,
	)
	return res, nil
}

// sweepOne evaluates one notification against its type's rules, which
// arrive already ordered by priority. The first rule whose conditions
// hold wins; later rules are not evaluated.
func (e *Engine) sweepOne(ctx context.Context, n *domain.Notification, rules []domain.ProgressionRule) (bool, error) {
	if len(rules) == 0 {
		return false, nil
	}

	// One snapshot per (notification, entity type): rules for the same
	// type share the load.
	snaps := map[domain.EntityType]*snapshot.Snapshot{}

	for _, rule := range rules {
		snap, ok := snaps[rule.EntityType]
		if !ok {
			loaded, err := e.loader.Load(ctx, rule.EntityType, n.ShipmentID, n.ContractID)
			if errors.Is(err, snapshot.ErrEntityNotFound) {
				// Entity gone; this rule can never match, but another
				// rule targeting a different entity type still might.
				snaps[rule.EntityType] = nil
				continue
			}
			if err != nil {
				return false, err
			}
			snap = loaded
			snaps[rule.EntityType] = snap
		}
		if snap == nil {
			continue
		}

		cond, err := condition.Parse(rule.Conditions)
		if err != nil {
			slog.Warn("rule has malformed conditions, skipping",
				"rule_id", rule.ID, "type", rule.NotificationType, "error", err)
			continue
		}
		if !e.eval.Evaluate(ctx, cond, snap) {
			continue
		}

		reason := rule.Description
		if reason == "" {
			reason = fmt.Sprintf("conditions of rule %s satisfied", rule.ID)
		}
		if err := e.store.AutoComplete(ctx, n.ID, rule.ID, reason, e.now()); err != nil {
			return false, fmt.Errorf("auto-complete: %w", err)
		}
		slog.Info("notification auto-completed",
			"notification_id", n.ID,
			"type", n.Type,
			"rule_id", rule.ID,
		)
		return true, nil
	}
	return false, nil
}

// groupByType indexes rules by notification type, preserving the store's
// priority ordering within each group.
func groupByType(rules []domain.ProgressionRule) map[string][]domain.ProgressionRule {
	byType := make(map[string][]domain.ProgressionRule, len(rules))
	for _, r := range rules {
		byType[r.NotificationType] = append(byType[r.NotificationType], r)
	}
	return byType
}
