package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/denizcargo/opswatch/internal/domain"
)

// ActiveRules returns active progression rules ordered by
// (priority ASC, notification_type ASC). This ordering is the evaluation
// order contract: the progression engine stops at the first matching rule
// per notification.
func (s *Store) ActiveRules(ctx context.Context) ([]domain.ProgressionRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM progression_rules
		WHERE is_active = 1
		ORDER BY priority ASC, notification_type ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query active rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// ListRules returns all progression rules (active and inactive) for the
// admin surface, ordered the same way as ActiveRules.
func (s *Store) ListRules(ctx context.Context) ([]domain.ProgressionRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM progression_rules
		ORDER BY priority ASC, notification_type ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// UpsertRule inserts or replaces a progression rule by ID. Used by the
// rules import command; the engine itself never writes rules.
func (s *Store) UpsertRule(ctx context.Context, r domain.ProgressionRule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progression_rules
		(id, notification_type, entity_type, conditions, priority, is_active, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			notification_type = excluded.notification_type,
			entity_type = excluded.entity_type,
			conditions = excluded.conditions,
			priority = excluded.priority,
			is_active = excluded.is_active,
			description = excluded.description,
			updated_at = excluded.updated_at
	`,
		r.ID, r.NotificationType, string(r.EntityType), string(r.Conditions),
		r.Priority, r.IsActive, r.Description,
		r.CreatedAt.UTC().Format(time.RFC3339), r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert rule %s: %w", r.ID, err)
	}
	return nil
}

// RuleStats returns per-rule auto-completion counts and the most recent
// match time, derived from the notifications audit columns.
func (s *Store) RuleStats(ctx context.Context) ([]domain.RuleStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.notification_type,
		       COUNT(n.id), MAX(n.auto_completed_at)
		FROM progression_rules r
		LEFT JOIN notifications n ON n.auto_completed_rule_id = r.id
		GROUP BY r.id, r.notification_type
		ORDER BY r.priority ASC, r.notification_type ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rule stats: %w", err)
	}
	defer rows.Close()

	var out []domain.RuleStat
	for rows.Next() {
		var (
			stat    domain.RuleStat
			lastRaw sql.NullString
		)
		if err := rows.Scan(&stat.RuleID, &stat.NotificationType, &stat.AutoCompleted, &lastRaw); err != nil {
			return nil, fmt.Errorf("scan rule stat: %w", err)
		}
		if stat.LastMatchedAt, err = parseTime(lastRaw); err != nil {
			return nil, err
		}
		out = append(out, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rule stats: %w", err)
	}
	if out == nil {
		out = []domain.RuleStat{}
	}
	return out, nil
}

const ruleColumns = `
	id, notification_type, entity_type, conditions, priority, is_active, description, created_at, updated_at`

func scanRules(rows *sql.Rows) ([]domain.ProgressionRule, error) {
	var out []domain.ProgressionRule
	for rows.Next() {
		var (
			r                    domain.ProgressionRule
			entityType           string
			conditions           string
			createdAt, updatedAt string
		)
		err := rows.Scan(&r.ID, &r.NotificationType, &entityType, &conditions,
			&r.Priority, &r.IsActive, &r.Description, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.EntityType = domain.EntityType(entityType)
		r.Conditions = []byte(conditions)
		if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse rule created_at: %w", err)
		}
		if r.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("parse rule updated_at: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	if out == nil {
		out = []domain.ProgressionRule{}
	}
	return out, nil
}
