package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/denizcargo/opswatch/internal/domain"
)

// InsertNotification writes a new notification. Returns inserted=false
// when an open notification with the same (type, shipment_id, contract_id)
// already exists - the partial unique index plus ON CONFLICT DO NOTHING
// makes dedup a single atomic operation instead of check-then-insert.
func (s *Store) InsertNotification(ctx context.Context, n *domain.Notification) (inserted bool, err error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications
		(id, type, severity,
		 title_en, title_tr, message_en, message_tr, action_text_en, action_text_tr,
		 due_date, auto_escalate_at, shipment_id, contract_id,
		 is_read, action_required, action_completed, auto_completed,
		 auto_completed_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		n.ID, n.Type, string(n.Severity),
		n.Title.EN, n.Title.TR, n.Message.EN, n.Message.TR, n.ActionText.EN, n.ActionText.TR,
		fmtTime(n.DueDate), fmtTime(n.AutoEscalateAt), strOrNil(n.ShipmentID), strOrNil(n.ContractID),
		n.IsRead, n.ActionRequired, n.ActionCompleted, n.AutoCompleted,
		n.AutoCompletedReason,
		n.CreatedAt.UTC().Format(time.RFC3339), n.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert notification: rows affected: %w", err)
	}
	return rows > 0, nil
}

// NotificationExists reports whether an open notification with the given
// (type, shipment_id, contract_id) exists. Retained as a cheap pre-filter
// before building notification text; the unique index remains the
// authority.
func (s *Store) NotificationExists(ctx context.Context, typ string, shipmentID, contractID *string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE type = ?
		  AND coalesce(shipment_id, '') = coalesce(?, '')
		  AND coalesce(contract_id, '') = coalesce(?, '')
		  AND action_completed = 0 AND auto_completed = 0
	`, typ, strOrNil(shipmentID), strOrNil(contractID)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check notification exists: %w", err)
	}
	return count > 0, nil
}

// PendingNotifications returns up to limit open, action-required
// notifications created at or after since, newest first. This is the
// progression engine's work queue.
func (s *Store) PendingNotifications(ctx context.Context, since time.Time, limit int) ([]domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE action_required = 1
		  AND action_completed = 0
		  AND auto_completed = 0
		  AND created_at >= ?
		ORDER BY created_at DESC, id ASC
		LIMIT ?
	`, since.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, fmt.Errorf("query pending notifications: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

// GetNotification retrieves a single notification by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetNotification(ctx context.Context, id string) (domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications WHERE id = ?
	`, id)
	return scanNotificationRow(row)
}

// CountOpenNotifications returns the number of open notifications,
// optionally filtered by type (empty matches all).
func (s *Store) CountOpenNotifications(ctx context.Context, typ string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE action_completed = 0 AND auto_completed = 0
		  AND (? = '' OR type = ?)
	`, typ, typ).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open notifications: %w", err)
	}
	return count, nil
}

// AutoComplete marks a notification auto-completed by a progression rule,
// stamping the audit columns. A single-row, independently committed
// update: a crash mid-batch leaves already-updated rows valid and
// re-running simply finds fewer pending notifications.
func (s *Store) AutoComplete(ctx context.Context, notificationID, ruleID, reason string, at time.Time) error {
	stamp := at.UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET action_completed = 1,
		    auto_completed = 1,
		    is_read = 1,
		    auto_completed_rule_id = ?,
		    auto_completed_reason = ?,
		    auto_completed_at = ?,
		    updated_at = ?
		WHERE id = ? AND action_completed = 0 AND auto_completed = 0
	`, ruleID, reason, stamp, stamp, notificationID)
	if err != nil {
		return fmt.Errorf("auto-complete notification %s: %w", notificationID, err)
	}
	return nil
}

const notificationColumns = `
	id, type, severity,
	title_en, title_tr, message_en, message_tr, action_text_en, action_text_tr,
	due_date, auto_escalate_at, shipment_id, contract_id,
	is_read, action_required, action_completed, auto_completed,
	auto_completed_rule_id, auto_completed_reason, auto_completed_at,
	created_at, updated_at`

// rowScanner abstracts sql.Row and sql.Rows for the shared scan path.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(sc rowScanner) (domain.Notification, error) {
	var (
		n                                  domain.Notification
		severity                           string
		dueDate, escalateAt, autoAt        sql.NullString
		shipmentID, contractID, autoRuleID sql.NullString
		createdAt, updatedAt               string
	)

	err := sc.Scan(
		&n.ID, &n.Type, &severity,
		&n.Title.EN, &n.Title.TR, &n.Message.EN, &n.Message.TR, &n.ActionText.EN, &n.ActionText.TR,
		&dueDate, &escalateAt, &shipmentID, &contractID,
		&n.IsRead, &n.ActionRequired, &n.ActionCompleted, &n.AutoCompleted,
		&autoRuleID, &n.AutoCompletedReason, &autoAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Notification{}, err
	}

	n.Severity = domain.Severity(severity)
	n.ShipmentID = nullStr(shipmentID)
	n.ContractID = nullStr(contractID)
	n.AutoCompletedRuleID = nullStr(autoRuleID)

	if n.DueDate, err = parseTime(dueDate); err != nil {
		return domain.Notification{}, err
	}
	if n.AutoEscalateAt, err = parseTime(escalateAt); err != nil {
		return domain.Notification{}, err
	}
	if n.AutoCompletedAt, err = parseTime(autoAt); err != nil {
		return domain.Notification{}, err
	}
	if n.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return domain.Notification{}, fmt.Errorf("parse created_at: %w", err)
	}
	if n.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return domain.Notification{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return n, nil
}

func scanNotificationRow(row *sql.Row) (domain.Notification, error) {
	n, err := scanNotification(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Notification{}, err
		}
		return domain.Notification{}, fmt.Errorf("scan notification: %w", err)
	}
	return n, nil
}

func scanNotifications(rows *sql.Rows) ([]domain.Notification, error) {
	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	if out == nil {
		out = []domain.Notification{}
	}
	return out, nil
}
