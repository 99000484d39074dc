package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/denizcargo/opswatch/internal/domain"
)

// RecentOpenContracts returns up to limit contracts in draft or active
// status, most recent first. This is the generator's contract batch.
func (s *Store) RecentOpenContracts(ctx context.Context, limit int) ([]domain.Contract, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contractColumns+`
		FROM contracts
		WHERE status IN ('draft', 'active')
		ORDER BY created_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query open contracts: %w", err)
	}
	defer rows.Close()
	return scanContracts(rows)
}

// ShipmentsDueForCheck returns up to limit non-terminal shipments for the
// generator's scan batch. Shipments whose nearest key date (ETA or
// contract ship date) falls within seven days of now sort first, then by
// ETA ascending (null ETAs last), then by recency.
func (s *Store) ShipmentsDueForCheck(ctx context.Context, now time.Time, limit int) ([]domain.Shipment, error) {
	nowStr := now.UTC().Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+shipmentColumns+`
		FROM shipments
		WHERE status NOT IN ('received', 'closed', 'completed')
		ORDER BY
			CASE WHEN min(
				coalesce(julianday(eta), 1e9),
				coalesce(julianday(contract_ship_date), 1e9)
			) - julianday(?) BETWEEN -7 AND 7 THEN 0 ELSE 1 END,
			eta IS NULL,
			eta ASC,
			created_at DESC,
			id ASC
		LIMIT ?
	`, nowStr, limit)
	if err != nil {
		return nil, fmt.Errorf("query shipments due for check: %w", err)
	}
	defer rows.Close()
	return scanShipments(rows)
}

// GetShipment retrieves one shipment. Returns sql.ErrNoRows if absent.
func (s *Store) GetShipment(ctx context.Context, id string) (domain.Shipment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+shipmentColumns+` FROM shipments WHERE id = ?
	`, id)
	if err != nil {
		return domain.Shipment{}, fmt.Errorf("query shipment %s: %w", id, err)
	}
	defer rows.Close()

	list, err := scanShipments(rows)
	if err != nil {
		return domain.Shipment{}, err
	}
	if len(list) == 0 {
		return domain.Shipment{}, sql.ErrNoRows
	}
	return list[0], nil
}

// GetContract retrieves one contract. Returns sql.ErrNoRows if absent.
func (s *Store) GetContract(ctx context.Context, id string) (domain.Contract, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contractColumns+` FROM contracts WHERE id = ?
	`, id)
	if err != nil {
		return domain.Contract{}, fmt.Errorf("query contract %s: %w", id, err)
	}
	defer rows.Close()

	list, err := scanContracts(rows)
	if err != nil {
		return domain.Contract{}, err
	}
	if len(list) == 0 {
		return domain.Contract{}, sql.ErrNoRows
	}
	return list[0], nil
}

// GetQualityIncident retrieves one quality incident.
// Returns sql.ErrNoRows if absent.
func (s *Store) GetQualityIncident(ctx context.Context, id string) (domain.QualityIncident, error) {
	var (
		q          domain.QualityIncident
		shipmentID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, shipment_id, status, hold_status
		FROM quality_incidents WHERE id = ?
	`, id).Scan(&q.ID, &shipmentID, &q.Status, &q.HoldStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.QualityIncident{}, err
		}
		return domain.QualityIncident{}, fmt.Errorf("query quality incident %s: %w", id, err)
	}
	q.ShipmentID = nullStr(shipmentID)
	return q, nil
}

// GetQualityIncidentByShipment retrieves the most recent quality incident
// linked to a shipment. Returns sql.ErrNoRows if the shipment has none.
func (s *Store) GetQualityIncidentByShipment(ctx context.Context, shipmentID string) (domain.QualityIncident, error) {
	var (
		q      domain.QualityIncident
		linked sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, shipment_id, status, hold_status
		FROM quality_incidents
		WHERE shipment_id = ?
		ORDER BY rowid DESC
		LIMIT 1
	`, shipmentID).Scan(&q.ID, &linked, &q.Status, &q.HoldStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.QualityIncident{}, err
		}
		return domain.QualityIncident{}, fmt.Errorf("query quality incident for shipment %s: %w", shipmentID, err)
	}
	q.ShipmentID = nullStr(linked)
	return q, nil
}

// LinkedShipmentStatuses returns the statuses of all shipments linked to
// a contract. Callers reduce these to the most-advanced one using the
// ordinal table, which lives in Go (the legacy alias mapping cannot be
// expressed in SQL ordering).
func (s *Store) LinkedShipmentStatuses(ctx context.Context, contractID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status FROM shipments WHERE contract_id = ? ORDER BY id ASC
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("query linked shipments: %w", err)
	}
	defer rows.Close()

	var statuses []string
	for rows.Next() {
		var st string
		if err := rows.Scan(&st); err != nil {
			return nil, fmt.Errorf("scan linked shipment status: %w", err)
		}
		statuses = append(statuses, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate linked shipments: %w", err)
	}
	return statuses, nil
}

// PaymentSchedule returns a contract's payment plan ordered by seq.
func (s *Store) PaymentSchedule(ctx context.Context, contractID string) ([]domain.PaymentScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT contract_id, seq, basis, days_after, percent, is_deferred
		FROM payment_schedules
		WHERE contract_id = ?
		ORDER BY seq ASC
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("query payment schedule: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentScheduleEntry
	for rows.Next() {
		var e domain.PaymentScheduleEntry
		if err := rows.Scan(&e.ContractID, &e.Seq, &e.Basis, &e.DaysAfter, &e.Percent, &e.IsDeferred); err != nil {
			return nil, fmt.Errorf("scan payment schedule entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment schedule: %w", err)
	}
	if out == nil {
		out = []domain.PaymentScheduleEntry{}
	}
	return out, nil
}

// StampNotificationCheck records that the generator finished a scan of an
// entity. Only shipments and contracts carry the column.
func (s *Store) StampNotificationCheck(ctx context.Context, entityType domain.EntityType, id string, at time.Time) error {
	var table string
	switch entityType {
	case domain.EntityShipment:
		table = "shipments"
	case domain.EntityContract:
		table = "contracts"
	default:
		return fmt.Errorf("stamp notification check: unsupported entity type %q", entityType)
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET last_notification_check = ? WHERE id = ?", table),
		at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("stamp notification check: %w", err)
	}
	return nil
}

// MarkQualityFeedbackRequested stamps a shipment's feedback flag so the
// quality_feedback_request check fires once per shipment.
func (s *Store) MarkQualityFeedbackRequested(ctx context.Context, shipmentID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE shipments SET quality_feedback_requested = 1 WHERE id = ?
	`, shipmentID)
	if err != nil {
		return fmt.Errorf("mark quality feedback requested: %w", err)
	}
	return nil
}

// InsertContract writes a contract row. Collaborator surfaces (and tests)
// own contract data; the engine only reads it.
func (s *Store) InsertContract(ctx context.Context, c domain.Contract) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts
		(id, status, signed_at, buyer_id, seller_id, last_notification_check, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Status, fmtTime(c.SignedAt), c.BuyerID, c.SellerID,
		fmtTime(c.LastNotificationCheck), c.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert contract %s: %w", c.ID, err)
	}
	return nil
}

// InsertShipment writes a shipment row.
func (s *Store) InsertShipment(ctx context.Context, sh domain.Shipment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shipments
		(id, contract_id, status, transaction_type,
		 contract_ship_date, eta, arrival_date, customs_clearance_date,
		 total_value_usd, paid_value_usd, balance_value_usd,
		 free_time_days, doc_count,
		 booking_shared, goods_loaded_notified, original_docs_sent,
		 draft_docs_approved, quality_feedback_requested,
		 last_notification_check, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sh.ID, strOrNil(sh.ContractID), sh.Status, sh.TransactionType,
		fmtTime(sh.ContractShipDate), fmtTime(sh.ETA), fmtTime(sh.ArrivalDate), fmtTime(sh.CustomsClearanceDate),
		sh.TotalValueUSD, sh.PaidValueUSD, sh.BalanceValueUSD,
		sh.FreeTimeDays, sh.DocCount,
		sh.BookingShared, sh.GoodsLoadedNotified, sh.OriginalDocsSent,
		sh.DraftDocsApproved, sh.QualityFeedbackRequested,
		fmtTime(sh.LastNotificationCheck), sh.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert shipment %s: %w", sh.ID, err)
	}
	return nil
}

// InsertQualityIncident writes a quality incident row.
func (s *Store) InsertQualityIncident(ctx context.Context, q domain.QualityIncident) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quality_incidents (id, shipment_id, status, hold_status)
		VALUES (?, ?, ?, ?)
	`, q.ID, strOrNil(q.ShipmentID), q.Status, q.HoldStatus)
	if err != nil {
		return fmt.Errorf("insert quality incident %s: %w", q.ID, err)
	}
	return nil
}

// InsertPaymentScheduleEntry writes one payment plan row.
func (s *Store) InsertPaymentScheduleEntry(ctx context.Context, e domain.PaymentScheduleEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_schedules (contract_id, seq, basis, days_after, percent, is_deferred)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ContractID, e.Seq, e.Basis, e.DaysAfter, e.Percent, e.IsDeferred)
	if err != nil {
		return fmt.Errorf("insert payment schedule entry: %w", err)
	}
	return nil
}

const contractColumns = `
	id, status, signed_at, buyer_id, seller_id, last_notification_check, created_at`

func scanContracts(rows *sql.Rows) ([]domain.Contract, error) {
	var out []domain.Contract
	for rows.Next() {
		var (
			c                 domain.Contract
			signedAt, lastChk sql.NullString
			createdAt         string
		)
		err := rows.Scan(&c.ID, &c.Status, &signedAt, &c.BuyerID, &c.SellerID, &lastChk, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		if c.SignedAt, err = parseTime(signedAt); err != nil {
			return nil, err
		}
		if c.LastNotificationCheck, err = parseTime(lastChk); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse contract created_at: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	if out == nil {
		out = []domain.Contract{}
	}
	return out, nil
}

const shipmentColumns = `
	id, contract_id, status, transaction_type,
	contract_ship_date, eta, arrival_date, customs_clearance_date,
	total_value_usd, paid_value_usd, balance_value_usd,
	free_time_days, doc_count,
	booking_shared, goods_loaded_notified, original_docs_sent,
	draft_docs_approved, quality_feedback_requested,
	last_notification_check, created_at`

func scanShipments(rows *sql.Rows) ([]domain.Shipment, error) {
	var out []domain.Shipment
	for rows.Next() {
		var (
			sh                             domain.Shipment
			contractID                     sql.NullString
			shipDate, eta, arrival, custom sql.NullString
			lastChk                        sql.NullString
			createdAt                      string
		)
		err := rows.Scan(&sh.ID, &contractID, &sh.Status, &sh.TransactionType,
			&shipDate, &eta, &arrival, &custom,
			&sh.TotalValueUSD, &sh.PaidValueUSD, &sh.BalanceValueUSD,
			&sh.FreeTimeDays, &sh.DocCount,
			&sh.BookingShared, &sh.GoodsLoadedNotified, &sh.OriginalDocsSent,
			&sh.DraftDocsApproved, &sh.QualityFeedbackRequested,
			&lastChk, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		sh.ContractID = nullStr(contractID)
		if sh.ContractShipDate, err = parseTime(shipDate); err != nil {
			return nil, err
		}
		if sh.ETA, err = parseTime(eta); err != nil {
			return nil, err
		}
		if sh.ArrivalDate, err = parseTime(arrival); err != nil {
			return nil, err
		}
		if sh.CustomsClearanceDate, err = parseTime(custom); err != nil {
			return nil, err
		}
		if sh.LastNotificationCheck, err = parseTime(lastChk); err != nil {
			return nil, err
		}
		if sh.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse shipment created_at: %w", err)
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipments: %w", err)
	}
	if out == nil {
		out = []domain.Shipment{}
	}
	return out, nil
}
