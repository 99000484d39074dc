package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/denizcargo/opswatch/internal/domain"
	"github.com/denizcargo/opswatch/internal/status"
	"github.com/denizcargo/opswatch/internal/store"
)

// ErrEntityNotFound is returned when the referenced entity no longer
// exists. The progression engine skips (never auto-completes) in that
// case.
var ErrEntityNotFound = errors.New("snapshot: entity not found")

// Loader builds snapshots from the store.
type Loader struct {
	Store *store.Store
}

// Load builds the snapshot for one entity. Which ID is consulted depends
// on the entity type: shipments and quality incidents resolve through
// shipmentID, contracts through contractID. Quality incidents are linked
// to notifications via their shipment, so the most recent incident for
// the shipment is projected.
func (l *Loader) Load(ctx context.Context, entityType domain.EntityType, shipmentID, contractID *string) (*Snapshot, error) {
	switch entityType {
	case domain.EntityShipment:
		if shipmentID == nil {
			return nil, fmt.Errorf("snapshot: shipment snapshot requires shipment_id")
		}
		sh, err := l.Store.GetShipment(ctx, *shipmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrEntityNotFound
			}
			return nil, fmt.Errorf("snapshot: load shipment: %w", err)
		}
		return FromShipment(sh), nil

	case domain.EntityContract:
		if contractID == nil {
			return nil, fmt.Errorf("snapshot: contract snapshot requires contract_id")
		}
		c, err := l.Store.GetContract(ctx, *contractID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrEntityNotFound
			}
			return nil, fmt.Errorf("snapshot: load contract: %w", err)
		}
		statuses, err := l.Store.LinkedShipmentStatuses(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot: load linked shipments: %w", err)
		}
		return FromContract(c, MostAdvanced(statuses)), nil

	case domain.EntityQualityIncident:
		if shipmentID == nil {
			return nil, fmt.Errorf("snapshot: quality incident snapshot requires shipment_id")
		}
		q, err := l.Store.GetQualityIncidentByShipment(ctx, *shipmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrEntityNotFound
			}
			return nil, fmt.Errorf("snapshot: load quality incident: %w", err)
		}
		return FromQualityIncident(q), nil

	default:
		return nil, fmt.Errorf("snapshot: unknown entity type %q", entityType)
	}
}

// RelatedStatus satisfies the condition evaluator's related-status lookup
// for the (shipments, contract_id) relation: the most-advanced status of
// the shipments linked to entityID (a contract id).
func (l *Loader) RelatedStatus(ctx context.Context, table, linkField, entityID string) (string, bool, error) {
	if table != "shipments" || linkField != "contract_id" {
		return "", false, fmt.Errorf("snapshot: unsupported relation %s.%s", table, linkField)
	}
	statuses, err := l.Store.LinkedShipmentStatuses(ctx, entityID)
	if err != nil {
		return "", false, err
	}
	if len(statuses) == 0 {
		return "", false, nil
	}
	return MostAdvanced(statuses), true, nil
}

// MostAdvanced reduces shipment statuses to the one with the highest
// ordinal. Unknown statuses rank below every known stage. Empty input
// yields "".
func MostAdvanced(statuses []string) string {
	best := ""
	bestOrd := -1
	for _, st := range statuses {
		ord, ok := status.Ordinal(domain.EntityShipment, st)
		if !ok {
			ord = -1
		}
		if ord > bestOrd || best == "" {
			best = st
			bestOrd = ord
		}
	}
	return best
}

// FromShipment projects a shipment row into a flat snapshot.
func FromShipment(sh domain.Shipment) *Snapshot {
	fields := map[string]any{
		"status":                     sh.Status,
		"transaction_type":           sh.TransactionType,
		"contract_ship_date":         timeField(sh.ContractShipDate),
		"eta":                        timeField(sh.ETA),
		"arrival_date":               timeField(sh.ArrivalDate),
		"customs_clearance_date":     timeField(sh.CustomsClearanceDate),
		"total_value_usd":            sh.TotalValueUSD,
		"paid_value_usd":             sh.PaidValueUSD,
		"balance_value_usd":          sh.BalanceValueUSD,
		"free_time_days":             float64(sh.FreeTimeDays),
		"doc_count":                  float64(sh.DocCount),
		"booking_shared":             sh.BookingShared,
		"goods_loaded_notified":      sh.GoodsLoadedNotified,
		"original_docs_sent":         sh.OriginalDocsSent,
		"draft_docs_approved":        sh.DraftDocsApproved,
		"quality_feedback_requested": sh.QualityFeedbackRequested,
		"last_notification_check":    timeField(sh.LastNotificationCheck),
	}
	if sh.ContractID != nil {
		fields["contract_id"] = *sh.ContractID
	} else {
		fields["contract_id"] = nil
	}
	return &Snapshot{
		EntityType: domain.EntityShipment,
		EntityID:   sh.ID,
		Status:     sh.Status,
		Fields:     fields,
		DocCount:   sh.DocCount,
	}
}

// FromContract projects a contract row plus its most-advanced linked
// shipment status into a snapshot.
func FromContract(c domain.Contract, maxShipmentStatus string) *Snapshot {
	return &Snapshot{
		EntityType: domain.EntityContract,
		EntityID:   c.ID,
		Status:     c.Status,
		Fields: map[string]any{
			"status":                  c.Status,
			"signed_at":               timeField(c.SignedAt),
			"buyer_id":                c.BuyerID,
			"seller_id":               c.SellerID,
			"max_shipment_status":     maxShipmentStatus,
			"last_notification_check": timeField(c.LastNotificationCheck),
		},
		MaxShipmentStatus:    maxShipmentStatus,
		HasShipmentAggregate: true,
	}
}

// FromQualityIncident projects a quality incident row into a snapshot.
func FromQualityIncident(q domain.QualityIncident) *Snapshot {
	fields := map[string]any{
		"status":      q.Status,
		"hold_status": q.HoldStatus,
	}
	if q.ShipmentID != nil {
		fields["shipment_id"] = *q.ShipmentID
	} else {
		fields["shipment_id"] = nil
	}
	return &Snapshot{
		EntityType: domain.EntityQualityIncident,
		EntityID:   q.ID,
		Status:     q.Status,
		Fields:     fields,
	}
}

// timeField normalizes an optional timestamp for the flat view: nil stays
// nil (so field_not_null sees a null), otherwise the time value itself.
func timeField(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
