package condition

import (
	"context"
	"log/slog"

	"github.com/denizcargo/opswatch/internal/domain"
	"github.com/denizcargo/opswatch/internal/snapshot"
	"github.com/denizcargo/opswatch/internal/status"
)

// RelatedStatusFunc resolves the most-advanced status of entities linked
// to the snapshot's entity, for related_entity_status leaves that cannot
// be answered from a precomputed aggregate. The boolean is false when no
// linked entity exists.
type RelatedStatusFunc func(ctx context.Context, table, linkField, entityID string) (string, bool, error)

// Evaluator evaluates condition trees against entity snapshots.
//
// Evaluation never returns an error: anything that cannot be resolved -
// unknown node shapes, unsupported relations, lookup failures - evaluates
// to false so an unrecognized rule can never auto-complete a
// notification.
type Evaluator struct {
	// Related answers related_entity_status leaves when the snapshot has
	// no precomputed aggregate. Nil disables the fallback (leaf evaluates
	// false).
	Related RelatedStatusFunc
}

// Evaluate recursively evaluates a condition tree against a snapshot.
func (e *Evaluator) Evaluate(ctx context.Context, c Condition, snap *snapshot.Snapshot) bool {
	switch c.Kind() {
	case KindAnyOf:
		for _, sub := range c.AnyOf {
			if e.Evaluate(ctx, sub, snap) {
				return true
			}
		}
		return false

	case KindAllOf:
		for _, sub := range c.AllOf {
			if !e.Evaluate(ctx, sub, snap) {
				return false
			}
		}
		return true

	case KindStatusIn:
		for _, want := range c.StatusIn {
			if snap.Status == want {
				return true
			}
		}
		return false

	case KindStatusGTE:
		return e.evalStatusGTE(*c.StatusGTE, snap)

	case KindFieldNotNull:
		return snap.NotNull(*c.FieldNotNull)

	case KindFieldLTE:
		return snap.Number(c.FieldLTE.Field) <= c.FieldLTE.Value

	case KindFieldGTE:
		return snap.Number(c.FieldGTE.Field) >= c.FieldGTE.Value

	case KindDocCountGTE:
		return snap.DocCount >= c.DocCountGTE.Min

	case KindRelatedEntityStatus:
		return e.evalRelated(ctx, *c.RelatedEntityStatus, snap)

	default:
		slog.Warn("unrecognized condition node, evaluating false",
			"entity_type", snap.EntityType,
			"entity_id", snap.EntityID,
		)
		return false
	}
}

// evalStatusGTE compares the snapshot's status against a threshold in the
// entity's own ordinal table. A contract snapshot carrying a
// most-advanced-shipment aggregate compares that aggregate (in the
// shipment table) instead of the contract's own status. When either side
// is unknown to the owning table, the cross-table precedence chain
// resolves both sides as a last resort.
func (e *Evaluator) evalStatusGTE(threshold string, snap *snapshot.Snapshot) bool {
	entityType := snap.EntityType
	current := snap.Status
	if snap.HasShipmentAggregate {
		if snap.MaxShipmentStatus == "" {
			return false
		}
		entityType = domain.EntityShipment
		current = snap.MaxShipmentStatus
	}

	have, okHave := status.Ordinal(entityType, current)
	want, okWant := status.Ordinal(entityType, threshold)
	if okHave && okWant {
		return have >= want
	}

	// Bare-status fallback: owning table is ambiguous, resolve through
	// the documented precedence chain.
	have, okHave = status.ResolveOrdinal(current)
	want, okWant = status.ResolveOrdinal(threshold)
	if !okHave || !okWant {
		slog.Warn("status_gte with unresolvable status, evaluating false",
			"current", current,
			"threshold", threshold,
			"entity_type", snap.EntityType,
		)
		return false
	}
	return have >= want
}

// evalRelated evaluates a related_entity_status leaf. Only the
// (shipments, contract_id) relation is supported; anything else fails
// closed.
func (e *Evaluator) evalRelated(ctx context.Context, rel RelatedClause, snap *snapshot.Snapshot) bool {
	if rel.Table != "shipments" || rel.LinkField != "contract_id" {
		slog.Warn("unsupported related_entity_status relation, evaluating false",
			"table", rel.Table,
			"link_field", rel.LinkField,
		)
		return false
	}

	related, ok := e.relatedStatus(ctx, rel, snap)
	if !ok {
		return false
	}

	if rel.StatusGTE != "" {
		return status.GTE(domain.EntityShipment, related, rel.StatusGTE)
	}
	for _, want := range rel.StatusIn {
		if related == want {
			return true
		}
	}
	return false
}

// relatedStatus prefers the snapshot's precomputed aggregate and falls
// back to the injected lookup.
func (e *Evaluator) relatedStatus(ctx context.Context, rel RelatedClause, snap *snapshot.Snapshot) (string, bool) {
	if snap.HasShipmentAggregate {
		if snap.MaxShipmentStatus == "" {
			return "", false
		}
		return snap.MaxShipmentStatus, true
	}

	if e.Related == nil {
		return "", false
	}
	related, found, err := e.Related(ctx, rel.Table, rel.LinkField, snap.EntityID)
	if err != nil {
		slog.Warn("related status lookup failed, evaluating false",
			"table", rel.Table,
			"entity_id", snap.EntityID,
			"error", err,
		)
		return "", false
	}
	return related, found
}
