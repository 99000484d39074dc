// Package status holds the fixed lifecycle status ordinal tables.
//
// Each entity family (shipment, contract, quality incident, customs
// clearance) has its own table mapping status strings to comparable
// integers. The tables exist only to answer ">= threshold" questions for
// the condition evaluator and the generator's applicability guards; they
// carry no other semantics.
package status

import (
	"strings"

	"github.com/denizcargo/opswatch/internal/domain"
)

// Shipment lifecycle stages in workflow order. Customs clearance progress
// is tracked in its own table (clearance is a parallel process keyed by
// customs_clearance_date, not a shipment stage).
const (
	ShipmentPlanning  = "planning"
	ShipmentBooked    = "booked"
	ShipmentLoaded    = "loaded"
	ShipmentSailed    = "sailed"
	ShipmentArrived   = "arrived"
	ShipmentDelivered = "delivered"
	ShipmentReceived  = "received"
	ShipmentClosed    = "closed"
)

// shipmentOrder maps shipment statuses to stage numbers. Legacy aliases
// from the pre-migration schema fold onto the current stage numbers so
// old rows keep comparing correctly.
var shipmentOrder = map[string]int{
	ShipmentPlanning:  0,
	ShipmentBooked:    1,
	ShipmentLoaded:    2,
	ShipmentSailed:    3,
	ShipmentArrived:   4,
	ShipmentDelivered: 5,
	ShipmentReceived:  6,
	ShipmentClosed:    7,

	// Legacy aliases.
	"created":           0,
	"booking_confirmed": 1,
	"in_transit":        3,
	"at_port":           4,
	"completed":         7,
}

// contractOrder maps contract statuses to stage numbers.
var contractOrder = map[string]int{
	"draft":     0,
	"active":    1,
	"shipping":  2,
	"completed": 3,
	"closed":    4,

	// Legacy alias.
	"signed": 1,
}

// qualityIncidentOrder maps quality-incident statuses to stage numbers.
var qualityIncidentOrder = map[string]int{
	"draft":        0,
	"submitted":    1,
	"under_review": 2,
	"resampling":   3,
	"resolved":     4,
	"closed":       5,
}

// customsClearanceOrder maps customs-clearance statuses to stage numbers.
var customsClearanceOrder = map[string]int{
	"pending":    0,
	"declared":   1,
	"inspection": 2,
	"cleared":    3,
}

// tableFor returns the ordinal table owning an entity type.
// Customs clearance has no domain.EntityType of its own; it is reachable
// only through ResolveOrdinal's fallback chain.
func tableFor(entityType domain.EntityType) map[string]int {
	switch entityType {
	case domain.EntityShipment:
		return shipmentOrder
	case domain.EntityContract:
		return contractOrder
	case domain.EntityQualityIncident:
		return qualityIncidentOrder
	default:
		return nil
	}
}

// Ordinal resolves a status string within one entity family's table.
// The lookup is case-insensitive and alias-aware. Returns -1 and false
// for unknown statuses so callers can distinguish "stage zero" from
// "not a known stage".
func Ordinal(entityType domain.EntityType, status string) (int, bool) {
	table := tableFor(entityType)
	if table == nil {
		return -1, false
	}
	ord, ok := table[normalize(status)]
	if !ok {
		return -1, false
	}
	return ord, true
}

// ResolveOrdinal resolves a bare status string whose owning table is
// unknown. The precedence chain is shipment, then contract, then quality
// incident, then customs clearance; a string found in none of them falls
// back to the shipment table (reported as not found).
//
// The chain is fragile if two families ever share a literal status name;
// the order is preserved deliberately and must not be reordered.
func ResolveOrdinal(status string) (int, bool) {
	s := normalize(status)
	for _, table := range []map[string]int{
		shipmentOrder,
		contractOrder,
		qualityIncidentOrder,
		customsClearanceOrder,
	} {
		if ord, ok := table[s]; ok {
			return ord, true
		}
	}
	ord, ok := shipmentOrder[s]
	return ord, ok
}

// GTE reports whether status has reached threshold within one entity
// family. Unknown statuses on either side compare false (fail closed).
func GTE(entityType domain.EntityType, status, threshold string) bool {
	have, ok := Ordinal(entityType, status)
	if !ok {
		return false
	}
	want, ok := Ordinal(entityType, threshold)
	if !ok {
		return false
	}
	return have >= want
}

// Terminal reports whether a shipment status is terminal for the
// notification scan. Terminal shipments are excluded from the periodic
// batch; delivered shipments remain in scope because post-delivery checks
// (quality follow-up) still fire.
func Terminal(shipmentStatus string) bool {
	ord, ok := Ordinal(domain.EntityShipment, shipmentStatus)
	if !ok {
		return false
	}
	return ord >= shipmentOrder[ShipmentReceived]
}

func normalize(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
