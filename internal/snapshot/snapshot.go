// Package snapshot builds transient read projections of shipments,
// contracts, and quality incidents for rule evaluation.
//
// A Snapshot is a flat key/value view plus the derived aggregates rules
// need (a contract's most-advanced child-shipment status, a shipment's
// qualifying-document count). Snapshots are recomputed on every
// evaluation and never persisted.
package snapshot

import "github.com/denizcargo/opswatch/internal/domain"

// Snapshot is a flat projection of one entity at evaluation time.
type Snapshot struct {
	EntityType domain.EntityType
	EntityID   string
	Status     string

	// Fields holds the flat key/value view. Values are strings, float64,
	// bool, time.Time, or nil for null columns.
	Fields map[string]any

	// DocCount is the qualifying-document count (shipments only).
	DocCount int

	// MaxShipmentStatus is the most-advanced status among a contract's
	// linked shipments. HasShipmentAggregate distinguishes "no linked
	// shipments" from "aggregate not computed for this entity type".
	MaxShipmentStatus    string
	HasShipmentAggregate bool
}

// Field returns the raw value for a field name.
func (s *Snapshot) Field(name string) (any, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

// NotNull reports whether a field is present and not null or empty-string.
func (s *Snapshot) NotNull(name string) bool {
	v, ok := s.Fields[name]
	if !ok || v == nil {
		return false
	}
	if str, isStr := v.(string); isStr && str == "" {
		return false
	}
	return true
}

// Number returns a field coerced to float64. Missing, null, or
// non-numeric fields are treated as 0.
func (s *Snapshot) Number(name string) float64 {
	v, ok := s.Fields[name]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
