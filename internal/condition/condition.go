// Package condition implements the tagged condition tree that progression
// rules are written in, and its evaluator.
//
// A condition document is JSON. Every node carries exactly one recognized
// key; the key determines the variant. Stored documents are authored by
// admins, so parsing and evaluation both fail closed: a malformed or
// unrecognized node evaluates to false and never auto-completes anything.
package condition

import "encoding/json"

// Kind identifies the variant a condition node carries.
type Kind int

const (
	KindUnknown Kind = iota
	KindAnyOf
	KindAllOf
	KindStatusIn
	KindStatusGTE
	KindFieldNotNull
	KindFieldLTE
	KindFieldGTE
	KindDocCountGTE
	KindRelatedEntityStatus
)

// Condition is one node of a condition tree. Exactly one variant field is
// expected to be set. If a stored document carries more than one
// recognized key on a single node, Kind() picks the first in the order
// the Kind constants are declared - this matches the source system's
// implicit dispatch order and is covered by tests; whether multi-key
// nodes are intentional upstream is an open question, so the precedence
// is preserved rather than rejected.
type Condition struct {
	AnyOf []Condition `json:"any_of,omitempty"`
	AllOf []Condition `json:"all_of,omitempty"`

	StatusIn  []string `json:"status_in,omitempty"`
	StatusGTE *string  `json:"status_gte,omitempty"`

	FieldNotNull *string       `json:"field_not_null,omitempty"`
	FieldLTE     *FieldCompare `json:"field_lte,omitempty"`
	FieldGTE     *FieldCompare `json:"field_gte,omitempty"`

	DocCountGTE *DocCountClause `json:"doc_count_gte,omitempty"`

	RelatedEntityStatus *RelatedClause `json:"related_entity_status,omitempty"`
}

// FieldCompare is the payload of field_lte / field_gte leaves.
// Comparison is numeric; a missing or non-numeric snapshot field is
// treated as 0.
type FieldCompare struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
}

// DocCountClause is the payload of a doc_count_gte leaf.
type DocCountClause struct {
	Min int `json:"min"`
}

// RelatedClause is the payload of a related_entity_status leaf. Only the
// (shipments, contract_id) relation is implemented: the most-advanced
// linked shipment's status is compared. Exactly one of StatusGTE or
// StatusIn should be set; when both are present StatusGTE wins.
type RelatedClause struct {
	Table     string   `json:"table"`
	LinkField string   `json:"link_field"`
	StatusGTE string   `json:"status_gte,omitempty"`
	StatusIn  []string `json:"status_in,omitempty"`
}

// Kind returns the variant this node carries, checking recognized keys in
// precedence order. A node with no recognized key is KindUnknown.
func (c Condition) Kind() Kind {
	switch {
	case c.AnyOf != nil:
		return KindAnyOf
	case c.AllOf != nil:
		return KindAllOf
	case c.StatusIn != nil:
		return KindStatusIn
	case c.StatusGTE != nil:
		return KindStatusGTE
	case c.FieldNotNull != nil:
		return KindFieldNotNull
	case c.FieldLTE != nil:
		return KindFieldLTE
	case c.FieldGTE != nil:
		return KindFieldGTE
	case c.DocCountGTE != nil:
		return KindDocCountGTE
	case c.RelatedEntityStatus != nil:
		return KindRelatedEntityStatus
	default:
		return KindUnknown
	}
}

// Parse decodes a stored JSON condition document. Unknown keys are
// tolerated here (they surface as KindUnknown at evaluation); only
// structurally invalid JSON is an error.
func Parse(raw []byte) (Condition, error) {
	var c Condition
	if err := json.Unmarshal(raw, &c); err != nil {
		return Condition{}, err
	}
	return c, nil
}
