package domain

import "time"

// Severity classifies how urgently a notification needs attention.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// EntityType identifies which entity family a progression rule targets.
type EntityType string

const (
	EntityShipment        EntityType = "shipment"
	EntityContract        EntityType = "contract"
	EntityQualityIncident EntityType = "quality_incident"
)

// ValidEntityTypes defines the allowed entity types for progression rules.
var ValidEntityTypes = map[EntityType]bool{
	EntityShipment:        true,
	EntityContract:        true,
	EntityQualityIncident: true,
}

// Transaction types discriminate buyer-side from seller-side shipments.
// Incoming shipments run the buyer workflow checks, outgoing shipments
// run the seller workflow checks.
const (
	TransactionIncoming = "incoming"
	TransactionOutgoing = "outgoing"
)

// Bilingual holds the English and Turkish rendering of a user-facing text.
// Both fields are always populated for generated notifications.
type Bilingual struct {
	EN string `json:"en"`
	TR string `json:"tr"`
}

// Notification is an actionable or informational record tied to at most
// one shipment or contract (or neither, for global notices).
//
// Lifecycle: OPEN -> COMPLETED (manual, external surface) or
// OPEN -> AUTO_COMPLETED (progression engine). Both states are terminal;
// a notification never returns to OPEN and is never deleted by the engine.
type Notification struct {
	ID       string
	Type     string // Stable key identifying the business rule that produced it
	Severity Severity

	Title      Bilingual
	Message    Bilingual
	ActionText Bilingual

	DueDate        *time.Time
	AutoEscalateAt *time.Time

	// At most one of ShipmentID/ContractID is set (enforced by the store).
	ShipmentID *string
	ContractID *string

	IsRead          bool
	ActionRequired  bool
	ActionCompleted bool
	AutoCompleted   bool

	// Auto-completion audit trail, populated by the progression engine.
	AutoCompletedRuleID *string
	AutoCompletedReason string
	AutoCompletedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the notification is still pending action.
func (n *Notification) Open() bool {
	return !n.ActionCompleted && !n.AutoCompleted
}

// ProgressionRule is an admin-authored declarative rule. When its condition
// tree evaluates true against the target entity's snapshot, matching open
// notifications of NotificationType are auto-completed.
//
// Conditions holds the raw JSON condition document as stored; it is parsed
// at evaluation time so a malformed document degrades to a non-match
// instead of poisoning rule loading.
type ProgressionRule struct {
	ID               string
	NotificationType string
	EntityType       EntityType
	Conditions       []byte // JSON condition tree
	Priority         int    // Lower evaluates first
	IsActive         bool
	Description      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RuleStat summarizes auto-completion activity for one progression rule.
type RuleStat struct {
	RuleID           string
	NotificationType string
	AutoCompleted    int64
	LastMatchedAt    *time.Time
}

// Shipment is the read projection of a shipment row used by the
// notification generator and snapshot loader.
type Shipment struct {
	ID              string
	ContractID      *string
	Status          string
	TransactionType string

	ContractShipDate     *time.Time
	ETA                  *time.Time
	ArrivalDate          *time.Time
	CustomsClearanceDate *time.Time

	TotalValueUSD   float64
	PaidValueUSD    float64
	BalanceValueUSD float64

	FreeTimeDays int
	DocCount     int // Qualifying shipping documents on file

	// Seller-workflow progress flags. Stamped by the generator (or the
	// external workflow) to make fire-once checks idempotent.
	BookingShared            bool
	GoodsLoadedNotified      bool
	OriginalDocsSent         bool
	DraftDocsApproved        bool
	QualityFeedbackRequested bool

	LastNotificationCheck *time.Time
	CreatedAt             time.Time
}

// Contract is the read projection of a contract row.
type Contract struct {
	ID       string
	Status   string
	SignedAt *time.Time
	BuyerID  string
	SellerID string

	LastNotificationCheck *time.Time
	CreatedAt             time.Time
}

// QualityIncident is the read projection of a quality incident row.
type QualityIncident struct {
	ID         string
	ShipmentID *string
	Status     string
	HoldStatus string
}

// PaymentScheduleEntry is one row of a contract's ordered payment plan.
// Due dates derive from the contract signature date: the ON_BOOKING basis
// falls due DaysAfter days after signing, every other basis defaults to
// seven days after signing.
type PaymentScheduleEntry struct {
	ContractID string
	Seq        int
	Basis      string
	DaysAfter  int
	Percent    float64
	IsDeferred bool
}

// PaymentBasisOnBooking is the only schedule basis with an explicit
// due-date rule; all others use the default offset.
const PaymentBasisOnBooking = "ON_BOOKING"
