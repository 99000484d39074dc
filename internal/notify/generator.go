// Package notify implements the notification generator: a library of
// lifecycle-stage rule checks that inspect live shipment and contract
// state and emit bilingual, severity-tiered, deduplicated action notices.
//
// Error handling follows three isolation levels: a single check failing
// is logged and skipped, a single entity failing is logged and the batch
// continues, and the top-level scan never reports an error to its caller.
// A failed pass simply produces fewer notifications and is retried on the
// next scheduler tick.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/denizcargo/opswatch/internal/domain"
	"github.com/denizcargo/opswatch/internal/store"
)

// Batch limits bound each scan's load. They act as admission control:
// anything not reached this pass is picked up on a later tick.
const (
	DefaultContractBatch = 30
	DefaultShipmentBatch = 50
)

// Generator runs the lifecycle rule checks.
type Generator struct {
	store *store.Store
	now   func() time.Time

	contractBatch int
	shipmentBatch int
}

// Option configures a Generator.
type Option func(*Generator)

// WithNow overrides the wall clock. Used by tests to pin "today".
func WithNow(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithBatchLimits overrides the per-scan entity batch sizes.
func WithBatchLimits(contracts, shipments int) Option {
	return func(g *Generator) {
		g.contractBatch = contracts
		g.shipmentBatch = shipments
	}
}

// New creates a Generator backed by the given store.
func New(st *store.Store, opts ...Option) *Generator {
	g := &Generator{
		store:         st,
		now:           time.Now,
		contractBatch: DefaultContractBatch,
		shipmentBatch: DefaultShipmentBatch,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckAndGenerateNotifications runs one full generation pass: a bounded,
// priority-ordered batch of contracts, then of shipments, each through
// its ordered check list. Returns the number of notifications created.
// Never returns an error; failures are logged and skipped.
func (g *Generator) CheckAndGenerateNotifications(ctx context.Context) int {
	now := g.now()
	created := 0

	contracts, err := g.store.RecentOpenContracts(ctx, g.contractBatch)
	if err != nil {
		slog.Error("contract batch load failed", "error", err)
	} else {
		for _, c := range contracts {
			created += g.runContractChecks(ctx, c, now)
		}
	}

	shipments, err := g.store.ShipmentsDueForCheck(ctx, now, g.shipmentBatch)
	if err != nil {
		slog.Error("shipment batch load failed", "error", err)
	} else {
		for _, sh := range shipments {
			created += g.runShipmentChecks(ctx, sh, now)
		}
	}

	slog.Info("notification scan complete",
		"contracts", len(contracts),
		"shipments", len(shipments),
		"created", created,
	)
	return created
}

// CheckContractNotifications runs the contract checks for a single
// contract, on demand. Returns the number of notifications created.
func (g *Generator) CheckContractNotifications(ctx context.Context, contractID string) (int, error) {
	c, err := g.store.GetContract(ctx, contractID)
	if err != nil {
		return 0, fmt.Errorf("check contract notifications: %w", err)
	}
	return g.runContractChecks(ctx, c, g.now()), nil
}

// CheckShipmentNotifications runs the shipment checks for a single
// shipment, on demand. Returns the number of notifications created.
func (g *Generator) CheckShipmentNotifications(ctx context.Context, shipmentID string) (int, error) {
	sh, err := g.store.GetShipment(ctx, shipmentID)
	if err != nil {
		return 0, fmt.Errorf("check shipment notifications: %w", err)
	}
	return g.runShipmentChecks(ctx, sh, g.now()), nil
}

// runContractChecks runs every contract check against one contract.
// Check failures are logged and do not abort the remaining checks.
func (g *Generator) runContractChecks(ctx context.Context, c domain.Contract, now time.Time) int {
	created := 0
	for _, chk := range contractChecks {
		cand, err := chk.fn(ctx, g, c, now)
		if err != nil {
			slog.Warn("contract check failed",
				"check", chk.name, "contract_id", c.ID, "error", err)
			continue
		}
		if cand == nil {
			continue
		}
		if g.emit(ctx, cand) {
			created++
		}
	}
	if err := g.store.StampNotificationCheck(ctx, domain.EntityContract, c.ID, now); err != nil {
		slog.Warn("stamp contract check failed", "contract_id", c.ID, "error", err)
	}
	return created
}

// runShipmentChecks runs the buyer-side or seller-side check list against
// one shipment, selected by the transaction type discriminator.
func (g *Generator) runShipmentChecks(ctx context.Context, sh domain.Shipment, now time.Time) int {
	checks := buyerShipmentChecks
	if sh.TransactionType == domain.TransactionOutgoing {
		checks = sellerShipmentChecks
	}

	created := 0
	for _, chk := range checks {
		cand, err := chk.fn(ctx, g, sh, now)
		if err != nil {
			slog.Warn("shipment check failed",
				"check", chk.name, "shipment_id", sh.ID, "error", err)
			continue
		}
		if cand == nil {
			continue
		}
		if !g.emit(ctx, cand) {
			continue
		}
		created++
		if cand.onEmitted != nil {
			if err := cand.onEmitted(ctx); err != nil {
				slog.Warn("post-emit hook failed",
					"check", chk.name, "shipment_id", sh.ID, "error", err)
			}
		}
	}
	if err := g.store.StampNotificationCheck(ctx, domain.EntityShipment, sh.ID, now); err != nil {
		slog.Warn("stamp shipment check failed", "shipment_id", sh.ID, "error", err)
	}
	return created
}

// candidate is a notification a check wants to emit. The generator fills
// in identity, timestamps, and dedup.
type candidate struct {
	Type     string
	Severity domain.Severity

	Title      domain.Bilingual
	Message    domain.Bilingual
	ActionText domain.Bilingual

	DueDate        *time.Time
	AutoEscalateAt *time.Time

	ShipmentID *string
	ContractID *string

	// Informational notices clear this; everything else requires action
	// and is visible to the progression engine.
	actionRequired bool

	// onEmitted runs once after a successful insert. Used by fire-once
	// checks that stamp an entity flag.
	onEmitted func(ctx context.Context) error
}

type contractCheck struct {
	name string
	fn   func(ctx context.Context, g *Generator, c domain.Contract, now time.Time) (*candidate, error)
}

type shipmentCheck struct {
	name string
	fn   func(ctx context.Context, g *Generator, sh domain.Shipment, now time.Time) (*candidate, error)
}

// emit inserts a candidate unless an open notification of the same type
// already targets the same entity. The exists check is a cheap pre-filter;
// the store's partial unique index makes the insert itself race-free, so
// two overlapping passes cannot double-emit.
func (g *Generator) emit(ctx context.Context, cand *candidate) bool {
	exists, err := g.store.NotificationExists(ctx, cand.Type, cand.ShipmentID, cand.ContractID)
	if err != nil {
		slog.Warn("dedup check failed", "type", cand.Type, "error", err)
		return false
	}
	if exists {
		return false
	}

	now := g.now()
	n := &domain.Notification{
		ID:             uuid.NewString(),
		Type:           cand.Type,
		Severity:       cand.Severity,
		Title:          cand.Title,
		Message:        cand.Message,
		ActionText:     cand.ActionText,
		DueDate:        cand.DueDate,
		AutoEscalateAt: cand.AutoEscalateAt,
		ShipmentID:     cand.ShipmentID,
		ContractID:     cand.ContractID,
		ActionRequired: cand.actionRequired,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	inserted, err := g.store.InsertNotification(ctx, n)
	if err != nil {
		slog.Warn("notification insert failed", "type", cand.Type, "error", err)
		return false
	}
	if inserted {
		slog.Info("notification created",
			"type", n.Type,
			"severity", n.Severity,
			"shipment_id", strDeref(n.ShipmentID),
			"contract_id", strDeref(n.ContractID),
		)
	}
	return inserted
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
