package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizcargo/opswatch/internal/domain"
	"github.com/denizcargo/opswatch/internal/store"
	"github.com/denizcargo/opswatch/internal/testutil"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}

func TestGenerator_ContractChecks(t *testing.T) {
	st := testutil.OpenStore(t)
	ctx := context.Background()

	signed := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.InsertContract(ctx, domain.Contract{
		ID:        "C-1",
		Status:    "active",
		SignedAt:  &signed,
		BuyerID:   "B-1",
		SellerID:  "S-1",
		CreatedAt: signed,
	}))
	require.NoError(t, st.InsertPaymentScheduleEntry(ctx, domain.PaymentScheduleEntry{
		ContractID: "C-1", Seq: 1, Basis: domain.PaymentBasisOnBooking, DaysAfter: 5, Percent: 30,
	}))

	gen := New(st, WithNow(fixedNow))

	// contract_created, contract_created_seller, and advance_payment_due
	// (due in 3 days, warning tier) all fire.
	created, err := gen.CheckContractNotifications(ctx, "C-1")
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	exists, err := st.NotificationExists(ctx, domain.TypeAdvancePaymentDue, nil, testutil.Str("C-1"))
	require.NoError(t, err)
	assert.True(t, exists)

	// Re-running creates nothing: every candidate dedups against its open
	// predecessor.
	created, err = gen.CheckContractNotifications(ctx, "C-1")
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	c, err := st.GetContract(ctx, "C-1")
	require.NoError(t, err)
	require.NotNil(t, c.LastNotificationCheck)
	assert.Equal(t, fixedNow().UTC().Truncate(time.Second), c.LastNotificationCheck.UTC())
}

func TestGenerator_BuyerShipmentPass(t *testing.T) {
	st := testutil.OpenStore(t)
	ctx := context.Background()

	shipDate := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.InsertShipment(ctx, domain.Shipment{
		ID:               "SHP-1",
		Status:           "planning",
		TransactionType:  domain.TransactionIncoming,
		ContractShipDate: &shipDate,
		CreatedAt:        fixedNow().AddDate(0, 0, -10),
	}))

	gen := New(st, WithNow(fixedNow))

	created, err := gen.CheckShipmentNotifications(ctx, "SHP-1")
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	n := mustFindOpen(t, st, domain.TypeShippingDeadline)
	assert.Equal(t, domain.SeverityError, n.Severity)
	assert.True(t, n.ActionRequired)
	assert.True(t, n.Open())
	require.NotNil(t, n.ShipmentID)
	assert.Equal(t, "SHP-1", *n.ShipmentID)
	assert.Nil(t, n.ContractID)
	assert.NotEmpty(t, n.Title.EN)
	assert.NotEmpty(t, n.Title.TR)

	created, err = gen.CheckShipmentNotifications(ctx, "SHP-1")
	require.NoError(t, err)
	assert.Equal(t, 0, created, "open notification must suppress a duplicate")
}

func TestGenerator_SellerShipmentPass(t *testing.T) {
	st := testutil.OpenStore(t)
	ctx := context.Background()

	signed := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.InsertContract(ctx, domain.Contract{
		ID: "C-2", Status: "shipping", SignedAt: &signed,
		BuyerID: "B-1", SellerID: "S-1", CreatedAt: signed,
	}))
	require.NoError(t, st.InsertPaymentScheduleEntry(ctx, domain.PaymentScheduleEntry{
		ContractID: "C-2", Seq: 1, Basis: domain.PaymentBasisOnBooking, DaysAfter: 5, Percent: 100,
	}))

	arrival := time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.InsertShipment(ctx, domain.Shipment{
		ID:              "SHP-2",
		ContractID:      testutil.Str("C-2"),
		Status:          "arrived",
		TransactionType: domain.TransactionOutgoing,
		ArrivalDate:     &arrival,
		BalanceValueUSD: 5000,
		CreatedAt:       arrival,
	}))

	gen := New(st, WithNow(fixedNow))

	// payment_reminder_3d (schedule due 2026-03-13) and
	// quality_feedback_request (arrived 12 days ago) fire.
	created, err := gen.CheckShipmentNotifications(ctx, "SHP-2")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	reminder := mustFindOpen(t, st, domain.TypePaymentReminder3D)
	assert.Equal(t, domain.SeverityWarning, reminder.Severity)

	// The feedback request stamps its shipment flag on emit.
	sh, err := st.GetShipment(ctx, "SHP-2")
	require.NoError(t, err)
	assert.True(t, sh.QualityFeedbackRequested)

	created, err = gen.CheckShipmentNotifications(ctx, "SHP-2")
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestGenerator_FullPassStampsAndCounts(t *testing.T) {
	st := testutil.OpenStore(t)
	ctx := context.Background()

	shipDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.InsertShipment(ctx, domain.Shipment{
		ID:               "SHP-3",
		Status:           "planning",
		TransactionType:  domain.TransactionIncoming,
		ContractShipDate: &shipDate,
		CreatedAt:        fixedNow().AddDate(0, 0, -2),
	}))
	// Terminal shipments never enter the batch.
	require.NoError(t, st.InsertShipment(ctx, domain.Shipment{
		ID:              "SHP-4",
		Status:          "closed",
		TransactionType: domain.TransactionIncoming,
		CreatedAt:       fixedNow().AddDate(0, 0, -2),
	}))

	gen := New(st, WithNow(fixedNow))
	created := gen.CheckAndGenerateNotifications(ctx)
	assert.Equal(t, 1, created)

	sh, err := st.GetShipment(ctx, "SHP-3")
	require.NoError(t, err)
	assert.NotNil(t, sh.LastNotificationCheck)

	closed, err := st.GetShipment(ctx, "SHP-4")
	require.NoError(t, err)
	assert.Nil(t, closed.LastNotificationCheck)
}

func TestGenerator_QualityEntryPoints(t *testing.T) {
	st := testutil.OpenStore(t)
	ctx := context.Background()

	require.NoError(t, st.InsertShipment(ctx, domain.Shipment{
		ID:              "SHP-5",
		Status:          "delivered",
		TransactionType: domain.TransactionIncoming,
		CreatedAt:       fixedNow(),
	}))
	incident := domain.QualityIncident{
		ID:         "QI-1",
		ShipmentID: testutil.Str("SHP-5"),
		Status:     "draft",
		HoldStatus: "blocked",
	}
	require.NoError(t, st.InsertQualityIncident(ctx, incident))

	gen := New(st, WithNow(fixedNow))

	inserted, err := gen.NotifyQualityIncidentCreated(ctx, incident)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same open incident notice dedups.
	inserted, err = gen.NotifyQualityIncidentCreated(ctx, incident)
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = gen.NotifyHoldStatusChanged(ctx, incident)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = gen.CreateQualityFeedbackReminder(ctx, "SHP-5")
	require.NoError(t, err)
	assert.True(t, inserted)

	n := mustFindOpen(t, st, domain.TypeQualityIncidentCreated)
	require.NotNil(t, n.ShipmentID)
	assert.Equal(t, "SHP-5", *n.ShipmentID)
}

func TestGenerator_SeverityEscalatesAcrossDays(t *testing.T) {
	st := testutil.OpenStore(t)
	ctx := context.Background()

	clock := testutil.NewWallClock(testutil.MustTime("2026-03-05T09:00:00Z"))
	require.NoError(t, st.InsertShipment(ctx, domain.Shipment{
		ID:               "SHP-6",
		Status:           "planning",
		TransactionType:  domain.TransactionIncoming,
		ContractShipDate: testutil.Time(testutil.MustTime("2026-03-11T00:00:00Z")),
		CreatedAt:        clock.Now(),
	}))

	gen := New(st, WithNow(clock.Now))

	// Six days out: warning tier.
	created, err := gen.CheckShipmentNotifications(ctx, "SHP-6")
	require.NoError(t, err)
	require.Equal(t, 1, created)

	n := mustFindOpen(t, st, domain.TypeShippingDeadline)
	assert.Equal(t, domain.SeverityWarning, n.Severity)

	// The operator clears it, four days pass, the deadline is now inside
	// the critical band: a fresh error-tier notification opens.
	require.NoError(t, st.AutoComplete(ctx, n.ID, "manual", "handled", clock.Now()))
	clock.Advance(4 * 24 * time.Hour)

	created, err = gen.CheckShipmentNotifications(ctx, "SHP-6")
	require.NoError(t, err)
	require.Equal(t, 1, created)

	escalated := mustFindOpen(t, st, domain.TypeShippingDeadline)
	assert.Equal(t, domain.SeverityError, escalated.Severity)
	assert.NotEqual(t, n.ID, escalated.ID)
}

// mustFindOpen returns the single open notification of the given type.
func mustFindOpen(t *testing.T, st *store.Store, typ string) domain.Notification {
	t.Helper()
	pending, err := st.PendingNotifications(context.Background(), fixedNow().AddDate(0, 0, -30), 500)
	require.NoError(t, err)
	for _, n := range pending {
		if n.Type == typ {
			return n
		}
	}
	t.Fatalf("no open notification of type %s", typ)
	return domain.Notification{}
}
