package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizcargo/opswatch/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})
	return st
}

func strPtr(s string) *string { return &s }

func baseNotification(id, typ string, shipmentID *string) *domain.Notification {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	return &domain.Notification{
		ID:             id,
		Type:           typ,
		Severity:       domain.SeverityWarning,
		Title:          domain.Bilingual{EN: "title", TR: "başlık"},
		Message:        domain.Bilingual{EN: "message", TR: "mesaj"},
		ActionText:     domain.Bilingual{EN: "act", TR: "yap"},
		ShipmentID:     shipmentID,
		ActionRequired: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestOpen_CreatesSchemaAndReopens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reopen.db")

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// Reopening applies migrations idempotently.
	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()

	count, err := st.CountOpenNotifications(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestInsertNotification_DedupIsAtomic(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	inserted, err := st.InsertNotification(ctx, baseNotification("n1", "shipping_deadline", strPtr("SHP-1")))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same (type, entity) while the first is open: the partial unique
	// index swallows the insert.
	inserted, err = st.InsertNotification(ctx, baseNotification("n2", "shipping_deadline", strPtr("SHP-1")))
	require.NoError(t, err)
	assert.False(t, inserted)

	// Different entity or different type both pass.
	inserted, err = st.InsertNotification(ctx, baseNotification("n3", "shipping_deadline", strPtr("SHP-2")))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = st.InsertNotification(ctx, baseNotification("n4", "documents_needed", strPtr("SHP-1")))
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestInsertNotification_DedupReleasedByCompletion(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.InsertNotification(ctx, baseNotification("n1", "shipping_deadline", strPtr("SHP-1")))
	require.NoError(t, err)

	require.NoError(t, st.AutoComplete(ctx, "n1", "rule-1", "done", time.Now()))

	// The completed row leaves the partial index; a fresh notification of
	// the same type can open.
	inserted, err := st.InsertNotification(ctx, baseNotification("n2", "shipping_deadline", strPtr("SHP-1")))
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestInsertNotification_RejectsDualEntity(t *testing.T) {
	st := newTestStore(t)
	n := baseNotification("n1", "shipping_deadline", strPtr("SHP-1"))
	n.ContractID = strPtr("C-1")

	_, err := st.InsertNotification(context.Background(), n)
	assert.Error(t, err, "a notification may target a shipment or a contract, not both")
}

func TestNotificationExists_OnlyCountsOpen(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.InsertNotification(ctx, baseNotification("n1", "shipping_deadline", strPtr("SHP-1")))
	require.NoError(t, err)

	exists, err := st.NotificationExists(ctx, "shipping_deadline", strPtr("SHP-1"), nil)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, st.AutoComplete(ctx, "n1", "rule-1", "done", time.Now()))

	exists, err = st.NotificationExists(ctx, "shipping_deadline", strPtr("SHP-1"), nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPendingNotifications_FiltersAndOrders(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	old := baseNotification("n-old", "shipping_deadline", strPtr("SHP-1"))
	old.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	old.UpdatedAt = old.CreatedAt
	_, err := st.InsertNotification(ctx, old)
	require.NoError(t, err)

	recent := baseNotification("n-recent", "documents_needed", strPtr("SHP-1"))
	recent.CreatedAt = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	recent.UpdatedAt = recent.CreatedAt
	_, err = st.InsertNotification(ctx, recent)
	require.NoError(t, err)

	newest := baseNotification("n-newest", "customs_docs_due", strPtr("SHP-1"))
	newest.CreatedAt = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	newest.UpdatedAt = newest.CreatedAt
	_, err = st.InsertNotification(ctx, newest)
	require.NoError(t, err)

	info := baseNotification("n-info", "quality_incident_closed", strPtr("SHP-1"))
	info.ActionRequired = false
	info.CreatedAt = newest.CreatedAt
	_, err = st.InsertNotification(ctx, info)
	require.NoError(t, err)

	since := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	pending, err := st.PendingNotifications(ctx, since, 500)
	require.NoError(t, err)

	// The old row falls outside the window; the info row is not
	// action-required. Newest first.
	require.Len(t, pending, 2)
	assert.Equal(t, "n-newest", pending[0].ID)
	assert.Equal(t, "n-recent", pending[1].ID)

	limited, err := st.PendingNotifications(ctx, since, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "n-newest", limited[0].ID)
}

func TestAutoComplete_StampsAuditAndGuards(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.InsertNotification(ctx, baseNotification("n1", "shipping_deadline", strPtr("SHP-1")))
	require.NoError(t, err)

	at := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	require.NoError(t, st.AutoComplete(ctx, "n1", "rule-1", "shipment sailed", at))

	n, err := st.GetNotification(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, n.AutoCompleted)
	assert.True(t, n.ActionCompleted)
	assert.True(t, n.IsRead)
	assert.False(t, n.Open())
	require.NotNil(t, n.AutoCompletedRuleID)
	assert.Equal(t, "rule-1", *n.AutoCompletedRuleID)
	assert.Equal(t, "shipment sailed", n.AutoCompletedReason)
	require.NotNil(t, n.AutoCompletedAt)
	assert.Equal(t, at, n.AutoCompletedAt.UTC())

	// A second rule cannot re-complete or overwrite the audit trail.
	require.NoError(t, st.AutoComplete(ctx, "n1", "rule-2", "other reason", at.Add(time.Hour)))
	n, err = st.GetNotification(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "rule-1", *n.AutoCompletedRuleID)
	assert.Equal(t, "shipment sailed", n.AutoCompletedReason)
}

func TestCountOpenNotifications_TypeFilter(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.InsertNotification(ctx, baseNotification("n1", "shipping_deadline", strPtr("SHP-1")))
	require.NoError(t, err)
	_, err = st.InsertNotification(ctx, baseNotification("n2", "documents_needed", strPtr("SHP-1")))
	require.NoError(t, err)

	count, err := st.CountOpenNotifications(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = st.CountOpenNotifications(ctx, "documents_needed")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
