package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizcargo/opswatch/internal/domain"
)

func sampleRule(id, typ string, priority int, active bool) domain.ProgressionRule {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return domain.ProgressionRule{
		ID:               id,
		NotificationType: typ,
		EntityType:       domain.EntityShipment,
		Conditions:       []byte(`{"status_gte": "sailed"}`),
		Priority:         priority,
		IsActive:         active,
		Description:      "shipment sailed",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestUpsertRule_InsertAndUpdate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertRule(ctx, sampleRule("r1", "shipping_deadline", 10, true)))

	rules, err := st.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "shipment sailed", rules[0].Description)
	assert.JSONEq(t, `{"status_gte": "sailed"}`, string(rules[0].Conditions))

	updated := sampleRule("r1", "shipping_deadline", 5, false)
	updated.Description = "revised"
	require.NoError(t, st.UpsertRule(ctx, updated))

	rules, err = st.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 5, rules[0].Priority)
	assert.False(t, rules[0].IsActive)
	assert.Equal(t, "revised", rules[0].Description)
}

func TestActiveRules_OrderAndFilter(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertRule(ctx, sampleRule("r-low", "shipping_deadline", 50, true)))
	require.NoError(t, st.UpsertRule(ctx, sampleRule("r-high", "shipping_deadline", 1, true)))
	require.NoError(t, st.UpsertRule(ctx, sampleRule("r-off", "shipping_deadline", 0, false)))
	require.NoError(t, st.UpsertRule(ctx, sampleRule("r-other", "documents_needed", 1, true)))

	rules, err := st.ActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	// priority ASC, then notification_type ASC.
	assert.Equal(t, "r-other", rules[0].ID)
	assert.Equal(t, "r-high", rules[1].ID)
	assert.Equal(t, "r-low", rules[2].ID)
}

func TestRuleStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertRule(ctx, sampleRule("r1", "shipping_deadline", 10, true)))
	require.NoError(t, st.UpsertRule(ctx, sampleRule("r2", "documents_needed", 20, true)))

	_, err := st.InsertNotification(ctx, baseNotification("n1", "shipping_deadline", strPtr("SHP-1")))
	require.NoError(t, err)
	_, err = st.InsertNotification(ctx, baseNotification("n2", "shipping_deadline", strPtr("SHP-2")))
	require.NoError(t, err)

	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.AutoComplete(ctx, "n1", "r1", "sailed", at.Add(-time.Hour)))
	require.NoError(t, st.AutoComplete(ctx, "n2", "r1", "sailed", at))

	stats, err := st.RuleStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byID := map[string]domain.RuleStat{}
	for _, s := range stats {
		byID[s.RuleID] = s
	}

	assert.Equal(t, int64(2), byID["r1"].AutoCompleted)
	require.NotNil(t, byID["r1"].LastMatchedAt)
	assert.Equal(t, at, byID["r1"].LastMatchedAt.UTC())

	assert.Equal(t, int64(0), byID["r2"].AutoCompleted)
	assert.Nil(t, byID["r2"].LastMatchedAt)
}
