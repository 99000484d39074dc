package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizcargo/opswatch/internal/domain"
)

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Booking Confirmed", humanizeEN("booking_confirmed"))
	assert.Equal(t, "Under Review", humanizeTR("under_review"))
}

func TestUrgentPrefix(t *testing.T) {
	got := urgent(bi("Pay now", "Hemen öde"))
	assert.Equal(t, "URGENT: Pay now", got.EN)
	assert.Equal(t, "ACİL: Hemen öde", got.TR)
}

func TestBif_SharedArgs(t *testing.T) {
	got := bif("due in %d days", "%d gün kaldı", 3)
	assert.Equal(t, "due in 3 days", got.EN)
	assert.Equal(t, "3 gün kaldı", got.TR)
}

// renderedNotice is the golden-file projection of a candidate.
type renderedNotice struct {
	Type     string           `json:"type"`
	Severity domain.Severity  `json:"severity"`
	Title    domain.Bilingual `json:"title"`
	Message  domain.Bilingual `json:"message"`
	Action   domain.Bilingual `json:"action"`
}

// TestNotificationTexts_Golden pins the bilingual wording of a sample of
// generated notifications. The golden file is the review surface for copy
// changes; regenerate with -update after an intentional edit.
func TestNotificationTexts_Golden(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	var rows []renderedNotice
	add := func(cand *candidate, err error) {
		require.NoError(t, err)
		require.NotNil(t, cand)
		rows = append(rows, renderedNotice{
			Type:     cand.Type,
			Severity: cand.Severity,
			Title:    cand.Title,
			Message:  cand.Message,
			Action:   cand.ActionText,
		})
	}

	add(checkShippingDeadline(ctx, nil, domain.Shipment{
		ID:               "SHP-1",
		Status:           "planning",
		ContractShipDate: datePtr(2026, 3, 11),
	}, now))

	add(checkBalancePaymentCritical(ctx, nil, domain.Shipment{
		ID:              "SHP-2",
		Status:          "sailed",
		ETA:             datePtr(2026, 3, 15),
		BalanceValueUSD: 12500.5,
	}, now))

	add(checkDocumentsNeeded(ctx, nil, domain.Shipment{
		ID:       "SHP-3",
		Status:   "sailed",
		DocCount: 1,
	}, now))

	add(checkDemurrage(ctx, nil, domain.Shipment{
		ID:           "SHP-4",
		Status:       "arrived",
		ETA:          datePtr(2026, 3, 1),
		FreeTimeDays: 5,
	}, now))

	data, err := json.MarshalIndent(rows, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "notification_texts", data)
}
