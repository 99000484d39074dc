package notify

import (
	"context"
	"fmt"

	"github.com/denizcargo/opswatch/internal/domain"
)

// Quality incident notifications are event-driven: the workflow calls
// these entry points when the incident changes state, instead of waiting
// for the polling scan. They share the emit path, so dedup and the
// single-entity constraint apply the same way.

// NotifyQualityIncidentCreated records that a new incident was opened
// against a shipment.
func (g *Generator) NotifyQualityIncidentCreated(ctx context.Context, q domain.QualityIncident) (bool, error) {
	return g.emitQuality(ctx, q, &candidate{
		Type:     domain.TypeQualityIncidentCreated,
		Severity: domain.SeverityWarning,
		Title:    bi("Quality incident opened", "Kalite vakası açıldı"),
		Message: bi(
			"A quality incident has been opened for this shipment. Complete the incident details and submit it for review.",
			"Bu sevkiyat için bir kalite vakası açıldı. Vaka detaylarını tamamlayın ve incelemeye gönderin.",
		),
		ActionText: bi("Complete incident", "Vakayı tamamla"),

		actionRequired: true,
	})
}

// NotifyQualityIncidentSubmitted records that the incident entered review.
func (g *Generator) NotifyQualityIncidentSubmitted(ctx context.Context, q domain.QualityIncident) (bool, error) {
	return g.emitQuality(ctx, q, &candidate{
		Type:     domain.TypeQualityIncidentSubmitted,
		Severity: domain.SeverityInfo,
		Title:    bi("Quality incident submitted", "Kalite vakası incelemeye gönderildi"),
		Message: bi(
			"The incident has been submitted to the counterparty for review. Track the response.",
			"Vaka inceleme için karşı tarafa gönderildi. Yanıtı takip edin.",
		),
		ActionText: bi("Track review", "İncelemeyi takip et"),

		actionRequired: true,
	})
}

// NotifyQualityIncidentClosed records the resolution. Informational only.
func (g *Generator) NotifyQualityIncidentClosed(ctx context.Context, q domain.QualityIncident) (bool, error) {
	return g.emitQuality(ctx, q, &candidate{
		Type:     domain.TypeQualityIncidentClosed,
		Severity: domain.SeveritySuccess,
		Title:    bi("Quality incident closed", "Kalite vakası kapatıldı"),
		Message: bi(
			"The quality incident has been resolved and closed.",
			"Kalite vakası çözüldü ve kapatıldı.",
		),
		ActionText: bi("View resolution", "Çözümü görüntüle"),
	})
}

// NotifyResamplingRequested asks for a new sample after a disputed result.
func (g *Generator) NotifyResamplingRequested(ctx context.Context, q domain.QualityIncident) (bool, error) {
	return g.emitQuality(ctx, q, &candidate{
		Type:     domain.TypeResamplingRequested,
		Severity: domain.SeverityWarning,
		Title:    bi("Resampling requested", "Yeniden numune talep edildi"),
		Message: bi(
			"The counterparty requested a new sample for this incident. Arrange the resampling.",
			"Karşı taraf bu vaka için yeni numune talep etti. Yeniden numune alımını organize edin.",
		),
		ActionText: bi("Arrange resampling", "Numune alımını ayarla"),

		actionRequired: true,
	})
}

// NotifyHoldStatusChanged records a change of the goods hold status
// attached to the incident (for example released or blocked).
func (g *Generator) NotifyHoldStatusChanged(ctx context.Context, q domain.QualityIncident) (bool, error) {
	hold := q.HoldStatus
	if hold == "" {
		hold = "unknown"
	}
	return g.emitQuality(ctx, q, &candidate{
		Type:     domain.TypeHoldStatusChanged,
		Severity: domain.SeverityWarning,
		Title:    bi("Goods hold status changed", "Mal blokaj durumu değişti"),
		Message: bif(
			"The hold status of the goods changed to %s. Review the impact on delivery and payment.",
			"Malın blokaj durumu %s olarak değişti. Teslimat ve ödeme üzerindeki etkisini değerlendirin.",
			humanizeEN(hold),
		),
		ActionText: bi("Review hold", "Blokajı incele"),

		actionRequired: true,
	})
}

// CreateQualityFeedbackReminder nudges the buyer when requested quality
// feedback has not arrived. Called by the workflow after its own grace
// period; shipment-scoped so it dedups against the open reminder.
func (g *Generator) CreateQualityFeedbackReminder(ctx context.Context, shipmentID string) (bool, error) {
	sh, err := g.store.GetShipment(ctx, shipmentID)
	if err != nil {
		return false, fmt.Errorf("quality feedback reminder: %w", err)
	}
	return g.emit(ctx, &candidate{
		Type:     domain.TypeQualityFeedbackReminder,
		Severity: domain.SeverityWarning,
		Title:    bif("Quality feedback still pending for %s", "%s için kalite geri bildirimi hâlâ bekleniyor", sh.ID),
		Message: bi(
			"The buyer has not answered the quality feedback request. Follow up before closing the shipment.",
			"Alıcı kalite geri bildirim talebini yanıtlamadı. Sevkiyatı kapatmadan önce takip edin.",
		),
		ActionText: bi("Follow up", "Takip et"),
		DueDate:    addDays(g.now(), 3),
		ShipmentID: &sh.ID,

		actionRequired: true,
	}), nil
}

// emitQuality scopes a quality candidate to the incident's shipment and
// runs it through the shared emit path. Incidents without a shipment link
// produce a global notification.
func (g *Generator) emitQuality(ctx context.Context, q domain.QualityIncident, cand *candidate) (bool, error) {
	cand.ShipmentID = q.ShipmentID
	return g.emit(ctx, cand), nil
}
