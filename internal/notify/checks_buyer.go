package notify

import (
	"context"
	"time"

	"github.com/denizcargo/opswatch/internal/domain"
	"github.com/denizcargo/opswatch/internal/status"
)

// buyerShipmentChecks is the ordered check list for incoming (buyer
// workflow) shipments.
var buyerShipmentChecks = []shipmentCheck{
	{"shipping_deadline", checkShippingDeadline},
	{"documents_needed", checkDocumentsNeeded},
	{"balance_payment_due_2w", checkBalancePaymentTwoWeeks},
	{"balance_payment_critical_8d", checkBalancePaymentCritical},
	{"customs_docs_due", checkCustomsDocsDue},
	{"pod_clearance_check", checkPODClearance},
	{"delivery_status_check", checkDeliveryStatus},
	{"quality_check_needed", checkQualityCheckNeeded},
	{"clearance_entry_overdue", checkClearanceEntryOverdue},
	{"demurrage", checkDemurrage},
}

// minShippingDocs is how many qualifying documents a shipment needs on
// file before the documents_needed check goes quiet.
const minShippingDocs = 3

// checkShippingDeadline fires when the contractual ship date is within a
// week (or overdue) and the shipment has not sailed yet.
func checkShippingDeadline(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.ContractShipDate == nil {
		return nil, nil
	}
	if status.GTE(domain.EntityShipment, sh.Status, status.ShipmentSailed) {
		return nil, nil
	}
	days := daysUntil(now, *sh.ContractShipDate)
	if days > 7 {
		return nil, nil
	}

	sev := domain.SeverityWarning
	title := bif("Ship date for %s in %d days", "%s için yükleme tarihine %d gün kaldı", sh.ID, days)
	if days <= 2 {
		sev = domain.SeverityError
		title = urgent(title)
	}
	due := dateOf(*sh.ContractShipDate)
	return &candidate{
		Type:     domain.TypeShippingDeadline,
		Severity: sev,
		Title:    title,
		Message: bif(
			"Contractual ship date is %s and the shipment is still in %s. Confirm the booking with the carrier.",
			"Sözleşme yükleme tarihi %s, sevkiyat hâlâ %s aşamasında. Taşıyıcıyla rezervasyonu teyit edin.",
			due.Format("2006-01-02"), sh.Status,
		),
		ActionText: bi("Confirm booking", "Rezervasyonu teyit et"),
		DueDate:    &due,
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkDocumentsNeeded asks for shipping documents while the shipment is
// between booking and sailing with fewer than the minimum on file.
func checkDocumentsNeeded(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	switch sh.Status {
	case status.ShipmentBooked, status.ShipmentLoaded, status.ShipmentSailed:
	default:
		return nil, nil
	}
	if sh.DocCount >= minShippingDocs {
		return nil, nil
	}

	sev := domain.SeverityInfo
	dueOffset := 5
	if sh.Status == status.ShipmentSailed {
		// Vessel already departed; the document window is closing.
		sev = domain.SeverityWarning
		dueOffset = 2
	}
	return &candidate{
		Type:     domain.TypeDocumentsNeeded,
		Severity: sev,
		Title:    bif("Shipping documents missing for %s", "%s için eksik sevkiyat evrakı", sh.ID),
		Message: bif(
			"Only %d of %d required documents are on file (%s). Upload the missing documents.",
			"Gerekli %d/%d evrak dosyada (%s). Eksik evrakları yükleyin.",
			sh.DocCount, minShippingDocs, humanizeEN(sh.Status),
		),
		ActionText: bi("Upload documents", "Evrak yükle"),
		DueDate:    addDays(now, dueOffset),
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkBalancePaymentTwoWeeks plans the balance payment exactly two weeks
// before arrival.
func checkBalancePaymentTwoWeeks(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.ETA == nil || sh.BalanceValueUSD <= 0 {
		return nil, nil
	}
	if daysUntil(now, *sh.ETA) != 14 {
		return nil, nil
	}

	due := dateOf(*sh.ETA).AddDate(0, 0, -8)
	escalate := dateOf(*sh.ETA).AddDate(0, 0, -5)
	return &candidate{
		Type:     domain.TypeBalancePaymentDue2W,
		Severity: domain.SeverityWarning,
		Title:    bif("Plan balance payment for %s", "%s için bakiye ödemesini planlayın", sh.ID),
		Message: bif(
			"Vessel arrives in 14 days. Balance of %.2f USD should be paid by %s to avoid clearance delays.",
			"Gemi 14 gün içinde varıyor. Gümrük gecikmesi yaşamamak için %.2f USD bakiye %s tarihine kadar ödenmelidir.",
			sh.BalanceValueUSD, due.Format("2006-01-02"),
		),
		ActionText:     bi("Schedule payment", "Ödemeyi planla"),
		DueDate:        &due,
		AutoEscalateAt: &escalate,
		ShipmentID:     &sh.ID,

		actionRequired: true,
	}, nil
}

// checkBalancePaymentCritical escalates an unpaid balance inside the
// eight-day arrival window.
func checkBalancePaymentCritical(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.ETA == nil || sh.BalanceValueUSD <= 0 {
		return nil, nil
	}
	days := daysUntil(now, *sh.ETA)
	if days < 0 || days > 8 {
		return nil, nil
	}

	due := dateOf(*sh.ETA).AddDate(0, 0, -5)
	return &candidate{
		Type:     domain.TypeBalancePaymentCritical,
		Severity: domain.SeverityError,
		Title:    urgent(bif("Balance unpaid, vessel arrives in %d days", "Bakiye ödenmedi, gemi %d gün içinde varıyor", days)),
		Message: bif(
			"Balance of %.2f USD is still unpaid. Original documents will not be released without payment.",
			"%.2f USD bakiye hâlâ ödenmedi. Ödeme yapılmadan orijinal evraklar serbest bırakılmaz.",
			sh.BalanceValueUSD,
		),
		ActionText: bi("Pay balance now", "Bakiyeyi hemen öde"),
		DueDate:    &due,
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkCustomsDocsDue reminds to send the clearance file to the customs
// broker two days before arrival.
func checkCustomsDocsDue(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.ETA == nil || daysUntil(now, *sh.ETA) != 2 {
		return nil, nil
	}
	due := dateOf(*sh.ETA)
	return &candidate{
		Type:     domain.TypeCustomsDocsDue,
		Severity: domain.SeverityWarning,
		Title:    bif("Send customs documents for %s", "%s için gümrük evraklarını gönderin", sh.ID),
		Message: bi(
			"Vessel arrives in 2 days. Send the clearance file to the customs broker today.",
			"Gemi 2 gün içinde varıyor. Gümrük dosyasını bugün gümrük müşavirine gönderin.",
		),
		ActionText: bi("Send to broker", "Müşavire gönder"),
		DueDate:    &due,
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkPODClearance asks for a proof-of-discharge clearance status check
// two days after arrival.
func checkPODClearance(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.Status != status.ShipmentArrived || sh.ETA == nil {
		return nil, nil
	}
	if daysSince(now, *sh.ETA) != 2 {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypePODClearanceCheck,
		Severity: domain.SeverityInfo,
		Title:    bif("Check clearance progress for %s", "%s için gümrük durumunu kontrol edin", sh.ID),
		Message: bi(
			"The vessel arrived 2 days ago. Verify the discharge and clearance status at the port.",
			"Gemi 2 gün önce vardı. Limanda tahliye ve gümrük durumunu doğrulayın.",
		),
		ActionText: bi("Check status", "Durumu kontrol et"),
		DueDate:    addDays(now, 1),
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkDeliveryStatus flags shipments not delivered a week after arrival.
func checkDeliveryStatus(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.Status == status.ShipmentDelivered || sh.ETA == nil {
		return nil, nil
	}
	if daysSince(now, *sh.ETA) != 7 {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypeDeliveryStatusCheck,
		Severity: domain.SeverityWarning,
		Title:    bif("Shipment %s not delivered a week after ETA", "%s sevkiyatı ETA'dan bir hafta sonra hâlâ teslim edilmedi", sh.ID),
		Message: bif(
			"Current status is %s. Check for clearance or transport problems.",
			"Mevcut durum %s. Gümrük veya nakliye sorunlarını kontrol edin.",
			sh.Status,
		),
		ActionText: bi("Investigate", "İncele"),
		DueDate:    addDays(now, 1),
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkQualityCheckNeeded fires once on delivery: incoming goods need a
// quality inspection.
func checkQualityCheckNeeded(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.Status != status.ShipmentDelivered {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypeQualityCheckNeeded,
		Severity: domain.SeverityInfo,
		Title:    bif("Quality check needed for %s", "%s için kalite kontrolü gerekli", sh.ID),
		Message: bi(
			"The shipment has been delivered. Perform the incoming quality inspection and record the result.",
			"Sevkiyat teslim edildi. Giriş kalite kontrolünü yapın ve sonucu kaydedin.",
		),
		ActionText: bi("Record inspection", "Kontrolü kaydet"),
		DueDate:    addDays(now, 3),
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkClearanceEntryOverdue flags arrived shipments with no customs
// clearance entry three days after arrival.
func checkClearanceEntryOverdue(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.Status != status.ShipmentArrived || sh.CustomsClearanceDate != nil {
		return nil, nil
	}
	arrived := sh.ArrivalDate
	if arrived == nil {
		arrived = sh.ETA
	}
	if arrived == nil || daysSince(now, *arrived) < 3 {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypeClearanceEntryOverdue,
		Severity: domain.SeverityWarning,
		Title:    bif("No clearance entry for %s", "%s için gümrük girişi yok", sh.ID),
		Message: bi(
			"The shipment arrived over 3 days ago and no customs clearance date has been recorded.",
			"Sevkiyat 3 günden uzun süre önce vardı ve gümrük giriş tarihi kaydedilmedi.",
		),
		ActionText: bi("Record clearance entry", "Gümrük girişini kaydet"),
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkDemurrage watches the free-time window at the port: a warning when
// the clearance deadline is within three days, an error once it has
// passed with no clearance recorded.
func checkDemurrage(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.ETA == nil || sh.FreeTimeDays <= 0 || sh.CustomsClearanceDate != nil {
		return nil, nil
	}
	if !status.GTE(domain.EntityShipment, sh.Status, status.ShipmentArrived) {
		return nil, nil
	}

	deadline := dateOf(*sh.ETA).AddDate(0, 0, sh.FreeTimeDays)
	days := daysUntil(now, deadline)

	if days < 0 {
		return &candidate{
			Type:     domain.TypeDemurrageExceeded,
			Severity: domain.SeverityError,
			Title:    urgent(bif("Demurrage accruing for %s", "%s için demuraj işliyor", sh.ID)),
			Message: bif(
				"Free time expired on %s and the container has not cleared customs. Storage penalties are accruing daily.",
				"Ardiye süresi %s tarihinde doldu ve konteyner gümrükten çekilmedi. Depolama cezası günlük olarak işliyor.",
				deadline.Format("2006-01-02"),
			),
			ActionText: bi("Expedite clearance", "Gümrüklemeyi hızlandır"),
			DueDate:    &deadline,
			ShipmentID: &sh.ID,

			actionRequired: true,
		}, nil
	}

	if days <= 3 {
		return &candidate{
			Type:     domain.TypeDemurrageWarning,
			Severity: domain.SeverityWarning,
			Title:    bif("Free time ends in %d days for %s", "%[2]s için ardiye süresi %[1]d gün içinde doluyor", days, sh.ID),
			Message: bif(
				"Free time at the port ends on %s. Clear customs before then to avoid demurrage charges.",
				"Limandaki ardiye süresi %s tarihinde doluyor. Demuraj ödememek için gümrüklemeyi bu tarihten önce tamamlayın.",
				deadline.Format("2006-01-02"),
			),
			ActionText:     bi("Plan clearance", "Gümrüklemeyi planla"),
			DueDate:        &deadline,
			AutoEscalateAt: &deadline,
			ShipmentID:     &sh.ID,

			actionRequired: true,
		}, nil
	}

	return nil, nil
}
