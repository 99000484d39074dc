package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/denizcargo/opswatch/internal/domain"
	"github.com/denizcargo/opswatch/internal/status"
)

// sellerShipmentChecks is the ordered check list for outgoing (seller
// workflow) shipments.
var sellerShipmentChecks = []shipmentCheck{
	{"shipping_deadline_seller", checkShippingDeadlineSeller},
	{"booking_share", checkBookingShare},
	{"goods_loaded", checkGoodsLoaded},
	{"payment_reminder_7d", makePaymentReminder(domain.TypePaymentReminder7D, 7)},
	{"payment_reminder_3d", makePaymentReminder(domain.TypePaymentReminder3D, 3)},
	{"payment_reminder_today", makePaymentReminder(domain.TypePaymentReminderToday, 0)},
	{"send_original_docs", checkSendOriginalDocs},
	{"arrival_followup", checkArrivalFollowup},
	{"quality_feedback_request", checkQualityFeedbackRequest},
}

// checkShippingDeadlineSeller is the seller-side ship-date watch: prepare
// and load the goods before the contractual date.
func checkShippingDeadlineSeller(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
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
	title := bif("Goods for %s must ship in %d days", "%s yükü %d gün içinde yüklenmeli", sh.ID, days)
	if days <= 2 {
		sev = domain.SeverityError
		title = urgent(title)
	}
	due := dateOf(*sh.ContractShipDate)
	return &candidate{
		Type:     domain.TypeShippingDeadlineSeller,
		Severity: sev,
		Title:    title,
		Message: bif(
			"Contractual ship date is %s and the shipment is still in %s. Make sure the goods are ready and loaded on time.",
			"Sözleşme yükleme tarihi %s, sevkiyat hâlâ %s aşamasında. Malın zamanında hazır ve yüklenmiş olduğundan emin olun.",
			due.Format("2006-01-02"), sh.Status,
		),
		ActionText: bi("Prepare shipment", "Sevkiyatı hazırla"),
		DueDate:    &due,
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkBookingShare fires once when a booking is confirmed but the
// details have not been shared with the buyer yet.
func checkBookingShare(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.Status != status.ShipmentBooked || sh.BookingShared {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypeBookingShare,
		Severity: domain.SeverityInfo,
		Title:    bif("Share booking details for %s", "%s rezervasyon bilgilerini paylaşın", sh.ID),
		Message: bi(
			"The booking is confirmed. Send the vessel, voyage and cut-off details to the buyer.",
			"Rezervasyon onaylandı. Gemi, sefer ve son yükleme bilgilerini alıcıya gönderin.",
		),
		ActionText: bi("Share booking", "Rezervasyonu paylaş"),
		DueDate:    addDays(now, 2),
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkGoodsLoaded fires once after loading: notify the buyer and start
// the document flow.
func checkGoodsLoaded(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.Status != status.ShipmentLoaded || sh.GoodsLoadedNotified {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypeGoodsLoaded,
		Severity: domain.SeverityInfo,
		Title:    bif("Goods loaded for %s", "%s yüklemesi tamamlandı", sh.ID),
		Message: bi(
			"Loading is complete. Notify the buyer and prepare the draft shipping documents.",
			"Yükleme tamamlandı. Alıcıyı bilgilendirin ve taslak sevkiyat evraklarını hazırlayın.",
		),
		ActionText: bi("Notify buyer", "Alıcıyı bilgilendir"),
		DueDate:    addDays(now, 1),
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// makePaymentReminder builds a seller-side reminder check that fires when
// a payment schedule entry on the linked contract falls due in exactly
// wantDays days. The three reminders are distinct notification types, so
// each fires independently and dedups independently.
func makePaymentReminder(typ string, wantDays int) func(context.Context, *Generator, domain.Shipment, time.Time) (*candidate, error) {
	return func(ctx context.Context, g *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
		if sh.ContractID == nil || sh.BalanceValueUSD <= 0 {
			return nil, nil
		}
		c, err := g.store.GetContract(ctx, *sh.ContractID)
		if err != nil {
			return nil, fmt.Errorf("load contract %s: %w", *sh.ContractID, err)
		}
		if c.SignedAt == nil {
			return nil, nil
		}
		entries, err := g.store.PaymentSchedule(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("load payment schedule: %w", err)
		}
		entry, due, ok := entryDueInDays(entries, *c.SignedAt, now, wantDays)
		if !ok {
			return nil, nil
		}

		sev := severityForDays(wantDays)
		var title domain.Bilingual
		switch wantDays {
		case 0:
			title = urgent(bif("Payment for %s due today", "%s ödemesi bugün", sh.ID))
		default:
			title = bif("Payment for %s due in %d days", "%s ödemesine %d gün kaldı", sh.ID, wantDays)
		}
		return &candidate{
			Type:     typ,
			Severity: sev,
			Title:    title,
			Message: bif(
				"A payment of %.0f%% of the contract value falls due on %s. Follow up with the buyer.",
				"Sözleşme bedelinin %%%.0f'i tutarındaki ödeme %s tarihinde vadesi doluyor. Alıcıyla takip edin.",
				entry.Percent, due.Format("2006-01-02"),
			),
			ActionText: bi("Follow up payment", "Ödemeyi takip et"),
			DueDate:    &due,
			ShipmentID: &sh.ID,

			actionRequired: true,
		}, nil
	}
}

// checkSendOriginalDocs releases the original documents once the balance
// is fully paid and the buyer has approved the drafts.
func checkSendOriginalDocs(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.BalanceValueUSD > 0 || !sh.DraftDocsApproved || sh.OriginalDocsSent {
		return nil, nil
	}
	if !status.GTE(domain.EntityShipment, sh.Status, status.ShipmentSailed) {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypeSendOriginalDocs,
		Severity: domain.SeverityWarning,
		Title:    bif("Send original documents for %s", "%s orijinal evraklarını gönderin", sh.ID),
		Message: bi(
			"The balance is fully paid and the draft documents are approved. Courier the originals to the buyer.",
			"Bakiye tamamen ödendi ve taslak evraklar onaylandı. Orijinalleri alıcıya kuryeyle gönderin.",
		),
		ActionText: bi("Send originals", "Orijinalleri gönder"),
		DueDate:    addDays(now, 2),
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkArrivalFollowup checks in with the buyer two days after arrival.
func checkArrivalFollowup(_ context.Context, _ *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if !status.GTE(domain.EntityShipment, sh.Status, status.ShipmentArrived) {
		return nil, nil
	}
	arrived := sh.ArrivalDate
	if arrived == nil {
		arrived = sh.ETA
	}
	if arrived == nil || daysSince(now, *arrived) != 2 {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypeArrivalFollowup,
		Severity: domain.SeverityInfo,
		Title:    bif("Follow up arrival of %s", "%s varışını takip edin", sh.ID),
		Message: bi(
			"The vessel arrived 2 days ago. Check with the buyer that discharge and clearance are on track.",
			"Gemi 2 gün önce vardı. Tahliye ve gümrüklemenin yolunda olduğunu alıcıyla teyit edin.",
		),
		ActionText: bi("Contact buyer", "Alıcıyla iletişime geç"),
		DueDate:    addDays(now, 1),
		ShipmentID: &sh.ID,

		actionRequired: true,
	}, nil
}

// checkQualityFeedbackRequest fires once, ten or more days after arrival,
// asking the buyer for quality feedback. The shipment flag is stamped on
// emit so the check never re-fires after the notification is completed.
func checkQualityFeedbackRequest(_ context.Context, g *Generator, sh domain.Shipment, now time.Time) (*candidate, error) {
	if sh.QualityFeedbackRequested {
		return nil, nil
	}
	if !status.GTE(domain.EntityShipment, sh.Status, status.ShipmentArrived) {
		return nil, nil
	}
	arrived := sh.ArrivalDate
	if arrived == nil {
		arrived = sh.ETA
	}
	if arrived == nil || daysSince(now, *arrived) < 10 {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypeQualityFeedbackRequest,
		Severity: domain.SeverityInfo,
		Title:    bif("Request quality feedback for %s", "%s için kalite geri bildirimi isteyin", sh.ID),
		Message: bi(
			"The goods arrived over 10 days ago. Ask the buyer for quality feedback on the delivered lot.",
			"Mal 10 günden uzun süre önce vardı. Teslim edilen parti için alıcıdan kalite geri bildirimi isteyin.",
		),
		ActionText: bi("Request feedback", "Geri bildirim iste"),
		DueDate:    addDays(now, 3),
		ShipmentID: &sh.ID,

		actionRequired: true,
		onEmitted: func(ctx context.Context) error {
			return g.store.MarkQualityFeedbackRequested(ctx, sh.ID)
		},
	}, nil
}
