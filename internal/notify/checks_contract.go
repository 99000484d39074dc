package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/denizcargo/opswatch/internal/domain"
)

// contractChecks is the ordered check list for the contract batch.
var contractChecks = []contractCheck{
	{"contract_created", checkContractCreated},
	{"contract_created_seller", checkContractCreatedSeller},
	{"advance_payment_due", checkAdvancePaymentDue},
}

// checkContractCreated fires once when a contract reaches active status:
// the buyer side should start shipment planning.
func checkContractCreated(_ context.Context, _ *Generator, c domain.Contract, now time.Time) (*candidate, error) {
	if c.Status != "active" {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypeContractCreated,
		Severity: domain.SeverityInfo,
		Title: bif("Contract %s is active",
			"%s sözleşmesi aktif", c.ID),
		Message: bi(
			"The contract has been activated. Review the shipment plan and payment schedule.",
			"Sözleşme aktifleştirildi. Sevkiyat planını ve ödeme takvimini gözden geçirin.",
		),
		ActionText: bi("Review contract", "Sözleşmeyi incele"),
		DueDate:    addDays(now, 3),
		ContractID: &c.ID,

		actionRequired: true,
	}, nil
}

// checkContractCreatedSeller is the seller-side mirror: ask the buyer to
// confirm the shipment schedule.
func checkContractCreatedSeller(_ context.Context, _ *Generator, c domain.Contract, now time.Time) (*candidate, error) {
	if c.Status != "active" {
		return nil, nil
	}
	return &candidate{
		Type:     domain.TypeContractCreatedSeller,
		Severity: domain.SeverityInfo,
		Title: bif("Confirm schedule for contract %s",
			"%s sözleşmesi için takvimi onaylatın", c.ID),
		Message: bi(
			"The contract is active. Ask the buyer to confirm the shipment schedule and terms.",
			"Sözleşme aktif. Alıcıdan sevkiyat takvimini ve şartları onaylamasını isteyin.",
		),
		ActionText: bi("Contact buyer", "Alıcıyla iletişime geç"),
		DueDate:    addDays(now, 3),
		ContractID: &c.ID,

		actionRequired: true,
	}, nil
}

// checkAdvancePaymentDue warns when the contract's advance payment falls
// due within a week (or is already overdue within the window). Severity
// follows the standard day tiering; the due date comes from the payment
// schedule.
func checkAdvancePaymentDue(ctx context.Context, g *Generator, c domain.Contract, now time.Time) (*candidate, error) {
	if c.SignedAt == nil {
		return nil, nil
	}
	entries, err := g.store.PaymentSchedule(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("load payment schedule: %w", err)
	}
	entry, ok := firstDueEntry(entries)
	if !ok {
		return nil, nil
	}

	due := scheduleDueDate(entry, *c.SignedAt)
	days := daysUntil(now, due)
	if days < 0 || days > 7 {
		return nil, nil
	}

	sev := severityForDays(days)
	title := bif("Advance payment due in %d days", "Avans ödemesine %d gün kaldı", days)
	if sev == domain.SeverityError {
		title = urgent(title)
	}
	return &candidate{
		Type:     domain.TypeAdvancePaymentDue,
		Severity: sev,
		Title:    title,
		Message: bif(
			"The advance payment (%.0f%% of contract value) is due on %s.",
			"Avans ödemesi (sözleşme bedelinin %%%.0f'i) %s tarihinde ödenmelidir.",
			entry.Percent, due.Format("2006-01-02"),
		),
		ActionText: bi("Arrange payment", "Ödemeyi ayarla"),
		DueDate:    &due,
		ContractID: &c.ID,

		actionRequired: true,
	}, nil
}
