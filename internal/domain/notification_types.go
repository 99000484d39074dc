package domain

// Notification type keys. Each key names exactly one business rule in the
// generator (or one external quality-workflow entry point) and is the join
// key between open notifications and progression rules.
//
// Keys are part of the stored data contract - renaming one orphans every
// open notification and progression rule that references it.
const (
	// Contract lifecycle (buyer and seller sides).
	TypeContractCreated       = "contract_created"
	TypeContractCreatedSeller = "contract_created_seller"
	TypeAdvancePaymentDue     = "advance_payment_due"

	// Buyer-side shipment lifecycle (transaction_type = incoming).
	TypeShippingDeadline       = "shipping_deadline"
	TypeDocumentsNeeded        = "documents_needed"
	TypeBalancePaymentDue2W    = "balance_payment_due_2w"
	TypeBalancePaymentCritical = "balance_payment_critical_8d"
	TypeCustomsDocsDue         = "customs_docs_due"
	TypePODClearanceCheck      = "pod_clearance_check"
	TypeDeliveryStatusCheck    = "delivery_status_check"
	TypeQualityCheckNeeded     = "quality_check_needed"
	TypeClearanceEntryOverdue  = "clearance_entry_overdue"
	TypeDemurrageWarning       = "demurrage_warning"
	TypeDemurrageExceeded      = "demurrage_exceeded"

	// Seller-side shipment lifecycle (transaction_type = outgoing).
	TypeShippingDeadlineSeller  = "shipping_deadline_seller"
	TypeBookingShare            = "booking_share"
	TypeGoodsLoaded             = "goods_loaded"
	TypePaymentReminder7D       = "payment_reminder_7d"
	TypePaymentReminder3D       = "payment_reminder_3d"
	TypePaymentReminderToday    = "payment_reminder_today"
	TypeSendOriginalDocs        = "send_original_docs"
	TypeArrivalFollowup         = "arrival_followup"
	TypeQualityFeedbackRequest  = "quality_feedback_request"

	// Quality-incident workflow (fired by the external workflow, not the
	// periodic scan).
	TypeQualityIncidentCreated   = "quality_incident_created"
	TypeQualityIncidentSubmitted = "quality_incident_submitted"
	TypeQualityIncidentClosed    = "quality_incident_closed"
	TypeResamplingRequested      = "resampling_requested"
	TypeHoldStatusChanged        = "hold_status_changed"
	TypeQualityFeedbackReminder  = "quality_feedback_reminder"
)
