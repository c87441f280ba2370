package domain

// DocumentTag identifies a document category in document_type_master.
type DocumentTag string

const (
	DocSiteMeasurement     DocumentTag = "Type 1"
	DocCurrentSitePhotos   DocumentTag = "Type 2"
	DocDesignFiles         DocumentTag = "Type 3"
	DocFinalDocuments      DocumentTag = "Type 8"
	DocFinalMeasurement    DocumentTag = "Type 9"
	DocClientDocumentation DocumentTag = "Type 10"
	DocClientApproval      DocumentTag = "Type 11"
	DocOrderLogin          DocumentTag = "Type 12"
	DocProduction          DocumentTag = "Type 13"
	DocDispatchPhotos      DocumentTag = "Type 14"
	DocInstallation        DocumentTag = "Type 15"
	DocHandover            DocumentTag = "Type 16"
	DocSiteReadinessPhotos DocumentTag = "Type 19"
)

// PaymentTag identifies a payment category in payment_type_master.
type PaymentTag string

const (
	PaymentSiteMeasurementFee PaymentTag = "Type 1"
	PaymentBookingAmount      PaymentTag = "Type 2"
	PaymentAdvance            PaymentTag = "Type 3"
)

// TechCheckStatus is the review state of a client document.
type TechCheckStatus string

const (
	TechCheckPending  TechCheckStatus = "pending"
	TechCheckApproved TechCheckStatus = "approved"
	TechCheckRejected TechCheckStatus = "rejected"
)

// LedgerType is the direction of a ledger entry.
type LedgerType string

const (
	LedgerCredit LedgerType = "credit"
	LedgerDebit  LedgerType = "debit"
)

const (
	TaskStatusOpen      = "open"
	TaskStatusCompleted = "completed"

	MappingStatusActive   = "active"
	MappingStatusInactive = "inactive"
)
