package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// TypeMaster is one row of status_type_master, document_type_master or payment_type_master.
type TypeMaster struct {
	ID       int64
	VendorID int64
	Tag      string
	Name     string
}

type Lead struct {
	ID                      int64
	VendorID                int64
	AccountID               *int64
	StatusID                int64
	ActivityStatus          string
	Name                    string
	ContactNo               string
	Email                   *string
	SiteAddress             *string
	FinalBookingAmount      decimal.NullDecimal
	CriticalDiscussionNotes *string
	DispatchDate            *time.Time
	Notes                   *string
	IsDeleted               bool
	CreatedBy               int64
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type User struct {
	ID       int64
	VendorID int64
	Name     string
	Email    string
	Role     string
	IsActive bool
}

type Document struct {
	ID              int64
	VendorID        int64
	LeadID          int64
	AccountID       *int64
	DocTypeID       int64
	OriginalName    string
	StorageKey      string
	TechCheckStatus *string
	IsDeleted       bool
	CreatedBy       int64
	CreatedAt       time.Time
}

type Payment struct {
	ID            int64
	VendorID      int64
	LeadID        int64
	AccountID     *int64
	PaymentTypeID int64
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentFileID *int64
	PaymentText   *string
	CreatedBy     int64
	CreatedAt     time.Time
}

type LedgerEntry struct {
	ID            int64
	VendorID      int64
	LeadID        int64
	AccountID     *int64
	PaymentInfoID *int64
	Amount        decimal.Decimal
	Type          string
	CreatedBy     int64
	CreatedAt     time.Time
}

type Mapping struct {
	ID        int64
	VendorID  int64
	LeadID    int64
	UserID    int64
	Type      string
	Status    string
	CreatedBy int64
	CreatedAt time.Time
}

type Task struct {
	ID            int64
	VendorID      int64
	LeadID        int64
	UserID        int64
	CreatedBy     int64
	TaskType      string
	DueDate       time.Time
	Remark        *string
	Status        string
	ClosedBy      *int64
	ClosedAt      *time.Time
	ClosingRemark *string
	CreatedAt     time.Time
}

type ChecklistItem struct {
	ID        int64
	VendorID  int64
	LeadID    int64
	Type      string
	Value     bool
	Remark    *string
	CreatedBy int64
	CreatedAt time.Time
}

type DetailedLog struct {
	ID          int64
	VendorID    int64
	LeadID      int64
	Action      string
	Description string
	CreatedBy   int64
	CreatedAt   time.Time
}

type DocumentLog struct {
	ID        int64
	VendorID  int64
	LeadID    int64
	DocID     int64
	LeadLogID int64
	CreatedBy int64
	CreatedAt time.Time
}

type StatusLog struct {
	ID        int64
	VendorID  int64
	LeadID    int64
	StatusID  int64
	CreatedBy int64
	CreatedAt time.Time
}

type ActivityLog struct {
	ID        int64
	VendorID  int64
	LeadID    int64
	OldStatus string
	NewStatus string
	Remark    string
	CreatedBy int64
	CreatedAt time.Time
}

// StatusCount is one row of the status-wise funnel.
type StatusCount struct {
	StatusID int64
	Count    int
}

// =====================================
// Params
// =====================================

type CreateLeadParams struct {
	VendorID    int64
	AccountID   *int64
	StatusID    int64
	Name        string
	ContactNo   string
	Email       *string
	SiteAddress *string
	Notes       *string
	CreatedBy   int64
}

// UpdateLeadStageParams carries the fields a transition may touch. Nil fields are left as they are.
type UpdateLeadStageParams struct {
	VendorID                int64
	LeadID                  int64
	StatusID                *int64
	FinalBookingAmount      *decimal.Decimal
	CriticalDiscussionNotes *string
	DispatchDate            *time.Time
	Notes                   *string
}

type ListLeadsParams struct {
	VendorID int64
	StatusID int64
	// Restricted limits results to LeadIDs. An unrestricted listing is vendor-wide.
	Restricted bool
	LeadIDs    []int64
	Offset     int
	Limit      int
}

type CreateDocumentParams struct {
	VendorID        int64
	LeadID          int64
	AccountID       *int64
	DocTypeID       int64
	OriginalName    string
	StorageKey      string
	TechCheckStatus *string
	CreatedBy       int64
}

type CreatePaymentParams struct {
	VendorID      int64
	LeadID        int64
	AccountID     *int64
	PaymentTypeID int64
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentFileID *int64
	PaymentText   *string
	CreatedBy     int64
}

type CreateLedgerEntryParams struct {
	VendorID      int64
	LeadID        int64
	AccountID     *int64
	PaymentInfoID *int64
	Amount        decimal.Decimal
	Type          string
	CreatedBy     int64
}

type CreateMappingParams struct {
	VendorID  int64
	LeadID    int64
	UserID    int64
	Type      string
	CreatedBy int64
}

type CreateTaskParams struct {
	VendorID  int64
	LeadID    int64
	UserID    int64
	CreatedBy int64
	TaskType  string
	DueDate   time.Time
	Remark    *string
}

// CompleteOpenTasksParams closes every open task of TaskType on a lead.
type CompleteOpenTasksParams struct {
	VendorID      int64
	LeadID        int64
	TaskType      string
	ClosedBy      int64
	ClosedAt      time.Time
	ClosingRemark *string
}

type CompleteTaskParams struct {
	VendorID      int64
	TaskID        int64
	ClosedBy      int64
	ClosedAt      time.Time
	ClosingRemark *string
}

type UpsertChecklistItemParams struct {
	VendorID  int64
	LeadID    int64
	Type      string
	Value     bool
	Remark    *string
	CreatedBy int64
}

type CreateDetailedLogParams struct {
	VendorID    int64
	LeadID      int64
	Action      string
	Description string
	CreatedBy   int64
}

type CreateDocumentLogParams struct {
	VendorID  int64
	LeadID    int64
	DocID     int64
	LeadLogID int64
	CreatedBy int64
}

type CreateStatusLogParams struct {
	VendorID  int64
	LeadID    int64
	StatusID  int64
	CreatedBy int64
}

type CreateActivityLogParams struct {
	VendorID  int64
	LeadID    int64
	OldStatus string
	NewStatus string
	Remark    string
	CreatedBy int64
}

// Window is a half-open time range [From, To). A zero bound is unbounded.
type Window struct {
	From time.Time
	To   time.Time
}

// Scope restricts lead-based aggregates. Restricted with no LeadIDs matches nothing.
type Scope struct {
	VendorID   int64
	Restricted bool
	LeadIDs    []int64
}

// TaskScope selects tasks of a vendor, optionally those assigned to one user.
type TaskScope struct {
	VendorID   int64
	AssigneeID *int64
}
