package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// TypeLookup reads the vendor's tag-indexed master tables.
type TypeLookup interface {
	FindStatusType(ctx context.Context, vendorID int64, tag string) (TypeMaster, error)
	FindDocumentType(ctx context.Context, vendorID int64, tag string) (TypeMaster, error)
	FindPaymentType(ctx context.Context, vendorID int64, tag string) (TypeMaster, error)
	GetStatusType(ctx context.Context, vendorID, statusID int64) (TypeMaster, error)
	ListStatusTypes(ctx context.Context, vendorID int64) ([]TypeMaster, error)
}

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetLead(ctx context.Context, vendorID, leadID int64) (Lead, error)
	ListLeads(ctx context.Context, params ListLeadsParams) ([]Lead, int, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error)
	UpdateLeadStage(ctx context.Context, params UpdateLeadStageParams) (Lead, error)
	UpdateActivityStatus(ctx context.Context, vendorID, leadID int64, status string) (Lead, error)
}

// UserReader resolves users across vendors; callers compare VendorID themselves.
type UserReader interface {
	GetUser(ctx context.Context, userID int64) (User, error)
}

// VisibilityReader lists the leads a scoped user can see.
type VisibilityReader interface {
	ListMappedLeadIDs(ctx context.Context, vendorID, userID int64) ([]int64, error)
	ListTaskLeadIDs(ctx context.Context, vendorID, userID int64) ([]int64, error)
}

// DocumentStore manages lead_documents rows.
type DocumentStore interface {
	CreateDocument(ctx context.Context, params CreateDocumentParams) (Document, error)
	GetDocument(ctx context.Context, vendorID, docID int64) (Document, error)
	ListDocumentsByType(ctx context.Context, vendorID, leadID, docTypeID int64) ([]Document, error)
	SetTechCheckStatus(ctx context.Context, vendorID int64, docIDs []int64, status string) ([]Document, error)
}

// PaymentWriter records payments and their ledger entries.
type PaymentWriter interface {
	CreatePayment(ctx context.Context, params CreatePaymentParams) (Payment, error)
	CreateLedgerEntry(ctx context.Context, params CreateLedgerEntryParams) (LedgerEntry, error)
}

// TaskStore manages user_lead_tasks rows.
type TaskStore interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (Task, error)
	GetTask(ctx context.Context, vendorID, taskID int64) (Task, error)
	CompleteTask(ctx context.Context, params CompleteTaskParams) (Task, error)
	CompleteOpenTasks(ctx context.Context, params CompleteOpenTasksParams) ([]Task, error)
}

// MappingWriter creates lead_user_mapping rows.
type MappingWriter interface {
	CreateMapping(ctx context.Context, params CreateMappingParams) (Mapping, error)
}

// ChecklistWriter records site readiness checklist rows.
type ChecklistWriter interface {
	UpsertChecklistItem(ctx context.Context, params UpsertChecklistItemParams) (ChecklistItem, error)
}

// AuditWriter appends to the lead audit trails.
type AuditWriter interface {
	CreateDetailedLog(ctx context.Context, params CreateDetailedLogParams) (DetailedLog, error)
	CreateDocumentLog(ctx context.Context, params CreateDocumentLogParams) (DocumentLog, error)
	CreateStatusLog(ctx context.Context, params CreateStatusLogParams) (StatusLog, error)
	CreateActivityLog(ctx context.Context, params CreateActivityLogParams) (ActivityLog, error)
}

// AuditReader reads the lead timeline.
type AuditReader interface {
	ListDetailedLogs(ctx context.Context, vendorID, leadID int64, limit int) ([]DetailedLog, error)
}

// ReadinessReader backs the readiness gates.
type ReadinessReader interface {
	CountDocuments(ctx context.Context, vendorID, leadID, docTypeID int64) (int, error)
	CountChecklistItems(ctx context.Context, vendorID, leadID int64, types []string) (int, error)
}

// AggregateReader backs the dashboard computations.
type AggregateReader interface {
	CountOpenTasksDue(ctx context.Context, scope TaskScope, window Window) (int, error)
	CountCompletedTasks(ctx context.Context, scope TaskScope, window Window) (int, error)
	CountOverdueTasks(ctx context.Context, scope TaskScope, now time.Time) (int, error)
	CountLeadsByStatus(ctx context.Context, scope Scope) ([]StatusCount, error)
	CountLeadsCreated(ctx context.Context, scope Scope, window Window) (int, error)
	CountStatusEntries(ctx context.Context, scope Scope, statusID int64, window Window) (int, error)
	SumPayments(ctx context.Context, scope Scope, paymentTypeID int64, window Window) (decimal.Decimal, error)
	ListStatusLogs(ctx context.Context, scope Scope, statusIDs []int64) ([]StatusLog, error)
	ListVendorIDs(ctx context.Context) ([]int64, error)
}

// Tx is everything a unit of work may touch.
type Tx interface {
	TypeLookup
	LeadReader
	LeadWriter
	UserReader
	DocumentStore
	PaymentWriter
	TaskStore
	MappingWriter
	ChecklistWriter
	AuditWriter
	ReadinessReader
}

// Store is the full repository. InTx runs fn in one database transaction;
// any error from fn rolls back every write made through tx.
type Store interface {
	Tx
	VisibilityReader
	AggregateReader
	AuditReader
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Compile-time check that Repository implements Store
var _ Store = (*Repository)(nil)
