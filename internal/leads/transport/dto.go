package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"leadflow_backend/platform/httpkit"
)

// Request DTOs
type CreateLeadRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=200"`
	ContactNo   string  `json:"contactNo" validate:"required,min=5,max=20"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	SiteAddress *string `json:"siteAddress,omitempty" validate:"omitempty,max=500"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	AccountID   *int64  `json:"accountId,omitempty" validate:"omitempty,gt=0"`
}

type ListLeadsQuery struct {
	Page  int `form:"page" validate:"omitempty,min=1"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

type UpdateActivityStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=onGoing onHold lost lostApproval"`
	Remark string `json:"remark" validate:"required,notblank,max=1000"`
}

type AssignTaskRequest struct {
	AssigneeID int64  `json:"assigneeId" validate:"required,gt=0"`
	TaskType   string `json:"taskType" validate:"required,notblank,max=100"`
	DueDate    Date   `json:"dueDate" validate:"required"`
	Remark     string `json:"remark" validate:"omitempty,max=1000"`
}

type CompleteTaskRequest struct {
	ClosingRemark string `json:"closingRemark" validate:"omitempty,max=1000"`
}

type MapUsersRequest struct {
	UserIDs []int64 `json:"userIds" validate:"required,min=1,dive,gt=0"`
	Type    string  `json:"type" validate:"required,notblank,max=100"`
}

type TechCheckReviewRequest struct {
	Approve     *bool   `json:"approve" validate:"required"`
	DocumentIDs []int64 `json:"documentIds" validate:"omitempty,dive,gt=0"`
	Remark      string  `json:"remark" validate:"omitempty,max=1000"`
}

// Response DTOs
type LeadResponse struct {
	ID                      int64            `json:"id"`
	VendorID                int64            `json:"vendorId"`
	AccountID               *int64           `json:"accountId,omitempty"`
	StatusID                int64            `json:"statusId"`
	ActivityStatus          string           `json:"activityStatus"`
	Name                    string           `json:"name"`
	ContactNo               string           `json:"contactNo"`
	Email                   *string          `json:"email,omitempty"`
	SiteAddress             *string          `json:"siteAddress,omitempty"`
	FinalBookingAmount      *decimal.Decimal `json:"finalBookingAmount,omitempty"`
	CriticalDiscussionNotes *string          `json:"criticalDiscussionNotes,omitempty"`
	DispatchDate            *time.Time       `json:"dispatchDate,omitempty"`
	Notes                   *string          `json:"notes,omitempty"`
	CreatedBy               int64            `json:"createdBy"`
	CreatedAt               time.Time        `json:"createdAt"`
	UpdatedAt               time.Time        `json:"updatedAt"`
}

// LeadListResponse is one page of a stage listing.
type LeadListResponse = httpkit.Page[LeadResponse]

type DocumentResponse struct {
	ID              int64     `json:"id"`
	LeadID          int64     `json:"leadId"`
	DocTypeID       int64     `json:"docTypeId"`
	OriginalName    string    `json:"docOgName"`
	StorageKey      string    `json:"docSysName"`
	TechCheckStatus *string   `json:"techCheckStatus,omitempty"`
	CreatedBy       int64     `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

type PaymentResponse struct {
	ID            int64           `json:"id"`
	PaymentTypeID int64           `json:"paymentTypeId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"paymentDate"`
	PaymentFileID *int64          `json:"paymentFileId,omitempty"`
	PaymentText   *string         `json:"paymentText,omitempty"`
}

type LedgerEntryResponse struct {
	ID            int64           `json:"id"`
	PaymentInfoID *int64          `json:"paymentInfoId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
}

type TaskResponse struct {
	ID            int64      `json:"id"`
	LeadID        int64      `json:"leadId"`
	UserID        int64      `json:"userId"`
	CreatedBy     int64      `json:"createdBy"`
	TaskType      string     `json:"taskType"`
	DueDate       time.Time  `json:"dueDate"`
	Remark        *string    `json:"remark,omitempty"`
	Status        string     `json:"status"`
	ClosedBy      *int64     `json:"closedBy,omitempty"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
	ClosingRemark *string    `json:"closingRemark,omitempty"`
}

type ChecklistItemResponse struct {
	ID     int64   `json:"id"`
	Type   string  `json:"type"`
	Value  bool    `json:"value"`
	Remark *string `json:"remark,omitempty"`
}

type MappingResponse struct {
	ID     int64  `json:"id"`
	LeadID int64  `json:"leadId"`
	UserID int64  `json:"userId"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type LogResponse struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TransitionResponse struct {
	Stage            string                  `json:"stage"`
	Lead             LeadResponse            `json:"lead"`
	PreviousStatusID int64                   `json:"previousStatusId"`
	StatusChanged    bool                    `json:"statusChanged"`
	Documents        []DocumentResponse      `json:"documents"`
	Payment          *PaymentResponse        `json:"payment,omitempty"`
	Ledger           *LedgerEntryResponse    `json:"ledger,omitempty"`
	Checklist        []ChecklistItemResponse `json:"checklist"`
	ClosedTasks      []TaskResponse          `json:"closedTasks"`
	Log              LogResponse             `json:"log"`
	DocumentLogs     int                     `json:"documentLogs"`
}

type TechCheckReviewResponse struct {
	Lead             LeadResponse       `json:"lead"`
	PreviousStatusID int64              `json:"previousStatusId"`
	StatusChanged    bool               `json:"statusChanged"`
	Documents        []DocumentResponse `json:"documents"`
	Log              LogResponse        `json:"log"`
}

type AssignTaskResponse struct {
	Task          TaskResponse `json:"task"`
	Lead          LeadResponse `json:"lead"`
	StatusChanged bool         `json:"statusChanged"`
}

type DocumentURLResponse struct {
	URL       string    `json:"url"`
	FileName  string    `json:"fileName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ActivityStatusResponse struct {
	Lead      LeadResponse `json:"lead"`
	OldStatus string       `json:"oldStatus"`
	NewStatus string       `json:"newStatus"`
}
