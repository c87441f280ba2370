package transition

import (
	"io"
	"time"

	"github.com/shopspring/decimal"

	"leadflow_backend/internal/leads/repository"
)

// File is one upload. Open is called once, inside the transaction.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type Payment struct {
	Amount decimal.Decimal
	Date   time.Time // zero means now
	Text   *string
}

type ChecklistEntry struct {
	Type   string
	Value  bool
	Remark *string
}

// Input is the stage-independent transition payload. Files are keyed by slot field.
type Input struct {
	Stage     string
	VendorID  int64
	LeadID    int64
	ActorID   int64
	Files     map[string][]File
	Payment   *Payment
	Notes     *string
	Date      *time.Time
	Checklist []ChecklistEntry
	Remark    string
}

// Result lists every row a transition created or updated.
type Result struct {
	Stage            string
	Lead             repository.Lead
	PreviousStatusID int64
	StatusChanged    bool
	StatusLog        *repository.StatusLog
	Documents        []repository.Document
	Payment          *repository.Payment
	Ledger           *repository.LedgerEntry
	Checklist        []repository.ChecklistItem
	ClosedTasks      []repository.Task
	Log              repository.DetailedLog
	DocumentLogs     []repository.DocumentLog
}
