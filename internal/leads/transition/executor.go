// Package transition executes lead stage transitions. Every stage runs the
// same bundle inside one database transaction: upload documents, record the
// payment and its ledger credit, move the status pointer forward, close the
// stage's open tasks and write the audit trail.
package transition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/readiness"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/taxonomy"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"
)

const (
	defaultTxTimeout = 20 * time.Second
	dateLayout       = "02/01/2006"
)

// TxRunner opens the transaction a transition runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error
}

type Executor struct {
	repo      TxRunner
	objects   ports.ObjectStore
	policy    ports.UploadPolicy
	bus       events.Bus
	metrics   *metrics.Metrics
	log       *logger.Logger
	txTimeout time.Duration
	now       func() time.Time
}

func New(repo TxRunner, objects ports.ObjectStore, cfg config.TransitionConfig, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *Executor {
	timeout := defaultTxTimeout
	if cfg != nil && cfg.GetTransitionTxTimeout() > 0 {
		timeout = cfg.GetTransitionTxTimeout()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Executor{
		repo:      repo,
		objects:   objects,
		bus:       bus,
		metrics:   m,
		log:       log,
		txTimeout: timeout,
		now:       time.Now,
	}
}

// SetUploadPolicy enables content type and size checks on every file.
func (e *Executor) SetUploadPolicy(p ports.UploadPolicy) {
	e.policy = p
}

func (e *Executor) SetClock(now func() time.Time) {
	e.now = now
}

// Execute runs the stage named by in.Stage. Nothing is written when
// validation fails; any later failure rolls back every row. Objects already
// uploaded stay in the store.
func (e *Executor) Execute(ctx context.Context, in Input) (Result, error) {
	stage, ok := Lookup(in.Stage)
	if !ok {
		return Result{}, apperr.Validation(fmt.Sprintf("unknown stage %q", in.Stage))
	}
	if err := e.validate(stage, in); err != nil {
		e.failed(ctx, stage.Key, in.VendorID, in.LeadID, err)
		return Result{}, err
	}

	txCtx, cancel := context.WithTimeout(ctx, e.txTimeout)
	defer cancel()

	var result Result
	err := e.repo.InTx(txCtx, func(txCtx context.Context, tx repository.Tx) error {
		var err error
		result, err = e.run(txCtx, tx, stage, in)
		return err
	})
	if err != nil {
		err = timeoutError(err)
		e.failed(ctx, stage.Key, in.VendorID, in.LeadID, err)
		return Result{}, err
	}

	e.log.WithContext(ctx).Transition(stage.Key, in.VendorID, in.LeadID, len(result.Documents), nil)
	if e.metrics != nil {
		e.metrics.Transitions.WithLabelValues(stage.Key, "success").Inc()
	}
	if e.bus != nil {
		e.bus.Publish(ctx, events.LeadTransitioned{
			BaseEvent:     events.NewBaseEvent(ctx),
			VendorID:      in.VendorID,
			LeadID:        in.LeadID,
			Stage:         stage.Key,
			FromStatusID:  result.PreviousStatusID,
			ToStatusID:    result.Lead.StatusID,
			StatusChanged: result.StatusChanged,
			Documents:     len(result.Documents),
			ActorID:       in.ActorID,
		})
	}
	return result, nil
}

func (e *Executor) run(ctx context.Context, tx repository.Tx, stage Stage, in Input) (Result, error) {
	now := e.now()
	result := Result{
		Stage:        stage.Key,
		Documents:    make([]repository.Document, 0),
		Checklist:    make([]repository.ChecklistItem, 0),
		ClosedTasks:  make([]repository.Task, 0),
		DocumentLogs: make([]repository.DocumentLog, 0),
	}

	lead, err := tx.GetLead(ctx, in.VendorID, in.LeadID)
	if err != nil {
		return result, leadError(err)
	}
	result.PreviousStatusID = lead.StatusID

	if stage.Gate != "" {
		report, err := readiness.New(tx).Check(ctx, in.VendorID, in.LeadID, stage.Gate)
		if err != nil {
			return result, err
		}
		if !report.Ready {
			return result, apperr.Validation(fmt.Sprintf("lead is not ready for %s", stage.Label)).WithDetails(report.Reasons)
		}
	}

	// Resolve every tag before the first write.
	resolver := taxonomy.New(tx)
	docTypes := make(map[string]repository.TypeMaster, len(stage.Documents))
	for _, slot := range stage.Documents {
		if len(in.Files[slot.Field]) == 0 {
			continue
		}
		docType, err := resolver.ResolveDocument(ctx, in.VendorID, slot.Tag)
		if err != nil {
			return result, err
		}
		docTypes[slot.Field] = docType
	}

	var paymentType repository.TypeMaster
	if in.Payment != nil {
		if paymentType, err = resolver.ResolvePayment(ctx, in.VendorID, stage.Payment.Tag); err != nil {
			return result, err
		}
	}

	var next repository.TypeMaster
	advance := false
	if stage.NextStatus != "" {
		current, err := resolver.StatusTagOf(ctx, in.VendorID, lead.StatusID)
		if err != nil {
			return result, err
		}
		if stage.NextStatus.Before(current) {
			return result, apperr.Validation(fmt.Sprintf("lead is already past %s", stage.NextStatus.Label()))
		}
		if current.Before(stage.NextStatus) {
			if next, err = resolver.ResolveStatus(ctx, in.VendorID, stage.NextStatus); err != nil {
				return result, err
			}
			advance = true
		}
	}

	parts := make([]string, 0, 6)

	keys := newKeyAllocator()
	firstDoc := make(map[string]int64)
	for _, slot := range stage.Documents {
		files := in.Files[slot.Field]
		for _, f := range files {
			key := keys.next(slot.Category, in.VendorID, in.LeadID, now, f.Name)
			if err := e.upload(ctx, key, f); err != nil {
				return result, err
			}

			params := repository.CreateDocumentParams{
				VendorID:     in.VendorID,
				LeadID:       in.LeadID,
				AccountID:    lead.AccountID,
				DocTypeID:    docTypes[slot.Field].ID,
				OriginalName: f.Name,
				StorageKey:   key,
				CreatedBy:    in.ActorID,
			}
			if slot.TechCheck {
				pending := string(domain.TechCheckPending)
				params.TechCheckStatus = &pending
			}
			doc, err := tx.CreateDocument(ctx, params)
			if err != nil {
				return result, err
			}
			result.Documents = append(result.Documents, doc)
			if _, ok := firstDoc[slot.Field]; !ok {
				firstDoc[slot.Field] = doc.ID
			}
		}
		if len(files) > 0 {
			parts = append(parts, pluralize(len(files), slot.Noun)+" uploaded")
		}
	}

	if in.Payment != nil {
		date := in.Payment.Date
		if date.IsZero() {
			date = now
		}
		params := repository.CreatePaymentParams{
			VendorID:      in.VendorID,
			LeadID:        in.LeadID,
			AccountID:     lead.AccountID,
			PaymentTypeID: paymentType.ID,
			Amount:        in.Payment.Amount,
			PaymentDate:   date,
			PaymentText:   in.Payment.Text,
			CreatedBy:     in.ActorID,
		}
		if id, ok := firstDoc[stage.Payment.ProofField]; ok {
			params.PaymentFileID = &id
		}
		payment, err := tx.CreatePayment(ctx, params)
		if err != nil {
			return result, err
		}
		entry, err := tx.CreateLedgerEntry(ctx, repository.CreateLedgerEntryParams{
			VendorID:      in.VendorID,
			LeadID:        in.LeadID,
			AccountID:     lead.AccountID,
			PaymentInfoID: &payment.ID,
			Amount:        payment.Amount,
			Type:          string(domain.LedgerCredit),
			CreatedBy:     in.ActorID,
		})
		if err != nil {
			return result, err
		}
		result.Payment = &payment
		result.Ledger = &entry
		parts = append(parts, "payment of "+payment.Amount.String()+" recorded")
	}

	update := repository.UpdateLeadStageParams{VendorID: in.VendorID, LeadID: in.LeadID}
	if advance {
		update.StatusID = &next.ID
	}
	if stage.AmountOnLead && in.Payment != nil {
		amount := in.Payment.Amount
		update.FinalBookingAmount = &amount
	}
	if stage.NotesField && in.Notes != nil {
		update.CriticalDiscussionNotes = in.Notes
		parts = append(parts, "discussion notes updated")
	}
	if stage.DateField && in.Date != nil {
		update.DispatchDate = in.Date
		parts = append(parts, "dispatch date set to "+in.Date.Format(dateLayout))
	}
	if result.Lead, err = tx.UpdateLeadStage(ctx, update); err != nil {
		return result, leadError(err)
	}

	if advance {
		statusLog, err := tx.CreateStatusLog(ctx, repository.CreateStatusLogParams{
			VendorID:  in.VendorID,
			LeadID:    in.LeadID,
			StatusID:  next.ID,
			CreatedBy: in.ActorID,
		})
		if err != nil {
			return result, err
		}
		result.StatusLog = &statusLog
		result.StatusChanged = true
	}

	for _, entry := range in.Checklist {
		item, err := tx.UpsertChecklistItem(ctx, repository.UpsertChecklistItemParams{
			VendorID:  in.VendorID,
			LeadID:    in.LeadID,
			Type:      entry.Type,
			Value:     entry.Value,
			Remark:    entry.Remark,
			CreatedBy: in.ActorID,
		})
		if err != nil {
			return result, err
		}
		result.Checklist = append(result.Checklist, item)
	}
	if n := len(result.Checklist); n > 0 {
		parts = append(parts, pluralize(n, "checklist item")+" recorded")
	}

	if stage.CloseTaskType != "" {
		closed, err := tx.CompleteOpenTasks(ctx, repository.CompleteOpenTasksParams{
			VendorID:      in.VendorID,
			LeadID:        in.LeadID,
			TaskType:      stage.CloseTaskType,
			ClosedBy:      in.ActorID,
			ClosedAt:      now,
			ClosingRemark: optional(in.Remark),
		})
		if err != nil {
			return result, err
		}
		result.ClosedTasks = closed
		if len(closed) > 0 {
			parts = append(parts, pluralize(len(closed), "task")+" closed")
		}
	}

	if advance {
		parts = append(parts, "status moved to "+next.Name)
	}

	if result.Log, err = tx.CreateDetailedLog(ctx, repository.CreateDetailedLogParams{
		VendorID:    in.VendorID,
		LeadID:      in.LeadID,
		Action:      "stage:" + stage.Key,
		Description: auditMessage(stage.Label, parts, in.Remark),
		CreatedBy:   in.ActorID,
	}); err != nil {
		return result, err
	}

	for _, doc := range result.Documents {
		docLog, err := tx.CreateDocumentLog(ctx, repository.CreateDocumentLogParams{
			VendorID:  in.VendorID,
			LeadID:    in.LeadID,
			DocID:     doc.ID,
			LeadLogID: result.Log.ID,
			CreatedBy: in.ActorID,
		})
		if err != nil {
			return result, err
		}
		result.DocumentLogs = append(result.DocumentLogs, docLog)
	}

	return result, nil
}

func (e *Executor) upload(ctx context.Context, key string, f File) error {
	body, err := f.Open()
	if err != nil {
		return fmt.Errorf("open upload %s: %w", f.Name, err)
	}
	defer func() { _ = body.Close() }()

	if err := e.objects.Put(ctx, key, body, f.Size, f.ContentType); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to store uploaded file", err)
	}
	return nil
}

func (e *Executor) validate(stage Stage, in Input) error {
	if in.VendorID <= 0 || in.LeadID <= 0 || in.ActorID <= 0 {
		return apperr.Validation("vendor, lead and actor are required")
	}

	details := make(map[string]string)
	for field := range in.Files {
		if _, ok := stage.slot(field); !ok {
			details[field] = "not accepted by this stage"
		}
	}
	for _, slot := range stage.Documents {
		files := in.Files[slot.Field]
		if slot.Required && len(files) == 0 {
			details[slot.Field] = "at least one file is required"
			continue
		}
		for _, f := range files {
			if err := e.checkFile(f); err != nil {
				details[slot.Field] = err.Error()
				break
			}
		}
	}

	switch {
	case in.Payment != nil && stage.Payment == nil:
		details["payment"] = "not accepted by this stage"
	case in.Payment == nil && stage.Payment != nil && stage.Payment.Required:
		details["payment"] = "is required"
	case in.Payment != nil && !in.Payment.Amount.IsPositive():
		details["payment.amount"] = "must be greater than zero"
	}

	if in.Notes != nil && !stage.NotesField {
		details["notes"] = "not accepted by this stage"
	}
	if in.Date == nil && stage.DateField {
		details["dispatchDate"] = "is required"
	}
	if in.Date != nil && !stage.DateField {
		details["dispatchDate"] = "not accepted by this stage"
	}

	switch {
	case len(in.Checklist) > 0 && !stage.Checklist:
		details["checklist"] = "not accepted by this stage"
	case stage.Checklist:
		if msg := checkChecklist(in.Checklist); msg != "" {
			details["checklist"] = msg
		}
	}

	if len(details) > 0 {
		return apperr.Validation(fmt.Sprintf("invalid %s request", strings.ToLower(stage.Label))).WithDetails(details)
	}
	return nil
}

func (e *Executor) checkFile(f File) error {
	if strings.TrimSpace(f.Name) == "" || f.Open == nil {
		return errors.New("file is empty")
	}
	if e.policy == nil {
		return nil
	}
	if err := e.policy.ValidateContentType(f.ContentType); err != nil {
		return err
	}
	return e.policy.ValidateFileSize(f.Size)
}

func checkChecklist(entries []ChecklistEntry) string {
	if len(entries) == 0 {
		return "at least one item is required"
	}
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if !domain.IsSiteReadinessItem(entry.Type) {
			return fmt.Sprintf("unknown item %q", entry.Type)
		}
		if seen[entry.Type] {
			return fmt.Sprintf("item %q listed twice", entry.Type)
		}
		seen[entry.Type] = true
	}
	return ""
}

func (e *Executor) failed(ctx context.Context, stage string, vendorID, leadID int64, err error) {
	e.log.WithContext(ctx).Transition(stage, vendorID, leadID, 0, err)
	if e.metrics != nil {
		e.metrics.Transitions.WithLabelValues(stage, "failure").Inc()
	}
	if e.bus != nil {
		e.bus.Publish(ctx, events.LeadTransitionFailed{
			BaseEvent: events.NewBaseEvent(ctx),
			VendorID:  vendorID,
			LeadID:    leadID,
			Stage:     stage,
			Reason:    err.Error(),
		})
	}
}

func leadError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

func timeoutError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindInternal, "transition timed out", err)
	}
	return err
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
