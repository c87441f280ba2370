package transition

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/taxonomy"
	"leadflow_backend/platform/apperr"
)

const techCheckStage = "tech-check"

// ReviewInput approves or rejects client documents. An empty DocumentIDs
// reviews every document still pending.
type ReviewInput struct {
	VendorID    int64
	LeadID      int64
	ActorID     int64
	DocumentIDs []int64
	Approve     bool
	Remark      string
}

type ReviewResult struct {
	Lead             repository.Lead
	PreviousStatusID int64
	StatusChanged    bool
	StatusLog        *repository.StatusLog
	Documents        []repository.Document
	Log              repository.DetailedLog
	DocumentLogs     []repository.DocumentLog
}

// ReviewTechCheck flips the tech-check state of client documents. Rejection
// keeps the lead where it is. Approving the last unapproved document moves a
// lead sitting at Tech Check forward to Order Login; at any other stage only
// the document state changes.
func (e *Executor) ReviewTechCheck(ctx context.Context, in ReviewInput) (ReviewResult, error) {
	if in.VendorID <= 0 || in.LeadID <= 0 || in.ActorID <= 0 {
		return ReviewResult{}, apperr.Validation("vendor, lead and actor are required")
	}
	if !in.Approve && strings.TrimSpace(in.Remark) == "" {
		err := apperr.Validation("a remark is required to reject documents")
		e.failed(ctx, techCheckStage, in.VendorID, in.LeadID, err)
		return ReviewResult{}, err
	}

	txCtx, cancel := context.WithTimeout(ctx, e.txTimeout)
	defer cancel()

	var result ReviewResult
	err := e.repo.InTx(txCtx, func(txCtx context.Context, tx repository.Tx) error {
		var err error
		result, err = e.review(txCtx, tx, in)
		return err
	})
	if err != nil {
		err = timeoutError(err)
		e.failed(ctx, techCheckStage, in.VendorID, in.LeadID, err)
		return ReviewResult{}, err
	}

	e.log.WithContext(ctx).Transition(techCheckStage, in.VendorID, in.LeadID, 0, nil)
	if e.metrics != nil {
		e.metrics.Transitions.WithLabelValues(techCheckStage, "success").Inc()
	}
	if e.bus != nil {
		e.bus.Publish(ctx, events.LeadTransitioned{
			BaseEvent:     events.NewBaseEvent(ctx),
			VendorID:      in.VendorID,
			LeadID:        in.LeadID,
			Stage:         techCheckStage,
			FromStatusID:  result.PreviousStatusID,
			ToStatusID:    result.Lead.StatusID,
			StatusChanged: result.StatusChanged,
			ActorID:       in.ActorID,
		})
	}
	return result, nil
}

func (e *Executor) review(ctx context.Context, tx repository.Tx, in ReviewInput) (ReviewResult, error) {
	result := ReviewResult{DocumentLogs: make([]repository.DocumentLog, 0)}

	lead, err := tx.GetLead(ctx, in.VendorID, in.LeadID)
	if err != nil {
		return result, leadError(err)
	}
	result.Lead = lead
	result.PreviousStatusID = lead.StatusID

	resolver := taxonomy.New(tx)
	docType, err := resolver.ResolveDocument(ctx, in.VendorID, domain.DocClientDocumentation)
	if err != nil {
		return result, err
	}
	docs, err := tx.ListDocumentsByType(ctx, in.VendorID, in.LeadID, docType.ID)
	if err != nil {
		return result, err
	}

	targets, err := reviewTargets(docs, in.DocumentIDs)
	if err != nil {
		return result, err
	}

	status := domain.TechCheckRejected
	if in.Approve {
		status = domain.TechCheckApproved
	}
	if result.Documents, err = tx.SetTechCheckStatus(ctx, in.VendorID, targets, string(status)); err != nil {
		return result, err
	}
	parts := []string{pluralize(len(result.Documents), "client document") + " " + string(status)}

	if in.Approve && allApproved(docs, targets) {
		current, err := resolver.StatusTagOf(ctx, in.VendorID, lead.StatusID)
		if err != nil {
			return result, err
		}
		if current == domain.StatusTechCheck {
			next, err := resolver.ResolveStatus(ctx, in.VendorID, domain.StatusOrderLogin)
			if err != nil {
				return result, err
			}
			if result.Lead, err = tx.UpdateLeadStage(ctx, repository.UpdateLeadStageParams{
				VendorID: in.VendorID,
				LeadID:   in.LeadID,
				StatusID: &next.ID,
			}); err != nil {
				return result, leadError(err)
			}
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
			parts = append(parts, "status moved to "+next.Name)
		}
	}

	action := "tech-check:reject"
	if in.Approve {
		action = "tech-check:approve"
	}
	if result.Log, err = tx.CreateDetailedLog(ctx, repository.CreateDetailedLogParams{
		VendorID:    in.VendorID,
		LeadID:      in.LeadID,
		Action:      action,
		Description: auditMessage("Tech Check", parts, in.Remark),
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

// reviewTargets picks the documents to review. Explicit ids must all be
// client documents of the lead.
func reviewTargets(docs []repository.Document, ids []int64) ([]int64, error) {
	if len(ids) > 0 {
		for _, id := range ids {
			found := slices.ContainsFunc(docs, func(d repository.Document) bool { return d.ID == id })
			if !found {
				return nil, apperr.NotFound(fmt.Sprintf("client document %d not found on lead", id))
			}
		}
		return ids, nil
	}

	targets := make([]int64, 0)
	for _, d := range docs {
		if d.TechCheckStatus == nil || *d.TechCheckStatus == string(domain.TechCheckPending) {
			targets = append(targets, d.ID)
		}
	}
	if len(targets) == 0 {
		return nil, apperr.Validation("no client documents awaiting tech check")
	}
	return targets, nil
}

// allApproved reports whether every document is approved once approved is applied.
func allApproved(docs []repository.Document, approved []int64) bool {
	for _, d := range docs {
		if slices.Contains(approved, d.ID) {
			continue
		}
		if d.TechCheckStatus == nil || *d.TechCheckStatus != string(domain.TechCheckApproved) {
			return false
		}
	}
	return true
}
