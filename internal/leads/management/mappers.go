package management

import (
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/tasks"
	"leadflow_backend/internal/leads/transition"
	"leadflow_backend/internal/leads/transport"
)

func ToLeadResponse(lead repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:                      lead.ID,
		VendorID:                lead.VendorID,
		AccountID:               lead.AccountID,
		StatusID:                lead.StatusID,
		ActivityStatus:          lead.ActivityStatus,
		Name:                    lead.Name,
		ContactNo:               lead.ContactNo,
		Email:                   lead.Email,
		SiteAddress:             lead.SiteAddress,
		CriticalDiscussionNotes: lead.CriticalDiscussionNotes,
		DispatchDate:            lead.DispatchDate,
		Notes:                   lead.Notes,
		CreatedBy:               lead.CreatedBy,
		CreatedAt:               lead.CreatedAt,
		UpdatedAt:               lead.UpdatedAt,
	}
	if lead.FinalBookingAmount.Valid {
		amount := lead.FinalBookingAmount.Decimal
		resp.FinalBookingAmount = &amount
	}
	return resp
}

func ToDocumentResponse(doc repository.Document) transport.DocumentResponse {
	return transport.DocumentResponse{
		ID:              doc.ID,
		LeadID:          doc.LeadID,
		DocTypeID:       doc.DocTypeID,
		OriginalName:    doc.OriginalName,
		StorageKey:      doc.StorageKey,
		TechCheckStatus: doc.TechCheckStatus,
		CreatedBy:       doc.CreatedBy,
		CreatedAt:       doc.CreatedAt,
	}
}

func ToTaskResponse(t repository.Task) transport.TaskResponse {
	return transport.TaskResponse{
		ID:            t.ID,
		LeadID:        t.LeadID,
		UserID:        t.UserID,
		CreatedBy:     t.CreatedBy,
		TaskType:      t.TaskType,
		DueDate:       t.DueDate,
		Remark:        t.Remark,
		Status:        t.Status,
		ClosedBy:      t.ClosedBy,
		ClosedAt:      t.ClosedAt,
		ClosingRemark: t.ClosingRemark,
	}
}

func ToMappingResponse(m repository.Mapping) transport.MappingResponse {
	return transport.MappingResponse{
		ID:     m.ID,
		LeadID: m.LeadID,
		UserID: m.UserID,
		Type:   m.Type,
		Status: m.Status,
	}
}

func ToLogResponse(l repository.DetailedLog) transport.LogResponse {
	return transport.LogResponse{
		ID:          l.ID,
		Action:      l.Action,
		Description: l.Description,
		CreatedBy:   l.CreatedBy,
		CreatedAt:   l.CreatedAt,
	}
}

func toDocumentResponses(docs []repository.Document) []transport.DocumentResponse {
	items := make([]transport.DocumentResponse, len(docs))
	for i, d := range docs {
		items[i] = ToDocumentResponse(d)
	}
	return items
}

// ToTransitionResponse flattens an executor result for the API.
func ToTransitionResponse(r transition.Result) transport.TransitionResponse {
	resp := transport.TransitionResponse{
		Stage:            r.Stage,
		Lead:             ToLeadResponse(r.Lead),
		PreviousStatusID: r.PreviousStatusID,
		StatusChanged:    r.StatusChanged,
		Documents:        toDocumentResponses(r.Documents),
		Checklist:        make([]transport.ChecklistItemResponse, len(r.Checklist)),
		ClosedTasks:      make([]transport.TaskResponse, len(r.ClosedTasks)),
		Log:              ToLogResponse(r.Log),
		DocumentLogs:     len(r.DocumentLogs),
	}
	if r.Payment != nil {
		resp.Payment = &transport.PaymentResponse{
			ID:            r.Payment.ID,
			PaymentTypeID: r.Payment.PaymentTypeID,
			Amount:        r.Payment.Amount,
			PaymentDate:   r.Payment.PaymentDate,
			PaymentFileID: r.Payment.PaymentFileID,
			PaymentText:   r.Payment.PaymentText,
		}
	}
	if r.Ledger != nil {
		resp.Ledger = &transport.LedgerEntryResponse{
			ID:            r.Ledger.ID,
			PaymentInfoID: r.Ledger.PaymentInfoID,
			Amount:        r.Ledger.Amount,
			Type:          r.Ledger.Type,
		}
	}
	for i, item := range r.Checklist {
		resp.Checklist[i] = transport.ChecklistItemResponse{ID: item.ID, Type: item.Type, Value: item.Value, Remark: item.Remark}
	}
	for i, t := range r.ClosedTasks {
		resp.ClosedTasks[i] = ToTaskResponse(t)
	}
	return resp
}

func ToTechCheckReviewResponse(r transition.ReviewResult) transport.TechCheckReviewResponse {
	return transport.TechCheckReviewResponse{
		Lead:             ToLeadResponse(r.Lead),
		PreviousStatusID: r.PreviousStatusID,
		StatusChanged:    r.StatusChanged,
		Documents:        toDocumentResponses(r.Documents),
		Log:              ToLogResponse(r.Log),
	}
}

func ToAssignTaskResponse(r tasks.AssignResult) transport.AssignTaskResponse {
	return transport.AssignTaskResponse{
		Task:          ToTaskResponse(r.Task),
		Lead:          ToLeadResponse(r.Lead),
		StatusChanged: r.StatusChanged,
	}
}
