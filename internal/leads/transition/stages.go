package transition

import (
	"sort"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/readiness"
)

// DocumentSlot is one multipart file field a stage accepts.
type DocumentSlot struct {
	Field    string
	Tag      domain.DocumentTag
	Category string // first segment of the storage key
	Noun     string // singular noun used in the audit message
	Required bool
	// TechCheck marks created documents as pending review.
	TechCheck bool
}

// PaymentSlot describes the payment a stage records.
type PaymentSlot struct {
	Tag      domain.PaymentTag
	Required bool
	// ProofField names the document slot whose first file becomes payment_file_id.
	ProofField string
}

// Stage is one row of the transition table.
type Stage struct {
	Key        string
	Label      string
	Documents  []DocumentSlot
	Payment    *PaymentSlot
	NextStatus domain.StatusTag // empty keeps the current status
	// CloseTaskType closes every open task of this type on the lead.
	CloseTaskType string
	Gate          readiness.Gate
	// AmountOnLead copies the payment amount into leads.final_booking_amount.
	AmountOnLead bool
	// NotesField accepts critical discussion notes.
	NotesField bool
	// DateField requires a dispatch date.
	DateField bool
	// Checklist accepts site readiness checklist rows.
	Checklist bool
}

func (s Stage) slot(field string) (DocumentSlot, bool) {
	for _, d := range s.Documents {
		if d.Field == field {
			return d, true
		}
	}
	return DocumentSlot{}, false
}

var stages = map[string]Stage{
	"site-measurement": {
		Key:   "site-measurement",
		Label: "Site Measurement",
		Documents: []DocumentSlot{
			{Field: "site_measurement_docs", Tag: domain.DocSiteMeasurement, Category: "site-measurement", Noun: "site measurement document", Required: true},
			{Field: "current_site_photos", Tag: domain.DocCurrentSitePhotos, Category: "site-photos", Noun: "current site photo"},
		},
		Payment:       &PaymentSlot{Tag: domain.PaymentSiteMeasurementFee, ProofField: "site_measurement_docs"},
		NextStatus:    domain.StatusDesigning,
		CloseTaskType: "Site Measurement",
	},
	"designing": {
		Key:   "designing",
		Label: "Designing",
		Documents: []DocumentSlot{
			{Field: "design_files", Tag: domain.DocDesignFiles, Category: "design", Noun: "design file", Required: true},
		},
	},
	"booking": {
		Key:   "booking",
		Label: "Booking",
		Documents: []DocumentSlot{
			{Field: "final_documents", Tag: domain.DocFinalDocuments, Category: "final-documents", Noun: "final document", Required: true},
		},
		Payment:      &PaymentSlot{Tag: domain.PaymentBookingAmount, Required: true, ProofField: "final_documents"},
		NextStatus:   domain.StatusBooking,
		AmountOnLead: true,
	},
	"final-measurement": {
		Key:   "final-measurement",
		Label: "Final Measurement",
		Documents: []DocumentSlot{
			{Field: "final_measurement_doc", Tag: domain.DocFinalMeasurement, Category: "final-measurement", Noun: "final measurement document", Required: true},
		},
		NextStatus:    domain.StatusClientDocumentation,
		CloseTaskType: "Final Measurement",
		NotesField:    true,
	},
	"client-documentation": {
		Key:   "client-documentation",
		Label: "Client Documentation",
		Documents: []DocumentSlot{
			{Field: "client_documents", Tag: domain.DocClientDocumentation, Category: "client-documentation", Noun: "client document", Required: true, TechCheck: true},
		},
		NextStatus: domain.StatusClientApproval,
	},
	"client-approval": {
		Key:   "client-approval",
		Label: "Client Approval",
		Documents: []DocumentSlot{
			{Field: "approval_documents", Tag: domain.DocClientApproval, Category: "client-approval", Noun: "approval document", Required: true},
		},
		Payment:    &PaymentSlot{Tag: domain.PaymentAdvance, ProofField: "approval_documents"},
		NextStatus: domain.StatusTechCheck,
		Gate:       readiness.GateClientDocumentationToTechCheck,
	},
	"order-login": {
		Key:   "order-login",
		Label: "Order Login",
		Documents: []DocumentSlot{
			{Field: "order_login_files", Tag: domain.DocOrderLogin, Category: "order-login", Noun: "order login file"},
		},
		NextStatus: domain.StatusProduction,
	},
	"production": {
		Key:   "production",
		Label: "Production",
		Documents: []DocumentSlot{
			{Field: "production_files", Tag: domain.DocProduction, Category: "production", Noun: "production file"},
		},
		NextStatus: domain.StatusReadyToDispatch,
	},
	"site-readiness": {
		Key:   "site-readiness",
		Label: "Site Readiness",
		Documents: []DocumentSlot{
			{Field: "current_site_photos", Tag: domain.DocSiteReadinessPhotos, Category: "site-readiness", Noun: "current site photo"},
		},
		NextStatus: domain.StatusSiteReadiness,
		Checklist:  true,
	},
	"dispatch-planning": {
		Key:        "dispatch-planning",
		Label:      "Dispatch Planning",
		NextStatus: domain.StatusDispatchPlanning,
		Gate:       readiness.GateSiteReadinessToDispatchPlanning,
		DateField:  true,
	},
	"dispatch": {
		Key:   "dispatch",
		Label: "Dispatch",
		Documents: []DocumentSlot{
			{Field: "dispatch_photos", Tag: domain.DocDispatchPhotos, Category: "dispatch", Noun: "dispatch photo", Required: true},
		},
		NextStatus: domain.StatusDispatch,
	},
	"installation": {
		Key:   "installation",
		Label: "Installation",
		Documents: []DocumentSlot{
			{Field: "installation_photos", Tag: domain.DocInstallation, Category: "installation", Noun: "installation photo"},
		},
		NextStatus: domain.StatusUnderInstallation,
	},
	"handover": {
		Key:   "handover",
		Label: "Final Handover",
		Documents: []DocumentSlot{
			{Field: "handover_documents", Tag: domain.DocHandover, Category: "handover", Noun: "handover document", Required: true},
		},
		Payment:    &PaymentSlot{Tag: domain.PaymentAdvance, ProofField: "handover_documents"},
		NextStatus: domain.StatusFinalHandover,
	},
	"complete": {
		Key:        "complete",
		Label:      "Project Completion",
		NextStatus: domain.StatusProjectCompleted,
	},
}

// Lookup returns the stage registered under key.
func Lookup(key string) (Stage, bool) {
	s, ok := stages[key]
	return s, ok
}

// Stages lists every stage ordered by its target status, then key.
func Stages() []Stage {
	out := make([]Stage, 0, len(stages))
	for _, s := range stages {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NextStatus.Ordinal() != out[j].NextStatus.Ordinal() {
			return out[i].NextStatus.Ordinal() < out[j].NextStatus.Ordinal()
		}
		return out[i].Key < out[j].Key
	})
	return out
}
