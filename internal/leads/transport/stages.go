package transport

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"leadflow_backend/internal/leads/transition"
)

// StageRequest is the form part of a multipart stage transition. Files are
// bound separately by the handler.
type StageRequest interface {
	Apply(in *transition.Input) error
}

// Stage form fields.
type RemarkFields struct {
	Remark string `form:"remark" validate:"omitempty,max=1000"`
}

type PaymentFields struct {
	Amount      string `form:"amount" validate:"required,numeric"`
	PaymentDate string `form:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	PaymentText string `form:"paymentText" validate:"omitempty,max=500"`
}

type OptionalPaymentFields struct {
	Amount      string `form:"amount" validate:"omitempty,numeric"`
	PaymentDate string `form:"paymentDate" validate:"omitempty,datetime=2006-01-02"`
	PaymentText string `form:"paymentText" validate:"omitempty,max=500"`
}

type DocumentsRequest struct {
	RemarkFields
}

type SiteMeasurementRequest struct {
	RemarkFields
	OptionalPaymentFields
}

type BookingRequest struct {
	RemarkFields
	PaymentFields
}

type FinalMeasurementRequest struct {
	RemarkFields
	CriticalDiscussionNotes string `form:"criticalDiscussionNotes" validate:"omitempty,max=2000"`
}

type ClientApprovalRequest struct {
	RemarkFields
	OptionalPaymentFields
}

type SiteReadinessRequest struct {
	RemarkFields
	// Checklist is a JSON array of {type, value, remark}.
	Checklist string `form:"checklist" validate:"required,json"`
}

type DispatchPlanningRequest struct {
	RemarkFields
	DispatchDate string `form:"dispatchDate" validate:"required,datetime=2006-01-02"`
}

type HandoverRequest struct {
	RemarkFields
	OptionalPaymentFields
}

// NewStageRequest returns an empty form for stage, or false for an unknown stage.
func NewStageRequest(stage string) (StageRequest, bool) {
	switch stage {
	case "site-measurement":
		return &SiteMeasurementRequest{}, true
	case "booking":
		return &BookingRequest{}, true
	case "final-measurement":
		return &FinalMeasurementRequest{}, true
	case "client-approval":
		return &ClientApprovalRequest{}, true
	case "site-readiness":
		return &SiteReadinessRequest{}, true
	case "dispatch-planning":
		return &DispatchPlanningRequest{}, true
	case "handover":
		return &HandoverRequest{}, true
	case "designing", "client-documentation", "order-login", "production", "dispatch", "installation", "complete":
		return &DocumentsRequest{}, true
	default:
		return nil, false
	}
}

func (r RemarkFields) apply(in *transition.Input) {
	in.Remark = strings.TrimSpace(r.Remark)
}

func payment(amount, date, text string) (*transition.Payment, error) {
	if strings.TrimSpace(amount) == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	p := &transition.Payment{Amount: value}
	if p.Date, err = ParseDate(date); err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(text); t != "" {
		p.Text = &t
	}
	return p, nil
}

func (r *DocumentsRequest) Apply(in *transition.Input) error {
	r.RemarkFields.apply(in)
	return nil
}

func (r *SiteMeasurementRequest) Apply(in *transition.Input) error {
	r.RemarkFields.apply(in)
	var err error
	in.Payment, err = payment(r.Amount, r.PaymentDate, r.PaymentText)
	return err
}

func (r *BookingRequest) Apply(in *transition.Input) error {
	r.RemarkFields.apply(in)
	var err error
	in.Payment, err = payment(r.Amount, r.PaymentDate, r.PaymentText)
	return err
}

func (r *FinalMeasurementRequest) Apply(in *transition.Input) error {
	r.RemarkFields.apply(in)
	if notes := strings.TrimSpace(r.CriticalDiscussionNotes); notes != "" {
		in.Notes = &notes
	}
	return nil
}

func (r *ClientApprovalRequest) Apply(in *transition.Input) error {
	r.RemarkFields.apply(in)
	var err error
	in.Payment, err = payment(r.Amount, r.PaymentDate, r.PaymentText)
	return err
}

type checklistEntry struct {
	Type   string  `json:"type"`
	Value  bool    `json:"value"`
	Remark *string `json:"remark"`
}

func (r *SiteReadinessRequest) Apply(in *transition.Input) error {
	r.RemarkFields.apply(in)
	var entries []checklistEntry
	if err := json.Unmarshal([]byte(r.Checklist), &entries); err != nil {
		return fmt.Errorf("checklist must be a JSON array: %w", err)
	}
	in.Checklist = make([]transition.ChecklistEntry, 0, len(entries))
	for _, e := range entries {
		in.Checklist = append(in.Checklist, transition.ChecklistEntry{
			Type:   strings.TrimSpace(e.Type),
			Value:  e.Value,
			Remark: e.Remark,
		})
	}
	return nil
}

func (r *DispatchPlanningRequest) Apply(in *transition.Input) error {
	r.RemarkFields.apply(in)
	date, err := ParseDate(r.DispatchDate)
	if err != nil {
		return err
	}
	in.Date = &date
	return nil
}

func (r *HandoverRequest) Apply(in *transition.Input) error {
	r.RemarkFields.apply(in)
	var err error
	in.Payment, err = payment(r.Amount, r.PaymentDate, r.PaymentText)
	return err
}
