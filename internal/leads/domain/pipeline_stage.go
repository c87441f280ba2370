package domain

import (
	"strconv"
	"strings"
)

// StatusTag is the stable identifier of a pipeline stage ("Type N"). Each vendor
// maps tags to its own numeric status ids in status_type_master.
type StatusTag string

const (
	StatusOpen                   StatusTag = "Type 1"
	StatusInitialSiteMeasurement StatusTag = "Type 2"
	StatusDesigning              StatusTag = "Type 3"
	StatusBooking                StatusTag = "Type 4"
	StatusFinalMeasurement       StatusTag = "Type 5"
	StatusClientDocumentation    StatusTag = "Type 6"
	StatusClientApproval         StatusTag = "Type 7"
	StatusTechCheck              StatusTag = "Type 8"
	StatusOrderLogin             StatusTag = "Type 9"
	StatusProduction             StatusTag = "Type 10"
	StatusReadyToDispatch        StatusTag = "Type 11"
	StatusSiteReadiness          StatusTag = "Type 12"
	StatusDispatchPlanning       StatusTag = "Type 13"
	StatusDispatch               StatusTag = "Type 14"
	StatusUnderInstallation      StatusTag = "Type 15"
	StatusFinalHandover          StatusTag = "Type 16"
	StatusProjectCompleted       StatusTag = "Type 17"
)

type statusInfo struct {
	label string
	slug  string
}

// pipeline lists every stage in forward order.
var pipeline = []StatusTag{
	StatusOpen,
	StatusInitialSiteMeasurement,
	StatusDesigning,
	StatusBooking,
	StatusFinalMeasurement,
	StatusClientDocumentation,
	StatusClientApproval,
	StatusTechCheck,
	StatusOrderLogin,
	StatusProduction,
	StatusReadyToDispatch,
	StatusSiteReadiness,
	StatusDispatchPlanning,
	StatusDispatch,
	StatusUnderInstallation,
	StatusFinalHandover,
	StatusProjectCompleted,
}

var statuses = map[StatusTag]statusInfo{
	StatusOpen:                   {"Open", "open"},
	StatusInitialSiteMeasurement: {"Initial Site Measurement", "initial-site-measurement"},
	StatusDesigning:              {"Designing", "designing"},
	StatusBooking:                {"Booking", "booking"},
	StatusFinalMeasurement:       {"Final Measurement", "final-measurement"},
	StatusClientDocumentation:    {"Client Documentation", "client-documentation"},
	StatusClientApproval:         {"Client Approval", "client-approval"},
	StatusTechCheck:              {"Tech Check", "tech-check"},
	StatusOrderLogin:             {"Order Login", "order-login"},
	StatusProduction:             {"Production", "production"},
	StatusReadyToDispatch:        {"Ready To Dispatch", "ready-to-dispatch"},
	StatusSiteReadiness:          {"Site Readiness", "site-readiness"},
	StatusDispatchPlanning:       {"Dispatch Planning", "dispatch-planning"},
	StatusDispatch:               {"Dispatch", "dispatch"},
	StatusUnderInstallation:      {"Under Installation", "under-installation"},
	StatusFinalHandover:          {"Final Handover", "final-handover"},
	StatusProjectCompleted:       {"Project Completed", "project-completed"},
}

// Pipeline returns the stages in forward order.
func Pipeline() []StatusTag {
	out := make([]StatusTag, len(pipeline))
	copy(out, pipeline)
	return out
}

// Known reports whether t is one of the pipeline stages.
func (t StatusTag) Known() bool {
	_, ok := statuses[t]
	return ok
}

// Label is the default human label; vendors may name the stage differently.
func (t StatusTag) Label() string {
	if info, ok := statuses[t]; ok {
		return info.label
	}
	return string(t)
}

// Slug is the URL form used by listing and task routes.
func (t StatusTag) Slug() string {
	return statuses[t].slug
}

// Ordinal is the N of "Type N", or 0 for anything else.
func (t StatusTag) Ordinal() int {
	return tagOrdinal(string(t))
}

// Before reports whether t comes earlier in the pipeline than other.
func (t StatusTag) Before(other StatusTag) bool {
	return t.Ordinal() < other.Ordinal()
}

// ParseStatusSlug maps a slug such as "dispatch-planning" back to its tag.
func ParseStatusSlug(slug string) (StatusTag, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for tag, info := range statuses {
		if info.slug == slug {
			return tag, true
		}
	}
	return "", false
}

func tagOrdinal(tag string) int {
	rest, ok := strings.CutPrefix(tag, "Type ")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
