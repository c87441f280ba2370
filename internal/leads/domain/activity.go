package domain

import "strings"

// ActivityStatus is orthogonal to the pipeline stage and decides whether a lead
// shows up in active stage listings.
type ActivityStatus string

const (
	ActivityOnGoing      ActivityStatus = "onGoing"
	ActivityOnHold       ActivityStatus = "onHold"
	ActivityLost         ActivityStatus = "lost"
	ActivityLostApproval ActivityStatus = "lostApproval"
)

// ParseActivityStatus accepts the canonical spelling case-insensitively.
func ParseActivityStatus(s string) (ActivityStatus, bool) {
	for _, candidate := range []ActivityStatus{ActivityOnGoing, ActivityOnHold, ActivityLost, ActivityLostApproval} {
		if strings.EqualFold(string(candidate), strings.TrimSpace(s)) {
			return candidate, true
		}
	}
	return "", false
}

// FollowUpTaskType never advances the lead's stage.
const FollowUpTaskType = "Follow Up"

// IsFollowUp reports whether taskType is the non-advancing follow-up type.
func IsFollowUp(taskType string) bool {
	return strings.EqualFold(strings.TrimSpace(taskType), FollowUpTaskType)
}

// Admin role names. Anyone else is scoped to mapped and task-owned leads.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

// IsAdminRole reports whether role sees every lead of its vendor.
func IsAdminRole(role string) bool {
	role = strings.TrimSpace(role)
	return strings.EqualFold(role, RoleAdmin) || strings.EqualFold(role, RoleSuperAdmin)
}

// SiteReadinessItems are the checklist keys every lead must record before dispatch planning.
var SiteReadinessItems = []string{
	"site_cleared",
	"civil_work_complete",
	"electrical_points_ready",
	"plumbing_points_ready",
	"flooring_complete",
	"painting_complete",
}

// IsSiteReadinessItem reports whether key is one of SiteReadinessItems.
func IsSiteReadinessItem(key string) bool {
	for _, item := range SiteReadinessItems {
		if item == key {
			return true
		}
	}
	return false
}
