// Package access decides which leads a user may see.
package access

import (
	"context"
	"errors"
	"slices"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
)

// Role is the classified caller.
type Role struct {
	UserID   int64
	VendorID int64
	RoleName string
	IsAdmin  bool
}

// Classifier maps a user to admin or scoped access.
type Classifier struct {
	users repository.UserReader
}

func NewClassifier(users repository.UserReader) *Classifier {
	return &Classifier{users: users}
}

func (c *Classifier) Classify(ctx context.Context, userID int64) (Role, error) {
	u, err := c.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Role{}, apperr.NotFound("user not found")
		}
		return Role{}, err
	}
	return Role{
		UserID:   u.ID,
		VendorID: u.VendorID,
		RoleName: u.Role,
		IsAdmin:  domain.IsAdminRole(u.Role),
	}, nil
}

// LeadIDSet is a deduplicated set of lead ids.
type LeadIDSet map[int64]struct{}

func (s LeadIDSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

func (s LeadIDSet) Len() int { return len(s) }

// Slice returns the ids in ascending order.
func (s LeadIDSet) Slice() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// VisibilityResolver computes the leads a scoped user can see: those mapped
// to them and those with a task they created or were assigned.
type VisibilityResolver struct {
	repo repository.VisibilityReader
}

func NewVisibilityResolver(repo repository.VisibilityReader) *VisibilityResolver {
	return &VisibilityResolver{repo: repo}
}

func (v *VisibilityResolver) VisibleLeadIDs(ctx context.Context, vendorID, userID int64) (LeadIDSet, error) {
	mapped, err := v.repo.ListMappedLeadIDs(ctx, vendorID, userID)
	if err != nil {
		return nil, err
	}
	tasked, err := v.repo.ListTaskLeadIDs(ctx, vendorID, userID)
	if err != nil {
		return nil, err
	}

	set := make(LeadIDSet, len(mapped)+len(tasked))
	for _, id := range mapped {
		set[id] = struct{}{}
	}
	for _, id := range tasked {
		set[id] = struct{}{}
	}
	return set, nil
}

// Scope is what a caller may see inside one vendor. Admin scopes are unrestricted.
type Scope struct {
	Role    Role
	LeadIDs LeadIDSet
}

func (s Scope) Restricted() bool { return !s.Role.IsAdmin }

// Empty reports whether a restricted scope can see nothing at all.
func (s Scope) Empty() bool { return s.Restricted() && s.LeadIDs.Len() == 0 }

func (s Scope) CanSee(leadID int64) bool {
	return !s.Restricted() || s.LeadIDs.Contains(leadID)
}

// Repository returns the aggregate filter for this scope.
func (s Scope) Repository() repository.Scope {
	scope := repository.Scope{VendorID: s.Role.VendorID, Restricted: s.Restricted()}
	if scope.Restricted {
		scope.LeadIDs = s.LeadIDs.Slice()
	}
	return scope
}

// Policy combines classification and visibility.
type Policy struct {
	classifier *Classifier
	visibility *VisibilityResolver
}

// Repository is what the policy reads.
type Repository interface {
	repository.UserReader
	repository.VisibilityReader
}

func NewPolicy(repo Repository) *Policy {
	return &Policy{
		classifier: NewClassifier(repo),
		visibility: NewVisibilityResolver(repo),
	}
}

// ScopeFor classifies userID and, for non-admins, resolves the visible set.
// A user of another vendor is forbidden.
func (p *Policy) ScopeFor(ctx context.Context, vendorID, userID int64) (Scope, error) {
	role, err := p.classifier.Classify(ctx, userID)
	if err != nil {
		return Scope{}, err
	}
	if role.VendorID != vendorID {
		return Scope{}, apperr.Forbidden("user does not belong to this vendor")
	}
	if role.IsAdmin {
		return Scope{Role: role}, nil
	}

	ids, err := p.visibility.VisibleLeadIDs(ctx, vendorID, userID)
	if err != nil {
		return Scope{}, err
	}
	return Scope{Role: role, LeadIDs: ids}, nil
}
