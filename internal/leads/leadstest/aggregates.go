package leadstest

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
)

func inWindow(t time.Time, w repository.Window) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

func inScope(scope repository.Scope, vendorID, leadID int64) bool {
	if vendorID != scope.VendorID {
		return false
	}
	return !scope.Restricted || slices.Contains(scope.LeadIDs, leadID)
}

func taskInScope(scope repository.TaskScope, t repository.Task) bool {
	if t.VendorID != scope.VendorID {
		return false
	}
	return scope.AssigneeID == nil || t.UserID == *scope.AssigneeID
}

func (s *Store) CountOpenTasksDue(_ context.Context, scope repository.TaskScope, window repository.Window) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CountOpenTasksDue"); err != nil {
		return 0, err
	}
	n := 0
	for _, t := range s.data.tasks {
		if taskInScope(scope, t) && t.Status == domain.TaskStatusOpen && inWindow(t.DueDate, window) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountCompletedTasks(_ context.Context, scope repository.TaskScope, window repository.Window) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CountCompletedTasks"); err != nil {
		return 0, err
	}
	n := 0
	for _, t := range s.data.tasks {
		if taskInScope(scope, t) && t.Status == domain.TaskStatusCompleted && t.ClosedAt != nil && inWindow(*t.ClosedAt, window) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountOverdueTasks(_ context.Context, scope repository.TaskScope, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CountOverdueTasks"); err != nil {
		return 0, err
	}
	n := 0
	for _, t := range s.data.tasks {
		if taskInScope(scope, t) && t.Status == domain.TaskStatusOpen && t.DueDate.Before(now) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountLeadsByStatus(_ context.Context, scope repository.Scope) ([]repository.StatusCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CountLeadsByStatus"); err != nil {
		return nil, err
	}
	counts := map[int64]int{}
	for _, l := range s.data.leads {
		if !inScope(scope, l.VendorID, l.ID) || l.IsDeleted || l.ActivityStatus != string(domain.ActivityOnGoing) {
			continue
		}
		counts[l.StatusID]++
	}
	items := make([]repository.StatusCount, 0, len(counts))
	for id, n := range counts {
		items = append(items, repository.StatusCount{StatusID: id, Count: n})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].StatusID < items[j].StatusID })
	return items, nil
}

func (s *Store) CountLeadsCreated(_ context.Context, scope repository.Scope, window repository.Window) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CountLeadsCreated"); err != nil {
		return 0, err
	}
	n := 0
	for _, l := range s.data.leads {
		if inScope(scope, l.VendorID, l.ID) && !l.IsDeleted && inWindow(l.CreatedAt, window) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountStatusEntries(_ context.Context, scope repository.Scope, statusID int64, window repository.Window) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CountStatusEntries"); err != nil {
		return 0, err
	}
	n := 0
	for _, l := range s.data.statusLogs {
		if inScope(scope, l.VendorID, l.LeadID) && l.StatusID == statusID && inWindow(l.CreatedAt, window) {
			n++
		}
	}
	return n, nil
}

func (s *Store) SumPayments(_ context.Context, scope repository.Scope, paymentTypeID int64, window repository.Window) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("SumPayments"); err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, p := range s.data.payments {
		if inScope(scope, p.VendorID, p.LeadID) && p.PaymentTypeID == paymentTypeID && inWindow(p.PaymentDate, window) {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (s *Store) ListStatusLogs(_ context.Context, scope repository.Scope, statusIDs []int64) ([]repository.StatusLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListStatusLogs"); err != nil {
		return nil, err
	}
	items := make([]repository.StatusLog, 0)
	for _, l := range s.data.statusLogs {
		if inScope(scope, l.VendorID, l.LeadID) && slices.Contains(statusIDs, l.StatusID) {
			items = append(items, l)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *Store) ListVendorIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListVendorIDs"); err != nil {
		return nil, err
	}
	return slices.Clone(s.data.vendors), nil
}
