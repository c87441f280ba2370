package leadstest

import (
	"context"
	"sort"

	"leadflow_backend/internal/leads/repository"
)

func (s *Store) CreateDetailedLog(_ context.Context, params repository.CreateDetailedLogParams) (repository.DetailedLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateDetailedLog"); err != nil {
		return repository.DetailedLog{}, err
	}
	l := repository.DetailedLog{
		ID:          s.id(),
		VendorID:    params.VendorID,
		LeadID:      params.LeadID,
		Action:      params.Action,
		Description: params.Description,
		CreatedBy:   params.CreatedBy,
		CreatedAt:   s.Now(),
	}
	s.data.detailedLogs = append(s.data.detailedLogs, l)
	return l, nil
}

func (s *Store) CreateDocumentLog(_ context.Context, params repository.CreateDocumentLogParams) (repository.DocumentLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateDocumentLog"); err != nil {
		return repository.DocumentLog{}, err
	}
	l := repository.DocumentLog{
		ID:        s.id(),
		VendorID:  params.VendorID,
		LeadID:    params.LeadID,
		DocID:     params.DocID,
		LeadLogID: params.LeadLogID,
		CreatedBy: params.CreatedBy,
		CreatedAt: s.Now(),
	}
	s.data.documentLogs = append(s.data.documentLogs, l)
	return l, nil
}

func (s *Store) CreateStatusLog(_ context.Context, params repository.CreateStatusLogParams) (repository.StatusLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateStatusLog"); err != nil {
		return repository.StatusLog{}, err
	}
	l := repository.StatusLog{
		ID:        s.id(),
		VendorID:  params.VendorID,
		LeadID:    params.LeadID,
		StatusID:  params.StatusID,
		CreatedBy: params.CreatedBy,
		CreatedAt: s.Now(),
	}
	s.data.statusLogs = append(s.data.statusLogs, l)
	return l, nil
}

func (s *Store) CreateActivityLog(_ context.Context, params repository.CreateActivityLogParams) (repository.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateActivityLog"); err != nil {
		return repository.ActivityLog{}, err
	}
	l := repository.ActivityLog{
		ID:        s.id(),
		VendorID:  params.VendorID,
		LeadID:    params.LeadID,
		OldStatus: params.OldStatus,
		NewStatus: params.NewStatus,
		Remark:    params.Remark,
		CreatedBy: params.CreatedBy,
		CreatedAt: s.Now(),
	}
	s.data.activityLogs = append(s.data.activityLogs, l)
	return l, nil
}

func (s *Store) ListDetailedLogs(_ context.Context, vendorID, leadID int64, limit int) ([]repository.DetailedLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListDetailedLogs"); err != nil {
		return nil, err
	}
	items := make([]repository.DetailedLog, 0)
	for _, l := range s.data.detailedLogs {
		if l.VendorID == vendorID && l.LeadID == leadID {
			items = append(items, l)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
