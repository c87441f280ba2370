// Package management handles the lead operations around the pipeline:
// creation, stage listings, activity status, user mapping, document links
// and the timeline.
package management

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/adapters/storage"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/access"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/taxonomy"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
	"leadflow_backend/platform/sanitize"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	timelineSize = 100

	defaultSignedURLTTL = 15 * time.Minute
)

// Repository defines the data access interface needed by the management service.
type Repository interface {
	repository.LeadReader
	repository.TypeLookup
	repository.DocumentStore
	repository.AuditReader
	InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error
}

// ScopeResolver yields what the calling user may see.
type ScopeResolver interface {
	ScopeFor(ctx context.Context, vendorID, userID int64) (access.Scope, error)
}

// Actor is the authenticated caller.
type Actor struct {
	VendorID int64
	UserID   int64
}

// Service handles lead management operations.
type Service struct {
	repo    Repository
	scopes  ScopeResolver
	objects ports.ObjectStore
	bus     events.Bus
	log     *logger.Logger
	ttl     time.Duration
	now     func() time.Time
}

// New creates a new lead management service.
func New(repo Repository, scopes ScopeResolver, objects ports.ObjectStore, bus events.Bus, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:    repo,
		scopes:  scopes,
		objects: objects,
		bus:     bus,
		log:     log,
		ttl:     defaultSignedURLTTL,
		now:     time.Now,
	}
}

// SetSignedURLTTL changes how long document links stay valid.
func (s *Service) SetSignedURLTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create puts a new lead into the vendor's Open stage.
func (s *Service) Create(ctx context.Context, actor Actor, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	if _, err := s.scopes.ScopeFor(ctx, actor.VendorID, actor.UserID); err != nil {
		return transport.LeadResponse{}, err
	}

	params := repository.CreateLeadParams{
		VendorID:    actor.VendorID,
		AccountID:   req.AccountID,
		Name:        sanitize.Text(strings.TrimSpace(req.Name)),
		ContactNo:   phone.NormalizeE164(req.ContactNo),
		Email:       trimmed(req.Email),
		SiteAddress: sanitize.TextPtr(trimmed(req.SiteAddress)),
		Notes:       sanitize.TextPtr(trimmed(req.Notes)),
		CreatedBy:   actor.UserID,
	}

	var lead repository.Lead
	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		open, err := taxonomy.New(tx).ResolveStatus(ctx, actor.VendorID, domain.StatusOpen)
		if err != nil {
			return err
		}
		params.StatusID = open.ID

		if lead, err = tx.CreateLead(ctx, params); err != nil {
			return err
		}
		if _, err := tx.CreateStatusLog(ctx, repository.CreateStatusLogParams{
			VendorID:  actor.VendorID,
			LeadID:    lead.ID,
			StatusID:  open.ID,
			CreatedBy: actor.UserID,
		}); err != nil {
			return err
		}
		_, err = tx.CreateDetailedLog(ctx, repository.CreateDetailedLogParams{
			VendorID:    actor.VendorID,
			LeadID:      lead.ID,
			Action:      "lead:create",
			Description: fmt.Sprintf("Lead '%s' created in %s.", lead.Name, open.Name),
			CreatedBy:   actor.UserID,
		})
		return err
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.log.WithContext(ctx).Info("lead created", "vendorId", actor.VendorID, "leadId", lead.ID)
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent: events.NewBaseEvent(ctx),
			VendorID:  actor.VendorID,
			LeadID:    lead.ID,
			CreatedBy: actor.UserID,
		})
	}
	return ToLeadResponse(lead), nil
}

// ListByStage returns one page of the active leads in the stage named by slug.
// Scoped users only see mapped and task-owned leads; with none visible the
// listing query is skipped.
func (s *Service) ListByStage(ctx context.Context, actor Actor, slug string, query transport.ListLeadsQuery) (transport.LeadListResponse, error) {
	tag, ok := domain.ParseStatusSlug(slug)
	if !ok {
		return transport.LeadListResponse{}, apperr.Validation(fmt.Sprintf("unknown stage %q", slug))
	}

	page, limit := query.Page, query.Limit
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	empty := transport.LeadListResponse{Total: 0, Page: page, Limit: limit, Data: []transport.LeadResponse{}}

	scope, err := s.scopes.ScopeFor(ctx, actor.VendorID, actor.UserID)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	if scope.Empty() {
		return empty, nil
	}

	status, err := taxonomy.New(s.repo).ResolveStatus(ctx, actor.VendorID, tag)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	filter := scope.Repository()
	leads, total, err := s.repo.ListLeads(ctx, repository.ListLeadsParams{
		VendorID:   actor.VendorID,
		StatusID:   status.ID,
		Restricted: filter.Restricted,
		LeadIDs:    filter.LeadIDs,
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = ToLeadResponse(lead)
	}
	return transport.LeadListResponse{Total: total, Page: page, Limit: limit, Data: items}, nil
}

// UpdateActivityStatus puts a lead on hold, marks it lost or resumes it.
func (s *Service) UpdateActivityStatus(ctx context.Context, actor Actor, leadID int64, req transport.UpdateActivityStatusRequest) (transport.ActivityStatusResponse, error) {
	next, ok := domain.ParseActivityStatus(req.Status)
	if !ok {
		return transport.ActivityStatusResponse{}, apperr.Validation("invalid activity status").
			WithDetails(map[string]string{"status": "must be one of onGoing, onHold, lost, lostApproval"})
	}
	remark := sanitize.Text(strings.TrimSpace(req.Remark))
	if remark == "" {
		return transport.ActivityStatusResponse{}, apperr.Validation("remark is required").
			WithDetails(map[string]string{"remark": "required"})
	}

	scope, err := s.scopes.ScopeFor(ctx, actor.VendorID, actor.UserID)
	if err != nil {
		return transport.ActivityStatusResponse{}, err
	}
	if !scope.CanSee(leadID) {
		return transport.ActivityStatusResponse{}, apperr.NotFound("lead not found")
	}

	var resp transport.ActivityStatusResponse
	err = s.repo.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		lead, err := tx.GetLead(ctx, actor.VendorID, leadID)
		if err != nil {
			return leadError(err)
		}
		if lead.ActivityStatus == string(next) {
			return apperr.Validation(fmt.Sprintf("lead is already %s", next))
		}

		updated, err := tx.UpdateActivityStatus(ctx, actor.VendorID, leadID, string(next))
		if err != nil {
			return leadError(err)
		}
		if _, err := tx.CreateActivityLog(ctx, repository.CreateActivityLogParams{
			VendorID:  actor.VendorID,
			LeadID:    leadID,
			OldStatus: lead.ActivityStatus,
			NewStatus: string(next),
			Remark:    remark,
			CreatedBy: actor.UserID,
		}); err != nil {
			return err
		}
		if _, err := tx.CreateDetailedLog(ctx, repository.CreateDetailedLogParams{
			VendorID:    actor.VendorID,
			LeadID:      leadID,
			Action:      "lead:activity-status",
			Description: fmt.Sprintf("Activity status changed from %s to %s. Remark: %s", lead.ActivityStatus, next, remark),
			CreatedBy:   actor.UserID,
		}); err != nil {
			return err
		}

		resp = transport.ActivityStatusResponse{
			Lead:      ToLeadResponse(updated),
			OldStatus: lead.ActivityStatus,
			NewStatus: string(next),
		}
		return nil
	})
	if err != nil {
		return transport.ActivityStatusResponse{}, err
	}

	s.log.WithContext(ctx).Info("lead activity status changed",
		"vendorId", actor.VendorID, "leadId", leadID, "from", resp.OldStatus, "to", resp.NewStatus)
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadActivityStatusChanged{
			BaseEvent: events.NewBaseEvent(ctx),
			VendorID:  actor.VendorID,
			LeadID:    leadID,
			OldStatus: resp.OldStatus,
			NewStatus: resp.NewStatus,
		})
	}
	return resp, nil
}

// MapUsers adds an active mapping of the given type for every user. Every
// user must belong to the lead's vendor.
func (s *Service) MapUsers(ctx context.Context, actor Actor, leadID int64, req transport.MapUsersRequest) ([]transport.MappingResponse, error) {
	mappingType := strings.TrimSpace(req.Type)
	if len(req.UserIDs) == 0 || mappingType == "" {
		return nil, apperr.Validation("user ids and mapping type are required")
	}
	if _, err := s.scopes.ScopeFor(ctx, actor.VendorID, actor.UserID); err != nil {
		return nil, err
	}

	var mappings []repository.Mapping
	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.GetLead(ctx, actor.VendorID, leadID); err != nil {
			return leadError(err)
		}

		names := make([]string, 0, len(req.UserIDs))
		seen := make(map[int64]bool, len(req.UserIDs))
		for _, userID := range req.UserIDs {
			if seen[userID] {
				continue
			}
			seen[userID] = true

			user, err := tx.GetUser(ctx, userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperr.NotFound(fmt.Sprintf("user %d not found", userID))
				}
				return err
			}
			if user.VendorID != actor.VendorID {
				return apperr.Forbidden(fmt.Sprintf("user %d does not belong to this vendor", userID))
			}

			m, err := tx.CreateMapping(ctx, repository.CreateMappingParams{
				VendorID:  actor.VendorID,
				LeadID:    leadID,
				UserID:    userID,
				Type:      mappingType,
				CreatedBy: actor.UserID,
			})
			if err != nil {
				return err
			}
			mappings = append(mappings, m)
			names = append(names, user.Name)
		}

		_, err := tx.CreateDetailedLog(ctx, repository.CreateDetailedLogParams{
			VendorID:    actor.VendorID,
			LeadID:      leadID,
			Action:      "lead:map-users",
			Description: fmt.Sprintf("Mapped %s as %s.", strings.Join(names, ", "), mappingType),
			CreatedBy:   actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("users mapped to lead",
		"vendorId", actor.VendorID, "leadId", leadID, "type", mappingType, "count", len(mappings))

	items := make([]transport.MappingResponse, len(mappings))
	for i, m := range mappings {
		items[i] = ToMappingResponse(m)
	}
	return items, nil
}

// DocumentURL signs a short-lived download link for one document of a lead
// the caller can see.
func (s *Service) DocumentURL(ctx context.Context, actor Actor, leadID, docID int64) (transport.DocumentURLResponse, error) {
	scope, err := s.scopes.ScopeFor(ctx, actor.VendorID, actor.UserID)
	if err != nil {
		return transport.DocumentURLResponse{}, err
	}
	if !scope.CanSee(leadID) {
		return transport.DocumentURLResponse{}, apperr.NotFound("document not found")
	}

	doc, err := s.repo.GetDocument(ctx, actor.VendorID, docID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.DocumentURLResponse{}, apperr.NotFound("document not found")
		}
		return transport.DocumentURLResponse{}, err
	}
	if doc.LeadID != leadID || doc.IsDeleted {
		return transport.DocumentURLResponse{}, apperr.NotFound("document not found")
	}

	url, err := s.objects.Sign(ctx, doc.StorageKey, s.ttl, storage.AttachmentDisposition(doc.OriginalName))
	if err != nil {
		s.log.WithContext(ctx).Error("failed to sign document url", "docId", docID, "error", err)
		return transport.DocumentURLResponse{}, apperr.Wrap(apperr.KindInternal, "failed to sign document url", err)
	}
	return transport.DocumentURLResponse{
		URL:       url,
		FileName:  doc.OriginalName,
		ExpiresAt: s.now().Add(s.ttl),
	}, nil
}

// Timeline returns the lead's detailed logs, newest first.
func (s *Service) Timeline(ctx context.Context, actor Actor, leadID int64) ([]transport.LogResponse, error) {
	scope, err := s.scopes.ScopeFor(ctx, actor.VendorID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !scope.CanSee(leadID) {
		return nil, apperr.NotFound("lead not found")
	}
	if _, err := s.repo.GetLead(ctx, actor.VendorID, leadID); err != nil {
		return nil, leadError(err)
	}

	logs, err := s.repo.ListDetailedLogs(ctx, actor.VendorID, leadID, timelineSize)
	if err != nil {
		return nil, err
	}
	items := make([]transport.LogResponse, len(logs))
	for i, l := range logs {
		items[i] = ToLogResponse(l)
	}
	return items, nil
}

func leadError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
