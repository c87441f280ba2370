// Package leadstest provides in-memory fakes of the leads repository and
// object store for service tests.
package leadstest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
)

type state struct {
	statusTypes   []repository.TypeMaster
	documentTypes []repository.TypeMaster
	paymentTypes  []repository.TypeMaster
	vendors       []int64
	users         map[int64]repository.User
	leads         map[int64]repository.Lead
	documents     []repository.Document
	payments      []repository.Payment
	ledger        []repository.LedgerEntry
	mappings      []repository.Mapping
	tasks         []repository.Task
	checklist     []repository.ChecklistItem
	detailedLogs  []repository.DetailedLog
	documentLogs  []repository.DocumentLog
	statusLogs    []repository.StatusLog
	activityLogs  []repository.ActivityLog
}

func (s *state) clone() *state {
	c := *s
	c.statusTypes = slices.Clone(s.statusTypes)
	c.documentTypes = slices.Clone(s.documentTypes)
	c.paymentTypes = slices.Clone(s.paymentTypes)
	c.vendors = slices.Clone(s.vendors)
	c.users = make(map[int64]repository.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.leads = make(map[int64]repository.Lead, len(s.leads))
	for k, v := range s.leads {
		c.leads[k] = v
	}
	c.documents = slices.Clone(s.documents)
	c.payments = slices.Clone(s.payments)
	c.ledger = slices.Clone(s.ledger)
	c.mappings = slices.Clone(s.mappings)
	c.tasks = slices.Clone(s.tasks)
	c.checklist = slices.Clone(s.checklist)
	c.detailedLogs = slices.Clone(s.detailedLogs)
	c.documentLogs = slices.Clone(s.documentLogs)
	c.statusLogs = slices.Clone(s.statusLogs)
	c.activityLogs = slices.Clone(s.activityLogs)
	return &c
}

// Store is an in-memory repository.Store. InTx snapshots the data and restores
// it when fn fails, so rolled back writes disappear like they would in PostgreSQL.
type Store struct {
	mu     sync.Mutex
	data   *state
	nextID int64
	calls  map[string]int

	// FailOn makes the named method return the error, e.g. "CreateLedgerEntry".
	FailOn map[string]error
	// Now stamps created_at columns. Defaults to time.Now.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		data: &state{
			users: map[int64]repository.User{},
			leads: map[int64]repository.Lead{},
		},
		nextID: 1000,
		calls:  map[string]int{},
		FailOn: map[string]error{},
		Now:    time.Now,
	}
}

var _ repository.Store = (*Store)(nil)

// Calls reports how often the named method ran.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// record must be called with mu held.
func (s *Store) record(method string) error {
	s.calls[method]++
	return s.FailOn[method]
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	if err := s.record("InTx"); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.data.clone()
	s.mu.Unlock()

	err := fn(ctx, s)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}
	return err
}

// =====================================
// Seeding
// =====================================

// StatusID is the id SeedVendor gives tag for vendorID, e.g. vendor 1 Booking is 104.
func StatusID(vendorID int64, tag domain.StatusTag) int64 {
	return vendorID*100 + int64(tag.Ordinal())
}

// DocumentTypeID is the id SeedVendor gives a document tag.
func DocumentTypeID(vendorID int64, tag domain.DocumentTag) int64 {
	return vendorID*1000 + int64(ordinal(string(tag)))
}

// PaymentTypeID is the id SeedVendor gives a payment tag.
func PaymentTypeID(vendorID int64, tag domain.PaymentTag) int64 {
	return vendorID*1000 + 500 + int64(ordinal(string(tag)))
}

func ordinal(tag string) int {
	return domain.StatusTag(tag).Ordinal()
}

var documentTags = []domain.DocumentTag{
	domain.DocSiteMeasurement, domain.DocCurrentSitePhotos, domain.DocDesignFiles, domain.DocFinalDocuments,
	domain.DocFinalMeasurement, domain.DocClientDocumentation, domain.DocClientApproval, domain.DocOrderLogin,
	domain.DocProduction, domain.DocDispatchPhotos, domain.DocInstallation, domain.DocHandover,
	domain.DocSiteReadinessPhotos,
}

var paymentTags = []domain.PaymentTag{
	domain.PaymentSiteMeasurementFee, domain.PaymentBookingAmount, domain.PaymentAdvance,
}

// SeedVendor configures every status, document and payment tag for vendorID.
func (s *Store) SeedVendor(vendorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.vendors = append(s.data.vendors, vendorID)
	for _, tag := range domain.Pipeline() {
		s.data.statusTypes = append(s.data.statusTypes, repository.TypeMaster{
			ID: StatusID(vendorID, tag), VendorID: vendorID, Tag: string(tag), Name: tag.Label(),
		})
	}
	for _, tag := range documentTags {
		s.data.documentTypes = append(s.data.documentTypes, repository.TypeMaster{
			ID: DocumentTypeID(vendorID, tag), VendorID: vendorID, Tag: string(tag), Name: string(tag),
		})
	}
	for _, tag := range paymentTags {
		s.data.paymentTypes = append(s.data.paymentTypes, repository.TypeMaster{
			ID: PaymentTypeID(vendorID, tag), VendorID: vendorID, Tag: string(tag), Name: string(tag),
		})
	}
}

// RemoveType deletes a master row. table is "status", "document" or "payment".
func (s *Store) RemoveType(table string, vendorID int64, tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := func(items []repository.TypeMaster) []repository.TypeMaster {
		return slices.DeleteFunc(items, func(t repository.TypeMaster) bool {
			return t.VendorID == vendorID && t.Tag == tag
		})
	}
	switch table {
	case "status":
		s.data.statusTypes = drop(s.data.statusTypes)
	case "document":
		s.data.documentTypes = drop(s.data.documentTypes)
	case "payment":
		s.data.paymentTypes = drop(s.data.paymentTypes)
	default:
		panic(fmt.Sprintf("leadstest: unknown type table %q", table))
	}
}

func (s *Store) AddUser(u repository.User) repository.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	s.data.users[u.ID] = u
	return u
}

// AddLead stores l as given, defaulting the id, activity status and timestamps.
func (s *Store) AddLead(l repository.Lead) repository.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.id()
	}
	if l.ActivityStatus == "" {
		l.ActivityStatus = string(domain.ActivityOnGoing)
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.Now()
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = l.CreatedAt
	}
	s.data.leads[l.ID] = l
	return l
}

func (s *Store) AddDocument(d repository.Document) repository.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		d.ID = s.id()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.Now()
	}
	s.data.documents = append(s.data.documents, d)
	return d
}

func (s *Store) AddChecklistItem(item repository.ChecklistItem) repository.ChecklistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.data.checklist = append(s.data.checklist, item)
	return item
}

func (s *Store) AddStatusLog(l repository.StatusLog) repository.StatusLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.id()
	}
	s.data.statusLogs = append(s.data.statusLogs, l)
	return l
}

func (s *Store) AddTask(t repository.Task) repository.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.id()
	}
	if t.Status == "" {
		t.Status = domain.TaskStatusOpen
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.Now()
	}
	s.data.tasks = append(s.data.tasks, t)
	return t
}

func (s *Store) AddMapping(m repository.Mapping) repository.Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == 0 {
		m.ID = s.id()
	}
	if m.Status == "" {
		m.Status = domain.MappingStatusActive
	}
	s.data.mappings = append(s.data.mappings, m)
	return m
}

func (s *Store) AddPayment(p repository.Payment) repository.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.data.payments = append(s.data.payments, p)
	return p
}

// =====================================
// Inspection
// =====================================

func (s *Store) Lead(id int64) (repository.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.data.leads[id]
	return l, ok
}

func (s *Store) Documents() []repository.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.documents)
}

func (s *Store) Payments() []repository.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.payments)
}

func (s *Store) Ledger() []repository.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.ledger)
}

func (s *Store) Tasks() []repository.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.tasks)
}

func (s *Store) Mappings() []repository.Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.mappings)
}

func (s *Store) Checklist() []repository.ChecklistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.checklist)
}

func (s *Store) DetailedLogs() []repository.DetailedLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.detailedLogs)
}

func (s *Store) DocumentLogs() []repository.DocumentLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.documentLogs)
}

func (s *Store) StatusLogs() []repository.StatusLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.statusLogs)
}

func (s *Store) ActivityLogs() []repository.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.activityLogs)
}

// =====================================
// repository.TypeLookup
// =====================================

func findType(items []repository.TypeMaster, vendorID int64, tag string) (repository.TypeMaster, error) {
	for _, t := range items {
		if t.VendorID == vendorID && t.Tag == tag {
			return t, nil
		}
	}
	return repository.TypeMaster{}, repository.ErrNotFound
}

func (s *Store) FindStatusType(_ context.Context, vendorID int64, tag string) (repository.TypeMaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("FindStatusType"); err != nil {
		return repository.TypeMaster{}, err
	}
	return findType(s.data.statusTypes, vendorID, tag)
}

func (s *Store) FindDocumentType(_ context.Context, vendorID int64, tag string) (repository.TypeMaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("FindDocumentType"); err != nil {
		return repository.TypeMaster{}, err
	}
	return findType(s.data.documentTypes, vendorID, tag)
}

func (s *Store) FindPaymentType(_ context.Context, vendorID int64, tag string) (repository.TypeMaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("FindPaymentType"); err != nil {
		return repository.TypeMaster{}, err
	}
	return findType(s.data.paymentTypes, vendorID, tag)
}

func (s *Store) GetStatusType(_ context.Context, vendorID, statusID int64) (repository.TypeMaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetStatusType"); err != nil {
		return repository.TypeMaster{}, err
	}
	for _, t := range s.data.statusTypes {
		if t.VendorID == vendorID && t.ID == statusID {
			return t, nil
		}
	}
	return repository.TypeMaster{}, repository.ErrNotFound
}

func (s *Store) ListStatusTypes(_ context.Context, vendorID int64) ([]repository.TypeMaster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListStatusTypes"); err != nil {
		return nil, err
	}
	items := make([]repository.TypeMaster, 0)
	for _, t := range s.data.statusTypes {
		if t.VendorID == vendorID {
			items = append(items, t)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// =====================================
// Leads
// =====================================

func (s *Store) GetLead(_ context.Context, vendorID, leadID int64) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetLead"); err != nil {
		return repository.Lead{}, err
	}
	l, ok := s.data.leads[leadID]
	if !ok || l.VendorID != vendorID || l.IsDeleted {
		return repository.Lead{}, repository.ErrNotFound
	}
	return l, nil
}

func (s *Store) ListLeads(_ context.Context, params repository.ListLeadsParams) ([]repository.Lead, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListLeads"); err != nil {
		return nil, 0, err
	}

	matched := make([]repository.Lead, 0)
	for _, l := range s.data.leads {
		if l.VendorID != params.VendorID || l.StatusID != params.StatusID || l.IsDeleted {
			continue
		}
		if l.ActivityStatus != string(domain.ActivityOnGoing) {
			continue
		}
		if params.Restricted && !slices.Contains(params.LeadIDs, l.ID) {
			continue
		}
		matched = append(matched, l)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := min(params.Offset, total)
	end := min(start+params.Limit, total)
	return matched[start:end], total, nil
}

func (s *Store) CreateLead(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateLead"); err != nil {
		return repository.Lead{}, err
	}
	now := s.Now()
	l := repository.Lead{
		ID:             s.id(),
		VendorID:       params.VendorID,
		AccountID:      params.AccountID,
		StatusID:       params.StatusID,
		ActivityStatus: string(domain.ActivityOnGoing),
		Name:           params.Name,
		ContactNo:      params.ContactNo,
		Email:          params.Email,
		SiteAddress:    params.SiteAddress,
		Notes:          params.Notes,
		CreatedBy:      params.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.data.leads[l.ID] = l
	return l, nil
}

func (s *Store) UpdateLeadStage(_ context.Context, params repository.UpdateLeadStageParams) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpdateLeadStage"); err != nil {
		return repository.Lead{}, err
	}
	l, ok := s.data.leads[params.LeadID]
	if !ok || l.VendorID != params.VendorID || l.IsDeleted {
		return repository.Lead{}, repository.ErrNotFound
	}
	if params.StatusID != nil {
		l.StatusID = *params.StatusID
	}
	if params.FinalBookingAmount != nil {
		l.FinalBookingAmount = decimal.NewNullDecimal(*params.FinalBookingAmount)
	}
	if params.CriticalDiscussionNotes != nil {
		l.CriticalDiscussionNotes = params.CriticalDiscussionNotes
	}
	if params.DispatchDate != nil {
		l.DispatchDate = params.DispatchDate
	}
	if params.Notes != nil {
		l.Notes = params.Notes
	}
	l.UpdatedAt = s.Now()
	s.data.leads[l.ID] = l
	return l, nil
}

func (s *Store) UpdateActivityStatus(_ context.Context, vendorID, leadID int64, status string) (repository.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpdateActivityStatus"); err != nil {
		return repository.Lead{}, err
	}
	l, ok := s.data.leads[leadID]
	if !ok || l.VendorID != vendorID || l.IsDeleted {
		return repository.Lead{}, repository.ErrNotFound
	}
	l.ActivityStatus = status
	l.UpdatedAt = s.Now()
	s.data.leads[l.ID] = l
	return l, nil
}

func (s *Store) GetUser(_ context.Context, userID int64) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetUser"); err != nil {
		return repository.User{}, err
	}
	u, ok := s.data.users[userID]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

// =====================================
// Visibility
// =====================================

func (s *Store) ListMappedLeadIDs(_ context.Context, vendorID, userID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListMappedLeadIDs"); err != nil {
		return nil, err
	}
	ids := make([]int64, 0)
	for _, m := range s.data.mappings {
		if m.VendorID == vendorID && m.UserID == userID && m.Status == domain.MappingStatusActive {
			ids = append(ids, m.LeadID)
		}
	}
	return ids, nil
}

func (s *Store) ListTaskLeadIDs(_ context.Context, vendorID, userID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListTaskLeadIDs"); err != nil {
		return nil, err
	}
	ids := make([]int64, 0)
	for _, t := range s.data.tasks {
		if t.VendorID == vendorID && (t.CreatedBy == userID || t.UserID == userID) {
			ids = append(ids, t.LeadID)
		}
	}
	return ids, nil
}

// =====================================
// Documents, payments, checklist
// =====================================

func (s *Store) CreateDocument(_ context.Context, params repository.CreateDocumentParams) (repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateDocument"); err != nil {
		return repository.Document{}, err
	}
	d := repository.Document{
		ID:              s.id(),
		VendorID:        params.VendorID,
		LeadID:          params.LeadID,
		AccountID:       params.AccountID,
		DocTypeID:       params.DocTypeID,
		OriginalName:    params.OriginalName,
		StorageKey:      params.StorageKey,
		TechCheckStatus: params.TechCheckStatus,
		CreatedBy:       params.CreatedBy,
		CreatedAt:       s.Now(),
	}
	s.data.documents = append(s.data.documents, d)
	return d, nil
}

func (s *Store) GetDocument(_ context.Context, vendorID, docID int64) (repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetDocument"); err != nil {
		return repository.Document{}, err
	}
	for _, d := range s.data.documents {
		if d.ID == docID && d.VendorID == vendorID && !d.IsDeleted {
			return d, nil
		}
	}
	return repository.Document{}, repository.ErrNotFound
}

func (s *Store) ListDocumentsByType(_ context.Context, vendorID, leadID, docTypeID int64) ([]repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListDocumentsByType"); err != nil {
		return nil, err
	}
	items := make([]repository.Document, 0)
	for _, d := range s.data.documents {
		if d.VendorID == vendorID && d.LeadID == leadID && d.DocTypeID == docTypeID && !d.IsDeleted {
			items = append(items, d)
		}
	}
	return items, nil
}

func (s *Store) SetTechCheckStatus(_ context.Context, vendorID int64, docIDs []int64, status string) ([]repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("SetTechCheckStatus"); err != nil {
		return nil, err
	}
	items := make([]repository.Document, 0)
	for i, d := range s.data.documents {
		if d.VendorID != vendorID || d.IsDeleted || !slices.Contains(docIDs, d.ID) {
			continue
		}
		value := status
		d.TechCheckStatus = &value
		s.data.documents[i] = d
		items = append(items, d)
	}
	return items, nil
}

func (s *Store) CountDocuments(_ context.Context, vendorID, leadID, docTypeID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CountDocuments"); err != nil {
		return 0, err
	}
	n := 0
	for _, d := range s.data.documents {
		if d.VendorID == vendorID && d.LeadID == leadID && d.DocTypeID == docTypeID && !d.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountChecklistItems(_ context.Context, vendorID, leadID int64, types []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CountChecklistItems"); err != nil {
		return 0, err
	}
	seen := make(map[string]bool)
	for _, c := range s.data.checklist {
		if c.VendorID == vendorID && c.LeadID == leadID && slices.Contains(types, c.Type) {
			seen[c.Type] = true
		}
	}
	return len(seen), nil
}

// UpsertChecklistItem keeps one row per (vendor, lead, type) like the
// unique index on site_readiness.
func (s *Store) UpsertChecklistItem(_ context.Context, params repository.UpsertChecklistItemParams) (repository.ChecklistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpsertChecklistItem"); err != nil {
		return repository.ChecklistItem{}, err
	}
	item := repository.ChecklistItem{
		VendorID:  params.VendorID,
		LeadID:    params.LeadID,
		Type:      params.Type,
		Value:     params.Value,
		Remark:    params.Remark,
		CreatedBy: params.CreatedBy,
		CreatedAt: s.Now(),
	}
	for i, c := range s.data.checklist {
		if c.VendorID == params.VendorID && c.LeadID == params.LeadID && c.Type == params.Type {
			item.ID = c.ID
			s.data.checklist[i] = item
			return item, nil
		}
	}
	item.ID = s.id()
	s.data.checklist = append(s.data.checklist, item)
	return item, nil
}

func (s *Store) CreatePayment(_ context.Context, params repository.CreatePaymentParams) (repository.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreatePayment"); err != nil {
		return repository.Payment{}, err
	}
	p := repository.Payment{
		ID:            s.id(),
		VendorID:      params.VendorID,
		LeadID:        params.LeadID,
		AccountID:     params.AccountID,
		PaymentTypeID: params.PaymentTypeID,
		Amount:        params.Amount,
		PaymentDate:   params.PaymentDate,
		PaymentFileID: params.PaymentFileID,
		PaymentText:   params.PaymentText,
		CreatedBy:     params.CreatedBy,
		CreatedAt:     s.Now(),
	}
	s.data.payments = append(s.data.payments, p)
	return p, nil
}

func (s *Store) CreateLedgerEntry(_ context.Context, params repository.CreateLedgerEntryParams) (repository.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateLedgerEntry"); err != nil {
		return repository.LedgerEntry{}, err
	}
	e := repository.LedgerEntry{
		ID:            s.id(),
		VendorID:      params.VendorID,
		LeadID:        params.LeadID,
		AccountID:     params.AccountID,
		PaymentInfoID: params.PaymentInfoID,
		Amount:        params.Amount,
		Type:          params.Type,
		CreatedBy:     params.CreatedBy,
		CreatedAt:     s.Now(),
	}
	s.data.ledger = append(s.data.ledger, e)
	return e, nil
}

// =====================================
// Tasks and mappings
// =====================================

func (s *Store) CreateTask(_ context.Context, params repository.CreateTaskParams) (repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateTask"); err != nil {
		return repository.Task{}, err
	}
	t := repository.Task{
		ID:        s.id(),
		VendorID:  params.VendorID,
		LeadID:    params.LeadID,
		UserID:    params.UserID,
		CreatedBy: params.CreatedBy,
		TaskType:  params.TaskType,
		DueDate:   params.DueDate,
		Remark:    params.Remark,
		Status:    domain.TaskStatusOpen,
		CreatedAt: s.Now(),
	}
	s.data.tasks = append(s.data.tasks, t)
	return t, nil
}

func (s *Store) GetTask(_ context.Context, vendorID, taskID int64) (repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetTask"); err != nil {
		return repository.Task{}, err
	}
	for _, t := range s.data.tasks {
		if t.ID == taskID && t.VendorID == vendorID {
			return t, nil
		}
	}
	return repository.Task{}, repository.ErrNotFound
}

func closeTask(t *repository.Task, closedBy int64, closedAt time.Time, remark *string) {
	t.Status = domain.TaskStatusCompleted
	t.ClosedBy = &closedBy
	t.ClosedAt = &closedAt
	t.ClosingRemark = remark
}

func (s *Store) CompleteTask(_ context.Context, params repository.CompleteTaskParams) (repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CompleteTask"); err != nil {
		return repository.Task{}, err
	}
	for i, t := range s.data.tasks {
		if t.ID == params.TaskID && t.VendorID == params.VendorID && t.Status == domain.TaskStatusOpen {
			closeTask(&t, params.ClosedBy, params.ClosedAt, params.ClosingRemark)
			s.data.tasks[i] = t
			return t, nil
		}
	}
	return repository.Task{}, repository.ErrNotFound
}

func (s *Store) CompleteOpenTasks(_ context.Context, params repository.CompleteOpenTasksParams) ([]repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CompleteOpenTasks"); err != nil {
		return nil, err
	}
	closed := make([]repository.Task, 0)
	for i, t := range s.data.tasks {
		if t.VendorID != params.VendorID || t.LeadID != params.LeadID || t.Status != domain.TaskStatusOpen {
			continue
		}
		if !strings.EqualFold(t.TaskType, params.TaskType) {
			continue
		}
		closeTask(&t, params.ClosedBy, params.ClosedAt, params.ClosingRemark)
		s.data.tasks[i] = t
		closed = append(closed, t)
	}
	return closed, nil
}

func (s *Store) CreateMapping(_ context.Context, params repository.CreateMappingParams) (repository.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateMapping"); err != nil {
		return repository.Mapping{}, err
	}
	m := repository.Mapping{
		ID:        s.id(),
		VendorID:  params.VendorID,
		LeadID:    params.LeadID,
		UserID:    params.UserID,
		Type:      params.Type,
		Status:    domain.MappingStatusActive,
		CreatedBy: params.CreatedBy,
		CreatedAt: s.Now(),
	}
	s.data.mappings = append(s.data.mappings, m)
	return m, nil
}
