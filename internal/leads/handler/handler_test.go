package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"leadflow_backend/internal/leads/access"
	"leadflow_backend/internal/leads/dashboard"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/leadstest"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/readiness"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/tasks"
	"leadflow_backend/internal/leads/transition"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/cache"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"
	"leadflow_backend/platform/validator"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
}

type server struct {
	store  *leadstest.Store
	engine *gin.Engine
	admin  repository.User
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := leadstest.New()
	store.SeedVendor(1)
	objects := leadstest.NewObjectStore()
	m := metrics.New()
	log := logger.Discard()
	policy := access.NewPolicy(store)

	h := New(Services{
		Management: management.New(store, policy, objects, nil, log),
		Transition: transition.New(store, objects, nil, nil, m, log),
		Tasks:      tasks.New(store, nil, m, log),
		Readiness:  readiness.New(store),
		Dashboard:  dashboard.New(store, policy, cache.New(cache.NewRedisStoreFromClient(client), log, m), nil, log),
	}, validator.New())

	s := &server{store: store, admin: store.AddUser(repository.User{VendorID: 1, Name: "Anita", Role: domain.RoleAdmin})}
	s.engine = gin.New()
	api := s.engine.Group("/api/v1", func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, s.admin.ID)
		c.Set(httpkit.ContextVendorIDKey, int64(1))
		c.Next()
	})
	h.RegisterRoutes(api)
	return s
}

func (s *server) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for field, name := range files {
		part, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		_, _ = part.Write([]byte("%PDF-1.4 " + name))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestBookingTransitionOverMultipart(t *testing.T) {
	s := newServer(t)
	lead := s.store.AddLead(repository.Lead{VendorID: 1, StatusID: leadstest.StatusID(1, domain.StatusOpen), Name: "Ravi"})

	req := multipartRequest(t, "/api/v1/leads/"+itoa(lead.ID)+"/transitions/booking",
		map[string]string{"amount": "50000", "paymentDate": "2024-03-10", "remark": "token received"},
		map[string]string{"final_documents": "Signed Quote.pdf"},
	)
	rec, env := s.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !env.Success || !strings.HasPrefix(env.Message, "Booking: 1 final document uploaded, payment of 50000 recorded") {
		t.Fatalf("unexpected envelope %+v", env)
	}

	var data transport.TransitionResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data.StatusChanged || data.Lead.StatusID != leadstest.StatusID(1, domain.StatusBooking) {
		t.Fatalf("expected lead in Booking, got %+v", data.Lead)
	}
	if len(data.Documents) != 1 || data.DocumentLogs != 1 || data.Payment == nil || data.Ledger == nil {
		t.Fatalf("unexpected transition payload %+v", data)
	}
	if data.Documents[0].OriginalName != "Signed Quote.pdf" {
		t.Fatalf("unexpected document %+v", data.Documents[0])
	}
}

func TestBookingWithoutAmountFailsValidation(t *testing.T) {
	s := newServer(t)
	lead := s.store.AddLead(repository.Lead{VendorID: 1, StatusID: leadstest.StatusID(1, domain.StatusOpen)})

	req := multipartRequest(t, "/api/v1/leads/"+itoa(lead.ID)+"/transitions/booking", nil,
		map[string]string{"final_documents": "quote.pdf"})
	rec, env := s.do(t, req)
	if rec.Code != http.StatusBadRequest || env.Code != "validation_error" {
		t.Fatalf("expected validation error, got %d %+v", rec.Code, env)
	}
	if _, ok := env.Details["Amount"]; !ok {
		t.Fatalf("expected Amount in details, got %v", env.Details)
	}
	if len(s.store.Documents()) != 0 {
		t.Fatal("expected nothing to be written")
	}
}

func TestUnknownStageAndBadIDs(t *testing.T) {
	s := newServer(t)

	rec, env := s.do(t, multipartRequest(t, "/api/v1/leads/1001/transitions/teleport", nil, nil))
	if rec.Code != http.StatusBadRequest || env.Code != "validation_error" {
		t.Fatalf("expected unknown stage to be rejected, got %d %+v", rec.Code, env)
	}

	rec, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/leads/abc/timeline", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-numeric id, got %d", rec.Code)
	}

	rec, env = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/leads/1001/readiness/whenever", nil))
	if rec.Code != http.StatusBadRequest || env.Code != "validation_error" {
		t.Fatalf("expected unknown gate to be rejected, got %d %+v", rec.Code, env)
	}
}

func TestCreateLeadThenListByStage(t *testing.T) {
	s := newServer(t)

	rec, env := s.do(t, jsonRequest(http.MethodPost, "/api/v1/leads", `{"name":"Asha Rao","contactNo":"98765 43210"}`))
	if rec.Code != http.StatusCreated || !env.Success {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/leads/stage/open?page=1&limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page transport.LeadListResponse
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 || page.Limit != 10 || len(page.Data) != 1 || page.Data[0].Name != "Asha Rao" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestCreateLeadRejectsBlankName(t *testing.T) {
	s := newServer(t)

	rec, env := s.do(t, jsonRequest(http.MethodPost, "/api/v1/leads", `{"name":"   ","contactNo":"98765 43210"}`))
	if rec.Code != http.StatusBadRequest || env.Details["Name"] == "" {
		t.Fatalf("expected blank name to fail validation, got %d %+v", rec.Code, env)
	}
}

func TestFollowUpTaskRoute(t *testing.T) {
	s := newServer(t)
	lead := s.store.AddLead(repository.Lead{VendorID: 1, StatusID: leadstest.StatusID(1, domain.StatusDesigning)})

	body := `{"assigneeId":` + itoa(s.admin.ID) + `,"taskType":"Call back","dueDate":"2024-04-02","remark":"after lunch"}`
	rec, env := s.do(t, jsonRequest(http.MethodPost, "/api/v1/leads/"+itoa(lead.ID)+"/tasks/follow-up", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var data transport.AssignTaskResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.StatusChanged || data.Task.TaskType != domain.FollowUpTaskType {
		t.Fatalf("expected a non-advancing follow-up, got %+v", data)
	}
	if !data.Task.DueDate.Equal(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due date %v", data.Task.DueDate)
	}
}

func TestDashboardStatusCounts(t *testing.T) {
	s := newServer(t)
	s.store.AddLead(repository.Lead{VendorID: 1, StatusID: leadstest.StatusID(1, domain.StatusBooking)})

	rec, env := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/status-counts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var counts dashboard.StatusCounts
	if err := json.Unmarshal(env.Data, &counts); err != nil {
		t.Fatalf("decode counts: %v", err)
	}
	if counts.Total != 1 {
		t.Fatalf("expected one lead, got %+v", counts)
	}
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
