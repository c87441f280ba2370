// Package leads provides the lead pipeline bounded context module.
// This file wires the repository, services and handler and registers routes.
package leads

import (
	"context"

	"leadflow_backend/internal/adapters/storage"
	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/access"
	"leadflow_backend/internal/leads/dashboard"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/readiness"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/tasks"
	"leadflow_backend/internal/leads/transition"
	"leadflow_backend/platform/cache"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig is the configuration the leads module reads.
type ModuleConfig interface {
	config.StorageConfig
	config.DashboardConfig
	config.TransitionConfig
}

// Deps are the shared dependencies built by the composition root.
type Deps struct {
	Pool      *pgxpool.Pool
	Objects   ports.ObjectStore
	Cache     *cache.Cache
	EventBus  events.Bus
	Validator *validator.Validator
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	management *management.Service
	dashboard  *dashboard.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(deps Deps, cfg ModuleConfig) *Module {
	repo := repository.New(deps.Pool)
	policy := access.NewPolicy(repo)

	executor := transition.New(repo, deps.Objects, cfg, deps.EventBus, deps.Metrics, deps.Logger)
	executor.SetUploadPolicy(storage.NewPolicy(cfg.GetStorageMaxFileSize()))

	mgmtSvc := management.New(repo, policy, deps.Objects, deps.EventBus, deps.Logger)
	mgmtSvc.SetSignedURLTTL(cfg.GetSignedURLTTL())

	dashSvc := dashboard.New(repo, policy, deps.Cache, cfg, deps.Logger)

	// Transition outcomes are only logged here; the dashboard relies on TTL expiry.
	deps.EventBus.Subscribe(events.LeadTransitionFailed{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		if e, ok := event.(events.LeadTransitionFailed); ok {
			deps.Logger.WithContext(ctx).Warn("lead transition rolled back",
				"vendorId", e.VendorID, "leadId", e.LeadID, "stage", e.Stage, "reason", e.Reason)
		}
		return nil
	}))

	h := handler.New(handler.Services{
		Management: mgmtSvc,
		Transition: executor,
		Tasks:      tasks.New(repo, deps.EventBus, deps.Metrics, deps.Logger),
		Readiness:  readiness.New(repo),
		Dashboard:  dashSvc,
	}, deps.Validator)

	return &Module{
		handler:    h,
		management: mgmtSvc,
		dashboard:  dashSvc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// ManagementService returns the lead management service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// DashboardService returns the dashboard service, used by the cache warm-up job.
func (m *Module) DashboardService() *dashboard.Service {
	return m.dashboard
}

// RegisterRoutes mounts leads routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
