// Package dashboard computes the vendor dashboard rollups and serves them
// through the redis cache-aside layer. Cached values go stale until their TTL
// runs out; transitions never invalidate them.
package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"leadflow_backend/internal/leads/access"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/cache"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

const (
	keyTaskStats    = "task-stats"
	keyStatusCounts = "status-counts"
	keyPerformance  = "performance"

	defaultTaskStatsTTL    = 5 * time.Minute
	defaultStatusCountsTTL = 10 * time.Minute
	defaultPerformanceTTL  = 10 * time.Minute
)

// Repository is everything the dashboard reads.
type Repository interface {
	repository.TypeLookup
	repository.AggregateReader
}

// ScopeResolver decides what a caller may see.
type ScopeResolver interface {
	ScopeFor(ctx context.Context, vendorID, userID int64) (access.Scope, error)
}

type TaskCounts struct {
	Open      int `json:"open"`
	Completed int `json:"completed"`
}

type TaskStats struct {
	Periods map[Period]TaskCounts `json:"periods"`
	Overdue int                   `json:"overdue"`
}

type StageCount struct {
	StatusID int64  `json:"statusId"`
	Tag      string `json:"tag"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

type StatusCounts struct {
	Stages []StageCount `json:"stages"`
	Total  int          `json:"total"`
}

type Service struct {
	repo   Repository
	scopes ScopeResolver
	cache  *cache.Cache
	log    *logger.Logger
	now    func() time.Time

	taskStatsTTL    time.Duration
	statusCountsTTL time.Duration
	performanceTTL  time.Duration
}

func New(repo Repository, scopes ScopeResolver, c *cache.Cache, cfg config.DashboardConfig, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{
		repo:            repo,
		scopes:          scopes,
		cache:           c,
		log:             log,
		now:             time.Now,
		taskStatsTTL:    defaultTaskStatsTTL,
		statusCountsTTL: defaultStatusCountsTTL,
		performanceTTL:  defaultPerformanceTTL,
	}
	if cfg != nil {
		s.taskStatsTTL = orDefault(cfg.GetTaskStatsTTL(), defaultTaskStatsTTL)
		s.statusCountsTTL = orDefault(cfg.GetStatusCountsTTL(), defaultStatusCountsTTL)
		s.performanceTTL = orDefault(cfg.GetPerformanceTTL(), defaultPerformanceTTL)
	}
	return s
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func key(name string, scope access.Scope) string {
	return cache.Key(name, scope.Role.VendorID, scope.Role.UserID, scope.Role.IsAdmin)
}

// adminScope is the vendor-wide scope used by the warm-up job.
func adminScope(vendorID int64) access.Scope {
	return access.Scope{Role: access.Role{VendorID: vendorID, IsAdmin: true}}
}

// TaskStats counts open tasks due and tasks closed per period, plus overdue
// open tasks. Admins see the vendor; everyone else sees tasks assigned to them.
func (s *Service) TaskStats(ctx context.Context, vendorID, userID int64) (TaskStats, error) {
	scope, err := s.scopes.ScopeFor(ctx, vendorID, userID)
	if err != nil {
		return TaskStats{}, err
	}
	return s.taskStats(ctx, scope)
}

func (s *Service) taskStats(ctx context.Context, scope access.Scope) (TaskStats, error) {
	return cache.GetOrCompute(ctx, s.cache, key(keyTaskStats, scope), s.taskStatsTTL, func(ctx context.Context) (TaskStats, error) {
		return s.computeTaskStats(ctx, scope)
	})
}

func (s *Service) computeTaskStats(ctx context.Context, scope access.Scope) (TaskStats, error) {
	taskScope := repository.TaskScope{VendorID: scope.Role.VendorID}
	if scope.Restricted() {
		userID := scope.Role.UserID
		taskScope.AssigneeID = &userID
	}
	now := s.now()

	counts := make([]TaskCounts, len(Periods))
	var overdue int

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range Periods {
		w := window(p, now)
		g.Go(func() error {
			n, err := s.repo.CountOpenTasksDue(gctx, taskScope, w)
			counts[i].Open = n
			return err
		})
		g.Go(func() error {
			n, err := s.repo.CountCompletedTasks(gctx, taskScope, w)
			counts[i].Completed = n
			return err
		})
	}
	g.Go(func() error {
		n, err := s.repo.CountOverdueTasks(gctx, taskScope, now)
		overdue = n
		return err
	})
	if err := g.Wait(); err != nil {
		return TaskStats{}, err
	}

	stats := TaskStats{Periods: make(map[Period]TaskCounts, len(Periods)), Overdue: overdue}
	for i, p := range Periods {
		stats.Periods[p] = counts[i]
	}
	return stats, nil
}

// StatusWiseCounts returns the funnel: ongoing, non-deleted leads per vendor
// status in pipeline order. Stages without leads are listed with zero.
func (s *Service) StatusWiseCounts(ctx context.Context, vendorID, userID int64) (StatusCounts, error) {
	scope, err := s.scopes.ScopeFor(ctx, vendorID, userID)
	if err != nil {
		return StatusCounts{}, err
	}
	return s.statusCounts(ctx, scope)
}

func (s *Service) statusCounts(ctx context.Context, scope access.Scope) (StatusCounts, error) {
	return cache.GetOrCompute(ctx, s.cache, key(keyStatusCounts, scope), s.statusCountsTTL, func(ctx context.Context) (StatusCounts, error) {
		return s.computeStatusCounts(ctx, scope)
	})
}

func (s *Service) computeStatusCounts(ctx context.Context, scope access.Scope) (StatusCounts, error) {
	types, err := s.repo.ListStatusTypes(ctx, scope.Role.VendorID)
	if err != nil {
		return StatusCounts{}, err
	}
	sort.SliceStable(types, func(i, j int) bool {
		return domain.StatusTag(types[i].Tag).Ordinal() < domain.StatusTag(types[j].Tag).Ordinal()
	})

	byStatus := map[int64]int{}
	if !scope.Empty() {
		rows, err := s.repo.CountLeadsByStatus(ctx, scope.Repository())
		if err != nil {
			return StatusCounts{}, err
		}
		for _, r := range rows {
			byStatus[r.StatusID] = r.Count
		}
	}

	result := StatusCounts{Stages: make([]StageCount, 0, len(types))}
	for _, t := range types {
		n := byStatus[t.ID]
		result.Stages = append(result.Stages, StageCount{StatusID: t.ID, Tag: t.Tag, Name: t.Name, Count: n})
		result.Total += n
	}
	return result, nil
}

// Warm fills the admin entries of every aggregate for vendorID. Entries that
// are still cached are left as they are.
func (s *Service) Warm(ctx context.Context, vendorID int64) error {
	scope := adminScope(vendorID)
	var mu sync.Mutex
	var failed []string

	g, gctx := errgroup.WithContext(ctx)
	run := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				mu.Lock()
				failed = append(failed, name)
				mu.Unlock()
				return err
			}
			return nil
		})
	}
	run(keyTaskStats, func(ctx context.Context) error { _, err := s.taskStats(ctx, scope); return err })
	run(keyStatusCounts, func(ctx context.Context) error { _, err := s.statusCounts(ctx, scope); return err })
	run(keyPerformance, func(ctx context.Context) error { _, err := s.performance(ctx, scope); return err })

	err := g.Wait()
	if err != nil {
		s.log.WithContext(ctx).Warn("dashboard warm-up failed", "vendorId", vendorID, "aggregates", failed, "error", err)
	}
	return err
}
