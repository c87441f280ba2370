package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"leadflow_backend/internal/leads/access"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/taxonomy"
	"leadflow_backend/platform/cache"
)

type PeriodPerformance struct {
	LeadsCreated int             `json:"leadsCreated"`
	Bookings     int             `json:"bookings"`
	BookingValue decimal.Decimal `json:"bookingValue"`
}

// Breakdown is a duration split into whole days, hours and minutes.
type Breakdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

type Performance struct {
	Periods map[Period]PeriodPerformance `json:"periods"`
	// OpenToBooking is the mean time from entering Open to entering Booking,
	// over leads that reached both.
	OpenToBooking Breakdown `json:"openToBooking"`
	BookedLeads   int       `json:"bookedLeads"`
}

// NewBreakdown rounds d to the minute and splits it.
func NewBreakdown(d time.Duration) Breakdown {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Round(time.Minute) / time.Minute)
	return Breakdown{
		Days:    minutes / (24 * 60),
		Hours:   minutes % (24 * 60) / 60,
		Minutes: minutes % 60,
	}
}

// Performance reports leads created, bookings and booking value per period and
// the average Open to Booking time.
func (s *Service) Performance(ctx context.Context, vendorID, userID int64) (Performance, error) {
	scope, err := s.scopes.ScopeFor(ctx, vendorID, userID)
	if err != nil {
		return Performance{}, err
	}
	return s.performance(ctx, scope)
}

func (s *Service) performance(ctx context.Context, scope access.Scope) (Performance, error) {
	return cache.GetOrCompute(ctx, s.cache, key(keyPerformance, scope), s.performanceTTL, func(ctx context.Context) (Performance, error) {
		return s.computePerformance(ctx, scope)
	})
}

func emptyPerformance() Performance {
	p := Performance{Periods: make(map[Period]PeriodPerformance, len(Periods))}
	for _, period := range Periods {
		p.Periods[period] = PeriodPerformance{BookingValue: decimal.Zero}
	}
	return p
}

func (s *Service) computePerformance(ctx context.Context, scope access.Scope) (Performance, error) {
	if scope.Empty() {
		return emptyPerformance(), nil
	}

	vendorID := scope.Role.VendorID
	resolver := taxonomy.New(s.repo)
	open, err := resolver.ResolveStatus(ctx, vendorID, domain.StatusOpen)
	if err != nil {
		return Performance{}, err
	}
	booking, err := resolver.ResolveStatus(ctx, vendorID, domain.StatusBooking)
	if err != nil {
		return Performance{}, err
	}
	bookingPayment, err := resolver.ResolvePayment(ctx, vendorID, domain.PaymentBookingAmount)
	if err != nil {
		return Performance{}, err
	}

	repoScope := scope.Repository()
	now := s.now()
	periods := make([]PeriodPerformance, len(Periods))
	var logs []repository.StatusLog

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range Periods {
		w := window(p, now)
		g.Go(func() error {
			n, err := s.repo.CountLeadsCreated(gctx, repoScope, w)
			periods[i].LeadsCreated = n
			return err
		})
		g.Go(func() error {
			n, err := s.repo.CountStatusEntries(gctx, repoScope, booking.ID, w)
			periods[i].Bookings = n
			return err
		})
		g.Go(func() error {
			sum, err := s.repo.SumPayments(gctx, repoScope, bookingPayment.ID, w)
			periods[i].BookingValue = sum
			return err
		})
	}
	g.Go(func() error {
		var err error
		logs, err = s.repo.ListStatusLogs(gctx, repoScope, []int64{open.ID, booking.ID})
		return err
	})
	if err := g.Wait(); err != nil {
		return Performance{}, err
	}

	result := Performance{Periods: make(map[Period]PeriodPerformance, len(Periods))}
	for i, p := range Periods {
		result.Periods[p] = periods[i]
	}
	mean, n := averageBetween(logs, open.ID, booking.ID)
	result.OpenToBooking = NewBreakdown(mean)
	result.BookedLeads = n
	return result, nil
}

// averageBetween averages, per lead, the time from its first fromID entry to
// its first toID entry. logs must be ordered oldest first. Leads missing
// either entry, or reaching toID before fromID, are skipped.
func averageBetween(logs []repository.StatusLog, fromID, toID int64) (time.Duration, int) {
	type span struct {
		from, to time.Time
	}
	spans := make(map[int64]*span)
	for _, l := range logs {
		sp, ok := spans[l.LeadID]
		if !ok {
			sp = &span{}
			spans[l.LeadID] = sp
		}
		switch l.StatusID {
		case fromID:
			if sp.from.IsZero() {
				sp.from = l.CreatedAt
			}
		case toID:
			if sp.to.IsZero() {
				sp.to = l.CreatedAt
			}
		}
	}

	var total time.Duration
	var n int
	for _, sp := range spans {
		if sp.from.IsZero() || sp.to.IsZero() {
			continue
		}
		delta := sp.to.Sub(sp.from)
		if delta < 0 {
			continue
		}
		total += delta
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return total / time.Duration(n), n
}
