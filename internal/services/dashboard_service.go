package services

import (
	"context"
	"time"

	dbm "memoria/internal/models/db_models"
	resp "memoria/internal/models/response_models"
	"memoria/internal/repositories"
	"memoria/pkg/utils"
)

const recentEventsLimit = 10

type DashboardService interface {
	BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error)
}

type dashboardService struct {
	repo repositories.DashboardRepository
}

func NewDashboardService(repo repositories.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	if out.Interval == "" {
		out.Interval = "day"
	}
	if out.Timezone == "" {
		out.Timezone = "UTC"
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30) // last 30 days default
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func monthlyEquivalent(priceMinor int64, cycle string) int64 {
	switch dbm.BillingCycle(cycle) {
	case dbm.CycleMonthly:
		return priceMinor
	case dbm.CycleYearly:
		return priceMinor / 12
	default:
		// Lifetime purchases are one-off and add nothing recurring.
		return 0
	}
}

// truncate maps t to the start of its bucket in loc. Weeks start on Monday.
func truncate(t time.Time, interval string, loc *time.Location) time.Time {
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	switch interval {
	case "week":
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case "month":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return day
	}
}

// bucketize counts unix timestamps per bucket, in ascending bucket order.
func bucketize(stamps []int64, interval string, loc *time.Location) []resp.SeriesPoint {
	points := make([]resp.SeriesPoint, 0)
	for _, ts := range stamps {
		b := truncate(time.Unix(ts, 0), interval, loc)
		if n := len(points); n > 0 && points[n-1].Bucket.Equal(b) {
			points[n-1].Value++
			continue
		}
		points = append(points, resp.SeriesPoint{Bucket: b, Value: 1})
	}
	return points
}

func (s *dashboardService) BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error) {
	rng = normalizeRange(rng)
	loc, err := time.LoadLocation(rng.Timezone)
	if err != nil {
		return nil, utils.NewValidationError("tz", "unknown timezone")
	}

	// ---------- Core counts ----------
	var kpi resp.KPIBlock
	counts := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&kpi.TotalAccounts, func() (int64, error) { return s.repo.CountTotalAccounts(ctx) }},
		{&kpi.NewAccounts, func() (int64, error) { return s.repo.CountNewAccounts(ctx, rng.Start, rng.End) }},
		{&kpi.TotalMemorials, func() (int64, error) { return s.repo.CountTotalMemorials(ctx) }},
		{&kpi.PaidMemorials, func() (int64, error) { return s.repo.CountPaidMemorials(ctx) }},
		{&kpi.PendingContributions, func() (int64, error) { return s.repo.CountContributionsByStatus(ctx, dbm.StatusPending) }},
		{&kpi.ActiveSubscribers, func() (int64, error) { return s.repo.CountActiveSubscribers(ctx) }},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		*c.dst = n
	}

	// ---------- Series ----------
	memorialStamps, err := s.repo.MemorialCreatedAt(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	kpi.NewMemorials = int64(len(memorialStamps))

	accountStamps, err := s.repo.AccountCreatedAt(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	// ---------- Plan mix and recurring revenue ----------
	planRows, err := s.repo.PlanMix(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	var total float64
	for _, r := range planRows {
		total += float64(r.Count)
	}
	planMix := make([]resp.PlanMixItem, 0, len(planRows))
	for _, r := range planRows {
		var pct float64
		if total > 0 {
			pct = float64(r.Count) * 100.0 / total
		}
		planMix = append(planMix, resp.PlanMixItem{
			PlanID:     r.PlanID,
			PlanName:   r.PlanName,
			Period:     r.Period,
			PriceMinor: r.PriceMinor,
			Count:      r.Count,
			Percent:    pct,
		})
		kpi.MRRMinor += monthlyEquivalent(r.PriceMinor, r.Period) * r.Count
	}
	kpi.ARRMinor = kpi.MRRMinor * 12

	// ---------- Recent billing events ----------
	events, err := s.repo.RecentBillingEvents(ctx, recentEventsLimit)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	recent := make([]resp.RecentBillingEvent, 0, len(events))
	for _, e := range events {
		recent = append(recent, resp.RecentBillingEvent{
			ProviderEventID: e.ProviderEventID,
			Type:            e.Type,
			ProcessedAt:     e.ProcessedAt,
		})
	}

	return &resp.DashboardReport{
		Range:        rng,
		KPIs:         kpi,
		NewMemorials: bucketize(memorialStamps, rng.Interval, loc),
		NewAccounts:  bucketize(accountStamps, rng.Interval, loc),
		PlanMix:      planMix,
		RecentEvents: recent,
	}, nil
}
