package response_models

import "time"

type TimeRange struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Interval string    `json:"interval"` // day | week | month
	Timezone string    `json:"timezone"`
}

type KPIBlock struct {
	TotalAccounts        int64 `json:"total_accounts"`
	NewAccounts          int64 `json:"new_accounts"`
	TotalMemorials       int64 `json:"total_memorials"`
	NewMemorials         int64 `json:"new_memorials"`
	PaidMemorials        int64 `json:"paid_memorials"`
	PendingContributions int64 `json:"pending_contributions"`
	ActiveSubscribers    int64 `json:"active_subscribers"`

	MRRMinor int64 `json:"mrr_minor"`
	ARRMinor int64 `json:"arr_minor"`
}

type SeriesPoint struct {
	Bucket time.Time `json:"bucket"`
	Value  int64     `json:"value"`
}

type PlanMixItem struct {
	PlanID     string  `json:"plan_id"`
	PlanName   string  `json:"plan_name"`
	Period     string  `json:"period"`
	PriceMinor int64   `json:"price_minor"`
	Count      int64   `json:"count"`
	Percent    float64 `json:"percent"`
}

type RecentBillingEvent struct {
	ProviderEventID string `json:"provider_event_id"`
	Type            string `json:"type"`
	ProcessedAt     int64  `json:"processed_at"`
}

type DashboardReport struct {
	Range        TimeRange            `json:"range"`
	KPIs         KPIBlock             `json:"kpis"`
	NewMemorials []SeriesPoint        `json:"new_memorials"`
	NewAccounts  []SeriesPoint        `json:"new_accounts"`
	PlanMix      []PlanMixItem        `json:"plan_mix"`
	RecentEvents []RecentBillingEvent `json:"recent_billing_events"`
}
