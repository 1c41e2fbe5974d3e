package model

// SpendContext is the bounded, versioned snapshot of a user's financial
// facts that an external reasoner may reference. It is a pure function of
// transactions, goals, preferences, the evaluation instant and the user's
// timezone; it is never persisted.
//
// The JSON field names below form the closed evidence-path vocabulary that
// insight cards declare against and that the evidence validator resolves
// dot-paths through.
type SpendContext struct {
	Meta        ContextMeta       `json:"meta"`
	Windows     ContextWindows    `json:"windows"`
	Goals       GoalSummary       `json:"goals"`
	Preferences PreferenceSummary `json:"preferences"`
}

// ContextMeta records when and for which locale the snapshot was computed.
type ContextMeta struct {
	Timezone string `json:"timezone"`
	Now      string `json:"now"`
	Currency string `json:"currency"`
}

// ContextWindows holds the trailing aggregation windows.
type ContextWindows struct {
	Last7d  Window7d  `json:"last_7d"`
	Last14d Window14d `json:"last_14d"`
	Last30d Window30d `json:"last_30d"`
	Last90d Window90d `json:"last_90d"`
}

// MerchantSpend ranks one merchant by total spend.
type MerchantSpend struct {
	Name     string  `json:"name"`
	SpendGBP float64 `json:"spend_gbp"`
}

// MerchantCount ranks one merchant by transaction count.
type MerchantCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RecurringMerchant is a candidate subscription-like merchant with its
// approximate billing period.
type RecurringMerchant struct {
	Name             string `json:"name"`
	ApproxPeriodDays int    `json:"approx_period_days"`
}

// PaydayCandidate is a calendar day-of-month that repeatedly sees inbound
// amounts, with a confidence relative to the strongest candidate.
type PaydayCandidate struct {
	DayOfMonth int     `json:"day_of_month"`
	Confidence float64 `json:"confidence"`
}

// Window7d is the 7-day trailing window.
type Window7d struct {
	TotalsByCategoryGBP     map[string]float64 `json:"totals_by_category_gbp"`
	TopMerchantsBySpend     []MerchantSpend    `json:"top_merchants_by_spend"`
	TopMerchantsByFrequency []MerchantCount    `json:"top_merchants_by_frequency"`
	LateNightTxCount        int                `json:"late_night_tx_count"`
	SmallPurchaseCount      int                `json:"small_purchase_count"`
}

// Window14d is the 14-day trailing window.
type Window14d struct {
	CategoryTotalsGBP   map[string]float64 `json:"category_totals_gbp"`
	MerchantFrequency   map[string]int     `json:"merchant_frequency"`
	TopMerchantsBySpend []MerchantSpend    `json:"top_merchants_by_spend"`
}

// Window30d is the 30-day trailing window.
type Window30d struct {
	CategoryTotalsGBP            map[string]float64  `json:"category_totals_gbp"`
	MerchantFrequency            map[string]int      `json:"merchant_frequency"`
	RecurringMerchantsCandidates []RecurringMerchant `json:"recurring_merchants_candidates"`
}

// Window90d is the 90-day trailing window.
type Window90d struct {
	BaselineByCategoryGBPPerWeek map[string]float64 `json:"baseline_by_category_gbp_per_week"`
	PaydayCandidates             []PaydayCandidate  `json:"payday_candidates"`
}

// PreferenceSummary is the preference slice included in the spend context.
type PreferenceSummary struct {
	Tone                   string     `json:"tone"`
	QuietHours             QuietHours `json:"quiet_hours"`
	MaxNotificationsPerDay int        `json:"max_notifications_per_day"`
}
