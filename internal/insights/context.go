package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sammoorhouse/mentos/internal/model"
)

// SmallPurchaseLimitGBP is the exclusive upper bound on what counts as a
// small purchase.
var SmallPurchaseLimitGBP = decimal.NewFromInt(10)

var pencePerPound = decimal.NewFromInt(100)

// BuildSpendContext computes the windowed snapshot of financial facts for
// one user at one instant. Pure function of its inputs: same transactions,
// goals, preferences, instant and timezone always produce the same context.
func BuildSpendContext(transactions []model.Transaction, goals model.GoalSummary, prefs model.Preferences, now time.Time, tzName string) (*model.SpendContext, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tzName, err)
	}
	now = now.In(loc)

	last7 := windowTransactions(transactions, now, 7)
	last14 := windowTransactions(transactions, now, 14)
	last30 := windowTransactions(transactions, now, 30)
	last90 := windowTransactions(transactions, now, 90)

	return &model.SpendContext{
		Meta: model.ContextMeta{
			Timezone: tzName,
			Now:      now.Format(time.RFC3339),
			Currency: "GBP",
		},
		Windows: model.ContextWindows{
			Last7d: model.Window7d{
				TotalsByCategoryGBP:     categoryTotals(last7),
				TopMerchantsBySpend:     topMerchantsBySpend(last7, 5),
				TopMerchantsByFrequency: topMerchantsByFrequency(last7, 5),
				LateNightTxCount:        lateNightCount(last7, loc),
				SmallPurchaseCount:      smallPurchaseCount(last7),
			},
			Last14d: model.Window14d{
				CategoryTotalsGBP:   categoryTotals(last14),
				MerchantFrequency:   merchantFrequency(last14),
				TopMerchantsBySpend: topMerchantsBySpend(last14, 5),
			},
			Last30d: model.Window30d{
				CategoryTotalsGBP:            categoryTotals(last30),
				MerchantFrequency:            merchantFrequency(last30),
				RecurringMerchantsCandidates: recurringCandidates(last30),
			},
			Last90d: model.Window90d{
				BaselineByCategoryGBPPerWeek: baselineByCategory(last90, now, loc),
				PaydayCandidates:             paydayCandidates(last90, loc),
			},
		},
		Goals: model.GoalSummary{
			ActiveGoalIDs:            orEmpty(goals.ActiveGoalIDs),
			ActiveGoalTags:           orEmpty(goals.ActiveGoalTags),
			RecentBreakthroughsCount: goals.RecentBreakthroughsCount,
			RecentDriftEventsCount:   goals.RecentDriftEventsCount,
		},
		Preferences: preferenceSummary(prefs),
	}, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// preferenceSummary applies the defaults the reasoner contract promises.
func preferenceSummary(prefs model.Preferences) model.PreferenceSummary {
	summary := model.PreferenceSummary{
		Tone:                   prefs.Tone,
		QuietHours:             prefs.QuietHours,
		MaxNotificationsPerDay: prefs.MaxNotificationsPerDay,
	}
	if summary.Tone == "" {
		summary.Tone = "supportive"
	}
	if summary.QuietHours.Start == "" || summary.QuietHours.End == "" {
		summary.QuietHours = model.QuietHours{Start: "22:00", End: "07:00"}
	}
	if summary.MaxNotificationsPerDay < 1 {
		summary.MaxNotificationsPerDay = 1
	}
	return summary
}

// windowTransactions returns the transactions inside the trailing window
// [now-days, now], bounds inclusive.
func windowTransactions(transactions []model.Transaction, now time.Time, days int) []model.Transaction {
	start := now.AddDate(0, 0, -days)
	var out []model.Transaction
	for _, txn := range transactions {
		if !txn.Timestamp.Before(start) && !txn.Timestamp.After(now) {
			out = append(out, txn)
		}
	}
	return out
}

// spendGBP returns the outbound amount in pounds, or zero for inbound
// transactions.
func spendGBP(txn *model.Transaction) decimal.Decimal {
	if txn.Amount >= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(-txn.Amount).Div(pencePerPound)
}

func category(txn *model.Transaction) string {
	if txn.Category == "" {
		return "uncategorised"
	}
	return txn.Category
}

// categoryTotals sums outbound spend per category, rounded to 2 decimals,
// dropping zero entries.
func categoryTotals(transactions []model.Transaction) map[string]float64 {
	totals := make(map[string]decimal.Decimal)
	for i := range transactions {
		txn := &transactions[i]
		totals[category(txn)] = totals[category(txn)].Add(spendGBP(txn))
	}

	out := make(map[string]float64)
	for name, total := range totals {
		if total.IsPositive() {
			out[name] = total.Round(2).InexactFloat64()
		}
	}
	return out
}

// merchantSpend sums outbound spend per merchant, dropping zero entries.
func merchantSpend(transactions []model.Transaction) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for i := range transactions {
		txn := &transactions[i]
		totals[txn.Merchant()] = totals[txn.Merchant()].Add(spendGBP(txn))
	}
	for name, total := range totals {
		if !total.IsPositive() {
			delete(totals, name)
		}
	}
	return totals
}

// merchantFrequency counts outbound transactions per merchant.
func merchantFrequency(transactions []model.Transaction) map[string]int {
	counts := make(map[string]int)
	for i := range transactions {
		txn := &transactions[i]
		if txn.Amount < 0 {
			counts[txn.Merchant()]++
		}
	}
	return counts
}

// topMerchantsBySpend ranks merchants by total spend, descending; ties
// break on name so the ranking is reproducible.
func topMerchantsBySpend(transactions []model.Transaction, limit int) []model.MerchantSpend {
	spend := merchantSpend(transactions)
	ranked := make([]model.MerchantSpend, 0, len(spend))
	for name, total := range spend {
		ranked = append(ranked, model.MerchantSpend{Name: name, SpendGBP: total.Round(2).InexactFloat64()})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].SpendGBP != ranked[j].SpendGBP {
			return ranked[i].SpendGBP > ranked[j].SpendGBP
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// topMerchantsByFrequency ranks merchants by outbound transaction count,
// descending, with the same deterministic tie-break.
func topMerchantsByFrequency(transactions []model.Transaction, limit int) []model.MerchantCount {
	freq := merchantFrequency(transactions)
	ranked := make([]model.MerchantCount, 0, len(freq))
	for name, count := range freq {
		ranked = append(ranked, model.MerchantCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// lateNightCount counts outbound transactions between 22:00 and 04:00 local.
func lateNightCount(transactions []model.Transaction, loc *time.Location) int {
	count := 0
	for i := range transactions {
		txn := &transactions[i]
		if txn.Amount >= 0 {
			continue
		}
		hour := txn.Timestamp.In(loc).Hour()
		if hour >= 22 || hour < 4 {
			count++
		}
	}
	return count
}

// smallPurchaseCount counts outbound transactions under the small-purchase
// threshold.
func smallPurchaseCount(transactions []model.Transaction) int {
	count := 0
	for i := range transactions {
		amount := spendGBP(&transactions[i])
		if amount.IsPositive() && amount.LessThan(SmallPurchaseLimitGBP) {
			count++
		}
	}
	return count
}

// recurringCandidates finds merchants with at least two outbound
// transactions and estimates their billing period from the mean gap.
func recurringCandidates(transactions []model.Transaction) []model.RecurringMerchant {
	byMerchant := make(map[string][]time.Time)
	for i := range transactions {
		txn := &transactions[i]
		if txn.Amount >= 0 {
			continue
		}
		byMerchant[txn.Merchant()] = append(byMerchant[txn.Merchant()], txn.Timestamp)
	}

	var out []model.RecurringMerchant
	for name, stamps := range byMerchant {
		if len(stamps) < 2 {
			continue
		}
		sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
		totalGapDays := 0
		for i := 1; i < len(stamps); i++ {
			totalGapDays += int(stamps[i].Sub(stamps[i-1]) / (24 * time.Hour))
		}
		period := int(math.Round(float64(totalGapDays) / float64(len(stamps)-1)))
		if period < 1 {
			period = 1
		}
		out = append(out, model.RecurringMerchant{Name: name, ApproxPeriodDays: period})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ApproxPeriodDays != out[j].ApproxPeriodDays {
			return out[i].ApproxPeriodDays < out[j].ApproxPeriodDays
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// baselineByCategory normalizes 90-day category totals to a weekly rate.
func baselineByCategory(transactions []model.Transaction, now time.Time, loc *time.Location) map[string]float64 {
	windowStart := now.In(loc).AddDate(0, 0, -90)
	startOfDay := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, loc)
	weeks := int(now.Sub(startOfDay)/(24*time.Hour)) / 7
	if weeks < 1 {
		weeks = 1
	}

	totals := categoryTotals(transactions)
	weekCount := decimal.NewFromInt(int64(weeks))
	out := make(map[string]float64, len(totals))
	for name, total := range totals {
		out[name] = decimal.NewFromFloat(total).Div(weekCount).Round(2).InexactFloat64()
	}
	return out
}

// paydayCandidates ranks calendar days-of-month by inbound transaction
// count; confidence is relative to the strongest candidate.
func paydayCandidates(transactions []model.Transaction, loc *time.Location) []model.PaydayCandidate {
	hits := make(map[int]int)
	for i := range transactions {
		txn := &transactions[i]
		if txn.Amount <= 0 {
			continue
		}
		hits[txn.Timestamp.In(loc).Day()]++
	}
	if len(hits) == 0 {
		return []model.PaydayCandidate{}
	}

	maxHits := 0
	for _, count := range hits {
		if count > maxHits {
			maxHits = count
		}
	}

	type dayHits struct{ day, count int }
	ranked := make([]dayHits, 0, len(hits))
	for day, count := range hits {
		ranked = append(ranked, dayHits{day: day, count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].day < ranked[j].day
	})
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}

	maxDec := decimal.NewFromInt(int64(maxHits))
	out := make([]model.PaydayCandidate, len(ranked))
	for i, entry := range ranked {
		confidence := decimal.NewFromInt(int64(entry.count)).Div(maxDec).Round(2).InexactFloat64()
		out[i] = model.PaydayCandidate{DayOfMonth: entry.day, Confidence: confidence}
	}
	return out
}
