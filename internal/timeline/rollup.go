// Package timeline derives the behavioral event feed from raw transactions:
// daily rollups, streaks, one-time breakthroughs, periodic framing, and the
// merged cursor-paginated timeline.
package timeline

import (
	"strings"
	"time"

	"github.com/sammoorhouse/mentos/internal/model"
)

// Categories and merchant codes that mark a transaction as a takeaway.
var (
	takeawayCategories = map[string]struct{}{
		"delivery":      {},
		"takeaway":      {},
		"food_delivery": {},
		"meal_delivery": {},
	}
	takeawayMCCs = map[int]struct{}{5814: {}}
)

// DayRollup aggregates one user's transactions for one local calendar day.
type DayRollup struct {
	Day            model.Date
	SpendTotal     int64
	TransactionIDs []string
	TakeawayTxnIDs []string
}

// Rollups maps calendar days to their aggregates. Days without transactions
// have no entry; Day returns an empty rollup for them.
type Rollups map[model.Date]*DayRollup

// Day returns the rollup for d, or an empty rollup when no transactions
// landed on that day.
func (r Rollups) Day(d model.Date) DayRollup {
	if rollup, ok := r[d]; ok {
		return *rollup
	}
	return DayRollup{Day: d}
}

// IsTakeaway reports whether a transaction matches the takeaway predicate:
// a takeaway category or a takeaway merchant classification code.
func IsTakeaway(txn *model.Transaction) bool {
	if _, ok := takeawayCategories[strings.ToLower(txn.Category)]; ok {
		return true
	}
	if txn.MCC != 0 {
		if _, ok := takeawayMCCs[txn.MCC]; ok {
			return true
		}
	}
	return false
}

// BuildDailyRollups aggregates transactions into per-day summaries in the
// user's timezone. Pure function of its inputs; safe to recompute on every
// request.
func BuildDailyRollups(transactions []model.Transaction, loc *time.Location) Rollups {
	rollups := make(Rollups)
	for i := range transactions {
		txn := &transactions[i]
		day := model.LocalDay(txn.Timestamp, loc)
		rollup, ok := rollups[day]
		if !ok {
			rollup = &DayRollup{Day: day}
			rollups[day] = rollup
		}
		rollup.SpendTotal += txn.SpendAmount()
		rollup.TransactionIDs = append(rollup.TransactionIDs, txn.ID)
		if IsTakeaway(txn) {
			rollup.TakeawayTxnIDs = append(rollup.TakeawayTxnIDs, txn.ID)
		}
	}
	return rollups
}

// DayBounds returns the start and end instants of a local calendar day.
func DayBounds(d model.Date, loc *time.Location) (time.Time, time.Time) {
	start := d.Time(loc)
	return start, start.AddDate(0, 0, 1)
}
