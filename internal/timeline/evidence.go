package timeline

import (
	"crypto/sha1" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"strings"
	"time"

	"github.com/sammoorhouse/mentos/internal/model"
)

// NewEvidence builds an evidence block for an event.
func NewEvidence(start, end time.Time, transactionIDs []string, metrics map[string]float64) model.Evidence {
	if transactionIDs == nil {
		transactionIDs = []string{}
	}
	if metrics == nil {
		metrics = map[string]float64{}
	}
	return model.Evidence{
		TransactionIDs: transactionIDs,
		DateRange:      model.DateRange{Start: start, End: end},
		Metrics:        metrics,
	}
}

// EventID derives a deterministic event id from the user, the event kind and
// the distinguishing parts. Identical inputs always produce identical ids,
// which keeps ordering and pagination stable across repeated generation runs.
func EventID(userID, kind string, parts ...string) string {
	src := strings.Join(append([]string{userID, kind}, parts...), "|")
	sum := sha1.Sum([]byte(src))
	return hex.EncodeToString(sum[:])
}
