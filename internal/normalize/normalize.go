// Package normalize converts raw store transactions into status-tagged
// transaction records and, aggregated, into an entitlement map. Everything
// here is a pure function of its inputs plus the evaluation instant: no
// network, no disk, and no failure path (malformed input degrades to
// "not granting" rather than raising).
package normalize

import (
	"time"

	"github.com/dmitrijs2005/subkeeper/internal/models"
)

// Status derives the lifecycle status of a raw transaction at the given
// instant. A revocation always wins; the store-reported grace-period and
// billing-retry states are kept as-is; otherwise a transaction with an
// expiration date not in the future is expired, and anything else is active.
func Status(raw models.RawTransaction, now time.Time) models.TransactionStatus {
	switch {
	case raw.RevokedAt != nil:
		return models.StatusRefunded
	case raw.InGracePeriod:
		return models.StatusGracePeriod
	case raw.InBillingRetry:
		return models.StatusBillingRetry
	case raw.ExpirationDate != nil && !raw.ExpirationDate.After(now):
		return models.StatusExpired
	default:
		return models.StatusActive
	}
}

// Record builds the normalized transaction record for one raw transaction,
// with the status derived against now.
func Record(raw models.RawTransaction, now time.Time) models.TransactionRecord {
	return models.TransactionRecord{
		TransactionID:  raw.TransactionID,
		ProductID:      raw.ProductID,
		PurchaseDate:   raw.PurchaseDate,
		ExpirationDate: raw.ExpirationDate,
		Status:         Status(raw, now),
	}
}

// Records normalizes a whole sequence, preserving input order.
func Records(raws []models.RawTransaction, now time.Time) []models.TransactionRecord {
	if raws == nil {
		return nil
	}
	out := make([]models.TransactionRecord, len(raws))
	for i, raw := range raws {
		out[i] = Record(raw, now)
	}
	return out
}

// Entitlements aggregates an ordered transaction sequence into an
// entitlement map keyed by product id.
//
// A transaction whose derived status is active, grace_period or
// billing_retry grants the entitlement for its product; any other status
// removes a grant established by an earlier transaction for the same
// product. Conflicts resolve last-write-wins by slice order, matching the
// processing-order guarantee of the upstream transaction source. The
// sequence is deliberately not re-sorted by purchase date.
func Entitlements(raws []models.RawTransaction, now time.Time) map[string]models.EntitlementRecord {
	out := make(map[string]models.EntitlementRecord, len(raws))
	for _, raw := range raws {
		switch Status(raw, now) {
		case models.StatusActive, models.StatusGracePeriod, models.StatusBillingRetry:
			out[raw.ProductID] = models.EntitlementRecord{
				ID:             raw.ProductID,
				IsActive:       true,
				ExpirationDate: raw.ExpirationDate,
				ProductID:      raw.ProductID,
				Store:          raw.Store,
				WillRenew:      raw.RevokedAt == nil && raw.ExpirationDate != nil,
				PurchaseDate:   raw.PurchaseDate,
			}
		default:
			delete(out, raw.ProductID)
		}
	}
	return out
}
