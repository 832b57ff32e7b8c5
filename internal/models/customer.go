// Package models defines the data types shared by the subkeeper client:
// the customer-state snapshot, entitlement and transaction records, and the
// raw transaction shape reported by platform stores. Values are plain DTOs;
// the JSON tags match the wire schema of the remote authority (snake_case
// keys, RFC 3339 dates).
package models

import "time"

// Store identifies the platform a purchase originated from.
type Store string

const (
	StoreAppStore    Store = "app_store"
	StorePlayStore   Store = "play_store"
	StoreStripe      Store = "stripe"
	StorePromotional Store = "promotional"
)

// EntitlementRecord describes one named capability granted to a user.
//
// IsActive alone does not mean the user currently has access: an active
// record with an expiration date in the past no longer grants anything.
// Use GrantedAt for access checks; the two-part check is evaluated against
// the caller's clock, never pre-computed and stored.
type EntitlementRecord struct {
	ID             string     `json:"id"`
	IsActive       bool       `json:"is_active"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	ProductID      string     `json:"product_id"`
	Store          Store      `json:"store"`
	WillRenew      bool       `json:"will_renew"`
	PurchaseDate   time.Time  `json:"purchase_date"`
}

// GrantedAt reports whether the entitlement grants access at the given
// instant: the record must be active and either carry no expiration date or
// expire strictly after now.
func (e EntitlementRecord) GrantedAt(now time.Time) bool {
	if !e.IsActive {
		return false
	}
	if e.ExpirationDate == nil {
		return true
	}
	return e.ExpirationDate.After(now)
}

// CustomerState is the full snapshot of one user's subscription state.
//
// Snapshots are treated as immutable values: every update builds a new
// snapshot and swaps it in whole, so concurrent readers never observe a
// partially updated one. AllTransactions keeps the processed history for
// diagnostics; its order carries no correctness meaning.
type CustomerState struct {
	AppUserID       string                       `json:"app_user_id"`
	Entitlements    map[string]EntitlementRecord `json:"active_entitlements"`
	AllTransactions []TransactionRecord          `json:"all_transactions"`
	FirstSeenAt     time.Time                    `json:"first_seen_at"`
}

// Clone returns a deep copy of the snapshot. The copy shares no mutable
// state with the original.
func (s *CustomerState) Clone() *CustomerState {
	if s == nil {
		return nil
	}
	c := &CustomerState{
		AppUserID:   s.AppUserID,
		FirstSeenAt: s.FirstSeenAt,
	}
	if s.Entitlements != nil {
		c.Entitlements = make(map[string]EntitlementRecord, len(s.Entitlements))
		for k, v := range s.Entitlements {
			c.Entitlements[k] = v
		}
	}
	if s.AllTransactions != nil {
		c.AllTransactions = make([]TransactionRecord, len(s.AllTransactions))
		copy(c.AllTransactions, s.AllTransactions)
	}
	return c
}
