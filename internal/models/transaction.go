package models

import "time"

// TransactionStatus is the normalized lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusActive       TransactionStatus = "active"
	StatusExpired      TransactionStatus = "expired"
	StatusRefunded     TransactionStatus = "refunded"
	StatusGracePeriod  TransactionStatus = "grace_period"
	StatusBillingRetry TransactionStatus = "billing_retry"
)

// TransactionRecord is one processed purchase transaction. The transaction
// id is opaque and store-assigned; Status is derived once at normalization
// time and not re-evaluated afterwards.
type TransactionRecord struct {
	TransactionID  string            `json:"transaction_id"`
	ProductID      string            `json:"product_id"`
	PurchaseDate   time.Time         `json:"purchase_date"`
	ExpirationDate *time.Time        `json:"expiration_date,omitempty"`
	Status         TransactionStatus `json:"status"`
}

// RawTransaction is a transaction exactly as reported by the platform store,
// before normalization. Proof is the opaque signed artifact issued by the
// store; it is passed through to the remote authority verbatim and never
// inspected locally.
//
// InGracePeriod and InBillingRetry are terminal states reported directly by
// the store, not derived here.
type RawTransaction struct {
	TransactionID  string
	ProductID      string
	Store          Store
	PurchaseDate   time.Time
	ExpirationDate *time.Time
	RevokedAt      *time.Time
	InGracePeriod  bool
	InBillingRetry bool
	Proof          []byte
}
