// Package common defines the sentinel errors and typed error wrappers shared
// across the subkeeper client layers. Callers should use errors.Is to match
// the sentinels and errors.As to reach the typed wrappers.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means no operating mode has been set yet. Fatal to
	// the call, not to the process.
	ErrNotConfigured = errors.New("not configured")

	// ErrPurchaseCancelled means the user backed out of the purchase flow.
	// Not an error state for entitlement purposes.
	ErrPurchaseCancelled = errors.New("purchase cancelled")

	// ErrStoreFailure means the platform store malfunctioned while
	// executing a purchase.
	ErrStoreFailure = errors.New("store failure")

	// ErrNetwork marks transient transport failures. Where a cached
	// snapshot exists the engine falls back to it instead of propagating.
	ErrNetwork = errors.New("network failure")

	// ErrProtocol marks a contract mismatch between client and remote
	// authority: the response arrived but did not match the expected
	// schema. Never triggers cache fallback.
	ErrProtocol = errors.New("protocol failure")
)

// NetworkError carries the transport context of a failed remote call:
// either a non-success HTTP status or an underlying connection error.
// It matches ErrNetwork via errors.Is.
type NetworkError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network failure: %v", e.Err)
	}
	return fmt.Sprintf("network failure: status %d", e.StatusCode)
}

func (e *NetworkError) Unwrap() error { return ErrNetwork }

// ProtocolError reports a success response that failed schema validation.
// It matches ErrProtocol via errors.Is.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol failure: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol failure: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error { return ErrProtocol }

// PurchaseError carries the store-reported reason for a failed purchase.
// It matches ErrStoreFailure via errors.Is.
type PurchaseError struct {
	Reason string
}

func (e *PurchaseError) Error() string {
	return fmt.Sprintf("store failure: %s", e.Reason)
}

func (e *PurchaseError) Unwrap() error { return ErrStoreFailure }
