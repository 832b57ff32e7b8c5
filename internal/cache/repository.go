// Package cache persists customer-state snapshots across process restarts.
//
// The store is a durable blob table keyed by app user id. Failure policy is
// intentional and asymmetric: writes report errors to the caller (who logs
// and continues — the in-memory snapshot stays valid for the session), while
// read failures of any kind, including a corrupt blob, degrade to a cache
// miss and are never surfaced as errors.
package cache

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/subkeeper/internal/models"
)

// namespace prefixes every storage key so snapshots can share a database
// with unrelated data.
const namespace = "subkeeper"

// Key returns the storage key for a user's snapshot.
func Key(appUserID string) string {
	return fmt.Sprintf("%s.%s.customerInfo", namespace, appUserID)
}

// Repository is the persistent snapshot store.
type Repository interface {
	// Save durably stores the snapshot keyed by its AppUserID, replacing
	// any previous one. Snapshots of other users are unaffected.
	Save(ctx context.Context, s *models.CustomerState) error

	// Load returns the last saved snapshot for the user, or (nil, nil) if
	// none was ever saved or the stored blob does not deserialize.
	Load(ctx context.Context, appUserID string) (*models.CustomerState, error)

	// Delete removes the user's snapshot. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, appUserID string) error
}
